package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stopnorway/stopnorway/internal/infra/fsworkspace"
	"github.com/stopnorway/stopnorway/internal/usecase"
)

func initCmd(opts *rootOptions) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init [DIR]",
		Short: "Create a workspace with stopnorway.yaml, data/ and runs/",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			switch {
			case len(args) == 1:
				dir = args[0]
			case opts.workspace != "":
				dir = opts.workspace
			}
			root, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("invalid workspace path: %w", err)
			}

			if err := usecase.NewInitWorkspace(fsworkspace.NewInitializer()).Execute(root, force); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Initialized workspace at %s\n", root)
			fmt.Fprintf(out, "Place the aggregated NeTEx archive in %s\n", filepath.Join(root, "data"))
			return nil
		},
	}

	c.Flags().BoolVar(&force, "force", false, "overwrite existing template files")
	return c
}
