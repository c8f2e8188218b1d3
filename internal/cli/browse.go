package cli

import (
	"github.com/spf13/cobra"

	"github.com/stopnorway/stopnorway/internal/infra/logger"
	"github.com/stopnorway/stopnorway/internal/ui/tui"
)

func browseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [RUN_ID]",
		Short: "Browse saved query results in the terminal UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runBrowse(cmd, opts, id)
		},
	}
}

func runBrowse(_ *cobra.Command, opts *rootOptions, id string) error {
	ws, err := loadWorkspace(opts)
	if err != nil {
		return err
	}
	ws.log.Info("browse.started", "runs_dir", ws.store.Dir(), "initial", id)
	return tui.Run(tui.Deps{
		Store:         ws.store,
		WorkspaceRoot: ws.root,
		Initial:       id,
		Logger:        logger.L(),
		Debug:         opts.debug,
	})
}
