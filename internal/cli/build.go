package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/usecase"
)

func importCmd(opts *rootOptions) *cobra.Command {
	var operators []string

	c := &cobra.Command{
		Use:   "import",
		Short: "Unzip the operators' NeTEx documents from the archive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(opts)
			if err != nil {
				return err
			}
			ops, err := parseOperators(operators)
			if err != nil {
				return err
			}
			ops, _ = ws.dbs.Resolve(ops)

			dir, stats, err := ws.unzipper.Unzip(cmd.Context(), ws.settings.Archive, ops)
			if err != nil {
				return err
			}
			sources, err := ws.parser.Sources(dir, ops)
			if err != nil {
				return err
			}

			p := newPrinter(cmd.OutOrStdout(), ws.cfg.Output.Color)
			p.field("Archive", ws.settings.Archive)
			p.field("Target", dir)
			p.field("Matched", stats.Matched)
			p.field("Copied", stats.Copied)
			p.field("Sources", len(sources))
			return nil
		},
	}

	c.Flags().StringSliceVarP(&operators, "operator", "o", nil, "operator codespace, repeatable (default: configured operators)")
	return c
}

func buildCmd(opts *rootOptions) *cobra.Command {
	var operators []string
	var rebuild, adhoc bool
	var format string

	c := &cobra.Command{
		Use:   "build",
		Short: "Build the journey database, reusing the serial form when present",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			mode := usecase.ModeGet
			switch {
			case rebuild:
				mode = usecase.ModeRebuild
			case adhoc:
				mode = usecase.ModeAdhoc
			}
			return runDatabase(cmd, opts, operators, mode, format)
		},
	}

	c.Flags().StringSliceVarP(&operators, "operator", "o", nil, "operator codespace, repeatable (default: configured operators)")
	c.Flags().BoolVar(&rebuild, "rebuild", false, "always parse the archive and rewrite the serial form")
	c.Flags().BoolVar(&adhoc, "adhoc", false, "parse the archive and write nothing")
	c.Flags().StringVar(&format, "format", "pretty", "output format: pretty|json")
	c.MarkFlagsMutuallyExclusive("rebuild", "adhoc")
	return c
}

func statsCmd(opts *rootOptions) *cobra.Command {
	var operators []string
	var format string
	var header bool

	c := &cobra.Command{
		Use:   "stats",
		Short: "Describe the journey database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if header {
				return runHeader(cmd, opts, operators, format)
			}
			return runDatabase(cmd, opts, operators, usecase.ModeGet, format)
		},
	}

	c.Flags().StringSliceVarP(&operators, "operator", "o", nil, "operator codespace, repeatable (default: configured operators)")
	c.Flags().StringVar(&format, "format", "pretty", "output format: pretty|json")
	c.Flags().BoolVar(&header, "header", false, "only read the stored serial form's header")
	return c
}

// headerOutput is the JSON form of `stats --header`.
type headerOutput struct {
	Path string `json:"path"`
	domain.SerialHeader
}

func runHeader(cmd *cobra.Command, opts *rootOptions, operators []string, format string) error {
	ws, err := loadWorkspace(opts)
	if err != nil {
		return err
	}
	ops, err := parseOperators(operators)
	if err != nil {
		return err
	}
	path, h, err := ws.dbs.Header(ops)
	if err != nil {
		return err
	}
	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), headerOutput{Path: path, SerialHeader: h}, nil)
	}
	newPrinter(cmd.OutOrStdout(), ws.cfg.Output.Color).header(path, h)
	return nil
}

func runDatabase(cmd *cobra.Command, opts *rootOptions, operators []string, mode usecase.BuildMode, format string) error {
	ws, err := loadWorkspace(opts)
	if err != nil {
		return err
	}
	ops, err := parseOperators(operators)
	if err != nil {
		return err
	}

	res, err := ws.dbs.Build(cmd.Context(), mode, ops)
	if err != nil {
		return err
	}
	stats := res.Stats()

	if format == "json" {
		return writeJSON(cmd.OutOrStdout(), struct {
			domain.DatabaseStats
			Mode    string `json:"mode"`
			Dumped  bool   `json:"dumped"`
			Sources int    `json:"sources"`
		}{stats, mode.String(), res.Dumped, res.Sources}, nil)
	}

	p := newPrinter(cmd.OutOrStdout(), ws.cfg.Output.Color)
	p.stats(stats)
	if res.Dumped {
		fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %s\n", res.SerialPath)
	}
	return nil
}
