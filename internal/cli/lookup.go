package cli

import (
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/stopnorway/stopnorway/internal/usecase"
)

func lookupCmd(opts *rootOptions) *cobra.Command {
	var operators []string
	var format string
	var selectors []string

	c := &cobra.Command{
		Use:   "lookup ID",
		Short: "Show one entity by its OP:Type:Value id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			ops, err := parseOperators(operators)
			if err != nil {
				return err
			}
			ws, err := loadWorkspace(opts)
			if err != nil {
				return err
			}

			res, err := usecase.NewLookupEntity(ws.dbs, ws.entities).Execute(cmd.Context(), args[0], ops)
			if err != nil {
				return err
			}
			short := base58.Encode(res.Fingerprint[:])

			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"kind":        res.Entity.Kind(),
					"fingerprint": short,
					"source":      res.Source,
					"entity":      res.Entity,
				}, selectors)
			}

			p := newPrinter(cmd.OutOrStdout(), ws.cfg.Output.Color)
			id := res.Entity.EntityID()
			p.field("Kind", res.Entity.Kind())
			p.field("ID", id.String())
			p.field("Version", id.Version)
			p.field("Fingerprint", short)
			p.field("Source", res.Source)
			return writeJSON(cmd.OutOrStdout(), res.Entity, nil)
		},
	}

	c.Flags().StringSliceVarP(&operators, "operator", "o", nil, "operators to load (default: the id's operator)")
	c.Flags().StringVar(&format, "format", "pretty", "output format: pretty|json")
	c.Flags().StringArrayVar(&selectors, "select", nil, "JSONPath over json output, repeatable")
	return c
}
