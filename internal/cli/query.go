package cli

import (
	"github.com/spf13/cobra"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/usecase"
)

type queryFlags struct {
	points    []string
	accuracy  string
	from, to  string
	where     string
	limit     int
	operators []string
	format    string
	selectors []string
	save      bool
	name      string
}

func queryCmd(opts *rootOptions) *cobra.Command {
	f := &queryFlags{}

	c := &cobra.Command{
		Use:   "query",
		Short: "Find journeys passing near points, optionally within a time window",
		Example: `  stopnorway query --point 59.9111,10.7528 --accuracy 50m
  stopnorway query --point 59.9111,10.7528 --from 07:00 --to 09:00 --where 'TransportMode == "metro"'
  stopnorway query --point 59.9111,10.7528 --format json --select '$.journeys[*].id'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := f.query()
			if err != nil {
				return err
			}
			if err := checkFormat(f.format); err != nil {
				return err
			}
			ops, err := parseOperators(f.operators)
			if err != nil {
				return err
			}

			ws, err := loadWorkspace(opts)
			if err != nil {
				return err
			}
			built, err := ws.dbs.Get(cmd.Context(), ops...)
			if err != nil {
				return err
			}

			run, err := usecase.NewQueryJourneys(usecase.WithQueryLogger(ws.log)).Execute(cmd.Context(), built.DB, q)
			if err != nil {
				return err
			}
			run.Name = f.name
			for _, op := range built.Operators {
				run.Operators = append(run.Operators, op.String())
			}

			var id string
			if f.save {
				if id, err = ws.store.SaveQuery(run); err != nil {
					return err
				}
			}

			if f.format == "json" {
				return writeJSON(cmd.OutOrStdout(), run, f.selectors)
			}
			newPrinter(cmd.OutOrStdout(), ws.cfg.Output.Color).query(run, id)
			return nil
		},
	}

	c.Flags().StringArrayVarP(&f.points, "point", "p", nil, "lat,lon to search around, repeatable (required)")
	c.Flags().StringVarP(&f.accuracy, "accuracy", "a", usecase.DefaultAccuracy.String(), "search radius, e.g. 10m or 1.5km")
	c.Flags().StringVar(&f.from, "from", "", "window start HH:MM[:SS][+days]")
	c.Flags().StringVar(&f.to, "to", "", "window end HH:MM[:SS][+days]")
	c.Flags().StringVar(&f.where, "where", "", "boolean filter over journey fields, e.g. 'Minutes > 30'")
	c.Flags().IntVar(&f.limit, "limit", 0, "maximum number of journeys, 0 for all")
	c.Flags().StringSliceVarP(&f.operators, "operator", "o", nil, "operator codespace, repeatable (default: configured operators)")
	c.Flags().StringVar(&f.format, "format", "pretty", "output format: pretty|json")
	c.Flags().StringArrayVar(&f.selectors, "select", nil, "JSONPath over json output, '$.expr' or name=$.expr, repeatable")
	c.Flags().BoolVar(&f.save, "save", false, "save the result under runs/")
	c.Flags().StringVar(&f.name, "name", "query", "name of a saved result")
	_ = c.MarkFlagRequired("point")
	c.MarkFlagsRequiredTogether("from", "to")
	return c
}

func (f *queryFlags) spec() domain.QuerySpec {
	return domain.QuerySpec{
		Name:     f.name,
		Points:   f.points,
		Accuracy: f.accuracy,
		From:     f.from,
		To:       f.to,
		Where:    f.where,
		Limit:    f.limit,
	}
}

func (f *queryFlags) query() (usecase.JourneyQuery, error) {
	return usecase.ParseQuerySpec(f.spec())
}
