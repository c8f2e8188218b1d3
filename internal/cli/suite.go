package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/usecase"
)

func runCmd(opts *rootOptions) *cobra.Command {
	var places string
	var operators []string
	var format string
	var selectors []string
	var save bool

	c := &cobra.Command{
		Use:   "run SUITE",
		Short: "Run a suite of journey queries and check their expectations",
		Example: `  stopnorway run oslo --places oslo
  stopnorway run suites/oslo.yaml --format json --select '$.results[*].name'`,
		Args: cobra.ExactArgs(1),
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

			path := resolveSuitePath(ws, args[0])
			uc := usecase.NewRunSuite(ws.suites, ws.places, ws.dbs, usecase.WithSuiteLogger(ws.log))
			res, err := uc.Execute(cmd.Context(), path, places, ops)
			if err != nil {
				return err
			}

			var saved []string
			if save {
				for _, qr := range res.Results {
					if qr.Error != "" {
						continue
					}
					run := qr.Run
					run.Name = res.Suite + " " + qr.Name
					id, err := ws.store.SaveQuery(run)
					if err != nil {
						return err
					}
					saved = append(saved, id)
				}
			}

			if format == "json" {
				if err := writeJSON(cmd.OutOrStdout(), res, selectors); err != nil {
					return err
				}
			} else {
				newPrinter(cmd.OutOrStdout(), ws.cfg.Output.Color).suite(res, saved)
			}

			if n := res.Failed(); n > 0 {
				return &domain.OpError{
					Op:   "cli.run",
					Kind: domain.KindExecution,
					Path: path,
					Err:  fmt.Errorf("%d of %d queries failed", n, len(res.Results)),
				}
			}
			return nil
		},
	}

	c.Flags().StringVarP(&places, "places", "P", "", "place set name under places/ or a YAML path")
	c.Flags().StringSliceVarP(&operators, "operator", "o", nil, "operator codespace, repeatable (default: the suite's operators)")
	c.Flags().StringVar(&format, "format", "pretty", "output format: pretty|json")
	c.Flags().StringArrayVar(&selectors, "select", nil, "JSONPath over json output, repeatable")
	c.Flags().BoolVar(&save, "save", false, "save every query result under runs/")
	return c
}

func validateCmd(opts *rootOptions) *cobra.Command {
	var places string

	c := &cobra.Command{
		Use:   "validate SUITE",
		Short: "Check that a suite resolves and parses without building a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(opts)
			if err != nil {
				return err
			}
			path := resolveSuitePath(ws, args[0])
			suite, err := usecase.NewValidateSuite(ws.suites, ws.places).Execute(cmd.Context(), path, places)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK %s (%d queries)\n", suite.Name, len(suite.Queries))
			return nil
		},
	}

	c.Flags().StringVarP(&places, "places", "P", "", "place set name under places/ or a YAML path")
	return c
}

func suitesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suites",
		Short: "List the suites of the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(opts)
			if err != nil {
				return err
			}
			refs, err := ws.suites.ListSuites(ws.root)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), ws.cfg.Output.Color)
			for _, r := range refs {
				rel, relErr := filepath.Rel(ws.root, r.Path)
				if relErr != nil {
					rel = r.Path
				}
				fmt.Fprintf(p.w, "%s  %s\n", p.heading.Sprintf("%-24s", r.Name), p.faint.Sprint(rel))
			}
			return nil
		},
	}
}

// resolveSuitePath reads a bare name as suites/<name>.yaml.
func resolveSuitePath(ws *workspaceCtx, arg string) string {
	if looksLikePath(arg) || hasYAMLExt(arg) {
		return arg
	}
	return filepath.Join(ws.cfg.Paths.SuitesDir, arg+".yaml")
}

func looksLikePath(s string) bool {
	return strings.ContainsRune(s, '/') || strings.ContainsRune(s, filepath.Separator)
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}
