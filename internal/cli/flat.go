package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stopnorway/stopnorway/internal/flat"
	"github.com/stopnorway/stopnorway/internal/infra/importer"
	"github.com/stopnorway/stopnorway/internal/infra/logger"
	"github.com/stopnorway/stopnorway/internal/usecase"
)

func flatCmd(_ *rootOptions) *cobra.Command {
	var maxSize int64
	var partitions int
	var format string
	var sample int
	var colorMode string

	c := &cobra.Command{
		Use:   "flat PATH",
		Short: "Read every .txt flat file of a directory or zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			log := logger.L()
			p := flat.DefaultPartitioning()
			if partitions > 0 {
				p.Count = partitions
			}
			uz := importer.New(importer.WithLogger(log), importer.WithSuffixes(".txt"))
			uc := usecase.NewReadFlat(uz, log, flat.WithMaxSize(maxSize), flat.WithPartitioning(p))

			files, err := uc.Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if format == "json" {
				type fileOut struct {
					usecase.FlatFile
					Sample []flat.Record `json:"sample,omitempty"`
				}
				out := make([]fileOut, 0, len(files))
				for _, f := range files {
					out = append(out, fileOut{FlatFile: f, Sample: head(f.Records, sample)})
				}
				return writeJSON(cmd.OutOrStdout(), out, nil)
			}

			pr := newPrinter(cmd.OutOrStdout(), colorMode)
			for _, f := range files {
				name := pr.heading.Sprint(filepath.Base(f.Path))
				if f.Skipped {
					fmt.Fprintf(pr.w, "%s %s\n", name, pr.warn.Sprint("skipped (too large)"))
					continue
				}
				fmt.Fprintf(pr.w, "%s %d record(s)\n", name, f.Count)
				fmt.Fprintf(pr.w, "  %s\n", pr.faint.Sprint(strings.Join(f.Headers, ", ")))
				for _, r := range head(f.Records, sample) {
					fmt.Fprintf(pr.w, "  %6d  %s\n", r.LineNo(), recordLine(f.Headers, r))
				}
			}
			return nil
		},
	}

	c.Flags().Int64Var(&maxSize, "max-size", flat.DefaultMaxSize, "skip files larger than this many bytes, 0 for no limit")
	c.Flags().IntVar(&partitions, "partitions", 0, "partitions read concurrently per file (default: one per CPU)")
	c.Flags().IntVar(&sample, "sample", 3, "records shown per file")
	c.Flags().StringVar(&format, "format", "pretty", "output format: pretty|json")
	c.Flags().StringVar(&colorMode, "color", "auto", "colour mode: auto|always|never")
	return c
}

func head(recs []flat.Record, n int) []flat.Record {
	if n < 0 {
		n = 0
	}
	return recs[:min(n, len(recs))]
}

func recordLine(headers []string, r flat.Record) string {
	parts := make([]string, 0, len(headers))
	for _, h := range headers {
		if v, ok := r[h]; ok {
			parts = append(parts, h+"="+v)
		}
	}
	return strings.Join(parts, " ")
}
