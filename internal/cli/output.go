package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/usecase/extract"
)

// printer writes pretty output, coloured when the mode and terminal allow it.
type printer struct {
	w       io.Writer
	heading *color.Color
	accent  *color.Color
	faint   *color.Color
	warn    *color.Color
}

func newPrinter(w io.Writer, mode string) *printer {
	enabled := false
	switch strings.ToLower(mode) {
	case "always":
		enabled = true
	case "never":
	default:
		if f, ok := w.(*os.File); ok {
			enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &printer{
		w:       w,
		heading: mk(color.Bold),
		accent:  mk(color.FgCyan),
		faint:   mk(color.Faint),
		warn:    mk(color.FgYellow),
	}
}

func (p *printer) field(name string, value any) {
	fmt.Fprintf(p.w, "%s %v\n", p.faint.Sprintf("%-11s", name+":"), value)
}

func (p *printer) stats(s domain.DatabaseStats) {
	p.field("Source", s.Source)
	p.field("Operators", strings.Join(s.Operators, ","))
	p.field("Box", s.Box)
	p.field("Scale", s.Scale)
	p.field("Time scale", s.TimeScale)
	p.field("Patterns", s.Specifications)
	p.field("Journeys", s.Journeys)
	p.field("Cells", s.Cells)

	kinds := make([]string, 0, len(s.Entities))
	for k := range s.Entities {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	fmt.Fprintln(p.w)
	for _, k := range kinds {
		fmt.Fprintf(p.w, "  %-32s %9d\n", k, s.Entities[k])
	}
}

func (p *printer) header(path string, h domain.SerialHeader) {
	p.field("Serial", path)
	p.field("Format", h.Version)
	ops := "all"
	if len(h.Operators) > 0 {
		ops = strings.Join(h.Operators, ",")
	}
	p.field("Operators", ops)
	p.field("Box", h.Box)
	p.field("Scale", h.Scale)
	p.field("Time scale", h.TemporalScale)
	p.field("Entities", h.Entities)
	if !h.Written.IsZero() {
		p.field("Written", h.Written.Format(time.RFC3339))
	}
}

func (p *printer) query(run domain.QueryRun, id string) {
	p.field("Points", strings.Join(run.Points, " "))
	p.field("Accuracy", run.Accuracy)
	if run.From != "" {
		p.field("Window", run.From+" - "+run.To)
	}
	if run.Where != "" {
		p.field("Where", run.Where)
	}
	p.field("Duration", run.Duration)
	if id != "" {
		p.field("Saved", id)
	}
	fmt.Fprintln(p.w)

	if len(run.Journeys) == 0 {
		fmt.Fprintln(p.w, p.warn.Sprint("(no journeys)"))
		return
	}
	for _, j := range run.Journeys {
		code := j.PublicCode
		if code == "" {
			code = "-"
		}
		fmt.Fprintf(p.w, "%s %s  %s  %s\n",
			p.accent.Sprintf("%-5s", code),
			p.heading.Sprintf("%s-%s", j.Start, j.End),
			j.Line,
			p.faint.Sprint(j.ID),
		)
		if len(j.StopNames) > 0 {
			fmt.Fprintf(p.w, "      %s\n", strings.Join(j.StopNames, " > "))
		}
	}
	fmt.Fprintf(p.w, "\n%d journey(s)\n", len(run.Journeys))
}

func (p *printer) suite(res domain.SuiteResult, saved []string) {
	p.field("Suite", res.Suite)
	if res.Places != "" {
		p.field("Places", res.Places)
	}
	p.field("Operators", strings.Join(res.Operators, ","))
	fmt.Fprintln(p.w)

	for _, qr := range res.Results {
		mark := p.accent.Sprint("PASS")
		if qr.Failed() {
			mark = p.warn.Sprint("FAIL")
		}
		if qr.Error != "" {
			fmt.Fprintf(p.w, "%s %s  %s\n", mark, p.heading.Sprint(qr.Name), qr.Error)
			continue
		}
		fmt.Fprintf(p.w, "%s %s  %d journey(s)\n", mark, p.heading.Sprint(qr.Name), len(qr.Run.Journeys))
		for _, c := range qr.Checks {
			status := "ok  "
			if !c.Passed {
				status = "fail"
			}
			fmt.Fprintf(p.w, "       %s %s\n", status, p.faint.Sprint(c.Message))
		}
	}

	for _, id := range saved {
		p.field("Saved", id)
	}
	fmt.Fprintf(p.w, "\n%d/%d passed\n", len(res.Results)-res.Failed(), len(res.Results))
}

// writeJSON writes v indented. With selectors, v is filtered through JSONPath first: a
// single bare expression prints its raw value, named rules print a name to value map.
func writeJSON(w io.Writer, v any, selectors []string) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if len(selectors) == 0 {
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}

	if len(selectors) == 1 && strings.HasPrefix(strings.TrimSpace(selectors[0]), "$") {
		out, err := extract.Select(b, selectors[0])
		if err != nil {
			return &domain.OpError{Op: "cli.select", Kind: domain.KindInvalidConfig, Err: err}
		}
		return writeJSON(w, out, nil)
	}

	rules, err := extract.ParseRules(selectors)
	if err != nil {
		return &domain.OpError{Op: "cli.select", Kind: domain.KindInvalidConfig, Err: err}
	}
	values, results := extract.Apply(b, rules)
	for _, r := range results {
		if !r.Success {
			return &domain.OpError{
				Op:   "cli.select",
				Kind: domain.KindInvalidData,
				Err:  fmt.Errorf("%s: %s", r.Name, r.Message),
			}
		}
	}
	return writeJSON(w, values, nil)
}

func checkFormat(format string) error {
	switch format {
	case "pretty", "json":
		return nil
	}
	return &domain.OpError{
		Op:   "cli.format",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%w: unsupported format %q (expected pretty|json)", domain.ErrInvalidConfig, format),
	}
}
