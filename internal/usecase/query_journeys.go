package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/stopnorway/stopnorway/internal/database"
	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/geo"
)

// DefaultAccuracy is the radius searched around each query point.
var DefaultAccuracy = geo.Of(10, geo.M)

// JourneyQuery selects journeys passing near points, optionally during a time window and
// matching a boolean expression over domain.JourneyView.
type JourneyQuery struct {
	Points   []geo.Point
	Accuracy geo.Distance
	Window   *geo.Timespan
	Where    string
	Limit    int
}

// Boxes is the square around each point, sides twice the accuracy.
func (q JourneyQuery) Boxes() []geo.Box {
	acc := q.Accuracy
	if acc <= 0 {
		acc = DefaultAccuracy
	}
	traj := make(geo.Trajectory, 0, len(q.Points))
	for _, p := range q.Points {
		traj = append(traj, geo.Sample{Point: p, Accuracy: acc})
	}
	return traj.Boxes()
}

type QueryJourneys struct {
	log *slog.Logger
	now func() time.Time
}

type QueryOption func(*QueryJourneys)

func WithQueryLogger(l *slog.Logger) QueryOption {
	return func(uc *QueryJourneys) {
		if l != nil {
			uc.log = l
		}
	}
}

func WithQueryNow(now func() time.Time) QueryOption {
	return func(uc *QueryJourneys) { uc.now = now }
}

func NewQueryJourneys(opts ...QueryOption) *QueryJourneys {
	uc := &QueryJourneys{log: slog.New(slog.DiscardHandler), now: time.Now}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// CompileWhere checks a filter expression without running it.
func CompileWhere(where string) (*vm.Program, error) {
	if strings.TrimSpace(where) == "" {
		return nil, nil
	}
	prog, err := expr.Compile(where, expr.Env(domain.JourneyView{}), expr.AsBool())
	if err != nil {
		return nil, &domain.OpError{
			Op:   "query.where",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err),
		}
	}
	return prog, nil
}

// Execute runs q against db. Results are ordered by start time.
func (uc *QueryJourneys) Execute(ctx context.Context, db *database.Database, q JourneyQuery) (domain.QueryRun, error) {
	start := uc.now()
	run := domain.QueryRun{
		Name:      "query",
		StartedAt: start.UTC(),
		Accuracy:  q.Accuracy.String(),
		Where:     q.Where,
		Journeys:  []domain.JourneyView{},
	}
	for _, p := range q.Points {
		run.Points = append(run.Points, p.String())
	}
	if q.Window != nil {
		run.From = clock(q.Window.Start, q.Window.StartOffset)
		run.To = clock(q.Window.End, q.Window.EndOffset)
	}
	if len(q.Points) == 0 {
		return run, &domain.OpError{
			Op:   "query.points",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: at least one point is required", domain.ErrInvalidConfig),
		}
	}

	prog, err := CompileWhere(q.Where)
	if err != nil {
		return run, err
	}

	boxes := q.Boxes()
	var journeys []*database.Journey
	if q.Window != nil {
		journeys = db.JourneysDuring(*q.Window, boxes...)
	} else {
		journeys = db.Journeys(boxes...)
	}

	for i, j := range journeys {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return run, err
			}
		}
		view := JourneyViewOf(j)
		if prog != nil {
			out, err := expr.Run(prog, view)
			if err != nil {
				return run, &domain.OpError{Op: "query.where", Kind: domain.KindExecution, Err: err}
			}
			if match, _ := out.(bool); !match {
				continue
			}
		}
		run.Journeys = append(run.Journeys, view)
		if q.Limit > 0 && len(run.Journeys) >= q.Limit {
			break
		}
	}

	run.Duration = uc.now().Sub(start)
	uc.log.Info("query.done",
		"points", len(q.Points),
		"candidates", len(journeys),
		"matched", len(run.Journeys),
		"duration_ms", run.Duration.Milliseconds(),
	)
	return run, nil
}
