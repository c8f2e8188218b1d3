package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/ports"
	ucassert "github.com/stopnorway/stopnorway/internal/usecase/assert"
)

// DatabaseSource hands out built databases. *Databases implements it.
type DatabaseSource interface {
	Get(ctx context.Context, operators ...netex.Operator) (BuildResult, error)
}

var _ DatabaseSource = (*Databases)(nil)

type RunSuite struct {
	suites   ports.SuiteLoader
	places   ports.PlacesLoader
	dbs      DatabaseSource
	query    *QueryJourneys
	resolver *domain.VarResolver
	log      *slog.Logger
	now      func() time.Time
}

type RunSuiteOption func(*RunSuite)

func WithSuiteLogger(l *slog.Logger) RunSuiteOption {
	return func(uc *RunSuite) {
		if l != nil {
			uc.log = l
		}
	}
}

func WithSuiteResolver(vr *domain.VarResolver) RunSuiteOption {
	return func(uc *RunSuite) {
		if vr != nil {
			uc.resolver = vr
		}
	}
}

func WithSuiteNow(now func() time.Time) RunSuiteOption {
	return func(uc *RunSuite) { uc.now = now }
}

func NewRunSuite(sl ports.SuiteLoader, pl ports.PlacesLoader, dbs DatabaseSource, opts ...RunSuiteOption) *RunSuite {
	uc := &RunSuite{
		suites:   sl,
		places:   pl,
		dbs:      dbs,
		resolver: domain.NewVarResolver(),
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.query = NewQueryJourneys(WithQueryLogger(uc.log), WithQueryNow(uc.now))
	return uc
}

// Execute runs every query of the suite against one database. Operators given here win
// over the suite's own; with neither, the configured operators are used. A query that
// cannot be resolved or parsed is recorded as failed and the rest still run.
func (uc *RunSuite) Execute(ctx context.Context, suitePath string, placesName string, operators []netex.Operator) (domain.SuiteResult, error) {
	suite, vars, err := loadSuite(uc.suites, uc.places, suitePath, placesName)
	if err != nil {
		return domain.SuiteResult{}, err
	}

	ops := operators
	if len(ops) == 0 {
		if ops, err = netex.ParseOperators(suite.Operators); err != nil {
			return domain.SuiteResult{}, &domain.OpError{Op: "suite.operators", Kind: domain.KindInvalidConfig, Path: suitePath, Err: err}
		}
	}

	built, err := uc.dbs.Get(ctx, ops...)
	if err != nil {
		return domain.SuiteResult{}, err
	}

	res := domain.SuiteResult{
		Suite:     suite.Name,
		Path:      suitePath,
		Places:    placesName,
		StartedAt: uc.now().UTC(),
		Results:   make([]domain.QueryResult, 0, len(suite.Queries)),
	}
	for _, op := range built.Operators {
		res.Operators = append(res.Operators, op.String())
	}

	for _, spec := range suite.Queries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		qr := domain.QueryResult{Name: spec.Name, Checks: []domain.CheckResult{}}
		q, resolved, err := uc.prepare(spec, vars)
		if err != nil {
			qr.Error = err.Error()
			res.Results = append(res.Results, qr)
			continue
		}

		run, err := uc.query.Execute(ctx, built.DB, q)
		if err != nil {
			if ctx.Err() != nil {
				return res, err
			}
			qr.Error = err.Error()
			res.Results = append(res.Results, qr)
			continue
		}
		run.Name = spec.Name
		run.Operators = res.Operators

		qr.Run = run
		qr.Checks = ucassert.Evaluate(resolved.Expect, run)
		res.Results = append(res.Results, qr)

		uc.log.Info("suite.query",
			"suite", suite.Name,
			"query", spec.Name,
			"journeys", len(run.Journeys),
			"failed", qr.Failed(),
		)
	}

	res.EndedAt = uc.now().UTC()
	uc.log.Info("suite.done", "suite", suite.Name, "queries", len(res.Results), "failed", res.Failed())
	return res, nil
}

func (uc *RunSuite) prepare(spec domain.QuerySpec, vars domain.Vars) (JourneyQuery, domain.QuerySpec, error) {
	rt, err := uc.resolver.NewRuntime(vars)
	if err != nil {
		return JourneyQuery{}, spec, err
	}
	resolved, err := rt.ResolveQuery(spec)
	if err != nil {
		return JourneyQuery{}, spec, err
	}
	q, err := ParseQuerySpec(resolved)
	return q, resolved, err
}

// loadSuite reads the suite and merges its vars under the place set's (place set wins).
// A blank place set name loads none.
func loadSuite(sl ports.SuiteLoader, pl ports.PlacesLoader, suitePath, placesName string) (domain.Suite, domain.Vars, error) {
	suite, err := sl.LoadSuite(suitePath)
	if err != nil {
		return domain.Suite{}, nil, err
	}
	if placesName == "" {
		return suite, domain.Merge(suite.Vars, nil), nil
	}
	places, err := pl.LoadPlaces(placesName)
	if err != nil {
		return domain.Suite{}, nil, err
	}
	return suite, domain.Merge(suite.Vars, places.Vars), nil
}
