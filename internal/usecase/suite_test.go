package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/ports"
)

var (
	_ ports.SuiteLoader  = (*fakeSuites)(nil)
	_ ports.PlacesLoader = (*fakePlaces)(nil)
)

type fakeSuites struct {
	suite domain.Suite
	err   error
}

func (f *fakeSuites) LoadSuite(string) (domain.Suite, error) { return f.suite, f.err }

func (f *fakeSuites) ListSuites(string) ([]domain.SuiteRef, error) { return nil, nil }

type fakePlaces struct {
	sets map[string]domain.Vars
}

func (f *fakePlaces) LoadPlaces(name string) (domain.PlaceSet, error) {
	vars, ok := f.sets[name]
	if !ok {
		return domain.PlaceSet{}, &domain.OpError{Op: "yamlplaces.load", Kind: domain.KindNotFound, Err: domain.ErrNotFound}
	}
	return domain.PlaceSet{Name: name, Vars: vars}, nil
}

type fakeSource struct {
	t   *testing.T
	ops [][]netex.Operator
	err error
}

func (f *fakeSource) Get(_ context.Context, ops ...netex.Operator) (BuildResult, error) {
	f.ops = append(f.ops, ops)
	if f.err != nil {
		return BuildResult{}, f.err
	}
	if len(ops) == 0 {
		ops = []netex.Operator{"RUT"}
	}
	return BuildResult{DB: fixtureDB(f.t), Operators: ops}, nil
}

func ptr[T any](v T) *T { return &v }

func sentrumSuite() domain.Suite {
	return domain.Suite{
		Name:      "Oslo sentrum",
		Operators: []string{"RUT"},
		Vars:      domain.Vars{"radius": "100m", "stortinget": "0,0"},
		Queries: []domain.QuerySpec{
			{
				Name:     "stortinget",
				Points:   []string{"{{stortinget}}"},
				Accuracy: "{{radius}}",
				Expect:   domain.Expectations{MinJourneys: ptr(2), Lines: []string{"1"}},
			},
			{
				Name:   "morning",
				Points: []string{"{{stortinget}}"},
				From:   "08:00",
				To:     "08:09",
				Expect: domain.Expectations{MaxJourneys: ptr(0)},
			},
			{
				Name:   "unknown place",
				Points: []string{"{{majorstuen}}"},
			},
			{
				Name:   "bad filter",
				Points: []string{"{{stortinget}}"},
				Where:  "Minutes >",
			},
		},
	}
}

func newSuiteRun(src *fakeSource, suite domain.Suite) *RunSuite {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	places := &fakePlaces{sets: map[string]domain.Vars{"oslo": {"stortinget": "59.912,10.745"}}}
	return NewRunSuite(&fakeSuites{suite: suite}, places, src, WithSuiteNow(func() time.Time { return at }))
}

func TestRunSuite_Execute(t *testing.T) {
	src := &fakeSource{t: t}
	res, err := newSuiteRun(src, sentrumSuite()).Execute(context.Background(), "suites/oslo.yaml", "oslo", nil)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}

	if diff := cmp.Diff([][]netex.Operator{{"RUT"}}, src.ops); diff != "" {
		t.Fatalf("operators requested (-want +got):\n%s", diff)
	}
	if res.Suite != "Oslo sentrum" || res.Places != "oslo" || len(res.Results) != 4 {
		t.Fatalf("unexpected result %+v", res)
	}

	stortinget := res.Results[0]
	if stortinget.Failed() || len(stortinget.Run.Journeys) != 2 || stortinget.Run.Name != "stortinget" {
		t.Fatalf("unexpected first query %+v", stortinget)
	}
	if stortinget.Run.Accuracy != "100.000m" {
		t.Fatalf("radius not resolved: %s", stortinget.Run.Accuracy)
	}

	morning := res.Results[1]
	if !morning.Failed() || morning.Error != "" || morning.Checks[0].Name != "max_journeys" {
		t.Fatalf("expected failing check, got %+v", morning)
	}

	if !strings.Contains(res.Results[2].Error, "missing variable: majorstuen") {
		t.Fatalf("unexpected error %q", res.Results[2].Error)
	}
	if !strings.Contains(res.Results[3].Error, "query.where") {
		t.Fatalf("unexpected error %q", res.Results[3].Error)
	}
	if res.Failed() != 3 {
		t.Fatalf("Failed() = %d, want 3", res.Failed())
	}
}

func TestRunSuite_OperatorsOverrideSuite(t *testing.T) {
	src := &fakeSource{t: t}
	_, err := newSuiteRun(src, sentrumSuite()).Execute(context.Background(), "s.yaml", "oslo", []netex.Operator{"ATB"})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if diff := cmp.Diff([][]netex.Operator{{"ATB"}}, src.ops); diff != "" {
		t.Fatalf("operators requested (-want +got):\n%s", diff)
	}
}

func TestRunSuite_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := newSuiteRun(&fakeSource{t: t}, sentrumSuite()).Execute(ctx, "s.yaml", "bergen", nil)
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found places, got %v", err)
	}

	loadErr := &domain.OpError{Op: "yamlsuite.load", Kind: domain.KindInvalidConfig}
	uc := NewRunSuite(&fakeSuites{err: loadErr}, &fakePlaces{}, &fakeSource{t: t})
	if _, err := uc.Execute(ctx, "s.yaml", "", nil); !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}

	buildErr := &domain.OpError{Op: "databases.build", Kind: domain.KindNotFound}
	if _, err := newSuiteRun(&fakeSource{t: t, err: buildErr}, sentrumSuite()).Execute(ctx, "s.yaml", "oslo", nil); !errors.Is(err, buildErr) {
		t.Fatalf("expected build error, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := newSuiteRun(&fakeSource{t: t}, sentrumSuite()).Execute(cancelled, "s.yaml", "oslo", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidateSuite_Execute(t *testing.T) {
	places := &fakePlaces{sets: map[string]domain.Vars{"oslo": {"stortinget": "59.912,10.745", "majorstuen": "59.929,10.715"}}}
	suite := sentrumSuite()
	suite.Queries = suite.Queries[:3]

	got, err := NewValidateSuite(&fakeSuites{suite: suite}, places).Execute(context.Background(), "s.yaml", "oslo")
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if got.Name != "Oslo sentrum" {
		t.Fatalf("unexpected suite %+v", got)
	}

	_, err = NewValidateSuite(&fakeSuites{suite: sentrumSuite()}, places).Execute(context.Background(), "s.yaml", "oslo")
	if !domain.IsKind(err, domain.KindInvalidConfig) || !strings.Contains(err.Error(), `query "bad filter"`) {
		t.Fatalf("expected bad filter error, got %v", err)
	}

	_, err = NewValidateSuite(&fakeSuites{suite: suite}, places).Execute(context.Background(), "s.yaml", "")
	if !domain.IsKind(err, domain.KindMissingVar) {
		t.Fatalf("expected missing_var without places, got %v", err)
	}
}
