package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/stopnorway/stopnorway/internal/domain"
)

type fakeRuns struct {
	refs []domain.QueryRef
	runs map[string]domain.QueryRun
}

func (f fakeRuns) SaveQuery(domain.QueryRun) (string, error) { return "", nil }

func (f fakeRuns) ListQueries() ([]domain.QueryRef, error) { return f.refs, nil }

func (f fakeRuns) LoadQuery(id string) (domain.QueryRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return domain.QueryRun{}, &domain.OpError{Op: "runstore.load", Kind: domain.KindNotFound, Err: domain.ErrNotFound}
	}
	return run, nil
}

func fixtureRuns() fakeRuns {
	return fakeRuns{
		refs: []domain.QueryRef{{ID: "20260203T100000Z_oslo", Name: "oslo", Points: 1, Journeys: 1, StartedAt: time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)}},
		runs: map[string]domain.QueryRun{
			"20260203T100000Z_oslo": {
				Name:     "oslo",
				Points:   []string{"59.912,10.745"},
				Accuracy: "10m",
				Journeys: []domain.JourneyView{{
					ID: "RUT:ServiceJourney:1", PublicCode: "1", Line: "Sentrum", Start: "08:00:00", End: "08:10:00", Minutes: 10,
					StopNames: []string{"Jernbanetorget", "Stortinget"},
					Stops: []domain.StopView{
						{Name: "Jernbanetorget", Departure: "08:00:00"},
						{Name: "Stortinget", Arrival: "08:04:00", Departure: "08:05:00"},
					},
				}},
			},
		},
	}
}

func step(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return mm, cmd
}

func TestModel_BrowseRunToJourney(t *testing.T) {
	m := newModel(Deps{Store: fixtureRuns(), WorkspaceRoot: "/ws"})
	m, _ = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = step(t, m, m.Init()())
	if m.loading || len(m.runs.Items()) != 1 {
		t.Fatalf("runs not loaded: loading=%v items=%d", m.loading, len(m.runs.Items()))
	}

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter must load the run")
	}
	m, _ = step(t, m, cmd())
	if m.scr != screenJourneys || len(m.journeys.Items()) != 1 {
		t.Fatalf("expected journeys screen, got %v with %d items", m.scr, len(m.journeys.Items()))
	}
	if !strings.Contains(m.View(), "Found:  1 journey(s)") {
		t.Fatalf("run header missing:\n%s", m.View())
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.scr != screenJourney || !strings.Contains(m.View(), "Stortinget") {
		t.Fatalf("expected journey details:\n%s", m.View())
	}

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.scr != screenRuns {
		t.Fatalf("esc twice must return to runs, got %v", m.scr)
	}
}

func TestModel_InitialRunAndErrors(t *testing.T) {
	m := newModel(Deps{Store: fixtureRuns(), Initial: "missing"})
	m, _ = step(t, m, cmdLoadRun(m.src, "missing")())
	if m.scr != screenRuns || m.toast != "Saved query not found" {
		t.Fatalf("unexpected state scr=%v toast=%q", m.scr, m.toast)
	}

	m, _ = step(t, m, runsLoadedMsg{err: errors.New("boom")})
	if m.toast != "Unexpected error (see logs)" {
		t.Fatalf("unexpected toast %q", m.toast)
	}

	empty := newModel(Deps{})
	if msg := cmdLoadRuns(empty.src)(); msg.(runsLoadedMsg).err == nil {
		t.Fatalf("missing store must fail")
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"run", &domain.OpError{Op: "runstore.load", Kind: domain.KindNotFound}, "Saved query not found"},
		{"workspace", &domain.OpError{Op: "workspacefinder.find", Kind: domain.KindNotFound}, "Workspace not found"},
		{"data with path", &domain.OpError{Op: "runstore.load", Kind: domain.KindInvalidData, Path: "/ws/runs/a.json"}, "Unreadable file a.json"},
		{"data", &domain.OpError{Op: "runstore.load", Kind: domain.KindInvalidData}, "Unreadable data"},
		{"config", &domain.OpError{Op: "runstore.load", Kind: domain.KindInvalidConfig}, "Invalid input"},
		{"plain", errors.New("boom"), "Unexpected error (see logs)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := userMessage(tc.err); got != tc.want {
				t.Fatalf("userMessage = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSafeModel_ForwardsUpdates(t *testing.T) {
	s := wrapSafe(newModel(Deps{Store: fixtureRuns()}), nil)
	next, _ := s.Update(runsLoadedMsg{refs: fixtureRuns().refs})
	sm, ok := next.(safeModel)
	if !ok {
		t.Fatalf("expected safeModel, got %T", next)
	}
	if len(sm.m.runs.Items()) != 1 {
		t.Fatalf("update not forwarded")
	}
	if !strings.Contains(sm.View(), "Journeys found by place and time") {
		t.Fatalf("unexpected view:\n%s", sm.View())
	}
}

func TestClampString(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"Jernbanetorget", 20, "Jernbanetorget"},
		{"Jernbanetorget", 5, "Jernb…"},
		{"Tøyen", 2, "Tø…"},
		{"x", 0, ""},
	}
	for _, tc := range cases {
		if got := clampString(tc.in, tc.max); got != tc.want {
			t.Fatalf("clampString(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
