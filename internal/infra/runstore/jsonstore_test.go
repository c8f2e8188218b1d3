package runstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/stopnorway/stopnorway/internal/domain"
)

func sampleRun(start time.Time) domain.QueryRun {
	return domain.QueryRun{
		Name:      "Oslo sentrum",
		StartedAt: start,
		Duration:  3 * time.Millisecond,
		Points:    []string{"59.912,10.745"},
		Accuracy:  "10m",
		Journeys: []domain.JourneyView{{
			ID:        "RUT:ServiceJourney:1",
			Name:      "Morgen",
			Start:     "08:00:00",
			End:       "08:10:00",
			StopNames: []string{"Jernbanetorget", "Stortinget"},
			Stops: []domain.StopView{
				{ID: "RUT:ScheduledStopPoint:1", Name: "Jernbanetorget", Departure: "08:00:00"},
				{ID: "RUT:ScheduledStopPoint:2", Name: "Stortinget", Arrival: "08:04:00"},
			},
		}},
	}
}

func TestSaveQuery_WritesAndLoads(t *testing.T) {
	tmp := t.TempDir()
	start := time.Date(2026, 2, 3, 10, 11, 12, 0, time.UTC)
	store := NewJSONStore(tmp, domain.DefaultConfig())

	run := sampleRun(start)
	id, err := store.SaveQuery(run)
	if err != nil {
		t.Fatalf("SaveQuery error: %v", err)
	}
	if id != "20260203T101112Z_oslo-sentrum" {
		t.Fatalf("unexpected id %s", id)
	}

	b, err := os.ReadFile(filepath.Join(tmp, "runs", id+".json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["name"] != "Oslo sentrum" || raw["accuracy"] != "10m" {
		t.Fatalf("unexpected document %v", raw)
	}

	got, err := store.LoadQuery(id)
	if err != nil {
		t.Fatalf("LoadQuery error: %v", err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Fatalf("loaded run (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(tmp, "runs", indexFile)); !os.IsNotExist(err) {
		t.Fatalf("index must not be written by default")
	}
}

func TestSaveQuery_WithoutStops(t *testing.T) {
	tmp := t.TempDir()
	store := NewJSONStore(tmp, domain.DefaultConfig(), WithStops(false), WithNow(func() time.Time {
		return time.Date(2026, 2, 3, 11, 0, 0, 0, time.FixedZone("CET", 3600))
	}))

	run := sampleRun(time.Time{})
	run.Name = ""
	id, err := store.SaveQuery(run)
	if err != nil {
		t.Fatalf("SaveQuery error: %v", err)
	}
	if id != "20260203T100000Z_query" {
		t.Fatalf("unexpected id %s", id)
	}
	if len(run.Journeys[0].Stops) != 2 {
		t.Fatalf("input must not be mutated")
	}

	got, err := store.LoadQuery(id)
	if err != nil {
		t.Fatalf("LoadQuery error: %v", err)
	}
	if len(got.Journeys[0].Stops) != 0 || len(got.Journeys[0].StopNames) != 2 {
		t.Fatalf("unexpected journey %+v", got.Journeys[0])
	}
}

func TestListQueries(t *testing.T) {
	base := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)

	t.Run("index", func(t *testing.T) {
		tmp := t.TempDir()
		store := NewJSONStore(tmp, domain.DefaultConfig(), WithIndex(true))
		for i, name := range []string{"first", "second"} {
			run := sampleRun(base.Add(time.Duration(i) * time.Minute))
			run.Name = name
			if _, err := store.SaveQuery(run); err != nil {
				t.Fatalf("SaveQuery error: %v", err)
			}
		}
		// A torn line is ignored.
		f, _ := os.OpenFile(filepath.Join(tmp, "runs", indexFile), os.O_APPEND|os.O_WRONLY, 0o600)
		_, _ = f.WriteString(`{"id":"broken`)
		_ = f.Close()

		refs, err := store.ListQueries()
		if err != nil {
			t.Fatalf("ListQueries error: %v", err)
		}
		want := []domain.QueryRef{
			{ID: "20260203T100100Z_second", File: "20260203T100100Z_second.json", Name: "second", Points: 1, Journeys: 1, StartedAt: base.Add(time.Minute)},
			{ID: "20260203T100000Z_first", File: "20260203T100000Z_first.json", Name: "first", Points: 1, Journeys: 1, StartedAt: base},
		}
		if diff := cmp.Diff(want, refs); diff != "" {
			t.Fatalf("refs (-want +got):\n%s", diff)
		}
	})

	t.Run("directory", func(t *testing.T) {
		tmp := t.TempDir()
		store := NewJSONStore(tmp, domain.DefaultConfig())
		if refs, err := store.ListQueries(); err != nil || len(refs) != 0 {
			t.Fatalf("missing dir: %v %v", refs, err)
		}
		if _, err := store.SaveQuery(sampleRun(base)); err != nil {
			t.Fatalf("SaveQuery error: %v", err)
		}
		_ = os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), nil, 0o644)

		refs, err := store.ListQueries()
		if err != nil {
			t.Fatalf("ListQueries error: %v", err)
		}
		want := []domain.QueryRef{{ID: "20260203T100000Z_oslo-sentrum", File: "20260203T100000Z_oslo-sentrum.json"}}
		if diff := cmp.Diff(want, refs); diff != "" {
			t.Fatalf("refs (-want +got):\n%s", diff)
		}
	})
}

func TestLoadQuery_Errors(t *testing.T) {
	tmp := t.TempDir()
	store := NewJSONStore(tmp, domain.DefaultConfig())
	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(store.Dir(), "bad.json"), []byte("{"), 0o644)

	cases := []struct {
		id   string
		kind domain.ErrorKind
	}{
		{"", domain.KindInvalidConfig},
		{"../etc/passwd", domain.KindInvalidConfig},
		{"missing", domain.KindNotFound},
		{"bad", domain.KindInvalidData},
	}
	for _, tc := range cases {
		if _, err := store.LoadQuery(tc.id); !domain.IsKind(err, tc.kind) {
			t.Fatalf("%q: expected %s, got %v", tc.id, tc.kind, err)
		}
	}
}

func TestNewJSONStore_AbsoluteRunsDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere")
	cfg := domain.DefaultConfig()
	cfg.Paths.RunsDir = abs
	if got := NewJSONStore("/ignored", cfg).Dir(); got != abs {
		t.Fatalf("Dir = %s, want %s", got, abs)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Oslo sentrum":      "oslo-sentrum",
		"  Bergen -> Voss ": "bergen-voss",
		"Tromsø":            "troms",
		"___":               "",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
