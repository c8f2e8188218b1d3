package yamlsuite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stopnorway/stopnorway/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadSuite_Valid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "oslo.yaml")
	writeFile(t, p, `
name: Oslo sentrum
operators: [rut]
vars:
  radius: 50m
queries:
  - name: jernbanetorget
    points: ["{{jernbanetorget}}"]
    accuracy: "{{radius}}"
    from: "07:00"
    to: "09:00"
    where: 'TransportMode == "metro"'
    expect:
      min_journeys: 1
      max_minutes: 90
      lines: ["1"]
      jsonpath:
        "$.journeys[0].line":
          exists: true
          eq: Sentrum
`)

	s, err := NewLoader().LoadSuite(p)
	if err != nil {
		t.Fatalf("LoadSuite error: %v", err)
	}
	if s.Name != "Oslo sentrum" || s.Vars["radius"] != "50m" {
		t.Fatalf("unexpected suite %+v", s)
	}
	if diff := cmp.Diff([]string{"RUT"}, s.Operators); diff != "" {
		t.Fatalf("operators (-want +got):\n%s", diff)
	}
	if len(s.Queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(s.Queries))
	}
	q := s.Queries[0]
	if q.From != "07:00" || q.To != "09:00" || q.Accuracy != "{{radius}}" {
		t.Fatalf("unexpected query %+v", q)
	}
	if q.Expect.MinJourneys == nil || *q.Expect.MinJourneys != 1 || q.Expect.MaxJourneys != nil {
		t.Fatalf("unexpected expectations %+v", q.Expect)
	}
	jp := q.Expect.JSONPath["$.journeys[0].line"]
	if !jp.Exists || jp.Eq == nil || *jp.Eq != "Sentrum" {
		t.Fatalf("unexpected jsonpath expectation %+v", jp)
	}
}

func TestLoadSuite_Invalid(t *testing.T) {
	cases := map[string]string{
		"no name":       "queries:\n  - name: a\n    points: [x]\n",
		"no queries":    "name: s\n",
		"bad operator":  "name: s\noperators: [RUTER]\nqueries:\n  - name: a\n    points: [x]\n",
		"no query name": "name: s\nqueries:\n  - points: [x]\n",
		"duplicate":     "name: s\nqueries:\n  - name: a\n    points: [x]\n  - name: a\n    points: [y]\n",
		"no points":     "name: s\nqueries:\n  - name: a\n",
		"half window":   "name: s\nqueries:\n  - name: a\n    points: [x]\n    from: \"07:00\"\n",
		"neg limit":     "name: s\nqueries:\n  - name: a\n    points: [x]\n    limit: -1\n",
		"min over max":  "name: s\nqueries:\n  - name: a\n    points: [x]\n    expect:\n      min_journeys: 5\n      max_journeys: 1\n",
		"not yaml":      "name: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(t.TempDir(), "bad.yaml")
			writeFile(t, p, content)
			if _, err := NewLoader().LoadSuite(p); !domain.IsKind(err, domain.KindInvalidConfig) {
				t.Fatalf("expected invalid_config, got %v", err)
			}
		})
	}

	if _, err := NewLoader().LoadSuite(filepath.Join(t.TempDir(), "missing.yaml")); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestListSuites(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "suites", "b.yaml"), "name: Bergen\n")
	writeFile(t, filepath.Join(root, "suites", "a.yml"), "queries: []\n")
	writeFile(t, filepath.Join(root, "suites", "notes.txt"), "ignored")

	refs, err := NewLoader().ListSuites(root)
	if err != nil {
		t.Fatalf("ListSuites error: %v", err)
	}
	want := []domain.SuiteRef{
		{Name: "Bergen", Path: filepath.Join(root, "suites", "b.yaml")},
		{Name: "a", Path: filepath.Join(root, "suites", "a.yml")},
	}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Fatalf("refs (-want +got):\n%s", diff)
	}

	if _, err := NewLoader(WithSuitesDir("missing")).ListSuites(root); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
