package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const queryDoc = `{
  "name": "query",
  "journeys": [
    {"id": "RUT:ServiceJourney:1", "line": "Sentrum", "start_minute": 480, "stop_names": ["Jernbanetorget", "Stortinget"]},
    {"id": "RUT:ServiceJourney:2", "line": "Sentrum", "start_minute": 1430, "stop_names": []}
  ]
}`

func TestApply_EmptyRules(t *testing.T) {
	values, results := Apply([]byte(queryDoc), Rules{})
	if len(values) != 0 || len(results) != 0 {
		t.Fatalf("expected nothing, got %v %v", values, results)
	}
}

func TestApply_Success(t *testing.T) {
	values, res := Apply([]byte(queryDoc), Rules{
		"first": "$.journeys[0].id",
		"ids":   "$.journeys[*].id",
		"start": "$.journeys[1].start_minute",
	})

	want := map[string]string{
		"first": "RUT:ServiceJourney:1",
		"ids":   `["RUT:ServiceJourney:1","RUT:ServiceJourney:2"]`,
		"start": "1430",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	for _, r := range res {
		if !r.Success {
			t.Fatalf("expected all success, got %+v", r)
		}
	}
}

func TestApply_Failures(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		expr string
	}{
		{"not json", "hello", "$.name"},
		{"bad expression", queryDoc, "$.journeys["},
		{"empty expression", queryDoc, ""},
		{"missing value", queryDoc, "$.nope"},
		{"empty array", queryDoc, "$.journeys[1].stop_names"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values, res := Apply([]byte(tc.doc), Rules{"x": tc.expr})
			if len(values) != 0 {
				t.Fatalf("expected no values, got %v", values)
			}
			if len(res) != 1 || res[0].Success {
				t.Fatalf("expected one failure, got %+v", res)
			}
		})
	}
}

func TestSelect(t *testing.T) {
	got, err := Select([]byte(queryDoc), "$.journeys[0].stop_names")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]any{"Jernbanetorget", "Stortinget"}, got); diff != "" {
		t.Fatalf("select (-want +got):\n%s", diff)
	}
}

func TestParseRules(t *testing.T) {
	got, err := ParseRules([]string{"lines=$.journeys[*].line", " $.name ", ""})
	if err != nil {
		t.Fatal(err)
	}
	want := Rules{"lines": "$.journeys[*].line", "$.name": "$.name"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rules (-want +got):\n%s", diff)
	}

	if _, err := ParseRules([]string{"a=$.x", "a=$.y"}); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	if _, err := ParseRules([]string{"=$.x"}); err == nil {
		t.Fatalf("expected missing name error")
	}
}
