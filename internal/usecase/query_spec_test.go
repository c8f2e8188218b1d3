package usecase

import (
	"testing"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/geo"
)

func TestParseQuerySpec(t *testing.T) {
	q, err := ParseQuerySpec(domain.QuerySpec{
		Points: []string{"59.9111, 10.7528"},
		From:   "23:30",
		To:     "00:30+1",
		Where:  "Minutes > 5",
		Limit:  3,
	})
	if err != nil {
		t.Fatalf("ParseQuerySpec error: %v", err)
	}
	if q.Points[0] != geo.Pt(59.9111, 10.7528) || q.Accuracy != DefaultAccuracy || q.Limit != 3 {
		t.Fatalf("unexpected query %+v", q)
	}
	if q.Window == nil || q.Window.StartOffset != 0 || q.Window.EndOffset != 1 {
		t.Fatalf("unexpected window %+v", q.Window)
	}

	bad := map[string]domain.QuerySpec{
		"no points":     {},
		"point":         {Points: []string{"59.9"}},
		"point text":    {Points: []string{"north,east"}},
		"accuracy":      {Points: []string{"59.9,10.7"}, Accuracy: "far"},
		"zero accuracy": {Points: []string{"59.9,10.7"}, Accuracy: "0m"},
		"limit":         {Points: []string{"59.9,10.7"}, Limit: -1},
		"from":          {Points: []string{"59.9,10.7"}, From: "25:00", To: "26:00"},
		"backwards":     {Points: []string{"59.9,10.7"}, From: "09:00", To: "08:00"},
		"where":         {Points: []string{"59.9,10.7"}, Where: "Minutes >"},
	}
	for name, spec := range bad {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseQuerySpec(spec); !domain.IsKind(err, domain.KindInvalidConfig) {
				t.Fatalf("expected invalid_config, got %v", err)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    geo.TimeOfDay
		days    int
		wantErr bool
	}{
		{in: "07:30", want: geo.Clock(7, 30, 0)},
		{in: "23:59:59", want: geo.Clock(23, 59, 59)},
		{in: "00:05+1", want: geo.Clock(0, 5, 0), days: 1},
		{in: "25:00", wantErr: true},
		{in: "00:05+x", wantErr: true},
		{in: "00:05+-1", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, days, err := ParseClock(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want || days != tc.days {
				t.Fatalf("got %s+%d, want %s+%d", got, days, tc.want, tc.days)
			}
		})
	}
}
