package geo

import "testing"

func TestUnit_ContainsNo(t *testing.T) {
	cases := []struct {
		unit, other Unit
		want        int64
	}{
		{MM, MM, 1},
		{CM, MM, 10},
		{M, MM, 1_000},
		{M, CM, 100},
		{KM, MM, 1_000_000},
		{KM, CM, 100_000},
		{KM, M, 1_000},
		{MM, CM, 0},
		{CM, M, 0},
		{M, KM, 0},
	}
	for _, tc := range cases {
		if got := tc.unit.ContainsNo(tc.other); got != tc.want {
			t.Fatalf("%s.ContainsNo(%s)=%d want=%d", tc.unit, tc.other, got, tc.want)
		}
	}
}

func TestUnit_ToMeters(t *testing.T) {
	if got := CM.ToMeters(1000); got != 10 {
		t.Fatalf("CM.ToMeters(1000)=%v", got)
	}
}

func TestDistance_Conversions(t *testing.T) {
	if got := Of(350, MM).Meters(); got != 0.35 {
		t.Fatalf("350mm=%vm", got)
	}
	if got := OfFloat(123234.345, M).To(M); got != 123234.345 {
		t.Fatalf("round trip=%v", got)
	}
	if got := OfFloat(345.4, CM).To(M); got != 3.454 {
		t.Fatalf("345.4cm=%vm", got)
	}
	if got := OfFloat(345.4, M).To(CM); got != 34540 {
		t.Fatalf("345.4m=%vcm", got)
	}
	if got := Of(350, CM).To(M); got != 3.5 {
		t.Fatalf("350cm=%vm", got)
	}
}

func TestDistance_NegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	_ = Of(-1, M)
}

func TestParseDistance(t *testing.T) {
	cases := []struct {
		in   string
		want Distance
	}{
		{"10m", Of(10, M)},
		{"2.5km", Of(2500, M)},
		{"350mm", Of(350, MM)},
		{"12 cm", Of(120, MM)},
		{"1234.5678", Of(1_234_568, MM)},
	}
	for _, tc := range cases {
		got, err := ParseDistance(tc.in)
		if err != nil {
			t.Fatalf("ParseDistance(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDistance(%q)=%s want=%s", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "abc", "-3m"} {
		if _, err := ParseDistance(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
