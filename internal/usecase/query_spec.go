package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/geo"
)

// ParseQuerySpec turns the textual form of a query, as typed on the command line or
// written in a suite, into a JourneyQuery. The filter is compiled to report syntax errors
// early. A blank accuracy reads as DefaultAccuracy.
func ParseQuerySpec(spec domain.QuerySpec) (JourneyQuery, error) {
	q := JourneyQuery{Where: spec.Where, Limit: spec.Limit, Accuracy: DefaultAccuracy}

	if len(spec.Points) == 0 {
		return q, invalidField("point", "", fmt.Errorf("at least one point is required"))
	}
	for _, s := range spec.Points {
		p, err := ParsePoint(s)
		if err != nil {
			return q, err
		}
		q.Points = append(q.Points, p)
	}

	if strings.TrimSpace(spec.Accuracy) != "" {
		acc, err := geo.ParseDistance(spec.Accuracy)
		if err != nil || acc <= 0 {
			return q, invalidField("accuracy", spec.Accuracy, err)
		}
		q.Accuracy = acc
	}

	if q.Limit < 0 {
		return q, invalidField("limit", strconv.Itoa(q.Limit), fmt.Errorf("must not be negative"))
	}

	if spec.From != "" || spec.To != "" {
		start, startOff, err := ParseClock(spec.From)
		if err != nil {
			return q, invalidField("from", spec.From, err)
		}
		end, endOff, err := ParseClock(spec.To)
		if err != nil {
			return q, invalidField("to", spec.To, err)
		}
		ts, err := geo.NewTimespan(start, startOff, end, endOff)
		if err != nil {
			return q, invalidField("to", spec.To, err)
		}
		q.Window = &ts
	}

	if _, err := CompileWhere(q.Where); err != nil {
		return q, err
	}
	return q, nil
}

// ParsePoint reads "lat,lon".
func ParsePoint(s string) (geo.Point, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return geo.Point{}, invalidField("point", s, fmt.Errorf("want lat,lon"))
	}
	p, err := geo.ParsePoint(strings.TrimSpace(lat), strings.TrimSpace(lon))
	if err != nil {
		return geo.Point{}, invalidField("point", s, err)
	}
	return p, nil
}

// ParseClock reads HH:MM[:SS] with an optional "+N" day offset.
func ParseClock(s string) (geo.TimeOfDay, int, error) {
	clock, days, hasDays := strings.Cut(strings.TrimSpace(s), "+")
	t, err := geo.ParseTimeOfDay(clock)
	if err != nil {
		return 0, 0, err
	}
	if !hasDays {
		return t, 0, nil
	}
	n, err := strconv.Atoi(days)
	if err != nil || n < 0 {
		return 0, 0, fmt.Errorf("bad day offset %q", days)
	}
	return t, n, nil
}

func invalidField(name, value string, err error) error {
	if err == nil {
		err = fmt.Errorf("must be positive")
	}
	return &domain.OpError{
		Op:   "query." + name,
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%w: %s %q: %v", domain.ErrInvalidConfig, name, value, err),
	}
}
