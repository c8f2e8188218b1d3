package database

import (
	"cmp"
	"slices"
	"time"

	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
)

// ScheduledStop is one passing of a journey at a stop point. Passings that do not resolve
// against the pattern keep a nil Stop and sort last.
type ScheduledStop struct {
	ID              netex.ID
	Position        int
	Stop            *netex.ScheduledStopPoint
	Arrival         geo.TimeOfDay
	ArrivalOffset   int
	Departure       geo.TimeOfDay
	DepartureOffset int
}

func (s ScheduledStop) Name() string { return stopName(s.Stop) }

// Timespan runs from arrival to departure.
func (s ScheduledStop) Timespan() geo.Timespan {
	ts, err := geo.NewTimespan(s.Arrival, s.ArrivalOffset, s.Departure, s.DepartureOffset)
	if err != nil {
		return geo.Span(s.Arrival, s.Departure)
	}
	return ts
}

func (s ScheduledStop) absDeparture() int64 {
	return int64(s.Departure) + int64(s.DepartureOffset)*24*3600
}

// Journey is a service journey with its passing times resolved and ordered along its
// journey specification.
type Journey struct {
	ID            netex.ID
	Name          string
	TransportMode string
	Spec          *JourneySpecification
	Stops         []ScheduledStop

	timespan geo.Timespan
}

func newJourney(sj *netex.ServiceJourney, spec *JourneySpecification) *Journey {
	j := &Journey{
		ID:            sj.ID,
		Name:          sj.Name,
		TransportMode: sj.TransportMode,
		Spec:          spec,
		Stops:         make([]ScheduledStop, 0, len(sj.PassingTimes)),
	}
	if j.TransportMode == "" {
		j.TransportMode = spec.TransportMode()
	}
	for _, pt := range sj.PassingTimes {
		arr, arrOff := pt.Arrival()
		dep, depOff := pt.Departure()
		stop := ScheduledStop{
			ID:              pt.ID,
			Position:        len(spec.StopPoints),
			Arrival:         arr,
			ArrivalOffset:   arrOff,
			Departure:       dep,
			DepartureOffset: depOff,
		}
		if pos, ok := spec.Position(pt.StopPointInJourneyPatternRef); ok {
			stop.Position = pos
			stop.Stop = spec.StopPoints[pos].Stop
		}
		j.Stops = append(j.Stops, stop)
	}
	slices.SortStableFunc(j.Stops, func(a, b ScheduledStop) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.absDeparture(), b.absDeparture()))
	})
	j.timespan = j.computeTimespan()
	return j
}

func (j *Journey) computeTimespan() geo.Timespan {
	if len(j.Stops) == 0 {
		return geo.Timespan{}
	}
	first, last := j.Stops[0], j.Stops[len(j.Stops)-1]
	ts, err := geo.NewTimespan(first.Departure, first.DepartureOffset, last.Arrival, last.ArrivalOffset)
	if err != nil {
		return geo.Span(first.Departure, last.Arrival)
	}
	return ts
}

// Start is the departure from the first stop.
func (j *Journey) Start() (geo.TimeOfDay, int) { return j.timespan.Start, j.timespan.StartOffset }

// End is the arrival at the last stop.
func (j *Journey) End() (geo.TimeOfDay, int) { return j.timespan.End, j.timespan.EndOffset }

func (j *Journey) Timespan() geo.Timespan { return j.timespan }

func (j *Journey) ScaledTimespans(accuracy time.Duration) []geo.Timespan {
	return j.timespan.Timespans(accuracy)
}

// During reports whether the journey is under way at some point of ts.
func (j *Journey) During(ts geo.Timespan) bool {
	return len(j.Stops) > 0 && j.timespan.Overlaps(ts)
}

func (j *Journey) Line() *netex.Line { return j.Spec.Line }

// Compare orders journeys by start time, then id.
func (j *Journey) Compare(other *Journey) int {
	a, b := j.timespan, other.timespan
	return cmp.Or(
		cmp.Compare(a.StartOffset, b.StartOffset),
		cmp.Compare(a.Start, b.Start),
		j.ID.Compare(other.ID),
	)
}
