package database

import (
	"slices"

	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
)

// StopPoint pairs a pattern position with the stop point it refers to. Stop is nil when
// the reference does not resolve.
type StopPoint struct {
	InPattern netex.StopPointInJourneyPattern
	Stop      *netex.ScheduledStopPoint
}

// JourneySpecification is a journey pattern with its route, line, stops and legs
// resolved.
type JourneySpecification struct {
	ID         netex.ID
	Name       string
	Route      *netex.Route
	Line       *netex.Line
	StopPoints []StopPoint
	Legs       []*ServiceLeg

	box       geo.Box
	hasBox    bool
	positions map[netex.ID]int
}

func newJourneySpecification(jp *netex.JourneyPattern, route *netex.Route, line *netex.Line, stops []StopPoint, legs []*ServiceLeg) *JourneySpecification {
	spec := &JourneySpecification{
		ID:         jp.ID,
		Name:       jp.Name,
		Route:      route,
		Line:       line,
		StopPoints: stops,
		Legs:       legs,
		positions:  make(map[netex.ID]int, len(stops)),
	}
	for i, sp := range stops {
		spec.positions[sp.InPattern.ID] = i
	}
	for _, leg := range legs {
		b, ok := leg.Box()
		if !ok {
			continue
		}
		if spec.hasBox {
			spec.box = spec.box.Combined(b)
		} else {
			spec.box, spec.hasBox = b, true
		}
	}
	return spec
}

func (s *JourneySpecification) Box() (geo.Box, bool) { return s.box, s.hasBox }

// Cells is the union of the legs' cells, sorted.
func (s *JourneySpecification) Cells(scale geo.Scale) []geo.Cell {
	var cells []geo.Cell
	for _, leg := range s.Legs {
		cells = append(cells, leg.Cells(scale)...)
	}
	slices.SortFunc(cells, geo.Cell.Compare)
	return slices.Compact(cells)
}

func (s *JourneySpecification) Overlaps(boxes []geo.Box) bool {
	if !s.hasBox {
		return false
	}
	for _, b := range boxes {
		if s.box.Overlaps(b) {
			return true
		}
	}
	return false
}

// Position is the index of a stop point of this pattern, by its
// StopPointInJourneyPattern id.
func (s *JourneySpecification) Position(stopPointInPattern netex.ID) (int, bool) {
	i, ok := s.positions[stopPointInPattern]
	return i, ok
}

func (s *JourneySpecification) LineName() string {
	if s.Line == nil {
		return ""
	}
	return s.Line.Name
}

func (s *JourneySpecification) PublicCode() string {
	if s.Line == nil {
		return ""
	}
	return s.Line.PublicCode
}

func (s *JourneySpecification) TransportMode() string {
	if s.Line == nil {
		return ""
	}
	return s.Line.TransportMode
}
