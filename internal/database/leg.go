package database

import (
	"slices"

	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
)

// ServiceLeg is a service link resolved against its stop points, at a position in a
// journey pattern.
type ServiceLeg struct {
	ID    netex.ID
	Order int
	From  *netex.ScheduledStopPoint
	To    *netex.ScheduledStopPoint
	Link  *netex.ServiceLink

	box    geo.Box
	hasBox bool
}

func newServiceLeg(link *netex.ServiceLink, order int, from, to *netex.ScheduledStopPoint) *ServiceLeg {
	leg := &ServiceLeg{ID: link.ID, Order: order, From: from, To: to, Link: link}
	leg.box, leg.hasBox = link.Box()
	return leg
}

// Box is the combined box of the link's projections.
func (l *ServiceLeg) Box() (geo.Box, bool) { return l.box, l.hasBox }

// Cells are the distinct grid cells the link's trajectory points fall in, sorted.
func (l *ServiceLeg) Cells(scale geo.Scale) []geo.Cell {
	var cells []geo.Cell
	for _, p := range l.Link.Points() {
		cells = append(cells, scale.CellOf(p))
	}
	slices.SortFunc(cells, geo.Cell.Compare)
	return slices.Compact(cells)
}

func (l *ServiceLeg) Overlaps(boxes []geo.Box) bool {
	if !l.hasBox {
		return false
	}
	for _, b := range boxes {
		if l.box.Overlaps(b) {
			return true
		}
	}
	return false
}

func (l *ServiceLeg) FromName() string { return stopName(l.From) }

func (l *ServiceLeg) ToName() string { return stopName(l.To) }

func stopName(s *netex.ScheduledStopPoint) string {
	if s == nil {
		return ""
	}
	return s.Name
}
