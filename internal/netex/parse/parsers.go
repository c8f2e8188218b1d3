package parse

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"

	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
)

// Parsers fans tokens out to one parser per top-level kind.
type Parsers struct {
	parsers []*EntityParser
}

// DefaultParsers returns fresh parsers for every top-level kind. Parsers hold state, so each
// document needs its own set.
func DefaultParsers(in *netex.Interner) *Parsers {
	ps := []*EntityParser{
		scheduledStopPointParser(),
		serviceLinkParser(),
		routePointParser(),
		routeParser(),
		lineParser(),
		journeyPatternParser(),
		serviceJourneyParser(),
	}
	for _, p := range ps {
		p.withInterner(in)
	}
	return &Parsers{parsers: ps}
}

func (ps *Parsers) Handle(tok xml.Token) error {
	for _, p := range ps.parsers {
		if err := p.Handle(tok); err != nil {
			return err
		}
	}
	return nil
}

// Close checks for unterminated entities.
func (ps *Parsers) Close() error {
	var errs []error
	for _, p := range ps.parsers {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

// Drain collects every completed entity into set.
func (ps *Parsers) Drain(set *netex.Set) error {
	for _, p := range ps.parsers {
		for _, e := range p.Drain() {
			if err := set.Add(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func scheduledStopPointParser() *EntityParser {
	return NewEntityParser(netex.KindScheduledStopPoint, func(d *Data) (netex.Entity, error) {
		return &netex.ScheduledStopPoint{ID: d.ID, Name: d.Content("Name")}, nil
	}, fields("Name")...)
}

func serviceLinkParser() *EntityParser {
	projections := NewEntityParser(netex.KindLinkSequenceProjection, func(d *Data) (netex.Entity, error) {
		points, err := geo.Sequence(d.Content("posList"))
		if err != nil {
			return nil, err
		}
		return &netex.LinkSequenceProjection{ID: d.ID, Trajectory: points}, nil
	}, fields("posList")...)

	return NewEntityParser(netex.KindServiceLink, func(d *Data) (netex.Entity, error) {
		link := &netex.ServiceLink{
			ID:           d.ID,
			FromPointRef: d.Ref("FromPointRef"),
			ToPointRef:   d.Ref("ToPointRef"),
		}
		if d.HasContent("Distance") {
			dist, err := geo.ParseDistance(d.Content("Distance"))
			if err != nil {
				return nil, err
			}
			link.Distance = dist
		}
		for _, e := range d.List("projections") {
			if lsp, ok := e.(*netex.LinkSequenceProjection); ok {
				link.Projections = append(link.Projections, *lsp)
			}
		}
		return link, nil
	}, fields("FromPointRef", "ToPointRef", "Distance")...).
		WithSublist("projections", projections)
}

func routePointParser() *EntityParser {
	projections := NewEntityParser(netex.KindPointProjection, func(d *Data) (netex.Entity, error) {
		return &netex.PointProjection{ID: d.ID, ProjectedPointRef: d.Ref("ProjectedPointRef")}, nil
	}, fields("ProjectedPointRef")...)

	return NewEntityParser(netex.KindRoutePoint, func(d *Data) (netex.Entity, error) {
		rp := &netex.RoutePoint{ID: d.ID}
		for _, e := range d.List("projections") {
			if pp, ok := e.(*netex.PointProjection); ok {
				rp.Projections = append(rp.Projections, *pp)
			}
		}
		return rp, nil
	}).WithSublist("projections", projections)
}

func routeParser() *EntityParser {
	points := NewEntityParser(netex.KindPointOnRoute, func(d *Data) (netex.Entity, error) {
		return &netex.PointOnRoute{ID: d.ID, Order: d.Order, RoutePointRef: d.Ref("RoutePointRef")}, nil
	}, fields("RoutePointRef")...)

	return NewEntityParser(netex.KindRoute, func(d *Data) (netex.Entity, error) {
		r := &netex.Route{
			ID:            d.ID,
			Name:          d.Content("Name"),
			ShortName:     d.Content("ShortName"),
			LineRef:       d.Ref("LineRef"),
			DirectionType: d.Content("DirectionType"),
		}
		for _, e := range d.List("pointsInSequence") {
			if pr, ok := e.(*netex.PointOnRoute); ok {
				r.PointsInSequence = append(r.PointsInSequence, *pr)
			}
		}
		return r, nil
	}, fields("Name", "ShortName", "LineRef", "DirectionType")...).
		WithSublist("pointsInSequence", points)
}

func lineParser() *EntityParser {
	return NewEntityParser(netex.KindLine, func(d *Data) (netex.Entity, error) {
		return &netex.Line{
			ID:            d.ID,
			Name:          d.Content("Name"),
			PublicCode:    d.Content("PublicCode"),
			TransportMode: d.Content("TransportMode"),
		}, nil
	}, fields("Name", "PublicCode", "TransportMode")...)
}

func journeyPatternParser() *EntityParser {
	stops := NewEntityParser(netex.KindStopPointInJourneyPattern, func(d *Data) (netex.Entity, error) {
		return &netex.StopPointInJourneyPattern{
			ID:                    d.ID,
			Order:                 d.Order,
			ScheduledStopPointRef: d.Ref("ScheduledStopPointRef"),
		}, nil
	}, fields("ScheduledStopPointRef")...)

	links := NewEntityParser(netex.KindServiceLinkInJourneyPattern, func(d *Data) (netex.Entity, error) {
		return &netex.ServiceLinkInJourneyPattern{
			ID:             d.ID,
			Order:          d.Order,
			ServiceLinkRef: d.Ref("ServiceLinkRef"),
		}, nil
	}, fields("ServiceLinkRef")...)

	return NewEntityParser(netex.KindJourneyPattern, func(d *Data) (netex.Entity, error) {
		jp := &netex.JourneyPattern{
			ID:       d.ID,
			Name:     d.Content("Name"),
			RouteRef: d.Ref("RouteRef"),
		}
		for _, e := range d.List("pointsInSequence") {
			if sp, ok := e.(*netex.StopPointInJourneyPattern); ok {
				jp.PointsInSequence = append(jp.PointsInSequence, *sp)
			}
		}
		for _, e := range d.List("linksInSequence") {
			if sl, ok := e.(*netex.ServiceLinkInJourneyPattern); ok {
				jp.LinksInSequence = append(jp.LinksInSequence, *sl)
			}
		}
		jp.SortSequences()
		return jp, nil
	}, fields("Name", "RouteRef")...).
		WithSublist("pointsInSequence", stops).
		WithSublist("linksInSequence", links)
}

func serviceJourneyParser() *EntityParser {
	passingTimes := NewEntityParser(netex.KindTimetabledPassingTime, func(d *Data) (netex.Entity, error) {
		pt := &netex.TimetabledPassingTime{
			ID:                           d.ID,
			StopPointInJourneyPatternRef: d.Ref("StopPointInJourneyPatternRef"),
		}
		var err error
		if pt.ArrivalTime, pt.HasArrival, err = timeField(d, "ArrivalTime"); err != nil {
			return nil, err
		}
		if pt.DepartureTime, pt.HasDeparture, err = timeField(d, "DepartureTime"); err != nil {
			return nil, err
		}
		if pt.ArrivalDayOffset, err = intField(d, "ArrivalDayOffset"); err != nil {
			return nil, err
		}
		if pt.DepartureDayOffset, err = intField(d, "DepartureDayOffset"); err != nil {
			return nil, err
		}
		return pt, nil
	}, fields("StopPointInJourneyPatternRef", "ArrivalTime", "DepartureTime", "ArrivalDayOffset", "DepartureDayOffset")...)

	return NewEntityParser(netex.KindServiceJourney, func(d *Data) (netex.Entity, error) {
		sj := &netex.ServiceJourney{
			ID:                d.ID,
			Name:              d.Content("Name"),
			TransportMode:     d.Content("TransportMode"),
			JourneyPatternRef: d.Ref("JourneyPatternRef"),
			LineRef:           d.Ref("LineRef"),
		}
		if sj.JourneyPatternRef.IsZero() {
			sj.JourneyPatternRef = d.Ref("ServiceJourneyPatternRef")
		}
		for _, e := range d.List("passingTimes") {
			if pt, ok := e.(*netex.TimetabledPassingTime); ok {
				sj.PassingTimes = append(sj.PassingTimes, *pt)
			}
		}
		return sj, nil
	}, fields("Name", "TransportMode", "JourneyPatternRef", "ServiceJourneyPatternRef", "LineRef")...).
		WithSublist("passingTimes", passingTimes)
}

func timeField(d *Data, name string) (geo.TimeOfDay, bool, error) {
	if !d.HasContent(name) {
		return 0, false, nil
	}
	t, err := geo.ParseTimeOfDay(d.Content(name))
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", name, err)
	}
	return t, true, nil
}

func intField(d *Data, name string) (int, error) {
	if !d.HasContent(name) {
		return 0, nil
	}
	n, err := strconv.Atoi(d.Content(name))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}
