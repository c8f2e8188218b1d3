package binenc

import (
	"fmt"

	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
)

// Record tags. Values are part of the format; append only.
const (
	tagScheduledStopPoint byte = iota + 1
	tagServiceLink
	tagLinkSequenceProjection
	tagRoutePoint
	tagPointProjection
	tagRoute
	tagPointOnRoute
	tagLine
	tagJourneyPattern
	tagStopPointInJourneyPattern
	tagServiceLinkInJourneyPattern
	tagServiceJourney
	tagTimetabledPassingTime
)

// Entity writes one tagged record.
func (e *Encoder) Entity(ent netex.Entity) {
	switch v := ent.(type) {
	case *netex.ScheduledStopPoint:
		e.Byte(tagScheduledStopPoint)
		e.ID(v.ID)
		e.String(v.Name)
	case *netex.ServiceLink:
		e.Byte(tagServiceLink)
		e.serviceLink(v)
	case *netex.LinkSequenceProjection:
		e.Byte(tagLinkSequenceProjection)
		e.linkSequenceProjection(v)
	case *netex.RoutePoint:
		e.Byte(tagRoutePoint)
		e.ID(v.ID)
		e.Uvarint(uint64(len(v.Projections)))
		for i := range v.Projections {
			e.pointProjection(&v.Projections[i])
		}
	case *netex.PointProjection:
		e.Byte(tagPointProjection)
		e.pointProjection(v)
	case *netex.Route:
		e.Byte(tagRoute)
		e.route(v)
	case *netex.PointOnRoute:
		e.Byte(tagPointOnRoute)
		e.pointOnRoute(v)
	case *netex.Line:
		e.Byte(tagLine)
		e.ID(v.ID)
		e.String(v.Name)
		e.String(v.PublicCode)
		e.String(v.TransportMode)
	case *netex.JourneyPattern:
		e.Byte(tagJourneyPattern)
		e.journeyPattern(v)
	case *netex.StopPointInJourneyPattern:
		e.Byte(tagStopPointInJourneyPattern)
		e.stopPointInJourneyPattern(v)
	case *netex.ServiceLinkInJourneyPattern:
		e.Byte(tagServiceLinkInJourneyPattern)
		e.serviceLinkInJourneyPattern(v)
	case *netex.ServiceJourney:
		e.Byte(tagServiceJourney)
		e.serviceJourney(v)
	case *netex.TimetabledPassingTime:
		e.Byte(tagTimetabledPassingTime)
		e.passingTime(v)
	default:
		if e.err == nil {
			e.err = fmt.Errorf("binenc: unsupported entity %T", ent)
		}
	}
}

func (e *Encoder) serviceLink(v *netex.ServiceLink) {
	e.ID(v.ID)
	e.ID(v.FromPointRef)
	e.ID(v.ToPointRef)
	e.Varint(v.Distance.Millis())
	e.Uvarint(uint64(len(v.Projections)))
	for i := range v.Projections {
		e.linkSequenceProjection(&v.Projections[i])
	}
}

func (e *Encoder) linkSequenceProjection(v *netex.LinkSequenceProjection) {
	e.ID(v.ID)
	e.Points(v.Trajectory)
}

func (e *Encoder) pointProjection(v *netex.PointProjection) {
	e.ID(v.ID)
	e.ID(v.ProjectedPointRef)
}

func (e *Encoder) route(v *netex.Route) {
	e.ID(v.ID)
	e.String(v.Name)
	e.String(v.ShortName)
	e.ID(v.LineRef)
	e.String(v.DirectionType)
	e.Uvarint(uint64(len(v.PointsInSequence)))
	for i := range v.PointsInSequence {
		e.pointOnRoute(&v.PointsInSequence[i])
	}
}

func (e *Encoder) pointOnRoute(v *netex.PointOnRoute) {
	e.ID(v.ID)
	e.Int(v.Order)
	e.ID(v.RoutePointRef)
}

func (e *Encoder) journeyPattern(v *netex.JourneyPattern) {
	e.ID(v.ID)
	e.String(v.Name)
	e.ID(v.RouteRef)
	e.Uvarint(uint64(len(v.PointsInSequence)))
	for i := range v.PointsInSequence {
		e.stopPointInJourneyPattern(&v.PointsInSequence[i])
	}
	e.Uvarint(uint64(len(v.LinksInSequence)))
	for i := range v.LinksInSequence {
		e.serviceLinkInJourneyPattern(&v.LinksInSequence[i])
	}
}

func (e *Encoder) stopPointInJourneyPattern(v *netex.StopPointInJourneyPattern) {
	e.ID(v.ID)
	e.Int(v.Order)
	e.ID(v.ScheduledStopPointRef)
}

func (e *Encoder) serviceLinkInJourneyPattern(v *netex.ServiceLinkInJourneyPattern) {
	e.ID(v.ID)
	e.Int(v.Order)
	e.ID(v.ServiceLinkRef)
}

func (e *Encoder) serviceJourney(v *netex.ServiceJourney) {
	e.ID(v.ID)
	e.String(v.Name)
	e.String(v.TransportMode)
	e.ID(v.JourneyPatternRef)
	e.ID(v.LineRef)
	e.Uvarint(uint64(len(v.PassingTimes)))
	for i := range v.PassingTimes {
		e.passingTime(&v.PassingTimes[i])
	}
}

func (e *Encoder) passingTime(v *netex.TimetabledPassingTime) {
	e.ID(v.ID)
	e.ID(v.StopPointInJourneyPatternRef)
	e.Bool(v.HasArrival)
	e.TimeOfDay(v.ArrivalTime)
	e.Int(v.ArrivalDayOffset)
	e.Bool(v.HasDeparture)
	e.TimeOfDay(v.DepartureTime)
	e.Int(v.DepartureDayOffset)
}

// Entity reads one tagged record.
func (d *Decoder) Entity() (netex.Entity, error) {
	tag := d.Byte()
	if d.err != nil {
		return nil, d.err
	}
	var ent netex.Entity
	switch tag {
	case tagScheduledStopPoint:
		ent = &netex.ScheduledStopPoint{ID: d.ID(), Name: d.String()}
	case tagServiceLink:
		ent = d.serviceLink()
	case tagLinkSequenceProjection:
		v := d.linkSequenceProjection()
		ent = &v
	case tagRoutePoint:
		rp := &netex.RoutePoint{ID: d.ID()}
		rp.Projections = list(d, d.pointProjection)
		ent = rp
	case tagPointProjection:
		v := d.pointProjection()
		ent = &v
	case tagRoute:
		ent = d.route()
	case tagPointOnRoute:
		v := d.pointOnRoute()
		ent = &v
	case tagLine:
		ent = &netex.Line{ID: d.ID(), Name: d.String(), PublicCode: d.String(), TransportMode: d.String()}
	case tagJourneyPattern:
		ent = d.journeyPattern()
	case tagStopPointInJourneyPattern:
		v := d.stopPointInJourneyPattern()
		ent = &v
	case tagServiceLinkInJourneyPattern:
		v := d.serviceLinkInJourneyPattern()
		ent = &v
	case tagServiceJourney:
		ent = d.serviceJourney()
	case tagTimetabledPassingTime:
		v := d.passingTime()
		ent = &v
	default:
		d.fail(fmt.Errorf("%w: unknown record tag %d", ErrCorrupt, tag))
	}
	if d.err != nil {
		return nil, d.err
	}
	return ent, nil
}

func list[T any](d *Decoder, read func() T) []T {
	n := d.Len()
	if d.err != nil || n == 0 {
		return nil
	}
	out := make([]T, 0, min(n, 1024))
	for range n {
		v := read()
		if d.err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

func (d *Decoder) serviceLink() *netex.ServiceLink {
	v := &netex.ServiceLink{ID: d.ID(), FromPointRef: d.ID(), ToPointRef: d.ID()}
	v.Distance = geo.Distance(d.Varint())
	v.Projections = list(d, d.linkSequenceProjection)
	return v
}

func (d *Decoder) linkSequenceProjection() netex.LinkSequenceProjection {
	return netex.LinkSequenceProjection{ID: d.ID(), Trajectory: d.Points()}
}

func (d *Decoder) pointProjection() netex.PointProjection {
	return netex.PointProjection{ID: d.ID(), ProjectedPointRef: d.ID()}
}

func (d *Decoder) route() *netex.Route {
	v := &netex.Route{ID: d.ID(), Name: d.String(), ShortName: d.String(), LineRef: d.ID(), DirectionType: d.String()}
	v.PointsInSequence = list(d, d.pointOnRoute)
	return v
}

func (d *Decoder) pointOnRoute() netex.PointOnRoute {
	return netex.PointOnRoute{ID: d.ID(), Order: d.Int(), RoutePointRef: d.ID()}
}

func (d *Decoder) journeyPattern() *netex.JourneyPattern {
	v := &netex.JourneyPattern{ID: d.ID(), Name: d.String(), RouteRef: d.ID()}
	v.PointsInSequence = list(d, d.stopPointInJourneyPattern)
	v.LinksInSequence = list(d, d.serviceLinkInJourneyPattern)
	return v
}

func (d *Decoder) stopPointInJourneyPattern() netex.StopPointInJourneyPattern {
	return netex.StopPointInJourneyPattern{ID: d.ID(), Order: d.Int(), ScheduledStopPointRef: d.ID()}
}

func (d *Decoder) serviceLinkInJourneyPattern() netex.ServiceLinkInJourneyPattern {
	return netex.ServiceLinkInJourneyPattern{ID: d.ID(), Order: d.Int(), ServiceLinkRef: d.ID()}
}

func (d *Decoder) serviceJourney() *netex.ServiceJourney {
	v := &netex.ServiceJourney{
		ID:                d.ID(),
		Name:              d.String(),
		TransportMode:     d.String(),
		JourneyPatternRef: d.ID(),
		LineRef:           d.ID(),
	}
	v.PassingTimes = list(d, d.passingTime)
	return v
}

func (d *Decoder) passingTime() netex.TimetabledPassingTime {
	return netex.TimetabledPassingTime{
		ID:                           d.ID(),
		StopPointInJourneyPatternRef: d.ID(),
		HasArrival:                   d.Bool(),
		ArrivalTime:                  d.TimeOfDay(),
		ArrivalDayOffset:             d.Int(),
		HasDeparture:                 d.Bool(),
		DepartureTime:                d.TimeOfDay(),
		DepartureDayOffset:           d.Int(),
	}
}
