package netex

import (
	"slices"

	"github.com/stopnorway/stopnorway/internal/geo"
)

// Kind names an entity type by its NeTEx element name.
type Kind string

const (
	KindScheduledStopPoint          Kind = "ScheduledStopPoint"
	KindServiceLink                 Kind = "ServiceLink"
	KindLinkSequenceProjection      Kind = "LinkSequenceProjection"
	KindRoutePoint                  Kind = "RoutePoint"
	KindPointProjection             Kind = "PointProjection"
	KindRoute                       Kind = "Route"
	KindPointOnRoute                Kind = "PointOnRoute"
	KindLine                        Kind = "Line"
	KindJourneyPattern              Kind = "JourneyPattern"
	KindStopPointInJourneyPattern   Kind = "StopPointInJourneyPattern"
	KindServiceLinkInJourneyPattern Kind = "ServiceLinkInJourneyPattern"
	KindServiceJourney              Kind = "ServiceJourney"
	KindTimetabledPassingTime       Kind = "TimetabledPassingTime"
)

// TopLevelKinds are the kinds that appear directly in a dataset. The others only occur
// nested inside one of these.
var TopLevelKinds = []Kind{
	KindScheduledStopPoint,
	KindServiceLink,
	KindRoutePoint,
	KindRoute,
	KindLine,
	KindJourneyPattern,
	KindServiceJourney,
}

// Entity is any identified NeTEx object.
type Entity interface {
	EntityID() ID
	Kind() Kind
}

type ScheduledStopPoint struct {
	ID   ID
	Name string
}

func (e *ScheduledStopPoint) EntityID() ID { return e.ID }
func (e *ScheduledStopPoint) Kind() Kind   { return KindScheduledStopPoint }

// LinkSequenceProjection is the drawn path of a service link.
type LinkSequenceProjection struct {
	ID         ID
	Trajectory []geo.Point
}

func (e *LinkSequenceProjection) EntityID() ID { return e.ID }
func (e *LinkSequenceProjection) Kind() Kind   { return KindLinkSequenceProjection }

func (e *LinkSequenceProjection) Box() (geo.Box, bool) { return geo.BoxOf(e.Trajectory) }

func (e *LinkSequenceProjection) Start() (geo.Point, bool) {
	if len(e.Trajectory) == 0 {
		return geo.Point{}, false
	}
	return e.Trajectory[0], true
}

func (e *LinkSequenceProjection) End() (geo.Point, bool) {
	if len(e.Trajectory) == 0 {
		return geo.Point{}, false
	}
	return e.Trajectory[len(e.Trajectory)-1], true
}

// ServiceLink connects two scheduled stop points.
type ServiceLink struct {
	ID           ID
	FromPointRef ID
	ToPointRef   ID
	// Distance is zero when the dataset leaves it out.
	Distance    geo.Distance
	Projections []LinkSequenceProjection
}

func (e *ServiceLink) EntityID() ID { return e.ID }
func (e *ServiceLink) Kind() Kind   { return KindServiceLink }

// Points is every trajectory point of every projection, in order.
func (e *ServiceLink) Points() []geo.Point {
	var out []geo.Point
	for _, p := range e.Projections {
		out = append(out, p.Trajectory...)
	}
	return out
}

func (e *ServiceLink) Box() (geo.Box, bool) {
	var (
		box   geo.Box
		found bool
	)
	for i := range e.Projections {
		b, ok := e.Projections[i].Box()
		if !ok {
			continue
		}
		if found {
			box = box.Combined(b)
		} else {
			box, found = b, true
		}
	}
	return box, found
}

func (e *ServiceLink) Start() (geo.Point, bool) {
	for i := range e.Projections {
		if p, ok := e.Projections[i].Start(); ok {
			return p, true
		}
	}
	return geo.Point{}, false
}

func (e *ServiceLink) End() (geo.Point, bool) {
	for i := len(e.Projections) - 1; i >= 0; i-- {
		if p, ok := e.Projections[i].End(); ok {
			return p, true
		}
	}
	return geo.Point{}, false
}

type PointProjection struct {
	ID                ID
	ProjectedPointRef ID
}

func (e *PointProjection) EntityID() ID { return e.ID }
func (e *PointProjection) Kind() Kind   { return KindPointProjection }

type RoutePoint struct {
	ID          ID
	Projections []PointProjection
}

func (e *RoutePoint) EntityID() ID { return e.ID }
func (e *RoutePoint) Kind() Kind   { return KindRoutePoint }

type PointOnRoute struct {
	ID            ID
	Order         int
	RoutePointRef ID
}

func (e *PointOnRoute) EntityID() ID { return e.ID }
func (e *PointOnRoute) Kind() Kind   { return KindPointOnRoute }

type Route struct {
	ID               ID
	Name             string
	ShortName        string
	LineRef          ID
	DirectionType    string
	PointsInSequence []PointOnRoute
}

func (e *Route) EntityID() ID { return e.ID }
func (e *Route) Kind() Kind   { return KindRoute }

type Line struct {
	ID            ID
	Name          string
	PublicCode    string
	TransportMode string
}

func (e *Line) EntityID() ID { return e.ID }
func (e *Line) Kind() Kind   { return KindLine }

type StopPointInJourneyPattern struct {
	ID                    ID
	Order                 int
	ScheduledStopPointRef ID
}

func (e *StopPointInJourneyPattern) EntityID() ID { return e.ID }
func (e *StopPointInJourneyPattern) Kind() Kind   { return KindStopPointInJourneyPattern }

type ServiceLinkInJourneyPattern struct {
	ID             ID
	Order          int
	ServiceLinkRef ID
}

func (e *ServiceLinkInJourneyPattern) EntityID() ID { return e.ID }
func (e *ServiceLinkInJourneyPattern) Kind() Kind   { return KindServiceLinkInJourneyPattern }

// JourneyPattern is the ordered stops and links a group of journeys follows.
type JourneyPattern struct {
	ID               ID
	Name             string
	RouteRef         ID
	PointsInSequence []StopPointInJourneyPattern
	LinksInSequence  []ServiceLinkInJourneyPattern
}

func (e *JourneyPattern) EntityID() ID { return e.ID }
func (e *JourneyPattern) Kind() Kind   { return KindJourneyPattern }

// SortSequences orders both sequences by their order attribute.
func (e *JourneyPattern) SortSequences() {
	slices.SortStableFunc(e.PointsInSequence, func(a, b StopPointInJourneyPattern) int { return a.Order - b.Order })
	slices.SortStableFunc(e.LinksInSequence, func(a, b ServiceLinkInJourneyPattern) int { return a.Order - b.Order })
}

// TimetabledPassingTime is when a journey passes one stop point of its pattern. Either
// time may be missing at the ends of a journey.
type TimetabledPassingTime struct {
	ID                           ID
	StopPointInJourneyPatternRef ID
	ArrivalTime                  geo.TimeOfDay
	HasArrival                   bool
	ArrivalDayOffset             int
	DepartureTime                geo.TimeOfDay
	HasDeparture                 bool
	DepartureDayOffset           int
}

func (e *TimetabledPassingTime) EntityID() ID { return e.ID }
func (e *TimetabledPassingTime) Kind() Kind   { return KindTimetabledPassingTime }

// Arrival falls back to the departure time.
func (e *TimetabledPassingTime) Arrival() (geo.TimeOfDay, int) {
	if e.HasArrival {
		return e.ArrivalTime, e.ArrivalDayOffset
	}
	return e.DepartureTime, e.DepartureDayOffset
}

// Departure falls back to the arrival time.
func (e *TimetabledPassingTime) Departure() (geo.TimeOfDay, int) {
	if e.HasDeparture {
		return e.DepartureTime, e.DepartureDayOffset
	}
	return e.ArrivalTime, e.ArrivalDayOffset
}

type ServiceJourney struct {
	ID                ID
	Name              string
	TransportMode     string
	JourneyPatternRef ID
	LineRef           ID
	PassingTimes      []TimetabledPassingTime
}

func (e *ServiceJourney) EntityID() ID { return e.ID }
func (e *ServiceJourney) Kind() Kind   { return KindServiceJourney }
