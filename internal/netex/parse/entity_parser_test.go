package parse

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/netex/netextest"
)

func id(op, typ, value string) netex.ID {
	return netex.ID{Operator: netex.Operator(op), Type: typ, Value: value, Version: 1}
}

func TestDocument_SharedData(t *testing.T) {
	set, err := Document(context.Background(), strings.NewReader(netextest.SharedData), netex.NewInterner())
	if err != nil {
		t.Fatalf("Document error: %v", err)
	}

	want := map[netex.Kind]int{
		netex.KindScheduledStopPoint: 3,
		netex.KindServiceLink:        2,
		netex.KindRoutePoint:         2,
		netex.KindRoute:              1,
		netex.KindLine:               1,
	}
	if diff := cmp.Diff(want, set.Counts()); diff != "" {
		t.Fatalf("unexpected counts (-want +got):\n%s", diff)
	}

	stop, ok := netex.Lookup[*netex.ScheduledStopPoint](set, id("RUT", "ScheduledStopPoint", "2"))
	if !ok || stop.Name != "Stortinget" {
		t.Fatalf("stop point: ok=%v %+v", ok, stop)
	}

	link, ok := netex.Lookup[*netex.ServiceLink](set, id("RUT", "ServiceLink", "1"))
	if !ok {
		t.Fatalf("service link missing")
	}
	wantLink := &netex.ServiceLink{
		ID:           id("RUT", "ServiceLink", "1"),
		FromPointRef: id("RUT", "ScheduledStopPoint", "1"),
		ToPointRef:   id("RUT", "ScheduledStopPoint", "2"),
		Distance:     geo.Of(612_500, geo.MM),
		Projections: []netex.LinkSequenceProjection{{
			ID:         id("RUT", "LinkSequenceProjection", "1"),
			Trajectory: []geo.Point{geo.Pt(59.911, 10.750), geo.Pt(59.912, 10.745), geo.Pt(59.913, 10.740)},
		}},
	}
	if diff := cmp.Diff(wantLink, link, cmp.AllowUnexported(geo.Point{})); diff != "" {
		t.Fatalf("unexpected link (-want +got):\n%s", diff)
	}

	route, _ := netex.Lookup[*netex.Route](set, id("RUT", "Route", "1"))
	if route.LineRef != id("RUT", "Line", "1") || route.ShortName != "Sentrum" || route.DirectionType != "outbound" {
		t.Fatalf("unexpected route %+v", route)
	}
	if len(route.PointsInSequence) != 2 || route.PointsInSequence[0].Order != 2 {
		t.Fatalf("unexpected route points %+v", route.PointsInSequence)
	}

	rp, _ := netex.Lookup[*netex.RoutePoint](set, id("RUT", "RoutePoint", "1"))
	if len(rp.Projections) != 1 || rp.Projections[0].ProjectedPointRef != id("RUT", "ScheduledStopPoint", "1") {
		t.Fatalf("unexpected route point %+v", rp)
	}
}

func TestDocument_LineData(t *testing.T) {
	set, err := Document(context.Background(), strings.NewReader(netextest.LineData), nil)
	if err != nil {
		t.Fatalf("Document error: %v", err)
	}

	jp, ok := netex.Lookup[*netex.JourneyPattern](set, id("RUT", "JourneyPattern", "1"))
	if !ok {
		t.Fatalf("journey pattern missing")
	}
	if jp.Name != "Sentrum vestover" {
		t.Fatalf("name=%q", jp.Name)
	}
	var orders []int
	for _, sp := range jp.PointsInSequence {
		orders = append(orders, sp.Order)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, orders); diff != "" {
		t.Fatalf("stop points not sorted (-want +got):\n%s", diff)
	}
	if got := jp.LinksInSequence[1].ServiceLinkRef; got != id("RUT", "ServiceLink", "2") {
		t.Fatalf("second link=%s", got)
	}

	night, _ := netex.Lookup[*netex.ServiceJourney](set, id("RUT", "ServiceJourney", "2"))
	want := []netex.TimetabledPassingTime{
		{
			ID:                           id("RUT", "TimetabledPassingTime", "2-1"),
			StopPointInJourneyPatternRef: id("RUT", "StopPointInJourneyPattern", "1"),
			DepartureTime:                geo.Clock(23, 50, 0),
			HasDeparture:                 true,
		},
		{
			ID:                           id("RUT", "TimetabledPassingTime", "2-2"),
			StopPointInJourneyPatternRef: id("RUT", "StopPointInJourneyPattern", "2"),
			DepartureTime:                geo.Clock(23, 58, 0),
			HasDeparture:                 true,
		},
		{
			ID:                           id("RUT", "TimetabledPassingTime", "2-3"),
			StopPointInJourneyPatternRef: id("RUT", "StopPointInJourneyPattern", "3"),
			ArrivalTime:                  geo.Clock(0, 5, 0),
			HasArrival:                   true,
			ArrivalDayOffset:             1,
		},
	}
	if diff := cmp.Diff(want, night.PassingTimes); diff != "" {
		t.Fatalf("unexpected passing times (-want +got):\n%s", diff)
	}
	if night.LineRef != id("RUT", "Line", "1") || night.TransportMode != "metro" {
		t.Fatalf("unexpected journey %+v", night)
	}
}

func TestDocument_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing id",
			doc:  `<r><ScheduledStopPoint version="1"><Name>x</Name></ScheduledStopPoint></r>`,
			want: "without id",
		},
		{
			name: "duplicate ref",
			doc: `<r><ServiceLink id="RUT:ServiceLink:1" version="1">
				<FromPointRef ref="RUT:ScheduledStopPoint:1"/><FromPointRef ref="RUT:ScheduledStopPoint:2"/>
				</ServiceLink></r>`,
			want: "duplicate FromPointRef",
		},
		{
			name: "bad posList",
			doc: `<r><ServiceLink id="RUT:ServiceLink:1" version="1"><projections>
				<LinkSequenceProjection id="RUT:LinkSequenceProjection:1"><posList>59.1 10.1 59.2</posList></LinkSequenceProjection>
				</projections></ServiceLink></r>`,
			want: "odd number",
		},
		{
			name: "conflicting duplicate",
			doc: `<r><ScheduledStopPoint id="RUT:ScheduledStopPoint:1" version="1"><Name>a</Name></ScheduledStopPoint>
				<ScheduledStopPoint id="RUT:ScheduledStopPoint:1" version="1"><Name>b</Name></ScheduledStopPoint></r>`,
			want: "conflicting entity",
		},
		{
			name: "bad time",
			doc: `<r><ServiceJourney id="RUT:ServiceJourney:1" version="1"><passingTimes>
				<TimetabledPassingTime><DepartureTime>soon</DepartureTime></TimetabledPassingTime>
				</passingTimes></ServiceJourney></r>`,
			want: "DepartureTime",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Document(context.Background(), strings.NewReader(tc.doc), nil)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
			if !strings.Contains(err.Error(), "line ") || !strings.Contains(err.Error(), " offset ") {
				t.Fatalf("expected error with line and offset, got %v", err)
			}
		})
	}
}

func TestDocument_ErrorOffset(t *testing.T) {
	doc := "<r>\n<ScheduledStopPoint version=\"1\"><Name>x</Name></ScheduledStopPoint></r>"
	_, err := Document(context.Background(), strings.NewReader(doc), nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	// The offset is just past the start tag that lacks an id.
	want := fmt.Sprintf("line 2 col %d offset %d:", len(`<ScheduledStopPoint version="1">`)+1, len("<r>\n<ScheduledStopPoint version=\"1\">"))
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected %q in %v", want, err)
	}
}

func TestDocument_IdenticalDuplicatesMerge(t *testing.T) {
	doc := `<r>
		<ScheduledStopPoint id="RUT:ScheduledStopPoint:1" version="1"><Name>a</Name></ScheduledStopPoint>
		<ScheduledStopPoint id="RUT:ScheduledStopPoint:1" version="1"><Name>a</Name></ScheduledStopPoint>
	</r>`
	set, err := Document(context.Background(), strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("Document error: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("expected 1 entity, got %d", set.Len())
	}
}

func TestDocument_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Document(ctx, strings.NewReader(netextest.SharedData), nil); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestField_KindFromName(t *testing.T) {
	got := fields("Name", "LineRef", "posList")
	want := []Field{{"Name", Content}, {"LineRef", Ref}, {"posList", Content}}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("unexpected fields (-want +got):\n%s", diff)
	}
}
