// Package netextest provides a small Oslo NeTEx dataset for tests.
package netextest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// SharedData holds stop points, links, route points, a route and a line.
const SharedData = `<?xml version="1.0" encoding="UTF-8"?>
<PublicationDelivery xmlns="http://www.netex.org.uk/netex" xmlns:gml="http://www.opengis.net/gml/3.2" version="1.0">
  <dataObjects>
    <CompositeFrame id="RUT:CompositeFrame:1" version="1">
      <frames>
        <ServiceFrame id="RUT:ServiceFrame:1" version="1">
          <routePoints>
            <RoutePoint id="RUT:RoutePoint:1" version="1">
              <projections>
                <PointProjection id="RUT:PointProjection:1" version="1">
                  <ProjectedPointRef ref="RUT:ScheduledStopPoint:1" version="1"/>
                </PointProjection>
              </projections>
            </RoutePoint>
            <RoutePoint id="RUT:RoutePoint:2" version="1">
              <projections>
                <PointProjection id="RUT:PointProjection:2" version="1">
                  <ProjectedPointRef ref="RUT:ScheduledStopPoint:2" version="1"/>
                </PointProjection>
              </projections>
            </RoutePoint>
          </routePoints>
          <routes>
            <Route id="RUT:Route:1" version="1">
              <Name>Jernbanetorget - Nationaltheatret</Name>
              <ShortName>Sentrum</ShortName>
              <LineRef ref="RUT:Line:1" version="1"/>
              <DirectionType>outbound</DirectionType>
              <pointsInSequence>
                <PointOnRoute id="RUT:PointOnRoute:2" version="1" order="2">
                  <RoutePointRef ref="RUT:RoutePoint:2"/>
                </PointOnRoute>
                <PointOnRoute id="RUT:PointOnRoute:1" version="1" order="1">
                  <RoutePointRef ref="RUT:RoutePoint:1"/>
                </PointOnRoute>
              </pointsInSequence>
            </Route>
          </routes>
          <lines>
            <Line id="RUT:Line:1" version="1">
              <Name>Sentrum</Name>
              <TransportMode>metro</TransportMode>
              <PublicCode>1</PublicCode>
            </Line>
          </lines>
          <scheduledStopPoints>
            <ScheduledStopPoint id="RUT:ScheduledStopPoint:1" version="1">
              <Name>Jernbanetorget</Name>
            </ScheduledStopPoint>
            <ScheduledStopPoint id="RUT:ScheduledStopPoint:2" version="1">
              <Name>Stortinget</Name>
            </ScheduledStopPoint>
            <ScheduledStopPoint id="RUT:ScheduledStopPoint:3" version="1">
              <Name>Nationaltheatret</Name>
            </ScheduledStopPoint>
          </scheduledStopPoints>
          <serviceLinks>
            <ServiceLink id="RUT:ServiceLink:1" version="1">
              <Distance>612.5</Distance>
              <projections>
                <LinkSequenceProjection id="RUT:LinkSequenceProjection:1" version="1">
                  <gml:LineString gml:id="LS1">
                    <gml:posList>59.911 10.750 59.912 10.745 59.913 10.740</gml:posList>
                  </gml:LineString>
                </LinkSequenceProjection>
              </projections>
              <FromPointRef ref="RUT:ScheduledStopPoint:1" version="1"/>
              <ToPointRef ref="RUT:ScheduledStopPoint:2" version="1"/>
            </ServiceLink>
            <ServiceLink id="RUT:ServiceLink:2" version="1">
              <Distance>640</Distance>
              <projections>
                <LinkSequenceProjection id="RUT:LinkSequenceProjection:2" version="1">
                  <gml:LineString gml:id="LS2">
                    <gml:posList>59.913 10.740 59.914 10.735 59.915 10.730</gml:posList>
                  </gml:LineString>
                </LinkSequenceProjection>
              </projections>
              <FromPointRef ref="RUT:ScheduledStopPoint:2" version="1"/>
              <ToPointRef ref="RUT:ScheduledStopPoint:3" version="1"/>
            </ServiceLink>
          </serviceLinks>
        </ServiceFrame>
      </frames>
    </CompositeFrame>
  </dataObjects>
</PublicationDelivery>
`

// LineData holds one journey pattern and two journeys on it, the second running past
// midnight.
const LineData = `<?xml version="1.0" encoding="UTF-8"?>
<PublicationDelivery xmlns="http://www.netex.org.uk/netex" version="1.0">
  <dataObjects>
    <CompositeFrame id="RUT:CompositeFrame:2" version="1">
      <frames>
        <ServiceFrame id="RUT:ServiceFrame:2" version="1">
          <journeyPatterns>
            <JourneyPattern id="RUT:JourneyPattern:1" version="1">
              <Name>Sentrum vestover</Name>
              <RouteRef ref="RUT:Route:1" version="1"/>
              <pointsInSequence>
                <StopPointInJourneyPattern id="RUT:StopPointInJourneyPattern:2" version="1" order="2">
                  <ScheduledStopPointRef ref="RUT:ScheduledStopPoint:2" version="1"/>
                </StopPointInJourneyPattern>
                <StopPointInJourneyPattern id="RUT:StopPointInJourneyPattern:1" version="1" order="1">
                  <ScheduledStopPointRef ref="RUT:ScheduledStopPoint:1" version="1"/>
                  <DestinationDisplayRef ref="RUT:DestinationDisplay:1" version="1"/>
                </StopPointInJourneyPattern>
                <StopPointInJourneyPattern id="RUT:StopPointInJourneyPattern:3" version="1" order="3">
                  <ScheduledStopPointRef ref="RUT:ScheduledStopPoint:3" version="1"/>
                </StopPointInJourneyPattern>
              </pointsInSequence>
              <linksInSequence>
                <ServiceLinkInJourneyPattern id="RUT:ServiceLinkInJourneyPattern:1" version="1" order="1">
                  <ServiceLinkRef ref="RUT:ServiceLink:1" version="1"/>
                </ServiceLinkInJourneyPattern>
                <ServiceLinkInJourneyPattern id="RUT:ServiceLinkInJourneyPattern:2" version="1" order="2">
                  <ServiceLinkRef ref="RUT:ServiceLink:2" version="1"/>
                </ServiceLinkInJourneyPattern>
              </linksInSequence>
            </JourneyPattern>
          </journeyPatterns>
        </ServiceFrame>
        <TimetableFrame id="RUT:TimetableFrame:1" version="1">
          <vehicleJourneys>
            <ServiceJourney id="RUT:ServiceJourney:1" version="1">
              <Name>Morgen</Name>
              <TransportMode>metro</TransportMode>
              <JourneyPatternRef ref="RUT:JourneyPattern:1" version="1"/>
              <LineRef ref="RUT:Line:1" version="1"/>
              <passingTimes>
                <TimetabledPassingTime id="RUT:TimetabledPassingTime:1-1" version="1">
                  <StopPointInJourneyPatternRef ref="RUT:StopPointInJourneyPattern:1" version="1"/>
                  <DepartureTime>08:00:00</DepartureTime>
                </TimetabledPassingTime>
                <TimetabledPassingTime id="RUT:TimetabledPassingTime:1-3" version="1">
                  <StopPointInJourneyPatternRef ref="RUT:StopPointInJourneyPattern:3" version="1"/>
                  <ArrivalTime>08:10:00</ArrivalTime>
                </TimetabledPassingTime>
                <TimetabledPassingTime id="RUT:TimetabledPassingTime:1-2" version="1">
                  <StopPointInJourneyPatternRef ref="RUT:StopPointInJourneyPattern:2" version="1"/>
                  <ArrivalTime>08:04:00</ArrivalTime>
                  <DepartureTime>08:05:00</DepartureTime>
                </TimetabledPassingTime>
              </passingTimes>
            </ServiceJourney>
            <ServiceJourney id="RUT:ServiceJourney:2" version="1">
              <Name>Natt</Name>
              <TransportMode>metro</TransportMode>
              <JourneyPatternRef ref="RUT:JourneyPattern:1" version="1"/>
              <LineRef ref="RUT:Line:1" version="1"/>
              <passingTimes>
                <TimetabledPassingTime id="RUT:TimetabledPassingTime:2-1" version="1">
                  <StopPointInJourneyPatternRef ref="RUT:StopPointInJourneyPattern:1" version="1"/>
                  <DepartureTime>23:50:00</DepartureTime>
                </TimetabledPassingTime>
                <TimetabledPassingTime id="RUT:TimetabledPassingTime:2-2" version="1">
                  <StopPointInJourneyPatternRef ref="RUT:StopPointInJourneyPattern:2" version="1"/>
                  <DepartureTime>23:58:00</DepartureTime>
                </TimetabledPassingTime>
                <TimetabledPassingTime id="RUT:TimetabledPassingTime:2-3" version="1">
                  <StopPointInJourneyPatternRef ref="RUT:StopPointInJourneyPattern:3" version="1"/>
                  <ArrivalTime>00:05:00</ArrivalTime>
                  <ArrivalDayOffset>1</ArrivalDayOffset>
                </TimetabledPassingTime>
              </passingTimes>
            </ServiceJourney>
          </vehicleJourneys>
        </TimetableFrame>
      </frames>
    </CompositeFrame>
  </dataObjects>
</PublicationDelivery>
`

// OtherOperator is a document that must be skipped when only RUT is requested.
const OtherOperator = `<?xml version="1.0" encoding="UTF-8"?>
<PublicationDelivery xmlns="http://www.netex.org.uk/netex" version="1.0">
  <dataObjects>
    <ScheduledStopPoint id="ATB:ScheduledStopPoint:9" version="1">
      <Name>Prinsens gate</Name>
    </ScheduledStopPoint>
  </dataObjects>
</PublicationDelivery>
`

// Files maps file names to contents as they would appear in an unzipped archive.
// Names ending in ".gz" are written compressed by WriteDataset.
var Files = map[string]string{
	"_RUT_shared_data.xml":          SharedData,
	"RUT_RUT-Line-1_Sentrum.xml.gz": LineData,
	"_ATB_shared_data.xml":          OtherOperator,
	"readme.txt":                    "not netex",
}

// WriteDataset writes Files into dir.
func WriteDataset(t testing.TB, dir string) {
	t.Helper()
	for name, content := range Files {
		path := filepath.Join(dir, name)
		if filepath.Ext(name) != ".gz" {
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write %s: %v", name, err)
			}
			continue
		}
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		zw := gzip.NewWriter(f)
		if _, err := zw.Write([]byte(content)); err != nil {
			t.Fatalf("gzip %s: %v", name, err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("gzip close %s: %v", name, err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("close %s: %v", name, err)
		}
	}
}
