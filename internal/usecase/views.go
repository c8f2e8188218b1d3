package usecase

import (
	"fmt"

	"github.com/stopnorway/stopnorway/internal/database"
	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/geo"
)

func clock(t geo.TimeOfDay, offset int) string {
	if offset == 0 {
		return t.String()
	}
	return fmt.Sprintf("%s+%d", t, offset)
}

func minuteOf(t geo.TimeOfDay, offset int) int {
	return offset*24*60 + t.Hour()*60 + t.Minute()
}

// JourneyViewOf flattens a journey for output and filters.
func JourneyViewOf(j *database.Journey) domain.JourneyView {
	start, startOff := j.Start()
	end, endOff := j.End()
	v := domain.JourneyView{
		ID:            j.ID.String(),
		Name:          j.Name,
		Operator:      j.ID.Operator.String(),
		Line:          j.Spec.LineName(),
		PublicCode:    j.Spec.PublicCode(),
		TransportMode: j.TransportMode,
		Pattern:       j.Spec.ID.String(),
		Start:         clock(start, startOff),
		End:           clock(end, endOff),
		StartMinute:   minuteOf(start, startOff),
		EndMinute:     minuteOf(end, endOff),
		Minutes:       int(j.Timespan().Duration().Minutes()),
		StopNames:     make([]string, 0, len(j.Stops)),
		Stops:         make([]domain.StopView, 0, len(j.Stops)),
	}
	for _, s := range j.Stops {
		sv := domain.StopView{
			Name:      s.Name(),
			Arrival:   clock(s.Arrival, s.ArrivalOffset),
			Departure: clock(s.Departure, s.DepartureOffset),
		}
		if s.Stop != nil {
			sv.ID = s.Stop.ID.String()
		}
		v.Stops = append(v.Stops, sv)
		if sv.Name != "" {
			v.StopNames = append(v.StopNames, sv.Name)
		}
	}
	return v
}
