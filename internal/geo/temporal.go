package geo

import "time"

// TemporalBox is a box occupied during a timespan.
type TemporalBox struct {
	Box      Box
	Timespan Timespan
}

func (tb TemporalBox) Combined(other TemporalBox) TemporalBox {
	return TemporalBox{Box: tb.Box.Combined(other.Box), Timespan: tb.Timespan.Combined(other.Timespan)}
}

func (tb TemporalBox) Overlaps(other TemporalBox) bool {
	return tb.Box.Overlaps(other.Box) && tb.Timespan.Overlaps(other.Timespan)
}

// ScaledBox keeps the box and widens the timespan to accuracy-aligned slots.
func (tb TemporalBox) ScaledBox(accuracy time.Duration) TemporalBox {
	return TemporalBox{Box: tb.Box, Timespan: tb.Timespan.Scaled(accuracy)}
}

// ScaledBoxes is every grid cell crossed with every time slot.
func (tb TemporalBox) ScaledBoxes(scale Scale, accuracy time.Duration) []TemporalBox {
	boxes := tb.Box.ScaledBoxes(scale)
	spans := tb.Timespan.Timespans(accuracy)
	out := make([]TemporalBox, 0, len(boxes)*len(spans))
	for _, b := range boxes {
		for _, s := range spans {
			out = append(out, TemporalBox{Box: b, Timespan: s})
		}
	}
	return out
}

func (tb TemporalBox) String() string {
	return tb.Box.String() + "@" + tb.Timespan.String()
}

// Sample is a position observed with some accuracy.
type Sample struct {
	Point    Point
	Accuracy Distance
}

// Box is the square of side 2×accuracy centred on the point.
func (s Sample) Box() Box {
	sw := s.Point.Translate(Towards(South, s.Accuracy)).Translate(Towards(West, s.Accuracy))
	ne := s.Point.Translate(Towards(North, s.Accuracy)).Translate(Towards(East, s.Accuracy))
	return NewBox(sw, ne)
}

// Trajectory is an ordered series of samples.
type Trajectory []Sample

func (t Trajectory) Boxes() []Box {
	out := make([]Box, len(t))
	for i, s := range t {
		out[i] = s.Box()
	}
	return out
}
