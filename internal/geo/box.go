package geo

import (
	"fmt"
	"math"
	"strings"
)

// Box is an axis-aligned lat/lon rectangle with normalized corners.
type Box struct {
	min Point
	max Point
}

// NewBox builds the box spanned by any two opposite corners.
func NewBox(a, b Point) Box {
	return Box{
		min: Point{lat: min(a.lat, b.lat), lon: min(a.lon, b.lon)},
		max: Point{lat: max(a.lat, b.lat), lon: max(a.lon, b.lon)},
	}
}

func (b Box) Min() Point { return b.min }

func (b Box) Max() Point { return b.max }

func (b Box) LatSpan() float64 { return b.max.Lat() - b.min.Lat() }

func (b Box) LonSpan() float64 { return b.max.Lon() - b.min.Lon() }

// Height is the north-south extent along the western edge.
func (b Box) Height() Distance { return b.min.DistanceTo(b.min.WithLat(b.max)) }

// Width is the east-west extent along the southern edge.
func (b Box) Width() Distance { return b.min.DistanceTo(b.min.WithLon(b.max)) }

func (b Box) AreaSqMeters() float64 { return b.Height().Meters() * b.Width().Meters() }

func (b Box) Combined(other Box) Box {
	return Box{
		min: Point{lat: min(b.min.lat, other.min.lat), lon: min(b.min.lon, other.min.lon)},
		max: Point{lat: max(b.max.lat, other.max.lat), lon: max(b.max.lon, other.max.lon)},
	}
}

// Overlaps is true when the closed boxes intersect.
func (b Box) Overlaps(other Box) bool {
	return b.min.lat <= other.max.lat && other.min.lat <= b.max.lat &&
		b.min.lon <= other.max.lon && other.min.lon <= b.max.lon
}

func (b Box) Contains(p Point) bool {
	return b.min.IsSouthwestOf(p) && p.IsSouthwestOf(b.max)
}

// ScaledTo widens the box outwards to the scale's grid.
func (b Box) ScaledTo(scale Scale) Box {
	return Box{min: b.min.DownTo(scale), max: b.max.UpTo(scale)}
}

// Cells lists every grid cell the box touches, south to north then west to east.
func (b Box) Cells(scale Scale) []Cell {
	lo, hi := scale.CellOf(b.min), scale.CellOf(b.max)
	out := make([]Cell, 0, int(hi.Lat-lo.Lat+1)*int(hi.Lon-lo.Lon+1))
	for lat := lo.Lat; lat <= hi.Lat; lat++ {
		for lon := lo.Lon; lon <= hi.Lon; lon++ {
			out = append(out, Cell{Lat: lat, Lon: lon})
		}
	}
	return out
}

func (b Box) ScaledBoxes(scale Scale) []Box {
	cells := b.Cells(scale)
	out := make([]Box, len(cells))
	for i, c := range cells {
		out[i] = c.Box(scale)
	}
	return out
}

// Compare orders boxes by their min corner.
func (b Box) Compare(other Box) int {
	if c := b.min.Compare(other.min); c != 0 {
		return c
	}
	return b.max.Compare(other.max)
}

// IsZero reports whether b is the empty value.
func (b Box) IsZero() bool { return b == Box{} }

func (b Box) String() string {
	return fmt.Sprintf("[%s %s]", b.min, b.max)
}

// MarshalText renders "minLat,minLon maxLat,maxLon".
func (b Box) MarshalText() ([]byte, error) {
	return []byte(b.min.String() + " " + b.max.String()), nil
}

// UnmarshalText reads the MarshalText form. Corners may be given in any order.
func (b *Box) UnmarshalText(text []byte) error {
	corners := strings.Fields(string(text))
	if len(corners) != 2 {
		return fmt.Errorf("parse box %q: want two lat,lon corners", text)
	}
	var pts [2]Point
	for i, c := range corners {
		lat, lon, ok := strings.Cut(c, ",")
		if !ok {
			return fmt.Errorf("parse box %q: corner %q is not lat,lon", text, c)
		}
		p, err := ParsePoint(lat, lon)
		if err != nil {
			return fmt.Errorf("parse box %q: %w", text, err)
		}
		pts[i] = p
	}
	*b = NewBox(pts[0], pts[1])
	return nil
}

// BoxOf is the smallest box holding all points. ok is false for no points.
func BoxOf(points []Point) (box Box, ok bool) {
	if len(points) == 0 {
		return Box{}, false
	}
	box = Box{
		min: Point{lat: math.MaxInt32, lon: math.MaxInt32},
		max: Point{lat: math.MinInt32, lon: math.MinInt32},
	}
	for _, p := range points {
		box.min.lat = min(box.min.lat, p.lat)
		box.min.lon = min(box.min.lon, p.lon)
		box.max.lat = max(box.max.lat, p.lat)
		box.max.lon = max(box.max.lon, p.lon)
	}
	return box, true
}
