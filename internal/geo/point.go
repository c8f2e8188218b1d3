package geo

import (
	"cmp"
	"fmt"
	"math"
)

// Dimension is the number of fixed-point steps per degree.
const Dimension = 1_000_000

const (
	earthRadiusMM = 6_371_008_800.0
	degreeLatMM   = 110_574_235.0
	degreeLonMM   = 110_572_833.0
)

// Point is a WGS84 coordinate held as microdegrees.
type Point struct {
	lat int32
	lon int32
}

const (
	maxLat = 90 * Dimension
	maxLon = 180 * Dimension
)

// Pt rounds lat/lon to the nearest microdegree. It panics outside ±90/±180; use NewPoint
// for input.
func Pt(lat, lon float64) Point {
	p, err := NewPoint(lat, lon)
	if err != nil {
		panic(err)
	}
	return p
}

// NewPoint rounds lat/lon to the nearest microdegree, rejecting coordinates outside
// ±90/±180.
func NewPoint(lat, lon float64) (Point, error) {
	la, lo := math.Round(lat*Dimension), math.Round(lon*Dimension)
	if math.IsNaN(la) || math.Abs(la) > maxLat {
		return Point{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	if math.IsNaN(lo) || math.Abs(lo) > maxLon {
		return Point{}, fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}
	return Point{lat: int32(la), lon: int32(lo)}, nil
}

// Micro builds a point from microdegrees.
func Micro(lat, lon int32) Point {
	return Point{lat: lat, lon: lon}
}

func toMicro(v float64) int32 {
	return int32(math.Round(v * Dimension))
}

func (p Point) Lat() float64 { return float64(p.lat) / Dimension }

func (p Point) Lon() float64 { return float64(p.lon) / Dimension }

func (p Point) MicroLat() int32 { return p.lat }

func (p Point) MicroLon() int32 { return p.lon }

// WithLat returns a point with other's latitude and this longitude.
func (p Point) WithLat(other Point) Point { return Point{lat: other.lat, lon: p.lon} }

// WithLon returns a point with this latitude and other's longitude.
func (p Point) WithLon(other Point) Point { return Point{lat: p.lat, lon: other.lon} }

func (p Point) Compare(other Point) int {
	if c := cmp.Compare(p.lat, other.lat); c != 0 {
		return c
	}
	return cmp.Compare(p.lon, other.lon)
}

// IsSouthwestOf is true when p is south and west of other, inclusive.
func (p Point) IsSouthwestOf(other Point) bool {
	return p.lat <= other.lat && p.lon <= other.lon
}

// DistanceTo is the haversine distance between the points.
func (p Point) DistanceTo(other Point) Distance {
	lat1, lat2 := radians(p.Lat()), radians(other.Lat())
	dLat := lat2 - lat1
	dLon := radians(other.Lon() - p.Lon())
	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return OfFloat(earthRadiusMM*c, MM)
}

// Translate moves the point by the translation.
func (p Point) Translate(t Translation) Point {
	latMM, lonMM := t.components()
	dLat := latMM / degreeLatMM
	dLon := lonMM / (degreeLonMM * math.Cos(radians(p.Lat())))
	return Point{
		lat: p.lat + toMicro(dLat),
		lon: p.lon + toMicro(dLon),
	}
}

// SquareBox spans from p to p moved north and then east by side.
func (p Point) SquareBox(side Distance) Box {
	corner := p.Translate(Towards(North, side)).Translate(Towards(East, side))
	return NewBox(p, corner)
}

func (p Point) Box(other Point) Box { return NewBox(p, other) }

// ScaledBox is the grid cell containing p.
func (p Point) ScaledBox(scale Scale) Box {
	return scale.CellOf(p).Box(scale)
}

// DownTo floors the point to the scale's grid.
func (p Point) DownTo(scale Scale) Point {
	return Point{
		lat: fromIndex(floorDiv(int64(p.lat)*int64(scale.Lat), Dimension), scale.Lat),
		lon: fromIndex(floorDiv(int64(p.lon)*int64(scale.Lon), Dimension), scale.Lon),
	}
}

// UpTo ceils the point to the scale's grid.
func (p Point) UpTo(scale Scale) Point {
	return Point{
		lat: fromIndex(ceilDiv(int64(p.lat)*int64(scale.Lat), Dimension), scale.Lat),
		lon: fromIndex(ceilDiv(int64(p.lon)*int64(scale.Lon), Dimension), scale.Lon),
	}
}

func (p Point) String() string {
	return fmt.Sprintf("%s,%s", formatMicro(p.lat), formatMicro(p.lon))
}

// MarshalText renders "lat,lon", the form ParsePoint reads back field by field.
func (p Point) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func formatMicro(v int32) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%06d", sign, v/Dimension, v%Dimension)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}

func fromIndex(idx int64, perDegree int) int32 {
	return int32(math.Round(float64(idx) * Dimension / float64(perDegree)))
}
