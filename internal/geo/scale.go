package geo

import (
	"cmp"
	"fmt"
)

// Scale is the number of grid divisions per degree of latitude and longitude.
type Scale struct {
	Lat int `json:"lat"`
	Lon int `json:"lon"`
}

// DefaultScale gives cells of roughly 1.1km by 1.1km at Norwegian latitudes.
var DefaultScale = Scale{Lat: 100, Lon: 50}

// IntegerScale has one cell per whole degree.
var IntegerScale = Scale{Lat: 1, Lon: 1}

func NewScale(lat, lon int) (Scale, error) {
	if lat <= 0 || lon <= 0 {
		return Scale{}, fmt.Errorf("invalid scale %d:%d, must be positive", lat, lon)
	}
	return Scale{Lat: lat, Lon: lon}, nil
}

func (s Scale) String() string { return fmt.Sprintf("1:%d/1:%d", s.Lat, s.Lon) }

// Cell is an integer grid index at some scale.
type Cell struct {
	Lat int32
	Lon int32
}

// CellOf is the cell containing p.
func (s Scale) CellOf(p Point) Cell {
	return Cell{
		Lat: int32(floorDiv(int64(p.lat)*int64(s.Lat), Dimension)),
		Lon: int32(floorDiv(int64(p.lon)*int64(s.Lon), Dimension)),
	}
}

// Box returns the cell's bounds.
func (c Cell) Box(s Scale) Box {
	return Box{
		min: Point{lat: fromIndex(int64(c.Lat), s.Lat), lon: fromIndex(int64(c.Lon), s.Lon)},
		max: Point{lat: fromIndex(int64(c.Lat)+1, s.Lat), lon: fromIndex(int64(c.Lon)+1, s.Lon)},
	}
}

func (c Cell) Compare(other Cell) int {
	if r := cmp.Compare(c.Lat, other.Lat); r != 0 {
		return r
	}
	return cmp.Compare(c.Lon, other.Lon)
}

func (c Cell) String() string { return fmt.Sprintf("[%d:%d]", c.Lat, c.Lon) }
