package geo

import "math"

// Direction is a compass direction.
type Direction int

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var diag = 1 / math.Sqrt2

var directionFactors = [...][2]float64{
	North:     {1, 0},
	NorthEast: {diag, diag},
	East:      {0, 1},
	SouthEast: {-diag, diag},
	South:     {-1, 0},
	SouthWest: {-diag, -diag},
	West:      {0, -1},
	NorthWest: {diag, -diag},
}

var directionNames = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func (d Direction) String() string {
	if d < North || d > NorthWest {
		return "?"
	}
	return directionNames[d]
}

// Translation is a movement of some distance in a direction.
type Translation struct {
	Direction Direction
	Distance  Distance
}

func Towards(dir Direction, dist Distance) Translation {
	return Translation{Direction: dir, Distance: dist}
}

// components splits the translation into northward and eastward millimetres.
func (t Translation) components() (lat, lon float64) {
	f := directionFactors[t.Direction]
	return f[0] * float64(t.Distance), f[1] * float64(t.Distance)
}
