package geo

import "fmt"

// Unit is a length unit. Units are ordered from smallest to largest.
type Unit int

const (
	MM Unit = iota
	CM
	M
	KM
)

var unitMillis = [...]int64{MM: 1, CM: 10, M: 1_000, KM: 1_000_000}

var unitNames = [...]string{MM: "mm", CM: "cm", M: "m", KM: "km"}

func (u Unit) millis() int64 {
	if u < MM || u > KM {
		panic(fmt.Sprintf("geo: unknown unit %d", int(u)))
	}
	return unitMillis[u]
}

// ContainsNo reports how many of other fit in one u, or 0 when other is the larger unit.
func (u Unit) ContainsNo(other Unit) int64 {
	if other > u {
		return 0
	}
	return u.millis() / other.millis()
}

// ToMeters converts v of this unit to metres.
func (u Unit) ToMeters(v float64) float64 {
	return v * float64(u.millis()) / 1000
}

// To converts v of this unit to the target unit.
func (u Unit) To(target Unit, v float64) float64 {
	return v * float64(u.millis()) / float64(target.millis())
}

func (u Unit) String() string {
	if u < MM || u > KM {
		return fmt.Sprintf("Unit(%d)", int(u))
	}
	return unitNames[u]
}

// ParseUnit accepts the short unit names.
func ParseUnit(s string) (Unit, error) {
	for u, name := range unitNames {
		if name == s {
			return Unit(u), nil
		}
	}
	return 0, fmt.Errorf("unknown unit %q", s)
}
