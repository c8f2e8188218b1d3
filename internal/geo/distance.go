package geo

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Distance is a non-negative length in millimetres.
type Distance int64

const Zero Distance = 0

// Of returns count units as a Distance. It panics on a negative count.
func Of(count int64, unit Unit) Distance {
	if count < 0 {
		panic(fmt.Sprintf("geo: negative distance %d%s", count, unit))
	}
	return Distance(count * unit.millis())
}

// OfFloat returns count units rounded to the nearest millimetre. It panics on a negative count.
func OfFloat(count float64, unit Unit) Distance {
	if count < 0 || math.IsNaN(count) {
		panic(fmt.Sprintf("geo: invalid distance %v%s", count, unit))
	}
	return Distance(math.Round(count * float64(unit.millis())))
}

// ParseDistance reads a decimal amount with an optional unit suffix, e.g. "2.5km" or "350".
// A bare amount is metres.
func ParseDistance(s string) (Distance, error) {
	in := strings.TrimSpace(strings.ToLower(s))
	unit := M
	for _, u := range []Unit{KM, MM, CM, M} {
		if strings.HasSuffix(in, u.String()) {
			unit = u
			in = strings.TrimSpace(strings.TrimSuffix(in, u.String()))
			break
		}
	}
	d, err := decimal.NewFromString(in)
	if err != nil {
		return 0, fmt.Errorf("parse distance %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("parse distance %q: negative", s)
	}
	mm := d.Mul(decimal.NewFromInt(unit.millis())).Round(0)
	return Distance(mm.IntPart()), nil
}

func (d Distance) Millis() int64 { return int64(d) }

func (d Distance) Meters() float64 { return float64(d) / 1000 }

// To expresses the distance in the given unit.
func (d Distance) To(unit Unit) float64 {
	return float64(d) / float64(unit.millis())
}

func (d Distance) Add(other Distance) Distance { return d + other }

// Mult scales the distance, rounding to the nearest millimetre.
func (d Distance) Mult(f float64) Distance {
	return OfFloat(float64(d)*math.Abs(f), MM)
}

func (d Distance) String() string {
	switch {
	case d >= 10*Distance(KM.millis()):
		return fmt.Sprintf("%.3fkm", d.To(KM))
	case d >= Distance(M.millis()):
		return fmt.Sprintf("%.3fm", d.To(M))
	default:
		return fmt.Sprintf("%dmm", int64(d))
	}
}
