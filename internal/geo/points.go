package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const digits = 6

// NorwayBox covers mainland Norway.
var NorwayBox = NewBox(Pt(57, 4), Pt(72, 32))

// ParsePoint parses decimal latitude and longitude text exactly. Digits beyond the sixth
// decimal are rounded.
func ParsePoint(lat, lon string) (Point, error) {
	la, err := parseMicro(lat, maxLat)
	if err != nil {
		return Point{}, fmt.Errorf("parse point %s %s: %w", lat, lon, err)
	}
	lo, err := parseMicro(lon, maxLon)
	if err != nil {
		return Point{}, fmt.Errorf("parse point %s %s: %w", lat, lon, err)
	}
	return Point{lat: la, lon: lo}, nil
}

// Sequence parses a GML posList: whitespace separated "lat lon lat lon ...".
func Sequence(s string) ([]Point, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("parse sequence: odd number of coordinates (%d)", len(fields))
	}
	out := make([]Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		p, err := ParsePoint(fields[i], fields[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// parseMicro reads decimal degrees as microdegrees, rejecting magnitudes above limit.
func parseMicro(s string, limit int64) (int32, error) {
	s = strings.TrimSpace(s)
	var v int64
	intPart, decPart, found := strings.Cut(s, ".")
	switch {
	case !found:
		deg, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, err
		}
		if deg > limit/Dimension || deg < -limit/Dimension {
			return 0, fmt.Errorf("%s out of range ±%d", s, limit/Dimension)
		}
		v = deg * Dimension
	case len(decPart) > digits:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, err
		}
		if d.Abs().GreaterThan(decimal.NewFromInt(limit / Dimension)) {
			return 0, fmt.Errorf("%s out of range ±%d", s, limit/Dimension)
		}
		v = d.Shift(digits).Round(0).IntPart()
	default:
		var err error
		v, err = strconv.ParseInt(intPart+decPart+strings.Repeat("0", digits-len(decPart)), 10, 64)
		if err != nil {
			return 0, err
		}
	}
	if v > limit || v < -limit {
		return 0, fmt.Errorf("%s out of range ±%d", s, limit/Dimension)
	}
	return int32(v), nil
}
