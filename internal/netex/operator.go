package netex

import (
	"fmt"
	"slices"
	"strings"
)

// Operator is a NeTEx codespace, the prefix of every id an operator publishes.
type Operator string

// KnownOperators are the codespaces found in the Norwegian aggregated dataset.
var KnownOperators = []Operator{
	"AKT", "ATB", "AVI", "BNR", "BRA", "BOR", "FIN", "FLB", "FLT", "GOA",
	"INN", "KOL", "MOR", "NBU", "NOR", "NSB", "OST", "RUT", "SJN", "SKY",
	"SOF", "TEL", "TRO", "UNI", "VKT", "VOT", "VYB", "VYG", "VYX",
}

// ParseOperator accepts a three letter codespace, in any case.
func ParseOperator(s string) (Operator, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	if len(up) != 3 {
		return "", fmt.Errorf("invalid operator %q: want three letters", s)
	}
	for _, r := range up {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("invalid operator %q: want three letters", s)
		}
	}
	return Operator(up), nil
}

// ParseOperators parses and de-duplicates, keeping input order.
func ParseOperators(in []string) ([]Operator, error) {
	out := make([]Operator, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			op, err := ParseOperator(part)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(out, op) {
				out = append(out, op)
			}
		}
	}
	return out, nil
}

func (o Operator) Known() bool { return slices.Contains(KnownOperators, o) }

func (o Operator) String() string { return string(o) }
