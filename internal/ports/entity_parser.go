package ports

import (
	"context"

	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/netex/parse"
)

// EntityParser turns NeTEx source files into a merged entity set.
type EntityParser interface {
	Sources(dir string, operators []netex.Operator) ([]parse.Source, error)
	Parse(ctx context.Context, sources []parse.Source) (*netex.Set, error)
}
