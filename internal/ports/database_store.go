package ports

import (
	"context"

	"github.com/stopnorway/stopnorway/internal/database"
	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/netex"
)

// DatabaseStore persists built databases in their serial form.
type DatabaseStore interface {
	SerialPath(dir string, operators []netex.Operator) string
	Exists(path string) bool
	Write(ctx context.Context, path string, db *database.Database, operators []netex.Operator) error
	Read(ctx context.Context, path string) (*database.Database, domain.SerialHeader, error)
	ReadHeader(path string) (domain.SerialHeader, error)
}
