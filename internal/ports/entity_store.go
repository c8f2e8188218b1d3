package ports

import (
	"context"

	"github.com/stopnorway/stopnorway/internal/netex"
)

// EntityStore is an on-disk lookup of entities by id.
type EntityStore interface {
	PutAll(ctx context.Context, set *netex.Set) error
	Get(id netex.ID) (netex.Entity, bool, error)
	Counts() (map[netex.Kind]int, error)
	Close() error
}

// EntityStoreOpener opens or creates the entity store at path.
type EntityStoreOpener func(path string) (EntityStore, error)
