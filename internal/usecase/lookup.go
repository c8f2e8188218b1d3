package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/ports"
)

// LookupResult is an entity and where it was found.
type LookupResult struct {
	Entity      netex.Entity
	Fingerprint uuid.UUID
	Source      string
}

// LookupEntity finds a single entity by id. It reads the entity store when one exists
// and otherwise falls back to a database.
type LookupEntity struct {
	databases *Databases
	open      ports.EntityStoreOpener
}

func NewLookupEntity(dbs *Databases, open ports.EntityStoreOpener) *LookupEntity {
	return &LookupEntity{databases: dbs, open: open}
}

func (uc *LookupEntity) Execute(ctx context.Context, rawID string, operators []netex.Operator) (LookupResult, error) {
	id, err := netex.ParseID(rawID, "")
	if err != nil {
		return LookupResult{}, &domain.OpError{Op: "lookup.id", Kind: domain.KindInvalidConfig, Err: err}
	}
	if len(operators) == 0 {
		operators = []netex.Operator{id.Operator}
	}

	if uc.open != nil {
		path := EntityStorePath(uc.databases.SerialPath(operators))
		if fi, statErr := os.Stat(path); statErr == nil && fi.Size() > 0 {
			res, found, err := uc.fromStore(path, id)
			if err != nil || found {
				return res, err
			}
		}
	}

	built, err := uc.databases.Get(ctx, operators...)
	if err != nil {
		return LookupResult{}, err
	}
	var found netex.Entity
	built.DB.Entities().Each(func(e netex.Entity) bool {
		eid := e.EntityID()
		if eid.Operator == id.Operator && eid.Type == id.Type && eid.Value == id.Value {
			found = e
			return false
		}
		return true
	})
	if found == nil {
		return LookupResult{}, notFound(rawID)
	}
	src := "archive"
	if built.FromSerial {
		src = built.SerialPath
	}
	return LookupResult{Entity: found, Fingerprint: netex.Fingerprint(found), Source: src}, nil
}

func (uc *LookupEntity) fromStore(path string, id netex.ID) (res LookupResult, found bool, err error) {
	es, err := uc.open(path)
	if err != nil {
		return LookupResult{}, false, err
	}
	defer func() { err = errors.Join(err, es.Close()) }()
	e, ok, err := es.Get(id)
	if err != nil || !ok {
		return LookupResult{}, false, err
	}
	return LookupResult{Entity: e, Fingerprint: netex.Fingerprint(e), Source: path}, true, nil
}

func notFound(id string) error {
	return &domain.OpError{
		Op:   "lookup",
		Kind: domain.KindNotFound,
		Err:  fmt.Errorf("%w: %s", domain.ErrNotFound, id),
	}
}
