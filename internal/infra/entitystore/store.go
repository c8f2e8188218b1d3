// Package entitystore keeps every parsed entity in a memory-mapped bbolt file so single
// entities can be looked up without loading a database.
package entitystore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/infra/binenc"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/ports"
)

const defaultBatch = 10_000

type Store struct {
	db    *bolt.DB
	path  string
	log   *slog.Logger
	batch int
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBatch sets how many entities go into one write transaction.
func WithBatch(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batch = n
		}
	}
}

var _ ports.EntityStore = (*Store)(nil)

// Open opens or creates the store at path. A second process opening the same file waits
// at most a second for the lock.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, log: slog.New(slog.DiscardHandler), batch: defaultBatch}
	for _, opt := range opts {
		opt(s)
	}
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, &domain.OpError{Op: "entitystore.open", Kind: domain.KindExecution, Path: path, Err: err}
	}
	s.db = db
	return s, nil
}

// Opener adapts Open to ports.EntityStoreOpener.
func Opener(opts ...Option) ports.EntityStoreOpener {
	return func(path string) (ports.EntityStore, error) {
		return Open(path, opts...)
	}
}

func (s *Store) Close() error { return s.db.Close() }

func encode(e netex.Entity) ([]byte, error) {
	var buf bytes.Buffer
	enc := binenc.NewEncoder(&buf)
	enc.Entity(e)
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PutAll replaces the store's content with set, one bucket per kind.
func (s *Store) PutAll(ctx context.Context, set *netex.Set) error {
	start := time.Now()
	err := s.db.Update(func(tx *bolt.Tx) error {
		var names [][]byte
		if err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, bytes.Clone(name))
			return nil
		}); err != nil {
			return err
		}
		for _, name := range names {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &domain.OpError{Op: "entitystore.clear", Kind: domain.KindExecution, Path: s.path, Err: err}
	}

	for _, kind := range set.Kinds() {
		entities := set.OfKind(kind)
		for lo := 0; lo < len(entities); lo += s.batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			hi := min(lo+s.batch, len(entities))
			if err := s.putBatch(kind, entities[lo:hi]); err != nil {
				return &domain.OpError{Op: "entitystore.put", Kind: domain.KindExecution, Path: s.path, Err: err}
			}
		}
	}
	s.log.Info("entitystore.written",
		"path", s.path,
		"entities", set.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *Store) putBatch(kind netex.Kind, entities []netex.Entity) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(kind))
		if err != nil {
			return err
		}
		for _, e := range entities {
			v, err := encode(e)
			if err != nil {
				return fmt.Errorf("%s: %w", e.EntityID(), err)
			}
			if err := b.Put([]byte(e.EntityID().String()), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get finds id regardless of version. The bucket named by the id's type is tried first.
func (s *Store) Get(id netex.ID) (netex.Entity, bool, error) {
	key := []byte(id.String())
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(id.Type)); b != nil {
			if v := b.Get(key); v != nil {
				raw = bytes.Clone(v)
				return nil
			}
		}
		return tx.ForEach(func(_ []byte, b *bolt.Bucket) error {
			if v := b.Get(key); v != nil && raw == nil {
				raw = bytes.Clone(v)
			}
			return nil
		})
	})
	if err != nil {
		return nil, false, &domain.OpError{Op: "entitystore.get", Kind: domain.KindExecution, Path: s.path, Err: err}
	}
	if raw == nil {
		return nil, false, nil
	}
	e, err := binenc.NewDecoder(bytes.NewReader(raw)).Entity()
	if err != nil {
		return nil, false, &domain.OpError{Op: "entitystore.decode", Kind: domain.KindInvalidData, Path: s.path, Err: err}
	}
	return e, true, nil
}

func (s *Store) Counts() (map[netex.Kind]int, error) {
	out := map[netex.Kind]int{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			out[netex.Kind(name)] = b.Stats().KeyN
			return nil
		})
	})
	if err != nil {
		return nil, &domain.OpError{Op: "entitystore.counts", Kind: domain.KindExecution, Path: s.path, Err: err}
	}
	return out, nil
}
