package usecase

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stopnorway/stopnorway/internal/database"
	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/netex/netextest"
	"github.com/stopnorway/stopnorway/internal/netex/parse"
	"github.com/stopnorway/stopnorway/internal/ports"
)

var (
	_ ports.Unzipper      = (*fakeUnzipper)(nil)
	_ ports.DatabaseStore = (*fakeDBStore)(nil)
	_ ports.EntityStore   = (*fakeEntityStore)(nil)
	_ ports.EntityParser  = (*parse.Parser)(nil)
)

type fakeUnzipper struct {
	dir   string
	calls int
	ops   [][]netex.Operator
	err   error
}

func (f *fakeUnzipper) TargetPath(string) string { return f.dir }

func (f *fakeUnzipper) Unzip(_ context.Context, _ string, ops []netex.Operator) (string, domain.UnzipStats, error) {
	f.calls++
	f.ops = append(f.ops, ops)
	if f.err != nil {
		return "", domain.UnzipStats{}, f.err
	}
	return f.dir, domain.UnzipStats{Matched: 2, Copied: 2}, nil
}

type fakeDBStore struct {
	written map[string]*database.Database
	ops     map[string][]netex.Operator
	reads   int
	readErr error
}

func newFakeDBStore() *fakeDBStore {
	return &fakeDBStore{written: map[string]*database.Database{}, ops: map[string][]netex.Operator{}}
}

func (s *fakeDBStore) SerialPath(dir string, ops []netex.Operator) string {
	name := "database"
	for _, op := range ops {
		name += "-" + op.String()
	}
	return filepath.Join(dir, name+".ser")
}

func (s *fakeDBStore) Exists(path string) bool {
	_, ok := s.written[path]
	return ok
}

func (s *fakeDBStore) Write(_ context.Context, path string, db *database.Database, ops []netex.Operator) error {
	s.written[path] = db
	s.ops[path] = ops
	return nil
}

func (s *fakeDBStore) Read(_ context.Context, path string) (*database.Database, domain.SerialHeader, error) {
	s.reads++
	if s.readErr != nil {
		return nil, domain.SerialHeader{}, s.readErr
	}
	db := s.written[path]
	return db, domain.SerialHeader{Entities: db.Size()}, nil
}

func (s *fakeDBStore) ReadHeader(path string) (domain.SerialHeader, error) {
	return domain.SerialHeader{Entities: s.written[path].Size()}, nil
}

type fakeEntityStore struct {
	path    string
	put     *netex.Set
	closed  bool
	content map[string]netex.Entity
}

func (s *fakeEntityStore) PutAll(_ context.Context, set *netex.Set) error {
	s.put = set
	return nil
}

func (s *fakeEntityStore) Get(id netex.ID) (netex.Entity, bool, error) {
	e, ok := s.content[id.String()]
	return e, ok, nil
}

func (s *fakeEntityStore) Counts() (map[netex.Kind]int, error) { return nil, nil }

func (s *fakeEntityStore) Close() error {
	s.closed = true
	return nil
}

func fixtureDB(t *testing.T) *database.Database {
	t.Helper()
	set := netex.NewSet()
	for _, doc := range []string{netextest.SharedData, netextest.LineData} {
		s, err := parse.Document(context.Background(), strings.NewReader(doc), nil)
		if err != nil {
			t.Fatalf("parse fixture: %v", err)
		}
		if err := set.Merge(s); err != nil {
			t.Fatalf("merge fixture: %v", err)
		}
	}
	return database.New(set)
}

type harness struct {
	dbs      *Databases
	unzipper *fakeUnzipper
	store    *fakeDBStore
	opened   []*fakeEntityStore
}

func defaultSettings(t *testing.T) DatabaseSettings {
	t.Helper()
	s, err := SettingsFromConfig(domain.DefaultConfig())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	s.Operators = []netex.Operator{"ATB", "RUT"}
	return s
}

func newHarness(t *testing.T, settings DatabaseSettings) *harness {
	t.Helper()
	dir := t.TempDir()
	netextest.WriteDataset(t, dir)
	h := &harness{unzipper: &fakeUnzipper{dir: dir}, store: newFakeDBStore()}
	if settings.Archive == "" {
		settings.Archive = filepath.Join(dir, "netex.zip")
	}
	open := func(path string) (ports.EntityStore, error) {
		es := &fakeEntityStore{path: path}
		h.opened = append(h.opened, es)
		return es, nil
	}
	h.dbs = NewDatabases(settings, h.unzipper, parse.New(parse.WithParallelism(2)), h.store, WithEntityStore(open))
	return h
}
