package dbstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/stopnorway/stopnorway/internal/database"
	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/netex/netextest"
	"github.com/stopnorway/stopnorway/internal/netex/parse"
)

func fixtureDB(t *testing.T, opts ...database.Option) *database.Database {
	t.Helper()
	set := netex.NewSet()
	for _, doc := range []string{netextest.SharedData, netextest.LineData} {
		s, err := parse.Document(context.Background(), strings.NewReader(doc), netex.NewInterner())
		if err != nil {
			t.Fatalf("parse fixture: %v", err)
		}
		if err := set.Merge(s); err != nil {
			t.Fatalf("merge fixture: %v", err)
		}
	}
	return database.New(set, opts...)
}

func TestSerialPath(t *testing.T) {
	cases := []struct {
		ops  []netex.Operator
		want string
	}{
		{nil, "database.ser"},
		{[]netex.Operator{"RUT"}, "database-RUT.ser"},
		{[]netex.Operator{"SKY", "ATB", "SKY"}, "database-ATB-SKY.ser"},
	}
	for _, tc := range cases {
		if got := SerialPath("data", tc.ops); got != filepath.Join("data", tc.want) {
			t.Fatalf("SerialPath(%v) = %q, want %q", tc.ops, got, tc.want)
		}
	}
}

func TestStore_WriteRead(t *testing.T) {
	written := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(WithNow(func() time.Time { return written }))
	path := SerialPath(t.TempDir(), []netex.Operator{"RUT"})

	scale := geo.Scale{Lat: 200, Lon: 100}
	box := geo.NewBox(geo.Pt(59, 10), geo.Pt(61, 12))
	db := fixtureDB(t, database.WithScale(scale), database.WithBox(box), database.WithTimeScale(15*time.Minute))

	if s.Exists(path) {
		t.Fatalf("nothing written yet")
	}
	if err := s.Write(context.Background(), path, db, []netex.Operator{"RUT"}); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !s.Exists(path) {
		t.Fatalf("expected serial form at %s", path)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file left behind: %v", err)
	}

	got, h, err := s.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	wantHeader := domain.SerialHeader{
		Version:       1,
		Operators:     []string{"RUT"},
		Box:           box,
		Scale:         scale,
		TemporalScale: 15 * time.Minute,
		Entities:      db.Size(),
		Written:       written,
	}
	if diff := cmp.Diff(wantHeader, h, cmp.AllowUnexported(geo.Box{}, geo.Point{})); diff != "" {
		t.Fatalf("header (-want +got):\n%s", diff)
	}
	if got.TemporalScale() != db.TemporalScale() || got.Scale() != scale || got.Box() != box {
		t.Fatalf("restored settings %s %s %s", got.TemporalScale(), got.Scale(), got.Box())
	}
	if diff := cmp.Diff(db.Stats(), got.Stats()); diff != "" {
		t.Fatalf("stats (-want +got):\n%s", diff)
	}

	query := geo.Pt(59.912, 10.745).SquareBox(geo.Of(100, geo.M))
	if n := len(got.Journeys(query)); n != 2 {
		t.Fatalf("expected 2 journeys from the restored database, got %d", n)
	}

	only, err := s.ReadHeader(path)
	if err != nil || only.Entities != db.Size() {
		t.Fatalf("ReadHeader: %+v %v", only, err)
	}
}

func TestStore_ReadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, b []byte) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, b, 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	cases := []struct {
		name string
		path string
		kind domain.ErrorKind
	}{
		{"missing", filepath.Join(dir, "nope.ser"), domain.KindNotFound},
		{"bad magic", write("magic.ser", []byte("KRYO\x01")), domain.KindInvalidData},
		{"bad version", write("version.ser", []byte("SNDB\x09")), domain.KindInvalidData},
		{"bad body", write("body.ser", []byte("SNDB\x01not zstd at all")), domain.KindInvalidData},
	}
	s := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.Read(context.Background(), tc.path)
			if !domain.IsKind(err, tc.kind) {
				t.Fatalf("expected %s, got %v", tc.kind, err)
			}
		})
	}
}

func TestStore_WriteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "database.ser")
	err := New().Write(ctx, path, fixtureDB(t), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if New().Exists(path) {
		t.Fatalf("cancelled write must not leave a serial form")
	}
}
