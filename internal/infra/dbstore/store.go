package dbstore

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/stopnorway/stopnorway/internal/database"
	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/infra/binenc"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/ports"
)

const (
	magic         = "SNDB"
	formatVersion = 1
	checkEvery    = 4096
)

type Store struct {
	log   *slog.Logger
	level zstd.EncoderLevel
	now   func() time.Time
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLevel sets the zstd compression level.
func WithLevel(level zstd.EncoderLevel) Option {
	return func(s *Store) { s.level = level }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		log:   slog.New(slog.DiscardHandler),
		level: zstd.SpeedDefault,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.DatabaseStore = (*Store)(nil)

// SerialPath names the serial form for a set of operators: database.ser when none are
// given, database-OP1-OP2.ser otherwise.
func SerialPath(dir string, operators []netex.Operator) string {
	if len(operators) == 0 {
		return filepath.Join(dir, "database.ser")
	}
	names := make([]string, 0, len(operators))
	for _, op := range operators {
		names = append(names, op.String())
	}
	slices.Sort(names)
	names = slices.Compact(names)
	return filepath.Join(dir, "database-"+strings.Join(names, "-")+".ser")
}

func (s *Store) SerialPath(dir string, operators []netex.Operator) string {
	return SerialPath(dir, operators)
}

// Exists reports whether path is a regular, non-empty file.
func (s *Store) Exists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}

// Write stores db at path through a temporary file.
func (s *Store) Write(ctx context.Context, path string, db *database.Database, operators []netex.Operator) error {
	start := s.now()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: "dbstore.mkdir", Kind: domain.KindExecution, Path: filepath.Dir(path), Err: err}
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &domain.OpError{Op: "dbstore.create", Kind: domain.KindExecution, Path: tmp, Err: err}
	}

	if err := s.encode(ctx, f, db, operators); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		if ctx.Err() != nil {
			return err
		}
		return &domain.OpError{Op: "dbstore.write", Kind: domain.KindExecution, Path: tmp, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{Op: "dbstore.close", Kind: domain.KindExecution, Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &domain.OpError{Op: "dbstore.rename", Kind: domain.KindExecution, Path: path, Err: err}
	}

	fi, _ := os.Stat(path)
	var size int64
	if fi != nil {
		size = fi.Size()
	}
	s.log.Info("dbstore.written",
		"path", path,
		"entities", db.Size(),
		"bytes", size,
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return nil
}

func (s *Store) encode(ctx context.Context, w io.Writer, db *database.Database, operators []netex.Operator) error {
	var pre [4 + binary.MaxVarintLen64]byte
	n := copy(pre[:], magic)
	n += binary.PutUvarint(pre[n:], formatVersion)
	if _, err := w.Write(pre[:n]); err != nil {
		return err
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(s.level))
	if err != nil {
		return err
	}
	enc := binenc.NewEncoder(zw)

	enc.Uvarint(uint64(len(operators)))
	for _, op := range operators {
		enc.String(op.String())
	}
	enc.Box(db.Box())
	enc.Uvarint(uint64(db.Scale().Lat))
	enc.Uvarint(uint64(db.Scale().Lon))
	enc.Varint(int64(db.TemporalScale()))
	enc.Varint(s.now().UTC().UnixNano())
	enc.Uvarint(uint64(db.Size()))

	count := 0
	var ctxErr error
	db.Entities().Each(func(e netex.Entity) bool {
		if count%checkEvery == 0 {
			if ctxErr = ctx.Err(); ctxErr != nil {
				return false
			}
		}
		enc.Entity(e)
		count++
		return enc.Err() == nil
	})
	if ctxErr != nil {
		_ = zw.Close()
		return ctxErr
	}
	if err := enc.Flush(); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

// ReadHeader decodes only the metadata of the serial form at path.
func (s *Store) ReadHeader(path string) (domain.SerialHeader, error) {
	var h domain.SerialHeader
	err := s.open(path, func(dec *binenc.Decoder) error {
		var err error
		h, err = readHeader(dec)
		return err
	})
	return h, err
}

// Read rebuilds the database stored at path.
func (s *Store) Read(ctx context.Context, path string) (*database.Database, domain.SerialHeader, error) {
	start := s.now()
	var h domain.SerialHeader
	set := netex.NewSet()
	err := s.open(path, func(dec *binenc.Decoder) error {
		var err error
		if h, err = readHeader(dec); err != nil {
			return err
		}
		for i := range h.Entities {
			if i%checkEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			e, err := dec.Entity()
			if err != nil {
				return fmt.Errorf("entity %d of %d: %w", i+1, h.Entities, err)
			}
			if err := set.Add(e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, domain.SerialHeader{}, err
	}

	s.log.Info("dbstore.read",
		"path", path,
		"entities", set.Len(),
		"written", h.Written,
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	db := database.New(set,
		database.WithBox(h.Box),
		database.WithScale(h.Scale),
		database.WithTimeScale(h.TemporalScale),
		database.WithLogger(s.log),
	)
	return db, h, nil
}

func (s *Store) open(path string, fn func(*binenc.Decoder) error) error {
	f, err := os.Open(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, os.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return &domain.OpError{Op: "dbstore.open", Kind: kind, Path: path, Err: err}
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var got [len(magic)]byte
	if _, err := io.ReadFull(br, got[:]); err != nil || string(got[:]) != magic {
		return &domain.OpError{Op: "dbstore.magic", Kind: domain.KindInvalidData, Path: path, Err: domain.ErrInvalidData}
	}
	version, err := binary.ReadUvarint(br)
	if err != nil || version != formatVersion {
		return &domain.OpError{
			Op:   "dbstore.version",
			Kind: domain.KindInvalidData,
			Path: path,
			Err:  fmt.Errorf("%w: format version %d, want %d", domain.ErrInvalidData, version, formatVersion),
		}
	}

	zr, err := zstd.NewReader(br)
	if err != nil {
		return &domain.OpError{Op: "dbstore.decompress", Kind: domain.KindInvalidData, Path: path, Err: err}
	}
	defer zr.Close()

	if err := fn(binenc.NewDecoder(zr).WithInterner(netex.NewInterner())); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &domain.OpError{Op: "dbstore.decode", Kind: domain.KindInvalidData, Path: path, Err: err}
	}
	return nil
}

func readHeader(dec *binenc.Decoder) (domain.SerialHeader, error) {
	h := domain.SerialHeader{Version: formatVersion}
	n := dec.Len()
	for range n {
		h.Operators = append(h.Operators, dec.String())
	}
	h.Box = dec.Box()
	lat, lon := dec.Uvarint(), dec.Uvarint()
	h.TemporalScale = time.Duration(dec.Varint())
	h.Written = time.Unix(0, dec.Varint()).UTC()
	h.Entities = dec.Len()
	if err := dec.Err(); err != nil {
		return domain.SerialHeader{}, fmt.Errorf("header: %w", err)
	}
	scale, err := geo.NewScale(int(lat), int(lon))
	if err != nil {
		return domain.SerialHeader{}, fmt.Errorf("header: %w", err)
	}
	h.Scale = scale
	return h, nil
}
