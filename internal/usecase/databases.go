package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/stopnorway/stopnorway/internal/database"
	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/geo"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/ports"
)

// DatabaseSettings are the parameters a database is built with.
type DatabaseSettings struct {
	Archive       string
	Operators     []netex.Operator
	Box           geo.Box
	Scale         geo.Scale
	TemporalScale time.Duration
	// Custom marks settings that differ from the defaults. Such databases are neither
	// read from nor written to the shared serial form.
	Custom bool
}

// SettingsFromConfig derives build settings from the workspace config.
func SettingsFromConfig(cfg domain.Config) (DatabaseSettings, error) {
	ops, err := netex.ParseOperators(cfg.Operators)
	if err != nil {
		return DatabaseSettings{}, &domain.OpError{Op: "config.operators", Kind: domain.KindInvalidConfig, Err: err}
	}
	if len(ops) == 0 {
		ops = slices.Clone(netex.KnownOperators)
	}
	if _, err := geo.NewScale(cfg.Scale.Lat, cfg.Scale.Lon); err != nil {
		return DatabaseSettings{}, &domain.OpError{Op: "config.scale", Kind: domain.KindInvalidConfig, Err: err}
	}
	if cfg.TimeScale <= 0 {
		return DatabaseSettings{}, &domain.OpError{
			Op:   "config.time_scale",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: time scale must be positive", domain.ErrInvalidConfig),
		}
	}
	return DatabaseSettings{
		Archive:       cfg.Archive,
		Operators:     ops,
		Box:           cfg.Box.Box(),
		Scale:         cfg.Scale,
		TemporalScale: cfg.TimeScale,
		Custom:        !cfg.IsDefault(),
	}, nil
}

// BuildMode selects how Databases obtains a database.
type BuildMode int

const (
	// ModeGet reads the serial form when present, and otherwise builds and writes it.
	ModeGet BuildMode = iota
	// ModeRebuild always builds from the archive and writes the serial form.
	ModeRebuild
	// ModeAdhoc always builds from the archive and writes nothing.
	ModeAdhoc
)

func (m BuildMode) String() string {
	switch m {
	case ModeRebuild:
		return "rebuild"
	case ModeAdhoc:
		return "adhoc"
	default:
		return "get"
	}
}

// BuildResult is a database and where it came from.
type BuildResult struct {
	DB         *database.Database
	Operators  []netex.Operator
	SerialPath string
	FromSerial bool
	Dumped     bool
	Unzip      domain.UnzipStats
	Sources    int
}

// Stats describes the result for output.
func (r BuildResult) Stats() domain.DatabaseStats {
	s := r.DB.Stats()
	for _, op := range r.Operators {
		s.Operators = append(s.Operators, op.String())
	}
	s.Source = "archive"
	if r.FromSerial {
		s.Source = r.SerialPath
	}
	return s
}

type Databases struct {
	settings DatabaseSettings
	unzipper ports.Unzipper
	parser   ports.EntityParser
	store    ports.DatabaseStore
	entities ports.EntityStoreOpener
	log      *slog.Logger
}

type DatabasesOption func(*Databases)

// WithEntityStore refreshes the entity store whenever a serial form is written.
func WithEntityStore(open ports.EntityStoreOpener) DatabasesOption {
	return func(uc *Databases) { uc.entities = open }
}

func WithDatabasesLogger(l *slog.Logger) DatabasesOption {
	return func(uc *Databases) {
		if l != nil {
			uc.log = l
		}
	}
}

func NewDatabases(settings DatabaseSettings, uz ports.Unzipper, p ports.EntityParser, store ports.DatabaseStore, opts ...DatabasesOption) *Databases {
	uc := &Databases{
		settings: settings,
		unzipper: uz,
		parser:   p,
		store:    store,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Resolve returns the operators to load and whether that is every configured operator.
func (uc *Databases) Resolve(operators []netex.Operator) ([]netex.Operator, bool) {
	if len(operators) == 0 {
		return slices.Clone(uc.settings.Operators), true
	}
	ops := slices.Clone(operators)
	slices.Sort(ops)
	ops = slices.Compact(ops)
	all := len(uc.settings.Operators) > 0 && len(ops) == len(uc.settings.Operators)
	for _, op := range ops {
		all = all && slices.Contains(uc.settings.Operators, op)
	}
	return ops, all
}

// SerialPath is where the serial form for operators lives.
func (uc *Databases) SerialPath(operators []netex.Operator) string {
	ops, all := uc.Resolve(operators)
	if all {
		ops = nil
	}
	return uc.store.SerialPath(uc.unzipper.TargetPath(uc.settings.Archive), ops)
}

// Header reads the metadata of the stored serial form for operators without loading its
// entities.
func (uc *Databases) Header(operators []netex.Operator) (string, domain.SerialHeader, error) {
	path := uc.SerialPath(operators)
	if !uc.store.Exists(path) {
		return path, domain.SerialHeader{}, &domain.OpError{
			Op:   "databases.header",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  fmt.Errorf("no serial form (tip: run `stopnorway build`): %w", domain.ErrNotFound),
		}
	}
	h, err := uc.store.ReadHeader(path)
	if err != nil {
		return path, domain.SerialHeader{}, &domain.OpError{Op: "databases.header", Kind: domain.KindInvalidData, Path: path, Err: err}
	}
	return path, h, nil
}

// EntityStorePath is the entity store kept next to a serial form.
func EntityStorePath(serialPath string) string {
	return strings.TrimSuffix(serialPath, ".ser") + ".db"
}

func (uc *Databases) Get(ctx context.Context, operators ...netex.Operator) (BuildResult, error) {
	return uc.Build(ctx, ModeGet, operators)
}

func (uc *Databases) Rebuild(ctx context.Context, operators ...netex.Operator) (BuildResult, error) {
	return uc.Build(ctx, ModeRebuild, operators)
}

func (uc *Databases) Adhoc(ctx context.Context, operators ...netex.Operator) (BuildResult, error) {
	return uc.Build(ctx, ModeAdhoc, operators)
}

// Build obtains a database for operators, all configured ones when none are given.
func (uc *Databases) Build(ctx context.Context, mode BuildMode, operators []netex.Operator) (BuildResult, error) {
	if strings.TrimSpace(uc.settings.Archive) == "" {
		return BuildResult{}, &domain.OpError{
			Op:   "databases.build",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: no archive configured", domain.ErrInvalidConfig),
		}
	}

	ops, _ := uc.Resolve(operators)
	res := BuildResult{Operators: ops, SerialPath: uc.SerialPath(operators)}
	reuse := mode == ModeGet && !uc.settings.Custom
	dump := mode == ModeRebuild || reuse

	if reuse && uc.store.Exists(res.SerialPath) {
		uc.log.Info("databases.read", "path", res.SerialPath)
		db, _, err := uc.store.Read(ctx, res.SerialPath)
		if err == nil {
			res.DB, res.FromSerial = db, true
			return res, nil
		}
		if !domain.IsKind(err, domain.KindInvalidData) {
			return BuildResult{}, err
		}
		uc.log.Warn("databases.read.invalid", "path", res.SerialPath, "err", err)
	}

	uc.log.Info("databases.build", "mode", mode.String(), "operators", len(ops), "dump", dump)
	dir, stats, err := uc.unzipper.Unzip(ctx, uc.settings.Archive, ops)
	if err != nil {
		return BuildResult{}, err
	}
	res.Unzip = stats

	sources, err := uc.parser.Sources(dir, ops)
	if err != nil {
		return BuildResult{}, &domain.OpError{Op: "databases.sources", Kind: domain.KindExecution, Path: dir, Err: err}
	}
	if len(sources) == 0 {
		return BuildResult{}, &domain.OpError{
			Op:   "databases.sources",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  fmt.Errorf("%w: no NeTEx documents for %v", domain.ErrNotFound, ops),
		}
	}
	res.Sources = len(sources)

	set, err := uc.parser.Parse(ctx, sources)
	if err != nil {
		return BuildResult{}, err
	}
	res.DB = database.New(set,
		database.WithBox(uc.settings.Box),
		database.WithScale(uc.settings.Scale),
		database.WithTimeScale(uc.settings.TemporalScale),
		database.WithLogger(uc.log),
	)

	if !dump {
		return res, nil
	}
	_, all := uc.Resolve(operators)
	var serialOps []netex.Operator
	if !all {
		serialOps = ops
	}
	if err := uc.store.Write(ctx, res.SerialPath, res.DB, serialOps); err != nil {
		return BuildResult{}, err
	}
	res.Dumped = true

	if uc.entities != nil {
		if err := uc.refreshEntities(ctx, EntityStorePath(res.SerialPath), set); err != nil {
			return BuildResult{}, err
		}
	}
	return res, nil
}

func (uc *Databases) refreshEntities(ctx context.Context, path string, set *netex.Set) (err error) {
	es, err := uc.entities(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, es.Close()) }()
	return es.PutAll(ctx, set)
}
