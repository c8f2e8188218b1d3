package parse

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/netex"
)

// Parser reads many sources concurrently into one entity set.
type Parser struct {
	parallelism int
	log         *slog.Logger
	interner    *netex.Interner
	now         func() time.Time
	interval    time.Duration
	onProgress  func(Snapshot)
}

type Option func(*Parser)

// WithParallelism bounds the number of documents parsed at once. n <= 0 means NumCPU.
func WithParallelism(n int) Option {
	return func(p *Parser) { p.parallelism = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.log = l }
}

func WithInterner(in *netex.Interner) Option {
	return func(p *Parser) { p.interner = in }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithProgressInterval sets the minimum time between progress log lines.
func WithProgressInterval(d time.Duration) Option {
	return func(p *Parser) { p.interval = d }
}

// WithProgressFunc receives a snapshot after every finished source.
func WithProgressFunc(fn func(Snapshot)) Option {
	return func(p *Parser) { p.onProgress = fn }
}

func New(opts ...Option) *Parser {
	p := &Parser{
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		interner: netex.NewInterner(),
		now:      time.Now,
		interval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.parallelism <= 0 {
		p.parallelism = runtime.NumCPU()
	}
	return p
}

// Sources lists the source files for operators in dir.
func (p *Parser) Sources(dir string, operators []netex.Operator) ([]Source, error) {
	return Sources(dir, operators)
}

// Parse parses all sources and merges the results in source order. Identical duplicates
// across documents are tolerated; conflicting ones fail the run.
func (p *Parser) Parse(ctx context.Context, sources []Source) (*netex.Set, error) {
	progress := NewProgress(sources, p.log, p.now, p.interval)
	results := make([]*netex.Set, len(sources))

	p.log.Info("parse.start", "sources", len(sources), "parallelism", p.parallelism)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for i, src := range sources {
		g.Go(func() error {
			set, err := ParseSource(gctx, src, p.interner)
			if err != nil {
				return &domain.OpError{
					Op:   "parse.source",
					Kind: domain.KindInvalidData,
					Path: src.Path,
					Err:  err,
				}
			}
			results[i] = set
			progress.Recorded(src, set.Len())
			if p.onProgress != nil {
				p.onProgress(progress.Snapshot())
			}
			p.log.Debug("parse.source.done", "source", src.String(), "entities", set.Len())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := netex.NewSet()
	for i, set := range results {
		if err := merged.Merge(set); err != nil {
			return nil, &domain.OpError{
				Op:   "parse.merge",
				Kind: domain.KindConflict,
				Path: sources[i].Path,
				Err:  err,
			}
		}
	}

	p.log.Info("parse.done", "entities", merged.Len(), "interned", p.interner.Len())
	return merged, nil
}
