package usecase

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/flat"
	"github.com/stopnorway/stopnorway/internal/ports"
)

// FlatFile is the outcome of reading one flat file.
type FlatFile struct {
	Path    string        `json:"path"`
	Headers []string      `json:"headers"`
	Count   int           `json:"count"`
	Skipped bool          `json:"skipped"`
	Records []flat.Record `json:"-"`
}

// ReadFlat reads every .txt file of a directory, or of an archive after unzipping it.
type ReadFlat struct {
	unzipper ports.Unzipper
	opts     []flat.Option
	log      *slog.Logger
}

func NewReadFlat(uz ports.Unzipper, log *slog.Logger, opts ...flat.Option) *ReadFlat {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ReadFlat{unzipper: uz, opts: append([]flat.Option{flat.WithLogger(log)}, opts...), log: log}
}

func (uc *ReadFlat) Execute(ctx context.Context, path string) ([]FlatFile, error) {
	dir := path
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		var err error
		if dir, _, err = uc.unzipper.Unzip(ctx, path, nil); err != nil {
			return nil, err
		}
	} else if fi, err := os.Stat(path); err != nil || !fi.IsDir() {
		return nil, &domain.OpError{Op: "flat.open", Kind: domain.KindNotFound, Path: path, Err: domain.ErrNotFound}
	}

	files, err := flat.Files(dir)
	if err != nil {
		return nil, &domain.OpError{Op: "flat.list", Kind: domain.KindExecution, Path: dir, Err: err}
	}

	out := make([]FlatFile, 0, len(files))
	for _, f := range files {
		recs, err := flat.Records(ctx, f, uc.opts...)
		if err != nil {
			return nil, &domain.OpError{Op: "flat.read", Kind: domain.KindInvalidData, Path: f, Err: err}
		}
		ff := FlatFile{Path: f, Records: recs, Count: len(recs), Skipped: recs == nil}
		if !ff.Skipped {
			ff.Headers, _ = flat.Headers(f)
		}
		out = append(out, ff)
	}
	uc.log.Info("flat.done", "files", len(out))
	return out, nil
}
