package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/ports"
)

const zipSuffix = ".zip"

// Importer extracts the operators' NeTEx documents from an archive into a sibling
// directory.
type Importer struct {
	log      *slog.Logger
	suffixes []string
}

type Option func(*Importer)

func WithLogger(l *slog.Logger) Option {
	return func(i *Importer) { i.log = l }
}

// WithSuffixes selects which entries are extracted, by case-insensitive name suffix.
// The default is NeTEx documents, ".xml" and ".xml.gz".
func WithSuffixes(suffixes ...string) Option {
	return func(i *Importer) { i.suffixes = suffixes }
}

func New(opts ...Option) *Importer {
	i := &Importer{
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		suffixes: []string{".xml", ".xml.gz"},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

var _ ports.Unzipper = (*Importer)(nil)

// TargetPath is the zip path without its ".zip" suffix.
func TargetPath(zipFile string) string {
	return strings.TrimSuffix(zipFile, zipSuffix)
}

func (i *Importer) TargetPath(zipFile string) string { return TargetPath(zipFile) }

// Unzip copies the wanted entries whose names contain one of the operator codes, or every
// wanted entry when no operators are given. Files already present with content are kept.
func (i *Importer) Unzip(ctx context.Context, zipFile string, operators []netex.Operator) (string, domain.UnzipStats, error) {
	var stats domain.UnzipStats

	info, err := os.Stat(zipFile)
	if err != nil || !info.Mode().IsRegular() {
		return "", stats, &domain.OpError{
			Op:   "importer.unzip",
			Kind: domain.KindNotFound,
			Path: zipFile,
			Err:  errors.Join(domain.ErrNotFound, err),
		}
	}
	if !strings.HasSuffix(zipFile, zipSuffix) {
		return "", stats, &domain.OpError{
			Op:   "importer.unzip",
			Kind: domain.KindInvalidConfig,
			Path: zipFile,
			Err:  errors.New("not a zip file"),
		}
	}

	target := TargetPath(zipFile)
	if ti, err := os.Stat(target); err == nil && !ti.IsDir() {
		return "", stats, &domain.OpError{
			Op:   "importer.unzip",
			Kind: domain.KindInvalidConfig,
			Path: target,
			Err:  errors.New("target exists and is not a directory"),
		}
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", stats, &domain.OpError{
			Op:   "importer.mkdir",
			Kind: domain.KindExecution,
			Path: target,
			Err:  err,
		}
	}

	zr, err := zip.OpenReader(zipFile)
	if err != nil {
		return "", stats, &domain.OpError{
			Op:   "importer.open",
			Kind: domain.KindInvalidData,
			Path: zipFile,
			Err:  err,
		}
	}
	defer zr.Close()

	i.log.Info("importer.unzip.start", "zip", zipFile, "target", target, "operators", operators)

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return "", stats, err
		}
		name := path.Base(f.Name)
		if f.FileInfo().IsDir() || !i.wanted(name) || !matches(name, operators) {
			continue
		}
		stats.Matched++
		copied, err := i.copyEntry(f, filepath.Join(target, name), stats.Matched)
		if err != nil {
			return "", stats, &domain.OpError{
				Op:   "importer.copy",
				Kind: domain.KindExecution,
				Path: f.Name,
				Err:  err,
			}
		}
		if copied {
			stats.Copied++
		}
	}

	i.log.Info("importer.unzip.done", "copied", stats.Copied, "matched", stats.Matched, "target", target)
	return target, stats, nil
}

func (i *Importer) copyEntry(f *zip.File, dst string, count int) (bool, error) {
	existing, err := os.Stat(dst)
	switch {
	case err == nil && existing.Size() > 0:
		return false, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, err
	}

	if shouldLog(count) {
		i.log.Info("importer.copy", "count", count, "file", f.Name, "overwrite", err == nil)
	}

	src, err := f.Open()
	if err != nil {
		return false, err
	}
	defer src.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return false, fmt.Errorf("extract: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return false, err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return false, err
	}
	return true, nil
}

func (i *Importer) wanted(name string) bool {
	n := strings.ToLower(name)
	for _, s := range i.suffixes {
		if strings.HasSuffix(n, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func matches(name string, operators []netex.Operator) bool {
	if len(operators) == 0 {
		return true
	}
	for _, op := range operators {
		if strings.Contains(name, string(op)) {
			return true
		}
	}
	return false
}

// shouldLog thins out per-file logging as the count grows.
func shouldLog(count int) bool {
	return count < 3 ||
		count < 100 && count%10 == 0 ||
		count < 1_000 && count%100 == 0 ||
		count < 10_000 && count%500 == 0
}
