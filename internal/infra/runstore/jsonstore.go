package runstore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/ports"
)

const (
	defaultRunsDir = "runs"
	indexFile      = "index.jsonl"
)

type JSONStore struct {
	runsDir    string
	writeIndex bool
	keepStops  bool
	now        func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a JSONL index: runs/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithStops keeps the per-stop times of each journey. They dominate the artifact size.
func WithStops(enabled bool) Option {
	return func(s *JSONStore) { s.keepStops = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

// NewJSONStore stores runs in cfg.Paths.RunsDir, resolved against root when relative.
func NewJSONStore(root string, cfg domain.Config, opts ...Option) *JSONStore {
	runsDir := cfg.Paths.RunsDir
	if strings.TrimSpace(runsDir) == "" {
		runsDir = defaultRunsDir
	}
	if !filepath.IsAbs(runsDir) {
		runsDir = filepath.Join(root, runsDir)
	}

	s := &JSONStore{
		runsDir:   runsDir,
		keepStops: true,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ArtifactStore = (*JSONStore)(nil)

func (s *JSONStore) Dir() string { return s.runsDir }

func (s *JSONStore) SaveQuery(run domain.QueryRun) (string, error) {
	dir := s.runsDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	ts := run.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := run
	toSave.StartedAt = ts
	if !s.keepStops {
		toSave = withoutStops(toSave)
	}

	slug := slugify(run.Name)
	if slug == "" {
		slug = "query"
	}

	filename := fmt.Sprintf("%s_%s.json", ts.Format("20060102T150405Z"), slug)
	id := strings.TrimSuffix(filename, ".json")
	path := filepath.Join(dir, filename)

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "runstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "runstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "runstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(domain.QueryRef{
			ID:        id,
			File:      filename,
			Name:      run.Name,
			Points:    len(run.Points),
			Journeys:  len(run.Journeys),
			StartedAt: ts,
		})
	}

	return id, nil
}

func (s *JSONStore) appendIndex(ref domain.QueryRef) error {
	line, err := json.Marshal(ref)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(s.runsDir, indexFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// ListQueries returns saved runs, newest first. Without an index the directory is listed
// and only ids and files are known.
func (s *JSONStore) ListQueries() ([]domain.QueryRef, error) {
	refs, err := s.readIndex()
	if errors.Is(err, os.ErrNotExist) {
		refs, err = s.scanDir()
	}
	if err != nil {
		return nil, &domain.OpError{Op: "runstore.list", Kind: domain.KindExecution, Path: s.runsDir, Err: err}
	}
	slices.SortStableFunc(refs, func(a, b domain.QueryRef) int { return strings.Compare(b.ID, a.ID) })
	return refs, nil
}

func (s *JSONStore) readIndex() ([]domain.QueryRef, error) {
	f, err := os.Open(filepath.Join(s.runsDir, indexFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	refs := []domain.QueryRef{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ref domain.QueryRef
		if err := json.Unmarshal([]byte(line), &ref); err != nil {
			// A torn append leaves a partial last line.
			continue
		}
		refs = append(refs, ref)
	}
	return refs, sc.Err()
}

func (s *JSONStore) scanDir() ([]domain.QueryRef, error) {
	entries, err := os.ReadDir(s.runsDir)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.QueryRef{}, nil
	}
	if err != nil {
		return nil, err
	}
	refs := []domain.QueryRef{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		refs = append(refs, domain.QueryRef{ID: strings.TrimSuffix(name, ".json"), File: name})
	}
	return refs, nil
}

// LoadQuery reads a saved run by id.
func (s *JSONStore) LoadQuery(id string) (domain.QueryRun, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return domain.QueryRun{}, &domain.OpError{
			Op:   "runstore.load",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%w: bad run id %q", domain.ErrInvalidConfig, id),
		}
	}
	path := filepath.Join(s.runsDir, id+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, os.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return domain.QueryRun{}, &domain.OpError{Op: "runstore.load", Kind: kind, Path: path, Err: err}
	}
	var run domain.QueryRun
	if err := json.Unmarshal(b, &run); err != nil {
		return domain.QueryRun{}, &domain.OpError{Op: "runstore.load", Kind: domain.KindInvalidData, Path: path, Err: err}
	}
	return run, nil
}

// withoutStops returns a copy with per-stop times dropped. The input is not mutated.
func withoutStops(run domain.QueryRun) domain.QueryRun {
	out := run
	out.Journeys = make([]domain.JourneyView, len(run.Journeys))
	for i, j := range run.Journeys {
		j.Stops = nil
		out.Journeys[i] = j
	}
	return out
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
