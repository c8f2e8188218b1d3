package workspacefinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/ports"
)

// EnvVar names a workspace root that wins over the upward search.
const EnvVar = "STOPNORWAY_WORKSPACE"

var _ ports.WorkspaceLocator = (*Finder)(nil)

// Finder locates a workspace root: the nearest directory at or above the start that
// holds the config file. The search stops at ceiling directories.
type Finder struct {
	configFile string
	envVar     string
	ceilings   []string
	getenv     func(string) string
}

type FinderOption func(*Finder)

func WithConfigFile(name string) FinderOption {
	return func(f *Finder) {
		if strings.TrimSpace(name) != "" {
			f.configFile = name
		}
	}
}

// WithEnv makes FindRoot consult the variable first. An empty name disables it.
func WithEnv(name string, getenv func(string) string) FinderOption {
	return func(f *Finder) {
		f.envVar = name
		if getenv != nil {
			f.getenv = getenv
		}
	}
}

// WithCeilings stops the search below the given directories; they are not searched.
func WithCeilings(dirs ...string) FinderOption {
	return func(f *Finder) {
		for _, d := range dirs {
			if abs, err := filepath.Abs(d); err == nil {
				f.ceilings = append(f.ceilings, filepath.Clean(abs))
			}
		}
	}
}

func NewFinder(opts ...FinderOption) *Finder {
	f := &Finder{configFile: ConfigFile, envVar: EnvVar, getenv: os.Getenv}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Finder) FindRoot(startDir string) (string, error) {
	if root, ok, err := f.fromEnv(); ok || err != nil {
		return root, err
	}

	if startDir == "" {
		return "", &domain.OpError{
			Op:   "workspacefinder.findroot",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("startDir is empty"),
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{Op: "workspacefinder.findroot", Kind: domain.KindExecution, Err: err}
	}

	// A file path searches from its directory.
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	for cur := filepath.Clean(abs); !f.isCeiling(cur); {
		if f.holdsConfig(cur) {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return "", &domain.OpError{
		Op:   "workspacefinder.findroot",
		Kind: domain.KindNotFound,
		Path: abs,
		Err:  fmt.Errorf("no %s at or above this directory: %w", f.configFile, domain.ErrNotFound),
	}
}

func (f *Finder) fromEnv() (string, bool, error) {
	if f.envVar == "" {
		return "", false, nil
	}
	dir := strings.TrimSpace(f.getenv(f.envVar))
	if dir == "" {
		return "", false, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", true, &domain.OpError{Op: "workspacefinder.env", Kind: domain.KindInvalidConfig, Path: dir, Err: err}
	}
	if !f.holdsConfig(abs) {
		return "", true, &domain.OpError{
			Op:   "workspacefinder.env",
			Kind: domain.KindNotFound,
			Path: abs,
			Err:  fmt.Errorf("%s names a directory without %s: %w", f.envVar, f.configFile, domain.ErrNotFound),
		}
	}
	return abs, true, nil
}

func (f *Finder) holdsConfig(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, f.configFile))
	return err == nil && info.Mode().IsRegular()
}

func (f *Finder) isCeiling(dir string) bool {
	for _, c := range f.ceilings {
		if dir == c {
			return true
		}
	}
	return false
}
