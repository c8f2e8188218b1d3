package yamlplaces

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/ports"
)

type Loader struct {
	rootDir   string
	placesDir string
	localFile string
}

type Option func(*Loader)

func WithPlacesDir(dir string) Option {
	return func(l *Loader) { l.placesDir = dir }
}

// WithLocalFile names the optional untracked file whose vars override every place set
// in the same directory.
func WithLocalFile(name string) Option {
	return func(l *Loader) { l.localFile = name }
}

func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		rootDir:   root,
		placesDir: "places",
		localFile: "places.local.yaml",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.PlacesLoader = (*Loader)(nil)

// LoadPlaces accepts either a place set name (e.g., "oslo") or a full path to a YAML file.
func (l *Loader) LoadPlaces(nameOrPath string) (domain.PlaceSet, error) {
	var path, name string

	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") || strings.Contains(nameOrPath, string(filepath.Separator)) {
		path = filepath.Clean(nameOrPath)
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	} else {
		name = nameOrPath
		dir := l.placesDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(l.rootDir, dir)
		}
		path = filepath.Join(dir, name+".yaml")
	}

	base, err := readVars(path)
	if err != nil {
		return domain.PlaceSet{}, err
	}

	local, err := readVarsOptional(filepath.Join(filepath.Dir(path), l.localFile))
	if err != nil {
		return domain.PlaceSet{}, err
	}

	return domain.PlaceSet{
		Name: name,
		Vars: domain.Merge(base, local),
	}, nil
}

type yamlPlaces struct {
	Vars map[string]string `yaml:"vars"`
}

func readVars(path string) (domain.Vars, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlplaces.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlPlaces
	if err := yaml.Unmarshal(b, &y); err != nil {
		return nil, &domain.OpError{
			Op:   "yamlplaces.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	if y.Vars == nil {
		y.Vars = map[string]string{}
	}
	return domain.Vars(y.Vars), nil
}

func readVarsOptional(path string) (domain.Vars, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return domain.Vars{}, nil
		}
		return nil, &domain.OpError{
			Op:   "yamlplaces.local",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	v, err := readVars(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load local places: %w", err)
	}
	return v, nil
}
