package yamlsuite

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/netex"
	"github.com/stopnorway/stopnorway/internal/ports"
)

type Loader struct {
	suitesDir string
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{suitesDir: "suites"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Option func(*Loader)

func WithSuitesDir(dir string) Option {
	return func(l *Loader) { l.suitesDir = dir }
}

var _ ports.SuiteLoader = (*Loader)(nil)

func (l *Loader) LoadSuite(path string) (domain.Suite, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Suite{}, &domain.OpError{
			Op:   "yamlsuite.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var ys yamlSuite
	if err := yaml.Unmarshal(b, &ys); err != nil {
		return domain.Suite{}, &domain.OpError{
			Op:   "yamlsuite.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return mapAndValidate(path, ys)
}

func (l *Loader) ListSuites(root string) ([]domain.SuiteRef, error) {
	dir := l.suitesDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlsuite.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.SuiteRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p := filepath.Join(dir, name)
		n, _ := readSuiteName(p)
		if strings.TrimSpace(n) == "" {
			n = strings.TrimSuffix(name, filepath.Ext(name))
		}

		refs = append(refs, domain.SuiteRef{Name: n, Path: p})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func readSuiteName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var v struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return "", err
	}
	return v.Name, nil
}

type yamlSuite struct {
	Name      string            `yaml:"name"`
	Operators []string          `yaml:"operators"`
	Vars      map[string]string `yaml:"vars"`
	Queries   []yamlQuery       `yaml:"queries"`
}

type yamlQuery struct {
	Name     string   `yaml:"name"`
	Points   []string `yaml:"points"`
	Accuracy string   `yaml:"accuracy"`
	From     string   `yaml:"from"`
	To       string   `yaml:"to"`
	Where    string   `yaml:"where"`
	Limit    int      `yaml:"limit"`

	Expect yamlExpect `yaml:"expect"`
}

type yamlExpect struct {
	MinJourneys *int     `yaml:"min_journeys"`
	MaxJourneys *int     `yaml:"max_journeys"`
	MaxMinutes  *int     `yaml:"max_minutes"`
	Lines       []string `yaml:"lines"`

	JSONPath map[string]yamlJSONPath `yaml:"jsonpath"`
}

type yamlJSONPath struct {
	Exists   bool     `yaml:"exists"`
	Eq       *string  `yaml:"eq"`
	Contains *string  `yaml:"contains"`
	Matches  *string  `yaml:"matches"`
	Gt       *float64 `yaml:"gt"`
	Lt       *float64 `yaml:"lt"`
}

func mapAndValidate(path string, ys yamlSuite) (domain.Suite, error) {
	if strings.TrimSpace(ys.Name) == "" {
		return domain.Suite{}, invalidField(path, "name", "suite name is required")
	}
	if len(ys.Queries) == 0 {
		return domain.Suite{}, invalidField(path, "queries", "at least one query is required")
	}

	ops, err := netex.ParseOperators(ys.Operators)
	if err != nil {
		return domain.Suite{}, invalidField(path, "operators", err.Error())
	}

	s := domain.Suite{
		Name:    ys.Name,
		Vars:    domain.Vars(ys.Vars),
		Queries: make([]domain.QuerySpec, 0, len(ys.Queries)),
	}
	if s.Vars == nil {
		s.Vars = domain.Vars{}
	}
	for _, op := range ops {
		s.Operators = append(s.Operators, op.String())
	}

	seen := map[string]bool{}
	for i, q := range ys.Queries {
		fieldPrefix := fmt.Sprintf("queries[%d]", i)

		name := strings.TrimSpace(q.Name)
		if name == "" {
			return domain.Suite{}, invalidField(path, fieldPrefix+".name", "query name is required")
		}
		if seen[name] {
			return domain.Suite{}, invalidField(path, fieldPrefix+".name", fmt.Sprintf("duplicate query name %q", name))
		}
		seen[name] = true

		if len(q.Points) == 0 {
			return domain.Suite{}, invalidField(path, fieldPrefix+".points", "at least one point is required")
		}
		if (q.From == "") != (q.To == "") {
			return domain.Suite{}, invalidField(path, fieldPrefix+".from", "from and to must be set together")
		}
		if q.Limit < 0 {
			return domain.Suite{}, invalidField(path, fieldPrefix+".limit", "limit must not be negative")
		}
		e := q.Expect
		if e.MinJourneys != nil && e.MaxJourneys != nil && *e.MinJourneys > *e.MaxJourneys {
			return domain.Suite{}, invalidField(path, fieldPrefix+".expect", "min_journeys exceeds max_journeys")
		}

		s.Queries = append(s.Queries, domain.QuerySpec{
			Name:     name,
			Points:   q.Points,
			Accuracy: strings.TrimSpace(q.Accuracy),
			From:     strings.TrimSpace(q.From),
			To:       strings.TrimSpace(q.To),
			Where:    q.Where,
			Limit:    q.Limit,
			Expect: domain.Expectations{
				MinJourneys: e.MinJourneys,
				MaxJourneys: e.MaxJourneys,
				MaxMinutes:  e.MaxMinutes,
				Lines:       e.Lines,
				JSONPath:    mapJSONPath(e.JSONPath),
			},
		})
	}

	return s, nil
}

func mapJSONPath(in map[string]yamlJSONPath) map[string]domain.JSONPathExpectation {
	if in == nil {
		return nil
	}
	out := make(map[string]domain.JSONPathExpectation, len(in))
	for k, v := range in {
		out[k] = domain.JSONPathExpectation{
			Exists:   v.Exists,
			Eq:       v.Eq,
			Contains: v.Contains,
			Matches:  v.Matches,
			Gt:       v.Gt,
			Lt:       v.Lt,
		}
	}
	return out
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamlsuite.validate",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
