package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// VarResolver resolves {{var}} placeholders in query specs.
// Built-ins: {{$now}} (local time of day), {{$timestamp}} and {{$uuid}}.
type VarResolver struct {
	now    func() time.Time
	uuidV4 func() (string, error)
}

// VarResolverOption configures VarResolver.
type VarResolverOption func(*VarResolver)

// WithNow overrides the clock (useful for tests).
func WithNow(now func() time.Time) VarResolverOption {
	return func(r *VarResolver) { r.now = now }
}

// WithUUID overrides UUID generation (useful for tests).
func WithUUID(gen func() (string, error)) VarResolverOption {
	return func(r *VarResolver) { r.uuidV4 = gen }
}

func NewVarResolver(opts ...VarResolverOption) *VarResolver {
	r := &VarResolver{
		now:    time.Now,
		uuidV4: uuidV4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RuntimeResolver caches built-ins for one query so that repeated {{$now}} reads
// the same instant in every field.
type RuntimeResolver struct {
	base     Vars
	builtins Vars
	inner    *VarResolver
}

func (r *VarResolver) NewRuntime(vars Vars) (*RuntimeResolver, error) {
	now := r.now()

	u, err := r.uuidV4()
	if err != nil {
		return nil, &OpError{
			Op:   "vars.builtins.uuid",
			Kind: KindExecution,
			Err:  err,
		}
	}

	return &RuntimeResolver{
		base: Merge(vars, nil),
		builtins: Vars{
			"$now":       now.Format("15:04:05"),
			"$timestamp": strconv.FormatInt(now.Unix(), 10),
			"$uuid":      u,
		},
		inner: r,
	}, nil
}

// ResolveString resolves placeholders in a string.
func (rr *RuntimeResolver) ResolveString(s string) (string, error) {
	return rr.inner.resolveStringWith(rr.base, rr.builtins, s)
}

// ResolveQuery resolves placeholders in points, accuracy, window, filter and the
// string expectations. It returns a copy.
func (rr *RuntimeResolver) ResolveQuery(q QuerySpec) (QuerySpec, error) {
	out := q

	out.Points = make([]string, 0, len(q.Points))
	for i, p := range q.Points {
		v, err := rr.ResolveString(p)
		if err != nil {
			return QuerySpec{}, wrapField(err, fmt.Sprintf("query.points[%d]", i))
		}
		out.Points = append(out.Points, v)
	}

	fields := []struct {
		name string
		v    *string
	}{
		{"query.accuracy", &out.Accuracy},
		{"query.from", &out.From},
		{"query.to", &out.To},
		{"query.where", &out.Where},
	}
	for _, f := range fields {
		v, err := rr.ResolveString(*f.v)
		if err != nil {
			return QuerySpec{}, wrapField(err, f.name)
		}
		*f.v = v
	}

	if len(q.Expect.JSONPath) > 0 {
		out.Expect.JSONPath = make(map[string]JSONPathExpectation, len(q.Expect.JSONPath))
		for expr, e := range q.Expect.JSONPath {
			for _, p := range []**string{&e.Eq, &e.Contains} {
				if *p == nil {
					continue
				}
				v, err := rr.ResolveString(**p)
				if err != nil {
					return QuerySpec{}, wrapField(err, "query.expect.jsonpath")
				}
				*p = &v
			}
			out.Expect.JSONPath[expr] = e
		}
	}
	return out, nil
}

func (r *VarResolver) resolveStringWith(vars Vars, builtins Vars, s string) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s) + 16)

	for i := 0; i < len(s); {
		if i+1 < len(s) && s[i] == '{' && s[i+1] == '{' {
			start := i + 2

			end := strings.Index(s[start:], "}}")
			if end < 0 {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindInvalidConfig,
					Err:  errors.New("unclosed placeholder"),
				}
			}
			end = start + end

			name := strings.TrimSpace(s[start:end])
			if name == "" {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindInvalidConfig,
					Err:  errors.New("empty placeholder"),
				}
			}

			val, ok := builtins[name]
			if !ok {
				val, ok = vars[name]
			}
			if !ok {
				return "", &OpError{
					Op:   "vars.resolve",
					Kind: KindMissingVar,
					Err:  fmt.Errorf("missing variable: %s", name),
				}
			}

			b.WriteString(val)
			i = end + 2
			continue
		}

		b.WriteByte(s[i])
		i++
	}

	return b.String(), nil
}

// wrapField keeps the kind and names the field being resolved.
func wrapField(err error, field string) error {
	return &OpError{
		Op:   "vars.resolve",
		Kind: kindFrom(err),
		Err:  fmt.Errorf("%s: %w", field, err),
	}
}

func kindFrom(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindExecution
}

func uuidV4() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
