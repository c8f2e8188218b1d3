package usecase

import (
	"context"
	"fmt"

	"github.com/stopnorway/stopnorway/internal/domain"
	"github.com/stopnorway/stopnorway/internal/ports"
)

type ValidateSuite struct {
	suites   ports.SuiteLoader
	places   ports.PlacesLoader
	resolver *domain.VarResolver
}

type ValidateOption func(*ValidateSuite)

func WithVarResolver(vr *domain.VarResolver) ValidateOption {
	return func(uc *ValidateSuite) {
		if vr != nil {
			uc.resolver = vr
		}
	}
}

func NewValidateSuite(sl ports.SuiteLoader, pl ports.PlacesLoader, opts ...ValidateOption) *ValidateSuite {
	uc := &ValidateSuite{
		suites:   sl,
		places:   pl,
		resolver: domain.NewVarResolver(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute checks a suite and place set pair without building a database: every
// placeholder must resolve and every query must parse, filter included.
func (uc *ValidateSuite) Execute(ctx context.Context, suitePath string, placesName string) (domain.Suite, error) {
	suite, vars, err := loadSuite(uc.suites, uc.places, suitePath, placesName)
	if err != nil {
		return domain.Suite{}, err
	}

	for _, spec := range suite.Queries {
		if err := ctx.Err(); err != nil {
			return suite, err
		}

		rt, err := uc.resolver.NewRuntime(vars)
		if err != nil {
			return suite, err
		}
		resolved, err := rt.ResolveQuery(spec)
		if err != nil {
			return suite, fmt.Errorf("query %q: %w", spec.Name, err)
		}
		if _, err := ParseQuerySpec(resolved); err != nil {
			return suite, fmt.Errorf("query %q: %w", spec.Name, err)
		}
	}

	return suite, nil
}
