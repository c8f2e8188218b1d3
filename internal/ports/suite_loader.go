package ports

import "github.com/stopnorway/stopnorway/internal/domain"

type SuiteLoader interface {
	LoadSuite(path string) (domain.Suite, error)
	ListSuites(root string) ([]domain.SuiteRef, error)
}
