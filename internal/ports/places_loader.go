package ports

import "github.com/stopnorway/stopnorway/internal/domain"

// PlacesLoader accepts a place set name (e.g. "oslo") or a path to a YAML file.
type PlacesLoader interface {
	LoadPlaces(nameOrPath string) (domain.PlaceSet, error)
}
