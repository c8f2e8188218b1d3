package domain

import (
	"time"

	"github.com/stopnorway/stopnorway/internal/geo"
)

// SerialHeader is the metadata stored ahead of the entities of a serialized database.
type SerialHeader struct {
	Version       int           `json:"version"`
	Operators     []string      `json:"operators"`
	Box           geo.Box       `json:"box"`
	Scale         geo.Scale     `json:"scale"`
	TemporalScale time.Duration `json:"temporal_scale"`
	Entities      int           `json:"entities"`
	Written       time.Time     `json:"written"`
}
