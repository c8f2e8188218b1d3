package domain

// UnzipStats summarizes an archive extraction.
type UnzipStats struct {
	Matched int `json:"matched"`
	Copied  int `json:"copied"`
}

// DatabaseStats describes a built database.
type DatabaseStats struct {
	Operators      []string       `json:"operators"`
	Source         string         `json:"source"`
	Entities       map[string]int `json:"entities"`
	Specifications int            `json:"specifications"`
	Journeys       int            `json:"journeys"`
	Cells          int            `json:"cells"`
	Box            string         `json:"box"`
	Scale          string         `json:"scale"`
	TimeScale      string         `json:"time_scale"`
}
