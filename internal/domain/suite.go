package domain

// JSONPathExpectation checks one JSONPath expression over the JSON form of a query run.
type JSONPathExpectation struct {
	Exists   bool
	Eq       *string
	Contains *string
	Matches  *string
	Gt       *float64
	Lt       *float64
}

// Expectations are the checks evaluated against a query run. Unset fields are skipped.
type Expectations struct {
	MinJourneys *int
	MaxJourneys *int

	// MaxMinutes bounds the duration of every journey found.
	MaxMinutes *int

	// Lines lists public codes that must appear among the journeys.
	Lines []string

	// JSONPath is keyed by expression, e.g. "$.journeys[0].line".
	JSONPath map[string]JSONPathExpectation
}

// QuerySpec is one named query of a suite. Every string field may hold {{name}}
// placeholders, resolved before the query is parsed.
type QuerySpec struct {
	Name     string
	Points   []string
	Accuracy string
	From     string
	To       string
	Where    string
	Limit    int

	Expect Expectations
}

// Suite groups journey queries that run against one database.
type Suite struct {
	Name      string
	Operators []string

	// Vars are defaults for placeholders. Place files override them.
	Vars Vars

	Queries []QuerySpec
}

// SuiteRef is a lightweight reference to a suite file on disk.
type SuiteRef struct {
	Name string
	Path string
}
