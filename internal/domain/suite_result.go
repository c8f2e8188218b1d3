package domain

import "time"

// CheckResult is the output of a single expectation.
type CheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// QueryResult is one executed query of a suite. Error is set when the query could not
// run at all; its checks are then empty.
type QueryResult struct {
	Name   string        `json:"name"`
	Run    QueryRun      `json:"run"`
	Checks []CheckResult `json:"checks"`
	Error  string        `json:"error,omitempty"`
}

func (r QueryResult) Failed() bool {
	if r.Error != "" {
		return true
	}
	for _, c := range r.Checks {
		if !c.Passed {
			return true
		}
	}
	return false
}

// SuiteResult is the outcome of running every query of a suite.
type SuiteResult struct {
	Suite     string        `json:"suite"`
	Path      string        `json:"path"`
	Places    string        `json:"places,omitempty"`
	Operators []string      `json:"operators"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Results   []QueryResult `json:"results"`
}

// Failed counts the queries that errored or had a failing check.
func (r SuiteResult) Failed() int {
	n := 0
	for _, q := range r.Results {
		if q.Failed() {
			n++
		}
	}
	return n
}
