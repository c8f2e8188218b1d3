package domain

import "time"

// StopView is one scheduled stop of a journey as presented to users and filters.
type StopView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arrival   string `json:"arrival"`
	Departure string `json:"departure"`
}

// JourneyView is the flattened form of a journey used for output, artifacts and
// --where expressions. Field names are the identifiers available to expressions.
type JourneyView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Operator      string     `json:"operator"`
	Line          string     `json:"line"`
	PublicCode    string     `json:"public_code"`
	TransportMode string     `json:"transport_mode"`
	Pattern       string     `json:"pattern"`
	Start         string     `json:"start"`
	End           string     `json:"end"`
	StartMinute   int        `json:"start_minute"`
	EndMinute     int        `json:"end_minute"`
	Minutes       int        `json:"minutes"`
	StopNames     []string   `json:"stop_names"`
	Stops         []StopView `json:"stops,omitempty"`
}

// QueryRun is a saved query with its results.
type QueryRun struct {
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Operators []string      `json:"operators"`
	Points    []string      `json:"points"`
	Accuracy  string        `json:"accuracy"`
	From      string        `json:"from,omitempty"`
	To        string        `json:"to,omitempty"`
	Where     string        `json:"where,omitempty"`
	Journeys  []JourneyView `json:"journeys"`
}

// QueryRef is one line of the saved query index.
type QueryRef struct {
	ID        string    `json:"id"`
	File      string    `json:"file"`
	Name      string    `json:"name"`
	Points    int       `json:"points"`
	Journeys  int       `json:"journeys"`
	StartedAt time.Time `json:"started_at"`
}
