package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/stopnorway/stopnorway/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func renderRunHeader(run domain.QueryRun) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Points: %s  (±%s)\n", strings.Join(run.Points, " "), run.Accuracy)
	if run.From != "" {
		fmt.Fprintf(&b, "Window: %s - %s\n", run.From, run.To)
	}
	if run.Where != "" {
		fmt.Fprintf(&b, "Where:  %s\n", run.Where)
	}
	fmt.Fprintf(&b, "Found:  %d journey(s)", len(run.Journeys))
	return b.String()
}

func renderJourney(j domain.JourneyView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", j.PublicCode, j.Line)
	fmt.Fprintf(&b, "%s\n\n", j.ID)
	fmt.Fprintf(&b, "Name:     %s\n", j.Name)
	fmt.Fprintf(&b, "Mode:     %s\n", j.TransportMode)
	fmt.Fprintf(&b, "Pattern:  %s\n", j.Pattern)
	fmt.Fprintf(&b, "Time:     %s - %s (%d min)\n\n", j.Start, j.End, j.Minutes)

	if len(j.Stops) == 0 {
		for i, name := range j.StopNames {
			fmt.Fprintf(&b, "%3d  %s\n", i+1, name)
		}
		return b.String()
	}
	for i, s := range j.Stops {
		fmt.Fprintf(&b, "%3d  %-10s %-10s %s\n", i+1, s.Arrival, s.Departure, clampString(s.Name, 40))
	}
	return b.String()
}
