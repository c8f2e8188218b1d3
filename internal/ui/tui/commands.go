package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

func cmdLoadRuns(src runSource) tea.Cmd {
	return func() tea.Msg {
		if src == nil {
			return runsLoadedMsg{err: errors.New("no run store")}
		}
		refs, err := src.ListQueries()
		return runsLoadedMsg{refs: refs, err: err}
	}
}

func cmdLoadRun(src runSource, id string) tea.Cmd {
	return func() tea.Msg {
		if src == nil {
			return runLoadedMsg{id: id, err: errors.New("no run store")}
		}
		run, err := src.LoadQuery(id)
		return runLoadedMsg{id: id, run: run, err: err}
	}
}
