package tui

import "github.com/stopnorway/stopnorway/internal/domain"

type runsLoadedMsg struct {
	refs []domain.QueryRef
	err  error
}

type runLoadedMsg struct {
	id  string
	run domain.QueryRun
	err error
}
