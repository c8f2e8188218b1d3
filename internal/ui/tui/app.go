package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stopnorway/stopnorway/internal/domain"
)

type screen int

const (
	screenRuns screen = iota
	screenJourneys
	screenJourney
)

type runItem struct{ ref domain.QueryRef }

func (i runItem) Title() string {
	if i.ref.Name == "" {
		return i.ref.ID
	}
	return i.ref.Name
}

func (i runItem) Description() string {
	if i.ref.StartedAt.IsZero() {
		return i.ref.File
	}
	return fmt.Sprintf("%s • %d point(s) • %d journey(s)",
		i.ref.StartedAt.Local().Format("2006-01-02 15:04"), i.ref.Points, i.ref.Journeys)
}

func (i runItem) FilterValue() string { return i.ref.Name + " " + i.ref.ID }

type journeyItem struct{ j domain.JourneyView }

func (i journeyItem) Title() string {
	return fmt.Sprintf("%-5s %s-%s  %s", i.j.PublicCode, i.j.Start, i.j.End, i.j.Line)
}

func (i journeyItem) Description() string {
	return clampString(strings.Join(i.j.StopNames, " > "), 96)
}

func (i journeyItem) FilterValue() string {
	return i.j.PublicCode + " " + i.j.Line + " " + i.j.Name + " " + strings.Join(i.j.StopNames, " ")
}

type model struct {
	theme Theme
	deps  Deps
	src   runSource

	scr      screen
	runs     list.Model
	journeys list.Model
	detail   viewport.Model

	runID   string
	run     domain.QueryRun
	loading bool
	toast   string

	width, height int
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	runs := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	runs.Title = "Saved queries"
	runs.SetShowStatusBar(false)
	runs.SetShowHelp(false)

	journeys := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	journeys.SetShowStatusBar(true)
	journeys.SetShowHelp(false)

	m := model{
		theme:    DefaultTheme(),
		deps:     deps,
		scr:      screenRuns,
		runs:     runs,
		journeys: journeys,
		detail:   viewport.New(0, 0),
		loading:  true,
	}
	if deps.Store != nil {
		m.src = deps.Store
	}
	return m
}

func (m model) Init() tea.Cmd {
	if m.deps.Initial != "" {
		return tea.Batch(cmdLoadRuns(m.src), cmdLoadRun(m.src, m.deps.Initial))
	}
	return cmdLoadRuns(m.src)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.runs.SetSize(msg.Width-8, msg.Height-10)
		m.journeys.SetSize(msg.Width-8, msg.Height-14)
		m.detail.Width, m.detail.Height = msg.Width-8, msg.Height-10
		return m, nil

	case runsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			items = append(items, runItem{ref: r})
		}
		return m, m.runs.SetItems(items)

	case runLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.runID, m.run = msg.id, msg.run
		m.toast = ""
		m.scr = screenJourneys
		m.journeys.Title = msg.id
		items := make([]list.Item, 0, len(msg.run.Journeys))
		for _, j := range msg.run.Journeys {
			items = append(items, journeyItem{j: j})
		}
		m.journeys.ResetSelected()
		return m, m.journeys.SetItems(items)

	case tea.KeyMsg:
		if m.filtering() {
			break
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.scr == screenRuns {
				return m, tea.Quit
			}
			m.scr = screenRuns
			return m, nil
		case "esc", "b":
			switch m.scr {
			case screenJourney:
				m.scr = screenJourneys
				return m, nil
			case screenJourneys:
				m.scr = screenRuns
				return m, nil
			}
		case "enter":
			switch m.scr {
			case screenRuns:
				it, ok := m.runs.SelectedItem().(runItem)
				if !ok {
					return m, nil
				}
				m.loading = true
				return m, cmdLoadRun(m.src, it.ref.ID)
			case screenJourneys:
				it, ok := m.journeys.SelectedItem().(journeyItem)
				if !ok {
					return m, nil
				}
				m.detail.SetContent(renderJourney(it.j))
				m.detail.GotoTop()
				m.scr = screenJourney
				return m, nil
			}
		case "r":
			if m.scr == screenRuns {
				m.loading = true
				return m, cmdLoadRuns(m.src)
			}
		}
	}

	var cmd tea.Cmd
	switch m.scr {
	case screenRuns:
		m.runs, cmd = m.runs.Update(msg)
	case screenJourneys:
		m.journeys, cmd = m.journeys.Update(msg)
	case screenJourney:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m model) filtering() bool {
	switch m.scr {
	case screenRuns:
		return m.runs.FilterState() == list.Filtering
	case screenJourneys:
		return m.journeys.FilterState() == list.Filtering
	}
	return false
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("stopnorway") + "\n" +
		m.theme.Subtitle.Render("Journeys found by place and time") + "\n"
	if m.deps.WorkspaceRoot != "" {
		header += m.theme.Help.Render("Workspace: "+m.deps.WorkspaceRoot) + "\n"
	}

	footer := ""
	switch {
	case m.loading:
		footer = m.theme.Help.Render("loading…")
	case m.toast != "":
		footer = m.theme.Toast.Render(m.toast)
	}

	var body, help string
	switch m.scr {
	case screenRuns:
		if len(m.runs.Items()) == 0 && !m.loading {
			body = m.theme.Card.Render("No saved queries.\n\nRun `stopnorway query --save ...` first.")
		} else {
			body = m.theme.Card.Render(m.runs.View())
		}
		help = "↑/↓ navigate • enter open • / search • r reload • q quit"
	case screenJourneys:
		body = m.theme.Accent.Render(renderRunHeader(m.run)) + "\n\n" + m.theme.Card.Render(m.journeys.View())
		help = "↑/↓ navigate • enter details • / search • esc back • q runs"
	case screenJourney:
		body = m.theme.Card.Render(m.detail.View())
		help = "↑/↓ scroll • esc back • q runs"
	default:
		body = "unknown state"
	}

	out := header + "\n" + body + "\n" + m.theme.Help.Render(help)
	if footer != "" {
		out += "\n" + footer
	}
	return wrap.Render(out)
}
