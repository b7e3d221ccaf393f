package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Fetcher produces the key/value pairs shown by a dashboard refresh.
type Fetcher func(ctx context.Context) ([][2]string, error)

// dashboardModel refreshes a KeyValueBlock on an interval until q.
type dashboardModel struct {
	ctx        context.Context
	title      string
	pairs      [][2]string
	lastUpdate time.Time
	interval   time.Duration
	quitting   bool
	fetch      Fetcher
	err        string
	now        func() time.Time
}

type tickMsg time.Time
type pairsMsg [][2]string
type fetchErrMsg string

// NewDashboard creates a program that re-runs fetch every interval.
func NewDashboard(ctx context.Context, title string, interval time.Duration, fetch Fetcher) *tea.Program {
	return tea.NewProgram(newDashboard(ctx, title, interval, fetch))
}

func newDashboard(ctx context.Context, title string, interval time.Duration, fetch Fetcher) dashboardModel {
	return dashboardModel{ctx: ctx, title: title, interval: interval, fetch: fetch, now: time.Now}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))
	case pairsMsg:
		m.pairs = msg
		m.lastUpdate = m.now()
		m.err = ""
	case fetchErrMsg:
		// Keep the last good values on screen.
		m.err = string(msg)
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	sb.WriteString(StyleMeta.Render(fmt.Sprintf("Updated %s · every %s · q to quit", updated, m.interval)) + "\n")
	if m.err != "" {
		sb.WriteString(Err(m.err) + "\n")
	}
	if m.pairs == nil {
		sb.WriteString(StyleMeta.Render("Loading...") + "\n")
		return sb.String()
	}
	sb.WriteString(KeyValueBlock(m.title, m.pairs) + "\n")
	return sb.String()
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		pairs, err := m.fetch(m.ctx)
		if err != nil {
			return fetchErrMsg(err.Error())
		}
		if pairs == nil {
			pairs = [][2]string{}
		}
		return pairsMsg(pairs)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}
