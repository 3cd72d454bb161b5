// Package tui provides the Bubble Tea terminal UI for siteprowl,
// displaying live crawl progress and a styled summary of results.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arcbound/siteprowl/crawler"
)

// Model is the Bubble Tea model for the crawl TUI.
type Model struct {
	ctx             context.Context
	cancel          context.CancelFunc
	crawlerInstance *crawler.Crawler
	events          <-chan crawler.Event
	spinner         spinner.Model

	start    time.Time
	stats    Stats
	current  string
	quitting bool
	done     bool
	width    int
}

// NewModel creates a TUI model wired to the given crawler.
func NewModel(ctx context.Context, cancel context.CancelFunc, c *crawler.Crawler) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:             ctx,
		cancel:          cancel,
		crawlerInstance: c,
		spinner:         spin,
	}
}

// Init starts the crawl and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startCrawl())
}

// startCrawl returns a tea.Cmd that starts the crawl and hands its Event
// channel back to Update via startedMsg.
func (m Model) startCrawl() tea.Cmd {
	return func() tea.Msg {
		events, err := m.crawlerInstance.Run(m.ctx)
		if err != nil {
			return CrawlDoneMsg{}
		}
		return startedMsg{events: events}
	}
}

// startedMsg carries the Event channel back into the model once Run has
// been called, so Update can begin subscribing to it.
type startedMsg struct {
	events <-chan crawler.Event
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case startedMsg:
		m.events = msg.events
		m.start = time.Now()
		return m, waitForEvent(m.events)

	case CrawlProgressMsg:
		m.stats.Observe(msg.Page)
		m.current = msg.Page.URL
		return m, waitForEvent(m.events)

	case CrawlErrorMsg:
		m.stats.Errors = append(m.stats.Errors, msg.Err)
		return m, waitForEvent(m.events)

	case CrawlDoneMsg:
		m.done = true
		m.stats.Duration = time.Since(m.start)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done {
		return RenderSummary(m.stats)
	}
	return fmt.Sprintf("%s Crawling... fetched %d pages\n%s\n",
		m.spinner.View(), m.stats.PagesFetched,
		dimStyle.Render("  "+m.current))
}

// GetStats returns the accumulated crawl statistics for output
// formatting once the crawl is done.
func (m Model) GetStats() Stats {
	return m.stats
}
