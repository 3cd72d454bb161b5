package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arcbound/siteprowl/crawler"
)

// CrawlProgressMsg reports a single Page as it arrives from the crawl.
type CrawlProgressMsg struct {
	Page crawler.Page
}

// CrawlErrorMsg reports a worker error surfaced on the event stream; the
// pool continues with its remaining workers.
type CrawlErrorMsg struct {
	Err error
}

// CrawlDoneMsg signals the event stream has closed.
type CrawlDoneMsg struct{}

// waitForEvent returns a tea.Cmd that reads one Event from ch and
// translates it into the matching tea.Msg.
func waitForEvent(ch <-chan crawler.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return CrawlDoneMsg{}
		}
		if ev.Err != nil {
			return CrawlErrorMsg{Err: ev.Err}
		}
		return CrawlProgressMsg{Page: ev.Page}
	}
}
