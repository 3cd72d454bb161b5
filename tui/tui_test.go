package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arcbound/siteprowl/crawler"
)

func newTestCrawler(t *testing.T) *crawler.Crawler {
	t.Helper()
	c, err := crawler.New(crawler.Config{
		SeedURL:    "https://example.com",
		NumWorkers: 2,
		SkipRobots: true,
	})
	if err != nil {
		t.Fatalf("crawler.New: %v", err)
	}
	return c
}

func TestNewModel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newTestCrawler(t)
	model := NewModel(ctx, cancel, c)

	if model.ctx != ctx {
		t.Error("expected ctx to be stored in model")
	}
	if model.cancel == nil {
		t.Error("expected cancel to be stored in model")
	}
	if model.crawlerInstance != c {
		t.Error("expected crawler instance to be stored in model")
	}
	if model.stats.PagesFetched != 0 {
		t.Error("expected initial stats to be zero")
	}
	if model.done {
		t.Error("expected done to be false initially")
	}
}

func TestInit_ReturnsBatchCmd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := NewModel(ctx, cancel, newTestCrawler(t))
	cmd := model.Init()
	if cmd == nil {
		t.Error("Init() should return a non-nil batch command")
	}
}

func TestUpdate_StartedMsgSubscribesToEvents(t *testing.T) {
	events := make(chan crawler.Event, 1)
	model := Model{}

	updatedModel, cmd := model.Update(startedMsg{events: events})
	updated := updatedModel.(Model)

	if updated.events == nil {
		t.Error("expected events channel to be stored")
	}
	if updated.start.IsZero() {
		t.Error("expected start time to be set")
	}
	if cmd == nil {
		t.Error("expected non-nil cmd to subscribe to the event stream")
	}
}

func TestUpdate_CrawlProgressMsg(t *testing.T) {
	events := make(chan crawler.Event, 1)
	model := Model{events: events}

	page := crawler.Page{URL: "https://example.com/page", Depth: 1}
	msg := CrawlProgressMsg{Page: page}
	updatedModel, cmd := model.Update(msg)
	updated := updatedModel.(Model)

	if updated.stats.PagesFetched != 1 {
		t.Errorf("expected PagesFetched=1, got %d", updated.stats.PagesFetched)
	}
	if updated.current != "https://example.com/page" {
		t.Errorf("expected current URL to be set, got %s", updated.current)
	}
	if cmd == nil {
		t.Error("expected non-nil cmd to re-subscribe to the event stream")
	}
}

func TestUpdate_CrawlErrorMsg(t *testing.T) {
	events := make(chan crawler.Event, 1)
	model := Model{events: events}

	updatedModel, cmd := model.Update(CrawlErrorMsg{Err: errors.New("fetch failed")})
	updated := updatedModel.(Model)

	if len(updated.stats.Errors) != 1 {
		t.Errorf("expected one error recorded, got %d", len(updated.stats.Errors))
	}
	if cmd == nil {
		t.Error("expected non-nil cmd to re-subscribe to the event stream")
	}
}

func TestUpdate_CrawlDoneMsg(t *testing.T) {
	model := Model{start: time.Now()}

	updatedModel, _ := model.Update(CrawlDoneMsg{})
	updated := updatedModel.(Model)

	if !updated.done {
		t.Error("expected done=true after CrawlDoneMsg")
	}
}

func TestUpdate_SpinnerTickMsg(t *testing.T) {
	spin := spinner.New()
	model := Model{spinner: spin}
	updatedModel, _ := model.Update(spinner.TickMsg{})
	_ = updatedModel.(Model) // should not panic
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	updated := updatedModel.(Model)

	if updated.width != 120 {
		t.Errorf("expected width=120, got %d", updated.width)
	}
}

func TestUpdate_QuitOnCtrlC(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	called := false
	model := Model{ctx: ctx, cancel: func() { called = true; cancel() }}

	updatedModel, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	updated := updatedModel.(Model)

	if !updated.quitting {
		t.Error("expected quitting=true after ctrl+c")
	}
	if !called {
		t.Error("expected cancel to be invoked")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestView_InProgress(t *testing.T) {
	model := Model{current: "https://example.com/checking"}
	model.stats.Observe(crawler.Page{URL: "https://example.com", Depth: 0})

	output := model.View()
	if !strings.Contains(output, "Crawling") {
		t.Errorf("expected 'Crawling' in progress view, got: %s", output)
	}
	if !strings.Contains(output, "1") {
		t.Errorf("expected fetched count in view, got: %s", output)
	}
}

func TestView_DoneRendersSummary(t *testing.T) {
	model := Model{done: true}
	model.stats.Observe(crawler.Page{URL: "https://example.com", Depth: 0})

	output := model.View()
	if !strings.Contains(output, "Crawl complete") {
		t.Errorf("expected success summary in done view, got: %s", output)
	}
}

func TestGetStats(t *testing.T) {
	model := Model{}
	model.stats.Observe(crawler.Page{URL: "https://example.com", Depth: 0})

	stats := model.GetStats()
	if stats.PagesFetched != 1 {
		t.Errorf("expected PagesFetched=1, got %d", stats.PagesFetched)
	}
}

func TestStats_Observe(t *testing.T) {
	var s Stats
	s.Observe(crawler.Page{
		URL:   "https://example.com",
		Depth: 3,
		Links: []crawler.Link{
			{Href: "https://example.com/a", External: false},
			{Href: "https://other.com/b", External: true},
		},
		Assets: []crawler.Link{{Href: "https://example.com/a.css", Type: crawler.LinkScript}},
	})

	if s.PagesFetched != 1 {
		t.Errorf("PagesFetched = %d, want 1", s.PagesFetched)
	}
	if s.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d, want 3", s.MaxDepth)
	}
	if s.LinksFound != 2 {
		t.Errorf("LinksFound = %d, want 2", s.LinksFound)
	}
	if s.ExternalLinks != 1 {
		t.Errorf("ExternalLinks = %d, want 1", s.ExternalLinks)
	}
	if s.AssetsFound != 1 {
		t.Errorf("AssetsFound = %d, want 1", s.AssetsFound)
	}
}

func TestRenderSummary_NoErrors(t *testing.T) {
	s := Stats{PagesFetched: 10, Duration: 2 * time.Second}
	output := RenderSummary(s)
	if !strings.Contains(output, "Crawl complete") {
		t.Errorf("expected success message, got: %s", output)
	}
	if !strings.Contains(output, "10") {
		t.Errorf("expected page count in output, got: %s", output)
	}
}

func TestRenderSummary_WithErrors(t *testing.T) {
	s := Stats{
		PagesFetched: 5,
		Duration:     time.Second,
		Errors: []error{
			errors.New("404 not found"),
			errors.New("connection refused"),
		},
	}
	output := RenderSummary(s)
	if !strings.Contains(output, "2 worker errors") {
		t.Errorf("expected worker error count in summary, got: %s", output)
	}
	if !strings.Contains(output, "connection refused") {
		t.Errorf("expected error text in output, got: %s", output)
	}
}
