package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/arcbound/siteprowl/crawler"
	"github.com/arcbound/siteprowl/result"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	countStyle    = lipgloss.NewStyle()
)

// Stats accumulates the crawl-wide counters a Model tracks as Events
// arrive, for the final summary.
type Stats struct {
	PagesFetched  int
	LinksFound    int
	AssetsFound   int
	ExternalLinks int
	MaxDepth      int
	Errors        []error
	Duration      time.Duration
}

// Observe folds one fetched Page into the running Stats.
func (s *Stats) Observe(p crawler.Page) {
	s.PagesFetched++
	if p.Depth > s.MaxDepth {
		s.MaxDepth = p.Depth
	}
	s.LinksFound += len(p.Links)
	s.AssetsFound += len(p.Assets)
	for _, l := range p.Links {
		if l.External {
			s.ExternalLinks++
		}
	}
}

// RenderSummary produces a Lip Gloss styled summary of a completed crawl.
func RenderSummary(s Stats) string {
	var builder strings.Builder

	if len(s.Errors) == 0 {
		builder.WriteString(successStyle.Render("Crawl complete, no worker errors."))
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render(fmt.Sprintf(
			"Fetched %s pages (%s links, %s assets, %s external, max depth %d) in %s",
			humanize.Comma(int64(s.PagesFetched)), humanize.Comma(int64(s.LinksFound)),
			humanize.Comma(int64(s.AssetsFound)), humanize.Comma(int64(s.ExternalLinks)),
			s.MaxDepth, s.Duration.Round(time.Millisecond),
		)))
		builder.WriteString("\n")
		return builder.String()
	}

	grouped := make(map[result.FetchErrorCategory][]error)
	for _, err := range s.Errors {
		cat := result.ClassifyFetchError(err, 0)
		grouped[cat] = append(grouped[cat], err)
	}

	for _, cat := range result.CategoryOrder {
		errs, exists := grouped[cat]
		if !exists || len(errs) == 0 {
			continue
		}

		builder.WriteString(categoryStyle.Render(fmt.Sprintf("## %s (%d)", result.FormatFetchErrorCategory(cat), len(errs))))
		builder.WriteString("\n")

		rows := make([][]string, 0, len(errs))
		for _, err := range errs {
			rows = append(rows, []string{err.Error()})
		}

		errTable := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("Error").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return countStyle
			}).
			Rows(rows...)

		builder.WriteString(errTable.Render())
		builder.WriteString("\n\n")
	}

	builder.WriteString(titleStyle.Render(fmt.Sprintf(
		"Fetched %d pages, %d worker errors, max depth %d (%s)",
		s.PagesFetched, len(s.Errors), s.MaxDepth,
		s.Duration.Round(time.Millisecond),
	)))
	builder.WriteString("\n")

	return builder.String()
}
