package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/arcbound/siteprowl/crawler"
	"github.com/arcbound/siteprowl/tui"
)

var (
	crawlRender        renderFlags
	crawlDepth         int
	crawlWorkers       int
	crawlDelay         float64
	crawlUserAgent     string
	crawlDisallow      []string
	crawlAllowExternal bool
	crawlYolo          bool
	crawlConfigFile    string
	crawlNoTUI         bool
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Crawl a single site starting from <url>",
	Args:  cobra.ExactArgs(1),
	RunE:  runCrawl,
}

func init() {
	crawlRender.register(crawlCmd)
	crawlCmd.Flags().IntVarP(&crawlDepth, "depth", "d", 100, "traverse n pages deep from the starting point")
	crawlCmd.Flags().IntVarP(&crawlWorkers, "workers", "w", 4, "use n worker goroutines to make requests in parallel")
	crawlCmd.Flags().Float64VarP(&crawlDelay, "delay", "t", 0, "wait n seconds between requests to the site")
	crawlCmd.Flags().StringVarP(&crawlUserAgent, "user-agent", "A", "", "the user-agent sent from the client")
	crawlCmd.Flags().StringArrayVarP(&crawlDisallow, "disallow", "i", nil, "ignore/disallow a path from being scraped (repeatable)")
	crawlCmd.Flags().BoolVar(&crawlAllowExternal, "allow-external", false, "follow links that leave the seed's host")
	crawlCmd.Flags().BoolVar(&crawlYolo, "yolo", false, "don't bother checking robots.txt")
	crawlCmd.Flags().StringVar(&crawlConfigFile, "config", "", "load flag defaults from a YAML config file")
	crawlCmd.Flags().BoolVar(&crawlNoTUI, "no-tui", false, "print render output directly instead of showing the progress TUI")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if err := crawlRender.validate(); err != nil {
		return err
	}

	rawURL := args[0]
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("invalid URL %q: must start with http:// or https://", rawURL)
	}

	delaySet := cmd.Flags().Changed("delay")
	if crawlConfigFile != "" {
		fc, err := loadFileConfig(crawlConfigFile)
		if err != nil {
			return err
		}
		if applyFileConfig(cmd, fc) {
			delaySet = true
		}
	}

	// Delay is a *float64, not a float64: an explicit --delay 0 must
	// override robots.txt's Crawl-Delay the same way a positive delay
	// would, so "set" has to be tracked separately from the zero value —
	// see crawler.Config.Delay. A config file's delay counts as set only
	// when it is positive; delay: 0 in the file is treated as absent.
	var delay *float64
	if delaySet {
		delay = &crawlDelay
	}

	cfg := crawler.Config{
		SeedURL:       rawURL,
		NumWorkers:    crawlWorkers,
		MaxDepth:      crawlDepth,
		Delay:         delay,
		UserAgent:     crawlUserAgent,
		Disallow:      crawlDisallow,
		AllowExternal: crawlAllowExternal,
		SkipRobots:    crawlYolo,
	}

	c, err := crawler.New(cfg)
	if err != nil {
		return fmt.Errorf("create crawler: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	notifyCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if crawlNoTUI {
		events, err := c.Run(notifyCtx)
		if err != nil {
			return fmt.Errorf("run crawl: %w", err)
		}
		return crawlRender.render(os.Stdout, events)
	}

	return runCrawlTUI(notifyCtx, cancel, c)
}

// applyFileConfig applies fileConfig values for flags the user didn't
// explicitly pass on the command line, so CLI flags always win. Reports
// whether it applied a delay from the file, since the caller cannot tell
// that from crawlDelay's value alone. Only a positive file delay is
// applied; a zero delay in the file is indistinguishable from no delay
// key at all.
func applyFileConfig(cmd *cobra.Command, fc fileConfig) (delaySetFromFile bool) {
	flags := cmd.Flags()
	if !flags.Changed("depth") && fc.Depth > 0 {
		crawlDepth = fc.Depth
	}
	if !flags.Changed("workers") && fc.Workers > 0 {
		crawlWorkers = fc.Workers
	}
	if !flags.Changed("delay") && fc.Delay > 0 {
		crawlDelay = fc.Delay
		delaySetFromFile = true
	}
	if !flags.Changed("user-agent") && fc.UserAgent != "" {
		crawlUserAgent = fc.UserAgent
	}
	if !flags.Changed("disallow") && len(fc.Disallow) > 0 {
		crawlDisallow = append(crawlDisallow, fc.Disallow...)
	}
	if !flags.Changed("allow-external") && fc.AllowExternal {
		crawlAllowExternal = fc.AllowExternal
	}
	if !flags.Changed("yolo") && fc.Yolo {
		crawlYolo = fc.Yolo
	}
	return delaySetFromFile
}

func runCrawlTUI(ctx context.Context, cancel context.CancelFunc, c *crawler.Crawler) error {
	model := tui.NewModel(ctx, cancel, c)
	program := tea.NewProgram(model)

	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	stats := finalModel.(tui.Model).GetStats()
	if len(stats.Errors) > 0 {
		os.Exit(1)
	}
	return nil
}
