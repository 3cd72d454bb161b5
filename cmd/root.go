// Package cmd implements the siteprowl command-line interface: the
// crawl subcommand runs a live crawl, replay renders a previously
// recorded one. Both share the --text/--json/--sitemap render flags.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcbound/siteprowl/crawler"
	"github.com/arcbound/siteprowl/result"
)

var rootCmd = &cobra.Command{
	Use:           "siteprowl",
	Short:         "A polite, concurrent single-site web crawler.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it. It
// is called by main.main; it only needs to happen once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(replayCmd)
}

// renderFlags holds the three mutually exclusive output-format flags
// shared by crawl and replay, matching crul's --text/--json/--sitemap.
type renderFlags struct {
	text    bool
	json    bool
	sitemap bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.text, "text", false, "render a human-readable text summary")
	cmd.Flags().BoolVar(&f.json, "json", false, "render newline-delimited JSON (default)")
	cmd.Flags().BoolVar(&f.sitemap, "sitemap", false, "render an XML sitemap")
}

func (f *renderFlags) validate() error {
	count := 0
	for _, set := range []bool{f.text, f.json, f.sitemap} {
		if set {
			count++
		}
	}
	if count > 1 {
		return fmt.Errorf("--text, --json and --sitemap are mutually exclusive")
	}
	return nil
}

// render writes events to w in whichever format was selected, defaulting
// to JSON, matching crul/__main__.py's [default: --json].
func (f *renderFlags) render(w io.Writer, events <-chan crawler.Event) error {
	switch {
	case f.text:
		return result.RenderText(w, events)
	case f.sitemap:
		return result.RenderSitemap(w, events)
	default:
		return result.RenderNDJSON(w, events)
	}
}
