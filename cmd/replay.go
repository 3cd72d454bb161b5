package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcbound/siteprowl/result"
)

var replayRender renderFlags

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Render a previously recorded crawl with zero network I/O",
	Long: `Replay reads one JSON Page per line (the format --json produces)
from <file> and renders it exactly as if it were a live crawl, without
making any HTTP requests.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayRender.register(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	if err := replayRender.validate(); err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	events := result.Replay(f)
	return replayRender.render(os.Stdout, events)
}
