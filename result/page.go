// Package result turns a stream of crawler.Page values into output: NDJSON
// (and its inverse, Replay), plain text, and XML sitemaps.
package result

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/arcbound/siteprowl/crawler"
)

// MarshalPage serializes a Page to a single line of JSON, matching the
// original icio/crul JSONSerialiser.dump_page. No trailing newline.
func MarshalPage(p crawler.Page) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal page %s: %w", p.URL, err)
	}
	return data, nil
}

// UnmarshalPage parses one line of JSON produced by MarshalPage back into
// a Page. deserialize(serialize(p)) == p for any Page produced by
// crawler.ParsePage, per spec.md §8's round-trip law.
func UnmarshalPage(data []byte) (crawler.Page, error) {
	var p crawler.Page
	if err := json.Unmarshal(data, &p); err != nil {
		return crawler.Page{}, fmt.Errorf("unmarshal page: %w", err)
	}
	return p, nil
}

// RenderNDJSON writes one JSON-encoded Page per line as it arrives on
// events, stopping at the first terminal error (which it returns).
func RenderNDJSON(w io.Writer, events <-chan crawler.Event) error {
	bw := bufio.NewWriter(w)
	for ev := range events {
		if ev.Err != nil {
			_ = bw.Flush()
			return ev.Err
		}
		line, err := MarshalPage(ev.Page)
		if err != nil {
			return err
		}
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("write ndjson line: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write ndjson newline: %w", err)
		}
	}
	return bw.Flush()
}

// Replay reads one JSON Page per line from r (the format MarshalPage/
// RenderNDJSON produce) and replays it as a crawler.Event stream, with
// zero network I/O. Recovered from original_source/crul/__main__.py's
// main_replay: the same renderers that consume a live crawl's events
// consume a replayed one, indistinguishably.
func Replay(r io.Reader) <-chan crawler.Event {
	out := make(chan crawler.Event)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			page, err := UnmarshalPage(line)
			if err != nil {
				out <- crawler.Event{Err: err}
				return
			}
			out <- crawler.Event{Page: page}
		}
		if err := scanner.Err(); err != nil {
			out <- crawler.Event{Err: fmt.Errorf("replay: %w", err)}
		}
	}()
	return out
}
