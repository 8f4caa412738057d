package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/abelbrown/versefeed/internal/config"
	"github.com/abelbrown/versefeed/internal/events"
)

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	tail := fs.Int("tail", 50, "Number of recent lines to show")
	follow := fs.Bool("f", false, "Follow mode (like tail -f)")
	kind := fs.String("kind", "", "Filter by event kind prefix (e.g. 'feed')")
	session := fs.String("session", "", "Filter by session ID prefix")
	errorsOnly := fs.Bool("errors", false, "Only show failed events")
	rawJSON := fs.Bool("json", false, "Output raw JSON lines")
	fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logPath, err := latestEventLog(cfg.Data.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "  Run 'versefeed' first to generate events.\n")
		os.Exit(1)
	}

	f, err := os.Open(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	matchFn := func(ev events.Event) bool {
		if *kind != "" && !strings.HasPrefix(string(ev.Kind), *kind) {
			return false
		}
		if *session != "" && !strings.HasPrefix(ev.SessionID, *session) {
			return false
		}
		if *errorsOnly && !ev.IsError() {
			return false
		}
		return true
	}

	formatFn := func(ev events.Event, raw []byte) string {
		if *rawJSON {
			return string(raw)
		}
		return formatEvent(ev)
	}

	// Read all lines, keep last N matching
	for _, l := range readTailLines(f, *tail, matchFn) {
		fmt.Println(formatFn(l.ev, l.raw))
	}
	if !*follow {
		return
	}

	// Follow mode: the file offset is at EOF, poll for new lines
	reader := bufio.NewReader(f)
	var partial []byte
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				partial = append(partial, line...)
				time.Sleep(100 * time.Millisecond)
				continue
			}
			return
		}
		if len(partial) > 0 {
			line = append(partial, line...)
			partial = nil
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev events.Event
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if matchFn(ev) {
			fmt.Println(formatFn(ev, line))
		}
	}
}

// latestEventLog returns the newest events-*.jsonl under dir/logs.
func latestEventLog(dir string) (string, error) {
	pattern := filepath.Join(dir, "logs", "events-*.jsonl")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no event log matches %s", pattern)
	}
	// Date-stamped names sort chronologically.
	slices.Sort(matches)
	return matches[len(matches)-1], nil
}

func formatEvent(ev events.Event) string {
	ts := ev.Time.Format("15:04:05.000")
	sid := ev.SessionID
	if len(sid) > 8 {
		sid = sid[:8]
	}

	parts := []string{fmt.Sprintf("%s [%-8s] %-16s", ts, sid, ev.Kind)}

	if ev.Mode != "" {
		parts = append(parts, ev.Mode)
	}
	if ev.Decision != "" {
		parts = append(parts, "gesture="+ev.Decision)
	}
	if ev.Len > 0 {
		parts = append(parts, fmt.Sprintf("at %d/%d", ev.Cursor, ev.Len))
	}
	if ev.Label != "" {
		parts = append(parts, ev.Label)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", truncate(ev.Query, 40)))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}

	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  events.Event
	raw []byte
}

// readTailLines reads the file and returns the last n lines matching the filter.
func readTailLines(f *os.File, n int, match func(events.Event) bool) []parsedLine {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var ring []parsedLine
	if n > 0 {
		ring = make([]parsedLine, 0, n)
	}

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev events.Event
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) || n <= 0 {
			continue
		}
		// Scanner reuses its buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}

	return ring
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
