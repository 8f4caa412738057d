package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abelbrown/versefeed/internal/events"
	"github.com/abelbrown/versefeed/internal/logging"
	"github.com/abelbrown/versefeed/internal/ui"
)

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	page := fs.Int("page", 1, "Result page for category searches")
	width := fs.Int("width", 72, "Output width")
	fs.Parse(os.Args[1:])

	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, `usage: versefeed search [-page N] <"John 3:16" | category>`)
		os.Exit(1)
	}
	if *page < 1 {
		*page = 1
	}

	cfg := loadConfig()
	defer logging.Close()

	st := openStore(cfg)
	defer st.Close()

	rec, err := events.Open(cfg.Data.Dir)
	if err != nil {
		rec = events.Discard()
	}
	defer rec.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rec.Record(events.Event{Kind: events.KindSearch, Query: query, Cursor: *page - 1})

	start := time.Now()
	res, err := st.Search(ctx, query, *page-1, cfg.Search.PageSize)
	if err != nil {
		rec.Record(events.Event{Kind: events.KindSearchResult, Query: query, Dur: time.Since(start), Err: err.Error()})
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	rec.Record(events.Event{Kind: events.KindSearchResult, Query: query, Count: len(res.Items), Dur: time.Since(start)})

	fmt.Print(ui.RenderResults(res, *page-1, *width))
	if res.IsTag && len(res.Items) == cfg.Search.PageSize {
		fmt.Println(ui.HelpStyle.Render(fmt.Sprintf("More: versefeed search -page %d %s", *page+1, res.Query)))
	}
}
