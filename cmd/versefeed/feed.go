package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/versefeed/internal/config"
	"github.com/abelbrown/versefeed/internal/events"
	"github.com/abelbrown/versefeed/internal/feed"
	"github.com/abelbrown/versefeed/internal/logging"
	"github.com/abelbrown/versefeed/internal/model"
	"github.com/abelbrown/versefeed/internal/ui"
)

func runFeed() {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	tag := fs.String("tag", "", "Category: "+strings.Join(model.Categories(), ", "))
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	defer logging.Close()

	category := cfg.Feed.Category
	if *tag != "" {
		category = *tag
	}
	if !model.IsCategory(category) {
		fmt.Fprintf(os.Stderr, "versefeed: unknown category %q (choose from %s)\n",
			category, strings.Join(model.Categories(), ", "))
		os.Exit(1)
	}

	st := openStore(cfg)
	defer st.Close()

	c := feed.NewRandom(st, category, feedOptions(cfg)...)
	runTUI(cfg, c, model.NormalizeCategory(category))
}

func runRead() {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, `usage: versefeed read <Book> <Chapter>   e.g. versefeed read "1 John" 4`)
		os.Exit(1)
	}

	// The book may span several arguments: read 1 John 4.
	chapter, err := strconv.Atoi(args[len(args)-1])
	if err != nil || chapter < 1 {
		fmt.Fprintf(os.Stderr, "versefeed: invalid chapter %q\n", args[len(args)-1])
		os.Exit(1)
	}
	book, ok := model.LookupBook(strings.Join(args[:len(args)-1], " "))
	if !ok {
		fmt.Fprintf(os.Stderr, "versefeed: unknown book %q\n", strings.Join(args[:len(args)-1], " "))
		os.Exit(1)
	}

	cfg := loadConfig()
	defer logging.Close()

	st := openStore(cfg)
	defer st.Close()

	key := model.RangeKey{Book: book, Chapter: chapter}
	c := feed.NewSequential(st, key, feedOptions(cfg)...)
	runTUI(cfg, c, key.String())
}

// runTUI runs one feed session until the user quits.
func runTUI(cfg *config.Config, c *feed.Controller, title string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rec, err := events.Open(cfg.Data.Dir)
	if err != nil {
		logging.Warn("Event log unavailable", "error", err)
		rec = events.Discard()
	}
	defer rec.Close()

	ring := events.NewRing(events.DefaultRingSize)
	rec.Attach(ring)
	rec.Record(events.Event{Kind: events.KindSessionStart, Controller: c.ID(), Mode: c.Mode().String(), Query: title})

	logging.Info("Session started", "controller", c.ID(), "mode", c.Mode().String(), "title", title)

	app := ui.NewApp(ctx, c, title, rec, ring)
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		log.Printf("Error running program: %v", err)
	}

	w := c.Window()
	rec.Record(events.Event{Kind: events.KindSessionEnd, Controller: c.ID(), Cursor: w.Cursor, Len: w.Len, Count: c.FetchCount()})
	logging.Info("Session ended", "controller", c.ID(), "viewed", w.Cursor+1, "buffered", w.Len, "fetches", c.FetchCount())
}
