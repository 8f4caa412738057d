// Command versedb builds and inspects versefeed datasets.
//
// Usage:
//
//	versedb build -in verses.json [-out bible_web.sqlite]
//	versedb tables [path]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/abelbrown/versefeed/internal/config"
	"github.com/abelbrown/versefeed/internal/dataset"
	"github.com/abelbrown/versefeed/internal/store"
)

const usage = `versedb: build and inspect verse datasets

Usage:
  versedb build -in verses.json [-out path]   Build a SQLite dataset from a JSON export
  versedb tables [path]                       List tables in a dataset
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}
	cmd := os.Args[1]
	os.Args = os.Args[1:]

	switch cmd {
	case "build":
		runBuild()
	case "tables":
		runTables()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "versedb: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	in := fs.String("in", "", "JSON export to read")
	out := fs.String("out", config.DatasetFile, "SQLite file to write")
	fs.Parse(os.Args[1:])

	if *in == "" {
		log.Fatal("-in is required")
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("Failed to open export: %v", err)
	}
	exp, err := dataset.LoadExport(f)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read export: %v", err)
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	start := time.Now()
	stats, err := dataset.Build(*out, exp)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	fmt.Printf("Dataset: %s\n", *out)
	fmt.Printf("Books: %d\n", stats.Books)
	fmt.Printf("Chapters: %d\n", stats.Chapters)
	fmt.Printf("Verses: %d\n", stats.Verses)
	fmt.Printf("Categories: %d (%d tagged verses)\n", stats.Tags, stats.Tagged)
	fmt.Printf("Built in %s\n", time.Since(start).Round(time.Millisecond))
}

func runTables() {
	fs := flag.NewFlagSet("tables", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	path := fs.Arg(0)
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		path = cfg.Data.DatasetPath
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	st, err := store.Open(path)
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}
	defer st.Close()

	tables, err := st.Tables(ctx)
	if err != nil {
		log.Fatalf("Failed to list tables: %v", err)
	}
	fmt.Printf("Dataset: %s\n", path)
	for _, t := range tables {
		fmt.Printf("  %s\n", t)
	}
}
