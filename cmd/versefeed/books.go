package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/versefeed/internal/logging"
	"github.com/abelbrown/versefeed/internal/model"
	"github.com/abelbrown/versefeed/internal/ui"
)

func runBooks() {
	fs := flag.NewFlagSet("books", flag.ExitOnError)
	testament := fs.String("testament", "all", "old, new or all")
	fs.Parse(os.Args[1:])

	var groups []model.Testament
	switch strings.ToLower(*testament) {
	case "old", "ot":
		groups = []model.Testament{model.OldTestament}
	case "new", "nt":
		groups = []model.Testament{model.NewTestament}
	case "all", "":
		groups = []model.Testament{model.OldTestament, model.NewTestament}
	default:
		fmt.Fprintf(os.Stderr, "versefeed: unknown testament %q (old, new or all)\n", *testament)
		os.Exit(1)
	}

	cfg := loadConfig()
	defer logging.Close()

	st := openStore(cfg)
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	nameStyle := lipgloss.NewStyle().Width(18)
	for i, t := range groups {
		books := model.Books(t)
		counts, err := st.ChapterCounts(ctx, books)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		if i > 0 {
			fmt.Println()
		}
		fmt.Println(ui.ResultHeader.Render(t.String()))
		for _, b := range books {
			fmt.Printf("  %s %s\n", nameStyle.Render(b), ui.HelpStyle.Render(fmt.Sprintf("%3d chapters", counts[b])))
		}
	}
}
