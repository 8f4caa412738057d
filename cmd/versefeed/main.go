// Command versefeed is a swipeable verse reader for the terminal.
//
// Usage:
//
//	versefeed                        Random feed for the configured category
//	versefeed feed [-tag T]          Random feed for category T
//	versefeed read <Book> <Chapter>  Read one chapter verse by verse
//	versefeed search [-page N] <q>   Look up a reference or a category
//	versefeed books [-testament T]   List books and chapter counts
//	versefeed events                 Session event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `versefeed: swipe through verses in the terminal

Usage:
  versefeed <command> [flags]

Commands:
  feed      Endless random verses for a category (default)
  read      Read a chapter, e.g. versefeed read "1 John" 4
  search    Look up "John 3:16" or a category such as hope
  books     List books of the Old or New Testament with chapter counts
  events    Session event log viewer

Navigation:
  j, space, down, wheel down, drag up     next verse
  k, up, wheel up, drag down              previous verse
  ?                                       help
  q                                       quit

Environment:
  VERSEFEED_DATA_DIR          Data directory (default: ~/.versefeed)
  VERSEFEED_DATASET_PATH      Dataset to open (default: <data dir>/bible_web.sqlite)
  VERSEFEED_DATASET_BUNDLED   Pristine dataset copied into place on start
  VERSEFEED_DATASET_POLICY    overwrite (default) or preserve
  VERSEFEED_FEED_CATEGORY     Default category (default: encouragement)
  VERSEFEED_LOG_LEVEL         debug, info, warn, error

Run 'versefeed <command> -h' for command-specific help.
`

func main() {
	cmd := "feed"
	if len(os.Args) >= 2 {
		cmd = os.Args[1]
		// Strip the program name + subcommand so flag sets see only their flags
		os.Args = os.Args[1:]
	}

	switch cmd {
	case "feed":
		runFeed()
	case "read":
		runRead()
	case "search":
		runSearch()
	case "books":
		runBooks()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "versefeed: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
