// Command import manages the tally database offline: it creates the schema
// and bulk-loads historical counts from an archived results page.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/okian/ben/internal/importer"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	dbFlag := &cli.StringFlag{
		Name:    "db",
		Usage:   "SQLite database path (default: database_path from config)",
		EnvVars: []string{"BEN_DATABASE_PATH"},
	}

	return &cli.App{
		Name:  "import",
		Usage: "initialize and bulk-load the surname tally",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "debug, info, warn or error",
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "create the database schema",
				Flags:  []cli.Flag{dbFlag},
				Action: InitAction,
			},
			{
				Name:  "load",
				Usage: "replace the tally with counts parsed from an HTML results page",
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:     "html",
						Usage:    "results page to parse",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "charset",
						Value: importer.DefaultCharset,
						Usage: "encoding of the results page",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "parse and report without touching the database",
					},
				},
				Action: LoadAction,
			},
			{
				Name:  "top",
				Usage: "print the leaderboard",
				Flags: []cli.Flag{
					dbFlag,
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "number of rows to print, 0 for all",
					},
				},
				Action: TopAction,
			},
		},
	}
}
