package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/okian/ben/internal/adapters/repository"
	"github.com/okian/ben/internal/config"
	"github.com/okian/ben/internal/domain/guess"
	"github.com/okian/ben/internal/domain/tally"
	"github.com/okian/ben/internal/importer"
	"github.com/okian/ben/pkg/logger"
)

func setupLogging(c *cli.Context) error {
	if err := logger.Init(logger.WithWriter(c.App.ErrWriter)); err != nil {
		return err
	}
	return logger.SetLevelString(c.String("log-level"))
}

// databasePath prefers --db and falls back to the service configuration.
func databasePath(c *cli.Context) (string, error) {
	if p := c.String("db"); p != "" {
		return p, nil
	}
	cfg, err := config.Load(c.Context)
	if err != nil {
		return "", err
	}
	return cfg.DatabasePath, nil
}

func openStore(c *cli.Context) (*repository.SQLiteStore, error) {
	path, err := databasePath(c)
	if err != nil {
		return nil, err
	}
	store, err := repository.OpenSQLite(c.Context, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return store, nil
}

// InitAction creates the schema.
func InitAction(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	fmt.Fprintf(c.App.Writer, "Database initialized at %s\n", store.Path())
	return nil
}

// LoadAction parses --html and replaces the tally with the result.
func LoadAction(c *cli.Context) error {
	f, err := os.Open(c.String("html"))
	if err != nil {
		return fmt.Errorf("failed to open results page: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, report, err := importer.Parse(f,
		importer.WithCharset(c.String("charset")),
		importer.WithLogger(logger.Named("importer")),
	)
	if err != nil {
		return err
	}
	printReport(c, report, len(records))

	if c.Bool("dry-run") {
		fmt.Fprintln(c.App.Writer, "\nDry run: database not modified.")
		return nil
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := importer.Load(c.Context, store, records); err != nil {
		return err
	}
	logger.Get().Info(c.Context, "import complete", report.Fields()...)
	fmt.Fprintf(c.App.Writer, "\nInserted %d unique surnames into %s.\n", len(records), store.Path())
	return nil
}

// TopAction prints the leaderboard as a table.
func TopAction(c *cli.Context) error {
	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Records(c.Context)
	if err != nil {
		return err
	}
	lb := tally.Build(records)

	entries := lb.Entries
	if limit := c.Int("limit"); limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	w := c.App.Writer
	fmt.Fprintf(w, "%-4s %-16s %10s %8s\n", "#", "Surname", "Count", "Share")
	fmt.Fprintln(w, strings.Repeat("-", 41))
	for i, e := range entries {
		fmt.Fprintf(w, "%-4d %-16s %10d %7.2f%%\n", i+1, e.Surname, e.Count, e.Percentage)
	}
	fmt.Fprintf(w, "\nVariations: %d, total guesses: %d\n", lb.TotalVariations, lb.TotalCount)
	return nil
}

func printReport(c *cli.Context, r importer.Report, unique int) {
	w := c.App.Writer
	fmt.Fprintln(w, "Validation statistics:")
	fmt.Fprintf(w, "  Total entries processed: %d\n", r.TotalEntries)
	fmt.Fprintf(w, "  Total submissions:       %d\n", r.TotalSubmissions)
	fmt.Fprintf(w, "  Valid entries:           %d (%.1f%%)\n", r.ValidEntries, r.ValidEntryPercent())
	fmt.Fprintf(w, "  Valid submissions:       %d (%.1f%%)\n", r.ValidSubmissions, r.ValidSubmissionPercent())
	fmt.Fprintf(w, "  Unique canonical names:  %d\n", unique)
	fmt.Fprintf(w, "  Skipped rows:            %d\n", r.SkippedRows)
	for _, reason := range []guess.Reason{guess.ReasonTooShort, guess.ReasonTooLong, guess.ReasonWrongStart, guess.ReasonInvalidChars} {
		fmt.Fprintf(w, "  Rejected - %-13s %d\n", strings.ReplaceAll(string(reason), "_", " ")+":", r.Rejected[reason])
	}
	if r.CorrectAnswer != "" {
		fmt.Fprintf(w, "  Correct answer:          %s\n", r.CorrectAnswer)
	}
}
