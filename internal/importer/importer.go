// Package importer loads historical guess counts from an archived results
// page into the tally store.
//
// The page lists one spelling group per table row (tr.vaalein): the second
// cell holds comma-separated spellings, the third their shared count. Every
// spelling goes through the same normalization as live submissions, so the
// imported tally obeys the same rules as the one built by the game.
package importer

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/okian/ben/internal/domain/guess"
	"github.com/okian/ben/internal/domain/model"
	"github.com/okian/ben/internal/domain/tally"
	"github.com/okian/ben/pkg/logger"
	"github.com/okian/ben/pkg/metrics"
)

const (
	rowSelector   = "tr.vaalein"
	minCells      = 3
	correctMarker = "(oikea vastaus)"
)

// Replacer is the part of the tally store the importer writes through.
type Replacer interface {
	Replace(ctx context.Context, records []model.GuessRecord) error
}

// Parse reads a results page and returns the aggregated canonical records in
// leaderboard order together with a report of what was kept and rejected.
func Parse(r io.Reader, opts ...Option) ([]model.GuessRecord, Report, error) {
	s := settings{charset: DefaultCharset, logger: logger.Get().Named("importer")}
	for _, opt := range opts {
		opt(&s)
	}
	report := newReport()

	enc, err := lookupCharset(s.charset)
	if err != nil {
		return nil, report, err
	}

	doc, err := goquery.NewDocumentFromReader(enc.NewDecoder().Reader(r))
	if err != nil {
		return nil, report, fmt.Errorf("%w: %w", ErrParse, err)
	}

	totals := make(map[string]int64)
	ctx := context.Background()

	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minCells {
			report.SkippedRows++
			return
		}
		names := cleanText(cells.Eq(1).Text())
		countText := cleanText(cells.Eq(2).Text())

		count, ok := parseCount(countText)
		if !ok {
			report.SkippedRows++
			s.logger.Warn(ctx, "unparsable count", logger.String("names", names), logger.String("count", countText))
			return
		}

		if strings.Contains(names, correctMarker) {
			name := strings.TrimSpace(strings.ReplaceAll(names, correctMarker, ""))
			if name == "" {
				report.SkippedRows++
				return
			}
			canonical, err := guess.Normalize(name)
			if err != nil {
				s.logger.Warn(ctx, "correct answer does not pass validation", logger.String("name", name))
				report.reject(name, count, guess.ReasonOf(err))
				return
			}
			report.CorrectAnswer = canonical
			report.accept(count)
			totals[canonical] += count
			return
		}

		for _, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			canonical, err := guess.Normalize(name)
			if err != nil {
				reason := guess.ReasonOf(err)
				s.logger.Debug(ctx, "rejected",
					logger.String("name", name),
					logger.Int64("count", count),
					logger.String("reason", string(reason)),
				)
				report.reject(name, count, reason)
				continue
			}
			report.accept(count)
			totals[canonical] += count
		}
	})

	records := make([]model.GuessRecord, 0, len(totals))
	for surname, count := range totals {
		records = append(records, model.GuessRecord{Surname: surname, Count: count})
	}
	slices.SortFunc(records, tally.Compare)
	return records, report, nil
}

// Load replaces the store contents with records as one unit.
func Load(ctx context.Context, store Replacer, records []model.GuessRecord) error {
	if len(records) == 0 {
		return ErrEmpty
	}
	if err := store.Replace(ctx, records); err != nil {
		return fmt.Errorf("failed to load %d records: %w", len(records), err)
	}
	metrics.RecordImported(len(records))
	return nil
}

func lookupCharset(name string) (encoding.Encoding, error) {
	if strings.EqualFold(name, DefaultCharset) {
		return charmap.Windows1252, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrCharset, name)
	}
	return enc, nil
}

// cleanText collapses all whitespace runs, NBSP included, to single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseCount reads counts like "1 234" that use spaces as digit grouping.
// Counts below one carry no guesses and are treated as unparsable.
func parseCount(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, " ", ""), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
