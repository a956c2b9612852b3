package importer

import (
	"github.com/okian/ben/internal/domain/guess"
	"github.com/okian/ben/pkg/logger"
)

// Rejection is one name the import refused.
type Rejection struct {
	Name   string
	Count  int64
	Reason guess.Reason
}

// Report summarizes a parse. Entries count names, submissions count the
// guesses those names stand for.
type Report struct {
	TotalEntries     int
	TotalSubmissions int64
	ValidEntries     int
	ValidSubmissions int64
	SkippedRows      int
	CorrectAnswer    string
	Rejected         map[guess.Reason]int
	Rejections       []Rejection
}

func newReport() Report {
	return Report{Rejected: make(map[guess.Reason]int)}
}

// ValidEntryPercent is the share of names that passed validation.
func (r Report) ValidEntryPercent() float64 {
	if r.TotalEntries == 0 {
		return 0
	}
	return float64(r.ValidEntries) / float64(r.TotalEntries) * 100
}

// ValidSubmissionPercent is the share of guesses that passed validation.
func (r Report) ValidSubmissionPercent() float64 {
	if r.TotalSubmissions == 0 {
		return 0
	}
	return float64(r.ValidSubmissions) / float64(r.TotalSubmissions) * 100
}

// Fields flattens the report for structured logging.
func (r Report) Fields() []logger.Field {
	return []logger.Field{
		logger.Int("total_entries", r.TotalEntries),
		logger.Int64("total_submissions", r.TotalSubmissions),
		logger.Int("valid_entries", r.ValidEntries),
		logger.Int64("valid_submissions", r.ValidSubmissions),
		logger.Float64("valid_entries_pct", r.ValidEntryPercent()),
		logger.Float64("valid_submissions_pct", r.ValidSubmissionPercent()),
		logger.Int("skipped_rows", r.SkippedRows),
		logger.Int("rejected_too_short", r.Rejected[guess.ReasonTooShort]),
		logger.Int("rejected_too_long", r.Rejected[guess.ReasonTooLong]),
		logger.Int("rejected_wrong_start", r.Rejected[guess.ReasonWrongStart]),
		logger.Int("rejected_invalid_chars", r.Rejected[guess.ReasonInvalidChars]),
		logger.String("correct_answer", r.CorrectAnswer),
	}
}

func (r *Report) accept(count int64) {
	r.TotalEntries++
	r.TotalSubmissions += count
	r.ValidEntries++
	r.ValidSubmissions += count
}

func (r *Report) reject(name string, count int64, reason guess.Reason) {
	r.TotalEntries++
	r.TotalSubmissions += count
	r.Rejected[reason]++
	r.Rejections = append(r.Rejections, Rejection{Name: name, Count: count, Reason: reason})
}
