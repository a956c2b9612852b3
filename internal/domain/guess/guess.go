// Package guess decides whether a submitted spelling is an admissible guess
// and computes its canonical form.
//
// The rule is deliberately lossy: only tokens of 6..15 letters that start
// with z, s, t or c are kept. Both the HTTP submit path and the batch
// importer go through Normalize so they can never drift apart.
package guess

import (
	"strings"
	"unicode/utf8"
)

// Length bounds, inclusive, measured in runes.
const (
	MinLength = 6
	MaxLength = 15
)

// startLetters lists the admissible first letters after lower-casing.
const startLetters = "zstc"

// nordicLetters are the non-ASCII letters accepted anywhere in a token.
const nordicLetters = "äöåÄÖÅüÜýÝÿŸ"

// FirstToken returns the first whitespace-delimited substring of raw, or ""
// when raw holds no token at all.
func FirstToken(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Normalize validates raw and returns the canonical (fully lower-cased)
// first token. Rejections wrap ErrRejected and carry a Reason.
func Normalize(raw string) (string, error) {
	token := FirstToken(raw)
	if token == "" {
		return "", reject(token, ReasonEmpty)
	}

	n := utf8.RuneCountInString(token)
	switch {
	case n < MinLength:
		return "", reject(token, ReasonTooShort)
	case n > MaxLength:
		return "", reject(token, ReasonTooLong)
	}

	lower := strings.ToLower(token)
	first, _ := utf8.DecodeRuneInString(lower)
	if !strings.ContainsRune(startLetters, first) {
		return "", reject(token, ReasonWrongStart)
	}

	for _, r := range token {
		if !isLetter(r) {
			return "", reject(token, ReasonInvalidChars)
		}
	}
	return lower, nil
}

// Valid reports whether s is already an admissible canonical guess.
func Valid(s string) bool {
	canonical, err := Normalize(s)
	return err == nil && canonical == s
}

func isLetter(r rune) bool {
	if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
		return true
	}
	// utf8.RuneError never appears in nordicLetters, so invalid bytes fail here.
	return strings.ContainsRune(nordicLetters, r)
}
