package loadgen

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/ben/internal/domain/guess"
	"github.com/okian/ben/pkg/logger"
)

// Spelling fragments seen in real submissions. Combining them yields a few
// hundred plausible spellings, so popular ones collide and counts grow.
var (
	heads  = []string{"z", "s", "ts", "c", "tz", "sz"}
	middle = []string{"ys", "is", "yz", "iz", "ysk", "isk", "yss"}
	tails  = []string{"kowicz", "kovitch", "kowitz", "kowits", "kovits", "köwicz", "kowisch"}
)

// Invalid shapes, one per rejection reason.
var invalidMakers = []func(r *rand.Rand) string{
	func(r *rand.Rand) string { return "" },
	func(r *rand.Rand) string { return "zys" },
	func(r *rand.Rand) string { return "Zyskowiczinenkowski" },
	func(r *rand.Rand) string { return pick(r, []string{"Kyskowicz", "Byskowicz", "Äyskowicz"}) },
	func(r *rand.Rand) string { return pick(r, []string{"Zysk0wicz", "Zys-kowicz", "Zyskowicé"}) },
}

func pick(r *rand.Rand, xs []string) string {
	return xs[r.IntN(len(xs))]
}

// randomCase flips letters to upper case at random; the canonical form must
// not depend on it.
func randomCase(r *rand.Rand, s string) string {
	var b strings.Builder
	for _, c := range s {
		if r.IntN(3) == 0 {
			b.WriteString(strings.ToUpper(string(c)))
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// decorate adds surrounding whitespace and trailing words that only the
// first-token rule removes.
func decorate(r *rand.Rand, s string) string {
	switch r.IntN(4) {
	case 0:
		return "  " + s
	case 1:
		return s + " " + pick(r, []string{"Ben", "kai?", "123"})
	case 2:
		return "\t" + s + "\n"
	default:
		return s
	}
}

// generateGuesses builds cfg.Submissions guesses. The expected canonical of
// each is computed with the same rule the server applies.
func generateGuesses(ctx context.Context, cfg *Config, stats *Stats) []Guess {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	logger.Get().Info(ctx, "generating guesses",
		logger.Int("submissions", cfg.Submissions),
		logger.Float64("invalid_ratio", cfg.InvalidRatio),
		logger.Any("seed", seed),
	)

	out := make([]Guess, cfg.Submissions)
	for i := range out {
		var raw string
		if r.Float64() < cfg.InvalidRatio {
			raw = invalidMakers[r.IntN(len(invalidMakers))](r)
		} else {
			raw = decorate(r, randomCase(r, pick(r, heads)+pick(r, middle)+pick(r, tails)))
		}
		canonical, err := guess.Normalize(raw)
		if err != nil {
			canonical = ""
		}
		out[i] = Guess{ID: uuid.NewString(), Raw: raw, Canonical: canonical}
	}

	stats.Generated = len(out)
	return out
}
