package matcher

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// nameForms caches the derived forms of a name so each strategy does
// not re-normalize.
type nameForms struct {
	raw     string
	norm    string
	compact string
	words   []string
}

func formsOf(s string) nameForms {
	return nameForms{
		raw:     s,
		norm:    Normalize(s),
		compact: Compact(s),
		words:   Words(s),
	}
}

// scoreStrategy scores an input name against a catalog candidate.
// It returns ok=false when the strategy has no opinion, letting the
// cascade fall through to the next tier.
type scoreStrategy struct {
	name  string
	score func(input, candidate nameForms) (float64, bool)
}

// strategies is the scoring cascade, evaluated in priority order with
// first-match-wins semantics per candidate.
var strategies = []scoreStrategy{
	{name: "exact", score: scoreExact},
	{name: "prefix", score: scorePrefix},
	{name: "compact-prefix", score: scoreCompactPrefix},
	{name: "contains", score: scoreContains},
	{name: "word-overlap", score: scoreWordOverlap},
}

// scoreExact matches the full normalized names.
func scoreExact(input, candidate nameForms) (float64, bool) {
	if input.norm != "" && input.norm == candidate.norm {
		return 100, true
	}
	return 0, false
}

// scorePrefix matches truncations: one name is a leading fragment of
// the other, either whole-string ("Chocolate Ca" for "Chocolate Cake")
// or word-by-word ("Choc Cake" for "Chocolate Cake"). The score scales
// with how much of the catalog name the fragment covers, so
// near-complete truncations land close to 98.
func scorePrefix(input, candidate nameForms) (float64, bool) {
	if input.norm == "" || candidate.norm == "" {
		return 0, false
	}

	matched := 0
	switch {
	case strings.HasPrefix(candidate.norm, input.norm):
		matched = len(input.compact)
	case strings.HasPrefix(input.norm, candidate.norm):
		matched = len(candidate.compact)
	case wordwisePrefix(input.norm, candidate.norm):
		matched = len(input.compact)
	default:
		return 0, false
	}

	return scaledScore(85, 98, matched, len(candidate.compact)), true
}

// scoreCompactPrefix is the separator-insensitive variant of the
// prefix rule, catching exports that drop spaces or punctuation.
func scoreCompactPrefix(input, candidate nameForms) (float64, bool) {
	if len(input.compact) == 0 || len(candidate.compact) == 0 {
		return 0, false
	}

	matched := 0
	switch {
	case strings.HasPrefix(candidate.compact, input.compact):
		matched = len(input.compact)
	case strings.HasPrefix(input.compact, candidate.compact):
		matched = len(candidate.compact)
	default:
		return 0, false
	}

	return scaledScore(80, 96, matched, len(candidate.compact)), true
}

// scoreContains matches substring containment in either direction.
// A catalog name containing the input is the stronger signal: the
// export usually shortens, not extends.
func scoreContains(input, candidate nameForms) (float64, bool) {
	if input.norm == "" || candidate.norm == "" {
		return 0, false
	}

	if strings.Contains(candidate.norm, input.norm) {
		return 75, true
	}
	if strings.Contains(input.norm, candidate.norm) {
		return 70, true
	}

	return 0, false
}

// scoreWordOverlap counts exact and partial (one-prefixes-other) word
// matches between the names, scoring
//
//	50 + 30*(exact/totalInputWords) + 15*(partial/totalInputWords)
func scoreWordOverlap(input, candidate nameForms) (float64, bool) {
	if len(input.words) == 0 || len(candidate.words) == 0 {
		return 0, false
	}

	exact := 0
	partial := 0
	for _, iw := range input.words {
		matchedExact := false
		matchedPartial := false
		for _, cw := range candidate.words {
			if iw == cw {
				matchedExact = true
				break
			}
			if strings.HasPrefix(cw, iw) || strings.HasPrefix(iw, cw) {
				matchedPartial = true
			}
		}
		if matchedExact {
			exact++
		} else if matchedPartial {
			partial++
		}
	}

	if exact == 0 && partial == 0 {
		return 0, false
	}

	total := float64(len(input.words))
	score := 50 + 30*(float64(exact)/total) + 15*(float64(partial)/total)
	return capScore(score), true
}

// levenshteinRescue lifts candidates the cascade left below the
// viability floor when their normalized edit-distance similarity is
// high enough. It never lowers an existing score.
func levenshteinRescue(input, candidate nameForms, current float64) float64 {
	if current >= ScoreFloor {
		return current
	}
	if len(input.norm) < levenshteinMinLength || len(candidate.norm) < levenshteinMinLength {
		return current
	}

	maxLen := len(input.norm)
	if len(candidate.norm) > maxLen {
		maxLen = len(candidate.norm)
	}

	dist := levenshtein.ComputeDistance(input.norm, candidate.norm)
	similarity := 1 - float64(dist)/float64(maxLen)
	if similarity > LevenshteinMinSimilarity {
		rescued := 40 + similarity*40
		if rescued > current {
			return capScore(rescued)
		}
	}

	return current
}

// wordwisePrefix reports whether every word of the shorter name is a
// prefix of the corresponding word of the longer name, in order.
// This catches per-word truncation ("choc cake" vs "chocolate cake").
func wordwisePrefix(a, b string) bool {
	aw := strings.Fields(a)
	bw := strings.Fields(b)
	if len(aw) != len(bw) || len(aw) == 0 {
		return false
	}

	for i := range aw {
		if !strings.HasPrefix(bw[i], aw[i]) && !strings.HasPrefix(aw[i], bw[i]) {
			return false
		}
	}
	return true
}

// scaledScore maps a matched-length ratio onto [low, high].
func scaledScore(low, high float64, matched, candidateLen int) float64 {
	if candidateLen <= 0 {
		return low
	}

	ratio := float64(matched) / float64(candidateLen)
	if ratio > 1 {
		ratio = 1
	}

	return capScore(low + (high-low)*ratio)
}

func capScore(s float64) float64 {
	if s > 100 {
		return 100
	}
	return s
}
