package matcher

import (
	"sort"

	"stock-reconciliation-service/internal/models"
)

// Verdict classifies the outcome of matching a free-text name against
// the catalog.
type Verdict int

const (
	// VerdictAutoMatch means the best candidate scored at or above the
	// auto-match threshold and may be applied without confirmation.
	VerdictAutoMatch Verdict = iota

	// VerdictNeedsConfirmation means viable candidates exist but none
	// is certain enough to apply unattended; a human should pick.
	VerdictNeedsConfirmation

	// VerdictNoMatch means no candidate reached the viability floor.
	// The caller must treat the row as unresolved.
	VerdictNoMatch
)

// String returns the string representation of Verdict
func (v Verdict) String() string {
	switch v {
	case VerdictAutoMatch:
		return "auto-match"
	case VerdictNeedsConfirmation:
		return "needs-confirmation"
	case VerdictNoMatch:
		return "no-match"
	default:
		return "unknown"
	}
}

// Result is the ranked outcome of a match attempt.
type Result struct {
	Verdict    Verdict
	Best       *models.MatchCandidate
	Candidates []models.MatchCandidate
}

// ScoreName scores a single free-text name against a single catalog
// name through the full cascade. Exposed so each tier's behavior is
// observable in isolation.
func ScoreName(input, candidate string) float64 {
	in := formsOf(input)
	cand := formsOf(candidate)

	score := 0.0
	for _, strategy := range strategies {
		if s, ok := strategy.score(in, cand); ok {
			score = s
			break
		}
	}

	return levenshteinRescue(in, cand, score)
}

// MatchProduct scores name against every catalog entry and returns a
// ranked candidate list with a verdict.
//
// When unitHint is non-empty the candidate pool is restricted to
// products sharing that unit; if the filter empties the pool the full
// catalog is used instead, so a unit hint can never turn a matchable
// name into a hard failure.
func MatchProduct(name, unitHint string, catalog []models.Product, config *Config) *Result {
	if config == nil {
		config = DefaultConfig()
	}

	pool := filterByUnit(catalog, unitHint)
	in := formsOf(name)

	var candidates []models.MatchCandidate
	for i := range pool {
		cand := formsOf(pool[i].Name)

		score := 0.0
		for _, strategy := range strategies {
			if s, ok := strategy.score(in, cand); ok {
				score = s
				break
			}
		}
		score = levenshteinRescue(in, cand, score)

		if score >= ScoreFloor {
			candidates = append(candidates, models.MatchCandidate{
				ProductID:   pool[i].ID,
				ProductName: pool[i].Name,
				Unit:        pool[i].Unit,
				Score:       score,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > config.MaxCandidates {
		candidates = candidates[:config.MaxCandidates]
	}

	result := &Result{Candidates: candidates}
	if len(candidates) == 0 {
		result.Verdict = VerdictNoMatch
		return result
	}

	result.Best = &candidates[0]
	if candidates[0].Score >= config.MinAutoMatchScore {
		result.Verdict = VerdictAutoMatch
	} else {
		result.Verdict = VerdictNeedsConfirmation
	}

	return result
}

// filterByUnit restricts the pool to products sharing the unit hint,
// falling back to the full catalog when nothing shares it.
func filterByUnit(catalog []models.Product, unitHint string) []models.Product {
	if unitHint == "" {
		return catalog
	}

	want := NormalizeUnit(unitHint)
	if want == "" {
		return catalog
	}

	var filtered []models.Product
	for i := range catalog {
		if NormalizeUnit(catalog[i].Unit) == want {
			filtered = append(filtered, catalog[i])
		}
	}

	if len(filtered) == 0 {
		return catalog
	}
	return filtered
}
