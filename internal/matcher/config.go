// Package matcher scores free-text product names from spreadsheet
// exports against the internal catalog.
//
// Export names are frequently truncated ("Choc Cake" for "Chocolate
// Cake"), reworded, or differently punctuated, so matching runs an
// ordered cascade of scoring strategies from cheapest and most certain
// (exact match) down to an edit-distance fallback. Scores are on a
// 0-100 scale. The first strategy that produces a score wins for a
// given candidate; the Levenshtein fallback only lifts candidates that
// scored below the viability floor.
//
// Example usage:
//
//	config := matcher.DefaultConfig()
//	result := matcher.MatchProduct("Choc Cake", "whole", catalog, config)
//	switch result.Verdict {
//	case matcher.VerdictAutoMatch:
//		// safe to proceed without confirmation
//	case matcher.VerdictNeedsConfirmation:
//		// surface result.Candidates for human disambiguation
//	}
package matcher

import "fmt"

// Scoring thresholds. These are empirically chosen values carried over
// from production behavior; do not tune without product-owner signoff.
const (
	// ScoreFloor is the minimum score for a candidate to be kept at all.
	ScoreFloor = 50.0

	// DefaultMinAutoMatchScore is the default threshold above which the
	// best candidate is applied without confirmation.
	DefaultMinAutoMatchScore = 85.0

	// LevenshteinMinSimilarity is the normalized similarity a candidate
	// must exceed for the edit-distance fallback to score it.
	LevenshteinMinSimilarity = 0.6

	// levenshteinMinLength is the minimum normalized length of both
	// names before edit distance is meaningful.
	levenshteinMinLength = 5

	// defaultMaxCandidates caps the ranked candidate list.
	defaultMaxCandidates = 10
)

// Config holds the tunable parameters of the product matcher. The
// scoring tier boundaries themselves are fixed constants; only the
// auto-match threshold and the candidate cap are configurable.
type Config struct {
	// MinAutoMatchScore is the score at or above which the best
	// candidate is auto-applied without human confirmation.
	MinAutoMatchScore float64 `json:"min_auto_match_score"`

	// MaxCandidates limits the returned ranked candidate list.
	MaxCandidates int `json:"max_candidates"`
}

// DefaultConfig returns the production matcher configuration
func DefaultConfig() *Config {
	return &Config{
		MinAutoMatchScore: DefaultMinAutoMatchScore,
		MaxCandidates:     defaultMaxCandidates,
	}
}

// Validate checks if the matcher configuration is valid
func (c *Config) Validate() error {
	if c.MinAutoMatchScore < ScoreFloor || c.MinAutoMatchScore > 100 {
		return fmt.Errorf("min auto-match score must be between %.0f and 100: %f",
			ScoreFloor, c.MinAutoMatchScore)
	}

	if c.MaxCandidates <= 0 {
		return fmt.Errorf("max candidates must be positive: %d", c.MaxCandidates)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
