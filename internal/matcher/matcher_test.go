package matcher

import (
	"testing"

	"stock-reconciliation-service/internal/models"
)

func createTestCatalog() []models.Product {
	return []models.Product{
		{ID: "P001", Name: "Chocolate Cake", Unit: "whole", Type: models.ProductTypeMenu},
		{ID: "P002", Name: "Chocolate Cake", Unit: "slice", Type: models.ProductTypeMenu},
		{ID: "P003", Name: "Carrot Cake", Unit: "whole", Type: models.ProductTypeMenu},
		{ID: "P004", Name: "Espresso", Unit: "cup", Type: models.ProductTypeMenu},
		{ID: "P005", Name: "Cappuccino", Unit: "cup", Type: models.ProductTypeMenu},
	}
}

func TestScoreNameExactMatch(t *testing.T) {
	score := ScoreName("Chocolate Cake", "Chocolate Cake")
	if score != 100 {
		t.Errorf("Expected exact match to score 100, got %v", score)
	}

	// Case and punctuation differences still count as exact
	score = ScoreName("chocolate-cake", "Chocolate Cake")
	if score != 100 {
		t.Errorf("Expected normalized exact match to score 100, got %v", score)
	}
}

func TestScoreNameTruncatedPrefix(t *testing.T) {
	// "Chocolate Ca" is a leading fragment of "Chocolate Cake"
	score := ScoreName("Chocolate Ca", "Chocolate Cake")
	if score < 85 || score >= 100 {
		t.Errorf("Expected truncated prefix score in [85, 100), got %v", score)
	}

	// Longer fragments score higher
	longer := ScoreName("Chocolate Cak", "Chocolate Cake")
	if longer <= score {
		t.Errorf("Expected longer fragment %v to beat shorter fragment %v", longer, score)
	}
}

func TestScoreNameWordwiseTruncation(t *testing.T) {
	// Each word truncated independently still lands in the prefix band
	score := ScoreName("Choc Cake", "Chocolate Cake")
	if score < 85 {
		t.Errorf("Expected word-wise truncation to score at least 85, got %v", score)
	}
}

func TestScoreNameCompactPrefix(t *testing.T) {
	// Export dropped the space; compact prefix tier catches it
	score := ScoreName("ChocolateCa", "Chocolate Cake")
	if score < 80 || score >= 98 {
		t.Errorf("Expected compact prefix score in [80, 98), got %v", score)
	}
}

func TestScoreNameContainment(t *testing.T) {
	// Catalog name contains the input
	score := ScoreName("Cake", "Chocolate Cake")
	if score != 75 {
		t.Errorf("Expected containment score 75, got %v", score)
	}

	// Input contains the catalog name (weaker signal)
	score = ScoreName("Chocolate Cake Large", "Cake Large")
	if score != 70 {
		t.Errorf("Expected reverse containment score 70, got %v", score)
	}
}

func TestScoreNameWordOverlap(t *testing.T) {
	// Same words, different order: both words match exactly
	score := ScoreName("Cake Chocolate", "Chocolate Cake")
	if score != 80 {
		t.Errorf("Expected word overlap score 80 (50 + 30*2/2), got %v", score)
	}
}

func TestLevenshteinRescue(t *testing.T) {
	// One substitution over 8 characters: similarity 0.875
	score := levenshteinRescue(formsOf("expresso"), formsOf("espresso"), 0)
	if score != 75 {
		t.Errorf("Expected rescued score 75 (40 + 0.875*40), got %v", score)
	}

	// Rescue never lowers an existing score
	score = levenshteinRescue(formsOf("expresso"), formsOf("espresso"), 90)
	if score != 90 {
		t.Errorf("Expected existing score 90 to be kept, got %v", score)
	}

	// Short names are not rescued
	score = levenshteinRescue(formsOf("cat"), formsOf("car"), 0)
	if score != 0 {
		t.Errorf("Expected short names to stay at 0, got %v", score)
	}
}

func TestMatchProductAutoMatch(t *testing.T) {
	result := MatchProduct("Choc Cake", "", createTestCatalog(), nil)

	if result.Verdict != VerdictAutoMatch {
		t.Fatalf("Expected auto-match verdict, got %v", result.Verdict)
	}
	if result.Best == nil {
		t.Fatal("Expected a best candidate")
	}
	if result.Best.ProductName != "Chocolate Cake" {
		t.Errorf("Expected best candidate 'Chocolate Cake', got %s", result.Best.ProductName)
	}
	if result.Best.Score < 85 {
		t.Errorf("Expected best score at least 85, got %v", result.Best.Score)
	}
}

func TestMatchProductNeedsConfirmation(t *testing.T) {
	// "Cake" is contained in two catalog names; neither reaches the
	// auto-match threshold
	result := MatchProduct("Cake", "", createTestCatalog(), nil)

	if result.Verdict != VerdictNeedsConfirmation {
		t.Fatalf("Expected needs-confirmation verdict, got %v", result.Verdict)
	}
	if len(result.Candidates) < 2 {
		t.Errorf("Expected at least 2 candidates, got %d", len(result.Candidates))
	}
	if result.Best.Score >= DefaultMinAutoMatchScore {
		t.Errorf("Expected best score below the auto-match threshold, got %v", result.Best.Score)
	}
}

func TestMatchProductNoMatch(t *testing.T) {
	result := MatchProduct("Zzz Qqq Vvv", "", createTestCatalog(), nil)

	if result.Verdict != VerdictNoMatch {
		t.Fatalf("Expected no-match verdict, got %v", result.Verdict)
	}
	if result.Best != nil {
		t.Errorf("Expected no best candidate, got %v", result.Best)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("Expected empty candidate list, got %d entries", len(result.Candidates))
	}
}

func TestMatchProductCandidatesSortedDescending(t *testing.T) {
	result := MatchProduct("Chocolate", "", createTestCatalog(), nil)

	for i := 1; i < len(result.Candidates); i++ {
		if result.Candidates[i].Score > result.Candidates[i-1].Score {
			t.Errorf("Candidates not sorted descending: %v before %v",
				result.Candidates[i-1].Score, result.Candidates[i].Score)
		}
	}
	if result.Best != nil && len(result.Candidates) > 0 && result.Best.Score != result.Candidates[0].Score {
		t.Errorf("Best candidate score %v does not match first candidate %v",
			result.Best.Score, result.Candidates[0].Score)
	}
}

func TestMatchProductUnitFilter(t *testing.T) {
	result := MatchProduct("Chocolate Cake", "slice", createTestCatalog(), nil)

	if result.Verdict != VerdictAutoMatch {
		t.Fatalf("Expected auto-match verdict, got %v", result.Verdict)
	}
	if result.Best.ProductID != "P002" {
		t.Errorf("Expected unit filter to pick the slice variant P002, got %s", result.Best.ProductID)
	}
}

func TestMatchProductUnitFilterFallback(t *testing.T) {
	// No product carries this unit; the filter falls back to the full
	// catalog rather than failing
	result := MatchProduct("Espresso", "barrel", createTestCatalog(), nil)

	if result.Verdict != VerdictAutoMatch {
		t.Fatalf("Expected auto-match verdict after fallback, got %v", result.Verdict)
	}
	if result.Best.ProductID != "P004" {
		t.Errorf("Expected P004, got %s", result.Best.ProductID)
	}
}

func TestMatchProductMaxCandidates(t *testing.T) {
	config := DefaultConfig()
	config.MaxCandidates = 1

	result := MatchProduct("Cake", "", createTestCatalog(), config)
	if len(result.Candidates) != 1 {
		t.Errorf("Expected candidate list capped at 1, got %d", len(result.Candidates))
	}
}

func TestMatchProductCustomThreshold(t *testing.T) {
	config := DefaultConfig()
	config.MinAutoMatchScore = 70

	// Containment scores 75, which clears the lowered threshold
	result := MatchProduct("Cake", "", createTestCatalog(), config)
	if result.Verdict != VerdictAutoMatch {
		t.Errorf("Expected auto-match with lowered threshold, got %v", result.Verdict)
	}
}
