package filter

import (
	"strings"
	"testing"

	"artwork-tracker/models"
)

func makeListing(title, description string) models.Listing {
	return models.Listing{
		Title:       title,
		Description: description,
		Platform:    models.PlatformEbay,
		SourceURL:   "https://example.com/listing/123",
	}
}

func TestRejectsDaVinciCodeBook(t *testing.T) {
	scorer := NewDefaultScorer()
	result := scorer.Score(makeListing(
		"Dan Brown - The Da Vinci Code - First Edition",
		"Bestselling thriller by the famous author",
	))

	if !result.Rejected {
		t.Fatal("expected listing to be rejected")
	}
	if result.ConfidenceScore != -10.0 {
		t.Errorf("ConfidenceScore = %v, want -10.0", result.ConfidenceScore)
	}
	if len(result.NegativeSignals) != 1 {
		t.Errorf("NegativeSignals has %d entries, want 1", len(result.NegativeSignals))
	}
	if result.RejectionReason == "" {
		t.Error("RejectionReason is empty")
	}
}

func TestRejectsNovelistReferences(t *testing.T) {
	scorer := NewDefaultScorer()
	result := scorer.Score(makeListing(
		"Dan Brown Collection",
		"Complete set of novels by this bestselling author",
	))

	if !result.Rejected {
		t.Error("expected listing mentioning novelist/author to be rejected")
	}
}

func TestRejectWinsOverPositiveSignals(t *testing.T) {
	// A listing that matches a reject pattern AND strong positive
	// signals must be rejected outright, with positive evaluation
	// skipped entirely rather than outweighed.
	scorer := NewDefaultScorer()
	result := scorer.Score(makeListing(
		"Dan Brown trompe l'oeil rack painting",
		"By the bestselling author of thrillers",
	))

	if !result.Rejected {
		t.Fatal("expected rejection to take precedence")
	}
	if result.ConfidenceScore != -10.0 {
		t.Errorf("ConfidenceScore = %v, want -10.0 sentinel", result.ConfidenceScore)
	}
	if len(result.PositiveSignals) != 0 {
		t.Errorf("PositiveSignals = %v, want empty (evaluation skipped)", result.PositiveSignals)
	}
}

func TestHighConfidenceTrompeLoeil(t *testing.T) {
	scorer := NewDefaultScorer()
	result := scorer.Score(makeListing(
		"Dan Brown Trompe L'oeil Painting",
		"Beautiful vintage postcard painting by Connecticut artist",
	))

	if result.Rejected {
		t.Fatal("expected listing to be accepted")
	}
	if result.ConfidenceScore < 3.0 {
		t.Errorf("ConfidenceScore = %v, want >= 3.0", result.ConfidenceScore)
	}
	if _, ok := result.PositiveSignals["trompe-loeil"]; !ok {
		t.Errorf("PositiveSignals = %v, want trompe-loeil key", result.PositiveSignals)
	}
}

func TestHighConfidenceSusanPowell(t *testing.T) {
	scorer := NewDefaultScorer()
	result := scorer.Score(makeListing(
		"Dan Brown - Madison Postcards",
		"From Susan Powell Fine Art gallery",
	))

	if result.Rejected {
		t.Fatal("expected listing to be accepted")
	}
	if result.ConfidenceScore < 2.5 {
		t.Errorf("ConfidenceScore = %v, want >= 2.5", result.ConfidenceScore)
	}
}

func TestCurlyApostropheTrompeLoeil(t *testing.T) {
	scorer := NewDefaultScorer()
	result := scorer.Score(makeListing("Dan Brown Trompe L’oeil", ""))

	if _, ok := result.PositiveSignals["trompe-loeil"]; !ok {
		t.Errorf("curly apostrophe variant not matched: %v", result.PositiveSignals)
	}
}

func TestNoMatchIsNeutral(t *testing.T) {
	scorer := NewDefaultScorer()
	result := scorer.Score(makeListing("Blue ceramic vase", "Handmade pottery"))

	if result.Rejected {
		t.Error("no-match listing should not be rejected")
	}
	if result.ConfidenceScore != 0.0 {
		t.Errorf("ConfidenceScore = %v, want 0.0", result.ConfidenceScore)
	}
	if len(result.PositiveSignals) != 0 || len(result.NegativeSignals) != 0 {
		t.Errorf("signals should be empty, got +%v -%v",
			result.PositiveSignals, result.NegativeSignals)
	}
}

func TestThresholdBoundaryIsExclusive(t *testing.T) {
	// A score exactly equal to the rejection threshold is accepted;
	// rejection uses <, not <=.
	scorer := NewScorer(0.5, 1.0)
	result := scorer.Score(makeListing("Dan Brown still life", ""))

	if result.ConfidenceScore != 0.5 {
		t.Fatalf("ConfidenceScore = %v, want exactly 0.5", result.ConfidenceScore)
	}
	if result.Rejected {
		t.Error("score equal to threshold must not be rejected")
	}

	// One notch above the score and the same listing is rejected.
	strict := NewScorer(0.6, 1.0)
	if r := strict.Score(makeListing("Dan Brown still life", "")); !r.Rejected {
		t.Error("score below threshold must be rejected")
	} else if !strings.Contains(r.RejectionReason, "threshold") {
		t.Errorf("RejectionReason = %q, want threshold citation", r.RejectionReason)
	}
}

func TestPatternCountsOncePerListing(t *testing.T) {
	scorer := NewDefaultScorer()
	result := scorer.Score(makeListing(
		"Nantucket painting",
		"Scenes of Nantucket, more Nantucket, always Nantucket",
	))

	if got := result.ConfidenceScore; got != 1.5 {
		t.Errorf("ConfidenceScore = %v, want 1.5 (pattern weighted once)", got)
	}
}

func TestFilterBatchRemovesRejected(t *testing.T) {
	scorer := NewDefaultScorer()
	listings := []models.Listing{
		makeListing("Da Vinci Code Book", "Bestselling novel"),
		makeListing("Dan Brown Trompe L'oeil", "Beautiful painting"),
		makeListing("Angels and Demons", "Thriller book"),
	}

	results := scorer.FilterListings(listings)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if !strings.Contains(strings.ToLower(results[0].Listing.Title), "trompe") {
		t.Errorf("surviving listing = %q, want the trompe l'oeil one", results[0].Listing.Title)
	}
}

func TestFilterBatchSortsByConfidence(t *testing.T) {
	scorer := NewDefaultScorer()
	listings := []models.Listing{
		makeListing("Dan Brown Art", "Generic painting"),
		makeListing("Dan Brown Trompe L'oeil Susan Powell Fine Art", "High confidence"),
		makeListing("Dan Brown Connecticut Artist", "Medium confidence"),
	}

	results := scorer.FilterListings(listings)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 0; i+1 < len(results); i++ {
		if results[i].ConfidenceScore < results[i+1].ConfidenceScore {
			t.Errorf("results not in non-increasing order at %d: %v < %v",
				i, results[i].ConfidenceScore, results[i+1].ConfidenceScore)
		}
	}
}

func TestFilterBatchStableForEqualScores(t *testing.T) {
	scorer := NewDefaultScorer()
	listings := []models.Listing{
		{Title: "Nantucket harbor", Platform: models.PlatformEbay, SourceURL: "https://example.com/a"},
		{Title: "Nantucket dunes", Platform: models.PlatformEbay, SourceURL: "https://example.com/b"},
	}

	results := scorer.FilterListings(listings)

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Listing.SourceURL != "https://example.com/a" {
		t.Error("equal scores must preserve original relative order")
	}
}
