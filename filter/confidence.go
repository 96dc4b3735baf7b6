package filter

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"artwork-tracker/models"
)

// rejectSentinel is the fixed score assigned when a reject pattern fires.
// It is a sentinel, not a sum.
const rejectSentinel = -10.0

// ScoringResult extends a listing with its confidence score and the
// signal breakdown that produced it. Even rejected results carry their
// signal maps so a run can be audited afterwards.
type ScoringResult struct {
	Listing         models.Listing
	ConfidenceScore float64
	PositiveSignals map[string]float64
	NegativeSignals map[string]float64
	Rejected        bool
	RejectionReason string
}

// pattern is one scoring rule: a stable label (used as the signal key),
// the compiled expression, and the weight it contributes when matched.
type pattern struct {
	label  string
	re     *regexp.Regexp
	weight float64
}

func mustPattern(label, expr string, weight float64) pattern {
	return pattern{label: label, re: regexp.MustCompile(`(?i)` + expr), weight: weight}
}

// Patterns identifying the namesake novelist. Any single match rejects
// the listing outright, before positive scoring runs.
var rejectPatterns = []pattern{
	mustPattern("da-vinci-code", `da\s*vinci\s*code`, rejectSentinel),
	mustPattern("robert-langdon", `robert\s*langdon`, rejectSentinel),
	mustPattern("angels-and-demons", `angels\s*(&|and)\s*demons`, rejectSentinel),
	mustPattern("inferno", `inferno`, rejectSentinel),
	mustPattern("digital-fortress", `digital\s*fortress`, rejectSentinel),
	mustPattern("deception-point", `deception\s*point`, rejectSentinel),
	mustPattern("origin-novel", `origin\s*novel`, rejectSentinel),
	mustPattern("the-lost-symbol", `the\s*lost\s*symbol`, rejectSentinel),
	mustPattern("author", `\bauthor\b`, rejectSentinel),
	mustPattern("novelist", `\bnovelist\b`, rejectSentinel),
	mustPattern("thriller", `\bthriller\b`, rejectSentinel),
	mustPattern("bestseller", `\bbestseller\b`, rejectSentinel),
	mustPattern("bestselling", `\bbestselling\b`, rejectSentinel),
	mustPattern("nyt-bestseller", `new\s*york\s*times\s*bestseller`, rejectSentinel),
}

// Strong identity signals: galleries, colleagues, and techniques tied
// directly to the painter.
var strongPositive = []pattern{
	mustPattern("trompe-loeil", `trompe\s*l['’]?oeil`, 3.0),
	mustPattern("paier-college", `paier\s*college`, 3.0),
	mustPattern("ken-davies", `ken\s*davies`, 2.5),
	mustPattern("peter-poskas", `peter\s*poskas`, 2.5),
	mustPattern("susan-powell-fine-art", `susan\s*powell\s*fine\s*art`, 3.0),
	mustPattern("david-findlay-gallery", `david\s*findlay\s*galler`, 2.5),
	mustPattern("greenwich-workshop-gallery", `greenwich\s*workshop\s*galler`, 2.5),
	mustPattern("robert-wilson-gallery", `robert\s*wilson\s*galler`, 2.0),
	mustPattern("rack-painting", `rack\s*painting`, 2.5),
}

// Medium signals: locations, life dates, characteristic subjects.
var mediumPositive = []pattern{
	mustPattern("madison-ct", `madison\s*,?\s*(ct|connecticut)`, 1.5),
	mustPattern("hamden-ct", `hamden\s*,?\s*(ct|connecticut)`, 1.5),
	mustPattern("nantucket", `nantucket`, 1.5),
	mustPattern("cape-cod", `cape\s*cod`, 1.0),
	mustPattern("vintage-postcards", `vintage\s*postcards?`, 1.5),
	mustPattern("currency-painting", `currency\s*painting`, 1.5),
	mustPattern("paper-currency", `paper\s*currency`, 1.0),
	mustPattern("hyperrealistic", `hyperrealistic`, 1.0),
	mustPattern("realist-painting", `realist\s*paint`, 1.0),
	mustPattern("still-life", `still\s*life`, 0.5),
	mustPattern("connecticut-artist", `connecticut\s*artist`, 1.5),
	mustPattern("life-dates-1949-2022", `1949\s*-?\s*2022`, 2.0),
}

// Weak signals: publications and adjacent commercial work.
var weakPositive = []pattern{
	mustPattern("harlequin-books", `harlequin\s*books?`, 0.5),
	mustPattern("rolling-stone", `rolling\s*stone`, 0.5),
	mustPattern("smithsonian", `smithsonian`, 0.5),
	mustPattern("national-geographic", `national\s*geographic`, 0.5),
	mustPattern("book-cover-illustration", `book\s*cover\s*illustrat`, 0.5),
	mustPattern("commercial-illustration", `commercial\s*illustrat`, 0.5),
	mustPattern("syracuse-ny", `syracuse\s*,?\s*(ny|new\s*york)`, 0.5),
}

// Scorer classifies listings as the painter's work or the novelist's.
// It is pure and performs no I/O; the same listing always produces the
// same result.
type Scorer struct {
	rejectionThreshold  float64
	acceptanceThreshold float64
}

// NewScorer creates a Scorer with the given thresholds. Listings whose
// summed score is below rejectionThreshold are rejected; scores at or
// above acceptanceThreshold are considered high confidence by callers.
func NewScorer(rejectionThreshold, acceptanceThreshold float64) *Scorer {
	return &Scorer{
		rejectionThreshold:  rejectionThreshold,
		acceptanceThreshold: acceptanceThreshold,
	}
}

// NewDefaultScorer returns a Scorer with the standard thresholds
// (rejection -1.0, acceptance 1.0).
func NewDefaultScorer() *Scorer {
	return NewScorer(-1.0, 1.0)
}

// AcceptanceThreshold exposes the configured high-confidence bar.
func (s *Scorer) AcceptanceThreshold() float64 {
	return s.acceptanceThreshold
}

// Score evaluates a single listing.
//
// Reject patterns are checked first and short-circuit: one match sets the
// sentinel score and skips positive evaluation entirely. Otherwise every
// positive pattern contributes its weight at most once, and the sum is
// checked against the rejection threshold (exclusive: a score equal to
// the threshold is accepted).
func (s *Scorer) Score(listing models.Listing) ScoringResult {
	text := strings.ToLower(listing.Title + " " + listing.Description)

	result := ScoringResult{
		Listing:         listing,
		PositiveSignals: map[string]float64{},
		NegativeSignals: map[string]float64{},
	}

	for _, p := range rejectPatterns {
		if p.re.MatchString(text) {
			result.Rejected = true
			result.RejectionReason = fmt.Sprintf("matched rejection pattern: %s", p.label)
			result.NegativeSignals[p.label] = rejectSentinel
			result.ConfidenceScore = rejectSentinel
			return result
		}
	}

	for _, tier := range [][]pattern{strongPositive, mediumPositive, weakPositive} {
		for _, p := range tier {
			if p.re.MatchString(text) {
				result.PositiveSignals[p.label] = p.weight
				result.ConfidenceScore += p.weight
			}
		}
	}

	if result.ConfidenceScore < s.rejectionThreshold {
		result.Rejected = true
		result.RejectionReason = fmt.Sprintf("score %.2f below threshold %.2f",
			result.ConfidenceScore, s.rejectionThreshold)
	}

	return result
}

// FilterListings scores a batch, drops rejected results, and returns the
// remainder sorted by confidence descending. The sort is stable: listings
// with equal scores keep their original relative order, so index 0 is
// always the highest-confidence accepted listing.
func (s *Scorer) FilterListings(listings []models.Listing) []ScoringResult {
	accepted := make([]ScoringResult, 0, len(listings))
	for _, listing := range listings {
		result := s.Score(listing)
		if !result.Rejected {
			accepted = append(accepted, result)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].ConfidenceScore > accepted[j].ConfidenceScore
	})

	log.Printf("Batch filtering complete: total=%d accepted=%d rejected=%d\n",
		len(listings), len(accepted), len(listings)-len(accepted))

	return accepted
}
