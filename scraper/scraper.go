package scraper

import (
	"context"
	"log"
	"time"

	"artwork-tracker/models"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const requestTimeout = 30 * time.Second

// Scraper is the contract every marketplace implementation satisfies.
// Implementations are substitutable: the orchestrator never branches on
// the concrete type, only on Platform() for routing.
type Scraper interface {
	// Platform identifies which marketplace this scraper covers.
	Platform() models.Platform

	// BuildSearchQueries returns the ordered, platform-tuned query list
	// one full pass will issue. The lists are written to maximize recall
	// for the painter while steering away from the namesake novelist.
	BuildSearchQueries() []string

	// Search issues one logical search. Transient failures (network
	// errors, non-2xx, malformed items) are handled inside and yield a
	// possibly empty list; an error means the scraper itself is
	// non-functional (e.g. no browser available).
	Search(ctx context.Context, query string) ([]models.Listing, error)

	// GetListingDetails fetches one listing's full page. Returns
	// (nil, nil) when the listing is gone or the page is a bot
	// challenge - "unavailable" is not an error.
	GetListingDetails(ctx context.Context, url string) (*models.Listing, error)

	// SearchAll runs every query from BuildSearchQueries sequentially,
	// deduplicating the merged results.
	SearchAll(ctx context.Context) ([]models.Listing, error)

	// Close releases held resources. Safe to call repeatedly and after
	// a failed initialization.
	Close() error
}

// searchAll is the shared SearchAll composition: queries run strictly
// sequentially with the platform's request delay between them (never
// concurrently, to keep per-platform rate limiting meaningful), and
// results merge with dedup by source ID when present, else URL.
func searchAll(ctx context.Context, s Scraper, delay time.Duration) ([]models.Listing, error) {
	var merged []models.Listing
	seen := make(map[string]bool)

	queries := s.BuildSearchQueries()
	for i, query := range queries {
		listings, err := s.Search(ctx, query)
		if err != nil {
			return merged, err
		}

		merged = mergeListings(merged, listings, seen)

		if i < len(queries)-1 {
			if err := sleepCtx(ctx, delay); err != nil {
				return merged, err
			}
		}
	}

	log.Printf("All searches complete: platform=%s unique=%d\n", s.Platform(), len(merged))
	return merged, nil
}

// mergeListings appends listings not yet seen. The dedup key is the
// platform-native ID when present (comparable across runs), falling back
// to the canonical URL.
func mergeListings(dst, src []models.Listing, seen map[string]bool) []models.Listing {
	for _, listing := range src {
		key := listing.SourceID
		if key == "" {
			key = listing.SourceURL
		}
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		dst = append(dst, listing)
	}
	return dst
}

// sleepCtx waits for the given delay unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
