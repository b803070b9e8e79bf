// Package filter holds the pure preference predicate applied to every
// scraped listing. It has no side effects and no dependencies on the
// adapters or the seen-set, so every policy decision about what counts
// as a deal lives in one place.
package filter

import (
	"fmt"
	"strings"

	"github.com/vinwatch/wine-deals-bot/internal/models"
)

// Validate rejects listings with broken data before they reach the
// preference checks. A validation failure is a data-quality problem with
// the adapter, not a filter miss, and is counted separately in the run
// report.
func Validate(l models.Listing) error {
	if l.ID == "" {
		return fmt.Errorf("listing from %s has no id", l.Source)
	}
	if l.Name == "" {
		return fmt.Errorf("listing %s has no name", l.Key())
	}
	if l.Price < 0 {
		return fmt.Errorf("listing %s has negative price %.2f", l.Key(), l.Price)
	}
	if l.OriginalPrice > 0 && l.OriginalPrice < l.Price {
		return fmt.Errorf("listing %s original price %.2f below sale price %.2f", l.Key(), l.OriginalPrice, l.Price)
	}
	if l.DiscountPct < 0 || l.DiscountPct > 100 {
		return fmt.Errorf("listing %s has discount %d%% outside 0-100", l.Key(), l.DiscountPct)
	}
	return nil
}

// Matches reports whether a listing satisfies the taste/price profile.
// Keywords are expected pre-lowercased (config.Normalized does this).
// Checks short-circuit in keyword, discount, price, score order; a listing
// with no critic score bypasses the score check rather than failing it.
func Matches(l models.Listing, prefs models.Preferences) bool {
	name := strings.ToLower(l.Name)

	matched := false
	for _, kw := range prefs.Keywords {
		if kw != "" && strings.Contains(name, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	if l.DiscountPct < prefs.MinDiscountPct {
		return false
	}

	if l.Price > prefs.MaxPrice {
		return false
	}

	if l.Score != nil && *l.Score < prefs.MinScore {
		return false
	}

	return true
}
