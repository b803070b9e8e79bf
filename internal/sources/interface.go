package sources

import (
	"context"

	"github.com/vinwatch/wine-deals-bot/internal/models"
)

// Adapter defines the contract for all retailer scrapers. Implementations
// own everything site-specific: fetching, HTML parsing and normalization
// into Listings. A fetch failure from one adapter never aborts the run.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Listing, error)
	IsEnabled() bool
}
