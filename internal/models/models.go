package models

import (
	"fmt"
	"time"
)

// Listing represents one normalized product offer from one retailer at scrape time
type Listing struct {
	Source        string  `json:"source"`          // "wtso", "lastbottle", "winecom"
	ID            string  `json:"id"`              // stable within its source
	Name          string  `json:"name"`
	Price         float64 `json:"price"`           // current discounted price
	OriginalPrice float64 `json:"original_price"`  // 0 if the retailer shows none
	DiscountPct   int     `json:"discount_pct"`    // always computed by the adapter, 0..100
	Score         *int    `json:"score,omitempty"` // critic score, nil if not listed
	URL           string  `json:"url"`
}

// Key returns the dedup key for this listing, qualified by source
func (l Listing) Key() string {
	return l.Source + "/" + l.ID
}

// Preferences is the static taste/price profile a listing is matched against
type Preferences struct {
	Keywords       []string `json:"keywords"`
	MinDiscountPct int      `json:"min_discount_pct"`
	MaxPrice       float64  `json:"max_price"`
	MinScore       int      `json:"min_score"`
}

// SourceReport holds per-adapter counts for one run
type SourceReport struct {
	Scanned int    `json:"scanned"`
	Invalid int    `json:"invalid"`
	Matches int    `json:"matches"`
	Error   string `json:"error,omitempty"`
}

// RunReport is the sole observable output of a run besides the notifications
// themselves. Errors are kept separate from counts so that "no matches found"
// never looks the same as "a source was down".
type RunReport struct {
	StartedAt     time.Time                `json:"started_at"`
	Duration      string                   `json:"duration"`
	Sources       map[string]*SourceReport `json:"sources"`
	TotalScanned  int                      `json:"total_scanned"`
	TotalInvalid  int                      `json:"total_invalid"`
	TotalMatches  int                      `json:"total_matches"`
	NewMatches    int                      `json:"new_matches"`
	Notified      int                      `json:"notified"`
	NotifyErrors  []string                 `json:"notify_errors,omitempty"`
	StoreWarnings []string                 `json:"store_warnings,omitempty"`
	StoreError    string                   `json:"store_error,omitempty"`
}

// HasErrors reports whether anything went wrong during the run
func (r *RunReport) HasErrors() bool {
	if r.StoreError != "" || len(r.NotifyErrors) > 0 {
		return true
	}
	for _, src := range r.Sources {
		if src.Error != "" {
			return true
		}
	}
	return false
}

// Summary returns a one-line human summary for logs
func (r *RunReport) Summary() string {
	return fmt.Sprintf("scanned=%d invalid=%d matches=%d new=%d notified=%d errors=%v",
		r.TotalScanned, r.TotalInvalid, r.TotalMatches, r.NewMatches, r.Notified, r.HasErrors())
}
