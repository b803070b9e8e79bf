package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vinwatch/wine-deals-bot/internal/models"
)

func intPtr(v int) *int { return &v }

func testPrefs() models.Preferences {
	return models.Preferences{
		Keywords:       []string{"chianti"},
		MinDiscountPct: 30,
		MaxPrice:       55,
		MinScore:       90,
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		listing  models.Listing
		expected bool
		reason   string
	}{
		{
			name: "All checks pass",
			listing: models.Listing{
				Name: "Chianti Classico Riserva", Price: 42, OriginalPrice: 60,
				DiscountPct: 30, Score: intPtr(92),
			},
			expected: true,
			reason:   "keyword, discount, price and score all within bounds",
		},
		{
			name: "Keyword match is case-insensitive",
			listing: models.Listing{
				Name: "CHIANTI Rufina", Price: 42, DiscountPct: 35, Score: intPtr(92),
			},
			expected: true,
			reason:   "listing name is lowercased before matching",
		},
		{
			name: "No keyword match rejects immediately",
			listing: models.Listing{
				Name: "Napa Chardonnay", Price: 10, DiscountPct: 90, Score: intPtr(99),
			},
			expected: false,
			reason:   "great numbers don't matter if the wine is wrong",
		},
		{
			name: "Discount exactly at threshold matches",
			listing: models.Listing{
				Name: "Chianti Classico", Price: 42, DiscountPct: 30, Score: intPtr(92),
			},
			expected: true,
			reason:   "min_discount_pct is an inclusive lower bound",
		},
		{
			name: "Discount below threshold rejects",
			listing: models.Listing{
				Name: "Chianti Classico", Price: 42, DiscountPct: 29, Score: intPtr(92),
			},
			expected: false,
			reason:   "29 < 30",
		},
		{
			name: "Price exactly at ceiling matches",
			listing: models.Listing{
				Name: "Chianti Classico", Price: 55, DiscountPct: 30, Score: intPtr(92),
			},
			expected: true,
			reason:   "max_price is an inclusive upper bound",
		},
		{
			name: "Price above ceiling rejects",
			listing: models.Listing{
				Name: "Chianti Classico Riserva", Price: 60, OriginalPrice: 80,
				DiscountPct: 30, Score: intPtr(92),
			},
			expected: false,
			reason:   "60 > 55",
		},
		{
			name: "Absent score bypasses score check",
			listing: models.Listing{
				Name: "Chianti Classico Riserva", Price: 42, OriginalPrice: 60,
				DiscountPct: 30, Score: nil,
			},
			expected: true,
			reason:   "retailers that list no score must not be silently dropped",
		},
		{
			name: "Score below floor rejects",
			listing: models.Listing{
				Name: "Chianti Classico", Price: 42, DiscountPct: 30, Score: intPtr(89),
			},
			expected: false,
			reason:   "89 < 90",
		},
		{
			name: "Score exactly at floor matches",
			listing: models.Listing{
				Name: "Chianti Classico", Price: 42, DiscountPct: 30, Score: intPtr(90),
			},
			expected: true,
			reason:   "min_score is an inclusive lower bound",
		},
		{
			name: "Zero discount only matches a zero threshold",
			listing: models.Listing{
				Name: "Chianti Classico", Price: 42, DiscountPct: 0, Score: intPtr(92),
			},
			expected: false,
			reason:   "adapters report 0 when no original price is shown; 0 < 30",
		},
	}

	prefs := testPrefs()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Matches(tt.listing, prefs)
			assert.Equal(t, tt.expected, result, tt.reason)
		})
	}
}

func TestMatchesZeroDiscountThreshold(t *testing.T) {
	prefs := testPrefs()
	prefs.MinDiscountPct = 0

	listing := models.Listing{Name: "Chianti Classico", Price: 42, DiscountPct: 0, Score: intPtr(92)}
	assert.True(t, Matches(listing, prefs))
}

func TestMatchesAnyKeywordSuffices(t *testing.T) {
	prefs := models.Preferences{
		Keywords:       []string{"malbec", "syrah", "zinfandel"},
		MinDiscountPct: 0,
		MaxPrice:       100,
		MinScore:       0,
	}

	assert.True(t, Matches(models.Listing{Name: "Old Vine Zinfandel", Price: 20}, prefs))
	assert.True(t, Matches(models.Listing{Name: "Mendoza Malbec Reserva", Price: 20}, prefs))
	assert.False(t, Matches(models.Listing{Name: "Willamette Pinot Noir", Price: 20}, prefs))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		listing models.Listing
		wantErr bool
	}{
		{
			name:    "Valid listing",
			listing: models.Listing{Source: "wtso", ID: "123", Name: "Chianti", Price: 42, OriginalPrice: 60, DiscountPct: 30},
			wantErr: false,
		},
		{
			name:    "Missing id",
			listing: models.Listing{Source: "wtso", Name: "Chianti", Price: 42},
			wantErr: true,
		},
		{
			name:    "Missing name",
			listing: models.Listing{Source: "wtso", ID: "123", Price: 42},
			wantErr: true,
		},
		{
			name:    "Negative price",
			listing: models.Listing{Source: "wtso", ID: "123", Name: "Chianti", Price: -1},
			wantErr: true,
		},
		{
			name:    "Original price below sale price",
			listing: models.Listing{Source: "wtso", ID: "123", Name: "Chianti", Price: 42, OriginalPrice: 30},
			wantErr: true,
		},
		{
			name:    "Discount above 100",
			listing: models.Listing{Source: "wtso", ID: "123", Name: "Chianti", Price: 42, DiscountPct: 120},
			wantErr: true,
		},
		{
			name:    "Zero price is allowed",
			listing: models.Listing{Source: "wtso", ID: "123", Name: "Chianti", Price: 0},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.listing)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
