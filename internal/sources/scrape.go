package sources

import (
	"crypto/sha1"
	"encoding/hex"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (compatible; WineDealsBot/1.0)"

var nonPrice = regexp.MustCompile(`[^\d.]`)

// newClient builds the shared resty client configuration for all adapters
func newClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)
}

// parsePrice extracts a price from display text like "$42.99" or "Now $42".
// Returns 0 when no digits are present.
func parsePrice(text string) float64 {
	cleaned := nonPrice.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}

// discountPct computes the rounded percentage off from the original price.
// All adapters use this one policy rather than trusting retailer-printed
// percentages; 0 when no original price is shown.
func discountPct(price, original float64) int {
	if original <= 0 || price > original {
		return 0
	}
	return int(math.Round((1 - price/original) * 100))
}

// listingID derives a stable id from the listing URL, falling back to a
// hash of the name when the item has no own page. URLs are the most stable
// identifier these flash-sale sites expose.
func listingID(url, name string) string {
	candidate := url
	if candidate == "" {
		candidate = name
	}

	// Strip query strings; tracking params change between page loads
	if i := strings.IndexByte(candidate, '?'); i >= 0 {
		candidate = candidate[:i]
	}

	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(candidate))))
	return hex.EncodeToString(sum[:8])
}

// trimmedText returns the selection's text with surrounding whitespace removed
func trimmedText(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}

// absoluteURL resolves a possibly-relative href against the site base
func absoluteURL(base, href string) string {
	if href == "" {
		return base
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	// Protocol-relative hrefs keep their own host
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}
