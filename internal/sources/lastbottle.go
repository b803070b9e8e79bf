package sources

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/vinwatch/wine-deals-bot/internal/models"
)

// LastBottleAdapter scrapes Last Bottle Wines (lastbottlewines.com).
// The site runs one offer at a time, so a fetch yields very few listings.
type LastBottleAdapter struct {
	client  *resty.Client
	baseURL string
}

// NewLastBottleAdapter creates a new Last Bottle adapter
func NewLastBottleAdapter(timeout time.Duration) *LastBottleAdapter {
	return &LastBottleAdapter{
		client:  newClient(timeout),
		baseURL: "https://lastbottlewines.com",
	}
}

func (l *LastBottleAdapter) Name() string {
	return "lastbottle"
}

func (l *LastBottleAdapter) IsEnabled() bool {
	return true // public page, no credentials needed
}

// Fetch loads the current offer page. Discount is computed from the listed
// retail price when present, 0 otherwise.
func (l *LastBottleAdapter) Fetch(ctx context.Context) ([]models.Listing, error) {
	resp, err := l.client.R().SetContext(ctx).Get(l.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lastbottlewines.com: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("lastbottlewines.com returned status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse lastbottlewines.com page: %w", err)
	}

	var listings []models.Listing
	doc.Find(".offer, .wine-offer, [class*='offer']").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= 5 {
			return false
		}

		nameEl := item.Find("[class*='name'], h1, h2, h3").First()
		priceEl := item.Find("[class*='price'], [class*='sale']").First()
		origEl := item.Find("[class*='retail'], [class*='original'], s, strike").First()
		linkEl := item.Find("a[href]").First()

		name := trimmedText(nameEl)
		if name == "" || priceEl.Length() == 0 {
			return true
		}

		price := parsePrice(priceEl.Text())
		orig := parsePrice(origEl.Text())

		href, _ := linkEl.Attr("href")
		url := absoluteURL(l.baseURL, href)

		listings = append(listings, models.Listing{
			Source:        l.Name(),
			ID:            listingID(url, name),
			Name:          name,
			Price:         price,
			OriginalPrice: orig,
			DiscountPct:   discountPct(price, orig),
			URL:           url,
		})
		return true
	})

	logrus.Debugf("lastbottle: normalized %d listings", len(listings))
	return listings, nil
}
