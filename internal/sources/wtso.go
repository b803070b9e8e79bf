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

// WTSOAdapter scrapes Wines Til Sold Out (wtso.com), which shows a small
// number of featured deals on its front page
type WTSOAdapter struct {
	client  *resty.Client
	baseURL string
}

// NewWTSOAdapter creates a new WTSO adapter
func NewWTSOAdapter(timeout time.Duration) *WTSOAdapter {
	return &WTSOAdapter{
		client:  newClient(timeout),
		baseURL: "https://www.wtso.com",
	}
}

func (w *WTSOAdapter) Name() string {
	return "wtso"
}

func (w *WTSOAdapter) IsEnabled() bool {
	return true // public page, no credentials needed
}

// Fetch loads the front page and normalizes the featured deals.
// Discount is always computed from the struck-through retail price; the
// badge percentage WTSO prints is rounded differently per promotion.
func (w *WTSOAdapter) Fetch(ctx context.Context) ([]models.Listing, error) {
	resp, err := w.client.R().SetContext(ctx).Get(w.baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wtso.com: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("wtso.com returned status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse wtso.com page: %w", err)
	}

	var listings []models.Listing
	doc.Find(".wine-item, .deal-item, [class*='product']").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= 10 {
			return false
		}

		nameEl := item.Find("[class*='name'], [class*='title'], h2, h3").First()
		priceEl := item.Find("[class*='sale'], [class*='price-sale'], [class*='current']").First()
		origEl := item.Find("[class*='original'], [class*='retail'], [class*='was'], s").First()
		linkEl := item.Find("a[href]").First()

		name := trimmedText(nameEl)
		if name == "" || priceEl.Length() == 0 {
			return true
		}

		price := parsePrice(priceEl.Text())
		orig := parsePrice(origEl.Text())

		href, _ := linkEl.Attr("href")
		url := absoluteURL(w.baseURL, href)

		listings = append(listings, models.Listing{
			Source:        w.Name(),
			ID:            listingID(url, name),
			Name:          name,
			Price:         price,
			OriginalPrice: orig,
			DiscountPct:   discountPct(price, orig),
			URL:           url,
		})
		return true
	})

	logrus.Debugf("wtso: normalized %d listings", len(listings))
	return listings, nil
}
