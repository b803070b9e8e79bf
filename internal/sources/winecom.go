package sources

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/vinwatch/wine-deals-bot/internal/models"
)

// WineComAdapter scrapes the Wine.com sale section. Unlike the flash-sale
// sites this is a full catalog page sorted by savings, and product cards
// carry critic scores, which the other two retailers never show.
type WineComAdapter struct {
	client  *resty.Client
	baseURL string
}

// NewWineComAdapter creates a new Wine.com adapter
func NewWineComAdapter(timeout time.Duration) *WineComAdapter {
	return &WineComAdapter{
		client:  newClient(timeout),
		baseURL: "https://www.wine.com",
	}
}

func (w *WineComAdapter) Name() string {
	return "winecom"
}

func (w *WineComAdapter) IsEnabled() bool {
	return true // public catalog page, no credentials needed
}

// Fetch loads the savings-sorted sale list. Discount is computed from the
// regular price, matching the policy of the other adapters; the critic
// score is parsed when the card shows one and left nil otherwise.
func (w *WineComAdapter) Fetch(ctx context.Context) ([]models.Listing, error) {
	resp, err := w.client.R().
		SetContext(ctx).
		Get(w.baseURL + "/list/wine/7155?sortBy=savings&pricemax=60&pricemin=20")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wine.com: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("wine.com returned status %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse wine.com page: %w", err)
	}

	var listings []models.Listing
	doc.Find(".prodItem, [class*='productCard'], [class*='product-item']").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= 15 {
			return false
		}

		nameEl := item.Find("[class*='name'], [class*='title']").First()
		priceEl := item.Find("[class*='salePrice'], [class*='sale-price']").First()
		origEl := item.Find("[class*='regPrice'], [class*='reg-price'], s").First()
		linkEl := item.Find("a[href]").First()

		name := trimmedText(nameEl)
		if name == "" || priceEl.Length() == 0 {
			return true
		}

		price := parsePrice(priceEl.Text())
		orig := parsePrice(origEl.Text())

		href, _ := linkEl.Attr("href")
		url := absoluteURL(w.baseURL, href)

		listing := models.Listing{
			Source:        w.Name(),
			ID:            listingID(url, name),
			Name:          name,
			Price:         price,
			OriginalPrice: orig,
			DiscountPct:   discountPct(price, orig),
			URL:           url,
		}

		if score, ok := parseScore(item); ok {
			listing.Score = &score
		}

		listings = append(listings, listing)
		return true
	})

	logrus.Debugf("winecom: normalized %d listings", len(listings))
	return listings, nil
}

// parseScore pulls the critic rating off a product card. Cards without a
// rating simply have no element, which is normal for unrated wines.
func parseScore(item *goquery.Selection) (int, bool) {
	text := trimmedText(item.Find("[class*='rating'], [class*='score']").First())
	if text == "" {
		return 0, false
	}

	score, err := strconv.Atoi(nonPrice.ReplaceAllString(text, ""))
	if err != nil || score < 50 || score > 100 {
		return 0, false
	}
	return score, true
}
