package notifications

import "github.com/vinwatch/wine-deals-bot/internal/models"

// Notifier defines the contract for delivering one matched deal to the user
type Notifier interface {
	SendDeal(listing models.Listing) error
	IsEnabled() bool
}
