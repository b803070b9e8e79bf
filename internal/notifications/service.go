package notifications

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vinwatch/wine-deals-bot/internal/config"
	"github.com/vinwatch/wine-deals-bot/internal/models"
	"gopkg.in/gomail.v2"
)

// Service sends deal alerts as plaintext email through the configured SMTP
// relay to an email-to-SMS gateway address. Carriers truncate long gateway
// messages, so the body stays short: name, price, discount, link.
type Service struct {
	config *config.Config
	send   func(m ...*gomail.Message) error
}

// Ensure Service implements Notifier
var _ Notifier = (*Service)(nil)

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	if cfg.SMTPPort == 465 {
		dialer.SSL = true
	}

	return &Service{
		config: cfg,
		send:   dialer.DialAndSend,
	}
}

// IsEnabled reports whether SMS delivery is configured. When it is not,
// the orchestrator logs matched deals instead of sending them.
func (s *Service) IsEnabled() bool {
	return s.config.SMSEnabled()
}

// SendDeal delivers one matched listing to the SMS gateway address
func (s *Service) SendDeal(listing models.Listing) error {
	if !s.IsEnabled() {
		return fmt.Errorf("sms delivery is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.SMSAddress)
	m.SetHeader("Subject", "")
	m.SetBody("text/plain", buildBody(listing))

	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send deal alert for %s: %w", listing.Key(), err)
	}

	logrus.Infof("Sent deal alert: %s", listing.Name)
	return nil
}

func buildBody(listing models.Listing) string {
	var body strings.Builder

	body.WriteString("WINE DEAL\n")
	body.WriteString(listing.Name + "\n")
	body.WriteString(fmt.Sprintf("$%.2f (%d%% off)", listing.Price, listing.DiscountPct))
	if listing.Score != nil {
		body.WriteString(fmt.Sprintf(" | %d pts", *listing.Score))
	}
	body.WriteString("\n")
	body.WriteString(listing.URL)

	return body.String()
}
