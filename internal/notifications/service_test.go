package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinwatch/wine-deals-bot/internal/config"
	"github.com/vinwatch/wine-deals-bot/internal/models"
	"gopkg.in/gomail.v2"
)

func intPtr(v int) *int { return &v }

func smsConfig() *config.Config {
	return &config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     465,
		SMTPUsername: "bot@example.com",
		SMTPPassword: "app-password",
		SMSAddress:   "3125551234@vtext.com",
	}
}

func TestIsEnabled(t *testing.T) {
	assert.True(t, NewService(smsConfig()).IsEnabled())

	cfg := smsConfig()
	cfg.SMSAddress = ""
	assert.False(t, NewService(cfg).IsEnabled())

	cfg = smsConfig()
	cfg.SMTPPassword = ""
	assert.False(t, NewService(cfg).IsEnabled())
}

func TestSendDealHeaders(t *testing.T) {
	var sent *gomail.Message
	service := NewService(smsConfig())
	service.send = func(msgs ...*gomail.Message) error {
		require.Len(t, msgs, 1)
		sent = msgs[0]
		return nil
	}

	listing := models.Listing{
		Source: "wtso", ID: "abc", Name: "Chianti Classico Riserva",
		Price: 42, DiscountPct: 30, URL: "https://www.wtso.com/wine/chianti",
	}

	require.NoError(t, service.SendDeal(listing))
	require.NotNil(t, sent)
	assert.Equal(t, []string{"bot@example.com"}, sent.GetHeader("From"))
	assert.Equal(t, []string{"3125551234@vtext.com"}, sent.GetHeader("To"))
}

func TestSendDealDisabled(t *testing.T) {
	cfg := smsConfig()
	cfg.SMSAddress = ""
	service := NewService(cfg)

	err := service.SendDeal(models.Listing{Name: "Chianti"})
	assert.Error(t, err)
}

func TestBuildBody(t *testing.T) {
	listing := models.Listing{
		Name: "Chianti Classico Riserva", Price: 42, DiscountPct: 30,
		Score: intPtr(92), URL: "https://www.wtso.com/wine/chianti",
	}

	body := buildBody(listing)
	assert.Contains(t, body, "Chianti Classico Riserva")
	assert.Contains(t, body, "$42.00 (30% off)")
	assert.Contains(t, body, "92 pts")
	assert.Contains(t, body, "https://www.wtso.com/wine/chianti")
}

func TestBuildBodyNoScore(t *testing.T) {
	listing := models.Listing{
		Name: "Paso Robles Zinfandel", Price: 24, DiscountPct: 50,
		URL: "https://lastbottlewines.com/buy/zin",
	}

	body := buildBody(listing)
	assert.NotContains(t, body, "pts")
	assert.Contains(t, body, "$24.00 (50% off)")
}
