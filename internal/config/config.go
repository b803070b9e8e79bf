package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vinwatch/wine-deals-bot/internal/models"
)

// carrierGateways maps carrier names to their email-to-SMS gateway domains
var carrierGateways = map[string]string{
	"verizon": "vtext.com",
	"att":     "txt.att.net",
	"tmobile": "tmomail.net",
	"sprint":  "messaging.sprintpcs.com",
}

// Config holds all configuration for the application
type Config struct {
	// Server configuration (serve mode only)
	Port  string
	Debug bool

	// Taste/price profile
	Preferences models.Preferences

	// SMS delivery via email-to-SMS gateway
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMSAddress   string // <digits>@<carrier-gateway-domain>
	MaxSMSPerRun int

	// Seen-set persistence
	StateDir         string // local file backend
	StorageAccount   string // Azure Blob backend, used when set
	StorageContainer string
	RetentionDays    int

	// Fetch behavior
	FetchTimeoutSeconds int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		Preferences: models.Preferences{
			Keywords: getSliceEnv("KEYWORDS", []string{
				"cabernet sauvignon", "cabernet",
				"chianti", "sangiovese",
				"syrah", "shiraz",
				"zinfandel",
				"malbec",
				"petite sirah",
			}),
			MinDiscountPct: getIntEnv("MIN_DISCOUNT_PCT", 30),
			MaxPrice:       getFloatEnv("MAX_PRICE", 55),
			MinScore:       getIntEnv("MIN_SCORE", 90),
		},

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getIntEnv("SMTP_PORT", 465),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMSAddress:   getEnv("SMS_ADDRESS", ""),
		MaxSMSPerRun: getIntEnv("MAX_SMS_PER_RUN", 3),

		StateDir:         getEnv("STATE_DIR", ".state"),
		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "winedeals"),
		RetentionDays:    getIntEnv("SEEN_RETENTION_DAYS", 30),

		FetchTimeoutSeconds: getIntEnv("FETCH_TIMEOUT_SECONDS", 30),
	}

	// SMS_ADDRESS can also be derived from PHONE_NUMBER + PHONE_CARRIER
	if cfg.SMSAddress == "" {
		addr, err := smsAddress(os.Getenv("PHONE_NUMBER"), os.Getenv("PHONE_CARRIER"))
		if err != nil {
			return nil, err
		}
		cfg.SMSAddress = addr
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// smsAddress builds the gateway address from a phone number and carrier name.
// Returns "" when neither is set, which leaves the notifier in dry-run mode.
func smsAddress(phone, carrier string) (string, error) {
	if phone == "" && carrier == "" {
		return "", nil
	}
	if phone == "" || carrier == "" {
		return "", fmt.Errorf("PHONE_NUMBER and PHONE_CARRIER must be set together")
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) < 10 {
		return "", fmt.Errorf("PHONE_NUMBER %q does not contain a valid phone number", phone)
	}

	gateway, ok := carrierGateways[strings.ToLower(carrier)]
	if !ok {
		return "", fmt.Errorf("unknown PHONE_CARRIER %q (supported: verizon, att, tmobile, sprint)", carrier)
	}

	return digits + "@" + gateway, nil
}

func (c *Config) validate() error {
	if len(c.Preferences.Keywords) == 0 {
		return fmt.Errorf("KEYWORDS must contain at least one keyword")
	}

	if c.Preferences.MinDiscountPct < 0 || c.Preferences.MinDiscountPct > 100 {
		return fmt.Errorf("MIN_DISCOUNT_PCT must be between 0 and 100")
	}

	if c.Preferences.MaxPrice <= 0 {
		return fmt.Errorf("MAX_PRICE must be positive")
	}

	if c.SMSAddress != "" {
		if !strings.Contains(c.SMSAddress, "@") {
			return fmt.Errorf("SMS_ADDRESS must look like <digits>@<carrier-gateway-domain>")
		}
		if c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP_USERNAME and SMTP_PASSWORD are required when SMS delivery is configured")
		}
	}

	if c.RetentionDays <= 0 {
		return fmt.Errorf("SEEN_RETENTION_DAYS must be positive")
	}

	return nil
}

// SMSEnabled reports whether the config carries enough to actually send texts
func (c *Config) SMSEnabled() bool {
	return c.SMSAddress != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

// Normalized lowercases all keywords once so the filter can match directly
func (c *Config) Normalized() models.Preferences {
	prefs := c.Preferences
	prefs.Keywords = make([]string, len(c.Preferences.Keywords))
	for i, kw := range c.Preferences.Keywords {
		prefs.Keywords[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	return prefs
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
