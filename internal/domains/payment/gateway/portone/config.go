package portone

import (
	"net/url"
	"strings"
	"time"
)

// =====================================================
// PORTONE CONFIGURATION
// =====================================================

type Config struct {
	APISecret string        // V2 API secret
	BaseURL   string        // https://api.portone.io
	Timeout   time.Duration // whole request, including body read
}

func NewConfig(apiSecret, baseURL string, timeout time.Duration) *Config {
	return &Config{
		APISecret: strings.TrimSpace(apiSecret),
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Timeout:   timeout,
	}
}

// PaymentURL returns the single payment lookup endpoint
func (c *Config) PaymentURL(paymentID string) string {
	return c.BaseURL + "/payments/" + url.PathEscape(paymentID)
}

// CancelURL returns the cancel endpoint
func (c *Config) CancelURL(paymentID string) string {
	return c.PaymentURL(paymentID) + "/cancel"
}

func (c *Config) authorization() string {
	return "PortOne " + c.APISecret
}

const (
	// cap on bytes read from any provider response
	maxResponseBytes = 1 << 20

	defaultTimeout = 10 * time.Second
)
