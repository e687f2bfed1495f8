package phonepe

import "strings"

// =====================================================
// PHONEPE CONFIGURATION
// =====================================================

const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

type Config struct {
	ClientID      string // Merchant client id (provided by PhonePe)
	ClientSecret  string // Client secret for OAuth token exchange
	ClientVersion int    // Credential version, usually 1
	Environment   string // sandbox or production
	BaseURL       string // Overrides the environment URL when set (tests)
	AuthBaseURL   string // Overrides the auth URL when set (tests)
}

// NewConfig creates PhonePe configuration
func NewConfig(clientID, clientSecret string, clientVersion int, environment string) *Config {
	return &Config{
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		ClientVersion: clientVersion,
		Environment:   environment,
	}
}

func (c *Config) apiBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if strings.EqualFold(c.Environment, EnvironmentProduction) {
		return "https://api.phonepe.com/apis/pg"
	}
	return "https://api-preprod.phonepe.com/apis/pg-sandbox"
}

func (c *Config) authBaseURL() string {
	if c.AuthBaseURL != "" {
		return c.AuthBaseURL
	}
	if strings.EqualFold(c.Environment, EnvironmentProduction) {
		return "https://api.phonepe.com/apis/identity-manager"
	}
	return "https://api-preprod.phonepe.com/apis/pg-sandbox"
}

// GetTokenURL returns the OAuth token endpoint
func (c *Config) GetTokenURL() string {
	return c.authBaseURL() + "/v1/oauth/token"
}

// GetPayURL returns the checkout creation endpoint
func (c *Config) GetPayURL() string {
	return c.apiBaseURL() + "/checkout/v2/pay"
}

// GetOrderStatusURL returns the order status endpoint
func (c *Config) GetOrderStatusURL(merchantOrderID string) string {
	return c.apiBaseURL() + "/checkout/v2/order/" + merchantOrderID + "/status"
}
