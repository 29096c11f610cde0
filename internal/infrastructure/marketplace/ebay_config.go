package marketplace

import "errors"

// EbayConfig holds configuration for the eBay Sell API integration
type EbayConfig struct {
	// ClientID is the OAuth application client ID
	ClientID string
	// ClientSecret is the OAuth application client secret
	ClientSecret string
	// APIBaseURL is the base URL for the Sell API (production or sandbox)
	APIBaseURL string
	// AuthBaseURL is the base URL for the OAuth token endpoint
	AuthBaseURL string
	// Marketplace is the eBay marketplace ID listings are created in
	Marketplace string
	// IsSandbox indicates if this is a sandbox environment
	IsSandbox bool
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// EbayProductionAPIURL is the production Sell API endpoint
	EbayProductionAPIURL = "https://api.ebay.com"
	// EbaySandboxAPIURL is the sandbox Sell API endpoint
	EbaySandboxAPIURL = "https://api.sandbox.ebay.com"
	// EbayProductionAuthURL is the production OAuth endpoint
	EbayProductionAuthURL = "https://api.ebay.com"
	// EbaySandboxAuthURL is the sandbox OAuth endpoint
	EbaySandboxAuthURL = "https://api.sandbox.ebay.com"
)

// Errors for eBay configuration
var (
	ErrEbayConfigMissingClientID     = errors.New("ebay: client ID is required")
	ErrEbayConfigMissingClientSecret = errors.New("ebay: client secret is required")
)

// NewEbayConfig creates a new eBay configuration with production defaults
func NewEbayConfig(clientID, clientSecret string) *EbayConfig {
	return &EbayConfig{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		APIBaseURL:     EbayProductionAPIURL,
		AuthBaseURL:    EbayProductionAuthURL,
		Marketplace:    "EBAY_US",
		IsSandbox:      false,
		TimeoutSeconds: 30,
	}
}

// NewSandboxEbayConfig creates a new eBay configuration for the sandbox environment
func NewSandboxEbayConfig(clientID, clientSecret string) *EbayConfig {
	return &EbayConfig{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		APIBaseURL:     EbaySandboxAPIURL,
		AuthBaseURL:    EbaySandboxAuthURL,
		Marketplace:    "EBAY_US",
		IsSandbox:      true,
		TimeoutSeconds: 30,
	}
}

// Validate validates the eBay configuration and fills in defaults
func (c *EbayConfig) Validate() error {
	if c.ClientID == "" {
		return ErrEbayConfigMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrEbayConfigMissingClientSecret
	}
	if c.APIBaseURL == "" {
		if c.IsSandbox {
			c.APIBaseURL = EbaySandboxAPIURL
		} else {
			c.APIBaseURL = EbayProductionAPIURL
		}
	}
	if c.AuthBaseURL == "" {
		if c.IsSandbox {
			c.AuthBaseURL = EbaySandboxAuthURL
		} else {
			c.AuthBaseURL = EbayProductionAuthURL
		}
	}
	if c.Marketplace == "" {
		c.Marketplace = "EBAY_US"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
