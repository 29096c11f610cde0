package channel

import "errors"

var (
	// Platform errors
	ErrPlatformUnavailable = errors.New("channel: platform temporarily unavailable")
	ErrPlatformAuthFailed  = errors.New("channel: platform authentication failed")
	ErrInvalidPlatformCode = errors.New("channel: invalid platform code")
	ErrCapabilityMissing   = errors.New("channel: adapter does not support this capability")
	ErrAdapterNotFound     = errors.New("channel: no adapter registered for platform")

	// Record errors
	ErrRecordNotFound    = errors.New("channel: platform listing record not found")
	ErrRecordNotPublished = errors.New("channel: record is not in published state")
	ErrInvalidTransition = errors.New("channel: invalid publication status transition")

	// Credential errors
	ErrCredentialNotFound = errors.New("channel: credential not found")
	ErrRefreshUnsupported = errors.New("channel: credential has no refresh mechanism")

	// Sale errors
	ErrSaleAlreadyRecorded = errors.New("channel: sale already recorded")
	ErrSaleNotFound        = errors.New("channel: sale record not found")
)

// ---------------------------------------------------------------------------
// PlatformCode
// ---------------------------------------------------------------------------

// PlatformCode identifies one external marketplace. The set is closed and
// known at compile time; every code has exactly one registered adapter.
type PlatformCode string

const (
	// PlatformEbay is the eBay marketplace, integrated over its remote API
	PlatformEbay PlatformCode = "EBAY"
	// PlatformShopify is a Shopify store fed through bulk CSV product import
	PlatformShopify PlatformCode = "SHOPIFY"
	// PlatformCraigslist is Craigslist, fed through a manually pasted template
	PlatformCraigslist PlatformCode = "CRAIGSLIST"
)

// AllPlatformCodes lists every known platform code
func AllPlatformCodes() []PlatformCode {
	return []PlatformCode{PlatformEbay, PlatformShopify, PlatformCraigslist}
}

// IsValid returns true if the platform code is valid
func (c PlatformCode) IsValid() bool {
	switch c {
	case PlatformEbay, PlatformShopify, PlatformCraigslist:
		return true
	default:
		return false
	}
}

// String returns the string representation of PlatformCode
func (c PlatformCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the platform
func (c PlatformCode) DisplayName() string {
	switch c {
	case PlatformEbay:
		return "eBay"
	case PlatformShopify:
		return "Shopify (CSV import)"
	case PlatformCraigslist:
		return "Craigslist"
	default:
		return string(c)
	}
}

// ---------------------------------------------------------------------------
// AdapterFamily
// ---------------------------------------------------------------------------

// AdapterFamily describes how an adapter realizes a publish
type AdapterFamily string

const (
	// FamilyDirectAPI publishes through authenticated remote calls
	FamilyDirectAPI AdapterFamily = "direct-api"
	// FamilyBulkExport publishes by materializing an import artifact
	FamilyBulkExport AdapterFamily = "bulk-export"
	// FamilyTemplate publishes by rendering a template for manual posting
	FamilyTemplate AdapterFamily = "template"
)

// ---------------------------------------------------------------------------
// Capability
// ---------------------------------------------------------------------------

// Capability is one operation an adapter may support. Absence of a
// capability is a queryable fact, not an error condition.
type Capability string

const (
	CapabilityTestConnection Capability = "test_connection"
	CapabilityPublish        Capability = "publish"
	CapabilityUpdate         Capability = "update"
	CapabilityDelist         Capability = "delist"
	CapabilityPullSales      Capability = "pull_sales"
)

// CapabilitySet is the set of capabilities an adapter reports
type CapabilitySet map[Capability]bool

// Has returns true if the capability is present in the set
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// NewCapabilitySet builds a capability set from the given capabilities
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}
