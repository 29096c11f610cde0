package channel

import (
	"sort"
	"strings"

	"github.com/crosslist/backend/internal/domain/listing"
)

// ---------------------------------------------------------------------------
// ViewSpec
// ---------------------------------------------------------------------------

// ViewSpec describes which listing fields a platform understands and how
// canonical values map onto that platform's vocabulary.
type ViewSpec struct {
	// MaxTitleLen truncates the title; 0 means unlimited
	MaxTitleLen int
	// MaxDescriptionLen truncates the description; 0 means unlimited
	MaxDescriptionLen int
	// ConditionLabels maps canonical conditions to platform condition values.
	// Conditions without an entry fall back to the canonical string.
	ConditionLabels map[listing.Condition]string
	// AllowedAttributes restricts which attributes are projected;
	// empty means all attributes pass through
	AllowedAttributes []string
	// RequiredFields names listing fields whose validation violations
	// block a publish to this platform
	RequiredFields []string
}

// Requires returns true if a violation on the given field blocks a publish
func (s ViewSpec) Requires(field string) bool {
	for _, f := range s.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}

// allowsAttribute returns true if the attribute passes the projection filter
func (s ViewSpec) allowsAttribute(name string) bool {
	if len(s.AllowedAttributes) == 0 {
		return true
	}
	for _, a := range s.AllowedAttributes {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// PlatformView
// ---------------------------------------------------------------------------

// Attribute is one projected name/value attribute pair
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PlatformView is a read-only projection of a Listing for one platform.
// Building a view is pure data transformation: the same listing and spec
// always produce an identical view, which keeps publish retries safe.
type PlatformView struct {
	ListingID   string
	Title       string
	Description string
	// Price is the amount formatted with two fixed decimals
	Price    string
	Currency string
	// Condition is the platform's label for the listing condition
	Condition string
	Quantity  int
	SKU       string
	Category  string
	// Attributes is sorted by name so the projection is deterministic
	Attributes []Attribute
	// PhotoRefs preserves the listing's photo order, primary first
	PhotoRefs []string
}

// BuildView projects a listing onto a platform's vocabulary.
// The projection is deterministic and has no side effects.
func BuildView(l *listing.Listing, spec ViewSpec) *PlatformView {
	view := &PlatformView{
		ListingID:   l.ID.String(),
		Title:       truncate(l.Title, spec.MaxTitleLen),
		Description: truncate(l.Description, spec.MaxDescriptionLen),
		Price:       l.Price.StringFixed(2),
		Currency:    l.Currency,
		Condition:   mapCondition(l.Condition, spec),
		Quantity:    l.Quantity,
		SKU:         l.SKU,
		Category:    l.Category,
		Attributes:  make([]Attribute, 0, len(l.Attributes)),
		PhotoRefs:   append([]string(nil), l.Photos...),
	}

	for name, value := range l.Attributes {
		if spec.allowsAttribute(name) {
			view.Attributes = append(view.Attributes, Attribute{Name: name, Value: value})
		}
	}
	sort.Slice(view.Attributes, func(i, j int) bool {
		return view.Attributes[i].Name < view.Attributes[j].Name
	})

	return view
}

// mapCondition translates a canonical condition to the platform label
func mapCondition(c listing.Condition, spec ViewSpec) string {
	if label, ok := spec.ConditionLabels[c]; ok {
		return label
	}
	return c.String()
}

// truncate shortens s to max runes; max <= 0 means unlimited
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
