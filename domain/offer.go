package domain

import "fmt"

type OfferType string

const (
	OfferNewCustomer OfferType = "new_customer"
	OfferWelcomeBack OfferType = "welcome_back"
	OfferSpecial     OfferType = "special"
	OfferVIP         OfferType = "vip"
	OfferWinBack     OfferType = "win_back"
)

// Name is the label shown to the LLM and in the HTML listing.
func (t OfferType) Name() string {
	switch t {
	case OfferWinBack:
		return "We Missed You Special"
	case OfferVIP:
		return "VIP Treatment"
	case OfferSpecial:
		return "Special Offer"
	case OfferWelcomeBack:
		return "Welcome Back"
	default:
		return "New Customer"
	}
}

// TierDescriptor is derived from a CustomerRecord and never stored.
type TierDescriptor struct {
	OfferType       OfferType
	DiscountPercent int
	Combo           string
	Extra           string // e.g. "free head massage", empty when the tier has none
	ExtraConnector  string // "plus a" or "with a"
	Emoji           string
	ContextPhrase   string
}

func (t TierDescriptor) Discount() string {
	return fmt.Sprintf("%d%%", t.DiscountPercent)
}

// ExtraClause renders the extra benefit the way it reads in an offer sentence,
// e.g. "plus a free head massage". Empty when the tier has no extra.
func (t TierDescriptor) ExtraClause() string {
	if t.Extra == "" {
		return ""
	}
	if t.ExtraConnector == "" {
		return t.Extra
	}
	return t.ExtraConnector + " " + t.Extra
}

type MessageSource string

const (
	SourceAI       MessageSource = "ai"
	SourceTemplate MessageSource = "template"
	SourceGeneric  MessageSource = "generic"
)

type OfferResult struct {
	CustomerName    string        `json:"customer_name"`
	Message         string        `json:"offer"`
	LastService     string        `json:"last_service"`
	OfferType       OfferType     `json:"offer_type,omitempty"`
	DiscountPercent int           `json:"discount_percent,omitempty"`
	Source          MessageSource `json:"source"`
}
