package service

import (
	"fmt"

	"salon-offers/domain"
)

var complementaryServices = map[string][]string{
	"Haircut":      {"Hair Spa", "Hair Color", "Blow Dry"},
	"Facial":       {"Face Massage", "Clean Up", "Bleach"},
	"Manicure":     {"Pedicure", "Nail Art", "Hand Spa"},
	"Pedicure":     {"Manicure", "Foot Spa", "Nail Polish"},
	"Hair Spa":     {"Haircut", "Hair Treatment", "Head Massage"},
	"Body Massage": {"Body Scrub", "Steam Bath", "Aromatherapy"},
}

var defaultComplementaryServices = []string{"Hair Spa", "Facial", "Manicure"}

// ComplementaryServices returns the three add-ons suggested for lastService.
// The lookup is exact; unknown services get the default list.
func ComplementaryServices(lastService string) []string {
	list, ok := complementaryServices[lastService]
	if !ok {
		list = defaultComplementaryServices
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

func comboWithAddOn(lastService string) string {
	return lastService + " + " + ComplementaryServices(lastService)[0]
}

// ClassifyTier maps a customer to its offer tier. The first matching rule wins:
// win-back on long absence, then VIP, Special, WelcomeBack by visit count, and
// NewCustomer for everyone else.
func ClassifyTier(c domain.CustomerRecord) domain.TierDescriptor {
	days := c.DaysSinceLastVisit
	recent := days <= RecentVisitDays

	switch {
	case days > WinBackAfterDays:
		return domain.TierDescriptor{
			OfferType:       domain.OfferWinBack,
			DiscountPercent: WinBackDiscount,
			Combo:           comboWithAddOn(c.LastService),
			Extra:           "free hair spa session",
			ExtraConnector:  "with a",
			Emoji:           "💫",
			ContextPhrase: fmt.Sprintf("It's been %d days since your last %s visit — we've missed you!",
				days, c.LastService),
		}

	case c.Visits >= VIPMinVisits:
		phrase := "As one of our valued VIPs, you deserve something special!"
		if !recent {
			phrase = fmt.Sprintf("It's been %d days since your last visit — your perfect self-care moment awaits!", days)
		}
		return domain.TierDescriptor{
			OfferType:       domain.OfferVIP,
			DiscountPercent: VIPDiscount,
			Combo:           comboWithAddOn(c.LastService),
			Extra:           "free head massage",
			ExtraConnector:  "plus a",
			Emoji:           "👑",
			ContextPhrase:   phrase,
		}

	case c.Visits >= SpecialMinVisits:
		phrase := fmt.Sprintf("We love having you back for your %dth visit!", c.Visits)
		if !recent {
			phrase = fmt.Sprintf("It's been %d days since your last visit — time to treat yourself!", days)
		}
		return domain.TierDescriptor{
			OfferType:       domain.OfferSpecial,
			DiscountPercent: SpecialDiscount,
			Combo:           comboWithAddOn(c.LastService),
			Extra:           "free nail art",
			ExtraConnector:  "plus a",
			Emoji:           "💎",
			ContextPhrase:   phrase,
		}

	case c.Visits == WelcomeBackVisits:
		phrase := "We're so happy to see you back for your second visit!"
		if !recent {
			phrase = fmt.Sprintf("It's been %d days since your last visit — we've missed you!", days)
		}
		return domain.TierDescriptor{
			OfferType:       domain.OfferWelcomeBack,
			DiscountPercent: WelcomeBackDiscount,
			Combo:           comboWithAddOn(c.LastService),
			Emoji:           "💖",
			ContextPhrase:   phrase,
		}

	default:
		return domain.TierDescriptor{
			OfferType:       domain.OfferNewCustomer,
			DiscountPercent: NewCustomerDiscount,
			Combo:           c.LastService,
			Extra:           "free 15-minute consultation",
			ExtraConnector:  "plus a",
			Emoji:           "👋",
			ContextPhrase:   "We're excited to have you try our services for the first time!",
		}
	}
}
