package service

import (
	"fmt"

	"salon-offers/domain"
)

const offerSystemPrompt = `You are a creative salon marketing assistant. Follow these rules for offers:

1. CUSTOMER TIERS:
   - New (1 visit): 20% off first service
   - Returning (2 visits): 25% off
   - Regular (3-4 visits): 30% off
   - VIP (5+ visits): 35% off
   - Inactive (>30 days): 35% off "We Missed You" special

2. MESSAGE FORMAT:
   - Start with "Hi [Name]! [Emoji]"
   - Include offer type (VIP TREATMENT, SPECIAL OFFER, etc.)
   - List the service combo
   - Show discount
   - Add extra benefit
   - End with a call-to-action

3. EMOJIS:
   - VIP: 👑
   - Special: 💎
   - Welcome: 👋
   - Win-back: 💫
   - Returning: 💖
   - General: 💇‍♀️✨
`

const offerUserPromptFormat = `Create a personalized salon offer with these details:
- Customer: %s
- Last Service: %s
- Visits: %d
- Days Since Last Visit: %d
- Context: %s
- Offer Type: %s
- Combo: %s
- Discount: %s
- Extra: %s
- Emoji: %s

Generate a friendly, 1-2 sentence offer that:
1. References their visit history or last visit
2. Feels personal and warm
3. Includes the offer details naturally
4. Uses 1-2 emojis

Example: "Hi [Name]! It's been [X] days since your last [Service] — we've missed you! Enjoy [Discount] off your next visit, plus [Extra]! [Emoji]"
`

// BuildOfferPrompt embeds every tier field and the customer's history in the
// user message; the system message carries the house rules.
func BuildOfferPrompt(c domain.CustomerRecord, tier domain.TierDescriptor) OfferPrompt {
	return OfferPrompt{
		System: offerSystemPrompt,
		User: fmt.Sprintf(offerUserPromptFormat,
			c.CustomerName,
			c.LastService,
			c.Visits,
			c.DaysSinceLastVisit,
			tier.ContextPhrase,
			tier.OfferType.Name(),
			tier.Combo,
			tier.Discount(),
			tier.ExtraClause(),
			tier.Emoji,
		),
	}
}
