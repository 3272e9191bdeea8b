package service

import "time"

const (
	// Tier thresholds
	WinBackAfterDays  = 30 // more than this many days away overrides visit tiers
	RecentVisitDays   = 20 // above this the recency phrasing is used
	VIPMinVisits      = 5
	SpecialMinVisits  = 3
	WelcomeBackVisits = 2

	// Discounts (percent)
	WinBackDiscount     = 35
	VIPDiscount         = 35
	SpecialDiscount     = 30
	WelcomeBackDiscount = 25
	NewCustomerDiscount = 20

	// Chat completion sampling
	LLMTemperature = 0.7
	LLMTopP        = 0.9
	LLMMaxTokens   = 100

	DefaultLLMTimeout = 20 * time.Second
)
