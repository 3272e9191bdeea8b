package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"salon-offers/domain"
)

const genericOfferEmoji = "\U0001F487\u200d\u2640\ufe0f"

// ComposedMessage is the final offer text and where it came from.
type ComposedMessage struct {
	Text   string
	Source domain.MessageSource
}

type MessageComposer struct {
	phraser Phraser
	logger  *zap.Logger
}

func NewMessageComposer(phraser Phraser, logger *zap.Logger) *MessageComposer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if phraser == nil {
		phraser = NewFallbackOnlyAIService(logger)
	}
	return &MessageComposer{phraser: phraser, logger: logger}
}

// Compose asks the phraser first and falls back to the tier template on any
// failure. It always returns a message.
func (m *MessageComposer) Compose(ctx context.Context, c domain.CustomerRecord, tier domain.TierDescriptor) ComposedMessage {
	if m.phraser.Enabled() {
		result := m.phraser.Phrase(ctx, BuildOfferPrompt(c, tier))
		if result.OK() {
			return ComposedMessage{
				Text:   ensureGreeting(c.CustomerName, result.Text),
				Source: domain.SourceAI,
			}
		}
		if !errors.Is(result.Err, ErrAIDisabled) {
			m.logger.Warn("AI generation failed, using template",
				zap.Int("row", c.Row),
				zap.String("customer", c.CustomerName),
				zap.Error(result.Err))
		}
	}

	return ComposedMessage{
		Text:   FallbackMessage(c, tier),
		Source: domain.SourceTemplate,
	}
}

func ensureGreeting(name, text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "Hi "+name) || strings.HasPrefix(text, name) {
		return text
	}
	return fmt.Sprintf("Hi %s! %s", name, text)
}

// FallbackMessage is the deterministic offer sentence for a tier.
func FallbackMessage(c domain.CustomerRecord, tier domain.TierDescriptor) string {
	name := c.CustomerName

	switch tier.OfferType {
	case domain.OfferNewCustomer:
		return fmt.Sprintf("Hi %s! %s We're excited to have you try our %s for the first time! Enjoy %s off %s. %s",
			name, tier.Emoji, c.LastService, tier.Discount(), tier.ExtraClause(), tier.Emoji)

	case domain.OfferWelcomeBack:
		phrase := tier.ContextPhrase
		if c.DaysSinceLastVisit <= RecentVisitDays {
			phrase = "Welcome back for your second visit!"
		}
		return offerSentence(name, tier, phrase)

	default:
		return offerSentence(name, tier, tier.ContextPhrase)
	}
}

func offerSentence(name string, tier domain.TierDescriptor, phrase string) string {
	offer := tier.Combo
	if extra := tier.ExtraClause(); extra != "" {
		offer += " " + extra
	}
	return fmt.Sprintf("Hi %s! %s %s Enjoy %s off %s. %s",
		name, tier.Emoji, phrase, tier.Discount(), offer, tier.Emoji)
}

// GenericFallbackMessage is used when a row cannot be classified at all.
func GenericFallbackMessage(name, service string) string {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	if strings.TrimSpace(service) == "" {
		service = "our services"
	}
	return fmt.Sprintf("Hi %s! We have a special offer on %s just for you! %s", name, service, genericOfferEmoji)
}
