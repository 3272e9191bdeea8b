package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"salon-offers/domain"
	"salon-offers/repository"
)

type OfferService struct {
	reader   *repository.CustomerCSVReader
	composer *MessageComposer
	logger   *zap.Logger
}

// NewOfferService creates a new OfferService with the given CSV reader and composer.
func NewOfferService(reader *repository.CustomerCSVReader,
	composer *MessageComposer,
	logger *zap.Logger,
) *OfferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferService{reader: reader, composer: composer, logger: logger}
}

// GenerateOffersFromCSV parses the upload and builds one offer per row. Only a
// failure to read the file as a whole is returned.
func (s *OfferService) GenerateOffersFromCSV(ctx context.Context, r io.Reader) ([]domain.OfferResult, error) {
	records, err := s.reader.Read(r)
	if err != nil {
		return nil, fmt.Errorf("reading customers: %w", err)
	}
	return s.GenerateOffers(ctx, records), nil
}

// GenerateOffers returns exactly one result per record, in input order.
func (s *OfferService) GenerateOffers(ctx context.Context, records []domain.CustomerRecord) []domain.OfferResult {
	batchID := uuid.NewString()
	logger := s.logger.With(zap.String("batch_id", batchID))
	logger.Info("Generating offers", zap.Int("rows", len(records)))

	results := make([]domain.OfferResult, 0, len(records))
	counts := make(map[domain.MessageSource]int)
	for _, record := range records {
		result := s.offerFor(ctx, logger, record)
		counts[result.Source]++
		results = append(results, result)
	}

	logger.Info("Generated offers",
		zap.Int("ai", counts[domain.SourceAI]),
		zap.Int("template", counts[domain.SourceTemplate]),
		zap.Int("generic", counts[domain.SourceGeneric]))
	return results
}

// offerFor isolates one row: bad data or a panic while composing yields the
// generic message for that row only.
func (s *OfferService) offerFor(ctx context.Context, logger *zap.Logger, record domain.CustomerRecord) (result domain.OfferResult) {
	generic := func() domain.OfferResult {
		return domain.OfferResult{
			CustomerName: record.CustomerName,
			LastService:  record.LastService,
			Message:      GenericFallbackMessage(record.CustomerName, record.LastService),
			Source:       domain.SourceGeneric,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Offer generation panicked",
				zap.Int("row", record.Row),
				zap.Any("panic", r))
			result = generic()
		}
	}()

	if err := record.Validate(); err != nil {
		logger.Warn("Invalid customer row", zap.Int("row", record.Row), zap.Error(err))
		return generic()
	}

	tier := ClassifyTier(record)
	msg := s.composer.Compose(ctx, record, tier)

	logger.Debug("Offer composed",
		zap.Int("row", record.Row),
		zap.String("customer", record.CustomerName),
		zap.String("tier", string(tier.OfferType)),
		zap.String("source", string(msg.Source)))

	return domain.OfferResult{
		CustomerName:    record.CustomerName,
		LastService:     record.LastService,
		Message:         msg.Text,
		OfferType:       tier.OfferType,
		DiscountPercent: tier.DiscountPercent,
		Source:          msg.Source,
	}
}
