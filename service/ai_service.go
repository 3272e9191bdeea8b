package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"salon-offers/repository"
)

var (
	ErrAIDisabled      = errors.New("ai phrasing disabled: no api key configured")
	ErrEmptyCompletion = errors.New("llm returned no content")
)

// ChatRequest is a provider-neutral chat completion request.
type ChatRequest struct {
	System      string
	User        string
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// ChatCompleter is implemented by each LLM provider client.
type ChatCompleter interface {
	Name() string
	Model() string
	CompleteChat(ctx context.Context, req ChatRequest) (string, error)
}

// OfferPrompt is the system and user message pair sent for one customer.
type OfferPrompt struct {
	System string
	User   string
}

// PhrasingResult is the outcome of one outbound phrasing attempt. Exactly one of
// Text or Err is meaningful.
type PhrasingResult struct {
	Text   string
	Cached bool
	Err    error
}

func (r PhrasingResult) OK() bool {
	return r.Err == nil && strings.TrimSpace(r.Text) != ""
}

// Phraser turns an offer prompt into marketing copy.
type Phraser interface {
	Enabled() bool
	Phrase(ctx context.Context, prompt OfferPrompt) PhrasingResult
}

type AIServiceOptions struct {
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	Cache         repository.CacheRepository // nil disables caching
	CacheTTL      time.Duration
}

// AIService is the single outbound step to the LLM. It is safe for concurrent use
// and holds no per-request state.
type AIService struct {
	completer ChatCompleter
	enabled   bool
	timeout   time.Duration
	limiter   *rate.Limiter
	cache     repository.CacheRepository
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewAIService wraps completer. A nil completer yields a fallback-only service.
func NewAIService(completer ChatCompleter, opts AIServiceOptions, logger *zap.Logger) *AIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultLLMTimeout
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	return &AIService{
		completer: completer,
		enabled:   completer != nil,
		timeout:   opts.Timeout,
		limiter:   rate.NewLimiter(limit, opts.Burst),
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		logger:    logger,
	}
}

// NewFallbackOnlyAIService is used when no credential is configured.
func NewFallbackOnlyAIService(logger *zap.Logger) *AIService {
	return NewAIService(nil, AIServiceOptions{}, logger)
}

func (s *AIService) Enabled() bool {
	return s.enabled
}

func (s *AIService) Provider() string {
	if !s.enabled {
		return "none"
	}
	return s.completer.Name()
}

// Phrase makes at most one provider call. It never panics on provider errors and
// reports every failure through PhrasingResult.Err.
func (s *AIService) Phrase(ctx context.Context, prompt OfferPrompt) PhrasingResult {
	if !s.enabled {
		return PhrasingResult{Err: ErrAIDisabled}
	}

	key := phrasingCacheKey(s.completer.Name(), s.completer.Model(), prompt)
	if s.cache != nil {
		if text, ok := s.cache.Get(ctx, key); ok {
			s.logger.Debug("Phrasing cache hit", zap.String("key", key))
			return PhrasingResult{Text: text, Cached: true}
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return PhrasingResult{Err: fmt.Errorf("waiting for llm rate limiter: %w", err)}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Debug("Sending offer prompt",
		zap.String("provider", s.completer.Name()),
		zap.String("prompt", truncate(prompt.User, 200)))

	start := time.Now()
	text, err := s.completer.CompleteChat(callCtx, ChatRequest{
		System:      prompt.System,
		User:        prompt.User,
		Temperature: LLMTemperature,
		TopP:        LLMTopP,
		MaxTokens:   LLMMaxTokens,
	})
	if err != nil {
		return PhrasingResult{Err: fmt.Errorf("%s: %w", s.completer.Name(), err)}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return PhrasingResult{Err: fmt.Errorf("%s: %w", s.completer.Name(), ErrEmptyCompletion)}
	}

	s.logger.Debug("Received offer phrasing",
		zap.String("provider", s.completer.Name()),
		zap.Duration("latency", time.Since(start)),
		zap.String("response", text))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache offer phrasing", zap.Error(err))
		}
	}

	return PhrasingResult{Text: text}
}

// phrasingCacheKey changes whenever the provider, model or prompt does, so a
// model switch never serves text from the previous model.
func phrasingCacheKey(provider, model string, prompt OfferPrompt) string {
	h := xxhash.New()
	_, _ = h.WriteString(provider)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(model)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(prompt.System)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(prompt.User)
	return strconv.FormatUint(h.Sum64(), 16)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
