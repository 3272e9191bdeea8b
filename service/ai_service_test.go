package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salon-offers/repository"
)

var testPrompt = OfferPrompt{System: "rules", User: "- Customer: Asha\n"}

func TestAIService_FallbackOnly(t *testing.T) {
	svc := NewFallbackOnlyAIService(nil)

	assert.False(t, svc.Enabled())
	assert.Equal(t, "none", svc.Provider())

	result := svc.Phrase(context.Background(), testPrompt)
	assert.False(t, result.OK())
	assert.ErrorIs(t, result.Err, ErrAIDisabled)
}

func TestAIService_SendsSamplingParams(t *testing.T) {
	completer := &MockCompleter{Response: "  Hi Asha! 20% off 👋  "}
	svc := NewAIService(completer, AIServiceOptions{}, nil)

	result := svc.Phrase(context.Background(), testPrompt)
	require.True(t, result.OK())
	assert.Equal(t, "Hi Asha! 20% off 👋", result.Text)

	require.Len(t, completer.Requests, 1)
	req := completer.Requests[0]
	assert.Equal(t, "rules", req.System)
	assert.Equal(t, testPrompt.User, req.User)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	assert.InDelta(t, 0.9, req.TopP, 1e-6)
	assert.Equal(t, 100, req.MaxTokens)
}

func TestAIService_ProviderError(t *testing.T) {
	completer := &MockCompleter{Err: errors.New("401 unauthorized")}
	svc := NewAIService(completer, AIServiceOptions{}, nil)

	result := svc.Phrase(context.Background(), testPrompt)
	assert.False(t, result.OK())
	assert.ErrorContains(t, result.Err, "401 unauthorized")
	assert.Equal(t, 1, completer.Calls, "exactly one attempt")
}

func TestAIService_EmptyCompletion(t *testing.T) {
	completer := &MockCompleter{Response: "   "}
	svc := NewAIService(completer, AIServiceOptions{}, nil)

	result := svc.Phrase(context.Background(), testPrompt)
	assert.ErrorIs(t, result.Err, ErrEmptyCompletion)
}

func TestAIService_CacheHitSkipsProvider(t *testing.T) {
	cache := repository.NewMemoryCache()
	completer := &MockCompleter{Response: "Hi Asha! Welcome 👋"}
	svc := NewAIService(completer, AIServiceOptions{Cache: cache, CacheTTL: time.Hour}, nil)

	first := svc.Phrase(context.Background(), testPrompt)
	require.True(t, first.OK())
	assert.False(t, first.Cached)

	second := svc.Phrase(context.Background(), testPrompt)
	require.True(t, second.OK())
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, completer.Calls)
}

func TestAIService_FailuresAreNotCached(t *testing.T) {
	cache := repository.NewMemoryCache()
	completer := &MockCompleter{Err: errors.New("boom")}
	svc := NewAIService(completer, AIServiceOptions{Cache: cache}, nil)

	_ = svc.Phrase(context.Background(), testPrompt)
	assert.Zero(t, cache.Len())
}

func TestAIService_CancelledContext(t *testing.T) {
	completer := &MockCompleter{Response: "unused"}
	svc := NewAIService(completer, AIServiceOptions{RatePerSecond: 0.001, Burst: 1}, nil)

	// drain the single token so the next call has to wait
	require.True(t, svc.Phrase(context.Background(), testPrompt).OK())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := svc.Phrase(ctx, OfferPrompt{System: "rules", User: "other"})
	assert.False(t, result.OK())
	assert.Equal(t, 1, completer.Calls)
}

func TestPhrasingCacheKey(t *testing.T) {
	a := phrasingCacheKey("groq", "llama-3.3-70b-versatile", testPrompt)
	assert.Equal(t, a, phrasingCacheKey("groq", "llama-3.3-70b-versatile", testPrompt))
	assert.NotEqual(t, a, phrasingCacheKey("gemini", "llama-3.3-70b-versatile", testPrompt))
	assert.NotEqual(t, a, phrasingCacheKey("groq", "llama-3.1-8b-instant", testPrompt))
	assert.NotEqual(t, a, phrasingCacheKey("groq", "llama-3.3-70b-versatile", OfferPrompt{System: "rules", User: "- Customer: Ravi\n"}))
}

func TestAIService_ModelChangeMissesSharedCache(t *testing.T) {
	cache := repository.NewMemoryCache()

	oldModel := &MockCompleter{Response: "Hi Asha! from the old model", ModelID: "model-a"}
	first := NewAIService(oldModel, AIServiceOptions{Cache: cache, CacheTTL: time.Hour}, nil).
		Phrase(context.Background(), testPrompt)
	require.True(t, first.OK())

	newModel := &MockCompleter{Response: "Hi Asha! from the new model", ModelID: "model-b"}
	second := NewAIService(newModel, AIServiceOptions{Cache: cache, CacheTTL: time.Hour}, nil).
		Phrase(context.Background(), testPrompt)

	require.True(t, second.OK())
	assert.False(t, second.Cached)
	assert.Equal(t, "Hi Asha! from the new model", second.Text)
	assert.Equal(t, 1, newModel.Calls)
}
