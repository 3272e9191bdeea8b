package repository

import (
	"context"
	"time"
)

// CacheRepository stores generated offer phrasing. A miss and a backend error
// look the same to callers: both mean "ask the LLM".
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}
