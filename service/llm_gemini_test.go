package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewGeminiCompleter_RequiresKey(t *testing.T) {
	_, err := NewGeminiCompleter(context.Background(), "", "gemini-2.0-flash", time.Second)
	assert.ErrorIs(t, err, ErrAIDisabled)
}
