package service

import (
	"context"
	"errors"
	"strings"
	"sync"
)

type MockCompleter struct {
	mu       sync.Mutex
	Response string
	Err      error
	Calls    int
	Requests []ChatRequest
	ModelID  string
}

func (m *MockCompleter) Name() string { return "mock" }

func (m *MockCompleter) Model() string {
	if m.ModelID == "" {
		return "mock-model"
	}
	return m.ModelID
}

func (m *MockCompleter) CompleteChat(ctx context.Context, req ChatRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// MockPhraser answers per customer name so tests can fail individual rows.
type MockPhraser struct {
	Disabled bool
	Texts    map[string]string
	PanicFor string
	Calls    int
}

func (m *MockPhraser) Enabled() bool { return !m.Disabled }

func (m *MockPhraser) Phrase(ctx context.Context, prompt OfferPrompt) PhrasingResult {
	m.Calls++
	for name, text := range m.Texts {
		if containsCustomer(prompt.User, name) {
			return PhrasingResult{Text: text}
		}
	}
	if m.PanicFor != "" && containsCustomer(prompt.User, m.PanicFor) {
		panic("phraser exploded")
	}
	return PhrasingResult{Err: errors.New("upstream 503")}
}

func containsCustomer(userPrompt, name string) bool {
	return strings.Contains(userPrompt, "- Customer: "+name+"\n")
}
