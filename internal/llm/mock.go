package llm

import (
	"context"
	"sync"

	"github.com/hyperjump/asistan/internal/models"
)

// MockGenerator is a deterministic generator for tests and offline use.
// It records every prompt it receives.
type MockGenerator struct {
	mu      sync.Mutex
	respond func(prompt string) (string, error)
	prompts []string
}

// NewMockGenerator returns a generator that answers with respond. A nil
// respond echoes the prompt back.
func NewMockGenerator(respond func(prompt string) (string, error)) *MockGenerator {
	if respond == nil {
		respond = func(prompt string) (string, error) { return prompt, nil }
	}
	return &MockGenerator{respond: respond}
}

// GenerateText records prompt and returns the canned answer.
func (g *MockGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	text, err := g.respond(prompt)
	if err != nil {
		return "", err
	}
	return checkText(text)
}

// Chat answers the last message of history.
func (g *MockGenerator) Chat(ctx context.Context, systemPrompt string, history []models.Message) (string, error) {
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1].Text
	}
	return g.GenerateText(ctx, last)
}

// Prompts returns a copy of the prompts received so far.
func (g *MockGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.prompts))
	copy(out, g.prompts)
	return out
}

// Name returns "mock".
func (g *MockGenerator) Name() string {
	return "mock"
}
