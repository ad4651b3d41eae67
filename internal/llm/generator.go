// Package llm is the boundary to the generative-language backend.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/models"
)

var (
	// ErrUnavailable is returned when the backend cannot be reached or refuses the call.
	ErrUnavailable = errors.New("llm: backend unavailable")
	// ErrEmptyResponse is returned when the backend answers with no text.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Generator produces text from a prompt.
type Generator interface {
	// GenerateText answers a single self-contained prompt.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// Chat answers the last user turn of history under systemPrompt.
	Chat(ctx context.Context, systemPrompt string, history []models.Message) (string, error)
	// Name identifies the backend in logs and metrics.
	Name() string
}

// New creates the generator named by cfg.Provider.
func New(cfg *config.LLMConfig) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "genai", "gemini", "":
		return NewGenAIGenerator(cfg.APIKey, cfg.Model, cfg.Timeout)
	case "ollama":
		return NewOllamaGenerator(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "mock":
		return NewMockGenerator(nil), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// checkText turns a blank answer into ErrEmptyResponse.
func checkText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
