package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperjump/asistan/internal/models"
	"google.golang.org/genai"
)

// GenAIGenerator calls Gemini through the Google GenAI SDK.
type GenAIGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenAIGenerator creates a Gemini generator. An API key is required.
func NewGenAIGenerator(apiKey, model string, timeout time.Duration) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GenAI API key is required", ErrUnavailable)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIGenerator{client: client, model: model, timeout: timeout}, nil
}

// GenerateText sends prompt as a single user turn.
func (g *GenAIGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	return g.generate(ctx, contents, nil)
}

// Chat sends history as alternating user/model turns with a system instruction.
func (g *GenAIGenerator) Chat(ctx context.Context, systemPrompt string, history []models.Message) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Sender == models.SenderAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	var cfg *genai.GenerateContentConfig
	if systemPrompt != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
	}
	return g.generate(ctx, contents, cfg)
}

func (g *GenAIGenerator) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: GenAI generate failed: %v", ErrUnavailable, err)
	}
	return checkText(resp.Text())
}

// Name returns the generator name.
func (g *GenAIGenerator) Name() string {
	return fmt.Sprintf("genai:%s", g.model)
}
