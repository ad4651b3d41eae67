package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/asistan/internal/models"
)

// OllamaGenerator calls a local Ollama server over its HTTP API.
type OllamaGenerator struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaGenerator creates an Ollama generator. Zero values select
// http://localhost:11434, llama3.1, and a 60 second timeout.
func NewOllamaGenerator(baseURL, model string, timeout time.Duration) *OllamaGenerator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OllamaGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// GenerateText calls /api/generate without streaming.
func (g *OllamaGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	var resp ollamaGenerateResponse
	if err := g.post(ctx, "/api/generate", ollamaGenerateRequest{Model: g.model, Prompt: prompt}, &resp); err != nil {
		return "", err
	}
	return checkText(resp.Response)
}

// Chat calls /api/chat with the system prompt as the first message.
func (g *OllamaGenerator) Chat(ctx context.Context, systemPrompt string, history []models.Message) (string, error) {
	msgs := make([]ollamaMessage, 0, len(history)+1)
	if systemPrompt != "" {
		msgs = append(msgs, ollamaMessage{Role: "system", Content: systemPrompt})
	}
	for _, m := range history {
		role := "user"
		if m.Sender == models.SenderAssistant {
			role = "assistant"
		}
		msgs = append(msgs, ollamaMessage{Role: role, Content: m.Text})
	}
	var resp ollamaChatResponse
	if err := g.post(ctx, "/api/chat", ollamaChatRequest{Model: g.model, Messages: msgs}, &resp); err != nil {
		return "", err
	}
	return checkText(resp.Message.Content)
}

func (g *OllamaGenerator) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: calling Ollama: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: Ollama returned status %d", ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Name returns the generator name.
func (g *OllamaGenerator) Name() string {
	return fmt.Sprintf("ollama:%s", g.model)
}
