// Package assistant runs one user message through classification, resolution,
// generation, and structure detection, and records the exchange.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/asistan/internal/llm"
	"github.com/hyperjump/asistan/internal/metrics"
	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/internal/prompt"
	"github.com/hyperjump/asistan/internal/relevance"
	"github.com/hyperjump/asistan/internal/resolver"
	"github.com/hyperjump/asistan/internal/snapshot"
	"github.com/hyperjump/asistan/internal/storage"
	"github.com/hyperjump/asistan/internal/structure"
	"github.com/hyperjump/asistan/pkg/utils"
)

var (
	// ErrEmptyMessage is returned for a blank message.
	ErrEmptyMessage = errors.New("assistant: empty message")
	// ErrInvalidContext marks a malformed context payload.
	ErrInvalidContext = errors.New("assistant: invalid context payload")
)

// ChatRequest is one user message.
type ChatRequest struct {
	ConversationID string          `json:"conversation_id,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	Text           string          `json:"text"`
	Context        json.RawMessage `json:"context,omitempty"`
}

// Reply is the assistant's answer to one ChatRequest.
type Reply struct {
	ConversationID string          `json:"conversation_id"`
	Message        *models.Message `json:"message"`
	Relevant       bool            `json:"relevant"`
	Retrieved      bool            `json:"retrieved"`
	Resolver       string          `json:"resolver,omitempty"`
	Structure      structure.Kind  `json:"structure"`
}

// Assistant wires the pipeline components together.
type Assistant struct {
	engine       *resolver.Engine
	classifier   *relevance.Classifier
	composer     *prompt.Composer
	generator    llm.Generator
	store        storage.Storage
	snapshots    *snapshot.Holder
	historyTurns int
	now          func() time.Time
	logger       *zap.Logger
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assistant) { a.logger = l }
}

// WithHistoryTurns switches to chat mode with the last n stored messages.
// Zero sends one self-contained prompt per message.
func WithHistoryTurns(n int) Option {
	return func(a *Assistant) { a.historyTurns = n }
}

// WithClock sets the clock used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

// New creates an assistant.
func New(
	engine *resolver.Engine,
	classifier *relevance.Classifier,
	composer *prompt.Composer,
	generator llm.Generator,
	store storage.Storage,
	snapshots *snapshot.Holder,
	opts ...Option,
) *Assistant {
	a := &Assistant{
		engine:     engine,
		classifier: classifier,
		composer:   composer,
		generator:  generator,
		store:      store,
		snapshots:  snapshots,
		now:        time.Now,
		logger:     utils.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Handle answers one message. Only storage failures and a blank message are
// returned as errors; every other failure becomes a fixed assistant reply.
func (a *Assistant) Handle(ctx context.Context, req ChatRequest) (*Reply, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	convID := req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}

	state, err := storage.LoadState(ctx, a.store, convID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if err := a.appendUser(ctx, convID, text); err != nil {
		return nil, err
	}
	reply := &Reply{ConversationID: convID, Structure: structure.KindNone}

	payload, err := ParseContext(req.Context)
	if err != nil {
		a.logger.Debug("Rejected context payload", zap.String("conversation_id", convID), zap.Error(err))
		return a.finish(ctx, reply, InvalidContextMessage, nil)
	}
	if payload != nil && payload.Focus != nil {
		state.LastGrounded = payload.Focus
	}

	snap := a.snapshot(ctx)
	decision := a.classifier.Classify(text, snap)
	if !decision.Relevant && state.LastGrounded != nil && resolver.IsFollowUp(text) {
		decision = relevance.Decision{Relevant: true, Reason: relevance.ReasonFollowUp, Matched: text}
	}
	metrics.ObserveClassification(decision.Relevant)
	reply.Relevant = decision.Relevant
	if !decision.Relevant {
		msg := RefusalMessage
		if decision.Greeting {
			msg = GreetingMessage
		}
		return a.finish(ctx, reply, msg, nil)
	}

	user := a.currentUser(snap, req.UserID)
	res := a.engine.Resolve(text, snap, user, state)
	reply.Retrieved = res.Retrieved
	reply.Resolver = res.Resolver
	if res.Grounded != nil {
		state.LastGrounded = res.Grounded
	}
	a.logger.Debug("Resolved message",
		zap.String("conversation_id", convID),
		zap.String("resolver", res.Resolver),
		zap.Bool("retrieved", res.Retrieved),
		zap.String("message", utils.Truncate(text, 80)))

	answer, err := a.generate(ctx, convID, text, res, user)
	metrics.ObserveLLM(a.generator.Name(), err)
	if err != nil {
		a.logger.Warn("Generation failed", zap.String("generator", a.generator.Name()), zap.Error(err))
		if serr := a.store.SaveState(ctx, state); serr != nil {
			return nil, fmt.Errorf("save state: %w", serr)
		}
		return a.finish(ctx, reply, FailureMessage, nil)
	}

	detected := structure.DetectReply(answer, res.Retrieved)
	reply.Structure = detected.Kind
	metrics.ObserveReply(string(detected.Kind))

	if err := a.store.SaveState(ctx, state); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	return a.finish(ctx, reply, answer, detected.Table)
}

// Resolve runs classification and the cascade without calling the model.
func (a *Assistant) Resolve(ctx context.Context, conversationID, userID, text string) (models.Resolution, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Resolution{}, ErrEmptyMessage
	}
	var state *models.ConversationState
	if conversationID != "" {
		st, err := storage.LoadState(ctx, a.store, conversationID)
		if err != nil {
			return models.Resolution{}, fmt.Errorf("load state: %w", err)
		}
		state = st
	}
	snap := a.snapshot(ctx)
	followUp := state != nil && state.LastGrounded != nil && resolver.IsFollowUp(text)
	if !followUp && !a.classifier.Classify(text, snap).Relevant {
		return models.Resolution{}, nil
	}
	return a.engine.Resolve(text, snap, a.currentUser(snap, userID), state), nil
}

func (a *Assistant) generate(ctx context.Context, convID, text string, res models.Resolution, user models.CurrentUser) (string, error) {
	if a.historyTurns <= 0 {
		return a.generator.GenerateText(ctx, a.composer.Compose(text, res, user))
	}
	history, err := a.store.ListMessages(ctx, convID, a.historyTurns)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	turns := make([]models.Message, 0, len(history))
	for _, m := range history {
		turns = append(turns, *m)
	}
	// the stored user message carries only the question; the model also needs the data
	if n := len(turns); n > 0 && turns[n-1].Sender == models.SenderUser {
		turns[n-1].Text = a.composer.UserTurn(text, res)
	}
	return a.generator.Chat(ctx, a.composer.SystemPrompt(user), turns)
}

func (a *Assistant) finish(ctx context.Context, reply *Reply, text string, table *models.TableData) (*Reply, error) {
	msg := a.newMessage(models.SenderAssistant, text, table)
	if err := a.store.AppendMessage(ctx, reply.ConversationID, msg); err != nil {
		return nil, fmt.Errorf("append reply: %w", err)
	}
	reply.Message = msg
	return reply, nil
}

func (a *Assistant) appendUser(ctx context.Context, convID, text string) error {
	msg := a.newMessage(models.SenderUser, text, nil)
	if err := a.store.AppendMessage(ctx, convID, msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (a *Assistant) newMessage(sender models.Sender, text string, table *models.TableData) *models.Message {
	msg := &models.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: a.now(),
		DataType:  models.DataTypeText,
	}
	if table != nil {
		msg.DataType = models.DataTypeTable
		msg.Table = table
	}
	return msg
}

func (a *Assistant) snapshot(ctx context.Context) *models.Snapshot {
	if a.snapshots == nil {
		return nil
	}
	snap, err := a.snapshots.Get(ctx)
	if err != nil {
		a.logger.Warn("No snapshot available; answering without data", zap.Error(err))
		return nil
	}
	return snap
}

// currentUser looks the caller up in the snapshot. Unknown callers get the
// least privileged role.
func (a *Assistant) currentUser(snap *models.Snapshot, userID string) models.CurrentUser {
	if snap != nil && userID != "" {
		if u, ok := snap.UserByID(userID); ok {
			return models.CurrentUserFrom(*u)
		}
	}
	return models.CurrentUser{ID: userID, Role: models.RoleSalesRep}
}

// Classify runs the relevance classifier against the current snapshot.
func (a *Assistant) Classify(ctx context.Context, text string) relevance.Decision {
	return a.classifier.Classify(text, a.snapshot(ctx))
}
