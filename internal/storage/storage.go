// Package storage persists conversation messages and per-conversation state.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/asistan/internal/models"
)

// ErrNotFound is returned when a conversation state or message does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrUnsupported is returned when the underlying store cannot serve an optional operation.
var ErrUnsupported = errors.New("storage: operation not supported")

// Storage defines conversation persistence operations. Messages are append-only.
type Storage interface {
	// Message operations
	AppendMessage(ctx context.Context, conversationID string, msg *models.Message) error
	// ListMessages returns the last limit messages in chronological order; limit <= 0 returns all.
	ListMessages(ctx context.Context, conversationID string, limit int) ([]*models.Message, error)
	GetMessage(ctx context.Context, conversationID, messageID string) (*models.Message, error)

	// State operations
	GetState(ctx context.Context, conversationID string) (*models.ConversationState, error)
	SaveState(ctx context.Context, state *models.ConversationState) error

	Close() error
}

// MessageCounter is implemented by stores that can report how many messages they hold.
type MessageCounter interface {
	CountMessages(ctx context.Context) (int64, error)
}

// LoadState returns the stored state, or a fresh one when none exists yet.
func LoadState(ctx context.Context, s Storage, conversationID string) (*models.ConversationState, error) {
	state, err := s.GetState(ctx, conversationID)
	if errors.Is(err, ErrNotFound) {
		return &models.ConversationState{ID: conversationID}, nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}
