package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hyperjump/asistan/internal/models"
)

// MemoryStorage keeps conversations in process memory.
type MemoryStorage struct {
	mu       sync.RWMutex
	messages map[string][]*models.Message
	states   map[string]*models.ConversationState
}

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		messages: make(map[string][]*models.Message),
		states:   make(map[string]*models.ConversationState),
	}
}

// AppendMessage stores a copy of msg. A zero timestamp is set to now.
func (s *MemoryStorage) AppendMessage(ctx context.Context, conversationID string, msg *models.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("message id is required")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	cp := *msg
	s.mu.Lock()
	s.messages[conversationID] = append(s.messages[conversationID], &cp)
	s.mu.Unlock()
	return nil
}

// ListMessages returns copies of the stored messages.
func (s *MemoryStorage) ListMessages(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.messages[conversationID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]*models.Message, 0, len(all))
	for _, m := range all {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// GetMessage returns one message by id.
func (s *MemoryStorage) GetMessage(ctx context.Context, conversationID, messageID string) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.messages[conversationID] {
		if m.ID == messageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("message %s: %w", messageID, ErrNotFound)
}

// GetState returns the conversation state.
func (s *MemoryStorage) GetState(ctx context.Context, conversationID string) (*models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[conversationID]
	if !ok {
		return nil, fmt.Errorf("state %s: %w", conversationID, ErrNotFound)
	}
	cp := *st
	return &cp, nil
}

// SaveState stores the conversation state and stamps UpdatedAt.
func (s *MemoryStorage) SaveState(ctx context.Context, state *models.ConversationState) error {
	state.UpdatedAt = time.Now()
	cp := *state
	s.mu.Lock()
	s.states[state.ID] = &cp
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error {
	return nil
}
