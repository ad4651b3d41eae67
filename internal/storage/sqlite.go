package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/asistan/internal/models"
)

// SQLiteStorage implements Storage using SQLite. The same database also
// holds the imported entity snapshot (see snapshot.go).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		conversation_id TEXT NOT NULL,
		sender TEXT NOT NULL,
		text TEXT NOT NULL,
		data_type TEXT,
		table_data TEXT,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq);

	CREATE TABLE IF NOT EXISTS conversation_state (
		id TEXT PRIMARY KEY,
		grounded_kind TEXT,
		grounded_id TEXT,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshot_records (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		position INTEGER NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshot_position ON snapshot_records(collection, position);
	`
	_, err := db.Exec(schema)
	return err
}

// AppendMessage inserts a message. A zero timestamp is set to now.
func (s *SQLiteStorage) AppendMessage(ctx context.Context, conversationID string, msg *models.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("message id is required")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	var tableJSON sql.NullString
	if msg.Table != nil {
		data, err := json.Marshal(msg.Table)
		if err != nil {
			return fmt.Errorf("failed to marshal table data: %w", err)
		}
		tableJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, sender, text, data_type, table_data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, conversationID, string(msg.Sender), msg.Text, string(msg.DataType), tableJSON, msg.Timestamp,
	)
	return err
}

const messageColumns = `id, sender, text, data_type, table_data, created_at`

func scanMessage(scan func(dest ...any) error) (*models.Message, error) {
	var msg models.Message
	var sender string
	var dataType, tableJSON sql.NullString
	if err := scan(&msg.ID, &sender, &msg.Text, &dataType, &tableJSON, &msg.Timestamp); err != nil {
		return nil, err
	}
	msg.Sender = models.Sender(sender)
	msg.DataType = models.DataType(dataType.String)
	if tableJSON.Valid && tableJSON.String != "" {
		var table models.TableData
		if err := json.Unmarshal([]byte(tableJSON.String), &table); err != nil {
			return nil, fmt.Errorf("failed to unmarshal table data: %w", err)
		}
		msg.Table = &table
	}
	return &msg, nil
}

// ListMessages returns the last limit messages of a conversation, oldest first.
func (s *SQLiteStorage) ListMessages(ctx context.Context, conversationID string, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE conversation_id = ? ORDER BY seq DESC LIMIT ?`,
		conversationID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// GetMessage returns one message by id.
func (s *SQLiteStorage) GetMessage(ctx context.Context, conversationID, messageID string) (*models.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE conversation_id = ? AND id = ?`,
		conversationID, messageID,
	)
	msg, err := scanMessage(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %s: %w", messageID, ErrNotFound)
	}
	return msg, err
}

// GetState returns the conversation state.
func (s *SQLiteStorage) GetState(ctx context.Context, conversationID string) (*models.ConversationState, error) {
	state := models.ConversationState{ID: conversationID}
	var kind, id sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT grounded_kind, grounded_id, updated_at FROM conversation_state WHERE id = ?`,
		conversationID,
	).Scan(&kind, &id, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("state %s: %w", conversationID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if kind.Valid && kind.String != "" {
		state.LastGrounded = &models.GroundedEntity{Kind: models.EntityKind(kind.String), ID: id.String}
	}
	return &state, nil
}

// SaveState upserts the conversation state and stamps UpdatedAt.
func (s *SQLiteStorage) SaveState(ctx context.Context, state *models.ConversationState) error {
	state.UpdatedAt = time.Now()
	var kind, id sql.NullString
	if state.LastGrounded != nil {
		kind = sql.NullString{String: string(state.LastGrounded.Kind), Valid: true}
		id = sql.NullString{String: state.LastGrounded.ID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_state (id, grounded_kind, grounded_id, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			grounded_kind = excluded.grounded_kind,
			grounded_id = excluded.grounded_id,
			updated_at = excluded.updated_at`,
		state.ID, kind, id, state.UpdatedAt,
	)
	return err
}

// CountMessages returns the total number of stored messages.
func (s *SQLiteStorage) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
