package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/asistan/internal/assistant"
	"github.com/hyperjump/asistan/internal/export"
	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/internal/storage"
	"github.com/hyperjump/asistan/internal/structure"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req assistant.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = r.Header.Get("X-User-ID")
	}
	s.logger.Debug("chat request", zap.String("conversation_id", req.ConversationID), zap.String("user_id", req.UserID))

	reply, err := s.assistant.Handle(r.Context(), req)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	if err != nil {
		s.logger.Error("chat failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, reply)
}

type classifyRequest struct {
	Message string `json:"message"`
}

type classifyResponse struct {
	Relevant bool   `json:"relevant"`
	Greeting bool   `json:"greeting"`
	Reason   string `json:"reason,omitempty"`
	Matched  string `json:"matched,omitempty"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d := s.assistant.Classify(r.Context(), req.Message)
	s.respondJSON(w, http.StatusOK, classifyResponse{
		Relevant: d.Relevant,
		Greeting: d.Greeting,
		Reason:   string(d.Reason),
		Matched:  d.Matched,
	})
}

type resolveRequest struct {
	Message        string `json:"message"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = r.Header.Get("X-User-ID")
	}
	res, err := s.assistant.Resolve(r.Context(), req.ConversationID, req.UserID, req.Message)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		s.respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if err != nil {
		s.logger.Error("resolve failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

type detectRequest struct {
	Text      string `json:"text"`
	Retrieved bool   `json:"retrieved"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.respondJSON(w, http.StatusOK, structure.DetectReply(req.Text, req.Retrieved))
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	msgs, err := s.storage.ListMessages(r.Context(), id, limit)
	if err != nil {
		s.logger.Error("list messages failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"conversation_id": id,
		"messages":        msgs,
	})
}

func (s *Server) handleMessageTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	messageID := chi.URLParam(r, "messageID")
	msg, err := s.storage.GetMessage(r.Context(), id, messageID)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "message not found")
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if msg.Table == nil {
		s.respondError(w, http.StatusNotFound, "message has no table")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, msg.Table); err != nil {
		s.logger.Error("xlsx export failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, messageID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSnapshotReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Refresh(r.Context())
	if err != nil {
		s.logger.Error("snapshot reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "reloaded",
		"counts": snap.Counts(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": "ok"}
	if at := s.snapshots.FetchedAt(); !at.IsZero() {
		resp["snapshot_loaded_at"] = at.Format(time.RFC3339)
	}
	if s.dbPath != "" {
		if size, err := storage.DatabaseSize(s.dbPath); err == nil {
			resp["database_size_bytes"] = size
		}
	}
	if c, ok := s.storage.(storage.MessageCounter); ok {
		if n, err := c.CountMessages(r.Context()); err == nil {
			resp["messages"] = n
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
