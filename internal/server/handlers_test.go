package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/asistan/internal/assistant"
	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/llm"
	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/internal/prompt"
	"github.com/hyperjump/asistan/internal/relevance"
	"github.com/hyperjump/asistan/internal/resolver"
	"github.com/hyperjump/asistan/internal/snapshot"
	"github.com/hyperjump/asistan/internal/storage"
	"github.com/hyperjump/asistan/internal/timerange"
)

var testNow = time.Date(2025, time.March, 12, 14, 30, 0, 0, time.UTC)

type stubSource struct {
	snap *models.Snapshot
	err  error
}

func (s *stubSource) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	return s.snap, s.err
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Regions: []models.Region{{ID: "r1", Name: "İzmir Bölgesi"}},
		Clinics: []models.Clinic{
			{ID: "c1", Name: "Güneş Diş Kliniği", RegionID: "r1", Status: models.ClinicActive},
		},
		Users: []models.User{
			{ID: "u1", Name: "Ayşe Yılmaz", Role: models.RoleSalesRep, RegionID: "r1", Active: true},
		},
		Proposals: []models.Proposal{
			{ID: 125, ClinicID: "c1", UserID: "u1", Status: models.ProposalApproved, TotalAmount: 12500, Currency: "TRY", CreatedAt: "2025-03-10T09:00:00Z"},
		},
	}
}

type testServer struct {
	srv    *Server
	store  *storage.MemoryStorage
	source *stubSource
	gen    *llm.MockGenerator
}

func newTestServer(t *testing.T, reply string) *testServer {
	t.Helper()
	cfg := config.Default()
	clock := timerange.New(
		timerange.WithClock(func() time.Time { return testNow }),
		timerange.WithLocation(time.UTC),
	)
	engine := resolver.NewEngine(&cfg.Resolver, resolver.WithClock(clock))
	store := storage.NewMemoryStorage()
	gen := llm.NewMockGenerator(func(string) (string, error) { return reply, nil })
	source := &stubSource{snap: testSnapshot()}
	holder := snapshot.NewHolder(source, nil)
	asst := assistant.New(engine, relevance.NewClassifier(), prompt.NewComposer(&cfg.Assistant), gen, store, holder)
	srv := NewServer(asst, holder, store, &cfg.Server, zap.NewNop(), "")
	return &testServer{srv: srv, store: store, source: source, gen: gen}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	for k, v := range header {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(out))
}

func TestHandleChat(t *testing.T) {
	ts := newTestServer(t, "Teklif #125 onaylandı.")

	w := ts.do(t, http.MethodPost, "/api/v1/chat",
		map[string]string{"conversation_id": "conv-1", "text": "125 numaralı teklif"},
		map[string]string{"X-User-ID": "u1"})
	require.Equal(t, http.StatusOK, w.Code)

	var reply assistant.Reply
	decode(t, w, &reply)
	assert.Equal(t, "conv-1", reply.ConversationID)
	assert.True(t, reply.Retrieved)
	assert.Equal(t, "proposal_id", reply.Resolver)
	assert.Equal(t, "Teklif #125 onaylandı.", reply.Message.Text)

	prompts := ts.gen.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Ayşe Yılmaz", "the header user id selects the caller")
}

func TestHandleChat_BadRequests(t *testing.T) {
	ts := newTestServer(t, "x")

	r := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/chat", map[string]string{"text": "  "}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var out map[string]string
	decode(t, w, &out)
	assert.Equal(t, "text is required", out["error"])
}

func TestHandleClassify(t *testing.T) {
	ts := newTestServer(t, "x")
	tests := []struct {
		message  string
		relevant bool
		greeting bool
	}{
		{"klinikleri listele", true, false},
		{"merhaba", false, true},
		{"hava nasıl", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/classify", classifyRequest{Message: tt.message}, nil)
			require.Equal(t, http.StatusOK, w.Code)
			var out classifyResponse
			decode(t, w, &out)
			assert.Equal(t, tt.relevant, out.Relevant)
			assert.Equal(t, tt.greeting, out.Greeting)
		})
	}
}

func TestHandleResolve(t *testing.T) {
	ts := newTestServer(t, "x")

	w := ts.do(t, http.MethodPost, "/api/v1/resolve", resolveRequest{Message: "125 numaralı teklif", UserID: "u1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res models.Resolution
	decode(t, w, &res)
	assert.True(t, res.Retrieved)
	assert.Equal(t, "proposal_id", res.Resolver)
	assert.Contains(t, res.Context, "Teklif #125")
	assert.Empty(t, ts.gen.Prompts(), "resolve never calls the model")

	w = ts.do(t, http.MethodPost, "/api/v1/resolve", resolveRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleDetect(t *testing.T) {
	ts := newTestServer(t, "x")

	w := ts.do(t, http.MethodPost, "/api/v1/detect", detectRequest{Text: "| Ad | Durum |\n|---|---|\n| Güneş | aktif |"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		IsTable bool              `json:"is_table"`
		Kind    string            `json:"kind"`
		Table   *models.TableData `json:"table_data"`
	}
	decode(t, w, &out)
	assert.True(t, out.IsTable)
	assert.Equal(t, "markdown", out.Kind)
	require.NotNil(t, out.Table)
	assert.Equal(t, []string{"Ad", "Durum"}, out.Table.Headers)
	assert.Equal(t, [][]string{{"Güneş", "aktif"}}, out.Table.Rows)
}

func TestHandleMessages(t *testing.T) {
	ts := newTestServer(t, "| Ad | Durum |\n|---|---|\n| Güneş | aktif |")

	w := ts.do(t, http.MethodPost, "/api/v1/chat", map[string]string{"conversation_id": "conv-1", "text": "klinikleri listele"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reply assistant.Reply
	decode(t, w, &reply)
	require.Equal(t, models.DataTypeTable, reply.Message.DataType)

	w = ts.do(t, http.MethodGet, "/api/v1/conversations/conv-1/messages", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		ConversationID string            `json:"conversation_id"`
		Messages       []*models.Message `json:"messages"`
	}
	decode(t, w, &list)
	assert.Equal(t, "conv-1", list.ConversationID)
	require.Len(t, list.Messages, 2)
	assert.Equal(t, models.SenderUser, list.Messages[0].Sender)

	w = ts.do(t, http.MethodGet, "/api/v1/conversations/conv-1/messages?limit=1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Len(t, list.Messages, 1)
	assert.Equal(t, models.SenderAssistant, list.Messages[0].Sender)

	w = ts.do(t, http.MethodGet, "/api/v1/conversations/conv-1/messages?limit=x", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/conversations/none/messages", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Empty(t, list.Messages)
}

func TestHandleMessageTable(t *testing.T) {
	ts := newTestServer(t, "| Ad | Durum |\n|---|---|\n| Güneş | aktif |")

	w := ts.do(t, http.MethodPost, "/api/v1/chat", map[string]string{"conversation_id": "conv-1", "text": "klinikleri listele"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reply assistant.Reply
	decode(t, w, &reply)

	w = ts.do(t, http.MethodGet, "/api/v1/conversations/conv-1/messages/"+reply.Message.ID+"/table.xlsx", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Ad", "Durum"}, {"Güneş", "aktif"}}, rows)

	msgs, err := ts.store.ListMessages(context.Background(), "conv-1", 0)
	require.NoError(t, err)
	w = ts.do(t, http.MethodGet, "/api/v1/conversations/conv-1/messages/"+msgs[0].ID+"/table.xlsx", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "user messages carry no table")

	w = ts.do(t, http.MethodGet, "/api/v1/conversations/conv-1/messages/missing/table.xlsx", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSnapshotReload(t *testing.T) {
	ts := newTestServer(t, "x")

	w := ts.do(t, http.MethodPost, "/api/v1/snapshot/reload", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Status string         `json:"status"`
		Counts map[string]int `json:"counts"`
	}
	decode(t, w, &out)
	assert.Equal(t, "reloaded", out.Status)
	assert.Equal(t, 1, out.Counts["clinics"])

	ts.source.err = errors.New("source down")
	w = ts.do(t, http.MethodPost, "/api/v1/snapshot/reload", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t, "x")

	w := ts.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]interface{}
	decode(t, w, &out)
	assert.Equal(t, "ok", out["status"])
	assert.NotContains(t, out, "snapshot_loaded_at")

	ts.do(t, http.MethodPost, "/api/v1/snapshot/reload", nil, nil)
	w = ts.do(t, http.MethodGet, "/health", nil, nil)
	decode(t, w, &out)
	assert.Contains(t, out, "snapshot_loaded_at")
}

func TestHandleHealth_RedisOverlayCountsMessages(t *testing.T) {
	ts := newTestServer(t, "x")
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	db, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "asistan.db"))
	require.NoError(t, err)
	overlay := storage.NewRedisStateStorage(db, storage.NewRedisClient(&config.RedisConfig{Address: mr.Addr()}), time.Hour, nil)
	defer overlay.Close()
	require.NoError(t, overlay.AppendMessage(context.Background(), "conv-1", &models.Message{ID: "m1", Sender: models.SenderUser, Text: "a"}))

	srv := NewServer(ts.srv.assistant, ts.srv.snapshots, overlay, ts.srv.config, zap.NewNop(), "")
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]interface{}
	decode(t, w, &out)
	assert.Equal(t, float64(1), out["messages"])
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, "x")
	w := ts.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
