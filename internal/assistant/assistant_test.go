package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/llm"
	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/internal/prompt"
	"github.com/hyperjump/asistan/internal/relevance"
	"github.com/hyperjump/asistan/internal/resolver"
	"github.com/hyperjump/asistan/internal/snapshot"
	"github.com/hyperjump/asistan/internal/storage"
	"github.com/hyperjump/asistan/internal/structure"
	"github.com/hyperjump/asistan/internal/timerange"
)

var testNow = time.Date(2025, time.March, 12, 14, 30, 0, 0, time.UTC)

type staticSource struct{ snap *models.Snapshot }

func (s staticSource) FetchSnapshot(ctx context.Context) (*models.Snapshot, error) {
	return s.snap, nil
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Regions: []models.Region{{ID: "r1", Name: "İzmir Bölgesi"}},
		Clinics: []models.Clinic{
			{ID: "c1", Name: "Güneş Diş Kliniği", RegionID: "r1", Status: models.ClinicActive},
			{ID: "c2", Name: "Körfez Klinik", RegionID: "r1", Status: models.ClinicActive},
		},
		Users: []models.User{
			{ID: "u1", Name: "Ayşe Yılmaz", Role: models.RoleSalesRep, RegionID: "r1", Active: true},
			{ID: "u2", Name: "Mehmet Kaya", Role: models.RoleManager, Active: true},
		},
		Proposals: []models.Proposal{
			{ID: 125, ClinicID: "c1", UserID: "u1", Status: models.ProposalApproved, TotalAmount: 12500, Currency: "TRY", CreatedAt: "2025-03-10T09:00:00Z"},
		},
	}
}

type fixture struct {
	assistant *Assistant
	store     *storage.MemoryStorage
	gen       *llm.MockGenerator
}

func newFixture(t *testing.T, respond func(string) (string, error), source snapshot.Source, opts ...Option) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Resolver.Timezone = "UTC"
	clock := timerange.New(
		timerange.WithClock(func() time.Time { return testNow }),
		timerange.WithLocation(time.UTC),
	)
	engine := resolver.NewEngine(&cfg.Resolver, resolver.WithClock(clock))
	store := storage.NewMemoryStorage()
	gen := llm.NewMockGenerator(respond)
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	a := New(engine, relevance.NewClassifier(), prompt.NewComposer(&cfg.Assistant), gen, store, snapshot.NewHolder(source, nil), opts...)
	return &fixture{assistant: a, store: store, gen: gen}
}

func canned(text string) func(string) (string, error) {
	return func(string) (string, error) { return text, nil }
}

func (f *fixture) messages(t *testing.T, convID string) []*models.Message {
	t.Helper()
	msgs, err := f.store.ListMessages(context.Background(), convID, 0)
	require.NoError(t, err)
	return msgs
}

func TestHandle_EmptyMessage(t *testing.T) {
	f := newFixture(t, nil, staticSource{testSnapshot()})
	_, err := f.assistant.Handle(context.Background(), ChatRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestHandle_OutOfDomain(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"greeting", "merhaba", GreetingMessage},
		{"thanks", "teşekkürler", GreetingMessage},
		{"weather", "hava nasıl", RefusalMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, staticSource{testSnapshot()})
			reply, err := f.assistant.Handle(context.Background(), ChatRequest{ConversationID: "c", Text: tt.text})
			require.NoError(t, err)
			assert.False(t, reply.Relevant)
			assert.Equal(t, tt.want, reply.Message.Text)
			assert.Empty(t, f.gen.Prompts(), "no model call for out-of-domain messages")
			assert.Len(t, f.messages(t, "c"), 2)
		})
	}
}

func TestHandle_GroundedAnswer(t *testing.T) {
	f := newFixture(t, canned("Teklif #125 onaylandı."), staticSource{testSnapshot()})
	ctx := context.Background()

	reply, err := f.assistant.Handle(ctx, ChatRequest{Text: "125 numaralı teklif", UserID: "u1"})
	require.NoError(t, err)
	require.NotEmpty(t, reply.ConversationID, "a conversation id is assigned")
	assert.True(t, reply.Relevant)
	assert.True(t, reply.Retrieved)
	assert.Equal(t, "proposal_id", reply.Resolver)
	assert.Equal(t, "Teklif #125 onaylandı.", reply.Message.Text)
	assert.Equal(t, models.SenderAssistant, reply.Message.Sender)
	assert.Equal(t, models.DataTypeText, reply.Message.DataType)
	assert.Equal(t, testNow, reply.Message.Timestamp)

	prompts := f.gen.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Teklif #125 Detayları:")
	assert.Contains(t, prompts[0], "Güneş Diş Kliniği")
	assert.Contains(t, prompts[0], "Ayşe Yılmaz (Satış Temsilcisi)")
	assert.Contains(t, prompts[0], "KULLANICI SORUSU:\n125 numaralı teklif")

	state, err := f.store.GetState(ctx, reply.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, state.LastGrounded)
	assert.Equal(t, "proposal:125", state.LastGrounded.String())

	msgs := f.messages(t, reply.ConversationID)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderUser, msgs[0].Sender)
	assert.Equal(t, "125 numaralı teklif", msgs[0].Text)

	// a bare follow-up cue re-renders the grounded proposal
	follow, err := f.assistant.Handle(ctx, ChatRequest{ConversationID: reply.ConversationID, Text: "detaylar"})
	require.NoError(t, err)
	assert.True(t, follow.Relevant)
	assert.Equal(t, "follow_up", follow.Resolver)
	prompts = f.gen.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "Teklif #125 Detayları:")
}

func TestHandle_FollowUpWithoutGroundingIsRefused(t *testing.T) {
	f := newFixture(t, canned("x"), staticSource{testSnapshot()})
	reply, err := f.assistant.Handle(context.Background(), ChatRequest{Text: "detaylar"})
	require.NoError(t, err)
	assert.False(t, reply.Relevant)
	assert.Equal(t, RefusalMessage, reply.Message.Text)
}

func TestHandle_ContextPayload(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid", func(t *testing.T) {
		f := newFixture(t, canned("x"), staticSource{testSnapshot()})
		reply, err := f.assistant.Handle(ctx, ChatRequest{ConversationID: "c", Text: "klinikleri listele", Context: json.RawMessage(`{"focus": 12}`)})
		require.NoError(t, err)
		assert.Equal(t, InvalidContextMessage, reply.Message.Text)
		assert.Empty(t, f.gen.Prompts(), "resolution does not proceed")
		assert.Len(t, f.messages(t, "c"), 2)
	})

	t.Run("focus grounds follow-ups", func(t *testing.T) {
		f := newFixture(t, canned("Klinik aktif."), staticSource{testSnapshot()})
		reply, err := f.assistant.Handle(ctx, ChatRequest{
			ConversationID: "c",
			Text:           "daha fazla bilgi",
			Context:        json.RawMessage(`{"focus": {"kind": "clinic", "id": "c1"}}`),
		})
		require.NoError(t, err)
		assert.Equal(t, "follow_up", reply.Resolver)
		prompts := f.gen.Prompts()
		require.Len(t, prompts, 1)
		assert.Contains(t, prompts[0], "Klinik Bilgileri: Güneş Diş Kliniği")
	})
}

func TestHandle_GenerationFailure(t *testing.T) {
	f := newFixture(t, func(string) (string, error) { return "", llm.ErrUnavailable }, staticSource{testSnapshot()})
	ctx := context.Background()

	reply, err := f.assistant.Handle(ctx, ChatRequest{ConversationID: "c", Text: "125 numaralı teklif"})
	require.NoError(t, err)
	assert.Equal(t, FailureMessage, reply.Message.Text)
	assert.Equal(t, structure.KindNone, reply.Structure)

	state, err := f.store.GetState(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "proposal:125", state.LastGrounded.String(), "grounding survives a failed model call")
}

func TestHandle_DetectsTables(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		kind     structure.Kind
		dataType models.DataType
	}{
		{"marker", "İşte liste: [TABLE: A,B|1,2|3,4]", structure.KindMarker, models.DataTypeTable},
		{"summary", "Toplam 2 klinik bulundu.\n- Klinik: Güneş Diş Kliniği, Bölge: İzmir Bölgesi\n- Klinik: Körfez Klinik, Bölge: İzmir Bölgesi", structure.KindSummary, models.DataTypeTable},
		{"plain", "İzmir bölgesinde iki klinik var.", structure.KindNone, models.DataTypeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, canned(tt.answer), staticSource{testSnapshot()})
			reply, err := f.assistant.Handle(context.Background(), ChatRequest{Text: "klinikleri listele", UserID: "u2"})
			require.NoError(t, err)
			assert.True(t, reply.Retrieved)
			assert.Equal(t, tt.kind, reply.Structure)
			assert.Equal(t, tt.dataType, reply.Message.DataType)
			if tt.dataType == models.DataTypeTable {
				require.NotNil(t, reply.Message.Table)
				assert.NotEmpty(t, reply.Message.Table.Rows)
			}
		})
	}
}

func TestHandle_ChatMode(t *testing.T) {
	f := newFixture(t, canned("Tamam."), staticSource{testSnapshot()}, WithHistoryTurns(4))
	ctx := context.Background()

	_, err := f.assistant.Handle(ctx, ChatRequest{ConversationID: "c", Text: "klinikleri listele"})
	require.NoError(t, err)
	_, err = f.assistant.Handle(ctx, ChatRequest{ConversationID: "c", Text: "125 numaralı teklif"})
	require.NoError(t, err)

	prompts := f.gen.Prompts()
	require.Len(t, prompts, 2)
	assert.True(t, strings.HasPrefix(prompts[1], "VERİLER:\nTeklif #125 Detayları:"), prompts[1])
	assert.True(t, strings.HasSuffix(prompts[1], "KULLANICI SORUSU:\n125 numaralı teklif"))

	// stored history keeps the plain question
	msgs := f.messages(t, "c")
	require.Len(t, msgs, 4)
	assert.Equal(t, "125 numaralı teklif", msgs[2].Text)
}

func TestHandle_NoSnapshot(t *testing.T) {
	missing := snapshot.NewFileSource(filepath.Join(t.TempDir(), "none.json"))
	f := newFixture(t, canned("Şu an veri yok."), missing)

	reply, err := f.assistant.Handle(context.Background(), ChatRequest{Text: "klinikleri listele"})
	require.NoError(t, err)
	assert.True(t, reply.Relevant)
	assert.False(t, reply.Retrieved)
	prompts := f.gen.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Bu soru için sistemde eşleşen bir kayıt bulunamadı.")
}

func TestResolve(t *testing.T) {
	f := newFixture(t, nil, staticSource{testSnapshot()})
	ctx := context.Background()

	res, err := f.assistant.Resolve(ctx, "", "u1", "125 numaralı teklif")
	require.NoError(t, err)
	assert.True(t, res.Retrieved)
	assert.True(t, strings.HasPrefix(res.Context, "Teklif #125 Detayları:"))
	assert.Empty(t, f.gen.Prompts())

	res, err = f.assistant.Resolve(ctx, "", "u1", "merhaba")
	require.NoError(t, err)
	assert.False(t, res.Retrieved)

	_, err = f.assistant.Resolve(ctx, "", "", " ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	require.NoError(t, f.store.SaveState(ctx, &models.ConversationState{ID: "c", LastGrounded: &models.GroundedEntity{Kind: models.KindProposal, ID: "125"}}))
	res, err = f.assistant.Resolve(ctx, "c", "u1", "detay")
	require.NoError(t, err)
	assert.Equal(t, "follow_up", res.Resolver)
}

func TestParseContext(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *models.GroundedEntity
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"null", "null", nil, false},
		{"no focus", "{}", nil, false},
		{"proposal focus", `{"focus": {"kind": "proposal", "id": " 125 "}}`, &models.GroundedEntity{Kind: models.KindProposal, ID: "125"}, false},
		{"campaign focus", `{"focus": {"kind": "campaign", "id": "k9"}}`, &models.GroundedEntity{Kind: models.KindCampaign, ID: "k9"}, false},
		{"not json", `{focus`, nil, true},
		{"wrong shape", `{"focus": "clinic"}`, nil, true},
		{"unknown field", `{"screen": "home"}`, nil, true},
		{"unknown kind", `{"focus": {"kind": "invoice", "id": "1"}}`, nil, true},
		{"missing id", `{"focus": {"kind": "clinic", "id": " "}}`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseContext(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidContext), "got %v", err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				if p != nil {
					assert.Nil(t, p.Focus)
				}
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tt.want, p.Focus)
		})
	}
}
