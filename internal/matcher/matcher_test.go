package matcher

import (
	"testing"

	"github.com/hyperjump/asistan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Clinics: []models.Clinic{
			{ID: "c1", Name: "Güneş Diş Kliniği", RegionID: "r1"},
			{ID: "c2", Name: "Güneş", RegionID: "r2"},
			{ID: "c3", Name: "Ankara Tıp Merkezi", RegionID: "r3"},
			{ID: "c4", Name: ""},
		},
		Users: []models.User{
			{ID: "u1", Name: "Ayşe Yılmaz"},
			{ID: "u2", Name: "Mehmet Kaya"},
		},
		Regions: []models.Region{
			{ID: "r1", Name: "İzmir Bölgesi"},
			{ID: "r2", Name: "Ege Bölgesi"},
			{ID: "r3", Name: "İç Anadolu Bölgesi"},
			{ID: "r4", Name: "Marmara Bölgesi"},
		},
	}
}

func TestFindFirstByName(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name    string
		message string
		wantID  string
		wantOK  bool
	}{
		{"case insensitive", "GÜNEŞ DİŞ KLİNİĞİ durumu", "c1", true},
		{"suffix attached", "güneş diş kliniğinin ziyaretleri", "c1", true},
		{"first match wins", "güneş ile ilgili", "c2", true},
		{"no match", "bilinmeyen klinik", "", false},
		{"empty message", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := FindFirstByName(snap.Clinics, clinicName, tt.message)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, c)
				assert.Equal(t, tt.wantID, c.ID)
			}
		})
	}
}

func TestFindFirstByName_SnapshotOrder(t *testing.T) {
	// Both names occur; the earlier record in the collection wins even though
	// the later one is more specific.
	items := []models.Clinic{
		{ID: "a", Name: "Diş"},
		{ID: "b", Name: "Güneş Diş Kliniği"},
	}
	c, ok := FindFirstByName(items, clinicName, "güneş diş kliniği")
	require.True(t, ok)
	assert.Equal(t, "a", c.ID)
}

func TestFindFirstFuzzy(t *testing.T) {
	snap := testSnapshot()

	c, ok := FindFirstFuzzy(snap.Clinics, clinicName, "ankara tip merkezi bilgileri")
	require.True(t, ok)
	assert.Equal(t, "c3", c.ID)

	_, ok = FindFirstFuzzy(snap.Clinics, clinicName, "istanbul hastanesi")
	assert.False(t, ok)
}

func TestMatcher_Clinic(t *testing.T) {
	snap := testSnapshot()

	strict := New()
	_, ok := strict.Clinic(snap, "ankara tip merkezi")
	assert.False(t, ok)

	fuzzy := New(WithFuzzyClinics(true))
	c, ok := fuzzy.Clinic(snap, "ankara tip merkezi")
	require.True(t, ok)
	assert.Equal(t, "c3", c.ID)
}

func TestMatcher_User(t *testing.T) {
	snap := testSnapshot()
	m := New()

	u, ok := m.User(snap, "Mehmet Kaya'nın aktiviteleri")
	require.True(t, ok)
	assert.Equal(t, "u2", u.ID)

	_, ok = m.User(snap, "mehmet'in aktiviteleri")
	assert.False(t, ok)
}

func TestMatcher_Region(t *testing.T) {
	snap := testSnapshot()
	m := New()

	tests := []struct {
		name    string
		message string
		wantID  string
		wantOK  bool
	}{
		{"full name", "İzmir bölgesindeki aktif klinikler", "r1", true},
		{"base name", "izmir'deki klinikler", "r1", true},
		{"multi word base", "iç anadolu'daki klinikler", "r3", true},
		{"province macro", "manisa klinikleri", "r2", true},
		{"province macro to marmara", "bursa'daki klinikler", "r4", true},
		{"macro region absent from snapshot", "antalya klinikleri", "", false},
		{"nothing", "tüm klinikler", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := m.Region(snap, tt.message)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, r)
				assert.Equal(t, tt.wantID, r.ID)
			}
		})
	}
}

func TestMatcher_RegionWithInjectedMap(t *testing.T) {
	snap := testSnapshot()
	m := New(WithRegionMap(NewRegionMap(map[string]string{"Karşıyaka": "İzmir Bölgesi"})))

	r, ok := m.Region(snap, "karşıyaka klinikleri")
	require.True(t, ok)
	assert.Equal(t, "r1", r.ID)

	// The injected map replaces the defaults.
	_, ok = m.Region(snap, "manisa klinikleri")
	assert.False(t, ok)
}

func TestRegionMap(t *testing.T) {
	rm := NewRegionMap(map[string]string{"İzmir": "Ege Bölgesi", "": "x", "Van": ""})
	assert.Equal(t, 1, rm.Len())

	region, ok := rm.Lookup("izmir'deki")
	require.True(t, ok)
	assert.Equal(t, "ege bölgesi", region)

	rm.Replace(DefaultProvinces())
	assert.Greater(t, rm.Len(), 50)
}
