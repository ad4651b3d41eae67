package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSummary(t *testing.T) {
	text := "**Toplam 2 teklif bulundu.**\n" +
		"Filtreler: Durum: Onaylandı\n" +
		"- ID: 125, Klinik: Güneş Diş Kliniği, Tutar: 12.500,00 TRY, Tarih: 10.03.2025\n" +
		"- ID: 128, Klinik: Bursa Dental, Tutar: 3.000,00 TRY, Tarih: 11.03.2025\n"

	table, ok := ParseSummary(text)
	require.True(t, ok)
	assert.Equal(t, "teklif", table.Title)
	assert.Equal(t, []string{"ID", "Klinik", "Tutar", "Tarih"}, table.Headers)
	assert.Equal(t, [][]string{
		{"125", "Güneş Diş Kliniği", "12.500,00 TRY", "10.03.2025"},
		{"128", "Bursa Dental", "3.000,00 TRY", "11.03.2025"},
	}, table.Rows)
}

func TestParseSummary_MergesFragmentsWithoutColon(t *testing.T) {
	table, ok := ParseSummary("Toplam 1 klinik bulundu.\n- Klinik: Güneş, Diş ve Ağız Sağlığı, Şehir: İzmir")
	require.True(t, ok)
	assert.Equal(t, []string{"Klinik", "Şehir"}, table.Headers)
	assert.Equal(t, [][]string{{"Güneş, Diş ve Ağız Sağlığı", "İzmir"}}, table.Rows)
}

func TestParseSummary_LateColumnsPadEarlierRows(t *testing.T) {
	text := "Toplam 2 klinik bulundu.\n- Klinik: A, Durum: Aktif\n- Klinik: B, Durum: Pasif, Şehir: Bursa"
	table, ok := ParseSummary(text)
	require.True(t, ok)
	assert.Equal(t, []string{"Klinik", "Durum", "Şehir"}, table.Headers)
	assert.Equal(t, [][]string{{"A", "Aktif", ""}, {"B", "Pasif", "Bursa"}}, table.Rows)
}

func TestParseSummary_MissingColumnsStayAligned(t *testing.T) {
	text := "Toplam 2 kullanıcı bulundu.\n- Kullanıcı: Ayşe, Bölge: İzmir, Durum: Aktif\n- Kullanıcı: Mehmet, Durum: Aktif"
	table, ok := ParseSummary(text)
	require.True(t, ok)
	assert.Equal(t, [][]string{{"Ayşe", "İzmir", "Aktif"}, {"Mehmet", "", "Aktif"}}, table.Rows)
}

func TestParseSummary_NoMatch(t *testing.T) {
	tests := []string{
		"Belirtilen kriterlere uygun teklif bulunamadı.",
		"Toplam 3 teklif bulundu.",
		"Toplam 3 teklif bulundu.\n... ve 1 teklif daha",
		"- ID: 1, Durum: Taslak",
	}
	for _, text := range tests {
		_, ok := ParseSummary(text)
		assert.False(t, ok, "text %q", text)
	}
}

func TestDetectReply(t *testing.T) {
	text := "Toplam 3 ürün bulundu.\n- Ürün: A, Fiyat: 1,00 TRY\n- Ürün: B, Fiyat: 2,00 TRY\n- Ürün: C, Fiyat: 3,00 TRY"

	res := DetectReply(text, true)
	require.True(t, res.IsTable)
	assert.Equal(t, KindSummary, res.Kind)
	assert.Equal(t, []string{"Ürün", "Fiyat"}, res.Table.Headers)
	assert.Equal(t, "ürün", res.Table.Title)

	// Without retrieval the same text is an ordinary bullet list.
	res = DetectReply(text, false)
	require.True(t, res.IsTable)
	assert.Equal(t, KindList, res.Kind)
	assert.Len(t, res.Table.Rows, 3)
}
