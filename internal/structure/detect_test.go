package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_Marker(t *testing.T) {
	res := Detect("İşte özet: [TABLE: A,B|1,2|3,4] Başka sorunuz var mı?")
	require.True(t, res.IsTable)
	assert.Equal(t, KindMarker, res.Kind)
	assert.Equal(t, []string{"A", "B"}, res.Table.Headers)
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}}, res.Table.Rows)
}

func TestDetect_MarkerWithSpacesAndNewlines(t *testing.T) {
	res := Detect("[TABLE: Klinik , Teklif Sayısı |\n Güneş , 3 | Ankara , 1 ]")
	require.True(t, res.IsTable)
	assert.Equal(t, []string{"Klinik", "Teklif Sayısı"}, res.Table.Headers)
	assert.Equal(t, [][]string{{"Güneş", "3"}, {"Ankara", "1"}}, res.Table.Rows)
}

func TestDetect_MarkdownWithSeparator(t *testing.T) {
	text := "Teklifler:\n\n| ID | Durum |\n|----|-------|\n| 125 | Onaylandı |\n| 126 | Beklemede |\n| 127 | Reddedildi |\n\nİyi çalışmalar."
	res := Detect(text)
	require.True(t, res.IsTable)
	assert.Equal(t, KindMarkdown, res.Kind)
	assert.Len(t, res.Table.Headers, 2)
	assert.Len(t, res.Table.Rows, 3)
	assert.Equal(t, []string{"ID", "Durum"}, res.Table.Headers)
	assert.Equal(t, []string{"127", "Reddedildi"}, res.Table.Rows[2])
}

func TestDetect_MarkdownAlignmentSeparator(t *testing.T) {
	res := Detect("| A | B |\n| :--- | ---: |\n| 1 | 2 |")
	require.True(t, res.IsTable)
	assert.Equal(t, [][]string{{"1", "2"}}, res.Table.Rows)
}

func TestDetect_MarkdownWithoutSeparator(t *testing.T) {
	res := Detect("Ad | Değer\nx | 1\ny | 2")
	require.True(t, res.IsTable)
	assert.Equal(t, []string{"Ad", "Değer"}, res.Table.Headers)
	assert.Equal(t, [][]string{{"x", "1"}, {"y", "2"}}, res.Table.Rows)
}

func TestDetect_RowLengthNotValidated(t *testing.T) {
	res := Detect("| A | B |\n|---|---|\n| 1 | 2 | 3 |\n| 4 |")
	require.True(t, res.IsTable)
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4"}}, res.Table.Rows)
}

func TestDetect_List(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]string
	}{
		{"dashes", "Ürünler:\n- Titanyum İmplant\n- Kemik Tozu\n- Cerrahi Set", [][]string{{"Titanyum İmplant"}, {"Kemik Tozu"}, {"Cerrahi Set"}}},
		{"numbers", "1. Bir\n2. İki\n3. Üç\n4. Dört", [][]string{{"Bir"}, {"İki"}, {"Üç"}, {"Dört"}}},
		{"mixed markers", "* a\n• b\n- c", [][]string{{"a"}, {"b"}, {"c"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Detect(tt.text)
			require.True(t, res.IsTable)
			assert.Equal(t, KindList, res.Kind)
			assert.Equal(t, ListTitle, res.Table.Title)
			assert.Equal(t, []string{ListTitle}, res.Table.Headers)
			assert.Equal(t, tt.want, res.Table.Rows)
		})
	}
}

func TestDetect_PlainText(t *testing.T) {
	tests := []string{
		"",
		"Merhaba, size nasıl yardımcı olabilirim?",
		"- sadece\n- iki madde",
		"Tek satır | boru içeriyor",
		"2025 yılında 3 teklif onaylandı.",
	}
	for _, text := range tests {
		res := Detect(text)
		assert.False(t, res.IsTable, "text %q", text)
		assert.Equal(t, KindNone, res.Kind)
		assert.Nil(t, res.Table)
	}
}

func TestDetect_MarkerWinsOverList(t *testing.T) {
	res := Detect("- a\n- b\n- c\n[TABLE: X|1]")
	assert.Equal(t, KindMarker, res.Kind)
	assert.Equal(t, [][]string{{"1"}}, res.Table.Rows)
}
