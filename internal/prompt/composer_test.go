package prompt

import (
	"strings"
	"testing"

	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/models"
	"github.com/stretchr/testify/assert"
)

var rep = models.CurrentUser{ID: "u1", Name: "Ayşe Yılmaz", Role: models.RoleSalesRep}

func TestComposer_Persona(t *testing.T) {
	c := NewComposer(&config.AssistantConfig{Name: "Deniz", CompanyName: "Medent"})
	assert.Equal(t, "Sen Medent bünyesinde çalışan Deniz adlı iş asistanısın. Şu anda Ayşe Yılmaz (Satış Temsilcisi) ile konuşuyorsun.",
		c.Persona(rep))
	assert.Contains(t, c.Persona(models.CurrentUser{}), "Şu anda kullanıcı ile konuşuyorsun.")
}

func TestComposer_DefaultPersona(t *testing.T) {
	for _, c := range []*Composer{NewComposer(nil), NewComposer(&config.AssistantConfig{})} {
		assert.True(t, strings.HasPrefix(c.Persona(rep), "Sen şirketimiz bünyesinde çalışan Asistan adlı"))
	}
}

func TestComposer_Grounded(t *testing.T) {
	c := NewComposer(nil)
	res := models.Resolution{Retrieved: true, Context: "Teklif #125 Detayları:\n- Durum: Onaylandı\n"}

	got := c.Compose("  125 numaralı teklif ", res, rep)

	assert.Contains(t, got, "VERİLER:\nTeklif #125 Detayları:\n- Durum: Onaylandı\n\nKULLANICI SORUSU:\n125 numaralı teklif\n\nYANIT KURALLARI:")
	for _, d := range Directives {
		assert.Contains(t, got, "- "+d)
	}
	assert.False(t, strings.HasSuffix(got, "\n"))
	assert.Less(t, strings.Index(got, "VERİLER:"), strings.Index(got, "KULLANICI SORUSU:"))
}

func TestComposer_Generic(t *testing.T) {
	c := NewComposer(nil)

	got := c.Compose("neler yapabilirsin", models.Resolution{Context: "ignored"}, rep)

	assert.Contains(t, got, "eşleşen bir kayıt bulunamadı")
	assert.Contains(t, got, "KULLANICI SORUSU:\nneler yapabilirsin")
	assert.Contains(t, got, "kibarca yardımcı olamayacağını")
	assert.NotContains(t, got, "VERİLER:")
	assert.NotContains(t, got, "ignored")
	assert.Less(t, len(got), len(c.Compose("neler yapabilirsin", models.Resolution{Retrieved: true, Context: "x"}, rep)))
}

func TestComposer_ChatMode(t *testing.T) {
	c := NewComposer(nil)

	sys := c.SystemPrompt(rep)
	assert.Contains(t, sys, "Ayşe Yılmaz")
	assert.Contains(t, sys, Directives[0])

	turn := c.UserTurn("onaylanan teklifler", models.Resolution{Retrieved: true, Context: "Toplam 2 teklif bulundu."})
	assert.Equal(t, "VERİLER:\nToplam 2 teklif bulundu.\n\nKULLANICI SORUSU:\nonaylanan teklifler", turn)

	turn = c.UserTurn("neler yapabilirsin", models.Resolution{})
	assert.True(t, strings.HasPrefix(turn, "neler yapabilirsin\n\n"))
}
