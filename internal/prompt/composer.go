// Package prompt assembles the instructions sent to the generative backend.
package prompt

import (
	"fmt"
	"strings"

	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/models"
)

// Directives are the formatting rules appended to grounded prompts.
var Directives = []string{
	"Bölüm başlıklarını kalın yaz (**Başlık**).",
	"Birden fazla kayıt varsa madde işaretli liste kullan (- ile başlayan satırlar).",
	"Bölümler arasında bir boş satır bırak.",
	"Tablo gerekiyorsa [TABLE: Başlık1,Başlık2|değer1,değer2] biçimini kullan.",
	"Yalnızca verilen verilere dayan; veride olmayan bilgiyi uydurma.",
	"Yanıtı Türkçe ver.",
}

// Composer builds prompts around a resolution.
type Composer struct {
	assistantName string
	companyName   string
}

// NewComposer creates a composer. A nil cfg uses the default persona.
func NewComposer(cfg *config.AssistantConfig) *Composer {
	c := config.Default().Assistant
	if cfg != nil {
		if cfg.Name != "" {
			c.Name = cfg.Name
		}
		if cfg.CompanyName != "" {
			c.CompanyName = cfg.CompanyName
		}
	}
	return &Composer{assistantName: c.Name, companyName: c.CompanyName}
}

// Persona returns the opening line naming the assistant and the caller.
func (c *Composer) Persona(user models.CurrentUser) string {
	name := strings.TrimSpace(user.Name)
	if name == "" {
		name = "kullanıcı"
	}
	role := ""
	if user.Role != "" {
		role = " (" + user.Role.Label() + ")"
	}
	return fmt.Sprintf("Sen %s bünyesinde çalışan %s adlı iş asistanısın. Şu anda %s%s ile konuşuyorsun.",
		c.companyName, c.assistantName, name, role)
}

// Compose returns the single-turn instruction for message. Retrieved
// resolutions get the grounded template; everything else gets the shorter
// generic template.
func (c *Composer) Compose(message string, res models.Resolution, user models.CurrentUser) string {
	if !res.Retrieved {
		return c.generic(message, user)
	}
	var b strings.Builder
	b.WriteString(c.Persona(user))
	b.WriteString("\n\nAşağıdaki veriler sistemden alınmıştır:\n\nVERİLER:\n")
	b.WriteString(strings.TrimSpace(res.Context))
	b.WriteString("\n\nKULLANICI SORUSU:\n")
	b.WriteString(strings.TrimSpace(message))
	b.WriteString("\n\nYANIT KURALLARI:\n")
	for _, d := range Directives {
		b.WriteString("- ")
		b.WriteString(d)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Composer) generic(message string, user models.CurrentUser) string {
	var b strings.Builder
	b.WriteString(c.Persona(user))
	b.WriteString("\n\nBu soru için sistemde eşleşen bir kayıt bulunamadı.\n\nKULLANICI SORUSU:\n")
	b.WriteString(strings.TrimSpace(message))
	b.WriteString("\n\nSoru klinikler, teklifler, ziyaretler, ameliyat raporları, ürünler, kampanyalar veya ekiple ilgiliyse ")
	b.WriteString("genel bir yanıt ver ve daha kesin bir yanıt için hangi bilgilerin gerektiğini belirt. ")
	b.WriteString("Soru iş kapsamı dışındaysa kibarca yardımcı olamayacağını söyle. Yanıtı Türkçe ver.")
	return b.String()
}

// SystemPrompt is used in chat mode, where history is sent as separate turns
// and the grounded data travels with the latest user turn.
func (c *Composer) SystemPrompt(user models.CurrentUser) string {
	var b strings.Builder
	b.WriteString(c.Persona(user))
	b.WriteString("\nKullanıcının iş verileriyle ilgili sorularını yanıtlarsın. Kurallar:\n")
	for _, d := range Directives {
		b.WriteString("- ")
		b.WriteString(d)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// UserTurn is the latest user turn in chat mode: the question, preceded by
// the grounding data when there is any.
func (c *Composer) UserTurn(message string, res models.Resolution) string {
	message = strings.TrimSpace(message)
	if !res.Retrieved {
		return message + "\n\n(Bu soru için sistemde eşleşen kayıt bulunamadı.)"
	}
	return "VERİLER:\n" + strings.TrimSpace(res.Context) + "\n\nKULLANICI SORUSU:\n" + message
}
