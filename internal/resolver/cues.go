package resolver

import (
	"regexp"
	"strings"

	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/pkg/utils"
)

// Stems are matched as token prefixes so Turkish suffixes still match.
var (
	clinicStems   = []string{"klinik", "kilinik", "hastane", "poliklinik"}
	proposalStems = []string{"teklif", "teklıf"}
	surgeryStems  = []string{"ameliyat", "operasyon", "cerrahi"}
	visitStems    = []string{"ziyaret", "ziyeret"}
	productStems  = []string{"ürün", "urun", "katalog"}
	campaignStems = []string{"kampanya", "indirim"}
	teamStems     = []string{"kullanıcı", "kullanici", "ekip", "personel", "temsilci", "çalışan", "müdür"}

	listVerbs = []string{"listele", "liste", "göster", "goster", "getir", "hangi", "tüm", "bütün", "neler", "nelerdir"}

	clinicPlurals = []string{"klinikler", "hastaneler", "poliklinikler"}

	clinicDetailStems = []string{"durum", "bilgi", "detay", "veri", "ziyaret", "teklif", "ameliyat", "hakkında", "adres", "iletişim", "özet"}
	userActivityStems = []string{"aktivite", "performans", "faaliyet", "yaptı", "detay", "özet", "durum"}
	profileStems      = []string{"bilgi", "profil", "iletişim", "telefon", "e-posta", "rol", "detay", "hakkında"}

	followUpPhrases = map[string]struct{}{
		"detay": {}, "detaylar": {}, "detayları": {}, "detaylı": {}, "detay ver": {},
		"bunun detayı": {}, "bunun detayları": {}, "daha fazla bilgi": {}, "devamı": {},
		"daha fazla": {}, "ayrıntı": {}, "ayrıntılar": {},
	}
)

var countingPattern = regexp.MustCompile(`(?:^|\s)kaç(?:\s|$|[.,?!]|tane)|sayı|adet|toplam|ne kadar`)

// isCounting reports whether text asks for a count or a total.
func isCounting(text string) bool {
	return countingPattern.MatchString(text)
}

func hasStem(text string, stems []string) bool {
	return utils.HasTokenPrefix(text, stems...)
}

// isSelf reports whether text restricts results to the caller.
func isSelf(text string) bool {
	if utils.HasToken(text, "benim", "kendi", "kendime") || strings.Contains(text, "bana ait") {
		return true
	}
	for _, tok := range utils.Tokens(text) {
		// "tekliflerim", "ziyaretlerim", "ameliyatlarım"
		if strings.HasSuffix(tok, "lerim") || strings.HasSuffix(tok, "larım") {
			return true
		}
	}
	return false
}

type statusCue struct {
	stems  []string
	status string
}

// Checked in order; "onaylanmayan" style negatives are not modelled.
var proposalStatusCues = []statusCue{
	{[]string{"onay"}, models.ProposalApproved},
	{[]string{"bekle", "beklemede"}, models.ProposalPending},
	{[]string{"red", "redd", "ret"}, models.ProposalRejected},
	{[]string{"taslak"}, models.ProposalDraft},
	{[]string{"gönderil", "gönderdi"}, models.ProposalSent},
	{[]string{"iptal"}, models.ProposalCancelled},
}

func proposalStatusFrom(text string) (string, bool) {
	for _, c := range proposalStatusCues {
		if hasStem(text, c.stems) {
			return c.status, true
		}
	}
	return "", false
}

func clinicStatusFrom(text string) (string, bool) {
	// "inaktif" contains "aktif", so check it first.
	if hasStem(text, []string{"inaktif", "pasif"}) {
		return models.ClinicInactive, true
	}
	if hasStem(text, []string{"aktif"}) {
		return models.ClinicActive, true
	}
	return "", false
}

func surgeryStatusFrom(text string) (string, bool) {
	if hasStem(text, []string{"planlan", "planlı", "yapılacak", "gelecek", "bekleyen"}) {
		return models.SurgeryPlanned, true
	}
	if hasStem(text, []string{"tamamlan", "yapılan", "yapılmış", "gerçekleş"}) {
		return models.SurgeryCompleted, true
	}
	return "", false
}

func campaignStatusFrom(text string) (string, bool) {
	if hasStem(text, []string{"inaktif", "pasif", "biten", "bitmiş", "sona", "süresi", "geçmiş", "eski"}) {
		return models.CampaignInactive, true
	}
	if hasStem(text, []string{"aktif", "güncel", "devam", "geçerli"}) {
		return models.CampaignActive, true
	}
	return "", false
}

var currencyCues = []struct {
	tokens []string
	code   string
}{
	{[]string{"tl", "try", "₺", "lira"}, "TRY"},
	{[]string{"usd", "dolar", "$"}, "USD"},
	{[]string{"eur", "euro", "avro", "€"}, "EUR"},
}

func currencyFrom(text string) (string, bool) {
	for _, c := range currencyCues {
		for _, tok := range c.tokens {
			if utils.HasToken(text, tok) || (len([]rune(tok)) == 1 && strings.Contains(text, tok)) {
				return c.code, true
			}
		}
	}
	return "", false
}

func roleFrom(text string) (models.Role, bool) {
	switch {
	case strings.Contains(text, "bölge müdür"):
		return models.RoleRegionalManager, true
	case hasStem(text, []string{"müdür"}):
		return models.RoleManager, true
	case hasStem(text, []string{"admin", "yönetici"}):
		return models.RoleAdmin, true
	case hasStem(text, []string{"temsilci", "satışçı"}):
		return models.RoleSalesRep, true
	default:
		return "", false
	}
}

func isFollowUp(text string) bool {
	t := strings.Trim(text, " .?!")
	_, ok := followUpPhrases[t]
	return ok
}

// asksLastVisit reports whether text asks for the most recent visit only.
func asksLastVisit(text string) bool {
	return hasStem(text, visitStems) && (strings.Contains(text, "son ziyaret") || strings.Contains(text, "en son"))
}
