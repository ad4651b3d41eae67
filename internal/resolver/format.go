package resolver

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/asistan/internal/models"
)

const dateLayout = "02.01.2006"

// formatMoney renders v with Turkish separators: 1234.5 → "1.234,50".
func formatMoney(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := strconv.FormatInt(cents/100, 10)
	frac := cents % 100

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	fmt.Fprintf(&b, ",%02d", frac)
	return b.String()
}

func formatAmount(v float64, currency string) string {
	if currency == "" {
		return formatMoney(v)
	}
	return formatMoney(v) + " " + currency
}

// formatDate renders a record timestamp as dd.mm.yyyy, or returns it unchanged
// when it cannot be parsed.
func formatDate(raw string, loc *time.Location) string {
	t, ok := models.ParseTime(raw, loc)
	if !ok {
		return raw
	}
	return t.In(loc).Format(dateLayout)
}

func formatWindow(start, end time.Time) string {
	return start.Format(dateLayout) + " - " + end.Format(dateLayout)
}

// pair is a "Key: Value" fragment. Empty values are skipped when joined.
type pair struct {
	key   string
	value string
}

func joinPairs(pairs ...pair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if strings.TrimSpace(p.value) == "" {
			continue
		}
		parts = append(parts, p.key+": "+p.value)
	}
	return strings.Join(parts, ", ")
}

func bullet(pairs ...pair) string {
	return "- " + joinPairs(pairs...)
}

// foundLine is the header every listing starts with.
func foundLine(n int, noun string) string {
	return fmt.Sprintf("Toplam %d %s bulundu.", n, noun)
}

func noneFound(noun string) string {
	return fmt.Sprintf("Belirtilen kriterlere uygun %s bulunamadı.", noun)
}

func moreLine(n int, noun string) string {
	return fmt.Sprintf("... ve %d %s daha", n, noun)
}

// listing renders a "Toplam N ... bulundu." block with at most limit rows and
// a remainder line when truncated. Rows keep the order they are given in.
func listing(noun string, filters string, rows []string, limit int) string {
	if len(rows) == 0 {
		if filters != "" {
			return noneFound(noun) + "\nFiltreler: " + filters
		}
		return noneFound(noun)
	}
	var b strings.Builder
	b.WriteString(foundLine(len(rows), noun))
	b.WriteString("\n")
	if filters != "" {
		b.WriteString("Filtreler: ")
		b.WriteString(filters)
		b.WriteString("\n")
	}
	shown := rows
	if limit > 0 && len(rows) > limit {
		shown = rows[:limit]
	}
	for _, r := range shown {
		b.WriteString(r)
		b.WriteString("\n")
	}
	if len(shown) < len(rows) {
		b.WriteString(moreLine(len(rows)-len(shown), noun))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// section renders a capped sub-list used inside detail answers.
func section(title string, noun string, rows []string, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d):", title, len(rows))
	if len(rows) == 0 {
		b.WriteString(" Kayıt yok.")
		return b.String()
	}
	shown := rows
	if limit > 0 && len(rows) > limit {
		shown = rows[:limit]
	}
	for _, r := range shown {
		b.WriteString("\n  ")
		b.WriteString(r)
	}
	if len(shown) < len(rows) {
		b.WriteString("\n  ")
		b.WriteString(moreLine(len(rows)-len(shown), noun))
	}
	return b.String()
}

func proposalStatusLabel(status string) string {
	switch status {
	case models.ProposalDraft:
		return "Taslak"
	case models.ProposalPending:
		return "Beklemede"
	case models.ProposalSent:
		return "Gönderildi"
	case models.ProposalApproved:
		return "Onaylandı"
	case models.ProposalRejected:
		return "Reddedildi"
	case models.ProposalCancelled:
		return "İptal Edildi"
	default:
		return status
	}
}

func clinicStatusLabel(status string) string {
	switch status {
	case models.ClinicActive:
		return "Aktif"
	case models.ClinicInactive:
		return "Pasif"
	default:
		return status
	}
}

func surgeryStatusLabel(status string) string {
	switch status {
	case models.SurgeryPlanned:
		return "Planlandı"
	case models.SurgeryCompleted:
		return "Tamamlandı"
	default:
		return status
	}
}

func campaignStatusLabel(status string) string {
	switch status {
	case models.CampaignActive:
		return "Aktif"
	case models.CampaignInactive, models.CampaignExpired:
		return "Pasif"
	default:
		return status
	}
}

func yesNo(b bool) string {
	if b {
		return "Evet"
	}
	return "Hayır"
}

func activeLabel(b bool) string {
	if b {
		return "Aktif"
	}
	return "Pasif"
}

func percent(rate float64) string {
	if rate <= 0 {
		return ""
	}
	if rate <= 1 {
		rate = math.Round(rate*10000) / 100
	}
	return "%" + strconv.FormatFloat(rate, 'f', -1, 64)
}
