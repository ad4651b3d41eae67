package resolver

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/internal/timerange"
	"github.com/hyperjump/asistan/pkg/utils"
)

var (
	bareIDPattern   = regexp.MustCompile(`^(\d+)(?:\s+(?:detay|bilgi)\p{L}*)?$`)
	proposalIDForms = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|\s)[iı]d\s*[:=]?\s*(\d+)`),
		regexp.MustCompile(`#(\d+)`),
		regexp.MustCompile(`teklif\s*(?:no|numarası)?\s*[:#]?\s*(\d+)\b`),
		regexp.MustCompile(`(\d+)\s*(?:numaralı|nolu|no'lu|no\.lu)\s+teklif`),
	}
)

// parseProposalID extracts a proposal identifier from normalized text.
func parseProposalID(text string) (int64, bool) {
	if m := bareIDPattern.FindStringSubmatch(text); m != nil {
		return atoi64(m[1])
	}
	for _, re := range proposalIDForms {
		if m := re.FindStringSubmatch(text); m != nil {
			return atoi64(m[1])
		}
	}
	return 0, false
}

func atoi64(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// proposalIDResolver answers "125", "#125", "teklif 125", "125 numaralı teklif".
type proposalIDResolver struct{ env *env }

func (r *proposalIDResolver) Name() string { return "proposal_id" }

func (r *proposalIDResolver) TryResolve(req *Request) (models.Resolution, bool) {
	id, ok := parseProposalID(req.Text)
	if !ok {
		return models.Resolution{}, false
	}
	p, found := req.Snapshot.ProposalByID(id)
	if !found {
		return models.Resolution{
			Retrieved: true,
			Context:   fmt.Sprintf("Teklif #%d bulunamadı. Bu numarayla kayıtlı bir teklif yok.", id),
		}, true
	}
	return models.Resolution{
		Retrieved: true,
		Context:   r.env.proposalDetail(req.Snapshot, p),
		Grounded:  &models.GroundedEntity{Kind: models.KindProposal, ID: strconv.FormatInt(p.ID, 10)},
	}, true
}

func (en *env) proposalDetail(snap *models.Snapshot, p *models.Proposal) string {
	loc := en.clock.Location()
	var b strings.Builder
	fmt.Fprintf(&b, "Teklif #%d Detayları:\n", p.ID)
	fmt.Fprintf(&b, "- Durum: %s\n", proposalStatusLabel(p.Status))
	fmt.Fprintf(&b, "- Klinik: %s\n", snap.ClinicName(p.ClinicID))
	fmt.Fprintf(&b, "- Oluşturan: %s\n", snap.UserName(p.UserID))
	fmt.Fprintf(&b, "- Tarih: %s\n", formatDate(p.CreatedAt, loc))
	fmt.Fprintf(&b, "- Toplam Tutar: %s\n", formatMoney(p.TotalAmount))
	fmt.Fprintf(&b, "- Para Birimi: %s\n", p.Currency)
	if p.CampaignID != "" {
		name := p.CampaignID
		if c, ok := snap.CampaignByID(p.CampaignID); ok {
			name = c.Name
		}
		fmt.Fprintf(&b, "- Kampanya: %s\n", name)
	}

	fmt.Fprintf(&b, "Ürünler (%d):", len(p.Items))
	if len(p.Items) == 0 {
		b.WriteString(" Kalem yok.")
	}
	for i, item := range p.Items {
		name := item.ProductName
		if name == "" {
			name = item.ProductID
			if prod, ok := snap.ProductByID(item.ProductID); ok {
				name = prod.Name
			}
		}
		fmt.Fprintf(&b, "\n  %d. %s", i+1, joinPairs(
			pair{"Ürün", name},
			pair{"Adet", strconv.Itoa(item.Quantity)},
			pair{"Birim Fiyat", formatMoney(item.UnitPrice)},
			pair{"Toplam", formatMoney(item.Total)},
		))
	}

	if p.Installments != nil && p.Installments.Count > 0 {
		down := ""
		if p.Installments.DownPayment > 0 {
			down = formatMoney(p.Installments.DownPayment)
		}
		fmt.Fprintf(&b, "\nTaksit Planı: %s", joinPairs(
			pair{"Taksit Sayısı", strconv.Itoa(p.Installments.Count)},
			pair{"Taksit Tutarı", formatMoney(p.Installments.Amount)},
			pair{"Peşinat", down},
		))
	}
	if strings.TrimSpace(p.Notes) != "" {
		fmt.Fprintf(&b, "\nNotlar: %s", strings.TrimSpace(p.Notes))
	}
	return b.String()
}

func (en *env) proposalRow(snap *models.Snapshot, p *models.Proposal) string {
	return bullet(
		pair{"ID", strconv.FormatInt(p.ID, 10)},
		pair{"Klinik", snap.ClinicName(p.ClinicID)},
		pair{"Oluşturan", snap.UserName(p.UserID)},
		pair{"Durum", proposalStatusLabel(p.Status)},
		pair{"Tutar", formatAmount(p.TotalAmount, p.Currency)},
		pair{"Tarih", formatDate(p.CreatedAt, en.clock.Location())},
	)
}

// inWindow reports whether raw parses and falls inside w. Unparseable
// timestamps are excluded rather than reported.
func (en *env) inWindow(raw string, w timerange.Window) bool {
	t, ok := models.ParseTime(raw, en.clock.Location())
	return ok && w.Contains(t)
}

// recentProposalsResolver answers "son 3 haftadaki teklifler" sorted newest first.
type recentProposalsResolver struct{ env *env }

func (r *recentProposalsResolver) Name() string { return "recent_proposals" }

func (r *recentProposalsResolver) TryResolve(req *Request) (models.Resolution, bool) {
	if !hasStem(req.Text, proposalStems) || !utils.HasToken(req.Text, "son") || isCounting(req.Text) {
		return models.Resolution{}, false
	}
	w := r.env.clock.FromMessageOrDefault(req.Text, r.env.cfg.DefaultWindowDays)
	loc := r.env.clock.Location()

	type dated struct {
		p *models.Proposal
		t time.Time
	}
	var matched []dated
	for i := range req.Snapshot.Proposals {
		p := &req.Snapshot.Proposals[i]
		t, ok := models.ParseTime(p.CreatedAt, loc)
		if !ok || !w.Contains(t) {
			continue
		}
		matched = append(matched, dated{p, t})
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].t.After(matched[j].t) })

	rows := make([]string, len(matched))
	for i, d := range matched {
		rows[i] = r.env.proposalRow(req.Snapshot, d.p)
	}
	filters := joinPairs(pair{"Dönem", w.Label + " (" + formatWindow(w.Start, w.End) + ")"})
	return models.Resolution{
		Retrieved: true,
		Context:   listing("teklif", filters, rows, r.env.cfg.ListCap),
	}, true
}

// proposalListResolver lists proposals filtered by status, clinic, owner, campaign, and period.
type proposalListResolver struct{ env *env }

func (r *proposalListResolver) Name() string { return "proposal_list" }

func (r *proposalListResolver) TryResolve(req *Request) (models.Resolution, bool) {
	if !hasStem(req.Text, proposalStems) || isCounting(req.Text) {
		return models.Resolution{}, false
	}
	snap := req.Snapshot
	var filters []pair

	status, hasStatus := proposalStatusFrom(req.Text)
	if hasStatus {
		filters = append(filters, pair{"Durum", proposalStatusLabel(status)})
	}

	var clinicID string
	if c, ok := r.env.match.Clinic(snap, req.Text); ok {
		clinicID = c.ID
		filters = append(filters, pair{"Klinik", c.Name})
	}

	var userID string
	if isSelf(req.Text) {
		userID = req.User.ID
		filters = append(filters, pair{"Oluşturan", "Siz"})
	} else if u, ok := r.env.match.User(snap, req.Text); ok {
		userID = u.ID
		filters = append(filters, pair{"Oluşturan", u.Name})
	}

	var campaignID string
	if c, ok := r.env.match.Campaign(snap, req.Text); ok {
		campaignID = c.ID
		filters = append(filters, pair{"Kampanya", c.Name})
	}

	w, hasWindow := r.env.clock.FromMessage(req.Text)
	if hasWindow {
		filters = append(filters, pair{"Dönem", w.Label + " (" + formatWindow(w.Start, w.End) + ")"})
	}

	var rows []string
	for i := range snap.Proposals {
		p := &snap.Proposals[i]
		if hasStatus && p.Status != status {
			continue
		}
		if clinicID != "" && p.ClinicID != clinicID {
			continue
		}
		if userID != "" && p.UserID != userID {
			continue
		}
		if campaignID != "" && p.CampaignID != campaignID {
			continue
		}
		if hasWindow && !r.env.inWindow(p.CreatedAt, w) {
			continue
		}
		rows = append(rows, r.env.proposalRow(snap, p))
	}

	return models.Resolution{
		Retrieved: true,
		Context:   listing("teklif", joinPairs(filters...), rows, r.env.cfg.ListCap),
	}, true
}
