package resolver

import (
	"fmt"
	"strings"

	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/internal/timerange"
)

var totalValueStems = []string{"tutar", "değer", "ciro", "toplam"}

// aggregateResolver answers counting and total questions. It is the last
// resolver; when no sub-pattern applies the message is not grounded.
type aggregateResolver struct{ env *env }

func (r *aggregateResolver) Name() string { return "aggregate" }

func (r *aggregateResolver) TryResolve(req *Request) (models.Resolution, bool) {
	subs := []func(*Request) (string, bool){
		r.clinicCount,
		r.approvedTotal,
		r.productProposalCount,
		r.proposalStatusCount,
		r.newProposalCount,
		r.visitCount,
	}
	for _, sub := range subs {
		if text, ok := sub(req); ok {
			return models.Resolution{Retrieved: true, Context: text}, true
		}
	}
	return models.Resolution{}, false
}

func (r *aggregateResolver) clinicCount(req *Request) (string, bool) {
	if !hasStem(req.Text, clinicStems) || !isCounting(req.Text) {
		return "", false
	}
	snap := req.Snapshot
	status, hasStatus := clinicStatusFrom(req.Text)

	if region, ok := r.env.match.Region(snap, req.Text); ok {
		if hasStatus {
			return fmt.Sprintf("%s içindeki %s klinik sayısı: %d",
				region.Name, strings.ToLower(clinicStatusLabel(status)), clinicsInRegion(snap, region.ID, status)), true
		}
		return fmt.Sprintf("%s içindeki klinik sayısı: %d (Aktif: %d, Pasif: %d)",
			region.Name,
			clinicsInRegion(snap, region.ID, ""),
			clinicsInRegion(snap, region.ID, models.ClinicActive),
			clinicsInRegion(snap, region.ID, models.ClinicInactive)), true
	}

	if hasStatus {
		return fmt.Sprintf("%s klinik sayısı: %d", clinicStatusLabel(status), clinicsInRegion(snap, "", status)), true
	}
	return fmt.Sprintf("Sistemdeki toplam klinik sayısı: %d (Aktif: %d, Pasif: %d)",
		len(snap.Clinics),
		clinicsInRegion(snap, "", models.ClinicActive),
		clinicsInRegion(snap, "", models.ClinicInactive)), true
}

func (r *aggregateResolver) approvedTotal(req *Request) (string, bool) {
	if !hasStem(req.Text, proposalStems) || !hasStem(req.Text, []string{"onay"}) {
		return "", false
	}
	if !hasStem(req.Text, totalValueStems) && !strings.Contains(req.Text, "ne kadar") {
		return "", false
	}
	if hasStem(req.Text, []string{"kaç", "sayı", "adet"}) {
		return "", false
	}

	// Currencies keep first-seen order.
	var order []string
	sums := map[string]float64{}
	counts := map[string]int{}
	for i := range req.Snapshot.Proposals {
		p := &req.Snapshot.Proposals[i]
		if p.Status != models.ProposalApproved {
			continue
		}
		cur := p.Currency
		if cur == "" {
			cur = "TRY"
		}
		if _, seen := sums[cur]; !seen {
			order = append(order, cur)
		}
		sums[cur] += p.TotalAmount
		counts[cur]++
	}
	if len(order) == 0 {
		return "Onaylanmış teklif bulunmuyor.", true
	}

	var b strings.Builder
	b.WriteString("Onaylanan tekliflerin toplam tutarı:")
	for _, cur := range order {
		fmt.Fprintf(&b, "\n- %s: %s (%d teklif)", cur, formatMoney(sums[cur]), counts[cur])
	}
	return b.String(), true
}

func (r *aggregateResolver) productProposalCount(req *Request) (string, bool) {
	if !hasStem(req.Text, proposalStems) || !isCounting(req.Text) {
		return "", false
	}
	prod, ok := r.env.match.Product(req.Snapshot, req.Text)
	if !ok {
		return "", false
	}
	n := 0
	for i := range req.Snapshot.Proposals {
		for _, item := range req.Snapshot.Proposals[i].Items {
			if item.ProductID == prod.ID {
				n++
				break
			}
		}
	}
	return fmt.Sprintf("%s ürününü içeren teklif sayısı: %d", prod.Name, n), true
}

func (r *aggregateResolver) proposalStatusCount(req *Request) (string, bool) {
	if !hasStem(req.Text, proposalStems) || !isCounting(req.Text) {
		return "", false
	}
	status, ok := proposalStatusFrom(req.Text)
	if !ok {
		return "", false
	}
	w, hasWindow := r.env.clock.FromMessage(req.Text)
	n := 0
	for i := range req.Snapshot.Proposals {
		p := &req.Snapshot.Proposals[i]
		if p.Status != status {
			continue
		}
		if hasWindow && !r.env.inWindow(p.CreatedAt, w) {
			continue
		}
		n++
	}
	if hasWindow {
		return fmt.Sprintf("%s (%s) %s durumundaki teklif sayısı: %d",
			w.Label, formatWindow(w.Start, w.End), proposalStatusLabel(status), n), true
	}
	return fmt.Sprintf("%s durumundaki teklif sayısı: %d", proposalStatusLabel(status), n), true
}

func (r *aggregateResolver) newProposalCount(req *Request) (string, bool) {
	if !hasStem(req.Text, proposalStems) || !isCounting(req.Text) {
		return "", false
	}
	w := r.env.clock.FromMessageOrDefault(req.Text, r.env.cfg.DefaultWindowDays)
	n := r.countInWindow(len(req.Snapshot.Proposals), func(i int) string { return req.Snapshot.Proposals[i].CreatedAt }, w)
	return fmt.Sprintf("%s (%s) oluşturulan teklif sayısı: %d", w.Label, formatWindow(w.Start, w.End), n), true
}

func (r *aggregateResolver) visitCount(req *Request) (string, bool) {
	if !hasStem(req.Text, visitStems) || !isCounting(req.Text) {
		return "", false
	}
	w := r.env.clock.FromMessageOrDefault(req.Text, r.env.cfg.DefaultWindowDays)
	n := r.countInWindow(len(req.Snapshot.Visits), func(i int) string { return req.Snapshot.Visits[i].VisitDate }, w)
	return fmt.Sprintf("%s (%s) yapılan ziyaret sayısı: %d", w.Label, formatWindow(w.Start, w.End), n), true
}

func (r *aggregateResolver) countInWindow(n int, stamp func(int) string, w timerange.Window) int {
	count := 0
	for i := 0; i < n; i++ {
		if r.env.inWindow(stamp(i), w) {
			count++
		}
	}
	return count
}
