package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/asistan/internal/models"
)

// fieldLines writes "- Key: Value" lines, skipping empty values.
func fieldLines(b *strings.Builder, pairs ...pair) {
	for _, p := range pairs {
		if strings.TrimSpace(p.value) == "" {
			continue
		}
		fmt.Fprintf(b, "- %s: %s\n", p.key, p.value)
	}
}

// clinicDetailResolver answers questions naming a clinic together with a detail cue.
type clinicDetailResolver struct{ env *env }

func (r *clinicDetailResolver) Name() string { return "clinic_detail" }

func (r *clinicDetailResolver) TryResolve(req *Request) (models.Resolution, bool) {
	if !hasStem(req.Text, clinicDetailStems) || asksLastVisit(req.Text) {
		return models.Resolution{}, false
	}
	c, ok := r.env.match.Clinic(req.Snapshot, req.Text)
	if !ok {
		return models.Resolution{}, false
	}
	return models.Resolution{
		Retrieved: true,
		Context:   r.env.clinicDetail(req.Snapshot, c),
		Grounded:  &models.GroundedEntity{Kind: models.KindClinic, ID: c.ID},
	}, true
}

func (en *env) clinicDetail(snap *models.Snapshot, c *models.Clinic) string {
	loc := en.clock.Location()
	w := en.clock.MonthToDate()
	limit := en.cfg.DetailCap

	var b strings.Builder
	fmt.Fprintf(&b, "Klinik Bilgileri: %s\n", c.Name)
	fieldLines(&b,
		pair{"Durum", clinicStatusLabel(c.Status)},
		pair{"Bölge", snap.RegionName(c.RegionID)},
		pair{"Şehir", c.City},
		pair{"İlçe", c.District},
		pair{"Adres", c.Address},
		pair{"Telefon", c.Phone},
		pair{"E-posta", c.Email},
		pair{"Yetkili", c.ContactPerson},
	)
	fmt.Fprintf(&b, "Dönem: %s (%s)\n", w.Label, formatWindow(w.Start, w.End))

	var visits, surgeries, proposals []string
	for i := range snap.Visits {
		v := &snap.Visits[i]
		if v.ClinicID == c.ID && en.inWindow(v.VisitDate, w) {
			visits = append(visits, bullet(
				pair{"Tarih", formatDate(v.VisitDate, loc)},
				pair{"Ziyaret Eden", snap.UserName(v.UserID)},
				pair{"Amaç", v.Purpose},
			))
		}
	}
	for i := range snap.SurgeryReports {
		s := &snap.SurgeryReports[i]
		if s.ClinicID == c.ID && en.inWindow(s.SurgeryDate, w) {
			surgeries = append(surgeries, bullet(
				pair{"Tarih", formatDate(s.SurgeryDate, loc)},
				pair{"Durum", surgeryStatusLabel(s.Status)},
				pair{"İşlem", s.ProcedureType},
			))
		}
	}
	for i := range snap.Proposals {
		p := &snap.Proposals[i]
		if p.ClinicID == c.ID && en.inWindow(p.CreatedAt, w) {
			proposals = append(proposals, bullet(
				pair{"ID", strconv.FormatInt(p.ID, 10)},
				pair{"Durum", proposalStatusLabel(p.Status)},
				pair{"Tutar", formatAmount(p.TotalAmount, p.Currency)},
			))
		}
	}

	b.WriteString(section("Bu Ayki Ziyaretler", "ziyaret", visits, limit))
	b.WriteString("\n")
	b.WriteString(section("Bu Ayki Ameliyatlar", "ameliyat", surgeries, limit))
	b.WriteString("\n")
	b.WriteString(section("Bu Ayki Teklifler", "teklif", proposals, limit))
	return b.String()
}

// clinicListResolver lists clinics filtered by status and region.
type clinicListResolver struct{ env *env }

func (r *clinicListResolver) Name() string { return "clinic_list" }

func (r *clinicListResolver) TryResolve(req *Request) (models.Resolution, bool) {
	if !hasStem(req.Text, clinicStems) || isCounting(req.Text) {
		return models.Resolution{}, false
	}
	if !hasStem(req.Text, listVerbs) && !hasStem(req.Text, clinicPlurals) {
		return models.Resolution{}, false
	}
	snap := req.Snapshot
	var filters []pair

	status, hasStatus := clinicStatusFrom(req.Text)
	if hasStatus {
		filters = append(filters, pair{"Durum", clinicStatusLabel(status)})
	}
	region, hasRegion := r.env.match.Region(snap, req.Text)
	if hasRegion {
		filters = append(filters, pair{"Bölge", region.Name})
	}

	var rows []string
	for i := range snap.Clinics {
		c := &snap.Clinics[i]
		if hasStatus && c.Status != status {
			continue
		}
		if hasRegion && c.RegionID != region.ID {
			continue
		}
		rows = append(rows, clinicRow(snap, c))
	}

	return models.Resolution{
		Retrieved: true,
		Context:   listing("klinik", joinPairs(filters...), rows, r.env.cfg.ClinicListCap),
	}, true
}

func clinicRow(snap *models.Snapshot, c *models.Clinic) string {
	return bullet(
		pair{"Klinik", c.Name},
		pair{"Bölge", snap.RegionName(c.RegionID)},
		pair{"Durum", clinicStatusLabel(c.Status)},
		pair{"Şehir", c.City},
	)
}

// clinicsInRegion counts clinics in a region, optionally by status.
func clinicsInRegion(snap *models.Snapshot, regionID, status string) int {
	n := 0
	for i := range snap.Clinics {
		c := &snap.Clinics[i]
		if regionID != "" && c.RegionID != regionID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		n++
	}
	return n
}
