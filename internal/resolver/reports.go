package resolver

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/asistan/internal/models"
)

// surgeryListResolver lists surgery reports filtered by status, clinic, owner, and period.
type surgeryListResolver struct{ env *env }

func (r *surgeryListResolver) Name() string { return "surgery_list" }

func (r *surgeryListResolver) TryResolve(req *Request) (models.Resolution, bool) {
	if !hasStem(req.Text, surgeryStems) {
		return models.Resolution{}, false
	}
	snap := req.Snapshot
	loc := r.env.clock.Location()
	var filters []pair

	status, hasStatus := surgeryStatusFrom(req.Text)
	if hasStatus {
		filters = append(filters, pair{"Durum", surgeryStatusLabel(status)})
	}
	var clinicID string
	if c, ok := r.env.match.Clinic(snap, req.Text); ok {
		clinicID = c.ID
		filters = append(filters, pair{"Klinik", c.Name})
	}
	var userID string
	if isSelf(req.Text) {
		userID = req.User.ID
		filters = append(filters, pair{"Raporlayan", "Siz"})
	}
	w, hasWindow := r.env.clock.FromMessage(req.Text)
	if hasWindow {
		filters = append(filters, pair{"Dönem", w.Label + " (" + formatWindow(w.Start, w.End) + ")"})
	}

	var rows []string
	var lastID string
	for i := range snap.SurgeryReports {
		s := &snap.SurgeryReports[i]
		if hasStatus && s.Status != status {
			continue
		}
		if clinicID != "" && s.ClinicID != clinicID {
			continue
		}
		if userID != "" && s.UserID != userID {
			continue
		}
		if hasWindow && !r.env.inWindow(s.SurgeryDate, w) {
			continue
		}
		lastID = s.ID
		rows = append(rows, bullet(
			pair{"ID", s.ID},
			pair{"Klinik", snap.ClinicName(s.ClinicID)},
			pair{"Tarih", formatDate(s.SurgeryDate, loc)},
			pair{"Durum", surgeryStatusLabel(s.Status)},
			pair{"İşlem", s.ProcedureType},
			pair{"Cerrah", s.Surgeon},
			pair{"Raporlayan", snap.UserName(s.UserID)},
		))
	}

	res := models.Resolution{
		Retrieved: true,
		Context:   listing("ameliyat raporu", joinPairs(filters...), rows, r.env.cfg.ListCap),
	}
	if len(rows) == 1 {
		res.Grounded = &models.GroundedEntity{Kind: models.KindSurgery, ID: lastID}
	}
	return res, true
}

// visitListResolver lists visit reports, or the most recent visit to a named clinic.
type visitListResolver struct{ env *env }

func (r *visitListResolver) Name() string { return "visit_list" }

func (r *visitListResolver) TryResolve(req *Request) (models.Resolution, bool) {
	if !hasStem(req.Text, visitStems) || isCounting(req.Text) {
		return models.Resolution{}, false
	}
	snap := req.Snapshot
	clinic, hasClinic := r.env.match.Clinic(snap, req.Text)

	var filters []pair
	if hasClinic {
		filters = append(filters, pair{"Klinik", clinic.Name})
	}
	var userID string
	if isSelf(req.Text) {
		userID = req.User.ID
		filters = append(filters, pair{"Ziyaret Eden", "Siz"})
	}
	followUp := hasStem(req.Text, []string{"takip"})
	if followUp {
		filters = append(filters, pair{"Takip Gerekli", "Evet"})
	}
	w, hasWindow := r.env.clock.FromMessage(req.Text)
	if hasWindow {
		filters = append(filters, pair{"Dönem", w.Label + " (" + formatWindow(w.Start, w.End) + ")"})
	}

	var matched []*models.VisitReport
	for i := range snap.Visits {
		v := &snap.Visits[i]
		if hasClinic && v.ClinicID != clinic.ID {
			continue
		}
		if userID != "" && v.UserID != userID {
			continue
		}
		if followUp && !v.FollowUpRequired {
			continue
		}
		if hasWindow && !r.env.inWindow(v.VisitDate, w) {
			continue
		}
		matched = append(matched, v)
	}

	if hasClinic && asksLastVisit(req.Text) {
		return r.lastVisit(snap, clinic, matched), true
	}

	rows := make([]string, 0, len(matched))
	for _, v := range matched {
		rows = append(rows, r.env.visitRow(snap, v))
	}

	return models.Resolution{
		Retrieved: true,
		Context:   listing("ziyaret", joinPairs(filters...), rows, r.env.cfg.ListCap),
	}, true
}

func (en *env) visitRow(snap *models.Snapshot, v *models.VisitReport) string {
	return bullet(
		pair{"Tarih", formatDate(v.VisitDate, en.clock.Location())},
		pair{"Klinik", snap.ClinicName(v.ClinicID)},
		pair{"Ziyaret Eden", snap.UserName(v.UserID)},
		pair{"Amaç", v.Purpose},
		pair{"Takip Gerekli", yesNo(v.FollowUpRequired)},
	)
}

// lastVisit picks the newest dated visit among the already filtered ones.
func (r *visitListResolver) lastVisit(snap *models.Snapshot, c *models.Clinic, matched []*models.VisitReport) models.Resolution {
	loc := r.env.clock.Location()
	type dated struct {
		v *models.VisitReport
		t time.Time
	}
	var visits []dated
	for _, v := range matched {
		if t, ok := models.ParseTime(v.VisitDate, loc); ok {
			visits = append(visits, dated{v, t})
		}
	}
	if len(visits) == 0 {
		return models.Resolution{
			Retrieved: true,
			Context:   fmt.Sprintf("%s için kayıtlı ziyaret bulunamadı.", c.Name),
		}
	}
	sort.SliceStable(visits, func(i, j int) bool { return visits[i].t.After(visits[j].t) })

	latest := visits[0]
	title := fmt.Sprintf("%s için son ziyaret (%s):", c.Name, latest.t.Format(dateLayout))
	return models.Resolution{
		Retrieved: true,
		Context:   r.env.visitDetail(snap, latest.v, title),
		Grounded:  &models.GroundedEntity{Kind: models.KindVisit, ID: latest.v.ID},
	}
}

func (en *env) visitDetail(snap *models.Snapshot, v *models.VisitReport, title string) string {
	loc := en.clock.Location()
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	followUpDate := ""
	if v.FollowUpRequired && v.FollowUpDate != "" {
		followUpDate = formatDate(v.FollowUpDate, loc)
	}
	fieldLines(&b,
		pair{"Tarih", formatDate(v.VisitDate, loc)},
		pair{"Klinik", snap.ClinicName(v.ClinicID)},
		pair{"Ziyaret Eden", snap.UserName(v.UserID)},
		pair{"Amaç", v.Purpose},
		pair{"Görüşülen Kişi", v.ContactPerson},
		pair{"Notlar", v.Notes},
		pair{"Takip Gerekli", yesNo(v.FollowUpRequired)},
		pair{"Takip Tarihi", followUpDate},
	)
	return strings.TrimRight(b.String(), "\n")
}

func (en *env) surgeryDetail(snap *models.Snapshot, s *models.SurgeryReport) string {
	loc := en.clock.Location()
	products := make([]string, 0, len(s.ProductIDs))
	for _, id := range s.ProductIDs {
		if p, ok := snap.ProductByID(id); ok {
			products = append(products, p.Name)
		} else {
			products = append(products, id)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Ameliyat Raporu %s:\n", s.ID)
	fieldLines(&b,
		pair{"Klinik", snap.ClinicName(s.ClinicID)},
		pair{"Tarih", formatDate(s.SurgeryDate, loc)},
		pair{"Durum", surgeryStatusLabel(s.Status)},
		pair{"İşlem", s.ProcedureType},
		pair{"Cerrah", s.Surgeon},
		pair{"Kullanılan Ürünler", strings.Join(products, ", ")},
		pair{"Raporlayan", snap.UserName(s.UserID)},
		pair{"Notlar", s.Notes},
	)
	return strings.TrimRight(b.String(), "\n")
}
