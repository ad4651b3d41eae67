package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/asistan/internal/models"
)

const accessDenied = "Bu bilgiye erişim yetkiniz bulunmuyor. Ekip bilgilerini yalnızca yönetici, müdür ve bölge müdürleri görüntüleyebilir."

// userDetailResolver answers questions naming a user together with an activity cue.
type userDetailResolver struct{ env *env }

func (r *userDetailResolver) Name() string { return "user_detail" }

func (r *userDetailResolver) TryResolve(req *Request) (models.Resolution, bool) {
	if !hasStem(req.Text, userActivityStems) {
		return models.Resolution{}, false
	}
	u, ok := r.env.match.User(req.Snapshot, req.Text)
	if !ok {
		return models.Resolution{}, false
	}
	return models.Resolution{
		Retrieved: true,
		Context:   r.env.userDetail(req.Snapshot, u),
		Grounded:  &models.GroundedEntity{Kind: models.KindUser, ID: u.ID},
	}, true
}

func (en *env) userProfile(b *strings.Builder, snap *models.Snapshot, u *models.User) {
	fmt.Fprintf(b, "Kullanıcı Bilgileri: %s\n", u.Name)
	region := ""
	if u.RegionID != "" {
		region = snap.RegionName(u.RegionID)
	}
	fieldLines(b,
		pair{"Rol", u.Role.Label()},
		pair{"Bölge", region},
		pair{"E-posta", u.Email},
		pair{"Telefon", u.Phone},
		pair{"Durum", activeLabel(u.Active)},
	)
}

func (en *env) userDetail(snap *models.Snapshot, u *models.User) string {
	loc := en.clock.Location()
	w := en.clock.MonthToDate()
	limit := en.cfg.DetailCap

	var b strings.Builder
	en.userProfile(&b, snap, u)
	fmt.Fprintf(&b, "Dönem: %s (%s)\n", w.Label, formatWindow(w.Start, w.End))

	var proposals, visits, surgeries []string
	for i := range snap.Proposals {
		p := &snap.Proposals[i]
		if p.UserID == u.ID && en.inWindow(p.CreatedAt, w) {
			proposals = append(proposals, bullet(
				pair{"ID", strconv.FormatInt(p.ID, 10)},
				pair{"Klinik", snap.ClinicName(p.ClinicID)},
				pair{"Durum", proposalStatusLabel(p.Status)},
				pair{"Tutar", formatAmount(p.TotalAmount, p.Currency)},
			))
		}
	}
	for i := range snap.Visits {
		v := &snap.Visits[i]
		if v.UserID == u.ID && en.inWindow(v.VisitDate, w) {
			visits = append(visits, bullet(
				pair{"Tarih", formatDate(v.VisitDate, loc)},
				pair{"Klinik", snap.ClinicName(v.ClinicID)},
				pair{"Amaç", v.Purpose},
			))
		}
	}
	for i := range snap.SurgeryReports {
		s := &snap.SurgeryReports[i]
		if s.UserID == u.ID && en.inWindow(s.SurgeryDate, w) {
			surgeries = append(surgeries, bullet(
				pair{"Tarih", formatDate(s.SurgeryDate, loc)},
				pair{"Klinik", snap.ClinicName(s.ClinicID)},
				pair{"Durum", surgeryStatusLabel(s.Status)},
			))
		}
	}

	b.WriteString(section("Bu Ayki Teklifler", "teklif", proposals, limit))
	b.WriteString("\n")
	b.WriteString(section("Bu Ayki Ziyaretler", "ziyaret", visits, limit))
	b.WriteString("\n")
	b.WriteString(section("Bu Ayki Ameliyat Raporları", "rapor", surgeries, limit))

	if en.cfg.IncludeStockInUserDetail {
		var stock []string
		for i := range snap.StockAssignments {
			s := &snap.StockAssignments[i]
			if s.UserID != u.ID {
				continue
			}
			name := s.ProductID
			if p, ok := snap.ProductByID(s.ProductID); ok {
				name = p.Name
			}
			stock = append(stock, bullet(pair{"Ürün", name}, pair{"Adet", strconv.Itoa(s.Quantity)}))
		}
		b.WriteString("\n")
		b.WriteString(section("Stoktaki Ürünler", "ürün", stock, limit))
	}
	return b.String()
}

// userListResolver lists the team. Listing is limited to roles that can view
// the team; a single named profile is visible to everyone.
type userListResolver struct{ env *env }

func (r *userListResolver) Name() string { return "user_list" }

func (r *userListResolver) TryResolve(req *Request) (models.Resolution, bool) {
	snap := req.Snapshot
	if hasStem(req.Text, profileStems) {
		if u, ok := r.env.match.User(snap, req.Text); ok {
			var b strings.Builder
			r.env.userProfile(&b, snap, u)
			return models.Resolution{
				Retrieved: true,
				Context:   strings.TrimRight(b.String(), "\n"),
				Grounded:  &models.GroundedEntity{Kind: models.KindUser, ID: u.ID},
			}, true
		}
	}

	if !hasStem(req.Text, teamStems) {
		return models.Resolution{}, false
	}
	if !req.User.Role.CanViewTeam() {
		return models.Resolution{Retrieved: true, Context: accessDenied}, true
	}

	var filters []pair
	region, hasRegion := r.env.match.Region(snap, req.Text)
	if hasRegion {
		filters = append(filters, pair{"Bölge", region.Name})
	}
	role, hasRole := roleFrom(req.Text)
	if hasRole {
		filters = append(filters, pair{"Rol", role.Label()})
	}

	var rows []string
	for i := range snap.Users {
		u := &snap.Users[i]
		if hasRegion && u.RegionID != region.ID {
			continue
		}
		if hasRole && u.Role != role {
			continue
		}
		regionName := ""
		if u.RegionID != "" {
			regionName = snap.RegionName(u.RegionID)
		}
		rows = append(rows, bullet(
			pair{"Kullanıcı", u.Name},
			pair{"Rol", u.Role.Label()},
			pair{"Bölge", regionName},
			pair{"Durum", activeLabel(u.Active)},
		))
	}

	return models.Resolution{
		Retrieved: true,
		Context:   listing("kullanıcı", joinPairs(filters...), rows, r.env.cfg.ListCap),
	}, true
}
