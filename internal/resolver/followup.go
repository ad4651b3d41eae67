package resolver

import (
	"fmt"
	"strconv"

	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/pkg/utils"
)

// followUpResolver answers "detaylar" or "daha fazla bilgi" about the record
// the previous detail answer was grounded on.
type followUpResolver struct{ env *env }

func (r *followUpResolver) Name() string { return "follow_up" }

func (r *followUpResolver) TryResolve(req *Request) (models.Resolution, bool) {
	if req.State == nil || req.State.LastGrounded == nil || !isFollowUp(req.Text) {
		return models.Resolution{}, false
	}
	g := *req.State.LastGrounded
	snap := req.Snapshot

	text, found := "", false
	switch g.Kind {
	case models.KindProposal:
		if id, err := strconv.ParseInt(g.ID, 10, 64); err == nil {
			if p, ok := snap.ProposalByID(id); ok {
				text, found = r.env.proposalDetail(snap, p), true
			}
		}
	case models.KindClinic:
		if c, ok := snap.ClinicByID(g.ID); ok {
			text, found = r.env.clinicDetail(snap, c), true
		}
	case models.KindUser:
		if u, ok := snap.UserByID(g.ID); ok {
			text, found = r.env.userDetail(snap, u), true
		}
	case models.KindProduct:
		if p, ok := snap.ProductByID(g.ID); ok {
			text, found = productPrice(p), true
		}
	case models.KindCampaign:
		if c, ok := snap.CampaignByID(g.ID); ok {
			text, found = r.env.campaignDetail(snap, c), true
		}
	case models.KindVisit:
		for i := range snap.Visits {
			if snap.Visits[i].ID == g.ID {
				text, found = r.env.visitDetail(snap, &snap.Visits[i], "Ziyaret Detayları:"), true
				break
			}
		}
	case models.KindSurgery:
		for i := range snap.SurgeryReports {
			if snap.SurgeryReports[i].ID == g.ID {
				text, found = r.env.surgeryDetail(snap, &snap.SurgeryReports[i]), true
				break
			}
		}
	}

	if !found {
		return models.Resolution{
			Retrieved: true,
			Context:   fmt.Sprintf("Daha önce bahsedilen kayıt (%s) artık bulunamıyor.", g.String()),
		}, true
	}
	return models.Resolution{Retrieved: true, Context: text, Grounded: &g}, true
}

// IsFollowUp reports whether message is only a follow-up cue such as
// "detaylar". Such messages carry no domain words of their own and are
// in-domain only when the conversation has a grounded record.
func IsFollowUp(message string) bool {
	return isFollowUp(utils.Normalize(message))
}
