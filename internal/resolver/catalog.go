package resolver

import (
	"fmt"
	"strings"

	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/pkg/utils"
)

var campaignDetailStems = []string{"detay", "bilgi", "hakkında", "nedir", "koşul", "şart"}

// productListResolver lists catalogue products, or answers a single product's price.
type productListResolver struct{ env *env }

func (r *productListResolver) Name() string { return "product_list" }

func (r *productListResolver) TryResolve(req *Request) (models.Resolution, bool) {
	snap := req.Snapshot
	if hasStem(req.Text, []string{"fiyat"}) {
		if p, ok := r.env.match.Product(snap, req.Text); ok {
			return models.Resolution{
				Retrieved: true,
				Context:   productPrice(p),
				Grounded:  &models.GroundedEntity{Kind: models.KindProduct, ID: p.ID},
			}, true
		}
	}
	if !hasStem(req.Text, productStems) {
		return models.Resolution{}, false
	}
	// "X ürününü içeren kaç teklif var" is a proposal count.
	if isCounting(req.Text) && hasStem(req.Text, proposalStems) {
		return models.Resolution{}, false
	}

	var filters []pair
	category := productCategoryFrom(snap, req.Text)
	if category != "" {
		filters = append(filters, pair{"Kategori", category})
	}
	currency, hasCurrency := currencyFrom(req.Text)
	if hasCurrency {
		filters = append(filters, pair{"Para Birimi", currency})
	}

	var rows []string
	for i := range snap.Products {
		p := &snap.Products[i]
		if category != "" && utils.Normalize(p.Category) != utils.Normalize(category) {
			continue
		}
		if hasCurrency && !strings.EqualFold(p.Currency, currency) {
			continue
		}
		rows = append(rows, bullet(
			pair{"Ürün", p.Name},
			pair{"Kod", p.Code},
			pair{"Kategori", p.Category},
			pair{"Fiyat", formatAmount(p.Price, p.Currency)},
		))
	}

	return models.Resolution{
		Retrieved: true,
		Context:   listing("ürün", joinPairs(filters...), rows, r.env.cfg.ListCap),
	}, true
}

// productCategoryFrom returns the first snapshot category named in text.
func productCategoryFrom(snap *models.Snapshot, text string) string {
	for i := range snap.Products {
		cat := utils.Normalize(snap.Products[i].Category)
		if cat != "" && strings.Contains(text, cat) {
			return snap.Products[i].Category
		}
	}
	return ""
}

func productPrice(p *models.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s fiyatı: %s\n", p.Name, formatAmount(p.Price, p.Currency))
	fieldLines(&b,
		pair{"Kod", p.Code},
		pair{"Kategori", p.Category},
		pair{"Açıklama", p.Description},
	)
	return strings.TrimRight(b.String(), "\n")
}

// campaignListResolver lists campaigns by status and target region, or
// describes a single named campaign.
type campaignListResolver struct{ env *env }

func (r *campaignListResolver) Name() string { return "campaign_list" }

func (r *campaignListResolver) TryResolve(req *Request) (models.Resolution, bool) {
	snap := req.Snapshot
	if hasStem(req.Text, campaignDetailStems) {
		if c, ok := r.env.match.Campaign(snap, req.Text); ok {
			return models.Resolution{
				Retrieved: true,
				Context:   r.env.campaignDetail(snap, c),
				Grounded:  &models.GroundedEntity{Kind: models.KindCampaign, ID: c.ID},
			}, true
		}
	}
	if !hasStem(req.Text, campaignStems) {
		return models.Resolution{}, false
	}

	var filters []pair
	status, hasStatus := campaignStatusFrom(req.Text)
	if hasStatus {
		filters = append(filters, pair{"Durum", campaignStatusLabel(status)})
	}
	region, hasRegion := r.env.match.Region(snap, req.Text)
	if hasRegion {
		filters = append(filters, pair{"Bölge", region.Name})
	}

	loc := r.env.clock.Location()
	var rows []string
	for i := range snap.Campaigns {
		c := &snap.Campaigns[i]
		if hasStatus && normalizedCampaignStatus(c.Status) != status {
			continue
		}
		if hasRegion && !targetsRegion(c, region.ID) {
			continue
		}
		rows = append(rows, bullet(
			pair{"Kampanya", c.Name},
			pair{"Durum", campaignStatusLabel(c.Status)},
			pair{"İndirim", percent(c.DiscountRate)},
			pair{"Başlangıç", formatDate(c.StartDate, loc)},
			pair{"Bitiş", formatDate(c.EndDate, loc)},
			pair{"Bölgeler", campaignRegions(snap, c, " / ")},
		))
	}

	return models.Resolution{
		Retrieved: true,
		Context:   listing("kampanya", joinPairs(filters...), rows, r.env.cfg.ListCap),
	}, true
}

// normalizedCampaignStatus folds expired into inactive.
func normalizedCampaignStatus(status string) string {
	if status == models.CampaignExpired {
		return models.CampaignInactive
	}
	return status
}

// targetsRegion reports whether c applies to regionID. No targets means nationwide.
func targetsRegion(c *models.Campaign, regionID string) bool {
	if len(c.TargetRegionIDs) == 0 {
		return true
	}
	for _, id := range c.TargetRegionIDs {
		if id == regionID {
			return true
		}
	}
	return false
}

func campaignRegions(snap *models.Snapshot, c *models.Campaign, sep string) string {
	if len(c.TargetRegionIDs) == 0 {
		return "Tüm bölgeler"
	}
	names := make([]string, len(c.TargetRegionIDs))
	for i, id := range c.TargetRegionIDs {
		names[i] = snap.RegionName(id)
	}
	return strings.Join(names, sep)
}

func (en *env) campaignDetail(snap *models.Snapshot, c *models.Campaign) string {
	loc := en.clock.Location()
	products := make([]string, 0, len(c.ProductIDs))
	for _, id := range c.ProductIDs {
		if p, ok := snap.ProductByID(id); ok {
			products = append(products, p.Name)
		} else {
			products = append(products, id)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Kampanya Detayları: %s\n", c.Name)
	fieldLines(&b,
		pair{"Açıklama", c.Description},
		pair{"Durum", campaignStatusLabel(c.Status)},
		pair{"İndirim Oranı", percent(c.DiscountRate)},
		pair{"Başlangıç", formatDate(c.StartDate, loc)},
		pair{"Bitiş", formatDate(c.EndDate, loc)},
		pair{"Hedef Bölgeler", campaignRegions(snap, c, ", ")},
		pair{"Ürünler", strings.Join(products, ", ")},
	)
	return strings.TrimRight(b.String(), "\n")
}
