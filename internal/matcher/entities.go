package matcher

import (
	"strings"

	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/pkg/utils"
)

func clinicName(c *models.Clinic) string     { return c.Name }
func userName(u *models.User) string         { return u.Name }
func productName(p *models.Product) string   { return p.Name }
func campaignName(c *models.Campaign) string { return c.Name }

// Clinic returns the first clinic named in message.
func (m *Matcher) Clinic(snap *models.Snapshot, message string) (*models.Clinic, bool) {
	if m.fuzzyClinics {
		return FindFirstFuzzy(snap.Clinics, clinicName, message)
	}
	return FindFirstByName(snap.Clinics, clinicName, message)
}

// User returns the first user whose full name appears in message.
func (m *Matcher) User(snap *models.Snapshot, message string) (*models.User, bool) {
	return FindFirstByName(snap.Users, userName, message)
}

// Product returns the first product named in message.
func (m *Matcher) Product(snap *models.Snapshot, message string) (*models.Product, bool) {
	return FindFirstByName(snap.Products, productName, message)
}

// Campaign returns the first campaign named in message.
func (m *Matcher) Campaign(snap *models.Snapshot, message string) (*models.Campaign, bool) {
	return FindFirstByName(snap.Campaigns, campaignName, message)
}

// Region resolves the region a message refers to. It tries, in order, the
// full region name, the region name without "bölgesi", and the province map.
func (m *Matcher) Region(snap *models.Snapshot, message string) (*models.Region, bool) {
	msg := utils.Normalize(message)
	if msg == "" {
		return nil, false
	}

	for i := range snap.Regions {
		name := utils.Normalize(snap.Regions[i].Name)
		if name != "" && strings.Contains(msg, name) {
			return &snap.Regions[i], true
		}
	}

	for i := range snap.Regions {
		base := regionBase(snap.Regions[i].Name)
		if len([]rune(base)) < 3 {
			continue
		}
		if strings.Contains(base, " ") {
			if strings.Contains(msg, base) {
				return &snap.Regions[i], true
			}
			continue
		}
		if utils.HasTokenPrefix(msg, base) {
			return &snap.Regions[i], true
		}
	}

	if m.regions == nil {
		return nil, false
	}
	target, ok := m.regions.Lookup(msg)
	if !ok {
		return nil, false
	}
	for i := range snap.Regions {
		name := utils.Normalize(snap.Regions[i].Name)
		if name == target || regionBase(snap.Regions[i].Name) == regionBase(target) {
			return &snap.Regions[i], true
		}
	}
	return nil, false
}

// regionBase returns the normalized region name without the "bölgesi" suffix.
func regionBase(name string) string {
	n := utils.Normalize(name)
	n = strings.TrimSuffix(n, " bölgesi")
	n = strings.TrimSuffix(n, " bölge")
	return strings.TrimSpace(n)
}
