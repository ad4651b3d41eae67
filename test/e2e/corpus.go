// Package e2e provides end-to-end tests of the assistant pipeline against a generated snapshot.
package e2e

import (
	"fmt"
	"time"

	"github.com/hyperjump/asistan/internal/models"
)

// Now is the pinned clock for every scenario.
var Now = time.Date(2025, time.March, 12, 14, 30, 0, 0, time.UTC)

// Scenario is one message and what the pipeline must do with it.
type Scenario struct {
	Name     string
	Message  string
	UserID   string
	Relevant bool
	Resolver string
	// Contains lists fragments the grounding context must carry.
	Contains []string
	// Grounded is "kind:id" when the answer is about a single record.
	Grounded string
}

// Corpus holds the snapshot and the scenarios run against it.
type Corpus struct {
	Snapshot  *models.Snapshot
	Scenarios []Scenario
}

// BuildCorpus returns a snapshot with twelve active clinics in İzmir Bölgesi
// and two more in Marmara, plus the scenarios exercised end to end.
func BuildCorpus() *Corpus {
	snap := buildSnapshot()
	return &Corpus{Snapshot: snap, Scenarios: buildScenarios()}
}

func buildSnapshot() *models.Snapshot {
	snap := &models.Snapshot{
		Regions: []models.Region{
			{ID: "r1", Name: "İzmir Bölgesi"},
			{ID: "r2", Name: "Marmara Bölgesi"},
		},
		Clinics: []models.Clinic{
			{ID: "c1", Name: "Güneş Diş Kliniği", RegionID: "r1", Status: models.ClinicActive, City: "İzmir", District: "Karşıyaka"},
			{ID: "c2", Name: "Ankara Tıp Merkezi", RegionID: "r2", Status: models.ClinicActive},
			{ID: "c3", Name: "Bursa Dental", RegionID: "r2", Status: models.ClinicInactive},
		},
		Users: []models.User{
			{ID: "u1", Name: "Ayşe Yılmaz", Role: models.RoleSalesRep, RegionID: "r1", Active: true},
			{ID: "u2", Name: "Mehmet Kaya", Role: models.RoleManager, Active: true},
		},
		Products: []models.Product{
			{ID: "p1", Name: "Titanyum İmplant", Code: "IMP-01", Price: 1250, Currency: "TRY"},
		},
		Proposals: []models.Proposal{
			{ID: 125, ClinicID: "c1", UserID: "u1", Status: models.ProposalApproved,
				TotalAmount: 12500, Currency: "TRY", CreatedAt: "2025-03-10T10:00:00Z",
				Items: []models.ProposalItem{{ProductID: "p1", Quantity: 10, UnitPrice: 1250, Total: 12500}}},
			{ID: 126, ClinicID: "c2", UserID: "u2", Status: models.ProposalPending,
				TotalAmount: 800, Currency: "USD", CreatedAt: "2025-03-05"},
		},
		Visits: []models.VisitReport{
			{ID: "v1", ClinicID: "c1", UserID: "u1", VisitDate: "2025-03-10T09:00:00Z", Purpose: "Tanıtım"},
		},
	}
	for i := 1; i <= 11; i++ {
		snap.Clinics = append(snap.Clinics, models.Clinic{
			ID:       fmt.Sprintf("k%02d", i),
			Name:     fmt.Sprintf("Körfez Klinik %02d", i),
			RegionID: "r1",
			Status:   models.ClinicActive,
		})
	}
	return snap
}

func buildScenarios() []Scenario {
	return []Scenario{
		{
			Name:     "proposal by number",
			Message:  "125 numaralı teklif",
			UserID:   "u1",
			Relevant: true,
			Resolver: "proposal_id",
			Contains: []string{"Teklif #125 Detayları:", "Güneş Diş Kliniği", "Ayşe Yılmaz"},
			Grounded: "proposal:125",
		},
		{
			Name:     "active clinics in region",
			Message:  "İzmir bölgesindeki aktif klinikler",
			UserID:   "u2",
			Relevant: true,
			Resolver: "clinic_list",
			Contains: []string{"Toplam 12 klinik bulundu.", "Körfez Klinik 09", "... ve 2 klinik daha"},
		},
		{
			Name:     "clinic detail",
			Message:  "Güneş Diş Kliniği hakkında bilgi",
			UserID:   "u2",
			Relevant: true,
			Resolver: "clinic_detail",
			Contains: []string{"Klinik Bilgileri: Güneş Diş Kliniği"},
			Grounded: "clinic:c1",
		},
		{
			Name:     "clinic count",
			Message:  "kaç klinik var",
			UserID:   "u2",
			Relevant: true,
			Resolver: "aggregate",
			Contains: []string{"Sistemdeki toplam klinik sayısı: 14 (Aktif: 13, Pasif: 1)"},
		},
		{
			Name:    "greeting",
			Message: "merhaba",
		},
		{
			Name:    "out of domain",
			Message: "hava nasıl",
		},
	}
}
