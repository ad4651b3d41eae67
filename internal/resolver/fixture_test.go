package resolver

import (
	"fmt"
	"testing"
	"time"

	"github.com/hyperjump/asistan/internal/config"
	"github.com/hyperjump/asistan/internal/models"
	"github.com/hyperjump/asistan/internal/timerange"
)

// testNow is Wednesday 12 March 2025, 14:30 UTC. The current week runs
// Monday 10 March to Sunday 16 March.
var testNow = time.Date(2025, time.March, 12, 14, 30, 0, 0, time.UTC)

func testClock() *timerange.Resolver {
	return timerange.New(
		timerange.WithClock(func() time.Time { return testNow }),
		timerange.WithLocation(time.UTC),
	)
}

func newTestEngine(t testing.TB, mutate ...func(*config.ResolverConfig)) *Engine {
	t.Helper()
	cfg := config.Default().Resolver
	cfg.Timezone = "UTC"
	for _, m := range mutate {
		m(&cfg)
	}
	return NewEngine(&cfg, WithClock(testClock()))
}

var (
	salesRep = models.CurrentUser{ID: "u1", Name: "Ayşe Yılmaz", Role: models.RoleSalesRep, RegionID: "r1"}
	manager  = models.CurrentUser{ID: "u2", Name: "Mehmet Kaya", Role: models.RoleManager}
)

func testSnapshot() *models.Snapshot {
	snap := &models.Snapshot{
		Regions: []models.Region{
			{ID: "r1", Name: "İzmir Bölgesi"},
			{ID: "r2", Name: "Marmara Bölgesi"},
		},
		Clinics: []models.Clinic{
			{ID: "c1", Name: "Güneş Diş Kliniği", RegionID: "r1", Status: models.ClinicActive, City: "İzmir", District: "Karşıyaka", Phone: "0232 000 00 00"},
			{ID: "c2", Name: "Ankara Tıp Merkezi", RegionID: "r2", Status: models.ClinicActive},
			{ID: "c3", Name: "Bursa Dental", RegionID: "r2", Status: models.ClinicInactive},
		},
		Users: []models.User{
			{ID: "u1", Name: "Ayşe Yılmaz", Role: models.RoleSalesRep, RegionID: "r1", Active: true, Email: "ayse@example.com"},
			{ID: "u2", Name: "Mehmet Kaya", Role: models.RoleManager, Active: true},
			{ID: "u3", Name: "Zeynep Demir", Role: models.RoleRegionalManager, RegionID: "r2", Active: false, Phone: "0555 111 22 33"},
		},
		Products: []models.Product{
			{ID: "p1", Name: "Titanyum İmplant", Code: "IMP-01", Category: "İmplant", Price: 1250, Currency: "TRY"},
			{ID: "p2", Name: "Kemik Tozu", Code: "GRF-02", Category: "Greft", Price: 80, Currency: "USD"},
			{ID: "p3", Name: "Cerrahi Set", Code: "SET-03", Category: "Set", Price: 400, Currency: "EUR"},
		},
		Campaigns: []models.Campaign{
			{ID: "k1", Name: "Bahar Kampanyası", Status: models.CampaignActive, DiscountRate: 0.15,
				StartDate: "2025-03-01", EndDate: "2025-05-31", TargetRegionIDs: []string{"r1"}, ProductIDs: []string{"p1"}},
			{ID: "k2", Name: "Kış Fırsatı", Status: models.CampaignExpired, DiscountRate: 10,
				StartDate: "2024-12-01", EndDate: "2025-02-28"},
		},
		Proposals: []models.Proposal{
			{ID: 125, ClinicID: "c1", UserID: "u1", CampaignID: "k1", Status: models.ProposalApproved,
				TotalAmount: 12500, Currency: "TRY", CreatedAt: "2025-03-10T10:00:00Z",
				Items:        []models.ProposalItem{{ProductID: "p1", Quantity: 10, UnitPrice: 1250, Total: 12500}},
				Installments: &models.InstallmentPlan{Count: 6, Amount: 2000, DownPayment: 500},
				Notes:        "Acil teslimat"},
			{ID: 126, ClinicID: "c2", UserID: "u2", Status: models.ProposalPending,
				TotalAmount: 800, Currency: "USD", CreatedAt: "2025-03-05",
				Items: []models.ProposalItem{{ProductID: "p2", ProductName: "Kemik Tozu", Quantity: 10, UnitPrice: 80, Total: 800}}},
			{ID: 127, ClinicID: "c1", UserID: "u1", Status: models.ProposalRejected,
				TotalAmount: 400, Currency: "EUR", CreatedAt: "2025-02-15"},
			{ID: 128, ClinicID: "c3", UserID: "u1", Status: models.ProposalApproved,
				TotalAmount: 3000, Currency: "TRY", CreatedAt: "2025-03-11 09:00:00",
				Items: []models.ProposalItem{{ProductID: "p1", Quantity: 2, UnitPrice: 1250, Total: 2500}, {ProductID: "p3", Quantity: 1, UnitPrice: 500, Total: 500}}},
			{ID: 129, ClinicID: "c1", UserID: "u2", Status: models.ProposalDraft,
				TotalAmount: 1000, Currency: "TRY", CreatedAt: "geçersiz tarih"},
		},
		Visits: []models.VisitReport{
			{ID: "v1", ClinicID: "c1", UserID: "u1", VisitDate: "2025-03-10T00:00:00Z", Purpose: "Tanıtım", FollowUpRequired: true, FollowUpDate: "2025-03-20"},
			{ID: "v2", ClinicID: "c1", UserID: "u1", VisitDate: "2025-03-12T11:00:00Z", Purpose: "Sipariş", ContactPerson: "Dr. Ali"},
			{ID: "v3", ClinicID: "c2", UserID: "u2", VisitDate: "2025-03-16T23:59:59.999Z", Purpose: "Eğitim"},
			{ID: "v4", ClinicID: "c1", UserID: "u2", VisitDate: "2025-03-09T23:59:59Z", Purpose: "Takip"},
			{ID: "v5", ClinicID: "c3", UserID: "u1", VisitDate: "bozuk tarih"},
			{ID: "v6", ClinicID: "c1", UserID: "u1", VisitDate: "2025-02-20"},
		},
		SurgeryReports: []models.SurgeryReport{
			{ID: "s1", ClinicID: "c1", UserID: "u1", SurgeryDate: "2025-03-11", Status: models.SurgeryCompleted,
				ProcedureType: "İmplant uygulaması", Surgeon: "Dr. Ali Veli", ProductIDs: []string{"p1"}},
			{ID: "s2", ClinicID: "c2", UserID: "u2", SurgeryDate: "2025-03-20", Status: models.SurgeryPlanned},
		},
		StockAssignments: []models.StockAssignment{
			{ID: "st1", UserID: "u1", ProductID: "p1", Quantity: 5},
		},
	}
	// Eleven more active clinics in İzmir: twelve in total with Güneş.
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
