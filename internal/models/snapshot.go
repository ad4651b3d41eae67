// Package models defines the entity snapshot, conversation messages, and resolution results.
package models

// Clinic status values.
const (
	ClinicActive   = "active"
	ClinicInactive = "inactive"
)

// Proposal status codes.
const (
	ProposalDraft     = "draft"
	ProposalPending   = "pending"
	ProposalSent      = "sent"
	ProposalApproved  = "approved"
	ProposalRejected  = "rejected"
	ProposalCancelled = "cancelled"
)

// Surgery report status values.
const (
	SurgeryPlanned   = "planned"
	SurgeryCompleted = "completed"
)

// Campaign status values. Expired campaigns are reported as inactive.
const (
	CampaignActive   = "active"
	CampaignInactive = "inactive"
	CampaignExpired  = "expired"
)

// Clinic is a customer clinic or hospital.
type Clinic struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	RegionID      string `json:"region_id" yaml:"region_id"`
	Status        string `json:"status" yaml:"status"`
	City          string `json:"city,omitempty" yaml:"city,omitempty"`
	District      string `json:"district,omitempty" yaml:"district,omitempty"`
	Address       string `json:"address,omitempty" yaml:"address,omitempty"`
	Phone         string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	ContactPerson string `json:"contact_person,omitempty" yaml:"contact_person,omitempty"`
	CreatedAt     string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// User is an application user (sales representative, manager, admin).
type User struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Role     Role   `json:"role" yaml:"role"`
	RegionID string `json:"region_id,omitempty" yaml:"region_id,omitempty"`
	Active   bool   `json:"active" yaml:"active"`
}

// ProposalItem is one line of a proposal.
type ProposalItem struct {
	ProductID   string  `json:"product_id" yaml:"product_id"`
	ProductName string  `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	Quantity    int     `json:"quantity" yaml:"quantity"`
	UnitPrice   float64 `json:"unit_price" yaml:"unit_price"`
	Total       float64 `json:"total" yaml:"total"`
}

// InstallmentPlan describes how a proposal total is paid.
type InstallmentPlan struct {
	Count       int     `json:"count" yaml:"count"`
	Amount      float64 `json:"amount" yaml:"amount"`
	DownPayment float64 `json:"down_payment,omitempty" yaml:"down_payment,omitempty"`
}

// Proposal is a price offer made to a clinic. IDs are integers.
type Proposal struct {
	ID           int64            `json:"id" yaml:"id"`
	ClinicID     string           `json:"clinic_id" yaml:"clinic_id"`
	UserID       string           `json:"user_id" yaml:"user_id"`
	CampaignID   string           `json:"campaign_id,omitempty" yaml:"campaign_id,omitempty"`
	Status       string           `json:"status" yaml:"status"`
	TotalAmount  float64          `json:"total_amount" yaml:"total_amount"`
	Currency     string           `json:"currency" yaml:"currency"`
	CreatedAt    string           `json:"created_at" yaml:"created_at"`
	Items        []ProposalItem   `json:"items,omitempty" yaml:"items,omitempty"`
	Installments *InstallmentPlan `json:"installments,omitempty" yaml:"installments,omitempty"`
	Notes        string           `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// VisitReport records a field visit to a clinic.
type VisitReport struct {
	ID               string `json:"id" yaml:"id"`
	ClinicID         string `json:"clinic_id" yaml:"clinic_id"`
	UserID           string `json:"user_id" yaml:"user_id"`
	VisitDate        string `json:"visit_date" yaml:"visit_date"`
	Purpose          string `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	ContactPerson    string `json:"contact_person,omitempty" yaml:"contact_person,omitempty"`
	Notes            string `json:"notes,omitempty" yaml:"notes,omitempty"`
	FollowUpRequired bool   `json:"follow_up_required" yaml:"follow_up_required"`
	FollowUpDate     string `json:"follow_up_date,omitempty" yaml:"follow_up_date,omitempty"`
}

// SurgeryReport records a planned or completed surgery using company products.
type SurgeryReport struct {
	ID            string   `json:"id" yaml:"id"`
	ClinicID      string   `json:"clinic_id" yaml:"clinic_id"`
	UserID        string   `json:"user_id" yaml:"user_id"`
	SurgeryDate   string   `json:"surgery_date" yaml:"surgery_date"`
	Status        string   `json:"status" yaml:"status"`
	ProcedureType string   `json:"procedure_type,omitempty" yaml:"procedure_type,omitempty"`
	Surgeon       string   `json:"surgeon,omitempty" yaml:"surgeon,omitempty"`
	ProductIDs    []string `json:"product_ids,omitempty" yaml:"product_ids,omitempty"`
	Notes         string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Product is a catalogue item.
type Product struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Code        string  `json:"code,omitempty" yaml:"code,omitempty"`
	Category    string  `json:"category,omitempty" yaml:"category,omitempty"`
	Price       float64 `json:"price" yaml:"price"`
	Currency    string  `json:"currency" yaml:"currency"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Campaign is a time-boxed discount offer.
type Campaign struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description,omitempty" yaml:"description,omitempty"`
	Status          string   `json:"status" yaml:"status"`
	StartDate       string   `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate         string   `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	DiscountRate    float64  `json:"discount_rate,omitempty" yaml:"discount_rate,omitempty"`
	TargetRegionIDs []string `json:"target_region_ids,omitempty" yaml:"target_region_ids,omitempty"`
	ProductIDs      []string `json:"product_ids,omitempty" yaml:"product_ids,omitempty"`
}

// Region is a named sales region.
type Region struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// StockAssignment records products held by a user.
type StockAssignment struct {
	ID        string `json:"id" yaml:"id"`
	UserID    string `json:"user_id" yaml:"user_id"`
	ProductID string `json:"product_id" yaml:"product_id"`
	Quantity  int    `json:"quantity" yaml:"quantity"`
}

// Snapshot is the read-only set of record collections a resolution runs against.
// Collections keep their fetched order; lookups are linear find-first.
type Snapshot struct {
	Clinics          []Clinic          `json:"clinics" yaml:"clinics"`
	Users            []User            `json:"users" yaml:"users"`
	Proposals        []Proposal        `json:"proposals" yaml:"proposals"`
	Visits           []VisitReport     `json:"visits" yaml:"visits"`
	SurgeryReports   []SurgeryReport   `json:"surgery_reports" yaml:"surgery_reports"`
	Products         []Product         `json:"products" yaml:"products"`
	Campaigns        []Campaign        `json:"campaigns" yaml:"campaigns"`
	Regions          []Region          `json:"regions" yaml:"regions"`
	StockAssignments []StockAssignment `json:"stock_assignments" yaml:"stock_assignments"`
}

// ClinicByID returns the first clinic with the given id.
func (s *Snapshot) ClinicByID(id string) (*Clinic, bool) {
	for i := range s.Clinics {
		if s.Clinics[i].ID == id {
			return &s.Clinics[i], true
		}
	}
	return nil, false
}

// UserByID returns the first user with the given id.
func (s *Snapshot) UserByID(id string) (*User, bool) {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i], true
		}
	}
	return nil, false
}

// ProposalByID returns the first proposal with the given id.
func (s *Snapshot) ProposalByID(id int64) (*Proposal, bool) {
	for i := range s.Proposals {
		if s.Proposals[i].ID == id {
			return &s.Proposals[i], true
		}
	}
	return nil, false
}

// ProductByID returns the first product with the given id.
func (s *Snapshot) ProductByID(id string) (*Product, bool) {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return &s.Products[i], true
		}
	}
	return nil, false
}

// CampaignByID returns the first campaign with the given id.
func (s *Snapshot) CampaignByID(id string) (*Campaign, bool) {
	for i := range s.Campaigns {
		if s.Campaigns[i].ID == id {
			return &s.Campaigns[i], true
		}
	}
	return nil, false
}

// RegionByID returns the first region with the given id.
func (s *Snapshot) RegionByID(id string) (*Region, bool) {
	for i := range s.Regions {
		if s.Regions[i].ID == id {
			return &s.Regions[i], true
		}
	}
	return nil, false
}

// ClinicName returns the clinic's display name, or the id when unknown.
func (s *Snapshot) ClinicName(id string) string {
	if c, ok := s.ClinicByID(id); ok {
		return c.Name
	}
	return unknownName(id)
}

// UserName returns the user's display name, or the id when unknown.
func (s *Snapshot) UserName(id string) string {
	if u, ok := s.UserByID(id); ok {
		return u.Name
	}
	return unknownName(id)
}

// RegionName returns the region's display name, or the id when unknown.
func (s *Snapshot) RegionName(id string) string {
	if r, ok := s.RegionByID(id); ok {
		return r.Name
	}
	return unknownName(id)
}

func unknownName(id string) string {
	if id == "" {
		return "Bilinmiyor"
	}
	return "Bilinmiyor (" + id + ")"
}

// Counts returns the number of records per collection, keyed by collection name.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		"clinics":           len(s.Clinics),
		"users":             len(s.Users),
		"proposals":         len(s.Proposals),
		"visits":            len(s.Visits),
		"surgery_reports":   len(s.SurgeryReports),
		"products":          len(s.Products),
		"campaigns":         len(s.Campaigns),
		"regions":           len(s.Regions),
		"stock_assignments": len(s.StockAssignments),
	}
}
