package models

import (
	"fmt"
	"time"
)

// Role is a user's permission role.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleManager         Role = "manager"
	RoleRegionalManager Role = "regional_manager"
	RoleSalesRep        Role = "sales_rep"
)

// CanViewTeam reports whether the role may list other users.
func (r Role) CanViewTeam() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleRegionalManager:
		return true
	default:
		return false
	}
}

// Label returns the Turkish display label for the role.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Yönetici (Admin)"
	case RoleManager:
		return "Müdür"
	case RoleRegionalManager:
		return "Bölge Müdürü"
	case RoleSalesRep:
		return "Satış Temsilcisi"
	default:
		return string(r)
	}
}

// CurrentUser identifies the caller of a resolution.
type CurrentUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	RegionID string `json:"region_id,omitempty"`
}

// CurrentUserFrom builds a CurrentUser from a snapshot user record.
func CurrentUserFrom(u User) CurrentUser {
	return CurrentUser{ID: u.ID, Name: u.Name, Role: u.Role, RegionID: u.RegionID}
}

// Sender is the author of a conversation message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// DataType tells the display layer how to render a message.
type DataType string

const (
	DataTypeText  DataType = "text"
	DataTypeTable DataType = "table"
)

// TableData is a tabular payload extracted from generated text.
// Row length is not validated against header length.
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Title   string     `json:"title,omitempty"`
}

// Message is one entry in a conversation. Messages are append-only.
type Message struct {
	ID        string     `json:"id"`
	Sender    Sender     `json:"sender"`
	Text      string     `json:"text"`
	Timestamp time.Time  `json:"timestamp"`
	DataType  DataType   `json:"data_type,omitempty"`
	Table     *TableData `json:"table_data,omitempty"`
}

// EntityKind names the collection a grounded entity belongs to.
type EntityKind string

const (
	KindProposal EntityKind = "proposal"
	KindClinic   EntityKind = "clinic"
	KindUser     EntityKind = "user"
	KindVisit    EntityKind = "visit"
	KindSurgery  EntityKind = "surgery"
	KindProduct  EntityKind = "product"
	KindCampaign EntityKind = "campaign"
)

// Valid reports whether k is a known entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case KindProposal, KindClinic, KindUser, KindVisit, KindSurgery, KindProduct, KindCampaign:
		return true
	default:
		return false
	}
}

// GroundedEntity is the last single record a detail answer was about.
type GroundedEntity struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

func (g GroundedEntity) String() string {
	return fmt.Sprintf("%s:%s", g.Kind, g.ID)
}

// ConversationState is the per-conversation state consulted by the resolvers.
type ConversationState struct {
	ID           string          `json:"id"`
	LastGrounded *GroundedEntity `json:"last_grounded,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Resolution is the outcome of the resolver cascade for one message.
// Context is free text inserted into the model prompt; it is never persisted.
type Resolution struct {
	Retrieved bool            `json:"retrieved"`
	Context   string          `json:"context"`
	Resolver  string          `json:"resolver,omitempty"`
	Grounded  *GroundedEntity `json:"grounded,omitempty"`
}
