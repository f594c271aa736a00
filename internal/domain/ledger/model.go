package ledger

import "time"

// Employment is a person's contracted working fraction.
type Employment string

const (
	FullTime Employment = "full_time"
	PartTime Employment = "part_time"
)

// Fraction returns the share of a full-time schedule.
func (e Employment) Fraction() float64 {
	if e == PartTime {
		return 0.5
	}
	return 1
}

// Person is an employee whose time is booked against clients.
type Person struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Email       string     `json:"email,omitempty" yaml:"email"`
	AreaID      string     `json:"area_id,omitempty" yaml:"area_id"`
	Seniority   string     `json:"seniority,omitempty" yaml:"seniority"`
	ManagerID   string     `json:"manager_id,omitempty" yaml:"manager_id"`
	Admin       bool       `json:"admin,omitempty" yaml:"admin"`
	MonthlyCost float64    `json:"monthly_cost" yaml:"monthly_cost"`
	Employment  Employment `json:"employment" yaml:"employment"`
	Active      bool       `json:"active" yaml:"active"`
}

// ClientKind separates billable clients from internal buckets.
type ClientKind string

const (
	ClientExternal ClientKind = "external"
	// ClientHouse is the firm itself; it absorbs overhead and internal work.
	ClientHouse ClientKind = "house"
	// ClientAggregate groups contracts for bookkeeping and is never ranked.
	ClientAggregate ClientKind = "aggregate"
)

// Client is a customer of the firm.
type Client struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Kind   ClientKind `json:"kind" yaml:"kind"`
	Active bool       `json:"active" yaml:"active"`
}

// Area is an organizational business area.
type Area struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Billing distinguishes recurring contracts from one-off engagements.
type Billing string

const (
	Recurring Billing = "recurring"
	Spot      Billing = "spot"
)

// ContractedService is a billable service contracted by a client.
type ContractedService struct {
	ID           string     `json:"id" yaml:"id"`
	ClientID     string     `json:"client_id" yaml:"client_id"`
	Name         string     `json:"name" yaml:"name"`
	MonthlyValue float64    `json:"monthly_value" yaml:"monthly_value"`
	Billing      Billing    `json:"billing" yaml:"billing"`
	StartDate    *time.Time `json:"start_date,omitempty" yaml:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty" yaml:"end_date"`
	Active       bool       `json:"active" yaml:"active"`
}

// TimeEntry is a block of hours a person booked on a day.
type TimeEntry struct {
	ID        string    `json:"id" yaml:"id"`
	PersonID  string    `json:"person_id" yaml:"person_id"`
	ClientID  string    `json:"client_id" yaml:"client_id"`
	ProjectID string    `json:"project_id,omitempty" yaml:"project_id"`
	AreaID    string    `json:"area_id,omitempty" yaml:"area_id"`
	ServiceID string    `json:"service_id,omitempty" yaml:"service_id"`
	TaskID    string    `json:"task_id,omitempty" yaml:"task_id"`
	Date      time.Time `json:"date" yaml:"date"`
	Hours     float64   `json:"hours" yaml:"hours"`
	Note      string    `json:"note,omitempty" yaml:"note"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// RecognizedRevenue is the revenue recognized for a service in one month.
type RecognizedRevenue struct {
	ServiceID string     `json:"service_id" yaml:"service_id"`
	ClientID  string     `json:"client_id" yaml:"client_id"`
	Year      int        `json:"year" yaml:"year"`
	Month     time.Month `json:"month" yaml:"month"`
	Amount    float64    `json:"amount" yaml:"amount"`
}

// ValueChange records an edit of a service's nominal monthly value.
type ValueChange struct {
	ID            string    `json:"id" yaml:"id"`
	ServiceID     string    `json:"service_id" yaml:"service_id"`
	Previous      float64   `json:"previous" yaml:"previous"`
	New           float64   `json:"new" yaml:"new"`
	EffectiveDate time.Time `json:"effective_date" yaml:"effective_date"`
	Reason        string    `json:"reason,omitempty" yaml:"reason"`
	ChangedBy     string    `json:"changed_by,omitempty" yaml:"changed_by"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// Project groups time entries and invoices under a client.
type Project struct {
	ID              string     `json:"id" yaml:"id"`
	ClientID        string     `json:"client_id" yaml:"client_id"`
	Code            string     `json:"code" yaml:"code"`
	Name            string     `json:"name" yaml:"name"`
	Kind            string     `json:"kind,omitempty" yaml:"kind"`
	Status          string     `json:"status" yaml:"status"`
	StartDate       *time.Time `json:"start_date,omitempty" yaml:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty" yaml:"end_date"`
	Budget          float64    `json:"budget" yaml:"budget"`
	TargetMarginPct float64    `json:"target_margin_pct" yaml:"target_margin_pct"`
}

// Assignment roles.
const (
	RoleLead         = "lead"
	RoleCollaborator = "collaborator"
)

// Assignment binds a person to a project.
type Assignment struct {
	ID                 string     `json:"id" yaml:"id"`
	ProjectID          string     `json:"project_id" yaml:"project_id"`
	PersonID           string     `json:"person_id" yaml:"person_id"`
	Role               string     `json:"role" yaml:"role"`
	EstimatedHours     float64    `json:"estimated_hours" yaml:"estimated_hours"`
	HourlyCostOverride *float64   `json:"hourly_cost_override,omitempty" yaml:"hourly_cost_override"`
	StartDate          *time.Time `json:"start_date,omitempty" yaml:"start_date"`
	Active             bool       `json:"active" yaml:"active"`
}

// Invoice is revenue billed to a client, optionally for a project.
type Invoice struct {
	ID        string    `json:"id" yaml:"id"`
	ClientID  string    `json:"client_id" yaml:"client_id"`
	ProjectID string    `json:"project_id,omitempty" yaml:"project_id"`
	Date      time.Time `json:"date" yaml:"date"`
	Amount    float64   `json:"amount" yaml:"amount"`
	Paid      bool      `json:"paid" yaml:"paid"`
}

// OverheadExpense is a fixed operating cost in currency, not in accounting units.
type OverheadExpense struct {
	ID       string     `json:"id" yaml:"id"`
	Year     int        `json:"year" yaml:"year"`
	Month    time.Month `json:"month" yaml:"month"`
	Concept  string     `json:"concept" yaml:"concept"`
	Category string     `json:"category,omitempty" yaml:"category"`
	Amount   float64    `json:"amount" yaml:"amount"`
	Note     string     `json:"note,omitempty" yaml:"note"`
}
