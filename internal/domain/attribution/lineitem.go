package attribution

import (
	"encoding/json"

	"github.com/rpggio/profitability/internal/domain/ledger"
)

// LineKind tags a LineItem variant.
type LineKind string

const (
	KindService LineKind = "service"
	KindGap     LineKind = "gap"
)

// LineItem is a row of a client's breakdown. It is either a ServiceLine or a
// GapLine; switch on the concrete type to handle both.
type LineItem interface {
	Kind() LineKind
	Label() string
	Revenue() float64
	Cost() float64
	lineItem()
}

// ServiceLine is revenue from a real contracted service.
type ServiceLine struct {
	ServiceID string         `json:"service_id"`
	Name      string         `json:"name"`
	Billing   ledger.Billing `json:"billing"`
	Amount    float64        `json:"revenue"`
	Projected float64        `json:"projected_annual,omitempty"`
}

func (l ServiceLine) Kind() LineKind   { return KindService }
func (l ServiceLine) Label() string    { return l.Name }
func (l ServiceLine) Revenue() float64 { return l.Amount }
func (l ServiceLine) Cost() float64    { return 0 }
func (ServiceLine) lineItem()          {}

// MarshalJSON tags the line with its kind.
func (l ServiceLine) MarshalJSON() ([]byte, error) {
	type plain ServiceLine
	return json.Marshal(struct {
		Kind LineKind `json:"kind"`
		plain
	}{KindService, plain(l)})
}

// GapLine is the synthetic cost of hours people were available but did not book.
type GapLine struct {
	Hours  float64 `json:"hours"`
	Amount float64 `json:"cost"`
}

func (l GapLine) Kind() LineKind   { return KindGap }
func (l GapLine) Label() string    { return "unbooked hours" }
func (l GapLine) Revenue() float64 { return 0 }
func (l GapLine) Cost() float64    { return l.Amount }
func (GapLine) lineItem()          {}

// MarshalJSON tags the line with its kind.
func (l GapLine) MarshalJSON() ([]byte, error) {
	type plain GapLine
	return json.Marshal(struct {
		Kind LineKind `json:"kind"`
		plain
	}{KindGap, plain(l)})
}
