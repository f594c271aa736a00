// Package access decides whose numbers a viewer may see. It filters reports
// after they are computed and never takes part in the attribution math.
package access

import (
	"errors"

	"github.com/rpggio/profitability/internal/domain/ledger"
)

var (
	// ErrNotVisible is returned when a viewer asks for a person outside their scope.
	ErrNotVisible = errors.New("person not visible to viewer")
	// ErrRestricted is returned for company-wide reports requested by a non-admin.
	ErrRestricted = errors.New("report restricted to administrators")
)

// Scope is the set of people visible to one viewer.
type Scope struct {
	viewerID string
	all      bool
	visible  map[string]bool
}

// NewScope builds the viewer's scope. Admins see everyone; managers see
// themselves and their active direct reports; anyone else sees only
// themselves. A nil viewer sees nobody.
func NewScope(viewer *ledger.Person, people []ledger.Person) Scope {
	if viewer == nil {
		return Scope{visible: map[string]bool{}}
	}
	s := Scope{viewerID: viewer.ID, all: viewer.Admin, visible: map[string]bool{viewer.ID: true}}
	if s.all {
		return s
	}
	for _, p := range people {
		if p.ManagerID == viewer.ID && p.Active {
			s.visible[p.ID] = true
		}
	}
	return s
}

// All returns a scope that sees everyone, for trusted local callers.
func All() Scope {
	return Scope{all: true, visible: map[string]bool{}}
}

// ViewerID is the person the scope was built for.
func (s Scope) ViewerID() string { return s.viewerID }

// Unrestricted reports whether the scope sees everyone.
func (s Scope) Unrestricted() bool { return s.all }

// CanView reports whether personID is visible.
func (s Scope) CanView(personID string) bool {
	return s.all || s.visible[personID]
}

// Check returns ErrNotVisible unless personID is visible.
func (s Scope) Check(personID string) error {
	if !s.CanView(personID) {
		return ErrNotVisible
	}
	return nil
}

// RequireAll returns ErrRestricted unless the scope sees everyone.
func (s Scope) RequireAll() error {
	if !s.all {
		return ErrRestricted
	}
	return nil
}

// Filter keeps the items whose person is visible.
func Filter[T any](s Scope, items []T, personID func(T) string) []T {
	if s.all {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if s.visible[personID(it)] {
			out = append(out, it)
		}
	}
	return out
}
