// README: Per-user conversation state.
package session

import (
	"sync"

	"teaw/internal/category"
	"teaw/internal/place"
)

type Mode string

const (
	ModeNone           Mode = ""
	ModeRouteWithStops Mode = "route_with_stops"
	ModeProvinceSearch Mode = "province_search"
)

// Session holds one user's conversation state. It lives for the process
// lifetime; a greeting resets the fields but keeps the identity.
//
// The embedded mutex serializes turns for the same user id: the chat service
// locks it for the whole turn, so parallel webhook deliveries for one user
// cannot interleave.
type Session struct {
	mu sync.Mutex

	UserID             string
	Mode               Mode
	Origin             string
	Destination        string
	Province           string
	SelectedCategories []category.Category
	LastResults        []place.Place
	WaitingForReview   bool
	CurrentPlace       string
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// ResetState restores the defaults while keeping the session identity.
func (s *Session) ResetState() {
	s.Mode = ModeNone
	s.Origin = ""
	s.Destination = ""
	s.Province = ""
	s.SelectedCategories = nil
	s.LastResults = nil
	s.WaitingForReview = false
	s.CurrentPlace = ""
}

// AddCategory appends a tag unless already selected.
func (s *Session) AddCategory(c category.Category) {
	for _, have := range s.SelectedCategories {
		if have == c {
			return
		}
	}
	s.SelectedCategories = append(s.SelectedCategories, c)
}
