package models

import "time"

type FlashCategory string

const (
	FlashSuccess FlashCategory = "success"
	FlashError   FlashCategory = "error"
	FlashInfo    FlashCategory = "info"
)

type Flash struct {
	Category FlashCategory `json:"category"`
	Message  string        `json:"message"`
}

// Principal is the authenticated user summary kept in a session. IsAdmin is
// captured at login and is not refreshed afterwards.
type Principal struct {
	UserID   int64  `json:"userId"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Session is the server-side state behind a session cookie.
type Session struct {
	ID        string     `json:"id"`
	Principal *Principal `json:"principal,omitempty"`
	Flashes   []Flash    `json:"flashes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`

	dirty bool
}

func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, dirty: true}
}

func (s *Session) Authenticated() bool {
	return s.Principal != nil
}

// CurrentPrincipal returns a copy of the principal, or nil when anonymous.
func (s *Session) CurrentPrincipal() *Principal {
	if s.Principal == nil {
		return nil
	}
	p := *s.Principal
	return &p
}

func (s *Session) SignIn(p Principal) {
	s.Principal = &p
	s.dirty = true
}

// Clear drops the principal and any queued flashes.
func (s *Session) Clear() {
	s.Principal = nil
	s.Flashes = nil
	s.dirty = true
}

func (s *Session) AddFlash(category FlashCategory, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
	s.dirty = true
}

// PopFlashes returns the queued flashes and empties the queue.
func (s *Session) PopFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	s.dirty = true
	return out
}

func (s *Session) Dirty() bool {
	return s.dirty
}

func (s *Session) MarkClean() {
	s.dirty = false
}
