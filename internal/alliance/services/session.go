package services

import (
	"sync"

	"go-armada/internal/alliance/models"
)

// ShipDraft is one ship being configured inside a session.
type ShipDraft struct {
	Hull     models.HullType
	HullSet  bool
	CrewRole string
	RoleSet  bool
}

// Session is the in-progress configuration of a new alliance. Sessions are
// ephemeral: they live in process memory and are dropped on finish, cancel
// or restart.
type Session struct {
	GuildID     string
	UserID      string
	DateISO     string
	StartTime   string
	SaleTime    string
	RightHandID string
	Reuse       bool
	ReuseSet    bool

	MaxShips     int
	Ships        []ShipDraft
	CurrentShip  int
	FleetStarted bool
}

// BasicReady reports whether date, start time and sale time have been provided.
func (s *Session) BasicReady() bool {
	return s.DateISO != "" && s.StartTime != "" && s.SaleTime != ""
}

// FleetReady reports whether every configured ship has a hull and a crew role.
func (s *Session) FleetReady() bool {
	if !s.FleetStarted || len(s.Ships) == 0 {
		return false
	}
	for _, ship := range s.Ships {
		if !ship.HullSet || !ship.RoleSet {
			return false
		}
	}
	return true
}

// Ready reports whether the session can be finalized into an alliance.
func (s *Session) Ready() bool {
	return s.BasicReady() && s.FleetReady() && s.ReuseSet
}

type sessionKey struct {
	guildID string
	userID  string
}

// SessionStore holds configuration sessions keyed by guild and user. One user
// configures at most one alliance per guild at a time; opening a new session
// discards any previous one.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[sessionKey]*Session),
	}
}

// Open starts a fresh session for the user, replacing any existing one.
func (st *SessionStore) Open(guildID, userID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	session := &Session{GuildID: guildID, UserID: userID}
	st.sessions[sessionKey{guildID, userID}] = session
	return session
}

// Get returns the user's session in the guild, or nil when none is open.
func (st *SessionStore) Get(guildID, userID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sessions[sessionKey{guildID, userID}]
}

// Delete removes the user's session in the guild.
func (st *SessionStore) Delete(guildID, userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, sessionKey{guildID, userID})
}

// Update applies fn to the user's session under the store lock.
// It returns false when no session is open.
func (st *SessionStore) Update(guildID, userID string, fn func(*Session)) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[sessionKey{guildID, userID}]
	if !ok {
		return false
	}
	fn(session)
	return true
}

// BeginFleet initializes the ship drafts of a session. The requested fleet
// size is clamped to [1, 6].
func (s *Session) BeginFleet(maxShips int) {
	if maxShips < 1 {
		maxShips = 1
	}
	if maxShips > 6 {
		maxShips = 6
	}

	s.MaxShips = maxShips
	s.Ships = make([]ShipDraft, maxShips)
	s.CurrentShip = 0
	s.FleetStarted = true
}

// SetShipHull records the hull choice for the ship under the cursor.
func (s *Session) SetShipHull(hull models.HullType) bool {
	if !s.FleetStarted || s.CurrentShip >= len(s.Ships) {
		return false
	}
	s.Ships[s.CurrentShip].Hull = hull
	s.Ships[s.CurrentShip].HullSet = true
	return true
}

// SetShipRole records the crew role for the ship under the cursor.
func (s *Session) SetShipRole(role string) bool {
	if !s.FleetStarted || s.CurrentShip >= len(s.Ships) {
		return false
	}
	s.Ships[s.CurrentShip].CrewRole = role
	s.Ships[s.CurrentShip].RoleSet = true
	return true
}

// NextShip advances the cursor to the next ship draft. It reports whether
// another ship remains to configure.
func (s *Session) NextShip() bool {
	if !s.FleetStarted || s.CurrentShip+1 >= len(s.Ships) {
		return false
	}
	s.CurrentShip++
	return true
}
