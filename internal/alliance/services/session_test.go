package services

import (
	"testing"

	"go-armada/internal/alliance/models"

	"github.com/stretchr/testify/assert"
)

func TestSessionStoreOpenReplacesExisting(t *testing.T) {
	store := NewSessionStore()

	first := store.Open("guild-1", "user-1")
	first.DateISO = "2025-11-18"

	second := store.Open("guild-1", "user-1")
	assert.NotSame(t, first, second)
	assert.Empty(t, second.DateISO, "reopening must discard previous progress")
}

func TestSessionStoreKeyedByGuildAndUser(t *testing.T) {
	store := NewSessionStore()

	store.Open("guild-1", "user-1")
	store.Open("guild-2", "user-1")
	store.Open("guild-1", "user-2")

	assert.NotNil(t, store.Get("guild-1", "user-1"))
	assert.NotNil(t, store.Get("guild-2", "user-1"))
	assert.NotNil(t, store.Get("guild-1", "user-2"))
	assert.Nil(t, store.Get("guild-2", "user-2"))

	store.Delete("guild-1", "user-1")
	assert.Nil(t, store.Get("guild-1", "user-1"))
	assert.NotNil(t, store.Get("guild-2", "user-1"), "delete must not leak across guilds")
}

func TestSessionStoreUpdate(t *testing.T) {
	store := NewSessionStore()
	store.Open("guild-1", "user-1")

	ok := store.Update("guild-1", "user-1", func(s *Session) {
		s.StartTime = "07:30"
	})
	assert.True(t, ok)
	assert.Equal(t, "07:30", store.Get("guild-1", "user-1").StartTime)

	assert.False(t, store.Update("guild-1", "missing", func(s *Session) {}))
}

func TestBeginFleetClampsShipCount(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{name: "within bounds", requested: 3, want: 3},
		{name: "above hard cap", requested: 9, want: 6},
		{name: "zero becomes one", requested: 0, want: 1},
		{name: "negative becomes one", requested: -2, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{}
			s.BeginFleet(tt.requested)
			assert.Len(t, s.Ships, tt.want)
			assert.True(t, s.FleetStarted)
			assert.Equal(t, 0, s.CurrentShip)
		})
	}
}

func TestSessionReadiness(t *testing.T) {
	s := &Session{MaxShips: 6}
	assert.False(t, s.Ready())

	s.DateISO = "2025-11-18"
	s.StartTime = "07:30"
	s.SaleTime = "18:00"
	assert.True(t, s.BasicReady())
	assert.False(t, s.Ready(), "fleet not configured yet")

	s.BeginFleet(2)
	assert.False(t, s.FleetReady())

	assert.True(t, s.SetShipHull(models.HullBrig))
	assert.True(t, s.SetShipRole("boarders"))
	assert.False(t, s.FleetReady(), "second ship unconfigured")

	assert.True(t, s.NextShip())
	assert.True(t, s.SetShipHull(models.HullSloop))
	assert.True(t, s.SetShipRole("gunners"))
	assert.True(t, s.FleetReady())

	assert.False(t, s.Ready(), "reuse choice still pending")
	s.Reuse = true
	s.ReuseSet = true
	assert.True(t, s.Ready())

	assert.False(t, s.NextShip(), "no ship after the last one")
}
