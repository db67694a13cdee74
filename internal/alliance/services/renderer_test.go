package services

import (
	"testing"
	"time"

	"go-armada/internal/alliance/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildRosterContent(t *testing.T) {
	paris, _ := time.LoadLocation("Europe/Paris")

	brig := &models.Ship{ID: primitive.NewObjectID(), Slot: 1, Hull: models.HullBrig, CrewRole: "boarders"}

	alliance := &models.Alliance{
		Name:        "Black Flag",
		OrganizerID: "100",
		RightHandID: "200",
		Status:      models.StatusMatching,
		// 18:30 UTC is 19:30 in Paris in winter.
		ScheduledAt: time.Date(2025, 11, 18, 18, 30, 0, 0, time.UTC),
		SaleAt:      time.Date(2025, 11, 18, 22, 0, 0, 0, time.UTC),
	}

	base := time.Date(2025, 11, 18, 17, 0, 0, 0, time.UTC)
	assignments := AssignCrews([]*models.Ship{brig}, []*models.Participant{
		participant(brig.ID, "301", base),
		participant(brig.ID, "302", base.Add(time.Minute)),
		participant(brig.ID, "303", base.Add(2*time.Minute)),
		participant(brig.ID, "304", base.Add(3*time.Minute)),
	})

	content := BuildRosterContent(alliance, assignments, paris)

	assert.Contains(t, content, "## Black Flag")
	assert.Contains(t, content, "Organizer: <@100>")
	assert.Contains(t, content, "Right hand: <@200>")

	// Times shown in Paris local time.
	assert.Contains(t, content, "Start: Tuesday 18/11 19:30")
	assert.Contains(t, content, "Replacements from: 20:00")
	assert.Contains(t, content, "Rendezvous: 22:30 then 22:45")
	assert.Contains(t, content, "Sale: Tuesday 18/11 23:00")

	assert.Contains(t, content, "(3 seats)")
	assert.Contains(t, content, "Crew: <@301>, <@302>, <@303>")
	assert.Contains(t, content, "Replacements: <@304>")
	assert.NotContains(t, content, "kept up between sessions")
}

func TestBuildRosterContentTerminalPrefixes(t *testing.T) {
	alliance := &models.Alliance{
		Name:        "Black Flag",
		OrganizerID: "100",
		ScheduledAt: time.Date(2025, 11, 18, 18, 0, 0, 0, time.UTC),
		SaleAt:      time.Date(2025, 11, 18, 22, 0, 0, 0, time.UTC),
	}

	alliance.Status = models.StatusFinished
	assert.Contains(t, BuildRosterContent(alliance, nil, time.UTC), "## "+FinishedPrefix+"Black Flag")

	alliance.Status = models.StatusCancelled
	assert.Contains(t, BuildRosterContent(alliance, nil, time.UTC), "## "+CancelledPrefix+"Black Flag")
}

func TestBuildRosterContentEmptyCrewAndReuse(t *testing.T) {
	sloop := &models.Ship{ID: primitive.NewObjectID(), Slot: 1, Hull: models.HullSloop, CrewRole: "gunners"}

	alliance := &models.Alliance{
		Name:         "Black Flag",
		OrganizerID:  "100",
		Status:       models.StatusPlanned,
		ReusePlanned: true,
		ScheduledAt:  time.Date(2025, 11, 18, 18, 0, 0, 0, time.UTC),
		SaleAt:       time.Date(2025, 11, 18, 22, 0, 0, 0, time.UTC),
	}

	content := BuildRosterContent(alliance, AssignCrews([]*models.Ship{sloop}, nil), time.UTC)

	assert.Contains(t, content, "Crew: nobody yet")
	assert.Contains(t, content, "Ships will be kept up between sessions.")
}
