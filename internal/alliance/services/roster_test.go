package services

import (
	"testing"
	"time"

	"go-armada/internal/alliance/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func participant(shipID primitive.ObjectID, userID string, joined time.Time) *models.Participant {
	return &models.Participant{
		ID:       primitive.NewObjectID(),
		ShipID:   shipID,
		UserID:   userID,
		JoinedAt: joined,
	}
}

func TestAssignCrewsSplitsByJoinOrder(t *testing.T) {
	base := time.Date(2025, 11, 18, 6, 0, 0, 0, time.UTC)

	brig := &models.Ship{ID: primitive.NewObjectID(), Slot: 1, Hull: models.HullBrig, CrewRole: "boarders"}
	sloop := &models.Ship{ID: primitive.NewObjectID(), Slot: 2, Hull: models.HullSloop, CrewRole: "gunners"}

	participants := []*models.Participant{
		// Joins deliberately out of slice order for the brig.
		participant(brig.ID, "u3", base.Add(3*time.Minute)),
		participant(brig.ID, "u1", base.Add(1*time.Minute)),
		participant(brig.ID, "u5", base.Add(5*time.Minute)),
		participant(brig.ID, "u2", base.Add(2*time.Minute)),
		participant(brig.ID, "u4", base.Add(4*time.Minute)),
		participant(sloop.ID, "u6", base.Add(6*time.Minute)),
	}

	assignments := AssignCrews([]*models.Ship{brig, sloop}, participants)
	require.Len(t, assignments, 2)

	// Brig seats 3; the two latecomers wait as replacements, in join order.
	assert.Equal(t, []string{"u1", "u2", "u3"}, userIDs(assignments[0].Primary))
	assert.Equal(t, []string{"u4", "u5"}, userIDs(assignments[0].Replacements))

	assert.Equal(t, []string{"u6"}, userIDs(assignments[1].Primary))
	assert.Empty(t, assignments[1].Replacements)
}

func TestAssignCrewsSkipsDepartedParticipants(t *testing.T) {
	base := time.Date(2025, 11, 18, 6, 0, 0, 0, time.UTC)
	sloop := &models.Ship{ID: primitive.NewObjectID(), Slot: 1, Hull: models.HullSloop}

	left := participant(sloop.ID, "gone", base)
	left.LeftAt = base.Add(10 * time.Minute)

	assignments := AssignCrews([]*models.Ship{sloop}, []*models.Participant{
		left,
		participant(sloop.ID, "here", base.Add(time.Minute)),
	})

	require.Len(t, assignments, 1)
	assert.Equal(t, []string{"here"}, userIDs(assignments[0].Primary))
}

func TestAssignCrewsEmptyShip(t *testing.T) {
	galleon := &models.Ship{ID: primitive.NewObjectID(), Slot: 1, Hull: models.HullGalleon}

	assignments := AssignCrews([]*models.Ship{galleon}, nil)
	require.Len(t, assignments, 1)
	assert.Empty(t, assignments[0].Primary)
	assert.Empty(t, assignments[0].Replacements)
}

func TestHullCapacities(t *testing.T) {
	assert.Equal(t, 2, models.HullSloop.Capacity())
	assert.Equal(t, 3, models.HullBrig.Capacity())
	assert.Equal(t, 4, models.HullGalleon.Capacity())
}

func userIDs(participants []*models.Participant) []string {
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
