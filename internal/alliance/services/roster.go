package services

import (
	"sort"

	"go-armada/internal/alliance/models"
)

// CrewAssignment is the resolved crew of one ship: the first seats in join
// order are primary, everyone after capacity waits as a replacement.
type CrewAssignment struct {
	Ship         *models.Ship
	Primary      []*models.Participant
	Replacements []*models.Participant
}

// AssignCrews splits the active participants of an alliance into primary crew
// and replacements per ship. Seats are granted strictly first-come
// first-served by join instant; the replacement list is not capped.
func AssignCrews(ships []*models.Ship, participants []*models.Participant) []CrewAssignment {
	byShip := make(map[string][]*models.Participant, len(ships))
	for _, p := range participants {
		if !p.Active() {
			continue
		}
		key := p.ShipID.Hex()
		byShip[key] = append(byShip[key], p)
	}

	assignments := make([]CrewAssignment, 0, len(ships))
	for _, ship := range ships {
		crew := byShip[ship.ID.Hex()]
		sort.SliceStable(crew, func(i, j int) bool {
			return crew[i].JoinedAt.Before(crew[j].JoinedAt)
		})

		capacity := ship.Hull.Capacity()
		assignment := CrewAssignment{Ship: ship}
		if len(crew) <= capacity {
			assignment.Primary = crew
		} else {
			assignment.Primary = crew[:capacity]
			assignment.Replacements = crew[capacity:]
		}
		assignments = append(assignments, assignment)
	}

	return assignments
}
