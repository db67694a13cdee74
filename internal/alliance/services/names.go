package services

import (
	"math/rand"
	"strings"
	"unicode"
)

// Role colors and display names used when provisioning guild roles.
const (
	OrganizerRoleName  = "Organizer"
	RightHandRoleName  = "Right Hand"
	OrganizerRoleColor = 0xF1C40F
	RightHandRoleColor = 0x1ABC9C
)

// Thread title prefixes applied when an alliance reaches a terminal state.
const (
	FinishedPrefix  = "✅ [Finished] "
	CancelledPrefix = "❌ [Cancelled] "
)

// allianceNames is the pool of generated alliance names.
var allianceNames = []string{
	"Armada of the Broken Horizon",
	"Fleet of the Crimson Tide",
	"Brotherhood of the Black Flag",
	"Covenant of the Silent Deep",
	"Raiders of the Shattered Isles",
	"Order of the Drowned Crown",
	"Wolves of the Northern Swell",
	"Keepers of the Ember Coast",
	"Sons of the Restless Gale",
	"Legion of the Sunken Star",
	"Marauders of the Pale Moon",
}

// outpostNames is the pool of hub voice channel names.
var outpostNames = []string{
	"Sanctuary Outpost",
	"Plunder Outpost",
	"Ancient Spire Outpost",
	"Golden Sands Outpost",
	"Dagger Tooth Outpost",
	"Galleon's Grave Outpost",
	"Morrow's Peak Outpost",
}

// RandomAllianceName picks a name from the alliance name pool.
func RandomAllianceName() string {
	return allianceNames[rand.Intn(len(allianceNames))]
}

// RandomOutpostName picks a name from the outpost pool for the hub channel.
func RandomOutpostName() string {
	return outpostNames[rand.Intn(len(outpostNames))]
}

// ShipRoleName builds the guild role name for a ship, e.g. "Galleon boarders".
// The crew role is kept as the organizer typed it.
func ShipRoleName(hull, crewRole string) string {
	return titleCase(hull) + " " + crewRole
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ParseMentionID extracts the numeric ID from a user mention such as
// "<@138401490739123456>" or a raw ID string. It returns "" when the input
// contains no digits.
func ParseMentionID(mention string) string {
	var b strings.Builder
	for _, r := range mention {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
