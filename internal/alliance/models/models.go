package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the lifecycle state of an alliance event.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusMatching  Status = "matching"
	StatusInGame    Status = "in_game"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status accepts no further transitions.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// HullType identifies a ship hull and thereby its crew capacity.
type HullType string

const (
	HullSloop   HullType = "sloop"
	HullBrig    HullType = "brig"
	HullGalleon HullType = "galleon"
)

// Capacity returns the number of primary crew seats for the hull.
// Unknown hulls count as sloops.
func (h HullType) Capacity() int {
	switch h {
	case HullBrig:
		return 3
	case HullGalleon:
		return 4
	default:
		return 2
	}
}

// Valid reports whether h is a known hull type.
func (h HullType) Valid() bool {
	return h == HullSloop || h == HullBrig || h == HullGalleon
}

// ResourceKind identifies what kind of Discord object a provisioned resource is.
type ResourceKind string

const (
	ResourceRole         ResourceKind = "role"
	ResourceVoiceChannel ResourceKind = "voice_channel"
	ResourceTextChannel  ResourceKind = "text_channel"
	ResourceCategory     ResourceKind = "category"
	ResourceThread       ResourceKind = "thread"
	ResourceMessage      ResourceKind = "message"
)

// Alliance represents a scheduled multi-crew event in a guild.
type Alliance struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GuildID         string             `bson:"guild_id" json:"guild_id"`
	OrganizerID     string             `bson:"organizer_id" json:"organizer_id"`
	RightHandID     string             `bson:"right_hand_id,omitempty" json:"right_hand_id,omitempty"`
	Name            string             `bson:"name" json:"name"`
	ScheduledAt     time.Time          `bson:"scheduled_at" json:"scheduled_at"`
	SaleAt          time.Time          `bson:"sale_at" json:"sale_at"`
	Status          Status             `bson:"status" json:"status"`
	MaxShips        int                `bson:"max_ships" json:"max_ships"`
	ReusePlanned    bool               `bson:"reuse_planned" json:"reuse_planned"`
	ThreadChannelID string             `bson:"thread_channel_id,omitempty" json:"thread_channel_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Ship is a crewed slot belonging to an alliance.
type Ship struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AllianceID primitive.ObjectID `bson:"alliance_id" json:"alliance_id"`
	Slot       int                `bson:"slot" json:"slot"`
	Hull       HullType           `bson:"hull" json:"hull"`
	CrewRole   string             `bson:"crew_role" json:"crew_role"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// Participant records a user's membership on a ship. LeftAt is the zero time
// while the membership is active; a ship switch closes the old row and
// inserts a new one, preserving join order.
type Participant struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AllianceID primitive.ObjectID `bson:"alliance_id" json:"alliance_id"`
	ShipID     primitive.ObjectID `bson:"ship_id" json:"ship_id"`
	UserID     string             `bson:"user_id" json:"user_id"`
	JoinedAt   time.Time          `bson:"joined_at" json:"joined_at"`
	LeftAt     time.Time          `bson:"left_at,omitempty" json:"left_at,omitempty"`
}

// Active reports whether the membership has not been closed.
func (p *Participant) Active() bool {
	return p.LeftAt.IsZero()
}

// ProvisionedResource is a Discord object created on behalf of an alliance.
// Teardown marks DeletedAt instead of removing the record so the audit trail
// survives the event.
type ProvisionedResource struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AllianceID primitive.ObjectID `bson:"alliance_id" json:"alliance_id"`
	Kind       ResourceKind       `bson:"kind" json:"kind"`
	ExternalID string             `bson:"external_id" json:"external_id"`
	Name       string             `bson:"name" json:"name"`
	AutoDelete bool               `bson:"auto_delete" json:"auto_delete"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	DeletedAt  time.Time          `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
}

// Live reports whether the resource still exists upstream as far as we know.
func (r *ProvisionedResource) Live() bool {
	return r.DeletedAt.IsZero()
}

// User is the service-side record for a Discord user.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DiscordID      string             `bson:"discord_id" json:"discord_id"`
	Name           string             `bson:"name" json:"name"`
	Gamertag       string             `bson:"gamertag,omitempty" json:"gamertag,omitempty"`
	IsBanned       bool               `bson:"is_banned" json:"is_banned"`
	BanReason      string             `bson:"ban_reason,omitempty" json:"ban_reason,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	LastAllianceAt time.Time          `bson:"last_alliance_at,omitempty" json:"last_alliance_at,omitempty"`
}

// Constants for collection names
const (
	AllianceCollection    = "alliances"
	ShipCollection        = "ships"
	ParticipantCollection = "alliance_participants"
	ResourceCollection    = "provisioned_resources"
	UserCollection        = "users"
)
