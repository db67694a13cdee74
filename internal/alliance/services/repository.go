package services

import (
	"context"
	"fmt"
	"time"

	"go-armada/internal/alliance/models"
	"go-armada/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles database operations for alliances and their rosters
type Repository struct {
	mongodb      *database.MongoDB
	alliances    *mongo.Collection
	ships        *mongo.Collection
	participants *mongo.Collection
	resources    *mongo.Collection
	users        *mongo.Collection
}

// NewRepository creates a new alliance repository
func NewRepository(mongodb *database.MongoDB) *Repository {
	return &Repository{
		mongodb:      mongodb,
		alliances:    mongodb.Database.Collection(models.AllianceCollection),
		ships:        mongodb.Database.Collection(models.ShipCollection),
		participants: mongodb.Database.Collection(models.ParticipantCollection),
		resources:    mongodb.Database.Collection(models.ResourceCollection),
		users:        mongodb.Database.Collection(models.UserCollection),
	}
}

// CreateIndexes creates necessary database indexes for the alliance collections
func (r *Repository) CreateIndexes(ctx context.Context) error {
	_, err := r.alliances.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "guild_id", Value: 1}, {Key: "thread_channel_id", Value: 1}}},
		{Keys: bson.D{{Key: "guild_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create alliance indexes: %w", err)
	}

	_, err = r.ships.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "alliance_id", Value: 1}, {Key: "slot", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create ship indexes: %w", err)
	}

	_, err = r.participants.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "alliance_id", Value: 1}, {Key: "joined_at", Value: 1}}},
		{Keys: bson.D{{Key: "alliance_id", Value: 1}, {Key: "user_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create participant indexes: %w", err)
	}

	_, err = r.resources.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "alliance_id", Value: 1}, {Key: "kind", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create resource indexes: %w", err)
	}

	_, err = r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "discord_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	return nil
}

// CreateAlliance inserts a new alliance record
func (r *Repository) CreateAlliance(ctx context.Context, alliance *models.Alliance) error {
	alliance.CreatedAt = time.Now().UTC()
	alliance.UpdatedAt = alliance.CreatedAt

	result, err := r.alliances.InsertOne(ctx, alliance)
	if err != nil {
		return err
	}
	alliance.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// GetAllianceByID retrieves an alliance by its ID
func (r *Repository) GetAllianceByID(ctx context.Context, id primitive.ObjectID) (*models.Alliance, error) {
	var alliance models.Alliance
	err := r.alliances.FindOne(ctx, bson.M{"_id": id}).Decode(&alliance)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &alliance, nil
}

// GetAllianceByThread retrieves the alliance bound to a guild's thread channel
func (r *Repository) GetAllianceByThread(ctx context.Context, guildID, threadChannelID string) (*models.Alliance, error) {
	var alliance models.Alliance
	filter := bson.M{"guild_id": guildID, "thread_channel_id": threadChannelID}

	err := r.alliances.FindOne(ctx, filter).Decode(&alliance)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &alliance, nil
}

// UpdateAllianceFields applies a partial update to an alliance
func (r *Repository) UpdateAllianceFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	_, err := r.alliances.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return err
}

// TransitionStatus moves an alliance between lifecycle states. The current
// status is part of the update filter so a concurrent transition loses the
// race instead of double-applying; the return value reports whether this
// call won.
func (r *Repository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.Status, to models.Status) (bool, error) {
	filter := bson.M{"_id": id, "status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}}

	result, err := r.alliances.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// ListAlliancesByStatus returns all alliances in a guild in any of the given states
func (r *Repository) ListAlliancesByStatus(ctx context.Context, guildID string, statuses []models.Status) ([]*models.Alliance, error) {
	filter := bson.M{"status": bson.M{"$in": statuses}}
	if guildID != "" {
		filter["guild_id"] = guildID
	}

	cursor, err := r.alliances.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alliances []*models.Alliance
	if err := cursor.All(ctx, &alliances); err != nil {
		return nil, err
	}
	return alliances, nil
}

// CreateShips inserts the ship slots of an alliance
func (r *Repository) CreateShips(ctx context.Context, ships []*models.Ship) error {
	if len(ships) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(ships))
	now := time.Now().UTC()
	for _, ship := range ships {
		ship.CreatedAt = now
		docs = append(docs, ship)
	}

	result, err := r.ships.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range result.InsertedIDs {
		ships[i].ID = id.(primitive.ObjectID)
	}
	return nil
}

// GetShipsByAlliance returns the ships of an alliance ordered by slot
func (r *Repository) GetShipsByAlliance(ctx context.Context, allianceID primitive.ObjectID) ([]*models.Ship, error) {
	cursor, err := r.ships.Find(ctx, bson.M{"alliance_id": allianceID},
		options.Find().SetSort(bson.D{{Key: "slot", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ships []*models.Ship
	if err := cursor.All(ctx, &ships); err != nil {
		return nil, err
	}
	return ships, nil
}

// GetShipBySlot returns the ship occupying a slot of an alliance
func (r *Repository) GetShipBySlot(ctx context.Context, allianceID primitive.ObjectID, slot int) (*models.Ship, error) {
	var ship models.Ship
	err := r.ships.FindOne(ctx, bson.M{"alliance_id": allianceID, "slot": slot}).Decode(&ship)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &ship, nil
}

// UpdateShip changes the hull or crew role of a ship
func (r *Repository) UpdateShip(ctx context.Context, shipID primitive.ObjectID, fields bson.M) error {
	_, err := r.ships.UpdateOne(ctx, bson.M{"_id": shipID}, bson.M{"$set": fields})
	return err
}

// InsertParticipant records a new active membership on a ship
func (r *Repository) InsertParticipant(ctx context.Context, p *models.Participant) error {
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}

	result, err := r.participants.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	p.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// CloseParticipant ends a membership by stamping left_at
func (r *Repository) CloseParticipant(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.participants.UpdateOne(ctx,
		bson.M{"_id": id, "left_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"left_at": time.Now().UTC()}})
	return err
}

// GetActiveParticipant returns the user's active membership in an alliance, if any
func (r *Repository) GetActiveParticipant(ctx context.Context, allianceID primitive.ObjectID, userID string) (*models.Participant, error) {
	var p models.Participant
	filter := bson.M{
		"alliance_id": allianceID,
		"user_id":     userID,
		"left_at":     bson.M{"$exists": false},
	}

	err := r.participants.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetActiveParticipants returns all active memberships of an alliance in join order
func (r *Repository) GetActiveParticipants(ctx context.Context, allianceID primitive.ObjectID) ([]*models.Participant, error) {
	filter := bson.M{"alliance_id": allianceID, "left_at": bson.M{"$exists": false}}

	cursor, err := r.participants.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var participants []*models.Participant
	if err := cursor.All(ctx, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

// CountActiveMemberships counts a user's open memberships in one alliance.
// The member role is named after the alliance, so revocation only looks at
// the alliance being left.
func (r *Repository) CountActiveMemberships(ctx context.Context, allianceID primitive.ObjectID, userID string) (int64, error) {
	return r.participants.CountDocuments(ctx, bson.M{
		"alliance_id": allianceID,
		"user_id":     userID,
		"left_at":     bson.M{"$exists": false},
	})
}

// SwitchShip atomically closes the current membership and opens one on the
// target ship, preserving the original join instant for ordering.
func (r *Repository) SwitchShip(ctx context.Context, current *models.Participant, targetShipID primitive.ObjectID) (*models.Participant, error) {
	session, err := r.mongodb.Client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	next := &models.Participant{
		AllianceID: current.AllianceID,
		ShipID:     targetShipID,
		UserID:     current.UserID,
		JoinedAt:   current.JoinedAt,
	}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.participants.UpdateOne(sc,
			bson.M{"_id": current.ID},
			bson.M{"$set": bson.M{"left_at": time.Now().UTC()}}); err != nil {
			return nil, err
		}
		result, err := r.participants.InsertOne(sc, next)
		if err != nil {
			return nil, err
		}
		next.ID = result.InsertedID.(primitive.ObjectID)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// RecordResource stores a provisioned Discord object
func (r *Repository) RecordResource(ctx context.Context, resource *models.ProvisionedResource) error {
	resource.CreatedAt = time.Now().UTC()

	result, err := r.resources.InsertOne(ctx, resource)
	if err != nil {
		return err
	}
	resource.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// GetLiveResources returns the undeleted resources of an alliance, optionally
// filtered to auto-delete ones
func (r *Repository) GetLiveResources(ctx context.Context, allianceID primitive.ObjectID, autoDeleteOnly bool) ([]*models.ProvisionedResource, error) {
	filter := bson.M{"alliance_id": allianceID, "deleted_at": bson.M{"$exists": false}}
	if autoDeleteOnly {
		filter["auto_delete"] = true
	}

	cursor, err := r.resources.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var resources []*models.ProvisionedResource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

// GetLiveResourceByKind returns the first undeleted resource of a kind for an alliance
func (r *Repository) GetLiveResourceByKind(ctx context.Context, allianceID primitive.ObjectID, kind models.ResourceKind) (*models.ProvisionedResource, error) {
	var resource models.ProvisionedResource
	filter := bson.M{
		"alliance_id": allianceID,
		"kind":        kind,
		"deleted_at":  bson.M{"$exists": false},
	}

	err := r.resources.FindOne(ctx, filter).Decode(&resource)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &resource, nil
}

// MarkResourceDeleted stamps deleted_at on a resource record
func (r *Repository) MarkResourceDeleted(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.resources.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"deleted_at": time.Now().UTC()}})
	return err
}

// GetUserByDiscordID retrieves a user record by Discord ID
func (r *Repository) GetUserByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"discord_id": discordID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpsertUser creates the user record on first contact and stamps the last
// participation instant on every call
func (r *Repository) UpsertUser(ctx context.Context, discordID, name string) (*models.User, error) {
	now := time.Now().UTC()
	filter := bson.M{"discord_id": discordID}
	update := bson.M{
		"$set":         bson.M{"name": name, "last_alliance_at": now},
		"$setOnInsert": bson.M{"discord_id": discordID, "is_banned": false, "created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	if err := r.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
