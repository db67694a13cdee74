package services

import (
	"context"
	"testing"

	"go-armada/internal/alliance/models"
	"go-armada/pkg/discord"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeGateway scripts per-resource outcomes for deletions and records calls.
type fakeGateway struct {
	outcomes    map[string]discord.Outcome
	roleDeletes []string
	chanDeletes []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{outcomes: make(map[string]discord.Outcome)}
}

func (g *fakeGateway) outcomeFor(externalID string) (discord.Outcome, error) {
	if outcome, ok := g.outcomes[externalID]; ok {
		if outcome == discord.OutcomeOther {
			return outcome, assert.AnError
		}
		return outcome, nil
	}
	return discord.OutcomeOK, nil
}

func (g *fakeGateway) CreateRole(ctx context.Context, guildID, name string, color int, hoist, mentionable bool) (string, error) {
	return "role-" + name, nil
}

func (g *fakeGateway) DeleteRole(ctx context.Context, guildID, roleID string) (discord.Outcome, error) {
	g.roleDeletes = append(g.roleDeletes, roleID)
	return g.outcomeFor(roleID)
}

func (g *fakeGateway) CreateCategory(ctx context.Context, guildID, name string) (string, error) {
	return "cat-" + name, nil
}

func (g *fakeGateway) CreateVoiceChannel(ctx context.Context, guildID, parentID, name string, overwrites []discord.PermissionOverwrite) (string, error) {
	return "vc-" + name, nil
}

func (g *fakeGateway) DeleteChannel(ctx context.Context, channelID string) (discord.Outcome, error) {
	g.chanDeletes = append(g.chanDeletes, channelID)
	return g.outcomeFor(channelID)
}

func (g *fakeGateway) RenameChannel(ctx context.Context, channelID, name string) error {
	return nil
}

func (g *fakeGateway) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	return nil
}

func (g *fakeGateway) RevokeRole(ctx context.Context, guildID, userID, roleID string) error {
	return nil
}

func (g *fakeGateway) CreateForumThread(ctx context.Context, forumChannelID, title, content string) (string, error) {
	return "thread-" + title, nil
}

func (g *fakeGateway) CreateMessage(ctx context.Context, channelID, content string) (string, error) {
	return "msg-1", nil
}

func (g *fakeGateway) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	return nil
}

// fakeMarker records which resources were marked deleted.
type fakeMarker struct {
	marked []primitive.ObjectID
}

func (m *fakeMarker) MarkResourceDeleted(ctx context.Context, id primitive.ObjectID) error {
	m.marked = append(m.marked, id)
	return nil
}

// fakeResourceStore keeps provisioned resources in memory and drops them from
// the live set once marked deleted.
type fakeResourceStore struct {
	resources []*models.ProvisionedResource
	deleted   map[primitive.ObjectID]bool
}

func newFakeResourceStore(resources ...*models.ProvisionedResource) *fakeResourceStore {
	return &fakeResourceStore{resources: resources, deleted: make(map[primitive.ObjectID]bool)}
}

func (s *fakeResourceStore) GetLiveResources(ctx context.Context, allianceID primitive.ObjectID, autoDeleteOnly bool) ([]*models.ProvisionedResource, error) {
	var live []*models.ProvisionedResource
	for _, res := range s.resources {
		if !s.deleted[res.ID] {
			live = append(live, res)
		}
	}
	return live, nil
}

func (s *fakeResourceStore) MarkResourceDeleted(ctx context.Context, id primitive.ObjectID) error {
	s.deleted[id] = true
	return nil
}

func roleResource(externalID string) *models.ProvisionedResource {
	return &models.ProvisionedResource{
		ID:         primitive.NewObjectID(),
		Kind:       models.ResourceRole,
		ExternalID: externalID,
		AutoDelete: true,
	}
}

func TestTeardownWorkerMarksDeletedOnSuccess(t *testing.T) {
	gateway := newFakeGateway()
	marker := &fakeMarker{}
	worker := NewTeardownWorker(marker, gateway)

	res := roleResource("role-1")
	worker.Enqueue(context.Background(), "guild-1", res, 1)
	worker.drainOnce(context.Background())

	assert.Equal(t, []string{"role-1"}, gateway.roleDeletes)
	assert.Equal(t, []primitive.ObjectID{res.ID}, marker.marked)
	assert.Equal(t, 0, worker.QueueLen())
}

func TestTeardownWorkerTreatsNotFoundAsDeleted(t *testing.T) {
	gateway := newFakeGateway()
	gateway.outcomes["role-gone"] = discord.OutcomeNotFound
	marker := &fakeMarker{}
	worker := NewTeardownWorker(marker, gateway)

	res := roleResource("role-gone")
	worker.Enqueue(context.Background(), "guild-1", res, 1)
	worker.drainOnce(context.Background())

	assert.Equal(t, []primitive.ObjectID{res.ID}, marker.marked)
	assert.Equal(t, 0, worker.QueueLen())
}

func TestTeardownWorkerRequeuesOnRateLimit(t *testing.T) {
	gateway := newFakeGateway()
	gateway.outcomes["role-busy"] = discord.OutcomeRateLimited
	marker := &fakeMarker{}
	worker := NewTeardownWorker(marker, gateway)

	// The initial delete already failed rate-limited, so the item enters
	// the queue with no retries spent. Three retries follow before the
	// worker gives up.
	worker.Enqueue(context.Background(), "guild-1", roleResource("role-busy"), 0)

	worker.drainOnce(context.Background())
	assert.Equal(t, 1, worker.QueueLen())
	worker.drainOnce(context.Background())
	assert.Equal(t, 1, worker.QueueLen())
	worker.drainOnce(context.Background())
	assert.Equal(t, 1, worker.QueueLen())

	// The fourth drain abandons the item without calling Discord again,
	// and later drains stay silent.
	worker.drainOnce(context.Background())
	assert.Equal(t, 0, worker.QueueLen())
	worker.drainOnce(context.Background())

	assert.Len(t, gateway.roleDeletes, 3)
	assert.Empty(t, marker.marked)
}

func TestTeardownDeletesChannelsBeforeRolesOnce(t *testing.T) {
	category := &models.ProvisionedResource{
		ID: primitive.NewObjectID(), Kind: models.ResourceCategory, ExternalID: "cat-1", AutoDelete: true,
	}
	voice := &models.ProvisionedResource{
		ID: primitive.NewObjectID(), Kind: models.ResourceVoiceChannel, ExternalID: "vc-1", AutoDelete: true,
	}
	role := roleResource("role-1")

	gateway := newFakeGateway()
	store := newFakeResourceStore(role, category, voice)
	svc := &Service{resources: store, worker: NewTeardownWorker(store, gateway)}
	alliance := &models.Alliance{ID: primitive.NewObjectID(), GuildID: "guild-1"}

	assert.NoError(t, svc.Teardown(context.Background(), alliance))

	// Channels go before roles so members lose access first.
	assert.Equal(t, []string{"cat-1", "vc-1"}, gateway.chanDeletes)
	assert.Equal(t, []string{"role-1"}, gateway.roleDeletes)

	// Ending again re-runs the cleanup against an empty live set and never
	// deletes a resource twice.
	assert.NoError(t, svc.Teardown(context.Background(), alliance))
	assert.Len(t, gateway.chanDeletes, 2)
	assert.Len(t, gateway.roleDeletes, 1)
}

func TestTeardownRetriesRateLimitedResourceFourTimes(t *testing.T) {
	role := roleResource("role-busy")

	gateway := newFakeGateway()
	gateway.outcomes["role-busy"] = discord.OutcomeRateLimited
	store := newFakeResourceStore(role)
	svc := &Service{resources: store, worker: NewTeardownWorker(store, gateway)}
	alliance := &models.Alliance{ID: primitive.NewObjectID(), GuildID: "guild-1"}

	assert.NoError(t, svc.Teardown(context.Background(), alliance))
	assert.Equal(t, 1, svc.worker.QueueLen())

	for i := 0; i < 4; i++ {
		svc.worker.drainOnce(context.Background())
	}

	// One initial delete plus three retries, then the item is dropped and
	// the resource stays live for the janitor sweep.
	assert.Len(t, gateway.roleDeletes, 4)
	assert.Equal(t, 0, svc.worker.QueueLen())
	live, _ := store.GetLiveResources(context.Background(), alliance.ID, true)
	assert.Len(t, live, 1)
}

func TestTeardownWorkerLeavesFailedItems(t *testing.T) {
	gateway := newFakeGateway()
	gateway.outcomes["role-err"] = discord.OutcomeOther
	marker := &fakeMarker{}
	worker := NewTeardownWorker(marker, gateway)

	worker.Enqueue(context.Background(), "guild-1", roleResource("role-err"), 1)
	worker.drainOnce(context.Background())

	// Unclassified failures are dropped from the queue; the janitor sweep
	// re-runs teardown for alliances with live resources.
	assert.Equal(t, 0, worker.QueueLen())
	assert.Empty(t, marker.marked)
}
