package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go-armada/internal/alliance/models"
	"go-armada/pkg/discord"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// maxDeleteAttempts is how many retries a resource gets after its
	// first rate-limited delete before it is abandoned.
	maxDeleteAttempts = 3
	// retryInterval is how often the worker drains its queue.
	retryInterval = 5 * time.Second
	// maxQueuedDeletes bounds the retry queue; beyond it resources are
	// abandoned to the janitor sweep.
	maxQueuedDeletes = 256
)

type teardownItem struct {
	guildID  string
	resource *models.ProvisionedResource
	attempts int
}

// resourceMarker is the slice of the repository the worker needs.
type resourceMarker interface {
	MarkResourceDeleted(ctx context.Context, id primitive.ObjectID) error
}

// resourceStore is the slice of the repository a teardown pass works against.
type resourceStore interface {
	resourceMarker
	GetLiveResources(ctx context.Context, allianceID primitive.ObjectID, autoDeleteOnly bool) ([]*models.ProvisionedResource, error)
}

// TeardownWorker retries rate-limited Discord deletions. A single long-lived
// goroutine drains a bounded queue on a fixed interval; producers only append.
type TeardownWorker struct {
	repo    resourceMarker
	gateway Gateway

	mu    sync.Mutex
	queue []teardownItem
}

// NewTeardownWorker creates a worker. Run must be started for queued
// deletions to be retried.
func NewTeardownWorker(repo resourceMarker, gateway Gateway) *TeardownWorker {
	return &TeardownWorker{
		repo:    repo,
		gateway: gateway,
	}
}

// Enqueue adds a resource for retry. When the queue is full the resource is
// abandoned; the janitor sweep will pick it up later.
func (w *TeardownWorker) Enqueue(ctx context.Context, guildID string, resource *models.ProvisionedResource, attempts int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.queue) >= maxQueuedDeletes {
		slog.WarnContext(ctx, "Teardown retry queue full, abandoning resource",
			"resource_id", resource.ID.Hex(),
			"external_id", resource.ExternalID,
			"kind", resource.Kind)
		return
	}
	w.queue = append(w.queue, teardownItem{guildID: guildID, resource: resource, attempts: attempts})
}

// QueueLen returns the number of pending retries.
func (w *TeardownWorker) QueueLen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Run drains the retry queue until the context is cancelled or the stop
// channel closes.
func (w *TeardownWorker) Run(ctx context.Context, stopCh <-chan struct{}) {
	slog.InfoContext(ctx, "Teardown retry worker started", "interval", retryInterval)

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Teardown retry worker context cancelled")
			return
		case <-stopCh:
			slog.Info("Teardown retry worker stopped")
			return
		case <-ticker.C:
			w.drainOnce(ctx)
		}
	}
}

// drainOnce swaps out the current batch and processes it. Items rate-limited
// again go back on the queue with their attempt count bumped.
func (w *TeardownWorker) drainOnce(ctx context.Context) {
	w.mu.Lock()
	batch := w.queue
	w.queue = nil
	w.mu.Unlock()

	for _, item := range batch {
		if item.attempts >= maxDeleteAttempts {
			slog.WarnContext(ctx, "Abandoning resource after repeated rate limits",
				"resource_id", item.resource.ID.Hex(),
				"external_id", item.resource.ExternalID,
				"kind", item.resource.Kind,
				"attempts", item.attempts)
			continue
		}

		outcome, err := w.deleteResource(ctx, item.guildID, item.resource)
		switch outcome {
		case discord.OutcomeOK, discord.OutcomeNotFound:
			if err := w.repo.MarkResourceDeleted(ctx, item.resource.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark resource deleted",
					"resource_id", item.resource.ID.Hex(), "error", err)
			}
		case discord.OutcomeRateLimited:
			item.attempts++
			w.Enqueue(ctx, item.guildID, item.resource, item.attempts)
		default:
			slog.ErrorContext(ctx, "Teardown retry failed",
				"resource_id", item.resource.ID.Hex(),
				"external_id", item.resource.ExternalID,
				"kind", item.resource.Kind,
				"error", err)
		}
	}
}

func (w *TeardownWorker) deleteResource(ctx context.Context, guildID string, resource *models.ProvisionedResource) (discord.Outcome, error) {
	switch resource.Kind {
	case models.ResourceRole:
		return w.gateway.DeleteRole(ctx, guildID, resource.ExternalID)
	case models.ResourceVoiceChannel, models.ResourceTextChannel, models.ResourceCategory:
		return w.gateway.DeleteChannel(ctx, resource.ExternalID)
	default:
		// Threads and messages are never deleted, only renamed or edited.
		return discord.OutcomeOK, nil
	}
}

// Teardown removes every live auto-delete resource of an alliance. Channels
// and the category go first so members lose access before roles disappear.
// Rate-limited deletions are handed to the retry worker; any other failure
// aborts the pass so it can be re-run.
func (s *Service) Teardown(ctx context.Context, alliance *models.Alliance) error {
	resources, err := s.resources.GetLiveResources(ctx, alliance.ID, true)
	if err != nil {
		return fmt.Errorf("failed to load resources: %w", err)
	}

	ordered := make([]*models.ProvisionedResource, 0, len(resources))
	for _, res := range resources {
		if res.Kind != models.ResourceRole {
			ordered = append(ordered, res)
		}
	}
	for _, res := range resources {
		if res.Kind == models.ResourceRole {
			ordered = append(ordered, res)
		}
	}

	for _, res := range ordered {
		outcome, err := s.worker.deleteResource(ctx, alliance.GuildID, res)
		switch outcome {
		case discord.OutcomeOK, discord.OutcomeNotFound:
			if err := s.resources.MarkResourceDeleted(ctx, res.ID); err != nil {
				return fmt.Errorf("failed to mark resource deleted: %w", err)
			}
		case discord.OutcomeRateLimited:
			s.worker.Enqueue(ctx, alliance.GuildID, res, 0)
		default:
			return fmt.Errorf("failed to delete %s %s: %w", res.Kind, res.ExternalID, err)
		}
	}

	return nil
}
