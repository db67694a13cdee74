package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-armada/internal/alliance/models"
)

// Renderer keeps the pinned roster announcement of an alliance in sync with
// the store. The service calls it after every roster or lifecycle mutation.
type Renderer interface {
	RefreshRoster(ctx context.Context, alliance *models.Alliance) error
}

// RosterRenderer renders the roster into the alliance thread, creating the
// announcement message on first call and editing it afterwards.
type RosterRenderer struct {
	repo     *Repository
	gateway  Gateway
	settings SettingsProvider
}

// NewRosterRenderer creates a renderer backed by the repository and gateway.
func NewRosterRenderer(repo *Repository, gateway Gateway, settings SettingsProvider) *RosterRenderer {
	return &RosterRenderer{
		repo:     repo,
		gateway:  gateway,
		settings: settings,
	}
}

// RefreshRoster rebuilds the announcement content and upserts the message.
// Without a thread there is nothing to render yet.
func (r *RosterRenderer) RefreshRoster(ctx context.Context, alliance *models.Alliance) error {
	if alliance.ThreadChannelID == "" {
		return nil
	}

	ships, err := r.repo.GetShipsByAlliance(ctx, alliance.ID)
	if err != nil {
		return fmt.Errorf("failed to load ships: %w", err)
	}
	participants, err := r.repo.GetActiveParticipants(ctx, alliance.ID)
	if err != nil {
		return fmt.Errorf("failed to load participants: %w", err)
	}

	loc := time.UTC
	if cfg, err := r.settings.GuildSettings(ctx, alliance.GuildID); err == nil {
		if l, lerr := time.LoadLocation(cfg.Timezone); lerr == nil {
			loc = l
		}
	}

	content := BuildRosterContent(alliance, AssignCrews(ships, participants), loc)

	message, err := r.repo.GetLiveResourceByKind(ctx, alliance.ID, models.ResourceMessage)
	if err != nil {
		return fmt.Errorf("failed to load roster message record: %w", err)
	}

	if message == nil {
		messageID, err := r.gateway.CreateMessage(ctx, alliance.ThreadChannelID, content)
		if err != nil {
			return fmt.Errorf("failed to create roster message: %w", err)
		}
		resource := &models.ProvisionedResource{
			AllianceID: alliance.ID,
			Kind:       models.ResourceMessage,
			ExternalID: messageID,
			Name:       "roster",
			AutoDelete: false,
		}
		if err := r.repo.RecordResource(ctx, resource); err != nil {
			return fmt.Errorf("failed to record roster message: %w", err)
		}
		return nil
	}

	if err := r.gateway.EditMessage(ctx, alliance.ThreadChannelID, message.ExternalID, content); err != nil {
		slog.WarnContext(ctx, "Failed to edit roster message",
			"alliance_id", alliance.ID.Hex(),
			"message_id", message.ExternalID,
			"error", err)
		return err
	}
	return nil
}

// BuildRosterContent renders the announcement body. Schedule instants are
// shown in the guild's timezone; the store keeps them in UTC.
func BuildRosterContent(alliance *models.Alliance, assignments []CrewAssignment, loc *time.Location) string {
	var b strings.Builder

	statusLine := ""
	switch alliance.Status {
	case models.StatusFinished:
		statusLine = FinishedPrefix
	case models.StatusCancelled:
		statusLine = CancelledPrefix
	}
	fmt.Fprintf(&b, "## %s%s\n", statusLine, alliance.Name)
	fmt.Fprintf(&b, "Organizer: <@%s>", alliance.OrganizerID)
	if alliance.RightHandID != "" {
		fmt.Fprintf(&b, " | Right hand: <@%s>", alliance.RightHandID)
	}
	b.WriteString("\n\n")

	start := alliance.ScheduledAt.In(loc)
	sale := alliance.SaleAt.In(loc)
	fmt.Fprintf(&b, "Start: %s\n", start.Format("Monday 02/01 15:04"))
	fmt.Fprintf(&b, "Replacements from: %s\n", start.Add(30*time.Minute).Format("15:04"))
	fmt.Fprintf(&b, "Rendezvous: %s then %s\n", sale.Add(-30*time.Minute).Format("15:04"), sale.Add(-15*time.Minute).Format("15:04"))
	fmt.Fprintf(&b, "Sale: %s\n\n", sale.Format("Monday 02/01 15:04"))

	for _, a := range assignments {
		fmt.Fprintf(&b, "### Ship %d — %s %s (%d seats)\n",
			a.Ship.Slot, titleCase(string(a.Ship.Hull)), a.Ship.CrewRole, a.Ship.Hull.Capacity())
		if len(a.Primary) == 0 {
			b.WriteString("Crew: nobody yet\n")
		} else {
			b.WriteString("Crew: ")
			b.WriteString(mentionList(a.Primary))
			b.WriteString("\n")
		}
		if len(a.Replacements) > 0 {
			b.WriteString("Replacements: ")
			b.WriteString(mentionList(a.Replacements))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if alliance.ReusePlanned {
		b.WriteString("Ships will be kept up between sessions.\n")
	}

	return b.String()
}

func mentionList(participants []*models.Participant) string {
	mentions := make([]string, 0, len(participants))
	for _, p := range participants {
		mentions = append(mentions, "<@"+p.UserID+">")
	}
	return strings.Join(mentions, ", ")
}
