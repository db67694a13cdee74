package services

import (
	"context"
	"fmt"
	"log/slog"

	"go-armada/internal/alliance/models"
	"go-armada/pkg/discord"
)

// viewAndConnect covers VIEW_CHANNEL and CONNECT, the permissions gated on
// the alliance member role for fleet voice channels.
const viewAndConnect = "1049600"

// Provision creates the guild objects of a starting alliance: the member
// role, the organizer and right hand roles, one role per ship, a category
// with a hub voice channel and one voice channel per ship. Every created
// object is recorded before any role is granted, so teardown can always find
// it. Role grants are best-effort and only logged on failure.
func (s *Service) Provision(ctx context.Context, alliance *models.Alliance) error {
	memberRoleID, err := s.provisionRole(ctx, alliance, alliance.Name, 0, false, true)
	if err != nil {
		return fmt.Errorf("failed to provision member role: %w", err)
	}

	organizerRoleID, err := s.provisionRole(ctx, alliance, OrganizerRoleName, OrganizerRoleColor, true, true)
	if err != nil {
		return fmt.Errorf("failed to provision organizer role: %w", err)
	}

	rightHandRoleID := ""
	if alliance.RightHandID != "" {
		rightHandRoleID, err = s.provisionRole(ctx, alliance, RightHandRoleName, RightHandRoleColor, true, true)
		if err != nil {
			return fmt.Errorf("failed to provision right hand role: %w", err)
		}
	}

	ships, err := s.repo.GetShipsByAlliance(ctx, alliance.ID)
	if err != nil {
		return fmt.Errorf("failed to load ships: %w", err)
	}

	shipRoleIDs := make(map[int]string, len(ships))
	for _, ship := range ships {
		roleID, err := s.provisionRole(ctx, alliance, ShipRoleName(string(ship.Hull), ship.CrewRole), 0, false, true)
		if err != nil {
			return fmt.Errorf("failed to provision role for ship %d: %w", ship.Slot, err)
		}
		shipRoleIDs[ship.Slot] = roleID
	}

	categoryID, err := s.gateway.CreateCategory(ctx, alliance.GuildID, alliance.Name)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	if err := s.recordResource(ctx, alliance, models.ResourceCategory, categoryID, alliance.Name); err != nil {
		return err
	}

	overwrites := []discord.PermissionOverwrite{
		{ID: alliance.GuildID, Type: 0, Deny: viewAndConnect}, // @everyone
		{ID: memberRoleID, Type: 0, Allow: viewAndConnect},
	}

	hubName := RandomOutpostName()
	hubID, err := s.gateway.CreateVoiceChannel(ctx, alliance.GuildID, categoryID, hubName, overwrites)
	if err != nil {
		return fmt.Errorf("failed to create hub channel: %w", err)
	}
	if err := s.recordResource(ctx, alliance, models.ResourceVoiceChannel, hubID, hubName); err != nil {
		return err
	}

	for _, ship := range ships {
		name := fmt.Sprintf("Ship %d — %s", ship.Slot, ship.CrewRole)
		channelID, err := s.gateway.CreateVoiceChannel(ctx, alliance.GuildID, categoryID, name, overwrites)
		if err != nil {
			return fmt.Errorf("failed to create channel for ship %d: %w", ship.Slot, err)
		}
		if err := s.recordResource(ctx, alliance, models.ResourceVoiceChannel, channelID, name); err != nil {
			return err
		}
	}

	s.grantStartingRoles(ctx, alliance, ships, memberRoleID, organizerRoleID, rightHandRoleID, shipRoleIDs)

	slog.InfoContext(ctx, "Provisioned alliance resources",
		"alliance_id", alliance.ID.Hex(),
		"guild_id", alliance.GuildID,
		"ships", len(ships))

	return nil
}

func (s *Service) provisionRole(ctx context.Context, alliance *models.Alliance, name string, color int, hoist, mentionable bool) (string, error) {
	roleID, err := s.gateway.CreateRole(ctx, alliance.GuildID, name, color, hoist, mentionable)
	if err != nil {
		return "", err
	}
	if err := s.recordResource(ctx, alliance, models.ResourceRole, roleID, name); err != nil {
		return "", err
	}
	return roleID, nil
}

func (s *Service) recordResource(ctx context.Context, alliance *models.Alliance, kind models.ResourceKind, externalID, name string) error {
	resource := &models.ProvisionedResource{
		AllianceID: alliance.ID,
		Kind:       kind,
		ExternalID: externalID,
		Name:       name,
		AutoDelete: true,
	}
	if err := s.repo.RecordResource(ctx, resource); err != nil {
		return fmt.Errorf("failed to record %s %s: %w", kind, externalID, err)
	}
	return nil
}

// grantStartingRoles hands the freshly created roles to the crews. Failures
// here are not fatal: the resources exist and members can be fixed up by hand.
func (s *Service) grantStartingRoles(ctx context.Context, alliance *models.Alliance, ships []*models.Ship, memberRoleID, organizerRoleID, rightHandRoleID string, shipRoleIDs map[int]string) {
	grant := func(userID, roleID string) {
		if userID == "" || roleID == "" {
			return
		}
		if err := s.gateway.GrantRole(ctx, alliance.GuildID, userID, roleID); err != nil {
			slog.WarnContext(ctx, "Failed to grant role",
				"guild_id", alliance.GuildID,
				"user_id", userID,
				"role_id", roleID,
				"error", err)
		}
	}

	grant(alliance.OrganizerID, memberRoleID)
	grant(alliance.OrganizerID, organizerRoleID)
	grant(alliance.RightHandID, memberRoleID)
	grant(alliance.RightHandID, rightHandRoleID)

	participants, err := s.repo.GetActiveParticipants(ctx, alliance.ID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load participants for role grants", "error", err)
		return
	}

	shipBySlot := make(map[string]int, len(ships))
	for _, ship := range ships {
		shipBySlot[ship.ID.Hex()] = ship.Slot
	}

	for _, p := range participants {
		grant(p.UserID, memberRoleID)
		if slot, ok := shipBySlot[p.ShipID.Hex()]; ok {
			grant(p.UserID, shipRoleIDs[slot])
		}
	}
}
