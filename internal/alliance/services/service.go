package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go-armada/internal/alliance/models"
	"go-armada/pkg/timeparse"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service implements the alliance lifecycle: configuration sessions, the
// planned/matching/in_game/finished/cancelled state machine, crew membership
// and the provisioning of guild resources.
type Service struct {
	repo      *Repository
	resources resourceStore
	gateway   Gateway
	sessions  *SessionStore
	settings  SettingsProvider
	renderer  Renderer
	worker    *TeardownWorker

	now func() time.Time
}

// NewService creates the alliance service.
func NewService(repo *Repository, gateway Gateway, sessions *SessionStore, settings SettingsProvider, renderer Renderer, worker *TeardownWorker) *Service {
	return &Service{
		repo:      repo,
		resources: repo,
		gateway:   gateway,
		sessions:  sessions,
		settings:  settings,
		renderer:  renderer,
		worker:    worker,
		now:       time.Now,
	}
}

// Worker exposes the teardown retry worker so the module can run it.
func (s *Service) Worker() *TeardownWorker {
	return s.worker
}

// InitializeIndexes creates the database indexes of the alliance collections.
func (s *Service) InitializeIndexes(ctx context.Context) error {
	return s.repo.CreateIndexes(ctx)
}

// guildLocation resolves the guild's display timezone, defaulting to UTC.
func (s *Service) guildLocation(ctx context.Context, guildID string) *time.Location {
	cfg, err := s.settings.GuildSettings(ctx, guildID)
	if err != nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OpenSession starts a configuration session for the user, discarding any
// session they already had open in the guild.
func (s *Service) OpenSession(ctx context.Context, guildID, userID, displayName string) (*Session, error) {
	user, err := s.repo.UpsertUser(ctx, userID, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}

	return s.sessions.Open(guildID, userID), nil
}

// SetSessionDate parses and stores the event date.
func (s *Service) SetSessionDate(ctx context.Context, guildID, userID, rawDate string) error {
	loc := s.guildLocation(ctx, guildID)
	iso, ok := timeparse.ParseDate(rawDate, s.now(), loc)
	if !ok {
		return ErrInvalidDate
	}

	if !s.sessions.Update(guildID, userID, func(session *Session) {
		session.DateISO = iso
	}) {
		return ErrNoSession
	}
	return nil
}

// SetSessionStart parses and stores the start time of day.
func (s *Service) SetSessionStart(ctx context.Context, guildID, userID, rawTime string) error {
	hhmm, ok := timeparse.ParseTime(rawTime)
	if !ok {
		return ErrInvalidTime
	}

	if !s.sessions.Update(guildID, userID, func(session *Session) {
		session.StartTime = hhmm
	}) {
		return ErrNoSession
	}
	return nil
}

// SetSessionSale parses and stores the sale time of day.
func (s *Service) SetSessionSale(ctx context.Context, guildID, userID, rawTime string) error {
	hhmm, ok := timeparse.ParseTime(rawTime)
	if !ok {
		return ErrInvalidTime
	}

	if !s.sessions.Update(guildID, userID, func(session *Session) {
		session.SaleTime = hhmm
	}) {
		return ErrNoSession
	}
	return nil
}

// SetSessionRightHand stores the deputy. A mention that carries no user ID
// clears the deputy rather than failing.
func (s *Service) SetSessionRightHand(ctx context.Context, guildID, userID, mention string) error {
	deputy := ParseMentionID(mention)

	if !s.sessions.Update(guildID, userID, func(session *Session) {
		session.RightHandID = deputy
	}) {
		return ErrNoSession
	}
	return nil
}

// SetSessionReuse stores whether ships are kept up between play sessions.
func (s *Service) SetSessionReuse(ctx context.Context, guildID, userID string, reuse bool) error {
	if !s.sessions.Update(guildID, userID, func(session *Session) {
		session.Reuse = reuse
		session.ReuseSet = true
	}) {
		return ErrNoSession
	}
	return nil
}

// BeginSessionFleet sizes the fleet and starts per-ship configuration. The
// requested size is capped by the guild's configured maximum.
func (s *Service) BeginSessionFleet(ctx context.Context, guildID, userID string, requested int) error {
	max := 6
	if cfg, err := s.settings.GuildSettings(ctx, guildID); err == nil && cfg.DefaultMaxShips > 0 {
		max = cfg.DefaultMaxShips
	}
	if requested > max {
		requested = max
	}

	if !s.sessions.Update(guildID, userID, func(session *Session) {
		session.BeginFleet(requested)
	}) {
		return ErrNoSession
	}
	return nil
}

// SetSessionShipHull chooses the hull for the ship under the cursor.
func (s *Service) SetSessionShipHull(ctx context.Context, guildID, userID string, hull models.HullType) error {
	if !hull.Valid() {
		return fmt.Errorf("unknown hull type %q", hull)
	}

	ok := false
	if !s.sessions.Update(guildID, userID, func(session *Session) {
		ok = session.SetShipHull(hull)
	}) {
		return ErrNoSession
	}
	if !ok {
		return ErrSessionNotReady
	}
	return nil
}

// SetSessionShipRole chooses the crew role for the ship under the cursor.
func (s *Service) SetSessionShipRole(ctx context.Context, guildID, userID, role string) error {
	ok := false
	if !s.sessions.Update(guildID, userID, func(session *Session) {
		ok = session.SetShipRole(role)
	}) {
		return ErrNoSession
	}
	if !ok {
		return ErrSessionNotReady
	}
	return nil
}

// NextSessionShip moves the configuration cursor to the next ship. It
// reports whether another ship remains.
func (s *Service) NextSessionShip(ctx context.Context, guildID, userID string) (bool, error) {
	more := false
	if !s.sessions.Update(guildID, userID, func(session *Session) {
		more = session.NextShip()
	}) {
		return false, ErrNoSession
	}
	return more, nil
}

// GetSession returns the user's open session, if any.
func (s *Service) GetSession(guildID, userID string) *Session {
	return s.sessions.Get(guildID, userID)
}

// resolveSchedule turns session date and times into UTC instants. A sale
// time at or before the start time means the sale happens the next day.
func (s *Service) resolveSchedule(session *Session, loc *time.Location) (start, sale time.Time, err error) {
	start, ok := timeparse.Combine(session.DateISO, session.StartTime, loc)
	if !ok {
		return time.Time{}, time.Time{}, ErrInvalidTime
	}
	sale, ok = timeparse.Combine(session.DateISO, session.SaleTime, loc)
	if !ok {
		return time.Time{}, time.Time{}, ErrInvalidTime
	}

	if !sale.After(start) {
		// The sale happens on the following calendar day in the guild's
		// timezone, recombined so DST shifts keep the wall-clock time.
		nextISO, ok := timeparse.NextDay(session.DateISO)
		if !ok {
			return time.Time{}, time.Time{}, ErrInvalidDate
		}
		sale, ok = timeparse.Combine(nextISO, session.SaleTime, loc)
		if !ok {
			return time.Time{}, time.Time{}, ErrInvalidTime
		}
	}
	if !sale.After(start) {
		return time.Time{}, time.Time{}, ErrSaleBeforeStart
	}
	if !start.After(s.now().UTC()) {
		return time.Time{}, time.Time{}, ErrStartInPast
	}

	return start, sale, nil
}

// FinishSession validates the session, persists the alliance with its ships
// and publishes the announcement thread. The session is dropped on success.
func (s *Service) FinishSession(ctx context.Context, guildID, userID string) (*models.Alliance, error) {
	session := s.sessions.Get(guildID, userID)
	if session == nil {
		return nil, ErrNoSession
	}
	if !session.Ready() {
		return nil, ErrSessionNotReady
	}

	loc := s.guildLocation(ctx, guildID)
	start, sale, err := s.resolveSchedule(session, loc)
	if err != nil {
		return nil, err
	}

	alliance := &models.Alliance{
		GuildID:      guildID,
		OrganizerID:  userID,
		RightHandID:  session.RightHandID,
		Name:         RandomAllianceName(),
		ScheduledAt:  start,
		SaleAt:       sale,
		Status:       models.StatusPlanned,
		MaxShips:     len(session.Ships),
		ReusePlanned: session.Reuse,
	}
	if err := s.repo.CreateAlliance(ctx, alliance); err != nil {
		return nil, fmt.Errorf("failed to create alliance: %w", err)
	}

	ships := make([]*models.Ship, 0, len(session.Ships))
	for i, draft := range session.Ships {
		ships = append(ships, &models.Ship{
			AllianceID: alliance.ID,
			Slot:       i + 1,
			Hull:       draft.Hull,
			CrewRole:   draft.CrewRole,
		})
	}
	if err := s.repo.CreateShips(ctx, ships); err != nil {
		return nil, fmt.Errorf("failed to create ships: %w", err)
	}

	s.sessions.Delete(guildID, userID)

	// The thread and announcement are created off the request path; the
	// alliance exists either way and the janitor can re-render later.
	go s.publish(context.WithoutCancel(ctx), alliance, loc)

	return alliance, nil
}

// publish creates the forum thread and the roster message, and pings the
// notify role when the guild configured one.
func (s *Service) publish(ctx context.Context, alliance *models.Alliance, loc *time.Location) {
	cfg, err := s.settings.GuildSettings(ctx, alliance.GuildID)
	if err != nil || cfg.AllianceForumChannelID == "" {
		slog.WarnContext(ctx, "No alliance forum channel configured, skipping thread",
			"guild_id", alliance.GuildID, "error", err)
		return
	}

	title := fmt.Sprintf("%s — %s", alliance.Name, alliance.ScheduledAt.In(loc).Format("02/01 15:04"))
	threadID, err := s.gateway.CreateForumThread(ctx, cfg.AllianceForumChannelID, title,
		fmt.Sprintf("Alliance organized by <@%s>. Roster follows.", alliance.OrganizerID))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create alliance thread",
			"alliance_id", alliance.ID.Hex(), "error", err)
		return
	}

	if err := s.repo.UpdateAllianceFields(ctx, alliance.ID, bson.M{"thread_channel_id": threadID}); err != nil {
		slog.ErrorContext(ctx, "Failed to record thread channel",
			"alliance_id", alliance.ID.Hex(), "error", err)
		return
	}
	alliance.ThreadChannelID = threadID

	if err := s.repo.RecordResource(ctx, &models.ProvisionedResource{
		AllianceID: alliance.ID,
		Kind:       models.ResourceThread,
		ExternalID: threadID,
		Name:       title,
		AutoDelete: false,
	}); err != nil {
		slog.ErrorContext(ctx, "Failed to record thread resource",
			"alliance_id", alliance.ID.Hex(), "error", err)
	}

	if err := s.renderer.RefreshRoster(ctx, alliance); err != nil {
		slog.ErrorContext(ctx, "Failed to render roster",
			"alliance_id", alliance.ID.Hex(), "error", err)
	}

	if cfg.PingChannelID != "" && cfg.NotifyRoleID != "" {
		content := fmt.Sprintf("<@&%s> A new alliance is forming: <#%s>", cfg.NotifyRoleID, threadID)
		if _, err := s.gateway.CreateMessage(ctx, cfg.PingChannelID, content); err != nil {
			slog.WarnContext(ctx, "Failed to ping notify role",
				"alliance_id", alliance.ID.Hex(), "error", err)
		}
	}
}

// lookup finds the alliance bound to the thread channel the command came from.
func (s *Service) lookup(ctx context.Context, guildID, threadChannelID string) (*models.Alliance, error) {
	alliance, err := s.repo.GetAllianceByThread(ctx, guildID, threadChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up alliance: %w", err)
	}
	if alliance == nil {
		return nil, ErrNoAlliance
	}
	return alliance, nil
}

// lookupForControl additionally checks the caller is the organizer or the
// right hand.
func (s *Service) lookupForControl(ctx context.Context, guildID, threadChannelID, userID string) (*models.Alliance, error) {
	alliance, err := s.lookup(ctx, guildID, threadChannelID)
	if err != nil {
		return nil, err
	}
	if userID != alliance.OrganizerID && (alliance.RightHandID == "" || userID != alliance.RightHandID) {
		return nil, ErrNotAuthorized
	}
	return alliance, nil
}

// Start moves a planned alliance into matching and provisions its guild
// resources. The state write carries the expected current status, so a
// concurrent start loses the race and reports the alliance as started.
func (s *Service) Start(ctx context.Context, guildID, threadChannelID, userID string) (*models.Alliance, error) {
	alliance, err := s.lookupForControl(ctx, guildID, threadChannelID, userID)
	if err != nil {
		return nil, err
	}
	if alliance.Status != models.StatusPlanned {
		return nil, ErrAlreadyStarted
	}

	won, err := s.repo.TransitionStatus(ctx, alliance.ID, []models.Status{models.StatusPlanned}, models.StatusMatching)
	if err != nil {
		return nil, fmt.Errorf("failed to transition status: %w", err)
	}
	if !won {
		return nil, ErrAlreadyStarted
	}
	alliance.Status = models.StatusMatching

	// Provisioning talks to Discord and can take a while; it runs off the
	// request path.
	go func(a models.Alliance) {
		bg := context.WithoutCancel(ctx)
		if err := s.Provision(bg, &a); err != nil {
			slog.ErrorContext(bg, "Provisioning failed",
				"alliance_id", a.ID.Hex(), "error", err)
		}
		if err := s.renderer.RefreshRoster(bg, &a); err != nil {
			slog.ErrorContext(bg, "Failed to refresh roster after start",
				"alliance_id", a.ID.Hex(), "error", err)
		}
	}(*alliance)

	return alliance, nil
}

// cancelGuard rejects cancellation of anything but a planned alliance. Once
// started an alliance must be ended so its resources get torn down.
func cancelGuard(status models.Status) error {
	switch status {
	case models.StatusPlanned:
		return nil
	case models.StatusMatching, models.StatusInGame:
		return ErrAlreadyStarted
	default:
		return ErrAlreadyOver
	}
}

// leaveGuard rejects leaving an alliance that is already over. The crew of a
// finished or cancelled alliance is part of its record.
func leaveGuard(status models.Status) error {
	if status.Terminal() {
		return ErrAlreadyOver
	}
	return nil
}

// Cancel aborts a planned alliance. Once started it can only be ended.
func (s *Service) Cancel(ctx context.Context, guildID, threadChannelID, userID string) (*models.Alliance, error) {
	alliance, err := s.lookupForControl(ctx, guildID, threadChannelID, userID)
	if err != nil {
		return nil, err
	}
	if err := cancelGuard(alliance.Status); err != nil {
		return nil, err
	}

	won, err := s.repo.TransitionStatus(ctx, alliance.ID, []models.Status{models.StatusPlanned}, models.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to transition status: %w", err)
	}
	if !won {
		return nil, ErrAlreadyStarted
	}
	alliance.Status = models.StatusCancelled

	s.renameThread(ctx, alliance, CancelledPrefix)
	if err := s.renderer.RefreshRoster(ctx, alliance); err != nil {
		slog.WarnContext(ctx, "Failed to refresh roster after cancel",
			"alliance_id", alliance.ID.Hex(), "error", err)
	}

	return alliance, nil
}

// End finishes a running alliance and tears its resources down. Ending an
// alliance that is already over only re-runs the cleanup, which makes the
// operation safe to repeat after partial failures.
func (s *Service) End(ctx context.Context, guildID, threadChannelID, userID string) (*models.Alliance, error) {
	alliance, err := s.lookupForControl(ctx, guildID, threadChannelID, userID)
	if err != nil {
		return nil, err
	}

	switch alliance.Status {
	case models.StatusPlanned:
		return nil, ErrNotStarted
	case models.StatusMatching, models.StatusInGame:
		won, err := s.repo.TransitionStatus(ctx, alliance.ID,
			[]models.Status{models.StatusMatching, models.StatusInGame}, models.StatusFinished)
		if err != nil {
			return nil, fmt.Errorf("failed to transition status: %w", err)
		}
		if !won {
			return nil, ErrAlreadyOver
		}
		alliance.Status = models.StatusFinished

		s.renameThread(ctx, alliance, FinishedPrefix)
		if err := s.renderer.RefreshRoster(ctx, alliance); err != nil {
			slog.WarnContext(ctx, "Failed to refresh roster after end",
				"alliance_id", alliance.ID.Hex(), "error", err)
		}
	}

	if err := s.Teardown(ctx, alliance); err != nil {
		return nil, fmt.Errorf("teardown failed: %w", err)
	}
	return alliance, nil
}

// renameThread prefixes the thread title with the terminal marker. Rename is
// cosmetic; failures are logged and do not block the lifecycle.
func (s *Service) renameThread(ctx context.Context, alliance *models.Alliance, prefix string) {
	if alliance.ThreadChannelID == "" {
		return
	}
	if err := s.gateway.RenameChannel(ctx, alliance.ThreadChannelID, prefix+alliance.Name); err != nil {
		slog.WarnContext(ctx, "Failed to rename alliance thread",
			"alliance_id", alliance.ID.Hex(),
			"thread_id", alliance.ThreadChannelID,
			"error", err)
	}
}

// EditSchedule changes the event date and times. Empty fields keep their
// current value; the same ordering and future rules as creation apply.
func (s *Service) EditSchedule(ctx context.Context, guildID, threadChannelID, userID, rawDate, rawStart, rawSale string) (*models.Alliance, error) {
	alliance, err := s.lookupForControl(ctx, guildID, threadChannelID, userID)
	if err != nil {
		return nil, err
	}
	if alliance.Status.Terminal() {
		return nil, ErrAlreadyOver
	}

	loc := s.guildLocation(ctx, guildID)

	dateISO := alliance.ScheduledAt.In(loc).Format("2006-01-02")
	if rawDate != "" {
		var ok bool
		dateISO, ok = timeparse.ParseDate(rawDate, s.now(), loc)
		if !ok {
			return nil, ErrInvalidDate
		}
	}
	startHHMM := alliance.ScheduledAt.In(loc).Format("15:04")
	if rawStart != "" {
		var ok bool
		startHHMM, ok = timeparse.ParseTime(rawStart)
		if !ok {
			return nil, ErrInvalidTime
		}
	}
	saleHHMM := alliance.SaleAt.In(loc).Format("15:04")
	if rawSale != "" {
		var ok bool
		saleHHMM, ok = timeparse.ParseTime(rawSale)
		if !ok {
			return nil, ErrInvalidTime
		}
	}

	draft := &Session{DateISO: dateISO, StartTime: startHHMM, SaleTime: saleHHMM}
	start, sale, err := s.resolveSchedule(draft, loc)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAllianceFields(ctx, alliance.ID, bson.M{
		"scheduled_at": start,
		"sale_at":      sale,
	}); err != nil {
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}
	alliance.ScheduledAt = start
	alliance.SaleAt = sale

	if err := s.renderer.RefreshRoster(ctx, alliance); err != nil {
		slog.WarnContext(ctx, "Failed to refresh roster after edit",
			"alliance_id", alliance.ID.Hex(), "error", err)
	}
	return alliance, nil
}

// EditShip changes the hull or the crew role of one ship slot.
func (s *Service) EditShip(ctx context.Context, guildID, threadChannelID, userID string, slot int, hull models.HullType, crewRole string) (*models.Alliance, error) {
	alliance, err := s.lookupForControl(ctx, guildID, threadChannelID, userID)
	if err != nil {
		return nil, err
	}
	if alliance.Status.Terminal() {
		return nil, ErrAlreadyOver
	}

	ship, err := s.repo.GetShipBySlot(ctx, alliance.ID, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship: %w", err)
	}
	if ship == nil {
		return nil, ErrUnknownShip
	}

	fields := bson.M{}
	if hull != "" {
		if !hull.Valid() {
			return nil, fmt.Errorf("unknown hull type %q", hull)
		}
		fields["hull"] = hull
	}
	if crewRole != "" {
		fields["crew_role"] = crewRole
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateShip(ctx, ship.ID, fields); err != nil {
			return nil, fmt.Errorf("failed to update ship: %w", err)
		}
	}

	if err := s.renderer.RefreshRoster(ctx, alliance); err != nil {
		slog.WarnContext(ctx, "Failed to refresh roster after ship edit",
			"alliance_id", alliance.ID.Hex(), "error", err)
	}
	return alliance, nil
}

// EditReuse changes whether ships are kept up between play sessions.
func (s *Service) EditReuse(ctx context.Context, guildID, threadChannelID, userID string, reuse bool) (*models.Alliance, error) {
	alliance, err := s.lookupForControl(ctx, guildID, threadChannelID, userID)
	if err != nil {
		return nil, err
	}
	if alliance.Status.Terminal() {
		return nil, ErrAlreadyOver
	}

	if err := s.repo.UpdateAllianceFields(ctx, alliance.ID, bson.M{"reuse_planned": reuse}); err != nil {
		return nil, fmt.Errorf("failed to update reuse flag: %w", err)
	}
	alliance.ReusePlanned = reuse

	if err := s.renderer.RefreshRoster(ctx, alliance); err != nil {
		slog.WarnContext(ctx, "Failed to refresh roster after reuse edit",
			"alliance_id", alliance.ID.Hex(), "error", err)
	}
	return alliance, nil
}

// Join puts the user on a ship. Joining a second time switches ships;
// joining the ship they are already on is rejected.
func (s *Service) Join(ctx context.Context, guildID, threadChannelID, userID, displayName string, slot int) (*models.Alliance, error) {
	alliance, err := s.lookup(ctx, guildID, threadChannelID)
	if err != nil {
		return nil, err
	}
	if alliance.Status.Terminal() {
		return nil, ErrAlreadyOver
	}

	if cfg, err := s.settings.GuildSettings(ctx, guildID); err == nil && !cfg.AllowPublicJoin {
		if userID != alliance.OrganizerID && userID != alliance.RightHandID {
			return nil, ErrJoinClosed
		}
	}

	user, err := s.repo.UpsertUser(ctx, userID, displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}

	ship, err := s.repo.GetShipBySlot(ctx, alliance.ID, slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load ship: %w", err)
	}
	if ship == nil {
		return nil, ErrUnknownShip
	}

	current, err := s.repo.GetActiveParticipant(ctx, alliance.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	if current != nil {
		if current.ShipID == ship.ID {
			return nil, ErrAlreadyAboard
		}
		if _, err := s.repo.SwitchShip(ctx, current, ship.ID); err != nil {
			return nil, fmt.Errorf("failed to switch ship: %w", err)
		}
		s.syncJoinRoles(ctx, alliance, ship, userID, current)
	} else {
		participant := &models.Participant{
			AllianceID: alliance.ID,
			ShipID:     ship.ID,
			UserID:     userID,
		}
		if err := s.repo.InsertParticipant(ctx, participant); err != nil {
			return nil, fmt.Errorf("failed to insert participant: %w", err)
		}
		s.syncJoinRoles(ctx, alliance, ship, userID, nil)
	}

	if err := s.renderer.RefreshRoster(ctx, alliance); err != nil {
		slog.WarnContext(ctx, "Failed to refresh roster after join",
			"alliance_id", alliance.ID.Hex(), "error", err)
	}
	return alliance, nil
}

// Leave removes the user from the alliance. The ship role is always revoked;
// the member role only goes once no active membership in this alliance still
// grants it.
func (s *Service) Leave(ctx context.Context, guildID, threadChannelID, userID string) (*models.Alliance, error) {
	alliance, err := s.lookup(ctx, guildID, threadChannelID)
	if err != nil {
		return nil, err
	}
	if err := leaveGuard(alliance.Status); err != nil {
		return nil, err
	}

	current, err := s.repo.GetActiveParticipant(ctx, alliance.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	if current == nil {
		return nil, ErrNotAboard
	}

	if err := s.repo.CloseParticipant(ctx, current.ID); err != nil {
		return nil, fmt.Errorf("failed to close membership: %w", err)
	}

	if alliance.Status == models.StatusMatching || alliance.Status == models.StatusInGame {
		roles := s.roleResourcesByName(ctx, alliance.ID)

		if ships, err := s.repo.GetShipsByAlliance(ctx, alliance.ID); err == nil {
			for _, sh := range ships {
				if sh.ID == current.ShipID {
					s.revokeRole(ctx, alliance.GuildID, userID, roles[ShipRoleName(string(sh.Hull), sh.CrewRole)])
				}
			}
		}

		remaining, err := s.repo.CountActiveMemberships(ctx, alliance.ID, userID)
		if err == nil && remaining == 0 {
			s.revokeRole(ctx, alliance.GuildID, userID, roles[alliance.Name])
		}
	}

	if err := s.renderer.RefreshRoster(ctx, alliance); err != nil {
		slog.WarnContext(ctx, "Failed to refresh roster after leave",
			"alliance_id", alliance.ID.Hex(), "error", err)
	}
	return alliance, nil
}

// syncJoinRoles grants the member and ship roles once the alliance has been
// provisioned. On a ship switch the previous ship role is revoked first.
func (s *Service) syncJoinRoles(ctx context.Context, alliance *models.Alliance, ship *models.Ship, userID string, previous *models.Participant) {
	if alliance.Status != models.StatusMatching && alliance.Status != models.StatusInGame {
		return
	}

	roles := s.roleResourcesByName(ctx, alliance.ID)

	if previous != nil {
		if ships, err := s.repo.GetShipsByAlliance(ctx, alliance.ID); err == nil {
			for _, sh := range ships {
				if sh.ID == previous.ShipID {
					s.revokeRole(ctx, alliance.GuildID, userID, roles[ShipRoleName(string(sh.Hull), sh.CrewRole)])
				}
			}
		}
	}

	s.grantRole(ctx, alliance.GuildID, userID, roles[alliance.Name])
	s.grantRole(ctx, alliance.GuildID, userID, roles[ShipRoleName(string(ship.Hull), ship.CrewRole)])
}

// roleResourcesByName maps live provisioned role names to Discord role IDs.
func (s *Service) roleResourcesByName(ctx context.Context, allianceID primitive.ObjectID) map[string]string {
	resources, err := s.repo.GetLiveResources(ctx, allianceID, true)
	if err != nil {
		slog.WarnContext(ctx, "Failed to load role resources",
			"alliance_id", allianceID.Hex(), "error", err)
		return nil
	}

	roles := make(map[string]string)
	for _, res := range resources {
		if res.Kind == models.ResourceRole {
			roles[res.Name] = res.ExternalID
		}
	}
	return roles
}

func (s *Service) grantRole(ctx context.Context, guildID, userID, roleID string) {
	if roleID == "" {
		return
	}
	if err := s.gateway.GrantRole(ctx, guildID, userID, roleID); err != nil {
		slog.WarnContext(ctx, "Failed to grant role",
			"guild_id", guildID, "user_id", userID, "role_id", roleID, "error", err)
	}
}

func (s *Service) revokeRole(ctx context.Context, guildID, userID, roleID string) {
	if roleID == "" {
		return
	}
	if err := s.gateway.RevokeRole(ctx, guildID, userID, roleID); err != nil {
		slog.WarnContext(ctx, "Failed to revoke role",
			"guild_id", guildID, "user_id", userID, "role_id", roleID, "error", err)
	}
}

// ListAlliances returns the alliances of a guild in the given states.
func (s *Service) ListAlliances(ctx context.Context, guildID string, statuses []models.Status) ([]*models.Alliance, error) {
	if len(statuses) == 0 {
		statuses = []models.Status{
			models.StatusPlanned, models.StatusMatching, models.StatusInGame,
			models.StatusFinished, models.StatusCancelled,
		}
	}
	return s.repo.ListAlliancesByStatus(ctx, guildID, statuses)
}

// GetRoster returns the alliance bound to a thread along with its resolved
// crew assignments.
func (s *Service) GetRoster(ctx context.Context, guildID, threadChannelID string) (*models.Alliance, []CrewAssignment, error) {
	alliance, err := s.lookup(ctx, guildID, threadChannelID)
	if err != nil {
		return nil, nil, err
	}

	ships, err := s.repo.GetShipsByAlliance(ctx, alliance.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ships: %w", err)
	}
	participants, err := s.repo.GetActiveParticipants(ctx, alliance.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load participants: %w", err)
	}

	return alliance, AssignCrews(ships, participants), nil
}

// SweepStale advances matching alliances whose start instant passed into
// in_game, and re-runs teardown for terminal alliances that still hold live
// auto-delete resources. The janitor calls it on a schedule.
func (s *Service) SweepStale(ctx context.Context) {
	now := s.now().UTC()

	matching, err := s.repo.ListAlliancesByStatus(ctx, "", []models.Status{models.StatusMatching})
	if err != nil {
		slog.ErrorContext(ctx, "Sweep failed to list matching alliances", "error", err)
	} else {
		for _, alliance := range matching {
			if alliance.ScheduledAt.After(now) {
				continue
			}
			won, err := s.repo.TransitionStatus(ctx, alliance.ID,
				[]models.Status{models.StatusMatching}, models.StatusInGame)
			if err != nil {
				slog.ErrorContext(ctx, "Sweep failed to mark alliance in game",
					"alliance_id", alliance.ID.Hex(), "error", err)
				continue
			}
			if won {
				slog.InfoContext(ctx, "Alliance is now in game",
					"alliance_id", alliance.ID.Hex(), "name", alliance.Name)
			}
		}
	}

	terminal, err := s.repo.ListAlliancesByStatus(ctx, "",
		[]models.Status{models.StatusFinished, models.StatusCancelled})
	if err != nil {
		slog.ErrorContext(ctx, "Sweep failed to list terminal alliances", "error", err)
		return
	}
	for _, alliance := range terminal {
		live, err := s.repo.GetLiveResources(ctx, alliance.ID, true)
		if err != nil || len(live) == 0 {
			continue
		}
		slog.InfoContext(ctx, "Sweep re-running teardown for orphaned resources",
			"alliance_id", alliance.ID.Hex(), "live_resources", len(live))
		if err := s.Teardown(ctx, alliance); err != nil {
			slog.WarnContext(ctx, "Sweep teardown failed",
				"alliance_id", alliance.ID.Hex(), "error", err)
		}
	}
}

// GetStatus reports module health for the status endpoint.
func (s *Service) GetStatus(ctx context.Context) string {
	if err := s.repo.mongodb.HealthCheck(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}
