package routes

import (
	"context"
	"errors"
	"strings"

	"go-armada/internal/alliance/dto"
	"go-armada/internal/alliance/models"
	"go-armada/internal/alliance/services"
	"go-armada/pkg/handlers"

	"github.com/danielgtaylor/huma/v2"
)

// Module represents the alliance routes module
type Module struct {
	service *services.Service
}

// NewModule creates a new alliance routes module
func NewModule(service *services.Service) *Module {
	return &Module{
		service: service,
	}
}

// RegisterUnifiedRoutes registers all alliance routes with the provided Huma API
func (m *Module) RegisterUnifiedRoutes(api huma.API, basePath string) {
	// Configuration session wizard
	huma.Register(api, huma.Operation{
		OperationID: "alliance-session-open",
		Method:      "POST",
		Path:        basePath + "/sessions",
		Summary:     "Open Configuration Session",
		Description: "Start configuring a new alliance. Any session the user already had open in the guild is discarded.",
		Tags:        []string{"Alliance Sessions"},
	}, m.openSession)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-session-schedule",
		Method:      "PUT",
		Path:        basePath + "/sessions/schedule",
		Summary:     "Set Session Schedule",
		Description: "Set the event date, start time or sale time of the open session. Fields left empty are untouched.",
		Tags:        []string{"Alliance Sessions"},
	}, m.setSessionSchedule)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-session-deputy",
		Method:      "PUT",
		Path:        basePath + "/sessions/deputy",
		Summary:     "Set Session Right Hand",
		Tags:        []string{"Alliance Sessions"},
	}, m.setSessionDeputy)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-session-reuse",
		Method:      "PUT",
		Path:        basePath + "/sessions/reuse",
		Summary:     "Set Session Reuse Flag",
		Tags:        []string{"Alliance Sessions"},
	}, m.setSessionReuse)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-session-fleet",
		Method:      "POST",
		Path:        basePath + "/sessions/fleet",
		Summary:     "Begin Fleet Configuration",
		Description: "Size the fleet and start per-ship configuration. The size is capped by the guild's maximum.",
		Tags:        []string{"Alliance Sessions"},
	}, m.beginSessionFleet)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-session-ship",
		Method:      "PUT",
		Path:        basePath + "/sessions/ship",
		Summary:     "Configure Current Ship",
		Description: "Set the hull or crew role of the ship under the session cursor.",
		Tags:        []string{"Alliance Sessions"},
	}, m.setSessionShip)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-session-next-ship",
		Method:      "POST",
		Path:        basePath + "/sessions/ship/next",
		Summary:     "Advance To Next Ship",
		Tags:        []string{"Alliance Sessions"},
	}, m.nextSessionShip)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-session-finish",
		Method:      "POST",
		Path:        basePath + "/sessions/finish",
		Summary:     "Finish Session",
		Description: "Validate the session and create the alliance. The announcement thread is published asynchronously.",
		Tags:        []string{"Alliance Sessions"},
	}, m.finishSession)

	// Lifecycle commands
	huma.Register(api, huma.Operation{
		OperationID: "alliance-start",
		Method:      "POST",
		Path:        basePath + "/start",
		Summary:     "Start Alliance",
		Description: "Move a planned alliance into matching and provision its guild roles and channels.",
		Tags:        []string{"Alliances"},
	}, m.start)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-cancel",
		Method:      "POST",
		Path:        basePath + "/cancel",
		Summary:     "Cancel Alliance",
		Description: "Abort a planned alliance. A started alliance must be ended instead.",
		Tags:        []string{"Alliances"},
	}, m.cancel)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-end",
		Method:      "POST",
		Path:        basePath + "/end",
		Summary:     "End Alliance",
		Description: "Finish a running alliance and tear down its provisioned resources. Safe to repeat.",
		Tags:        []string{"Alliances"},
	}, m.end)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-edit-schedule",
		Method:      "PATCH",
		Path:        basePath + "/schedule",
		Summary:     "Edit Schedule",
		Tags:        []string{"Alliances"},
	}, m.editSchedule)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-edit-ship",
		Method:      "PATCH",
		Path:        basePath + "/ships/{slot}",
		Summary:     "Edit Ship",
		Tags:        []string{"Alliances"},
	}, m.editShip)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-edit-reuse",
		Method:      "PATCH",
		Path:        basePath + "/reuse",
		Summary:     "Edit Reuse Flag",
		Tags:        []string{"Alliances"},
	}, m.editReuse)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-join",
		Method:      "POST",
		Path:        basePath + "/join",
		Summary:     "Join Alliance",
		Description: "Board a ship. Joining while already aboard another ship switches ships.",
		Tags:        []string{"Alliances"},
	}, m.join)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-leave",
		Method:      "POST",
		Path:        basePath + "/leave",
		Summary:     "Leave Alliance",
		Tags:        []string{"Alliances"},
	}, m.leave)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-get-roster",
		Method:      "GET",
		Path:        basePath + "/roster",
		Summary:     "Get Roster",
		Description: "Return the alliance bound to a thread with its crews split into primary seats and replacements.",
		Tags:        []string{"Alliances"},
	}, m.getRoster)

	huma.Register(api, huma.Operation{
		OperationID: "alliance-list",
		Method:      "GET",
		Path:        basePath,
		Summary:     "List Alliances",
		Tags:        []string{"Alliances"},
	}, m.listAlliances)

	// Status endpoint (public, no auth required)
	huma.Register(api, huma.Operation{
		OperationID: "alliance-get-status",
		Method:      "GET",
		Path:        basePath + "/status",
		Summary:     "Get alliance module status",
		Description: "Returns the health status of the alliance module",
		Tags:        []string{"Module Status"},
	}, func(ctx context.Context, input *struct{}) (*dto.StatusOutput, error) {
		out := &dto.StatusOutput{}
		out.Body.Module = "alliance"
		out.Body.Status = m.service.GetStatus(ctx)
		return out, nil
	})
}

// validateRequest runs struct-tag validation over a request body or query
// struct before the service sees it.
func validateRequest(body interface{}) error {
	if err := handlers.ValidateStruct(body); err != nil {
		return huma.Error422UnprocessableEntity(strings.Join(handlers.ValidationMessages(err), "; "))
	}
	return nil
}

func (m *Module) openSession(ctx context.Context, input *dto.OpenSessionInput) (*dto.SessionOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	session, err := m.service.OpenSession(ctx, input.Body.GuildID, input.Body.UserID, input.Body.DisplayName)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return sessionOutput(session), nil
}

func (m *Module) setSessionSchedule(ctx context.Context, input *dto.SessionScheduleInput) (*dto.SessionOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	guildID, userID := input.Body.GuildID, input.Body.UserID

	if input.Body.Date != "" {
		if err := m.service.SetSessionDate(ctx, guildID, userID, input.Body.Date); err != nil {
			return nil, mapServiceError(err)
		}
	}
	if input.Body.StartTime != "" {
		if err := m.service.SetSessionStart(ctx, guildID, userID, input.Body.StartTime); err != nil {
			return nil, mapServiceError(err)
		}
	}
	if input.Body.SaleTime != "" {
		if err := m.service.SetSessionSale(ctx, guildID, userID, input.Body.SaleTime); err != nil {
			return nil, mapServiceError(err)
		}
	}

	return m.currentSession(guildID, userID)
}

func (m *Module) setSessionDeputy(ctx context.Context, input *dto.SessionDeputyInput) (*dto.SessionOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	if err := m.service.SetSessionRightHand(ctx, input.Body.GuildID, input.Body.UserID, input.Body.Mention); err != nil {
		return nil, mapServiceError(err)
	}
	return m.currentSession(input.Body.GuildID, input.Body.UserID)
}

func (m *Module) setSessionReuse(ctx context.Context, input *dto.SessionReuseInput) (*dto.SessionOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	if err := m.service.SetSessionReuse(ctx, input.Body.GuildID, input.Body.UserID, input.Body.Reuse); err != nil {
		return nil, mapServiceError(err)
	}
	return m.currentSession(input.Body.GuildID, input.Body.UserID)
}

func (m *Module) beginSessionFleet(ctx context.Context, input *dto.SessionFleetInput) (*dto.SessionOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	if err := m.service.BeginSessionFleet(ctx, input.Body.GuildID, input.Body.UserID, input.Body.Ships); err != nil {
		return nil, mapServiceError(err)
	}
	return m.currentSession(input.Body.GuildID, input.Body.UserID)
}

func (m *Module) setSessionShip(ctx context.Context, input *dto.SessionShipInput) (*dto.SessionOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	guildID, userID := input.Body.GuildID, input.Body.UserID

	if input.Body.Hull != "" {
		if err := m.service.SetSessionShipHull(ctx, guildID, userID, models.HullType(input.Body.Hull)); err != nil {
			return nil, mapServiceError(err)
		}
	}
	if input.Body.CrewRole != "" {
		if err := m.service.SetSessionShipRole(ctx, guildID, userID, input.Body.CrewRole); err != nil {
			return nil, mapServiceError(err)
		}
	}

	return m.currentSession(guildID, userID)
}

func (m *Module) nextSessionShip(ctx context.Context, input *dto.SessionCursorInput) (*dto.SessionOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	if _, err := m.service.NextSessionShip(ctx, input.Body.GuildID, input.Body.UserID); err != nil {
		return nil, mapServiceError(err)
	}
	return m.currentSession(input.Body.GuildID, input.Body.UserID)
}

func (m *Module) finishSession(ctx context.Context, input *dto.SessionCursorInput) (*dto.AllianceOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	alliance, err := m.service.FinishSession(ctx, input.Body.GuildID, input.Body.UserID)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &dto.AllianceOutput{Body: toAllianceInfo(alliance)}, nil
}

func (m *Module) start(ctx context.Context, input *dto.LifecycleInput) (*dto.AllianceOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	alliance, err := m.service.Start(ctx, input.Body.GuildID, input.Body.ThreadChannelID, input.Body.UserID)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &dto.AllianceOutput{Body: toAllianceInfo(alliance)}, nil
}

func (m *Module) cancel(ctx context.Context, input *dto.LifecycleInput) (*dto.AllianceOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	alliance, err := m.service.Cancel(ctx, input.Body.GuildID, input.Body.ThreadChannelID, input.Body.UserID)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &dto.AllianceOutput{Body: toAllianceInfo(alliance)}, nil
}

func (m *Module) end(ctx context.Context, input *dto.LifecycleInput) (*dto.AllianceOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	alliance, err := m.service.End(ctx, input.Body.GuildID, input.Body.ThreadChannelID, input.Body.UserID)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &dto.AllianceOutput{Body: toAllianceInfo(alliance)}, nil
}

func (m *Module) editSchedule(ctx context.Context, input *dto.EditScheduleInput) (*dto.AllianceOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	alliance, err := m.service.EditSchedule(ctx,
		input.Body.GuildID, input.Body.ThreadChannelID, input.Body.UserID,
		input.Body.Date, input.Body.StartTime, input.Body.SaleTime)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &dto.AllianceOutput{Body: toAllianceInfo(alliance)}, nil
}

func (m *Module) editShip(ctx context.Context, input *dto.EditShipInput) (*dto.AllianceOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	alliance, err := m.service.EditShip(ctx,
		input.Body.GuildID, input.Body.ThreadChannelID, input.Body.UserID,
		input.Slot, models.HullType(input.Body.Hull), input.Body.CrewRole)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &dto.AllianceOutput{Body: toAllianceInfo(alliance)}, nil
}

func (m *Module) editReuse(ctx context.Context, input *dto.EditReuseInput) (*dto.AllianceOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	alliance, err := m.service.EditReuse(ctx,
		input.Body.GuildID, input.Body.ThreadChannelID, input.Body.UserID, input.Body.Reuse)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &dto.AllianceOutput{Body: toAllianceInfo(alliance)}, nil
}

func (m *Module) join(ctx context.Context, input *dto.JoinInput) (*dto.AllianceOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	alliance, err := m.service.Join(ctx,
		input.Body.GuildID, input.Body.ThreadChannelID, input.Body.UserID,
		input.Body.DisplayName, input.Body.Slot)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &dto.AllianceOutput{Body: toAllianceInfo(alliance)}, nil
}

func (m *Module) leave(ctx context.Context, input *dto.LifecycleInput) (*dto.AllianceOutput, error) {
	if err := validateRequest(input.Body); err != nil {
		return nil, err
	}
	alliance, err := m.service.Leave(ctx, input.Body.GuildID, input.Body.ThreadChannelID, input.Body.UserID)
	if err != nil {
		return nil, mapServiceError(err)
	}
	return &dto.AllianceOutput{Body: toAllianceInfo(alliance)}, nil
}

func (m *Module) getRoster(ctx context.Context, input *dto.GetRosterInput) (*dto.RosterOutput, error) {
	if err := validateRequest(input); err != nil {
		return nil, err
	}
	alliance, assignments, err := m.service.GetRoster(ctx, input.GuildID, input.ThreadChannelID)
	if err != nil {
		return nil, mapServiceError(err)
	}

	out := &dto.RosterOutput{}
	out.Body.Alliance = toAllianceInfo(alliance)
	for _, a := range assignments {
		crew := dto.ShipCrew{
			Slot:     a.Ship.Slot,
			Hull:     string(a.Ship.Hull),
			CrewRole: a.Ship.CrewRole,
			Capacity: a.Ship.Hull.Capacity(),
		}
		for _, p := range a.Primary {
			crew.Primary = append(crew.Primary, p.UserID)
		}
		for _, p := range a.Replacements {
			crew.Replacements = append(crew.Replacements, p.UserID)
		}
		out.Body.Ships = append(out.Body.Ships, crew)
	}
	return out, nil
}

func (m *Module) listAlliances(ctx context.Context, input *dto.ListAlliancesInput) (*dto.AllianceListOutput, error) {
	if err := validateRequest(input); err != nil {
		return nil, err
	}

	var statuses []models.Status
	for _, status := range handlers.ParseCommaSeparated(input.Status) {
		statuses = append(statuses, models.Status(status))
	}

	alliances, err := m.service.ListAlliances(ctx, input.GuildID, statuses)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list alliances", err)
	}

	out := &dto.AllianceListOutput{}
	for _, alliance := range alliances {
		out.Body.Alliances = append(out.Body.Alliances, toAllianceInfo(alliance))
	}
	return out, nil
}

func (m *Module) currentSession(guildID, userID string) (*dto.SessionOutput, error) {
	session := m.service.GetSession(guildID, userID)
	if session == nil {
		return nil, huma.Error404NotFound("No configuration session is open")
	}
	return sessionOutput(session), nil
}

func sessionOutput(session *services.Session) *dto.SessionOutput {
	return &dto.SessionOutput{Body: dto.SessionState{
		GuildID:     session.GuildID,
		UserID:      session.UserID,
		Date:        session.DateISO,
		StartTime:   session.StartTime,
		SaleTime:    session.SaleTime,
		RightHandID: session.RightHandID,
		Reuse:       session.Reuse,
		ReuseSet:    session.ReuseSet,
		Ships:       len(session.Ships),
		CurrentShip: session.CurrentShip,
		Ready:       session.Ready(),
	}}
}

func toAllianceInfo(alliance *models.Alliance) dto.AllianceInfo {
	return dto.AllianceInfo{
		ID:              alliance.ID.Hex(),
		GuildID:         alliance.GuildID,
		OrganizerID:     alliance.OrganizerID,
		RightHandID:     alliance.RightHandID,
		Name:            alliance.Name,
		ScheduledAt:     alliance.ScheduledAt,
		SaleAt:          alliance.SaleAt,
		Status:          string(alliance.Status),
		MaxShips:        alliance.MaxShips,
		ReusePlanned:    alliance.ReusePlanned,
		ThreadChannelID: alliance.ThreadChannelID,
	}
}

// mapServiceError translates service sentinel errors onto HTTP statuses.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrNoAlliance):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, services.ErrUnknownShip):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, services.ErrNotAuthorized),
		errors.Is(err, services.ErrUserBanned),
		errors.Is(err, services.ErrJoinClosed):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, services.ErrAlreadyStarted),
		errors.Is(err, services.ErrNotStarted),
		errors.Is(err, services.ErrAlreadyOver),
		errors.Is(err, services.ErrAlreadyAboard),
		errors.Is(err, services.ErrNotAboard):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, services.ErrNoSession),
		errors.Is(err, services.ErrSessionNotReady),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidTime),
		errors.Is(err, services.ErrStartInPast),
		errors.Is(err, services.ErrSaleBeforeStart):
		return huma.Error400BadRequest(err.Error())
	default:
		return huma.Error500InternalServerError("Internal error", err)
	}
}
