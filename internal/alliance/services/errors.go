package services

import "errors"

// Sentinel errors returned by the alliance service. Route handlers map these
// onto HTTP statuses; everything else is treated as an internal failure.
var (
	ErrNoAlliance      = errors.New("no alliance is bound to this channel")
	ErrNotAuthorized   = errors.New("only the organizer or the right hand may do this")
	ErrAlreadyStarted  = errors.New("alliance has already started")
	ErrNotStarted      = errors.New("alliance has not started")
	ErrAlreadyOver     = errors.New("alliance is already over")
	ErrNoSession       = errors.New("no configuration session is open")
	ErrSessionNotReady = errors.New("configuration session is incomplete")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTime     = errors.New("invalid time")
	ErrStartInPast     = errors.New("start must be in the future")
	ErrSaleBeforeStart = errors.New("sale must come after the start")
	ErrUserBanned      = errors.New("user is banned from alliances")
	ErrAlreadyAboard   = errors.New("user is already on this ship")
	ErrNotAboard       = errors.New("user is not part of this alliance")
	ErrUnknownShip     = errors.New("no such ship slot")
	ErrJoinClosed      = errors.New("public joining is disabled in this guild")
)
