package discord

import (
	"fmt"
	"net/http"
)

// Outcome classifies the result of a delete request so callers can decide
// between completion, retry and abort without parsing errors.
type Outcome string

const (
	// OutcomeOK means the resource was deleted.
	OutcomeOK Outcome = "ok"
	// OutcomeNotFound means the resource no longer exists upstream.
	OutcomeNotFound Outcome = "not_found"
	// OutcomeRateLimited means the request was throttled and may be retried.
	OutcomeRateLimited Outcome = "rate_limited"
	// OutcomeOther covers every other failure.
	OutcomeOther Outcome = "other"
)

// classifyDelete maps a delete response to an Outcome. Only OutcomeOther
// carries a non-nil error.
func classifyDelete(status int, body []byte, op string) (Outcome, error) {
	switch status {
	case http.StatusNoContent, http.StatusOK:
		return OutcomeOK, nil
	case http.StatusNotFound:
		return OutcomeNotFound, nil
	case http.StatusTooManyRequests:
		return OutcomeRateLimited, nil
	default:
		return OutcomeOther, fmt.Errorf("%s request failed with status %d: %s", op, status, string(body))
	}
}
