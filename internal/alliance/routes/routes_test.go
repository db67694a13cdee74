package routes

import (
	"testing"

	"go-armada/internal/alliance/dto"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequestRejectsMissingIdentifiers(t *testing.T) {
	var input dto.LifecycleInput
	input.Body.GuildID = "905865521745440788"

	err := validateRequest(input.Body)
	require.Error(t, err)

	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 422, statusErr.GetStatus())
	assert.Contains(t, err.Error(), "ThreadChannelID is required")
	assert.Contains(t, err.Error(), "UserID is required")

	input.Body.ThreadChannelID = "1122334455"
	input.Body.UserID = "99887766"
	assert.NoError(t, validateRequest(input.Body))
}
