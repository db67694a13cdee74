package services

import (
	"context"
	"testing"

	"go-armada/internal/settings/models"

	"github.com/stretchr/testify/assert"
)

func TestUpdateSettingsRejectsBadValues(t *testing.T) {
	svc := &Service{}

	tests := []struct {
		name     string
		settings models.GuildSettings
	}{
		{name: "max ships too low", settings: models.GuildSettings{GuildID: "g", DefaultMaxShips: 0}},
		{name: "max ships too high", settings: models.GuildSettings{GuildID: "g", DefaultMaxShips: 7}},
		{name: "bogus timezone", settings: models.GuildSettings{GuildID: "g", DefaultMaxShips: 4, Timezone: "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateSettings(context.Background(), &tt.settings)
			assert.Error(t, err)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	defaults := models.NewDefaults("guild-1")

	assert.Equal(t, "guild-1", defaults.GuildID)
	assert.Equal(t, models.DefaultMaxShips, defaults.DefaultMaxShips)
	assert.True(t, defaults.AllowPublicJoin)
	assert.Equal(t, models.DefaultTimezone, defaults.Timezone)
}
