package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateStruct(t *testing.T) {
	type body struct {
		GuildID  string `validate:"required"`
		UserID   string `validate:"required"`
		Timezone string `validate:"omitempty,timezone"`
	}

	assert.NoError(t, ValidateStruct(body{GuildID: "g", UserID: "u"}))
	assert.NoError(t, ValidateStruct(body{GuildID: "g", UserID: "u", Timezone: "Europe/Paris"}))

	err := ValidateStruct(body{GuildID: "g"})
	assert.Error(t, err)
	assert.Equal(t, []string{"UserID is required"}, ValidationMessages(err))

	err = ValidateStruct(body{GuildID: "g", UserID: "u", Timezone: "Mars/Olympus"})
	assert.Error(t, err)
	assert.Equal(t, []string{"Timezone must be a valid IANA timezone"}, ValidationMessages(err))
}

func TestParseCommaSeparated(t *testing.T) {
	assert.Nil(t, ParseCommaSeparated(""))
	assert.Equal(t, []string{"planned"}, ParseCommaSeparated("planned"))
	assert.Equal(t, []string{"planned", "matching"}, ParseCommaSeparated("planned, matching,"))
}
