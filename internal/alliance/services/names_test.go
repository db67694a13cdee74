package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMentionID(t *testing.T) {
	tests := []struct {
		name    string
		mention string
		want    string
	}{
		{name: "plain mention", mention: "<@138401490739123456>", want: "138401490739123456"},
		{name: "nickname mention", mention: "<@!138401490739123456>", want: "138401490739123456"},
		{name: "raw id", mention: "138401490739123456", want: "138401490739123456"},
		{name: "surrounding text", mention: "  <@42> ", want: "42"},
		{name: "no digits", mention: "nobody", want: ""},
		{name: "empty", mention: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMentionID(tt.mention))
		})
	}
}

func TestShipRoleName(t *testing.T) {
	assert.Equal(t, "Galleon boarders", ShipRoleName("galleon", "boarders"))
	assert.Equal(t, "Sloop gunners", ShipRoleName("SLOOP", "gunners"))
}

func TestRandomNamePoolsNotEmpty(t *testing.T) {
	assert.NotEmpty(t, RandomAllianceName())
	assert.NotEmpty(t, RandomOutpostName())
}
