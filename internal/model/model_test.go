package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"PlayerSkin", &PlayerSkin{}, "wp_player_skins"},
		{"PlayerKnife", &PlayerKnife{}, "wp_player_knife"},
		{"PlayerGlove", &PlayerGlove{}, "wp_player_gloves"},
		{"PlayerAgent", &PlayerAgent{}, "wp_player_agents"},
		{"PlayerMusic", &PlayerMusic{}, "wp_player_music"},
		{"PlayerPin", &PlayerPin{}, "wp_player_pins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModelsComplete(t *testing.T) {
	assert.Len(t, DatabaseModels, 6)
}
