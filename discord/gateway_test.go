package discord

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pboennig/cs152-bot/automod"
)

func TestHandleReadyParsesGroupNumber(t *testing.T) {
	engine, _ := automod.EngineTestFixture()
	g := &Gateway{Logger: slog.Default(), Engine: engine}

	require.NoError(t, g.handleReady(readyData{
		User: wireUser{ID: "bot-42", Username: "Group 7 Bot"},
	}))
	assert.Equal(t, 7, g.GroupNumber)
	assert.Equal(t, "bot-42", engine.BotUserID)

	// lowercase variant is also accepted
	require.NoError(t, g.handleReady(readyData{
		User: wireUser{ID: "bot-42", Username: "group 12 bot"},
	}))
	assert.Equal(t, 12, g.GroupNumber)

	err := g.handleReady(readyData{User: wireUser{ID: "bot-42", Username: "Some Other Bot"}})
	assert.ErrorIs(t, err, ErrBotNameMismatch)
}

func TestRegisterGuildChannels(t *testing.T) {
	engine, _ := automod.EngineTestFixture()
	engine.MonitoredChannels = nil
	engine.ModChannels = nil

	g := &Gateway{Logger: slog.Default(), Engine: engine, GroupNumber: 7}
	g.registerGuildChannels(guildCreateData{
		ID:   "guild-1",
		Name: "class server",
		Channels: []wireChannel{
			{ID: "c1", Name: "general"},
			{ID: "c2", Name: "group-7"},
			{ID: "c3", Name: "group-7-mod"},
			{ID: "c4", Name: "group-8"},
		},
	})

	assert.True(t, engine.MonitoredChannels["c2"])
	assert.False(t, engine.MonitoredChannels["c4"])
	assert.Equal(t, "c3", engine.ModChannels["guild-1"])
}
