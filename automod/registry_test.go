package automod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pboennig/cs152-bot/platform"
)

func TestRegistryMonotonicIDs(t *testing.T) {
	client := platform.NewMockClient()
	reg := NewIncidentRegistry()

	offending := ReportedMessage{
		Author:  platform.User{ID: "u-bob", Name: "bob"},
		Content: "bad",
		Ref:     platform.MessageRef{GuildID: "1", ChannelID: "2", MessageID: "3"},
	}

	first := reg.Create(client, nil, offending, AutoReport)
	second := reg.Create(client, nil, offending, AutoReport)
	assert.Equal(t, 0, first.ID)
	assert.Equal(t, 1, second.ID)

	// ids are never reused, even after an incident closes
	replies := first.Open()
	require.NotEmpty(t, replies)
	third := reg.Create(client, nil, offending, AutoReport)
	assert.Equal(t, 2, third.ID)
}

func TestRegistryResolveRoundTrip(t *testing.T) {
	client := platform.NewMockClient()
	reg := NewIncidentRegistry()
	inc := reg.Create(client, nil, ReportedMessage{}, AutoReport)

	got, err := reg.Resolve(inc.Prefix() + " some follow-up prompt")
	require.NoError(t, err)
	assert.Same(t, inc, got)

	got, err = reg.Lookup(inc.ID)
	require.NoError(t, err)
	assert.Same(t, inc, got)
}

func TestRegistryResolveErrors(t *testing.T) {
	reg := NewIncidentRegistry()

	_, err := reg.Resolve("just a normal bot message")
	assert.ErrorIs(t, err, ErrNoIncidentPrefix)

	// prefix must anchor the message
	_, err = reg.Resolve("see **[INCIDENT 0]** above")
	assert.ErrorIs(t, err, ErrNoIncidentPrefix)

	_, err = reg.Resolve("**[INCIDENT 42]** follow-up")
	assert.ErrorIs(t, err, ErrIncidentNotFound)

	_, err = reg.Lookup(42)
	assert.ErrorIs(t, err, ErrIncidentNotFound)
}
