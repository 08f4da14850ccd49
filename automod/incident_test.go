package automod

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pboennig/cs152-bot/platform"
)

func newTestIncident(t *testing.T, reporter *platform.User, level ThreatLevel) (*Incident, *platform.MockClient) {
	t.Helper()
	client := platform.NewMockClient()
	offending := platform.Message{
		Ref:     platform.MessageRef{GuildID: "100", ChannelID: "200", MessageID: "300"},
		Author:  platform.User{ID: "u-bob", Name: "bob"},
		Content: "i will hurt you",
	}
	client.AddMessage(offending)
	reg := NewIncidentRegistry()
	inc := reg.Create(client, reporter, SnapshotMessage(&offending), level)
	return inc, client
}

func TestIncidentOpenSummary(t *testing.T) {
	reporter := &platform.User{ID: "u-alice", Name: "alice"}
	inc, _ := newTestIncident(t, reporter, Imminent)

	replies := inc.Open()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], inc.Prefix())
	assert.Contains(t, replies[0], "`alice` reported this message")
	assert.Contains(t, replies[0], "bob: i will hurt you")
	assert.Contains(t, replies[0], "**imminent**")
	assert.Contains(t, replies[0], ReactNotThreat)
	assert.Equal(t, ModAwaitingReact, inc.State())

	// Open is a one-shot transition
	assert.Empty(t, inc.Open())
}

func TestIncidentAutoReportSummaryOmitsRating(t *testing.T) {
	inc, _ := newTestIncident(t, nil, AutoReport)

	replies := inc.Open()
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "automated classifier flagged this message")
	assert.NotContains(t, replies[0], "rated the threat level")
}

func TestIncidentNotThreatCloses(t *testing.T) {
	ctx := context.Background()
	inc, client := newTestIncident(t, nil, AutoReport)
	inc.Open()

	replies, err := inc.HandleReaction(ctx, ReactNotThreat)
	require.NoError(t, err)
	assert.Contains(t, replies[0], "no action will be taken")
	assert.Equal(t, ModReportComplete, inc.State())
	assert.Empty(t, inc.Actions())
	assert.Empty(t, client.Deleted)
	assert.Empty(t, client.Banned)
}

func TestIncidentSelfHarmOutreach(t *testing.T) {
	ctx := context.Background()
	inc, client := newTestIncident(t, nil, AutoReport)
	inc.Open()

	replies, err := inc.HandleReaction(ctx, ReactImminent)
	require.NoError(t, err)
	assert.Contains(t, replies[0], "danger to themself")
	assert.Equal(t, ModImminentThreat, inc.State())

	replies, err = inc.HandleReaction(ctx, ReactYes)
	require.NoError(t, err)
	assert.Contains(t, replies[0], "crisis-line contact info")
	assert.Equal(t, ModReportComplete, inc.State())
	assert.Equal(t, []string{ActionSelfHarmOutreach}, inc.Actions())

	require.Len(t, client.DirectSends, 1)
	assert.Equal(t, "u-bob", client.DirectSends[0].Target)
	assert.Contains(t, client.DirectSends[0].Text, "988")
}

func TestIncidentBanBranch(t *testing.T) {
	ctx := context.Background()
	inc, client := newTestIncident(t, nil, AutoReport)
	inc.Open()

	_, err := inc.HandleReaction(ctx, ReactNonImminent)
	require.NoError(t, err)
	assert.Equal(t, ModNonImminentThreat, inc.State())

	replies, err := inc.HandleReaction(ctx, ReactNo)
	require.NoError(t, err)
	assert.Contains(t, replies[0], "incite or glorify violence")
	assert.Equal(t, ModAskIfShouldBan, inc.State())

	replies, err = inc.HandleReaction(ctx, ReactYes)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Contains(t, replies[0], "has been banned")
	assert.Contains(t, replies[1], "content has been removed")
	assert.Equal(t, ModReportComplete, inc.State())
	assert.Equal(t, []string{ActionBanned, ActionContentRemoved}, inc.Actions())

	require.Len(t, client.Banned, 1)
	assert.Equal(t, platform.BanRecord{GuildID: "100", UserID: "u-bob"}, client.Banned[0])
	require.Len(t, client.Deleted, 1)
	require.Len(t, client.DirectSends, 1)
	assert.Contains(t, client.DirectSends[0].Text, "removed by the moderators")
}

func TestIncidentRemoveOnlyBranch(t *testing.T) {
	ctx := context.Background()
	inc, client := newTestIncident(t, nil, AutoReport)
	inc.Open()

	_, err := inc.HandleReaction(ctx, ReactImminent)
	require.NoError(t, err)
	_, err = inc.HandleReaction(ctx, ReactNo)
	require.NoError(t, err)

	replies, err := inc.HandleReaction(ctx, ReactNo)
	require.NoError(t, err)
	assert.Contains(t, replies[0], "content has been removed")
	assert.Equal(t, []string{ActionContentRemoved}, inc.Actions())
	assert.Empty(t, client.Banned)
	require.Len(t, client.Deleted, 1)
}

func TestIncidentUnrecognizedReaction(t *testing.T) {
	ctx := context.Background()
	inc, _ := newTestIncident(t, nil, AutoReport)
	inc.Open()

	replies, err := inc.HandleReaction(ctx, "🎉")
	require.NoError(t, err)
	assert.Contains(t, replies[0], "Unrecognized reaction, no action taken.")
	assert.Equal(t, ModAwaitingReact, inc.State())

	// yes/no are only meaningful after triage
	replies, err = inc.HandleReaction(ctx, ReactYes)
	require.NoError(t, err)
	assert.Contains(t, replies[0], "Unrecognized reaction")
	assert.Equal(t, ModAwaitingReact, inc.State())
}

func TestIncidentClosedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	inc, client := newTestIncident(t, nil, AutoReport)
	inc.Open()

	_, err := inc.HandleReaction(ctx, ReactNotThreat)
	require.NoError(t, err)

	for _, emoji := range []string{ReactNotThreat, ReactNonImminent, ReactImminent, ReactYes, ReactNo, "🎉"} {
		replies, err := inc.HandleReaction(ctx, emoji)
		require.NoError(t, err)
		assert.Contains(t, replies[0], "already closed")
	}
	assert.Empty(t, client.Deleted)
	assert.Empty(t, client.Banned)
	assert.Empty(t, inc.Actions())
}

func TestIncidentFailedActionKeepsState(t *testing.T) {
	ctx := context.Background()
	inc, client := newTestIncident(t, nil, AutoReport)
	inc.Open()

	_, err := inc.HandleReaction(ctx, ReactImminent)
	require.NoError(t, err)
	_, err = inc.HandleReaction(ctx, ReactNo)
	require.NoError(t, err)

	banErr := errors.New("rate limited")
	client.BanErr = banErr
	_, err = inc.HandleReaction(ctx, ReactYes)
	require.Error(t, err)
	assert.ErrorIs(t, err, banErr)
	// state holds so the reaction can be retried
	assert.Equal(t, ModAskIfShouldBan, inc.State())
	assert.Empty(t, inc.Actions())

	client.BanErr = nil
	replies, err := inc.HandleReaction(ctx, ReactYes)
	require.NoError(t, err)
	assert.Contains(t, replies[0], "has been banned")
	assert.Equal(t, ModReportComplete, inc.State())
}

func TestIncidentRetryDoesNotDuplicateActions(t *testing.T) {
	ctx := context.Background()
	inc, client := newTestIncident(t, nil, AutoReport)
	inc.Open()

	_, err := inc.HandleReaction(ctx, ReactImminent)
	require.NoError(t, err)
	_, err = inc.HandleReaction(ctx, ReactNo)
	require.NoError(t, err)

	// the ban lands but the removal fails; the ban is already logged
	client.DeleteErr = errors.New("rate limited")
	_, err = inc.HandleReaction(ctx, ReactYes)
	require.Error(t, err)
	assert.Equal(t, []string{ActionBanned}, inc.Actions())
	assert.Equal(t, ModAskIfShouldBan, inc.State())

	// the retry completes the removal without logging the ban twice
	client.DeleteErr = nil
	_, err = inc.HandleReaction(ctx, ReactYes)
	require.NoError(t, err)
	assert.Equal(t, []string{ActionBanned, ActionContentRemoved}, inc.Actions())
	assert.Equal(t, ModReportComplete, inc.State())
}

func TestIncidentRetryToleratesDeletedMessage(t *testing.T) {
	ctx := context.Background()
	inc, client := newTestIncident(t, nil, AutoReport)
	inc.Open()

	_, err := inc.HandleReaction(ctx, ReactImminent)
	require.NoError(t, err)
	_, err = inc.HandleReaction(ctx, ReactNo)
	require.NoError(t, err)

	// the delete lands but the author notice fails; the mock has already
	// dropped the message, so the retry's delete sees "not found"
	client.DirectErr = errors.New("rate limited")
	_, err = inc.HandleReaction(ctx, ReactNo)
	require.Error(t, err)
	require.Len(t, client.Deleted, 1)

	client.DirectErr = nil
	replies, err := inc.HandleReaction(ctx, ReactNo)
	require.NoError(t, err)
	assert.Contains(t, replies[0], "content has been removed")
	assert.Equal(t, []string{ActionContentRemoved}, inc.Actions())
	assert.Equal(t, ModReportComplete, inc.State())
}
