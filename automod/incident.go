package automod

import (
	"context"
	"errors"
	"fmt"

	"github.com/pboennig/cs152-bot/platform"
)

// ModState tracks a flagged message through the moderator escalation flow.
type ModState int

const (
	ModFlowStart ModState = iota
	ModAwaitingReact
	ModImminentThreat
	ModNonImminentThreat
	ModAskIfShouldBan
	ModReportComplete
)

// The canonical reaction symbol set. One symbol per triage answer; the
// legend posted with each prompt tells moderators which to use.
const (
	ReactNotThreat   = "🟢"
	ReactNonImminent = "🟠"
	ReactImminent    = "🔴"
	ReactYes         = "👍"
	ReactNo          = "👎"
)

// Moderator actions recorded on an incident. These double as flagstore
// flag values on the offending author.
const (
	ActionContentRemoved   = "content-removed"
	ActionBanned           = "banned"
	ActionSelfHarmOutreach = "self-harm-outreach"
)

const crisisLineInfo = "If you or someone you know is struggling, the 988 Suicide & Crisis Lifeline is available 24/7: call or text 988."

// Incident is the per-flagged-message escalation state machine, driven by
// single-emoji moderator reactions. Terminal actions (private notice,
// content removal, ban) are collaborator calls made before the state
// transition; if one fails the incident stays put and the error
// propagates, since a failed ban or removal must be visible.
type Incident struct {
	ID int
	// Reporter is nil when the message was flagged automatically.
	Reporter  *platform.User
	Offending ReportedMessage
	Level     ThreatLevel

	client  platform.Client
	state   ModState
	actions []string
}

func (i *Incident) State() ModState {
	return i.state
}

// Actions returns the moderator actions taken so far, in order.
func (i *Incident) Actions() []string {
	return i.actions
}

// recordAction appends once per action. A retried reaction after a
// partial failure (eg, ban succeeded but removal did not) must not log
// the already-completed action twice.
func (i *Incident) recordAction(action string) {
	for _, a := range i.actions {
		if a == action {
			return
		}
	}
	i.actions = append(i.actions, action)
}

// Prefix is the literal marker that links a posted moderator message back
// to this incident; it must round-trip through IncidentRegistry.Resolve.
func (i *Incident) Prefix() string {
	return fmt.Sprintf("**[INCIDENT %d]**", i.ID)
}

// Open performs the automatic FlowStart transition and returns the
// formatted incident summary for the moderator channel.
func (i *Incident) Open() []string {
	if i.state != ModFlowStart {
		return []string{}
	}
	i.state = ModAwaitingReact

	msg := i.Prefix() + "\n"
	if i.Reporter != nil {
		msg += "`" + i.Reporter.Name + "` reported this message as possibly containing violence:\n"
	} else {
		msg += "The automated classifier flagged this message as possibly containing violence:\n"
	}
	msg += "```" + i.Offending.Author.Name + ": " + i.Offending.Content + "```\n"
	if i.Level != AutoReport {
		msg += "They rated the threat level as "
		if i.Level == NonImminent {
			msg += "**not imminent**\n"
		} else {
			msg += "**imminent**\n"
		}
	}
	msg += "React " + ReactNotThreat + " if this is not a threat, " + ReactNonImminent +
		" if the threat is not imminent, or " + ReactImminent + " if the threat is imminent."
	return []string{msg}
}

type transitionKey struct {
	state ModState
	emoji string
}

type transition struct {
	next ModState
	act  func(ctx context.Context, i *Incident) ([]string, error)
}

// The full (state, symbol) transition table. Unlisted pairs draw an
// explicit "unrecognized reaction" reply and leave the state alone.
var incidentTransitions = map[transitionKey]transition{
	{ModAwaitingReact, ReactImminent}:    {ModImminentThreat, askSelfHarm},
	{ModAwaitingReact, ReactNonImminent}: {ModNonImminentThreat, askSelfHarm},
	{ModAwaitingReact, ReactNotThreat}:   {ModReportComplete, closeNotThreat},
	{ModImminentThreat, ReactYes}:        {ModReportComplete, selfHarmOutreach},
	{ModImminentThreat, ReactNo}:         {ModAskIfShouldBan, askShouldBan},
	{ModNonImminentThreat, ReactYes}:     {ModReportComplete, selfHarmOutreach},
	{ModNonImminentThreat, ReactNo}:      {ModAskIfShouldBan, askShouldBan},
	{ModAskIfShouldBan, ReactYes}:        {ModReportComplete, banAndRemove},
	{ModAskIfShouldBan, ReactNo}:         {ModReportComplete, removeOnly},
}

// HandleReaction advances the flow with one moderator reaction, returning
// the replies for the moderator channel. Reacting to a closed incident is
// idempotent: any symbol draws the "already closed" reply.
func (i *Incident) HandleReaction(ctx context.Context, emoji string) ([]string, error) {
	if i.state == ModReportComplete {
		return []string{i.Prefix() + " This incident is already closed."}, nil
	}

	tr, ok := incidentTransitions[transitionKey{i.state, emoji}]
	if !ok {
		return []string{i.Prefix() + " Unrecognized reaction, no action taken."}, nil
	}

	replies, err := tr.act(ctx, i)
	if err != nil {
		return nil, err
	}
	i.state = tr.next
	return replies, nil
}

func askSelfHarm(ctx context.Context, i *Incident) ([]string, error) {
	msg := i.Prefix() + " Is the sender a danger to themself?\n"
	msg += "React " + ReactYes + " for yes or " + ReactNo + " for no."
	return []string{msg}, nil
}

func closeNotThreat(ctx context.Context, i *Incident) ([]string, error) {
	return []string{i.Prefix() + " Understood, no action will be taken. This incident is now closed."}, nil
}

func selfHarmOutreach(ctx context.Context, i *Incident) ([]string, error) {
	dm := "We're reaching out because we're concerned about your wellbeing. " + crisisLineInfo
	if err := i.client.SendDirectMessage(ctx, i.Offending.Author.ID, dm); err != nil {
		return nil, fmt.Errorf("sending supportive message to %s: %w", i.Offending.Author.ID, err)
	}
	i.recordAction(ActionSelfHarmOutreach)
	return []string{i.Prefix() + " A supportive message with crisis-line contact info has been sent to `" +
		i.Offending.Author.Name + "`. This incident is now closed."}, nil
}

func askShouldBan(ctx context.Context, i *Incident) ([]string, error) {
	msg := i.Prefix() + " Does this content incite or glorify violence repeatedly?\n"
	msg += "React " + ReactYes + " to ban the sender and remove the content, or " + ReactNo + " to remove the content only."
	return []string{msg}, nil
}

func banAndRemove(ctx context.Context, i *Incident) ([]string, error) {
	if err := i.client.BanUser(ctx, i.Offending.Ref.GuildID, i.Offending.Author.ID); err != nil {
		return nil, fmt.Errorf("banning %s: %w", i.Offending.Author.ID, err)
	}
	i.recordAction(ActionBanned)
	replies, err := removeOnly(ctx, i)
	if err != nil {
		return nil, err
	}
	return []string{i.Prefix() + " `" + i.Offending.Author.Name + "` has been banned.", replies[len(replies)-1]}, nil
}

func removeOnly(ctx context.Context, i *Incident) ([]string, error) {
	// an already-deleted message is fine: a retried reaction after a
	// partial failure must not fail on the part that did complete
	if err := i.client.DeleteMessage(ctx, i.Offending.Ref); err != nil && !errors.Is(err, platform.ErrMessageNotFound) {
		return nil, fmt.Errorf("removing message %s: %w", i.Offending.Ref.MessageID, err)
	}
	i.recordAction(ActionContentRemoved)
	dm := "Your message was removed by the moderators for violating community guidelines:\n```" + i.Offending.Content + "```"
	if err := i.client.SendDirectMessage(ctx, i.Offending.Author.ID, dm); err != nil {
		return nil, fmt.Errorf("notifying %s of removal: %w", i.Offending.Author.ID, err)
	}
	return []string{i.Prefix() + " The offending content has been removed and `" +
		i.Offending.Author.Name + "` has been notified. This incident is now closed."}, nil
}
