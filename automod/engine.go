package automod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pboennig/cs152-bot/automod/countstore"
	"github.com/pboennig/cs152-bot/automod/flagstore"
	"github.com/pboennig/cs152-bot/automod/msgcache"
	"github.com/pboennig/cs152-bot/automod/threatsignal"
	"github.com/pboennig/cs152-bot/automod/visual"
	"github.com/pboennig/cs152-bot/platform"
)

var (
	// number of automatic incidents the classifier can open per day, for
	// all messages combined (circuit breaker)
	QuotaAutoFlagDay = 50
	// flag recorded on authors whose messages the classifier flagged
	FlagAutoFlagged = "auto-flagged"
)

// Engine is the event-loop glue: it receives inbound chat events and
// routes each to the right Report, to automatic flagging, or to the
// IncidentRegistry. It expects to be driven by a single consumer, one
// event at a time (see the gateway consumer); under that ordering the
// two maps it owns need no locking beyond the registry's own.
type Engine struct {
	Logger    *slog.Logger
	Client    platform.Client
	Signal    threatsignal.Signal
	Extractor visual.Extractor // optional
	Counters  countstore.CountStore
	Flags     flagstore.FlagStore
	Cache     msgcache.MessageCache
	Notifier  *SlackNotifier // optional
	Registry  *IncidentRegistry

	// BotUserID filters out the bot's own messages and reactions.
	BotUserID string
	// ScoreThreshold is the minimum classifier confidence for an
	// automatic flag.
	ScoreThreshold float64
	// ModChannels maps guild ID to that guild's moderator channel ID.
	ModChannels map[string]string
	// MonitoredChannels holds the channel IDs whose messages get scored.
	MonitoredChannels map[string]bool

	reports map[string]*Report
}

// ProcessEvent dispatches one inbound platform event. It is the single
// entry point; the caller must not invoke it concurrently.
func (e *Engine) ProcessEvent(ctx context.Context, evt platform.Event) error {
	// similar to an HTTP server, we want to recover any panics from event handling
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("automod event execution exception", "err", r)
		}
	}()

	switch v := evt.(type) {
	case platform.MessageCreated:
		return e.processMessage(ctx, &v.Message)
	case platform.MessageEdited:
		// edited DMs are not re-routed through the report flow; edited
		// channel messages get re-scored like new ones
		if v.Message.IsDirect() {
			return nil
		}
		return e.processMessage(ctx, &v.Message)
	case platform.ReactionAdded:
		return e.processReaction(ctx, v)
	default:
		return fmt.Errorf("unhandled event type: %T", evt)
	}
}

func (e *Engine) processMessage(ctx context.Context, msg *platform.Message) error {
	if msg.Author.ID == e.BotUserID {
		return nil
	}
	if msg.IsDirect() {
		return e.processDirectMessage(ctx, msg)
	}
	return e.processChannelMessage(ctx, msg)
}

func (e *Engine) processDirectMessage(ctx context.Context, msg *platform.Message) error {
	logger := e.Logger.With("user", msg.Author.ID)

	if msg.Content == HelpKeyword {
		reply := "Use the `report` command to begin the reporting process.\n"
		reply += "Use the `cancel` command to cancel the report process.\n"
		return e.Client.SendMessage(ctx, msg.Ref.ChannelID, reply)
	}

	if e.reports == nil {
		e.reports = make(map[string]*Report)
	}

	// only respond if a report is active or one is being started
	rpt, active := e.reports[msg.Author.ID]
	if !active && !strings.HasPrefix(msg.Content, StartKeyword) {
		return nil
	}
	if !active {
		rpt = NewReport(e.Client)
		e.reports[msg.Author.ID] = rpt
	}

	dmMessagesReceived.Inc()
	replies, err := rpt.Handle(ctx, msg.Content)
	if err != nil {
		return fmt.Errorf("report flow for %s: %w", msg.Author.ID, err)
	}
	for _, r := range replies {
		if err := e.Client.SendMessage(ctx, msg.Ref.ChannelID, r); err != nil {
			return err
		}
	}

	if !rpt.Complete() {
		return nil
	}

	// harvest and discard the report the instant it terminates
	delete(e.reports, msg.Author.ID)
	reportsCompleted.WithLabelValues(rpt.Level.String()).Inc()
	if err := e.Counters.Increment(ctx, "reports", msg.Author.ID); err != nil {
		logger.Error("incrementing report counter", "err", err)
	}

	if rpt.Level == NotHarm || rpt.Message == nil {
		return nil
	}
	reporter := msg.Author
	return e.openIncident(ctx, &reporter, *rpt.Message, rpt.Level)
}

func (e *Engine) processChannelMessage(ctx context.Context, msg *platform.Message) error {
	if !e.MonitoredChannels[msg.Ref.ChannelID] {
		return nil
	}
	logger := e.Logger.With("channel", msg.Ref.ChannelID, "message", msg.Ref.MessageID)

	content := msg.Content
	if e.Extractor != nil {
		for _, att := range msg.Attachments {
			text, err := e.Extractor.ExtractText(ctx, att)
			if err != nil {
				// an OCR failure degrades scoring but should not block it
				logger.Error("attachment text extraction failed", "filename", att.Filename, "err", err)
				continue
			}
			content += text
		}
	}
	if len(content) == 0 {
		return nil
	}

	channelMessagesScored.Inc()
	judgment, err := e.Signal.ScoreText(ctx, content)
	if err != nil {
		return fmt.Errorf("scoring message %s: %w", msg.Ref.MessageID, err)
	}
	if !judgment.Flagged(e.ScoreThreshold) {
		return nil
	}
	logger.Info("classifier flagged message", "author", msg.Author.Name, "score", judgment.Score)

	// circuit breaker on runaway classifiers
	count, err := e.Counters.GetCount(ctx, "incidents", "auto", countstore.PeriodDay)
	if err != nil {
		return err
	}
	if count >= QuotaAutoFlagDay {
		autoFlagsSuppressed.Inc()
		logger.Warn("daily auto-flag quota exceeded, dropping flag", "quota", QuotaAutoFlagDay)
		return nil
	}

	if err := e.Flags.Add(ctx, msg.Author.ID, []string{FlagAutoFlagged}); err != nil {
		logger.Error("recording auto-flag", "err", err)
	}

	snap := SnapshotMessage(msg)
	snap.Content = content
	return e.openIncident(ctx, nil, snap, AutoReport)
}

func (e *Engine) openIncident(ctx context.Context, reporter *platform.User, offending ReportedMessage, level ThreatLevel) error {
	inc := e.Registry.Create(e.Client, reporter, offending, level)

	origin := "report"
	counterVal := "user"
	if reporter == nil {
		origin = "auto"
		counterVal = "auto"
	}
	incidentsCreated.WithLabelValues(origin).Inc()
	if err := e.Counters.Increment(ctx, "incidents", counterVal); err != nil {
		e.Logger.Error("incrementing incident counter", "err", err)
	}

	e.Logger.Info("incident created", "id", inc.ID, "origin", origin, "level", level.String(), "author", offending.Author.Name)

	if e.Notifier != nil {
		if err := e.Notifier.SendIncidentOpened(ctx, inc); err != nil {
			e.Logger.Error("sending slack notification", "err", err)
		}
	}

	// the opening prompt goes to every registered moderator channel
	for _, reply := range inc.Open() {
		for guildID, channelID := range e.ModChannels {
			if err := e.Client.SendMessage(ctx, channelID, reply); err != nil {
				return fmt.Errorf("posting incident %d to mod channel in guild %s: %w", inc.ID, guildID, err)
			}
		}
	}
	return nil
}

func (e *Engine) processReaction(ctx context.Context, evt platform.ReactionAdded) error {
	if evt.UserID == e.BotUserID {
		return nil
	}
	modChannel, ok := e.ModChannels[evt.GuildID]
	if !ok || evt.ChannelID != modChannel {
		return nil
	}
	logger := e.Logger.With("guild", evt.GuildID, "message", evt.MessageID)

	ref := platform.MessageRef{GuildID: evt.GuildID, ChannelID: evt.ChannelID, MessageID: evt.MessageID}
	msg, err := e.fetchModMessage(ctx, ref)
	if errors.Is(err, platform.ErrMessageNotFound) || errors.Is(err, platform.ErrChannelNotFound) {
		logger.Warn("reaction on unresolvable message, dropping", "err", err)
		return nil
	} else if err != nil {
		return fmt.Errorf("fetching reacted message: %w", err)
	}

	// only reactions on our own previously-posted messages count
	if msg.Author.ID != e.BotUserID {
		return nil
	}

	inc, err := e.Registry.Resolve(msg.Content)
	if errors.Is(err, ErrNoIncidentPrefix) {
		return nil
	} else if errors.Is(err, ErrIncidentNotFound) {
		// reportable: the prefix parsed but no such incident exists
		logger.Error("reaction references unknown incident, dropping", "err", err)
		return nil
	} else if err != nil {
		return err
	}

	reactionsProcessed.Inc()
	before := len(inc.Actions())
	replies, err := inc.HandleReaction(ctx, evt.Emoji)
	if err != nil {
		actionFailures.Inc()
		notice := fmt.Sprintf("%s ⚠️ Moderation action failed: %v", inc.Prefix(), err)
		if sendErr := e.Client.SendMessage(ctx, modChannel, notice); sendErr != nil {
			logger.Error("posting action-failure notice", "err", sendErr)
		}
		return fmt.Errorf("incident %d reaction %q: %w", inc.ID, evt.Emoji, err)
	}

	if err := e.persistIncidentActions(ctx, inc, inc.Actions()[before:]); err != nil {
		logger.Error("persisting incident actions", "err", err)
	}

	for _, r := range replies {
		if err := e.Client.SendMessage(ctx, modChannel, r); err != nil {
			return err
		}
	}
	return nil
}

// fetchModMessage consults the message cache before hitting the platform.
func (e *Engine) fetchModMessage(ctx context.Context, ref platform.MessageRef) (*platform.Message, error) {
	if e.Cache != nil {
		cached, err := e.Cache.Get(ctx, ref)
		if err != nil {
			e.Logger.Error("message cache read failed", "err", err)
		} else if cached != nil {
			return cached, nil
		}
	}
	msg, err := e.Client.FetchMessage(ctx, ref)
	if err != nil {
		return nil, err
	}
	if e.Cache != nil {
		if err := e.Cache.Set(ctx, *msg); err != nil {
			e.Logger.Error("message cache write failed", "err", err)
		}
	}
	return msg, nil
}

// persistIncidentActions records the durable side of freshly-taken
// moderator actions: author flags and the optional slack mirror. Flags
// are written from the incident's full action log, which covers actions
// completed during an earlier attempt whose reaction handling failed
// partway; the flagstore is a set, so rewrites are idempotent.
func (e *Engine) persistIncidentActions(ctx context.Context, inc *Incident, newActions []string) error {
	if len(newActions) == 0 {
		return nil
	}
	if err := e.Flags.Add(ctx, inc.Offending.Author.ID, inc.Actions()); err != nil {
		return err
	}
	if e.Notifier != nil {
		if err := e.Notifier.SendIncidentActions(ctx, inc, newActions); err != nil {
			e.Logger.Error("sending slack notification", "err", err)
		}
	}
	return nil
}

// ActiveReportCount is exposed for tests and operational introspection.
func (e *Engine) ActiveReportCount() int {
	return len(e.reports)
}
