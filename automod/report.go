package automod

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pboennig/cs152-bot/platform"
)

// Keywords recognized verbatim in the reporter-facing DM flow.
const (
	StartKeyword  = "report"
	CancelKeyword = "cancel"
	HelpKeyword   = "help"
)

// Report-type tokens the user picks from once the message is identified.
const (
	ReportTypeSpam          = "spam"
	ReportTypeHarassment    = "harassment"
	ReportTypeInappropriate = "inappropriate"
	ReportTypeHarm          = "harm"
)

var reportTypes = []string{ReportTypeSpam, ReportTypeHarassment, ReportTypeInappropriate, ReportTypeHarm}

// ReportState tracks progress through the reporter intake flow.
type ReportState int

const (
	ReportStart ReportState = iota
	ReportAwaitingMessageLink
	ReportMessageIdentified
	ReportHarmDetailsRequested
	ReportComplete
)

// message links embed a guild/channel/message identifier triple
var messageLinkPattern = regexp.MustCompile(`/(\d+)/(\d+)/(\d+)`)

// Report is the per-reporting-user intake state machine. Each call to
// Handle consumes one DM from the reporter and returns the ordered
// replies to send back; parsing and validation failures re-prompt without
// changing state. When Complete() becomes true the caller harvests
// Message and Level and discards the Report.
type Report struct {
	client platform.Client

	state ReportState

	// Message is the snapshot of the reported message, set once the link
	// resolves.
	Message *ReportedMessage
	// Level defaults to NotHarm until the harm sub-flow runs.
	Level ThreatLevel
}

func NewReport(client platform.Client) *Report {
	return &Report{
		client: client,
		state:  ReportStart,
		Level:  NotHarm,
	}
}

func (r *Report) State() ReportState {
	return r.state
}

// Complete reports whether the flow reached its terminal state, by
// finishing or by cancellation.
func (r *Report) Complete() bool {
	return r.state == ReportComplete
}

// Handle advances the flow with one message of reporter input. The
// returned replies are the only side effect; an error indicates a
// platform failure, not bad user input.
func (r *Report) Handle(ctx context.Context, content string) ([]string, error) {

	// the cancel keyword overrides every non-terminal state
	if content == CancelKeyword && r.state != ReportComplete {
		r.state = ReportComplete
		return []string{"Report cancelled."}, nil
	}

	switch r.state {

	case ReportStart:
		reply := "Thank you for starting the reporting process. "
		reply += "Say `help` at any time for more information.\n\n"
		reply += "Please copy paste the link to the message you want to report.\n"
		reply += "You can obtain this link by right-clicking the message and clicking `Copy Message Link`."
		r.state = ReportAwaitingMessageLink
		return []string{reply}, nil

	case ReportAwaitingMessageLink:
		m := messageLinkPattern.FindStringSubmatch(content)
		if m == nil {
			return []string{"I'm sorry, I couldn't read that link. Please try again or say `cancel` to cancel."}, nil
		}
		ref := platform.MessageRef{GuildID: m[1], ChannelID: m[2], MessageID: m[3]}
		msg, err := r.client.FetchMessage(ctx, ref)
		switch {
		case errors.Is(err, platform.ErrUnknownGuild):
			return []string{"I cannot accept reports of messages from guilds that I'm not in. Please have the guild owner add me to the guild and try again."}, nil
		case errors.Is(err, platform.ErrChannelNotFound):
			return []string{"It seems this channel was deleted or never existed. Please try again or say `cancel` to cancel."}, nil
		case errors.Is(err, platform.ErrMessageNotFound):
			return []string{"It seems this message was deleted or never existed. Please try again or say `cancel` to cancel."}, nil
		case err != nil:
			return nil, fmt.Errorf("fetching reported message: %w", err)
		}

		snap := SnapshotMessage(msg)
		r.Message = &snap
		r.state = ReportMessageIdentified

		reply := "I found this message:" + "```" + msg.Author.Name + ": " + msg.Content + "```\n"
		reply += "What do you think is wrong with this message?\n\n"
		reply += "If you think it is spam or fraud, say `" + ReportTypeSpam + "`\n"
		reply += "If this message is harassing you or others, say `" + ReportTypeHarassment + "`\n"
		reply += "If you think this message is inappropriate or illegal, say `" + ReportTypeInappropriate + "`\n"
		reply += "If you're worried the sender will do harm to themselves or others, say `" + ReportTypeHarm + "`\n"
		return []string{reply}, nil

	case ReportMessageIdentified:
		token := strings.TrimSpace(content)
		known := false
		for _, rt := range reportTypes {
			if token == rt {
				known = true
				break
			}
		}
		if !known {
			reply := "Please make sure your response is one of "
			reply += "`" + strings.Join(reportTypes[:len(reportTypes)-1], "`, `") + "`, "
			reply += "or `" + reportTypes[len(reportTypes)-1] + "`"
			return []string{reply}, nil
		}
		if token != ReportTypeHarm {
			r.state = ReportComplete
			r.Level = NotHarm
			return []string{"Abuse type not covered in this project."}, nil
		}
		r.state = ReportHarmDetailsRequested
		reply := "Do you think they will act on their intentions soon?\n"
		reply += "Type `yes` or `no`"
		return []string{reply}, nil

	case ReportHarmDetailsRequested:
		token := strings.TrimSpace(content)
		if token != "yes" && token != "no" {
			return []string{"Please type either `yes` or `no`"}, nil
		}
		if token == "yes" {
			r.Level = Imminent
		} else {
			r.Level = NonImminent
		}
		r.state = ReportComplete
		return []string{"Thank you for letting us know, we will look into this as soon as possible and will notify the relevant authorities if necessary."}, nil
	}

	return []string{}, nil
}
