package automod

import (
	"github.com/pboennig/cs152-bot/platform"
)

// ThreatLevel classifies the severity of a flagged message. It is
// assigned once, either by the reporting user's answers or synthetically
// for automated flags, and read-only thereafter.
type ThreatLevel int

const (
	NotHarm ThreatLevel = iota
	NonImminent
	Imminent
	// AutoReport marks a message flagged by the automated classifier,
	// with no human triage yet performed.
	AutoReport
)

func (l ThreatLevel) String() string {
	switch l {
	case NotHarm:
		return "not-harm"
	case NonImminent:
		return "non-imminent"
	case Imminent:
		return "imminent"
	case AutoReport:
		return "auto-report"
	default:
		return "unknown"
	}
}

// ReportedMessage is an immutable snapshot of an offending message,
// detached from any live platform object so the workflow can keep
// referring to it after the original is deleted. The Ref is retained so
// terminal moderator actions (removal, ban) can still reach the platform
// object while it exists.
type ReportedMessage struct {
	Author  platform.User
	Content string
	Ref     platform.MessageRef
}

// SnapshotMessage captures the fields of a live message the workflow is
// allowed to keep.
func SnapshotMessage(m *platform.Message) ReportedMessage {
	return ReportedMessage{
		Author:  m.Author,
		Content: m.Content,
		Ref:     m.Ref,
	}
}
