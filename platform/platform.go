// Package platform defines the chat-platform contract consumed by the
// moderation engine: inbound event variants, message and user types, and
// the Client interface for outbound platform calls.
//
// The engine only ever sees these types. The discord package provides the
// real implementation; MockClient (mock.go) provides the test one.
package platform

import (
	"context"
	"errors"
)

var (
	ErrUnknownGuild    = errors.New("platform: guild not known to the bot")
	ErrChannelNotFound = errors.New("platform: channel not found")
	ErrMessageNotFound = errors.New("platform: message not found")
)

// User is a platform account: a stable identifier plus a display name.
type User struct {
	ID   string
	Name string
}

// MessageRef locates a single message. GuildID is empty for direct messages.
type MessageRef struct {
	GuildID   string
	ChannelID string
	MessageID string
}

type Attachment struct {
	Filename string
	URL      string
}

// Message is the inbound message shape delivered by the platform adapter.
type Message struct {
	Ref         MessageRef
	Author      User
	Content     string
	Attachments []Attachment
}

// IsDirect indicates a DM (no guild context).
func (m *Message) IsDirect() bool {
	return m.Ref.GuildID == ""
}

// Event is the tagged union of inbound platform events. Exactly one
// variant exists per event kind the engine routes on.
type Event interface {
	isEvent()
}

type MessageCreated struct {
	Message Message
}

type MessageEdited struct {
	Message Message
}

type ReactionAdded struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	Emoji     string
}

func (MessageCreated) isEvent() {}
func (MessageEdited) isEvent()  {}
func (ReactionAdded) isEvent()  {}

// Client is the outbound platform surface. Implementations map platform
// "not found" conditions to the sentinel errors above so callers can
// distinguish resolution failures from transport failures with errors.Is.
type Client interface {
	// SendMessage posts text to a channel.
	SendMessage(ctx context.Context, channelID, text string) error
	// SendDirectMessage delivers text privately to a user.
	SendDirectMessage(ctx context.Context, userID, text string) error
	// DeleteMessage removes a message from the platform.
	DeleteMessage(ctx context.Context, ref MessageRef) error
	// BanUser removes a user's ability to post in a guild.
	BanUser(ctx context.Context, guildID, userID string) error
	// FetchMessage retrieves a message by reference, validating that the
	// bot is a member of the referenced guild.
	FetchMessage(ctx context.Context, ref MessageRef) (*Message, error)
}
