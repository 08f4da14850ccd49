package discord

import "encoding/json"

// Gateway opcodes (the subset this client speaks).
const (
	opDispatch     = 0
	opHeartbeat    = 1
	opIdentify     = 2
	opHello        = 10
	opHeartbeatACK = 11
)

// Gateway intents: guilds, guild messages, guild reactions, direct
// messages, plus the message content privileged intent.
const gatewayIntents = (1 << 0) | (1 << 9) | (1 << 10) | (1 << 12) | (1 << 15)

// Dispatch event names this client handles.
const (
	eventReady           = "READY"
	eventGuildCreate     = "GUILD_CREATE"
	eventMessageCreate   = "MESSAGE_CREATE"
	eventMessageUpdate   = "MESSAGE_UPDATE"
	eventMessageReaction = "MESSAGE_REACTION_ADD"
)

type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Intents    int                `json:"intents"`
	Properties identifyProperties `json:"properties"`
}

type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

type wireUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type wireAttachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type wireMessage struct {
	ID          string           `json:"id"`
	ChannelID   string           `json:"channel_id"`
	GuildID     string           `json:"guild_id,omitempty"`
	Author      wireUser         `json:"author"`
	Content     string           `json:"content"`
	Attachments []wireAttachment `json:"attachments"`
}

type wireChannel struct {
	ID      string `json:"id"`
	GuildID string `json:"guild_id,omitempty"`
	Name    string `json:"name"`
	Type    int    `json:"type"`
}

type readyData struct {
	User      wireUser `json:"user"`
	SessionID string   `json:"session_id"`
}

type guildCreateData struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Channels []wireChannel `json:"channels"`
}

type reactionAddData struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	GuildID   string `json:"guild_id,omitempty"`
	Emoji     struct {
		Name string `json:"name"`
	} `json:"emoji"`
}

// restError is the JSON error body the REST API returns on failure.
type restError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// REST API error codes this client maps to sentinel errors.
const (
	errCodeUnknownChannel = 10003
	errCodeUnknownGuild   = 10004
	errCodeUnknownMessage = 10008
)
