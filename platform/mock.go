package platform

import (
	"context"
	"sync"
)

// MockClient is an in-memory Client for tests. Seed it with guilds,
// channels, and messages; it records every outbound call for assertions.
type MockClient struct {
	mu sync.Mutex

	Guilds   map[string]bool
	Channels map[string]bool
	Messages map[string]*Message // key: channelID + "/" + messageID

	SentMessages []SentMessage
	DirectSends  []SentMessage
	Deleted      []MessageRef
	Banned       []BanRecord

	// When set, the corresponding call returns this error.
	SendErr   error
	DirectErr error
	DeleteErr error
	BanErr    error
}

type SentMessage struct {
	Target string // channel ID or user ID
	Text   string
}

type BanRecord struct {
	GuildID string
	UserID  string
}

func NewMockClient() *MockClient {
	return &MockClient{
		Guilds:   make(map[string]bool),
		Channels: make(map[string]bool),
		Messages: make(map[string]*Message),
	}
}

// AddMessage seeds a fetchable message, registering its guild and channel.
func (m *MockClient) AddMessage(msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.Ref.GuildID != "" {
		m.Guilds[msg.Ref.GuildID] = true
	}
	m.Channels[msg.Ref.ChannelID] = true
	m.Messages[msg.Ref.ChannelID+"/"+msg.Ref.MessageID] = &msg
}

func (m *MockClient) SendMessage(ctx context.Context, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.SentMessages = append(m.SentMessages, SentMessage{Target: channelID, Text: text})
	return nil
}

func (m *MockClient) SendDirectMessage(ctx context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DirectErr != nil {
		return m.DirectErr
	}
	m.DirectSends = append(m.DirectSends, SentMessage{Target: userID, Text: text})
	return nil
}

func (m *MockClient) DeleteMessage(ctx context.Context, ref MessageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, ref)
	delete(m.Messages, ref.ChannelID+"/"+ref.MessageID)
	return nil
}

func (m *MockClient) BanUser(ctx context.Context, guildID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BanErr != nil {
		return m.BanErr
	}
	m.Banned = append(m.Banned, BanRecord{GuildID: guildID, UserID: userID})
	return nil
}

func (m *MockClient) FetchMessage(ctx context.Context, ref MessageRef) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ref.GuildID != "" && !m.Guilds[ref.GuildID] {
		return nil, ErrUnknownGuild
	}
	if !m.Channels[ref.ChannelID] {
		return nil, ErrChannelNotFound
	}
	msg, ok := m.Messages[ref.ChannelID+"/"+ref.MessageID]
	if !ok {
		return nil, ErrMessageNotFound
	}
	out := *msg
	return &out, nil
}

var _ Client = (*MockClient)(nil)
