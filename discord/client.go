package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/carlmjohnson/versioninfo"
	"golang.org/x/time/rate"

	"github.com/pboennig/cs152-bot/platform"
	"github.com/pboennig/cs152-bot/util"
)

const defaultAPIBase = "https://discord.com/api/v10"

// Client is the REST half of the Discord adapter. It satisfies
// platform.Client; requests go through a shared rate limiter well under
// the documented global limit of 50 requests per second.
type Client struct {
	Token   string
	APIBase string

	httpClient *http.Client
	limiter    *rate.Limiter

	mu         sync.Mutex
	dmChannels map[string]string // user ID -> DM channel ID
}

func NewClient(token string) *Client {
	return &Client{
		Token:      token,
		APIBase:    defaultAPIBase,
		httpClient: util.RobustHTTPClient(),
		limiter:    rate.NewLimiter(rate.Limit(25), 25),
		dmChannels: make(map[string]string),
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.APIBase+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.Token)
	req.Header.Set("User-Agent", "modbot/"+versioninfo.Short())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading discord response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr restError
		if err := json.Unmarshal(raw, &apiErr); err == nil {
			switch apiErr.Code {
			case errCodeUnknownGuild:
				return platform.ErrUnknownGuild
			case errCodeUnknownChannel:
				return platform.ErrChannelNotFound
			case errCodeUnknownMessage:
				return platform.ErrMessageNotFound
			}
		}
		return fmt.Errorf("discord request failed: %s %s: status=%d", method, path, resp.StatusCode)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("parsing discord response: %w", err)
		}
	}
	return nil
}

func (c *Client) SendMessage(ctx context.Context, channelID, text string) error {
	body := map[string]string{"content": text}
	return c.do(ctx, http.MethodPost, "/channels/"+channelID+"/messages", body, nil)
}

// SendDirectMessage opens (or reuses) the DM channel with the user and
// posts to it.
func (c *Client) SendDirectMessage(ctx context.Context, userID, text string) error {
	c.mu.Lock()
	channelID, ok := c.dmChannels[userID]
	c.mu.Unlock()

	if !ok {
		var ch wireChannel
		body := map[string]string{"recipient_id": userID}
		if err := c.do(ctx, http.MethodPost, "/users/@me/channels", body, &ch); err != nil {
			return fmt.Errorf("opening DM channel with %s: %w", userID, err)
		}
		channelID = ch.ID
		c.mu.Lock()
		c.dmChannels[userID] = channelID
		c.mu.Unlock()
	}
	return c.SendMessage(ctx, channelID, text)
}

func (c *Client) DeleteMessage(ctx context.Context, ref platform.MessageRef) error {
	return c.do(ctx, http.MethodDelete, "/channels/"+ref.ChannelID+"/messages/"+ref.MessageID, nil, nil)
}

func (c *Client) BanUser(ctx context.Context, guildID, userID string) error {
	return c.do(ctx, http.MethodPut, "/guilds/"+guildID+"/bans/"+userID, struct{}{}, nil)
}

func (c *Client) FetchMessage(ctx context.Context, ref platform.MessageRef) (*platform.Message, error) {
	var wm wireMessage
	if err := c.do(ctx, http.MethodGet, "/channels/"+ref.ChannelID+"/messages/"+ref.MessageID, nil, &wm); err != nil {
		return nil, err
	}
	msg := toPlatformMessage(wm)
	// the fetch endpoint omits guild_id; restore it from the ref
	if msg.Ref.GuildID == "" {
		msg.Ref.GuildID = ref.GuildID
	}
	return &msg, nil
}

func toPlatformMessage(wm wireMessage) platform.Message {
	msg := platform.Message{
		Ref: platform.MessageRef{
			GuildID:   wm.GuildID,
			ChannelID: wm.ChannelID,
			MessageID: wm.ID,
		},
		Author:  platform.User{ID: wm.Author.ID, Name: wm.Author.Username},
		Content: wm.Content,
	}
	for _, att := range wm.Attachments {
		msg.Attachments = append(msg.Attachments, platform.Attachment{
			Filename: att.Filename,
			URL:      att.URL,
		})
	}
	return msg
}

var _ platform.Client = (*Client)(nil)
