package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"github.com/pboennig/cs152-bot/automod"
	"github.com/pboennig/cs152-bot/platform"
)

var tracer = otel.Tracer("discord")

const defaultGatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// The bot account's username encodes which group's channels it serves.
var botNamePattern = regexp.MustCompile(`[gG]roup (\d+) [bB]ot`)

// ErrBotNameMismatch means the connected bot account's username does not
// carry a group number. Reconnecting cannot fix this; treat it as fatal.
var ErrBotNameMismatch = errors.New("discord: bot username does not match the expected \"Group # Bot\" pattern")

// Gateway is the websocket half of the Discord adapter. It maintains the
// gateway connection (hello, identify, heartbeats) and feeds dispatch
// events into the moderation engine one at a time, preserving arrival
// order. All engine mutation happens on the single read-loop goroutine.
type Gateway struct {
	Token      string
	GatewayURL string
	Logger     *slog.Logger
	Engine     *automod.Engine

	// GroupNumber is parsed from the bot's username on READY.
	GroupNumber int

	conn    *websocket.Conn
	writeMu sync.Mutex
	lastSeq int64
}

// Run connects and consumes events until the context is cancelled or the
// connection drops. The caller handles reconnection.
func (g *Gateway) Run(ctx context.Context) error {
	if g.Engine == nil {
		return fmt.Errorf("nil engine")
	}
	gatewayURL := g.GatewayURL
	if gatewayURL == "" {
		gatewayURL = defaultGatewayURL
	}

	dialer := websocket.DefaultDialer
	g.Logger.Info("connecting to gateway", "url", gatewayURL)
	conn, _, err := dialer.Dial(gatewayURL, http.Header{
		"User-Agent": []string{fmt.Sprintf("modbot/%s", versioninfo.Short())},
	})
	if err != nil {
		return fmt.Errorf("connecting to gateway failed (dialing): %w", err)
	}
	g.conn = conn
	defer conn.Close()

	interval, err := g.readHello()
	if err != nil {
		return err
	}
	if err := g.sendIdentify(); err != nil {
		return err
	}

	hbCtx, cancelHeartbeat := context.WithCancel(ctx)
	defer cancelHeartbeat()
	go g.runHeartbeat(hbCtx, interval)

	// close the connection when the parent context ends so the blocked
	// ReadMessage below returns
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var payload gatewayPayload
		if err := conn.ReadJSON(&payload); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading gateway event: %w", err)
		}
		if payload.S != nil {
			atomic.StoreInt64(&g.lastSeq, *payload.S)
		}

		switch payload.Op {
		case opDispatch:
			if err := g.handleDispatch(ctx, payload.T, payload.D); err != nil {
				return err
			}
		case opHeartbeat:
			if err := g.sendHeartbeat(); err != nil {
				return err
			}
		case opHeartbeatACK:
			// nothing to do
		default:
			g.Logger.Debug("ignoring gateway opcode", "op", payload.Op)
		}
	}
}

func (g *Gateway) readHello() (time.Duration, error) {
	var payload gatewayPayload
	if err := g.conn.ReadJSON(&payload); err != nil {
		return 0, fmt.Errorf("reading gateway hello: %w", err)
	}
	if payload.Op != opHello {
		return 0, fmt.Errorf("expected hello opcode, got %d", payload.Op)
	}
	var hello helloData
	if err := json.Unmarshal(payload.D, &hello); err != nil {
		return 0, fmt.Errorf("parsing gateway hello: %w", err)
	}
	return time.Duration(hello.HeartbeatInterval) * time.Millisecond, nil
}

func (g *Gateway) sendIdentify() error {
	d, err := json.Marshal(identifyData{
		Token:   g.Token,
		Intents: gatewayIntents,
		Properties: identifyProperties{
			OS:      "linux",
			Browser: "modbot",
			Device:  "modbot",
		},
	})
	if err != nil {
		return err
	}
	return g.writePayload(gatewayPayload{Op: opIdentify, D: d})
}

func (g *Gateway) runHeartbeat(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := g.sendHeartbeat(); err != nil {
				g.Logger.Error("sending heartbeat failed", "err", err)
				return
			}
		}
	}
}

func (g *Gateway) sendHeartbeat() error {
	seq := atomic.LoadInt64(&g.lastSeq)
	var d json.RawMessage
	if seq > 0 {
		d = json.RawMessage(strconv.FormatInt(seq, 10))
	} else {
		d = json.RawMessage("null")
	}
	return g.writePayload(gatewayPayload{Op: opHeartbeat, D: d})
}

func (g *Gateway) writePayload(p gatewayPayload) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	return g.conn.WriteJSON(p)
}

func (g *Gateway) handleDispatch(ctx context.Context, event string, data json.RawMessage) error {
	switch event {

	case eventReady:
		var ready readyData
		if err := json.Unmarshal(data, &ready); err != nil {
			return fmt.Errorf("parsing ready event: %w", err)
		}
		return g.handleReady(ready)

	case eventGuildCreate:
		var guild guildCreateData
		if err := json.Unmarshal(data, &guild); err != nil {
			return fmt.Errorf("parsing guild create event: %w", err)
		}
		g.registerGuildChannels(guild)
		return nil

	case eventMessageCreate, eventMessageUpdate:
		var wm wireMessage
		if err := json.Unmarshal(data, &wm); err != nil {
			return fmt.Errorf("parsing message event: %w", err)
		}
		// partial update payloads without an author carry no new content
		if wm.Author.ID == "" {
			return nil
		}
		ctx, span := tracer.Start(ctx, event)
		defer span.End()
		msg := toPlatformMessage(wm)
		var evt platform.Event
		if event == eventMessageCreate {
			evt = platform.MessageCreated{Message: msg}
		} else {
			evt = platform.MessageEdited{Message: msg}
		}
		if err := g.Engine.ProcessEvent(ctx, evt); err != nil {
			g.Logger.Error("engine failed to process message", "channel", msg.Ref.ChannelID, "err", err)
		}
		return nil

	case eventMessageReaction:
		var ra reactionAddData
		if err := json.Unmarshal(data, &ra); err != nil {
			return fmt.Errorf("parsing reaction event: %w", err)
		}
		ctx, span := tracer.Start(ctx, event)
		defer span.End()
		evt := platform.ReactionAdded{
			GuildID:   ra.GuildID,
			ChannelID: ra.ChannelID,
			MessageID: ra.MessageID,
			UserID:    ra.UserID,
			Emoji:     ra.Emoji.Name,
		}
		if err := g.Engine.ProcessEvent(ctx, evt); err != nil {
			g.Logger.Error("engine failed to process reaction", "channel", ra.ChannelID, "err", err)
		}
		return nil

	default:
		g.Logger.Debug("ignoring dispatch event", "event", event)
		return nil
	}
}

// handleReady wires the engine's identity from the gateway session. The
// bot's username must carry the group number; a mismatch means the bot is
// deployed against the wrong account and cannot find its channels.
func (g *Gateway) handleReady(ready readyData) error {
	m := botNamePattern.FindStringSubmatch(ready.User.Username)
	if m == nil {
		return fmt.Errorf("%w: %q", ErrBotNameMismatch, ready.User.Username)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fmt.Errorf("parsing group number from bot username: %w", err)
	}
	g.GroupNumber = n
	g.Engine.BotUserID = ready.User.ID
	g.Logger.Info("gateway session ready", "bot", ready.User.Username, "group", n, "session", ready.SessionID)
	return nil
}

// registerGuildChannels discovers the group's monitored and moderator
// channels in a newly-visible guild.
func (g *Gateway) registerGuildChannels(guild guildCreateData) {
	monitoredName := fmt.Sprintf("group-%d", g.GroupNumber)
	modName := fmt.Sprintf("group-%d-mod", g.GroupNumber)

	for _, ch := range guild.Channels {
		switch ch.Name {
		case monitoredName:
			if g.Engine.MonitoredChannels == nil {
				g.Engine.MonitoredChannels = make(map[string]bool)
			}
			g.Engine.MonitoredChannels[ch.ID] = true
			g.Logger.Info("watching channel", "guild", guild.Name, "channel", ch.Name)
		case modName:
			if g.Engine.ModChannels == nil {
				g.Engine.ModChannels = make(map[string]string)
			}
			g.Engine.ModChannels[guild.ID] = ch.ID
			g.Logger.Info("found moderator channel", "guild", guild.Name, "channel", ch.Name)
		}
	}
}
