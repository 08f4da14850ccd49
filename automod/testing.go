package automod

import (
	"log/slog"
	"time"

	"github.com/pboennig/cs152-bot/automod/countstore"
	"github.com/pboennig/cs152-bot/automod/flagstore"
	"github.com/pboennig/cs152-bot/automod/msgcache"
	"github.com/pboennig/cs152-bot/automod/setstore"
	"github.com/pboennig/cs152-bot/automod/threatsignal"
	"github.com/pboennig/cs152-bot/platform"
)

// EngineTestFixture builds an Engine on in-memory stores, a keyword
// scorer seeded with a small violence term list, and a mock platform
// client. Intentionally exported, for use in other packages.
func EngineTestFixture() (*Engine, *platform.MockClient) {
	sets := setstore.NewMemSetStore()
	sets.Sets["violence-terms"] = map[string]bool{
		"hurt": true,
		"kill": true,
	}

	client := platform.NewMockClient()
	client.Guilds["g1"] = true
	client.Channels["chan-general"] = true
	client.Channels["chan-mod"] = true

	engine := &Engine{
		Logger:         slog.Default(),
		Client:         client,
		Signal:         threatsignal.NewKeywordScorer(sets, "violence-terms"),
		Counters:       countstore.NewMemCountStore(),
		Flags:          flagstore.NewMemFlagStore(),
		Cache:          msgcache.NewMemMessageCache(10, time.Hour),
		Registry:       NewIncidentRegistry(),
		BotUserID:      "bot-1",
		ScoreThreshold: 0.5,
		ModChannels:    map[string]string{"g1": "chan-mod"},
		MonitoredChannels: map[string]bool{
			"chan-general": true,
		},
	}
	return engine, client
}
