package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/pboennig/cs152-bot/automod"
	"github.com/pboennig/cs152-bot/automod/countstore"
	"github.com/pboennig/cs152-bot/automod/flagstore"
	"github.com/pboennig/cs152-bot/automod/msgcache"
	"github.com/pboennig/cs152-bot/automod/setstore"
	"github.com/pboennig/cs152-bot/automod/threatsignal"
	"github.com/pboennig/cs152-bot/automod/visual"
	"github.com/pboennig/cs152-bot/discord"
)

type Server struct {
	logger  *slog.Logger
	engine  *automod.Engine
	gateway *discord.Gateway
	rdb     *redis.Client
}

type Config struct {
	DiscordToken       string
	GatewayURL         string
	RedisURL           string
	SetsFileJSON       string
	ClassifierHost     string
	ClassifierPassword string
	PerspectiveAPIKey  string
	OCRHost            string
	OCRPassword        string
	SlackWebhookURL    string
	ScoreThreshold     float64
	Logger             *slog.Logger
}

// violenceSetName is the keyword set the local scorer consults when no
// external classifier is configured.
const violenceSetName = "violence-terms"

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	if config.DiscordToken == "" {
		return nil, fmt.Errorf("discord bot token is required")
	}

	sets := setstore.NewMemSetStore()
	if config.SetsFileJSON != "" {
		if err := sets.LoadFromFileJSON(config.SetsFileJSON); err != nil {
			return nil, fmt.Errorf("initializing in-process setstore: %v", err)
		} else {
			logger.Info("loaded set config from JSON", "path", config.SetsFileJSON)
		}
	}

	var counters countstore.CountStore
	var cache msgcache.MessageCache
	var flags flagstore.FlagStore
	var rdb *redis.Client
	if config.RedisURL != "" {
		// generic client, for liveness checks
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %v", err)
		}
		rdb = redis.NewClient(opt)
		_, err = rdb.Ping(context.TODO()).Result()
		if err != nil {
			return nil, fmt.Errorf("redis ping failed: %v", err)
		}

		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %v", err)
		}
		counters = cnt

		csh, err := msgcache.NewRedisMessageCache(config.RedisURL, 30*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing redis message cache: %v", err)
		}
		cache = csh

		flg, err := flagstore.NewRedisFlagStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis flagstore: %v", err)
		}
		flags = flg
	} else {
		counters = countstore.NewMemCountStore()
		cache = msgcache.NewMemMessageCache(5_000, 30*time.Minute)
		flags = flagstore.NewMemFlagStore()
	}

	var signal threatsignal.Signal
	switch {
	case config.ClassifierHost != "":
		logger.Info("configuring hosted threat classifier", "host", config.ClassifierHost)
		hc := threatsignal.NewHostedClassifierClient(config.ClassifierHost, config.ClassifierPassword)
		signal = &hc
	case config.PerspectiveAPIKey != "":
		logger.Info("configuring Perspective comment analysis")
		pc := threatsignal.NewPerspectiveClient(config.PerspectiveAPIKey)
		signal = &pc
	default:
		logger.Info("configuring local keyword scorer", "set", violenceSetName)
		signal = threatsignal.NewKeywordScorer(sets, violenceSetName)
	}

	var extractor visual.Extractor
	if config.OCRHost != "" {
		logger.Info("configuring image text extraction", "host", config.OCRHost)
		oc := visual.NewOCRClient(config.OCRHost, config.OCRPassword)
		extractor = &oc
	}

	var notifier *automod.SlackNotifier
	if config.SlackWebhookURL != "" {
		notifier = &automod.SlackNotifier{SlackWebhookURL: config.SlackWebhookURL}
	}

	client := discord.NewClient(config.DiscordToken)

	engine := &automod.Engine{
		Logger:            logger,
		Client:            client,
		Signal:            signal,
		Extractor:         extractor,
		Counters:          counters,
		Flags:             flags,
		Cache:             cache,
		Notifier:          notifier,
		Registry:          automod.NewIncidentRegistry(),
		ScoreThreshold:    config.ScoreThreshold,
		ModChannels:       make(map[string]string),
		MonitoredChannels: make(map[string]bool),
	}

	gateway := &discord.Gateway{
		Token:      config.DiscordToken,
		GatewayURL: config.GatewayURL,
		Logger:     logger,
		Engine:     engine,
	}

	s := &Server{
		logger:  logger,
		engine:  engine,
		gateway: gateway,
		rdb:     rdb,
	}

	return s, nil
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}
