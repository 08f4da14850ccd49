package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"

	"github.com/pboennig/cs152-bot/automod"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "modbot",
		Usage:   "chat moderation daemon (report intake and moderator escalation)",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "discord-token",
			Usage:    "bot account token for the chat platform",
			Required: true,
			EnvVars:  []string{"DISCORD_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "gateway-url",
			Usage:   "websocket gateway URL to subscribe to",
			EnvVars: []string{"MODBOT_GATEWAY_URL"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"MODBOT_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for persistent counters, flags, and message cache",
			EnvVars: []string{"MODBOT_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "sets-json-path",
			Usage:   "file path of JSON file containing keyword sets for the local scorer",
			EnvVars: []string{"MODBOT_SETS_JSON_PATH"},
		},
		&cli.StringFlag{
			Name:    "classifier-host",
			Usage:   "scheme, hostname, and port of the hosted threat classifier",
			EnvVars: []string{"MODBOT_CLASSIFIER_HOST"},
		},
		&cli.StringFlag{
			Name:    "classifier-password",
			Usage:   "admin auth password for the hosted threat classifier",
			EnvVars: []string{"MODBOT_CLASSIFIER_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "perspective-api-key",
			Usage:   "API key for the Perspective comment analysis service",
			EnvVars: []string{"PERSPECTIVE_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "ocr-host",
			Usage:   "scheme, hostname, and port of the image text extraction sidecar",
			EnvVars: []string{"MODBOT_OCR_HOST"},
		},
		&cli.StringFlag{
			Name:    "ocr-password",
			Usage:   "admin auth password for the image text extraction sidecar",
			EnvVars: []string{"MODBOT_OCR_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "web hook URL for slack notifications",
			EnvVars: []string{"SLACK_WEBHOOK_URL"},
		},
		&cli.Float64Flag{
			Name:    "score-threshold",
			Usage:   "minimum classifier confidence for an automatic flag",
			Value:   0.75,
			EnvVars: []string{"MODBOT_SCORE_THRESHOLD"},
		},
		&cli.IntFlag{
			Name:    "daily-auto-flag-quota",
			Usage:   "max automatic incidents the classifier can open per day",
			Value:   automod.QuotaAutoFlagDay,
			EnvVars: []string{"MODBOT_DAILY_AUTO_FLAG_QUOTA"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		otelShutdown, err := configOTEL("modbot")
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := otelShutdown(ctx); err != nil {
				slog.Error("failed to shutdown trace exporter", "error", err)
			}
		}()

		automod.QuotaAutoFlagDay = cctx.Int("daily-auto-flag-quota")

		srv, err := NewServer(Config{
			DiscordToken:       cctx.String("discord-token"),
			GatewayURL:         cctx.String("gateway-url"),
			RedisURL:           cctx.String("redis-url"),
			SetsFileJSON:       cctx.String("sets-json-path"),
			ClassifierHost:     cctx.String("classifier-host"),
			ClassifierPassword: cctx.String("classifier-password"),
			PerspectiveAPIKey:  cctx.String("perspective-api-key"),
			OCRHost:            cctx.String("ocr-host"),
			OCRPassword:        cctx.String("ocr-password"),
			SlackWebhookURL:    cctx.String("slack-webhook-url"),
			ScoreThreshold:     cctx.Float64("score-threshold"),
			Logger:             logger,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.RunConsumer(ctx); err != nil {
			return fmt.Errorf("failed to run moderation service: %w", err)
		}
		return nil
	},
}
