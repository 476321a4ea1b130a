package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/dukerupert/habitbot/internal/bot"
	"github.com/dukerupert/habitbot/internal/database"
	"github.com/dukerupert/habitbot/internal/logging"
	"github.com/dukerupert/habitbot/internal/metrics"
	"github.com/dukerupert/habitbot/internal/session"
	"github.com/dukerupert/habitbot/internal/store"
	"github.com/dukerupert/habitbot/internal/telegram"
)

var CLI struct {
	Token       string        `help:"Telegram bot API token." env:"HABITBOT_TOKEN" required:""`
	DB          string        `help:"SQLite database path." env:"HABITBOT_DB_PATH" default:"habitbot.db"`
	LogLevel    string        `help:"Log level." env:"HABITBOT_LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	PollTimeout int           `help:"Long-poll timeout in seconds." env:"HABITBOT_POLL_TIMEOUT" default:"30"`
	SessionTTL  time.Duration `help:"Idle conversations are dropped after this long." env:"HABITBOT_SESSION_TTL" default:"30m"`
	MetricsAddr string        `help:"Listen address for /metrics and /healthz; empty disables." env:"HABITBOT_METRICS_ADDR" default:""`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("habitbot"),
		kong.Description("Telegram habit-tracking bot"),
		kong.UsageOnError(),
	)

	logger := logging.Setup(CLI.LogLevel)

	db, err := database.Open(CLI.DB)
	if err != nil {
		logger.Error("open database", "path", CLI.DB, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := store.NewUserStore(db)
	habits := store.NewHabitStore(db)
	sessions := session.NewManager(CLI.SessionTTL)

	m := metrics.New(func() float64 { return float64(sessions.Len()) })

	client := telegram.NewClient(CLI.Token, CLI.PollTimeout, logger.With("component", "telegram"))
	router := bot.NewRouter(users, habits, sessions, client, m, logger.With("component", "router"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodic eviction of abandoned conversations.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sessions.Sweep()
			}
		}
	}()

	var adminServer *http.Server
	if CLI.MetricsAddr != "" {
		adminServer = &http.Server{
			Addr:         CLI.MetricsAddr,
			Handler:      m.Handler(logger.With("component", "admin")),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("admin server listening", "addr", CLI.MetricsAddr)
			if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("admin server", "error", err)
			}
		}()
	}

	logger.Info("habitbot starting", "db", CLI.DB)
	client.Poll(ctx, router.HandleUpdate)

	logger.Info("shutting down")
	if adminServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("admin shutdown", "error", err)
		}
	}
}
