package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ent0n29/teamsguide/internal/bot"
	"github.com/ent0n29/teamsguide/internal/botauth"
	"github.com/ent0n29/teamsguide/internal/config"
	"github.com/ent0n29/teamsguide/internal/connector"
	"github.com/ent0n29/teamsguide/internal/convobot"
	"github.com/ent0n29/teamsguide/internal/httpapi"
	"github.com/ent0n29/teamsguide/internal/logger"
	"github.com/ent0n29/teamsguide/internal/observability"
	"github.com/ent0n29/teamsguide/internal/planetbot"
	"github.com/ent0n29/teamsguide/internal/planets"
	"github.com/ent0n29/teamsguide/internal/session"
	"github.com/ent0n29/teamsguide/internal/state"
	"github.com/ent0n29/teamsguide/internal/tab"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer log.Sync()

	metrics := observability.NewMetrics(cfg.MetricsNamespace, nil)

	storage, err := state.NewStorage(parent, state.Options{
		Backend:     cfg.StateBackend,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
		TTL:         cfg.StateTTL,
	})
	if err != nil {
		return fmt.Errorf("state storage init failed: %w", err)
	}
	defer storage.Close()
	log.Info("conversation state ready", "backend", storage.Backend())

	catalog, err := planets.Default()
	if err != nil {
		return fmt.Errorf("planet catalog: %w", err)
	}
	tabHandler, err := tab.NewHandler(log)
	if err != nil {
		return fmt.Errorf("tab templates: %w", err)
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	conversationState := state.NewConversationState(state.Observe(storage, metrics), convobot.Name)

	endpoints := make([]httpapi.Endpoint, 0, 2)
	for _, b := range []struct {
		path  string
		bot   bot.Bot
		creds config.BotCredentials
	}{
		{"/api/messages1", planetbot.New(catalog, log), cfg.PlanetBot},
		{"/api/messages2", convobot.New(conversationState, cfg.Hostname, log), cfg.ConversationalBot},
	} {
		verifier, err := botauth.NewVerifier(b.creds.AppID, cfg.OpenIDMetadataURL, httpClient)
		if err != nil {
			return fmt.Errorf("verifier for %s: %w", b.bot.Name(), err)
		}
		if !verifier.Enabled() {
			log.Warn("inbound auth disabled", "bot", b.bot.Name(), "path", b.path)
		}
		endpoints = append(endpoints, httpapi.Endpoint{
			Path:   b.path,
			Bot:    b.bot,
			Auth:   verifier,
			Sender: connector.NewClient(b.bot.Name(), b.creds, cfg.BotTokenURL, httpClient, metrics, log),
		})
	}

	sessions := session.NewManager(cfg.EmulatorSessionTimeout)
	sessions.SetExpireHook(func(s *session.Session) {
		log.Debug("emulator session expired", "session_id", s.ID, "bot", s.Bot)
		metrics.EmulatorSessions.Set(float64(sessions.ActiveCount()))
	})

	api := httpapi.New(cfg, httpapi.Deps{
		Endpoints:    endpoints,
		Sessions:     sessions,
		Metrics:      metrics,
		Tab:          tabHandler.Routes(),
		StateBackend: storage.Backend(),
		Log:          log,
	})
	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.EmulatorEnabled {
		sessions.StartJanitor(runCtx, 5*time.Second)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.BindAddr, "hostname", cfg.Hostname)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen error: %w", err)
		}
		return nil
	case <-runCtx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", "error", err)
		_ = httpServer.Close()
	}
	log.Info("shutdown complete")
	return nil
}
