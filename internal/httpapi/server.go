// Package httpapi mounts the bot endpoints, the player tab, the local emulator
// and the operational routes on one chi router.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ent0n29/teamsguide/internal/bot"
	"github.com/ent0n29/teamsguide/internal/botauth"
	"github.com/ent0n29/teamsguide/internal/config"
	"github.com/ent0n29/teamsguide/internal/logger"
	"github.com/ent0n29/teamsguide/internal/observability"
	"github.com/ent0n29/teamsguide/internal/policy"
	"github.com/ent0n29/teamsguide/internal/session"
	"github.com/ent0n29/teamsguide/internal/tab"
	"github.com/ent0n29/teamsguide/internal/teams"
)

// Authenticator checks the Authorization header the channel sent with an activity.
type Authenticator interface {
	Enabled() bool
	Verify(ctx context.Context, authorization, serviceURL string) error
}

// Endpoint binds one bot to its messaging path and identity.
type Endpoint struct {
	Path   string
	Bot    bot.Bot
	Auth   Authenticator
	Sender bot.Sender
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Endpoints    []Endpoint
	Sessions     *session.Manager
	Metrics      *observability.Metrics
	Tab          http.Handler
	StateBackend string
	Log          *logger.Logger
}

type Server struct {
	cfg          config.Config
	endpoints    []Endpoint
	byBot        map[string]Endpoint
	sessions     *session.Manager
	metrics      *observability.Metrics
	tab          http.Handler
	assets       http.Handler
	stateBackend string
	upgrader     websocket.Upgrader
	log          *logger.Logger
}

func New(cfg config.Config, deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	sessions := deps.Sessions
	if sessions == nil {
		sessions = session.NewManager(cfg.EmulatorSessionTimeout)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics(cfg.MetricsNamespace, prometheus.NewRegistry())
	}
	byBot := make(map[string]Endpoint, len(deps.Endpoints))
	for _, ep := range deps.Endpoints {
		byBot[ep.Bot.Name()] = ep
	}
	return &Server{
		cfg:          cfg,
		endpoints:    deps.Endpoints,
		byBot:        byBot,
		sessions:     sessions,
		metrics:      metrics,
		tab:          deps.Tab,
		assets:       newAssetHandler(),
		stateBackend: deps.StateBackend,
		log:          log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return policy.AllowOrigin(r.Header.Get("Origin"), r.Host, cfg.AllowAnyOrigin)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if s.tab != nil {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, tab.BasePath+"/", http.StatusTemporaryRedirect)
		})
		r.Mount(tab.BasePath, s.tab)
	}
	r.Handle("/assets/*", http.StripPrefix("/assets/", s.assets))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)
	r.Get("/v1/status", s.handleStatus)

	for _, ep := range s.endpoints {
		r.Post(ep.Path, s.handleActivity(ep))
	}

	if s.cfg.EmulatorEnabled {
		r.Post("/v1/emulator/session", s.handleCreateSession)
		r.Post("/v1/emulator/session/{id}/end", s.handleEndSession)
		r.Get("/v1/emulator/ws", s.handleSessionWS)
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"state_backend":    s.stateBackend,
		"emulator_enabled": s.cfg.EmulatorEnabled,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ready",
		"bots":          len(s.endpoints),
		"state_backend": s.stateBackend,
	})
}

// handleActivity is the channel-facing endpoint of one bot. Invokes are
// answered in the HTTP response; replies to other activities go out through
// the endpoint's sender.
func (s *Server) handleActivity(ep Endpoint) http.HandlerFunc {
	name := ep.Bot.Name()
	return func(w http.ResponseWriter, r *http.Request) {
		var activity teams.Activity
		if err := decodeJSON(r, &activity); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_activity", err.Error())
			return
		}
		if activity.Type == "" {
			respondError(w, http.StatusBadRequest, "invalid_activity", "activity type is required")
			return
		}

		if ep.Auth != nil {
			if err := ep.Auth.Verify(r.Context(), r.Header.Get("Authorization"), activity.ServiceURL); err != nil {
				reason := botauth.ReasonInvalidToken
				var authErr *botauth.Error
				if errors.As(err, &authErr) {
					reason = authErr.Reason
				}
				s.metrics.ObserveAuthFailure(name, reason)
				s.log.Warn("rejected inbound activity", "bot", name, "reason", reason, "error", err)
				respondError(w, http.StatusUnauthorized, "unauthorized", reason)
				return
			}
		}

		resp, err := s.runTurn(r.Context(), ep.Bot, &activity, ep.Sender)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "turn_failed", err.Error())
			return
		}
		if resp == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		if resp.Body == nil {
			w.WriteHeader(resp.Status)
			return
		}
		respondJSON(w, resp.Status, resp.Body)
	}
}

// runTurn processes one activity and records its metrics.
func (s *Server) runTurn(ctx context.Context, b bot.Bot, a *teams.Activity, sender bot.Sender) (*bot.InvokeResponse, error) {
	start := time.Now()
	resp, err := bot.Process(ctx, b, bot.NewTurnContext(a, sender))

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.ObserveTurn(b.Name(), string(a.Type), outcome, time.Since(start))
	if a.Type == teams.TypeInvoke {
		status := http.StatusInternalServerError
		if resp != nil {
			status = resp.Status
		}
		s.metrics.ObserveInvoke(b.Name(), a.Name, status)
	}
	if err != nil {
		s.log.Error("turn failed",
			"bot", b.Name(),
			"type", a.Type,
			"name", a.Name,
			"conversation_id", a.Conversation.ID,
			"error", err,
		)
	}
	return resp, err
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
