package httpapi

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

type statusCheck struct {
	ID     string `json:"id"`
	Status string `json:"status"` // ok|warn|error
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Fix    string `json:"fix,omitempty"`
}

type botStatus struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	AuthEnabled bool   `json:"auth_enabled"`
}

type statusResponse struct {
	Hostname        string        `json:"hostname"`
	StateBackend    string        `json:"state_backend"`
	EmulatorEnabled bool          `json:"emulator_enabled"`
	ActiveSessions  int           `json:"active_sessions"`
	Bots            []botStatus   `json:"bots"`
	Checks          []statusCheck `json:"checks"`
}

// handleStatus reports configuration problems a developer is likely to hit
// when sideloading the app.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	bots := make([]botStatus, 0, len(s.endpoints))
	checks := make([]statusCheck, 0, len(s.endpoints)+3)
	anyAuth := false

	for i, ep := range s.endpoints {
		enabled := ep.Auth != nil && ep.Auth.Enabled()
		anyAuth = anyAuth || enabled
		bots = append(bots, botStatus{Name: ep.Bot.Name(), Path: ep.Path, AuthEnabled: enabled})

		check := statusCheck{
			ID:     "auth_" + ep.Bot.Name(),
			Status: "ok",
			Label:  fmt.Sprintf("Inbound auth (%s)", ep.Bot.Name()),
			Detail: "tokens are verified",
		}
		if !enabled {
			check.Status = "warn"
			check.Detail = "disabled, every request is accepted"
			check.Fix = fmt.Sprintf("Set MICROSOFT_APP_ID_%d and MICROSOFT_APP_PASSWORD_%d.", i+1, i+1)
		}
		checks = append(checks, check)
	}

	checks = append(checks, s.hostnameCheck(), s.stateCheck())
	if s.cfg.EmulatorEnabled {
		check := statusCheck{
			ID:     "emulator",
			Status: "ok",
			Label:  "Local emulator",
			Detail: "enabled",
		}
		if anyAuth {
			check.Status = "warn"
			check.Detail = "enabled next to authenticated bots; emulator turns skip token checks"
			check.Fix = "Set EMULATOR_ENABLED=false outside local development."
		}
		checks = append(checks, check)
	}

	respondJSON(w, http.StatusOK, statusResponse{
		Hostname:        s.cfg.Hostname,
		StateBackend:    s.stateBackend,
		EmulatorEnabled: s.cfg.EmulatorEnabled,
		ActiveSessions:  s.sessions.ActiveCount(),
		Bots:            bots,
		Checks:          checks,
	})
}

func (s *Server) hostnameCheck() statusCheck {
	check := statusCheck{
		ID:     "hostname",
		Status: "ok",
		Label:  "Public hostname",
		Detail: s.cfg.Hostname,
	}
	host := strings.TrimSpace(s.cfg.Hostname)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	switch {
	case host == "":
		check.Status = "error"
		check.Detail = "not set"
		check.Fix = "Set HOSTNAME to the host Teams loads the tab and task modules from."
	case strings.EqualFold(host, "localhost") || isLoopbackIP(host):
		check.Status = "warn"
		check.Fix = "Teams clients cannot reach a loopback host. Set HOSTNAME to your tunnel host."
	}
	return check
}

func (s *Server) stateCheck() statusCheck {
	check := statusCheck{
		ID:     "state_backend",
		Status: "ok",
		Label:  "Conversation state",
		Detail: s.stateBackend,
	}
	if s.stateBackend == "" || s.stateBackend == "memory" {
		check.Status = "warn"
		check.Detail = "in-memory only"
		check.Fix = "Set DATABASE_URL or REDIS_ADDR to keep dialog state across restarts."
	}
	return check
}

func isLoopbackIP(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
