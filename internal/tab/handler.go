package tab

import (
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ent0n29/teamsguide/internal/logger"
	"github.com/ent0n29/teamsguide/internal/teams"
)

// TeamsSDKURL is the host library loaded by the tab and selector pages.
const TeamsSDKURL = "https://statics.teams.cdn.office.net/sdk/v1.11.0/js/MicrosoftTeams.min.js"

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Tasks are the descriptors behind the three tab buttons.
type Tasks struct {
	ShowVideo       teams.TaskModuleTaskInfo `json:"showVideo"`
	ChangeVideo     teams.TaskModuleTaskInfo `json:"changeVideo"`
	ChangeVideoCard teams.TaskModuleTaskInfo `json:"changeVideoCard"`
}

// View is the tab state together with the tasks computed for it.
type View struct {
	State State `json:"state"`
	Tasks Tasks `json:"tasks"`
}

// BuildTasks computes the button descriptors for s under the given app root.
func BuildTasks(root string, s State) Tasks {
	return Tasks{
		ShowVideo:       PlayerTask(root, s.VideoID),
		ChangeVideo:     SelectorPageTask(root, s.VideoID),
		ChangeVideoCard: SelectorCardTask(s.VideoID),
	}
}

type Handler struct {
	pages  *template.Template
	static http.Handler
	log    *logger.Logger
}

func NewHandler(log *logger.Logger) (*Handler, error) {
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	return &Handler{
		pages:  pages,
		static: http.FileServer(http.FS(sub)),
		log:    log.With("component", "tab"),
	}, nil
}

// Routes is mounted at BasePath.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.handleIndex)
	r.Get("/index.html", h.handleIndex)
	r.Get("/player.html", h.handlePlayer)
	r.Get("/selector.html", h.handleSelector)
	r.Post("/api/result", h.handleResult)
	r.Handle("/static/*", http.StripPrefix(BasePath+"/static/", h.static))
	return r
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := NewState(q.Get("theme"), q.Get("vid"))
	h.render(w, "index.html", map[string]any{
		"Base":     BasePath,
		"TeamsSDK": TeamsSDKURL,
		"State":    st,
		"Tasks":    BuildTasks(AppRoot(r), st),
	})
}

func (h *Handler) handlePlayer(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	videoID := strings.TrimSpace(q.Get("vid"))
	if videoID == "" {
		videoID = FallbackVideoID
	}
	h.render(w, "player.html", map[string]any{
		"Base":    BasePath,
		"VideoID": videoID,
		"Default": q.Get("default") == "1",
	})
}

func (h *Handler) handleSelector(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.render(w, "selector.html", map[string]any{
		"Base":     BasePath,
		"TeamsSDK": TeamsSDKURL,
		"Theme":    ResolveTheme(q.Get("theme")),
		"VideoID":  strings.TrimSpace(q.Get("vid")),
	})
}

type resultRequest struct {
	State  State           `json:"state"`
	Result json.RawMessage `json:"result"`
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "code": "invalid_result"})
		return
	}
	st := req.State
	st.Theme = ResolveTheme(string(st.Theme))
	if strings.TrimSpace(st.VideoID) == "" {
		st.VideoID = DefaultVideoID
	}
	st = st.MergeResult(req.Result)
	writeJSON(w, http.StatusOK, View{State: st, Tasks: BuildTasks(AppRoot(r), st)})
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.ExecuteTemplate(w, name, data); err != nil {
		h.log.Error("render tab page failed", "page", name, "error", err)
	}
}

// AppRoot is the scheme and host the request arrived on, honoring a TLS-terminating proxy.
func AppRoot(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
