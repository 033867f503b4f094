package tab

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ent0n29/teamsguide/internal/cards"
	"github.com/ent0n29/teamsguide/internal/logger"
)

func TestResolveTheme(t *testing.T) {
	assert.Equal(t, ThemeDefault, ResolveTheme("default"))
	assert.Equal(t, ThemeDark, ResolveTheme("dark"))
	assert.Equal(t, ThemeContrast, ResolveTheme("Contrast"))
	assert.Equal(t, ThemeDefault, ResolveTheme(""))
	assert.Equal(t, ThemeDefault, ResolveTheme("neon"))
}

func TestNewStateDefaults(t *testing.T) {
	st := NewState("", "")
	assert.Equal(t, DefaultVideoID, st.VideoID)
	assert.Equal(t, NotInTeamsEntityID, st.EntityID)
	assert.Equal(t, ThemeDefault, st.Theme)

	assert.Equal(t, "abc", NewState("dark", " abc ").VideoID)
}

func TestMergeResult(t *testing.T) {
	base := NewState("", "")
	cases := map[string]struct {
		raw  string
		want string
	}{
		"string":         {`"newVideo"`, "newVideo"},
		"card object":    {`{"youTubeVideoId":"fromCard"}`, "fromCard"},
		"empty":          {``, DefaultVideoID},
		"null":           {`null`, DefaultVideoID},
		"blank string":   {`"  "`, DefaultVideoID},
		"object without": {`{"other":1}`, DefaultVideoID},
		"number":         {`42`, DefaultVideoID},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := base.MergeResult(json.RawMessage(tc.raw))
			assert.Equal(t, tc.want, got.VideoID)
		})
	}
	assert.Equal(t, DefaultVideoID, base.VideoID)
}

func TestTaskDescriptors(t *testing.T) {
	root := "https://bots.example"

	player := PlayerTask(root, "aHoRK8cr6Og")
	assert.Equal(t, "YouTube Player", player.Title)
	assert.Equal(t, 1000, player.Width)
	assert.Equal(t, 700, player.Height)
	u, err := url.Parse(player.URL)
	require.NoError(t, err)
	assert.Equal(t, "/youTubePlayerTab/player.html", u.Path)
	assert.Equal(t, "aHoRK8cr6Og", u.Query().Get("vid"))

	fallback := DefaultPlayerTask(root + "/")
	assert.Equal(t, "https://bots.example/youTubePlayerTab/player.html?vid=X8krAMdGvCQ&default=1", fallback.URL)

	selector := SelectorPageTask(root, "abc")
	assert.Equal(t, "https://bots.example/youTubePlayerTab/selector.html?theme={theme}&vid=abc", selector.URL)
	assert.Equal(t, 350, selector.Width)
	assert.Equal(t, 150, selector.Height)

	cardTask := SelectorCardTask("abc")
	assert.Equal(t, 250, cardTask.Height)
	require.NotNil(t, cardTask.Card)
	card := cardTask.Card.Content.(*cards.AdaptiveCard)
	input := card.Body[1].(*cards.Container).Items[1].(*cards.InputText)
	assert.Equal(t, "youTubeVideoId", input.ID)
	assert.Equal(t, "abc", input.Value)
}

func TestSubmittedVideoID(t *testing.T) {
	id, err := SubmittedVideoID(json.RawMessage(`{"youTubeVideoId":"xyz"}`))
	require.NoError(t, err)
	assert.Equal(t, "xyz", id)

	id, err = SubmittedVideoID(nil)
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = SubmittedVideoID(json.RawMessage(`[`))
	assert.Error(t, err)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	h, err := NewHandler(logger.Nop())
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Mount(BasePath, h.Routes())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, u string) (int, string) {
	t.Helper()
	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestPagesRender(t *testing.T) {
	srv := newServer(t)

	status, body := get(t, srv.URL+"/youTubePlayerTab/?theme=dark")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `class="theme-dark"`)
	assert.Contains(t, body, DefaultVideoID)
	assert.Contains(t, body, "player.html?vid=")

	status, body = get(t, srv.URL+"/youTubePlayerTab/player.html?vid=abc&default=1")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "https://www.youtube.com/embed/abc")
	assert.Contains(t, body, `class="note"`)

	status, body = get(t, srv.URL+"/youTubePlayerTab/selector.html?theme=contrast&vid=abc")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `value="abc"`)

	status, body = get(t, srv.URL+"/youTubePlayerTab/static/tab.js")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "startTask")
}

func TestPlayerEscapesVideoID(t *testing.T) {
	srv := newServer(t)
	_, body := get(t, srv.URL+"/youTubePlayerTab/player.html?vid="+url.QueryEscape(`"><script>alert(1)</script>`))
	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestResultEndpointMerges(t *testing.T) {
	srv := newServer(t)

	payload := `{"state":{"entityId":"tab-1","theme":"dark","youTubeVideoId":"old"},"result":{"youTubeVideoId":"new"}}`
	resp, err := http.Post(srv.URL+"/youTubePlayerTab/api/result", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "new", view.State.VideoID)
	assert.Equal(t, "tab-1", view.State.EntityID)
	assert.Equal(t, ThemeDark, view.State.Theme)
	assert.Contains(t, view.Tasks.ShowVideo.URL, "vid=new")
	assert.True(t, strings.HasPrefix(view.Tasks.ShowVideo.URL, srv.URL))
}

func TestResultEndpointCancelKeepsState(t *testing.T) {
	srv := newServer(t)

	payload := `{"state":{"entityId":"tab-1","theme":"default","youTubeVideoId":"old"},"result":null}`
	resp, err := http.Post(srv.URL+"/youTubePlayerTab/api/result", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var view View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "old", view.State.VideoID)

	bad, err := http.Post(srv.URL+"/youTubePlayerTab/api/result", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}
