package tab

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Theme is one of the three Teams client themes.
type Theme string

const (
	ThemeDefault  Theme = "default"
	ThemeDark     Theme = "dark"
	ThemeContrast Theme = "contrast"
)

// NotInTeamsEntityID is shown until the host reports a real entity id.
const NotInTeamsEntityID = "This is not hosted in Microsoft Teams"

// ResolveTheme maps a host theme name to a Theme; unknown names fall back to default.
func ResolveTheme(name string) Theme {
	switch Theme(strings.ToLower(strings.TrimSpace(name))) {
	case ThemeDark:
		return ThemeDark
	case ThemeContrast:
		return ThemeContrast
	default:
		return ThemeDefault
	}
}

// State is what the tab page displays.
type State struct {
	EntityID string `json:"entityId"`
	Theme    Theme  `json:"theme"`
	VideoID  string `json:"youTubeVideoId"`
}

func NewState(themeQuery, videoQuery string) State {
	videoID := strings.TrimSpace(videoQuery)
	if videoID == "" {
		videoID = DefaultVideoID
	}
	return State{
		EntityID: NotInTeamsEntityID,
		Theme:    ResolveTheme(themeQuery),
		VideoID:  videoID,
	}
}

// MergeResult applies a task module result. A string result is the new video
// id; an object contributes its youTubeVideoId. Empty, null or unusable
// results leave the state unchanged.
func (s State) MergeResult(raw json.RawMessage) State {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return s
	}
	var videoID string
	switch raw[0] {
	case '"':
		if json.Unmarshal(raw, &videoID) != nil {
			return s
		}
	case '{':
		id, err := SubmittedVideoID(raw)
		if err != nil {
			return s
		}
		videoID = id
	}
	if videoID = strings.TrimSpace(videoID); videoID == "" {
		return s
	}
	s.VideoID = videoID
	return s
}
