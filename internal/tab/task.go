// Package tab serves the YouTube player tab and builds the task module
// descriptors shared by the tab page and the conversational bot.
package tab

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/ent0n29/teamsguide/internal/cards"
	"github.com/ent0n29/teamsguide/internal/teams"
)

const (
	BasePath = "/youTubePlayerTab"

	DefaultVideoID  = "VlEH4vtaxp4"
	FallbackVideoID = "X8krAMdGvCQ"

	PlayerTitle   = "YouTube Player"
	SelectorTitle = "YouTube Video Selector"

	// themePlaceholder is substituted by the Teams client when it opens the task module.
	themePlaceholder = "{theme}"
)

// PlayerURL returns the absolute player page URL for videoID.
func PlayerURL(root, videoID string) string {
	return strings.TrimRight(root, "/") + BasePath + "/player.html?vid=" + url.QueryEscape(videoID)
}

// SelectorURL returns the absolute selector page URL. The theme parameter is
// left for the host to fill in.
func SelectorURL(root, videoID string) string {
	return strings.TrimRight(root, "/") + BasePath + "/selector.html?theme=" + themePlaceholder + "&vid=" + url.QueryEscape(videoID)
}

func PlayerTask(root, videoID string) teams.TaskModuleTaskInfo {
	return teams.TaskModuleTaskInfo{Title: PlayerTitle, URL: PlayerURL(root, videoID), Width: 1000, Height: 700}
}

// DefaultPlayerTask plays the fallback video and flags it with default=1.
func DefaultPlayerTask(root string) teams.TaskModuleTaskInfo {
	info := PlayerTask(root, FallbackVideoID)
	info.URL += "&default=1"
	return info
}

func SelectorPageTask(root, videoID string) teams.TaskModuleTaskInfo {
	return teams.TaskModuleTaskInfo{Title: SelectorTitle, URL: SelectorURL(root, videoID), Width: 350, Height: 150}
}

func SelectorCardTask(videoID string) teams.TaskModuleTaskInfo {
	card := cards.Adaptive(cards.VideoSelector(videoID))
	return teams.TaskModuleTaskInfo{Title: SelectorTitle, Card: &card, Width: 350, Height: 250}
}

// SubmittedVideoID reads youTubeVideoId from a selector card submission.
func SubmittedVideoID(data json.RawMessage) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	var payload struct {
		VideoID string `json:"youTubeVideoId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	return payload.VideoID, nil
}
