package cards

// VideoInputID is the input whose value comes back as the selected video id.
const VideoInputID = "youTubeVideoId"

// VideoSelector is the card used by both the bot and the tab to pick a YouTube video.
func VideoSelector(defaultVideoID string) *AdaptiveCard {
	heading := NewTextBlock("YouTube Video Selector")
	heading.Weight = "bolder"
	heading.Size = "extraLarge"

	prompt := NewTextBlock("Enter the ID of a YouTube video to show in the task module player.")
	prompt.Wrap = true

	card := NewAdaptiveCard(
		NewContainer("", heading),
		NewContainer("", prompt, NewInputText(VideoInputID, defaultVideoID)),
	)
	card.Actions = []Action{NewSubmitAction("Update")}
	return card
}
