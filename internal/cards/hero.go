package cards

import "github.com/ent0n29/teamsguide/internal/teams"

const ActionTypeInvoke = "invoke"

type CardImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type CardAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Value any    `json:"value,omitempty"`
}

type HeroCard struct {
	Title    string       `json:"title,omitempty"`
	Subtitle string       `json:"subtitle,omitempty"`
	Text     string       `json:"text,omitempty"`
	Images   []CardImage  `json:"images,omitempty"`
	Buttons  []CardAction `json:"buttons,omitempty"`
}

// NewHeroCard mirrors the usual (title, text, images) factory shape.
func NewHeroCard(title, text string, imageURLs ...string) *HeroCard {
	c := &HeroCard{Title: title, Text: text}
	for _, u := range imageURLs {
		c.Images = append(c.Images, CardImage{URL: u})
	}
	return c
}

// Hero wraps card in an attachment.
func Hero(card *HeroCard) teams.Attachment {
	return teams.Attachment{ContentType: ContentTypeHero, Content: card}
}
