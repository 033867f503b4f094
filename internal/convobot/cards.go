package convobot

import (
	"github.com/ent0n29/teamsguide/internal/cards"
	"github.com/ent0n29/teamsguide/internal/teams"
)

// Task module names carried in the learn card buttons.
const (
	TaskModulePlayer   = "player"
	TaskModuleSelector = "selector"
)

// learnVideo is the invoke value behind one learn card button.
type learnVideo struct {
	Type       string `json:"type"`
	TaskModule string `json:"taskModule"`
	VideoID    string `json:"videoId"`
}

func learnButton(title, taskModule, videoID string) cards.CardAction {
	return cards.CardAction{
		Type:  cards.ActionTypeInvoke,
		Title: title,
		Value: learnVideo{Type: teams.InvokeTaskFetch, TaskModule: taskModule, VideoID: videoID},
	}
}

func learnCard() teams.Attachment {
	card := cards.NewHeroCard("Learn Microsoft Teams", "")
	card.Buttons = []cards.CardAction{
		learnButton("Watch 'Task-oriented interactions in Microsoft Teams with messaging extensions'", TaskModulePlayer, "aHoRK8cr6Og"),
		learnButton("Watch 'Microsoft Teams embedded web experiences'", TaskModulePlayer, "AQcdZYkFPCY"),
		learnButton("Watch a invalid action...", "something", "hello-world"),
		learnButton("Watch Specific Video", TaskModuleSelector, "QHPBw7F4OL4"),
	}
	return cards.Hero(card)
}

func welcomeCard(hostname string) teams.Attachment {
	icon := cards.NewImage("https://" + hostname + "/assets/icon.png")
	icon.Size = "Medium"

	title := cards.NewTextBlock("Welcome to the Teams Guide!")
	title.Size = "Large"
	title.Weight = "Bolder"

	greeting := cards.NewTextBlock("Hello, nice to meet you!")
	greeting.Wrap = true

	card := cards.NewAdaptiveCard(icon, title, greeting)
	card.Schema = cards.AdaptiveSchema
	card.Actions = []cards.Action{
		cards.NewOpenURLAction("Learn more about Teams", "https://aka.ms/microsoftteams"),
		cards.NewOpenURLAction("Learn more about Yo Teams", "https://aka.ms/yoteams"),
	}
	return cards.Adaptive(card)
}
