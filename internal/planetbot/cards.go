package planetbot

import (
	"strconv"

	"github.com/ent0n29/teamsguide/internal/cards"
	"github.com/ent0n29/teamsguide/internal/planets"
	"github.com/ent0n29/teamsguide/internal/teams"
)

const (
	actionExerciseSuffix = ":::Exercise - Create action command messaging extensions"
	searchExerciseSuffix = ":::Exercise - Create search command messaging extensions"
	actionExerciseURL    = "https://docs.microsoft.com/en-us/learn/modules/msteams-messaging-extensions/3-exercise-action-commands"
)

// Placeholder ids kept in the emitted card JSON.
const (
	SelectorInputID     = "planetSelector"
	idCardHeader        = "cardHeader"
	idCardBody          = "cardBody"
	idPlanetSummary     = "planetSummary"
	idPlanetDetails     = "planetDetails"
	idImageAttribution  = "imageAttribution"
	idOrderFromSun      = "orderFromSun"
	idNumSatellites     = "planetNumSatellites"
	idSolarOrbitYears   = "solarOrbitYears"
	idSolarOrbitAvgDist = "solarOrbitAvgDistanceKm"
)

func selectorCard(list []planets.Planet) *cards.AdaptiveCard {
	choices := make([]cards.Choice, 0, len(list))
	for _, p := range list {
		choices = append(choices, cards.Choice{Title: p.Name, Value: strconv.Itoa(p.ID)})
	}
	card := cards.NewAdaptiveCard(
		cards.NewTextBlock("Please select a planet:"),
		cards.NewChoiceSet(SelectorInputID, choices),
	)
	card.Actions = []cards.Action{cards.NewSubmitAction("Insert selected planet")}
	return card
}

func detailCard(p planets.Planet) teams.Attachment {
	title := cards.NewTextBlock(p.Name + actionExerciseSuffix)
	title.Size = "Medium"
	title.Weight = "Bolder"

	summary := cards.NewTextBlock(p.Summary)
	summary.ID = idPlanetSummary
	summary.Wrap = true

	image := cards.NewImage(p.ImageLink)
	image.AltText = p.Name
	image.Size = "Stretch"

	facts := cards.NewFactSet(
		&cards.Fact{ID: idOrderFromSun, Title: "Order from the sun:", Value: strconv.Itoa(p.ID)},
		&cards.Fact{ID: idNumSatellites, Title: "Known satellites:", Value: strconv.Itoa(p.NumSatellites)},
		&cards.Fact{ID: idSolarOrbitYears, Title: "Solar orbit (*Earth years*):", Value: planets.FormatYears(p.SolarOrbitYears)},
		&cards.Fact{ID: idSolarOrbitAvgDist, Title: "Average distance from the sun (*km*):", Value: planets.FormatDistance(p.SolarOrbitAvgDistanceKm)},
	)

	attribution := cards.NewTextBlock("*Image attribution: " + p.ImageAlt + "*")
	attribution.ID = idImageAttribution
	attribution.Size = "Medium"
	attribution.IsSubtle = true
	attribution.Wrap = true

	card := cards.NewAdaptiveCard(
		cards.NewContainer(idCardHeader, title),
		cards.NewContainer(idCardBody,
			summary,
			cards.NewColumnSet(idPlanetDetails,
				cards.NewColumn("100", image),
				cards.NewColumn("250", facts),
			),
			attribution,
		),
	)
	card.Actions = []cards.Action{
		cards.NewOpenURLAction("Learn more on Wikipedia"+actionExerciseSuffix, actionExerciseURL),
	}
	return cards.Adaptive(card)
}

func resultCard(p planets.Planet) teams.Attachment {
	return cards.Hero(cards.NewHeroCard(p.Name+searchExerciseSuffix, p.Summary, p.ImageLink))
}
