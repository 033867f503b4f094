package planetbot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ent0n29/teamsguide/internal/bot"
	"github.com/ent0n29/teamsguide/internal/cards"
	"github.com/ent0n29/teamsguide/internal/logger"
	"github.com/ent0n29/teamsguide/internal/planets"
	"github.com/ent0n29/teamsguide/internal/teams"
)

func newBot(t *testing.T) *Bot {
	t.Helper()
	catalog, err := planets.Default()
	require.NoError(t, err)
	return New(catalog, logger.Nop())
}

// header digs the header text out of a detail card attachment.
func header(t *testing.T, a teams.Attachment) string {
	t.Helper()
	card, ok := a.Content.(*cards.AdaptiveCard)
	require.True(t, ok, "content is %T", a.Content)
	container, ok := card.Body[0].(*cards.Container)
	require.True(t, ok)
	require.Equal(t, "cardHeader", container.ID)
	return container.Items[0].(*cards.TextBlock).Text
}

func facts(t *testing.T, a teams.Attachment) map[string]string {
	t.Helper()
	card := a.Content.(*cards.AdaptiveCard)
	body := card.Body[1].(*cards.Container)
	details := body.Items[1].(*cards.ColumnSet)
	set := details.Columns[1].Items[0].(*cards.FactSet)
	out := map[string]string{}
	for _, f := range set.Facts {
		out[f.ID] = f.Value
	}
	return out
}

func submit(id any) teams.MessagingExtensionAction {
	data, _ := json.Marshal(map[string]any{"planetSelector": id})
	return teams.MessagingExtensionAction{CommandID: CommandPlanetExpander, Data: data}
}

func TestFetchTaskListsPlanetsInOrder(t *testing.T) {
	resp := newBot(t).FetchTask()

	require.NotNil(t, resp.Task)
	assert.Equal(t, "continue", resp.Task.Type)
	info := resp.Task.Value
	assert.Equal(t, "Planet Selector", info.Title)
	assert.Equal(t, 150, info.Height)
	assert.Equal(t, 500, info.Width)

	card := info.Card.Content.(*cards.AdaptiveCard)
	choiceSet := card.Body[1].(*cards.ChoiceSet)
	assert.Equal(t, "planetSelector", choiceSet.ID)
	require.Len(t, choiceSet.Choices, 8)
	for i, c := range choiceSet.Choices {
		assert.Equal(t, fmt.Sprint(i+1), c.Value)
	}
	assert.Equal(t, "Mercury", choiceSet.Choices[0].Title)
	assert.Equal(t, "Neptune", choiceSet.Choices[7].Title)
}

func TestSubmitActionHeaderContainsPlanetName(t *testing.T) {
	b := newBot(t)
	catalog, _ := planets.Default()
	for _, p := range catalog.All() {
		for _, raw := range []any{p.ID, fmt.Sprint(p.ID)} {
			resp, err := b.SubmitAction(submit(raw))
			require.NoError(t, err)
			require.NotNil(t, resp.ComposeExtension)
			assert.Equal(t, "result", resp.ComposeExtension.Type)
			assert.Equal(t, "list", resp.ComposeExtension.AttachmentLayout)
			require.Len(t, resp.ComposeExtension.Attachments, 1)
			assert.Contains(t, header(t, resp.ComposeExtension.Attachments[0]), p.Name)
		}
	}
}

func TestSubmitActionFormatsFacts(t *testing.T) {
	resp, err := newBot(t).SubmitAction(submit("1"))
	require.NoError(t, err)
	got := facts(t, resp.ComposeExtension.Attachments[0])
	assert.Equal(t, "1", got["orderFromSun"])
	assert.Equal(t, "0", got["planetNumSatellites"])
	assert.Equal(t, "0.24", got["solarOrbitYears"])
	assert.Equal(t, "57,909,050", got["solarOrbitAvgDistanceKm"])
}

func TestSubmitActionUnknownPlanetYieldsEmptyCard(t *testing.T) {
	resp, err := newBot(t).SubmitAction(submit(42))
	require.NoError(t, err)
	require.Len(t, resp.ComposeExtension.Attachments, 1)
	assert.Equal(t, ":::Exercise - Create action command messaging extensions", header(t, resp.ComposeExtension.Attachments[0]))
	assert.Equal(t, "0", facts(t, resp.ComposeExtension.Attachments[0])["orderFromSun"])
}

func TestSubmitActionUnknownCommand(t *testing.T) {
	_, err := newBot(t).SubmitAction(teams.MessagingExtensionAction{CommandID: "somethingElse"})
	require.ErrorIs(t, err, bot.ErrNotImplemented)
}

func TestDetailCardsDoNotShareState(t *testing.T) {
	b := newBot(t)
	first, err := b.SubmitAction(submit(3))
	require.NoError(t, err)
	second, err := b.SubmitAction(submit(4))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(header(t, first.ComposeExtension.Attachments[0]), "Earth"))
	assert.True(t, strings.HasPrefix(header(t, second.ComposeExtension.Attachments[0]), "Mars"))

	// Action titles are appended to, never accumulated across requests.
	card := second.ComposeExtension.Attachments[0].Content.(*cards.AdaptiveCard)
	action := card.Actions[0].(*cards.OpenURLAction)
	assert.Equal(t, "Learn more on Wikipedia:::Exercise - Create action command messaging extensions", action.Title)
}

func heroTitles(resp *teams.MessagingExtensionResponse) []string {
	var out []string
	for _, a := range resp.ComposeExtension.Attachments {
		out = append(out, a.Content.(*cards.HeroCard).Title)
	}
	return out
}

func TestQueryInnerOuter(t *testing.T) {
	b := newBot(t)

	inner := heroTitles(b.Query("inner"))
	outer := heroTitles(b.Query(" OUTER "))
	require.Len(t, inner, 4)
	require.Len(t, outer, 4)
	assert.True(t, strings.HasPrefix(inner[0], "Mercury:::"))
	assert.True(t, strings.HasPrefix(outer[0], "Jupiter:::"))
	for _, title := range inner {
		assert.NotContains(t, outer, title)
	}
}

func TestQueryByNameIsCaseInsensitive(t *testing.T) {
	b := newBot(t)
	for _, term := range []string{"Mars", "mars", "MARS"} {
		titles := heroTitles(b.Query(term))
		require.Len(t, titles, 1, term)
		assert.Equal(t, "Mars:::Exercise - Create search command messaging extensions", titles[0])
	}
	assert.Empty(t, heroTitles(b.Query("pluto")))
	assert.Empty(t, heroTitles(b.Query("")))
}

func TestOnQueryIgnoresOtherParameters(t *testing.T) {
	b := newBot(t)
	resp, err := b.OnMessagingExtensionQuery(context.Background(), nil, teams.MessagingExtensionQuery{
		Parameters: []teams.MessagingExtensionParameter{{Name: "initialRun", Value: "true"}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.ComposeExtension.Attachments)
}

func TestLinkQuery(t *testing.T) {
	b := newBot(t)
	resp := b.LinkQuery("https://en.wikipedia.org/wiki/Saturn")
	require.Len(t, resp.ComposeExtension.Attachments, 1)
	assert.True(t, strings.HasPrefix(header(t, resp.ComposeExtension.Attachments[0]), "Saturn"))

	miss := b.LinkQuery("https://example.com/nowhere")
	require.Len(t, miss.ComposeExtension.Attachments, 1)
	assert.True(t, strings.HasPrefix(header(t, miss.ComposeExtension.Attachments[0]), ":::"))
}

func TestRoutedThroughProcess(t *testing.T) {
	a := &teams.Activity{
		Type:  teams.TypeInvoke,
		Name:  teams.InvokeQuery,
		Value: json.RawMessage(`{"commandId":"searchQuery","parameters":[{"name":"searchKeyword","value":"inner"}]}`),
	}
	resp, err := bot.Process(context.Background(), newBot(t), bot.NewTurnContext(a, &bot.Recorder{}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	raw, err := json.Marshal(resp.Body)
	require.NoError(t, err)
	var decoded struct {
		ComposeExtension struct {
			Attachments []struct {
				ContentType string `json:"contentType"`
			} `json:"attachments"`
		} `json:"composeExtension"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.ComposeExtension.Attachments, 4)
	assert.Equal(t, cards.ContentTypeHero, decoded.ComposeExtension.Attachments[0].ContentType)
}
