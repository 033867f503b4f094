// Package planetbot is the Planet Selector messaging extension: an action command
// that picks a planet from a card, a search command, and link unfurling for
// planet wiki links.
package planetbot

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ent0n29/teamsguide/internal/bot"
	"github.com/ent0n29/teamsguide/internal/cards"
	"github.com/ent0n29/teamsguide/internal/logger"
	"github.com/ent0n29/teamsguide/internal/planets"
	"github.com/ent0n29/teamsguide/internal/teams"
)

const (
	Name = "planet"

	CommandPlanetExpander = "planetExpanderAction"
	ParamSearchKeyword    = "searchKeyword"

	KeywordInner = "inner"
	KeywordOuter = "outer"
)

type Bot struct {
	catalog *planets.Catalog
	log     *logger.Logger
}

func New(catalog *planets.Catalog, log *logger.Logger) *Bot {
	return &Bot{catalog: catalog, log: log.With("bot", Name)}
}

func (*Bot) Name() string { return Name }

// FetchTask returns the planet picker modal.
func (b *Bot) FetchTask() *teams.MessagingExtensionActionResponse {
	card := selectorCard(b.catalog.All())
	attachment := cards.Adaptive(card)
	return &teams.MessagingExtensionActionResponse{
		Task: teams.ContinueTask(teams.TaskModuleTaskInfo{
			Title:  "Planet Selector",
			Card:   &attachment,
			Height: 150,
			Width:  500,
		}),
	}
}

// SubmitAction answers the picker with the chosen planet's detail card.
func (b *Bot) SubmitAction(action teams.MessagingExtensionAction) (*teams.MessagingExtensionActionResponse, error) {
	switch action.CommandID {
	case CommandPlanetExpander:
		id := selectedPlanetID(action.Data)
		planet, ok := b.catalog.ByID(id)
		if !ok {
			// Kept as a card with empty fields; there is no dedicated not-found reply.
			b.log.Warn("planet not found for submit action", "planet_id", id)
		}
		return &teams.MessagingExtensionActionResponse{
			ComposeExtension: teams.ListResult([]teams.Attachment{detailCard(planet)}),
		}, nil
	default:
		return nil, fmt.Errorf("command %q: %w", action.CommandID, bot.ErrNotImplemented)
	}
}

// Query searches by the reserved keywords inner/outer or by exact planet name.
func (b *Bot) Query(term string) *teams.MessagingExtensionResponse {
	term = strings.ToLower(strings.TrimSpace(term))

	var results []planets.Planet
	switch term {
	case KeywordInner:
		results = b.catalog.Inner()
	case KeywordOuter:
		results = b.catalog.Outer()
	default:
		if p, ok := b.catalog.ByName(term); ok {
			results = append(results, p)
		}
	}

	attachments := make([]teams.Attachment, 0, len(results))
	for _, p := range results {
		attachments = append(attachments, resultCard(p))
	}
	return &teams.MessagingExtensionResponse{ComposeExtension: teams.ListResult(attachments)}
}

// LinkQuery unfurls a planet wiki link into its detail card.
func (b *Bot) LinkQuery(url string) *teams.MessagingExtensionResponse {
	planet, ok := b.catalog.ByWikiLink(url)
	if !ok {
		b.log.Warn("planet not found for link", "url", url)
	}
	return &teams.MessagingExtensionResponse{
		ComposeExtension: teams.ListResult([]teams.Attachment{detailCard(planet)}),
	}
}

func (b *Bot) OnMessagingExtensionFetchTask(_ context.Context, _ *bot.TurnContext, _ teams.MessagingExtensionAction) (*teams.MessagingExtensionActionResponse, error) {
	return b.FetchTask(), nil
}

func (b *Bot) OnMessagingExtensionSubmitAction(_ context.Context, _ *bot.TurnContext, action teams.MessagingExtensionAction) (*teams.MessagingExtensionActionResponse, error) {
	return b.SubmitAction(action)
}

func (b *Bot) OnMessagingExtensionQuery(_ context.Context, _ *bot.TurnContext, query teams.MessagingExtensionQuery) (*teams.MessagingExtensionResponse, error) {
	return b.Query(searchKeyword(query)), nil
}

func (b *Bot) OnAppBasedLinkQuery(_ context.Context, _ *bot.TurnContext, query teams.AppBasedLinkQuery) (*teams.MessagingExtensionResponse, error) {
	return b.LinkQuery(query.URL), nil
}

// searchKeyword reads the first parameter only when it is the search keyword.
func searchKeyword(q teams.MessagingExtensionQuery) string {
	if len(q.Parameters) == 0 || q.Parameters[0].Name != ParamSearchKeyword {
		return ""
	}
	return q.Parameters[0].Value
}

// selectedPlanetID accepts the choice value as a JSON string or number; 0 when absent.
func selectedPlanetID(data json.RawMessage) int {
	var payload struct {
		PlanetSelector json.RawMessage `json:"planetSelector"`
	}
	if len(data) == 0 || json.Unmarshal(data, &payload) != nil || len(payload.PlanetSelector) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(payload.PlanetSelector, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(payload.PlanetSelector, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n
		}
	}
	return 0
}
