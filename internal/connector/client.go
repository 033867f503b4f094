// Package connector posts outbound activities to the Bot Framework connector
// service of the channel a turn came from.
package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ent0n29/teamsguide/internal/config"
	"github.com/ent0n29/teamsguide/internal/logger"
	"github.com/ent0n29/teamsguide/internal/reliability"
	"github.com/ent0n29/teamsguide/internal/teams"
)

// Scope requested for outbound connector tokens.
const Scope = "https://api.botframework.com/.default"

// Error is a non-2xx answer from the connector service.
type Error struct {
	StatusCode int
	Retryable  bool
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("connector responded %d: %s", e.StatusCode, e.Body)
}

func (e *Error) HTTPStatus() int { return e.StatusCode }

// Observer receives one outcome label per posted activity.
type Observer interface {
	ObserveOutbound(bot, outcome string)
}

type Client struct {
	bot      string
	http     *http.Client
	observer Observer
	log      *logger.Logger
}

// NewClient builds a connector client for one bot identity. Without an app id
// requests are sent unauthenticated, which is what the local emulator expects.
func NewClient(bot string, creds config.BotCredentials, tokenURL string, base *http.Client, observer Observer, log *logger.Logger) *Client {
	if base == nil {
		base = &http.Client{Timeout: 15 * time.Second}
	}
	httpClient := base
	if strings.TrimSpace(creds.AppID) != "" {
		cc := clientcredentials.Config{
			ClientID:     creds.AppID,
			ClientSecret: creds.AppPassword,
			TokenURL:     tokenURL,
			Scopes:       []string{Scope},
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = cc.Client(tokenCtx)
		httpClient.Timeout = base.Timeout
	}
	return &Client{
		bot:      bot,
		http:     httpClient,
		observer: observer,
		log:      log.With("component", "connector", "bot", bot),
	}
}

// SendActivities posts each activity in order and stops at the first failure.
func (c *Client) SendActivities(ctx context.Context, activities []*teams.Activity) ([]teams.ResourceResponse, error) {
	out := make([]teams.ResourceResponse, 0, len(activities))
	for _, a := range activities {
		res, err := c.send(ctx, a)
		outcome := reliability.Classify(err)
		if c.observer != nil {
			c.observer.ObserveOutbound(c.bot, outcome)
		}
		if err != nil {
			c.log.Warn("outbound activity failed", "conversation_id", a.Conversation.ID, "outcome", outcome, "error", err)
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// ActivityURL is {serviceUrl}/v3/conversations/{id}/activities[/{replyToId}].
func ActivityURL(a *teams.Activity) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(a.ServiceURL), "/")
	if base == "" {
		return "", errors.New("activity has no serviceUrl")
	}
	if a.Conversation.ID == "" {
		return "", errors.New("activity has no conversation id")
	}
	u := base + "/v3/conversations/" + url.PathEscape(a.Conversation.ID) + "/activities"
	if a.ReplyToID != "" {
		u += "/" + url.PathEscape(a.ReplyToID)
	}
	return u, nil
}

func (c *Client) send(ctx context.Context, a *teams.Activity) (teams.ResourceResponse, error) {
	endpoint, err := ActivityURL(a)
	if err != nil {
		return teams.ResourceResponse{}, err
	}
	body, err := json.Marshal(a)
	if err != nil {
		return teams.ResourceResponse{}, fmt.Errorf("encode activity: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return teams.ResourceResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return teams.ResourceResponse{}, fmt.Errorf("post activity: %w", err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return teams.ResourceResponse{}, &Error{
			StatusCode: res.StatusCode,
			Retryable:  reliability.IsRetryableHTTPStatus(res.StatusCode),
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	var rr teams.ResourceResponse
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &rr); err != nil {
			return teams.ResourceResponse{}, fmt.Errorf("decode resource response: %w", err)
		}
	}
	return rr, nil
}
