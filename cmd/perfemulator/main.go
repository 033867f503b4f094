// Command perfemulator replays synthetic turns against the local emulator
// websocket and reports time to first bot frame per turn.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ent0n29/teamsguide/internal/planetbot"
	"github.com/ent0n29/teamsguide/internal/protocol"
	"github.com/ent0n29/teamsguide/internal/session"
	"github.com/ent0n29/teamsguide/internal/teams"
)

type options struct {
	baseURL        string
	bot            string
	userID         string
	turns          int
	interTurnDelay time.Duration
	turnTimeout    time.Duration
	texts          []string
	verbose        bool
}

type wsEnvelope struct {
	Type   string `json:"type"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
	Status int    `json:"status,omitempty"`
}

var defaultTexts = map[string][]string{
	"conversational": {"hello there", "learn", "help", "mentionme"},
	"planet":         {"inner", "outer", "mars", "neptune"},
}

func main() {
	cfg, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "perfemulator: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "perfemulator: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var cfg options
	var textsRaw string
	var interTurnMS int
	var turnTimeoutMS int

	flag.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:3007", "teamsguide base URL")
	flag.StringVar(&cfg.bot, "bot", "conversational", "bot to drive: conversational|planet")
	flag.StringVar(&cfg.userID, "user-id", "perf-replay", "user_id used for the synthetic session")
	flag.IntVar(&cfg.turns, "turns", 20, "number of turns to replay")
	flag.IntVar(&interTurnMS, "inter-turn-ms", 50, "delay between turns in milliseconds")
	flag.IntVar(&turnTimeoutMS, "turn-timeout-ms", 5000, "timeout waiting for the first bot frame per turn in milliseconds")
	flag.StringVar(&textsRaw, "texts", "", "message texts (or search keywords for the planet bot) separated by '|'")
	flag.BoolVar(&cfg.verbose, "verbose", false, "print every turn")
	flag.Parse()

	return normalize(cfg, textsRaw, interTurnMS, turnTimeoutMS)
}

func normalize(cfg options, textsRaw string, interTurnMS, turnTimeoutMS int) (options, error) {
	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	if cfg.baseURL == "" {
		return options{}, fmt.Errorf("base-url is required")
	}
	defaults, ok := defaultTexts[cfg.bot]
	if !ok {
		return options{}, fmt.Errorf("unknown bot %q (expected conversational|planet)", cfg.bot)
	}
	if cfg.turns <= 0 {
		return options{}, fmt.Errorf("turns must be > 0")
	}
	if interTurnMS < 0 {
		interTurnMS = 0
	}
	if turnTimeoutMS < 100 {
		turnTimeoutMS = 100
	}
	cfg.interTurnDelay = time.Duration(interTurnMS) * time.Millisecond
	cfg.turnTimeout = time.Duration(turnTimeoutMS) * time.Millisecond

	if strings.TrimSpace(textsRaw) == "" {
		cfg.texts = append([]string(nil), defaults...)
		return cfg, nil
	}
	for _, part := range strings.Split(textsRaw, "|") {
		if t := strings.TrimSpace(part); t != "" {
			cfg.texts = append(cfg.texts, t)
		}
	}
	if len(cfg.texts) == 0 {
		return options{}, fmt.Errorf("texts produced no non-empty entries")
	}
	return cfg, nil
}

func run(cfg options) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	httpClient := &http.Client{Timeout: 15 * time.Second}
	sessionID, err := createSession(ctx, httpClient, cfg)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer func() {
		_ = endSession(context.Background(), httpClient, cfg.baseURL, sessionID)
	}()

	wsURL, err := wsURLForSession(cfg.baseURL, sessionID)
	if err != nil {
		return fmt.Errorf("build ws URL: %w", err)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("open websocket: %w", err)
	}
	defer conn.Close()

	frames := make(chan wsEnvelope, 64)
	readErrCh := make(chan error, 1)
	go readLoop(conn, frames, readErrCh, cfg.verbose)

	latencies := make([]float64, 0, cfg.turns)
	for i := 0; i < cfg.turns; i++ {
		text := cfg.texts[i%len(cfg.texts)]
		frame := protocol.ClientActivity{
			Type:      protocol.TypeClientActivity,
			SessionID: sessionID,
			Activity:  turnActivity(cfg.bot, text),
		}
		drain(frames)

		start := time.Now()
		if err := conn.WriteJSON(frame); err != nil {
			return fmt.Errorf("turn %d send: %w", i+1, err)
		}
		env, err := awaitFirstFrame(frames, readErrCh, cfg.turnTimeout)
		if err != nil {
			return fmt.Errorf("turn %d: %w", i+1, err)
		}
		if env.Type == string(protocol.TypeErrorEvent) {
			return fmt.Errorf("turn %d: %s: %s", i+1, env.Code, env.Detail)
		}
		ms := float64(time.Since(start).Microseconds()) / 1000
		latencies = append(latencies, ms)
		if cfg.verbose {
			fmt.Printf("perfemulator: turn %d/%d text=%q first=%s %.2fms\n", i+1, cfg.turns, text, env.Type, ms)
		}

		if cfg.interTurnDelay > 0 && i < cfg.turns-1 {
			time.Sleep(cfg.interTurnDelay)
		}
	}

	s := summarize(latencies)
	fmt.Printf("perfemulator: bot=%s turns=%d p50=%.2fms p95=%.2fms max=%.2fms\n", cfg.bot, s.count, s.p50, s.p95, s.max)
	return nil
}

// turnActivity builds a message turn for the conversational bot, or a search
// invoke for the planet bot.
func turnActivity(botName, text string) *teams.Activity {
	if botName != planetbot.Name {
		return &teams.Activity{Type: teams.TypeMessage, Text: text}
	}
	value, _ := json.Marshal(teams.MessagingExtensionQuery{
		CommandID:  "searchQuery",
		Parameters: []teams.MessagingExtensionParameter{{Name: planetbot.ParamSearchKeyword, Value: text}},
	})
	return &teams.Activity{Type: teams.TypeInvoke, Name: teams.InvokeQuery, Value: value}
}

func createSession(ctx context.Context, client *http.Client, cfg options) (string, error) {
	payload, err := json.Marshal(session.CreateRequest{Bot: cfg.bot, UserID: cfg.userID})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.baseURL+"/v1/emulator/session", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("HTTP %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out session.CreateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.SessionID) == "" {
		return "", fmt.Errorf("missing session_id in response")
	}
	return out.SessionID, nil
}

func endSession(ctx context.Context, client *http.Client, baseURL, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/emulator/session/"+url.PathEscape(sessionID)+"/end", nil)
	if err != nil {
		return err
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<20))
	return nil
}

func wsURLForSession(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", err
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported base-url scheme %q", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", fmt.Errorf("base-url host is required")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/v1/emulator/ws"
	q := u.Query()
	q.Set("session_id", sessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// readLoop forwards every frame that answers a turn. System events are not answers.
func readLoop(conn *websocket.Conn, frames chan<- wsEnvelope, readErrCh chan<- error, verbose bool) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case readErrCh <- err:
			default:
			}
			return
		}
		var env wsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		if env.Type == string(protocol.TypeSystemEvent) {
			if verbose {
				fmt.Printf("perfemulator: system_event code=%s\n", env.Code)
			}
			continue
		}
		select {
		case frames <- env:
		default:
		}
	}
}

// drain drops leftover frames from the previous turn, such as the second
// activity of a channel mention.
func drain(frames <-chan wsEnvelope) {
	for {
		select {
		case <-frames:
		default:
			return
		}
	}
}

func awaitFirstFrame(frames <-chan wsEnvelope, readErrCh <-chan error, timeout time.Duration) (wsEnvelope, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case env := <-frames:
		return env, nil
	case err := <-readErrCh:
		return wsEnvelope{}, fmt.Errorf("ws read: %w", err)
	case <-timer.C:
		return wsEnvelope{}, fmt.Errorf("timed out after %s", timeout)
	}
}

type summary struct {
	count int
	p50   float64
	p95   float64
	max   float64
}

func summarize(values []float64) summary {
	if len(values) == 0 {
		return summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return summary{
		count: len(sorted),
		p50:   percentile(sorted, 0.50),
		p95:   percentile(sorted, 0.95),
		max:   sorted[len(sorted)-1],
	}
}

// percentile uses nearest rank on an already sorted slice.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
