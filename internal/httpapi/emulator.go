package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ent0n29/teamsguide/internal/protocol"
	"github.com/ent0n29/teamsguide/internal/session"
	"github.com/ent0n29/teamsguide/internal/teams"
)

const (
	EmulatorChannelID  = "emulator"
	EmulatorServiceURL = "emulator://"

	defaultEmulatorUserID   = "emulator-user"
	defaultEmulatorUserName = "Emulator User"
)

// closeFrame asks the websocket writer to close the connection after
// flushing everything queued before it.
type closeFrame struct{}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req session.CreateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req.Bot = strings.TrimSpace(req.Bot)
	if _, ok := s.byBot[req.Bot]; !ok {
		respondError(w, http.StatusBadRequest, "unknown_bot", "bot must be one of: "+strings.Join(s.botNames(), ", "))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = defaultEmulatorUserID
	}
	if strings.TrimSpace(req.UserName) == "" {
		req.UserName = defaultEmulatorUserName
	}
	switch req.ConversationType {
	case "":
		req.ConversationType = teams.ConversationTypePersonal
	case teams.ConversationTypePersonal, teams.ConversationTypeGroupChat, teams.ConversationTypeChannel:
	default:
		respondError(w, http.StatusBadRequest, "invalid_request", "unknown conversation_type "+req.ConversationType)
		return
	}

	sess := s.sessions.Create(req)
	s.metrics.EmulatorSessions.Set(float64(s.sessions.ActiveCount()))
	s.log.Info("emulator session created", "session_id", sess.ID, "bot", sess.Bot, "conversation_id", sess.ConversationID)

	respondJSON(w, http.StatusCreated, session.CreateResponse{
		SessionID:        sess.ID,
		Bot:              sess.Bot,
		UserID:           sess.UserID,
		ConversationID:   sess.ConversationID,
		ConversationType: sess.ConversationType,
		Status:           sess.Status,
		StartedAt:        sess.StartedAt,
		LastActivityAt:   sess.LastActivityAt,
		InactivityTTLMS:  s.sessions.InactivityTimeout().Milliseconds(),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}

	sess, err := s.sessions.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.metrics.EmulatorSessions.Set(float64(s.sessions.ActiveCount()))
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session_id", "query parameter session_id is required")
		return
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	if sess.Status != session.StatusActive {
		respondError(w, http.StatusGone, "session_ended", "session has ended")
		return
	}
	if _, ok := s.byBot[sess.Bot]; !ok {
		respondError(w, http.StatusNotFound, "unknown_bot", "no endpoint for bot "+sess.Bot)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inbound := make(chan any, 64)
	outbound := make(chan any, 256)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		s.runEmulator(ctx, sess, inbound, outbound)
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-outbound:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if _, ok := msg.(closeFrame); ok {
					_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
					_ = conn.Close()
					cancel()
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					cancel()
					return
				}
				if t, ok := protocol.TypeOf(msg); ok {
					s.metrics.WSMessages.WithLabelValues("outbound", string(t)).Inc()
				}
			}
		}
	}()

	conn.SetReadLimit(2 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

	s.emit(ctx, outbound, protocol.SystemEvent{
		Type:      protocol.TypeSystemEvent,
		SessionID: sess.ID,
		Code:      "session_ready",
		Detail:    sess.Bot,
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))

		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.metrics.WSMessages.WithLabelValues("inbound", "invalid").Inc()
			s.emit(ctx, outbound, protocol.ErrorEvent{
				Type:      protocol.TypeErrorEvent,
				SessionID: sess.ID,
				Code:      "invalid_client_message",
				Retryable: false,
				Detail:    err.Error(),
			})
			continue
		}
		if t, ok := protocol.TypeOf(parsed); ok {
			s.metrics.WSMessages.WithLabelValues("inbound", string(t)).Inc()
		}
		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- parsed:
		}
	}

	cancel()
	close(inbound)
	<-runDone
	<-writerDone
}

// runEmulator plays each inbound frame against the session's bot, one turn at a time.
func (s *Server) runEmulator(ctx context.Context, sess *session.Session, inbound <-chan any, outbound chan<- any) {
	ep := s.byBot[sess.Bot]
	sender := &wsSender{sessionID: sess.ID, out: outbound}

	for msg := range inbound {
		switch m := msg.(type) {
		case protocol.ClientControl:
			if m.Action == protocol.ActionPing {
				s.emit(ctx, outbound, protocol.SystemEvent{Type: protocol.TypeSystemEvent, SessionID: sess.ID, Code: "pong"})
				continue
			}
			if _, err := s.sessions.End(sess.ID); err == nil {
				s.metrics.EmulatorSessions.Set(float64(s.sessions.ActiveCount()))
			}
			s.emit(ctx, outbound, protocol.SystemEvent{Type: protocol.TypeSystemEvent, SessionID: sess.ID, Code: "session_ended"})
			s.emit(ctx, outbound, closeFrame{})
			return

		case protocol.ClientActivity:
			if m.SessionID != sess.ID {
				s.emit(ctx, outbound, protocol.ErrorEvent{
					Type:      protocol.TypeErrorEvent,
					SessionID: sess.ID,
					Code:      "session_mismatch",
					Detail:    "frame session_id does not match the connection",
				})
				continue
			}
			if err := s.sessions.RecordTurn(sess.ID); err != nil {
				s.emit(ctx, outbound, protocol.ErrorEvent{
					Type:      protocol.TypeErrorEvent,
					SessionID: sess.ID,
					Code:      "session_not_active",
					Detail:    err.Error(),
				})
				s.emit(ctx, outbound, closeFrame{})
				return
			}

			activity := m.Activity
			addressFromSession(activity, sess)
			resp, err := s.runTurn(ctx, ep.Bot, activity, sender)
			if err != nil {
				s.emit(ctx, outbound, protocol.ErrorEvent{
					Type:      protocol.TypeErrorEvent,
					SessionID: sess.ID,
					Code:      "turn_failed",
					Detail:    err.Error(),
				})
				continue
			}
			if resp != nil {
				s.emit(ctx, outbound, protocol.InvokeResponse{
					Type:      protocol.TypeInvokeResponse,
					SessionID: sess.ID,
					ReplyToID: activity.ID,
					Status:    resp.Status,
					Body:      resp.Body,
				})
			}
		}
	}
}

// addressFromSession replaces the routing fields of an emulator activity with
// the session's conversation, user and bot.
func addressFromSession(a *teams.Activity, sess *session.Session) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Timestamp == nil {
		now := time.Now().UTC()
		a.Timestamp = &now
	}
	a.ChannelID = EmulatorChannelID
	a.ServiceURL = EmulatorServiceURL
	a.Conversation = teams.ConversationAccount{ID: sess.ConversationID, ConversationType: sess.ConversationType}
	a.From = teams.ChannelAccount{ID: sess.UserID, Name: sess.UserName}
	a.Recipient = teams.ChannelAccount{ID: sess.Bot, Name: sess.Bot}
}

// emit queues one frame for the writer. Frames are dropped once the connection is gone.
func (s *Server) emit(ctx context.Context, outbound chan<- any, msg any) {
	select {
	case <-ctx.Done():
	case outbound <- msg:
	}
}

func (s *Server) botNames() []string {
	names := make([]string, 0, len(s.endpoints))
	for _, ep := range s.endpoints {
		names = append(names, ep.Bot.Name())
	}
	return names
}

// wsSender delivers a turn's outbound activities as bot_activity frames.
type wsSender struct {
	sessionID string
	out       chan<- any
}

func (w *wsSender) SendActivities(ctx context.Context, activities []*teams.Activity) ([]teams.ResourceResponse, error) {
	out := make([]teams.ResourceResponse, 0, len(activities))
	for _, a := range activities {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case w.out <- protocol.BotActivity{Type: protocol.TypeBotActivity, SessionID: w.sessionID, Activity: a}:
		}
		out = append(out, teams.ResourceResponse{ID: a.ID})
	}
	return out, nil
}
