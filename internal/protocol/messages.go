// Package protocol defines the JSON frames exchanged over the emulator websocket.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ent0n29/teamsguide/internal/teams"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientActivity MessageType = "activity"
	TypeClientControl  MessageType = "client_control"
	TypeBotActivity    MessageType = "bot_activity"
	TypeInvokeResponse MessageType = "invoke_response"
	TypeSystemEvent    MessageType = "system_event"
	TypeErrorEvent     MessageType = "error_event"
)

// Client control actions.
const (
	ActionPing = "ping"
	ActionEnd  = "end"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// ClientActivity carries one activity typed or clicked in the emulator.
type ClientActivity struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"session_id"`
	Activity  *teams.Activity `json:"activity"`
}

type ClientControl struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Action    string      `json:"action"`
}

// BotActivity is one activity the bot sent during a turn.
type BotActivity struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"session_id"`
	Activity  *teams.Activity `json:"activity"`
}

// InvokeResponse is the synchronous answer to an invoke activity.
type InvokeResponse struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	ReplyToID string      `json:"reply_to_id,omitempty"`
	Status    int         `json:"status"`
	Body      any         `json:"body,omitempty"`
}

type SystemEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientActivity:
		var msg ClientActivity
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || msg.Activity == nil || msg.Activity.Type == "" {
			return nil, errors.New("invalid activity frame")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || (msg.Action != ActionPing && msg.Action != ActionEnd) {
			return nil, errors.New("invalid client_control")
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}

// TypeOf returns the frame type of any message defined here.
func TypeOf(v any) (MessageType, bool) {
	switch m := v.(type) {
	case ClientActivity:
		return m.Type, true
	case ClientControl:
		return m.Type, true
	case BotActivity:
		return m.Type, true
	case InvokeResponse:
		return m.Type, true
	case SystemEvent:
		return m.Type, true
	case ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
