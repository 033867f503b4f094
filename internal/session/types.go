package session

import "time"

// CreateRequest is the payload of POST /v1/emulator/session.
type CreateRequest struct {
	Bot              string `json:"bot"`
	UserID           string `json:"user_id"`
	UserName         string `json:"user_name"`
	ConversationType string `json:"conversation_type"`
}

// CreateResponse returns the created session with its timeout.
type CreateResponse struct {
	SessionID        string    `json:"session_id"`
	Bot              string    `json:"bot"`
	UserID           string    `json:"user_id"`
	ConversationID   string    `json:"conversation_id"`
	ConversationType string    `json:"conversation_type"`
	Status           Status    `json:"status"`
	StartedAt        time.Time `json:"started_at"`
	LastActivityAt   time.Time `json:"last_activity_at"`
	InactivityTTLMS  int64     `json:"inactivity_ttl_ms"`
}
