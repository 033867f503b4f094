package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ent0n29/teamsguide/internal/teams"
)

// ConversationState scopes documents to one conversation of one bot.
type ConversationState struct {
	storage   Storage
	namespace string
}

func NewConversationState(storage Storage, namespace string) *ConversationState {
	return &ConversationState{storage: storage, namespace: namespace}
}

// Key returns {namespace}/{channelId}/conversations/{conversationId}.
func (c *ConversationState) Key(a *teams.Activity) (string, error) {
	if a.ChannelID == "" {
		return "", errors.New("conversation state: activity has no channelId")
	}
	if a.Conversation.ID == "" {
		return "", errors.New("conversation state: activity has no conversation id")
	}
	return c.namespace + "/" + a.ChannelID + "/conversations/" + a.Conversation.ID, nil
}

// Load reads the conversation document; a missing document yields an empty snapshot.
func (c *ConversationState) Load(ctx context.Context, a *teams.Activity) (*Snapshot, error) {
	key, err := c.Key(a)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{key: key, values: map[string]json.RawMessage{}}
	doc, err := c.storage.Read(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return snap, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(doc, &snap.values); err != nil {
		return nil, fmt.Errorf("decode conversation state %q: %w", key, err)
	}
	return snap, nil
}

// SaveChanges writes the snapshot back regardless of whether anything changed.
func (c *ConversationState) SaveChanges(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New("conversation state: nil snapshot")
	}
	doc, err := json.Marshal(snap.values)
	if err != nil {
		return fmt.Errorf("encode conversation state %q: %w", snap.key, err)
	}
	return c.storage.Write(ctx, snap.key, doc)
}

// Snapshot is the turn-scoped, decoded view of one conversation document.
type Snapshot struct {
	key    string
	values map[string]json.RawMessage
}

func (s *Snapshot) Key() string { return s.key }

// Property is a typed accessor for one named value inside a Snapshot.
type Property[T any] struct {
	name string
}

func NewProperty[T any](name string) Property[T] {
	return Property[T]{name: name}
}

func (p Property[T]) Name() string { return p.name }

// Get decodes the property. ok is false when it has never been set.
func (p Property[T]) Get(s *Snapshot) (value T, ok bool, err error) {
	raw, found := s.values[p.name]
	if !found {
		return value, false, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, false, fmt.Errorf("decode property %q: %w", p.name, err)
	}
	return value, true, nil
}

func (p Property[T]) Set(s *Snapshot, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode property %q: %w", p.name, err)
	}
	s.values[p.name] = raw
	return nil
}

func (p Property[T]) Delete(s *Snapshot) {
	delete(s.values, p.name)
}
