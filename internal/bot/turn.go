package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ent0n29/teamsguide/internal/teams"
)

// Sender delivers outbound activities to the channel the turn came from.
type Sender interface {
	SendActivities(ctx context.Context, activities []*teams.Activity) ([]teams.ResourceResponse, error)
}

// TurnContext carries one inbound activity and the means to reply to it.
type TurnContext struct {
	Activity *teams.Activity

	sender    Sender
	values    map[any]any
	responded bool
}

func NewTurnContext(activity *teams.Activity, sender Sender) *TurnContext {
	return &TurnContext{
		Activity: activity,
		sender:   sender,
		values:   make(map[any]any),
	}
}

// SendText replies with a plain message.
func (t *TurnContext) SendText(ctx context.Context, text string) error {
	_, err := t.SendActivities(ctx, teams.MessageText(text))
	return err
}

func (t *TurnContext) SendActivity(ctx context.Context, activity *teams.Activity) (teams.ResourceResponse, error) {
	out, err := t.SendActivities(ctx, activity)
	if err != nil {
		return teams.ResourceResponse{}, err
	}
	if len(out) == 0 {
		return teams.ResourceResponse{}, nil
	}
	return out[0], nil
}

// SendActivities addresses every activity to the inbound conversation and sends them in one batch.
func (t *TurnContext) SendActivities(ctx context.Context, activities ...*teams.Activity) ([]teams.ResourceResponse, error) {
	if len(activities) == 0 {
		return nil, nil
	}
	if t.sender == nil {
		return nil, fmt.Errorf("turn has no sender")
	}
	for _, a := range activities {
		t.address(a)
	}
	out, err := t.sender.SendActivities(ctx, activities)
	if err != nil {
		return nil, err
	}
	t.responded = true
	return out, nil
}

// Responded reports whether at least one activity was sent during the turn.
func (t *TurnContext) Responded() bool { return t.responded }

// Value returns turn-scoped data stored with SetValue.
func (t *TurnContext) Value(key any) any { return t.values[key] }

func (t *TurnContext) SetValue(key, value any) { t.values[key] = value }

func (t *TurnContext) address(out *teams.Activity) {
	in := t.Activity
	if out.Type == "" {
		out.Type = teams.TypeMessage
	}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if out.Timestamp == nil {
		now := time.Now().UTC()
		out.Timestamp = &now
	}
	out.ChannelID = in.ChannelID
	out.ServiceURL = in.ServiceURL
	out.Conversation = in.Conversation
	out.From = in.Recipient
	out.Recipient = in.From
	if out.ReplyToID == "" {
		out.ReplyToID = in.ID
	}
}
