package dialog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ent0n29/teamsguide/internal/bot"
	"github.com/ent0n29/teamsguide/internal/state"
	"github.com/ent0n29/teamsguide/internal/teams"
)

type waitingDialog struct{}

func (waitingDialog) ID() string { return "waiting" }

func (waitingDialog) Begin(context.Context, *Context, any) (Result, error) {
	return Result{Status: StatusWaiting}, nil
}

type oneShotDialog struct{}

func (oneShotDialog) ID() string { return "oneshot" }

func (oneShotDialog) Begin(ctx context.Context, dc *Context, options any) (Result, error) {
	if err := dc.Turn.SendText(ctx, "done"); err != nil {
		return Result{}, err
	}
	return dc.EndDialog(ctx, options)
}

func newTurn(t *testing.T, cs *state.ConversationState) (*bot.TurnContext, *state.Snapshot, *bot.Recorder) {
	t.Helper()
	a := &teams.Activity{
		Type:         teams.TypeMessage,
		ChannelID:    "msteams",
		Conversation: teams.ConversationAccount{ID: "c1"},
	}
	snap, err := cs.Load(context.Background(), a)
	require.NoError(t, err)
	rec := &bot.Recorder{}
	return bot.NewTurnContext(a, rec), snap, rec
}

func TestBeginDialogPersistsWaitingStack(t *testing.T) {
	ctx := context.Background()
	cs := state.NewConversationState(state.NewMemoryStorage(), "test")
	prop := state.NewProperty[State](PropertyName)
	set := NewSet(prop).Add(waitingDialog{})

	tc, snap, _ := newTurn(t, cs)
	dc, err := set.CreateContext(tc, snap)
	require.NoError(t, err)
	res, err := dc.BeginDialog(ctx, "waiting", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, res.Status)
	require.NoError(t, cs.SaveChanges(ctx, snap))

	tc2, snap2, _ := newTurn(t, cs)
	dc2, err := set.CreateContext(tc2, snap2)
	require.NoError(t, err)
	require.NotNil(t, dc2.ActiveDialog())
	assert.Equal(t, "waiting", dc2.ActiveDialog().ID)
}

func TestOneShotDialogLeavesEmptyStack(t *testing.T) {
	ctx := context.Background()
	cs := state.NewConversationState(state.NewMemoryStorage(), "test")
	prop := state.NewProperty[State](PropertyName)
	set := NewSet(prop).Add(oneShotDialog{})

	tc, snap, rec := newTurn(t, cs)
	dc, err := set.CreateContext(tc, snap)
	require.NoError(t, err)
	res, err := dc.BeginDialog(ctx, "oneshot", "value")
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, res.Status)
	assert.Equal(t, "value", res.Value)
	assert.Equal(t, 0, dc.StackDepth())
	require.Len(t, rec.Activities(), 1)

	st, ok, err := prop.Get(snap)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, st.DialogStack)
}

func TestBeginUnknownDialog(t *testing.T) {
	cs := state.NewConversationState(state.NewMemoryStorage(), "test")
	set := NewSet(state.NewProperty[State](PropertyName))
	tc, snap, _ := newTurn(t, cs)
	dc, err := set.CreateContext(tc, snap)
	require.NoError(t, err)

	_, err = dc.BeginDialog(context.Background(), "missing", nil)
	require.ErrorIs(t, err, ErrUnknownDialog)
}
