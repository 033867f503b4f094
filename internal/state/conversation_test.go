package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ent0n29/teamsguide/internal/teams"
)

type counterDoc struct {
	Count int `json:"count"`
}

func convActivity(convID string) *teams.Activity {
	return &teams.Activity{
		ChannelID:    "msteams",
		Conversation: teams.ConversationAccount{ID: convID},
	}
}

func TestConversationStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	cs := NewConversationState(NewMemoryStorage(), "conversational")
	prop := NewProperty[counterDoc]("counter")

	snap, err := cs.Load(ctx, convActivity("c1"))
	require.NoError(t, err)
	_, ok, err := prop.Get(snap)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, prop.Set(snap, counterDoc{Count: 2}))
	require.NoError(t, cs.SaveChanges(ctx, snap))

	again, err := cs.Load(ctx, convActivity("c1"))
	require.NoError(t, err)
	got, ok, err := prop.Get(again)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.Count)

	other, err := cs.Load(ctx, convActivity("c2"))
	require.NoError(t, err)
	_, ok, err = prop.Get(other)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConversationStateKeyIsNamespaced(t *testing.T) {
	cs := NewConversationState(NewMemoryStorage(), "planet")
	key, err := cs.Key(convActivity("19:abc"))
	require.NoError(t, err)
	assert.Equal(t, "planet/msteams/conversations/19:abc", key)

	_, err = cs.Key(&teams.Activity{ChannelID: "msteams"})
	require.Error(t, err)
}

type failingStorage struct{ *MemoryStorage }

func (f *failingStorage) Write(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestSaveChangesPropagatesStorageErrors(t *testing.T) {
	ctx := context.Background()
	cs := NewConversationState(&failingStorage{MemoryStorage: NewMemoryStorage()}, "conversational")
	snap, err := cs.Load(ctx, convActivity("c1"))
	require.NoError(t, err)
	require.EqualError(t, cs.SaveChanges(ctx, snap), "disk full")
}

type recordingObserver struct{ ops []string }

func (r *recordingObserver) ObserveStateOp(backend, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.ops = append(r.ops, backend+":"+op+":"+outcome)
}

func TestObserveReportsOperations(t *testing.T) {
	ctx := context.Background()
	obs := &recordingObserver{}
	s := Observe(NewMemoryStorage(), obs)

	_, _ = s.Read(ctx, "missing")
	require.NoError(t, s.Write(ctx, "k", []byte(`{}`)))
	require.NoError(t, s.Delete(ctx, "k"))

	assert.Equal(t, []string{"memory:read:ok", "memory:write:ok", "memory:delete:ok"}, obs.ops)
}
