package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreateGetEnd(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create(CreateRequest{Bot: "planet", UserID: "u1", UserName: "Ada", ConversationType: "personal"})
	require.NotEmpty(t, s.ID)
	require.NotEmpty(t, s.ConversationID)
	assert.NotEqual(t, s.ID, s.ConversationID)

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "planet", got.Bot)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, 1, m.ActiveCount())

	ended, err := m.End(s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, ended.Status)
	assert.Equal(t, 0, m.ActiveCount())

	_, err = m.End("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerRecordTurn(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create(CreateRequest{Bot: "conversational"})

	require.NoError(t, m.RecordTurn(s.ID))
	require.NoError(t, m.RecordTurn(s.ID))
	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TurnCount)
	assert.False(t, got.LastActivityAt.Before(s.LastActivityAt))

	_, err = m.End(s.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, m.RecordTurn(s.ID), ErrNotFound)
}

func TestManagerGetReturnsCopy(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create(CreateRequest{UserID: "u1"})
	s.UserID = "mutated"

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
}

func TestManagerJanitorExpiresInactive(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	s := m.Create(CreateRequest{UserID: "u1"})

	var (
		mu      sync.Mutex
		expired []string
	)
	m.SetExpireHook(func(s *Session) {
		mu.Lock()
		defer mu.Unlock()
		expired = append(expired, s.ID)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(expired) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, s.ID, expired[0])
	assert.Equal(t, 0, m.ActiveCount())

	require.Eventually(t, func() bool {
		_, err := m.Get(s.ID)
		return err != nil
	}, time.Second, 5*time.Millisecond)
}
