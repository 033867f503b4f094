package state

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageContract(t *testing.T) {
	runStorageContract(t, NewMemoryStorage())
}

func TestRedisStorageContract(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	s, err := NewRedisStorage(context.Background(), addr, time.Minute)
	require.NoError(t, err)
	defer s.Close()
	runStorageContract(t, s)
}

func TestPostgresStorageContract(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := NewPostgresStorage(context.Background(), url)
	require.NoError(t, err)
	defer s.Close()
	runStorageContract(t, s)
}

func runStorageContract(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()
	key := "contract/" + uuid.NewString()

	_, err := s.Read(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Write(ctx, key, []byte(`{"dialogState":{"dialogStack":[]}}`)))
	got, err := s.Read(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dialogState":{"dialogStack":[]}}`, string(got))

	require.NoError(t, s.Write(ctx, key, []byte(`{"dialogState":{"dialogStack":[{"id":"help"}]}}`)))
	got, err = s.Read(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dialogState":{"dialogStack":[{"id":"help"}]}}`, string(got))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Read(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorageCopiesDocuments(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()
	doc := []byte(`{"a":1}`)
	require.NoError(t, s.Write(ctx, "k", doc))
	doc[2] = 'b'

	got, err := s.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestNewStorageAutoSelectsMemory(t *testing.T) {
	s, err := NewStorage(context.Background(), Options{Backend: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Backend())
}

func TestNewStorageRejectsUnknownBackend(t *testing.T) {
	_, err := NewStorage(context.Background(), Options{Backend: "etcd"})
	require.Error(t, err)
}
