package identity

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lustbot-widget/internal/store"
)

func TestGetOrCreateUserIDIsStable(t *testing.T) {
	s := store.NewMemoryStore()
	first := GetOrCreateUserID(s, zerolog.Nop())
	second := GetOrCreateUserID(s, zerolog.Nop())

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "user_"))

	persisted, err := s.Get(Key)
	require.NoError(t, err)
	assert.Equal(t, first, persisted)
}

func TestGetOrCreateUserIDReturnsExistingValue(t *testing.T) {
	s := store.NewMemoryStore()
	require.NoError(t, s.Set(Key, "user_1712345678_abc123def"))

	assert.Equal(t, "user_1712345678_abc123def", GetOrCreateUserID(s, zerolog.Nop()))
}

func TestGetOrCreateUserIDAcrossFileStoreInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.json")
	first := GetOrCreateUserID(store.NewFileStore(path), zerolog.Nop())
	second := GetOrCreateUserID(store.NewFileStore(path), zerolog.Nop())
	assert.Equal(t, first, second)
}

type brokenStore struct{}

func (brokenStore) Get(string) (string, error) { return "", errors.New("storage disabled") }
func (brokenStore) Set(string, string) error   { return errors.New("storage disabled") }

func TestGetOrCreateUserIDDegradesWhenStorageFails(t *testing.T) {
	a := GetOrCreateUserID(brokenStore{}, zerolog.Nop())
	b := GetOrCreateUserID(brokenStore{}, zerolog.Nop())
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := New()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
