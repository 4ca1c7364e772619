package identity

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"lustbot-widget/internal/store"
)

// Key is the store key holding the user identifier.
const Key = "lustbot_user_id"

// New returns a fresh identifier. UUIDv7 carries a millisecond timestamp
// followed by random bits.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "user_" + id.String()
}

// GetOrCreateUserID returns the identifier persisted in s, creating and
// persisting one on first use. When the store cannot be read or written
// the caller still gets a usable identifier, just not a stable one.
func GetOrCreateUserID(s store.Store, log zerolog.Logger) string {
	if s == nil {
		return New()
	}
	existing, err := s.Get(Key)
	if err != nil {
		log.Warn().Err(err).Msg("identity store unreadable, using a fresh user id")
		return New()
	}
	if existing != "" {
		return existing
	}

	id := New()
	if err := s.Set(Key, id); err != nil {
		log.Warn().Err(err).Msg("identity store unwritable, user id will not persist")
	}
	return id
}
