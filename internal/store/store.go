package store

// Store is a small string key/value store. Get returns "" and a nil error
// when the key is absent.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}
