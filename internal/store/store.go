package store

import "errors"

// Well-known keys of the client's persisted local state. Structured values
// are stored as JSON-encoded strings.
const (
	KeyUserToken       = "userToken"
	KeyUserData        = "userData"
	KeyIsGuest         = "isGuest"
	KeyAlreadyLaunched = "alreadyLaunched"
	KeyDeviceSecret    = "deviceSecret"
	KeyPushToken       = "pushToken"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("key not found")

// Store is durable key/value state surviving process restarts.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Memory is an in-process Store used by tests.
type Memory struct {
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	delete(m.values, key)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
