package cookies

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/zalando/go-keyring"
)

const serviceName = "curio"

// Store persists a serialized cookie jar snapshot.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Delete() error
}

// NewStore creates a jar store, preferring the system keychain with a
// file fallback. Set CURIO_NO_KEYRING to force the file backend.
func NewStore(origin, fallbackDir string) Store {
	if os.Getenv("CURIO_NO_KEYRING") != "" {
		return &FileStore{Dir: fallbackDir}
	}

	// Probe keyring availability.
	testKey := "curio::probe"
	if err := keyring.Set(serviceName, testKey, "probe"); err == nil {
		_ = keyring.Delete(serviceName, testKey)
		return &KeyringStore{Origin: origin}
	}

	fmt.Fprintf(os.Stderr, "warning: system keyring unavailable, cookie jar stored at %s\n",
		filepath.Join(fallbackDir, "cookies.json"))
	return &FileStore{Dir: fallbackDir}
}

// KeyringStore keeps the jar snapshot in the OS keychain.
type KeyringStore struct {
	Origin string
}

func (s *KeyringStore) key() string {
	return "curio::jar::" + s.Origin
}

func (s *KeyringStore) Load() ([]byte, error) {
	data, err := keyring.Get(serviceName, s.key())
	if err != nil {
		return nil, fmt.Errorf("cookie jar not found: %w", err)
	}
	return []byte(data), nil
}

func (s *KeyringStore) Save(data []byte) error {
	return keyring.Set(serviceName, s.key(), string(data))
}

func (s *KeyringStore) Delete() error {
	err := keyring.Delete(serviceName, s.key())
	if err == keyring.ErrNotFound {
		return nil
	}
	return err
}

// FileStore keeps the jar snapshot in a 0600 file, with a flock guarding
// concurrent CLI invocations against torn reads and lost writes.
type FileStore struct {
	Dir string
}

// Path returns the jar file location. Watchers need it.
func (s *FileStore) Path() string {
	return filepath.Join(s.Dir, "cookies.json")
}

func (s *FileStore) lockPath() string {
	return s.Path() + ".lock"
}

func (s *FileStore) withLock(fn func() error) error {
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lock := flock.New(s.lockPath())
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock cookie jar: %w", err)
	}
	if !locked {
		return fmt.Errorf("cookie jar is locked by another process")
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

func (s *FileStore) Load() ([]byte, error) {
	var data []byte
	err := s.withLock(func() error {
		b, err := os.ReadFile(s.Path())
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	return data, err
}

func (s *FileStore) Save(data []byte) error {
	return s.withLock(func() error {
		tmp := s.Path() + ".tmp"
		if err := os.WriteFile(tmp, data, 0600); err != nil {
			return err
		}
		return os.Rename(tmp, s.Path())
	})
}

func (s *FileStore) Delete() error {
	return s.withLock(func() error {
		err := os.Remove(s.Path())
		if os.IsNotExist(err) {
			return nil
		}
		return err
	})
}
