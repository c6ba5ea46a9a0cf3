package storefront

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// Keys of the client-local state.
const (
	KeyCart    = "cart"
	KeyTheme   = "theme"
	KeySession = "session"
)

// Storage is durable client-local state. Load returns nil, nil for a key
// that was never saved.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, val []byte) error
	Delete(key string) error
}

type MemoryStorage struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: map[string][]byte{}}
}

func (s *MemoryStorage) Load(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStorage) Save(key string, val []byte) error {
	s.mu.Lock()
	s.m[key] = append([]byte(nil), val...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

var stateBucket = []byte("storefront")

// BoltStorage keeps the state in a single bbolt file so it survives restarts.
type BoltStorage struct {
	db *bbolt.DB
}

func OpenBoltStorage(path string) (*BoltStorage, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open state file %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create state bucket")
	}
	return &BoltStorage{db: db}, nil
}

func (s *BoltStorage) Load(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(stateBucket).Get([]byte(key)); v != nil {
			// v is only valid inside the transaction
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, errors.Wrapf(err, "load %s", key)
}

func (s *BoltStorage) Save(key string, val []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(stateBucket).Put([]byte(key), val)
	})
	return errors.Wrapf(err, "save %s", key)
}

func (s *BoltStorage) Delete(key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(stateBucket).Delete([]byte(key))
	})
	return errors.Wrapf(err, "delete %s", key)
}

func (s *BoltStorage) Close() error { return s.db.Close() }
