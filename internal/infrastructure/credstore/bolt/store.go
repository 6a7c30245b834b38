// Package bolt persists credentials in a local bbolt file, one bucket per API
// origin, so tokens survive process restarts the way browser storage
// survives page reloads.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/taskflow/client/internal/core/domain"
	"github.com/taskflow/client/internal/core/ports"
)

const openTimeout = time.Second

// Store implements ports.CredentialStore on top of bbolt.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open creates (if needed) the database at path and the bucket for scope.
func Open(path, scope string) (*Store, error) {
	if scope == "" {
		return nil, errors.New("bolt: empty scope")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("bolt: create dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}

	bucket := []byte(scope)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: create bucket: %w", err)
	}

	return &Store{db: db, bucket: bucket}, nil
}

func (s *Store) Get(_ context.Context) (domain.Credentials, error) {
	var creds domain.Credentials
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		creds.AccessToken = string(b.Get([]byte(ports.AccessTokenKey)))
		creds.RefreshToken = string(b.Get([]byte(ports.RefreshTokenKey)))
		return nil
	})
	return creds, err
}

func (s *Store) Save(_ context.Context, creds domain.Credentials) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if err := put(b, ports.AccessTokenKey, creds.AccessToken); err != nil {
			return err
		}
		return put(b, ports.RefreshTokenKey, creds.RefreshToken)
	})
}

func (s *Store) SetAccessToken(_ context.Context, token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket(s.bucket), ports.AccessTokenKey, token)
	})
}

func (s *Store) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if err := b.Delete([]byte(ports.AccessTokenKey)); err != nil {
			return err
		}
		return b.Delete([]byte(ports.RefreshTokenKey))
	})
}

// Close releases the file lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// an empty value deletes the key so absent and empty stay indistinguishable.
func put(b *bolt.Bucket, key, value string) error {
	if value == "" {
		return b.Delete([]byte(key))
	}
	return b.Put([]byte(key), []byte(value))
}
