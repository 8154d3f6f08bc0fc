// Package storagetest provides an in-memory asset store for tests.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/edelguur/admin-backend/pkg/storage"
)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("injected storage failure")

// Store records uploads and deletes in memory.
type Store struct {
	mu sync.Mutex

	Objects map[string][]byte
	Uploads []storage.UploadInput
	Deleted []string

	// FailUploadAt makes the nth upload (1-based) fail; zero disables.
	FailUploadAt int
	// FailDelete makes every delete of these ids fail.
	FailDelete map[string]bool

	seq int
}

// New returns an empty store.
func New() *Store {
	return &Store{Objects: map[string][]byte{}, FailDelete: map[string]bool{}}
}

func (s *Store) Upload(_ context.Context, in storage.UploadInput) (storage.Asset, error) {
	if err := in.Validate(); err != nil {
		return storage.Asset{}, err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return storage.Asset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.FailUploadAt > 0 && s.seq == s.FailUploadAt {
		return storage.Asset{}, ErrInjected
	}
	id := fmt.Sprintf("%s/asset-%d", in.Folder, s.seq)
	s.Objects[id] = body
	s.Uploads = append(s.Uploads, in)
	return storage.Asset{URL: "https://assets.test/" + id, PublicID: id}, nil
}

func (s *Store) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete[publicID] {
		return ErrInjected
	}
	delete(s.Objects, publicID)
	s.Deleted = append(s.Deleted, publicID)
	return nil
}

// DeletedIDs returns a copy of the delete log.
func (s *Store) DeletedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Deleted...)
}
