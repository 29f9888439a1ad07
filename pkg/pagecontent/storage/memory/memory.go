// Package memory provides an in-memory pagecontent.BlobStore for tests and
// development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/clubinho/content-backend/pkg/pagecontent"
)

// Store is an in-memory object store. Uploaded files are addressable by the
// URL Upload returned.
type Store struct {
	mu      sync.RWMutex
	objects map[string]pagecontent.UploadFile
	n       int
}

// New creates a new in-memory blob store
func New() *Store {
	return &Store{objects: make(map[string]pagecontent.UploadFile)}
}

// Upload stores the file and returns a synthetic URL for it.
func (s *Store) Upload(ctx context.Context, file pagecontent.UploadFile) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.n++
	url := fmt.Sprintf("memory://uploads/%d_%s", s.n, file.Name)
	s.objects[url] = file
	return url, nil
}

// Delete removes the object at url. Deleting an unknown url is an error so
// callers exercising best-effort cleanup can observe it.
func (s *Store) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[url]; !ok {
		return fmt.Errorf("object not found: %s", url)
	}
	delete(s.objects, url)
	return nil
}

// Get returns the stored file for url.
func (s *Store) Get(url string) (pagecontent.UploadFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file, ok := s.objects[url]
	return file, ok
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

var _ pagecontent.BlobStore = (*Store)(nil)
