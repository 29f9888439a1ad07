package pagecontent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Service is the content-management backend: page aggregate CRUD plus the
// route allocator operations exposed for direct use.
type Service interface {
	// Page orchestration
	CreatePage(ctx context.Context, req CreatePageRequest, files map[string]UploadFile) (*PageView, error)
	UpdatePage(ctx context.Context, id uuid.UUID, req UpdatePageRequest, files map[string]UploadFile) (*PageView, error)
	DeletePage(ctx context.Context, id uuid.UUID) error
	GetPage(ctx context.Context, id uuid.UUID) (*PageView, error)
	ListPages(ctx context.Context, kind PageKind) ([]*PageView, error)

	// Route allocator
	AllocateAvailablePath(ctx context.Context, baseName, prefix string) (string, error)
	CreateRoute(ctx context.Context, req CreateRouteRequest) (*Route, error)
	UpdateRoute(ctx context.Context, id uuid.UUID, patch RoutePatch) (*Route, error)
	UpsertRoute(ctx context.Context, id uuid.UUID, prefix string, patch RoutePatch) (*Route, error)
	RemoveRoute(ctx context.Context, id uuid.UUID) error
	RemoveRouteByEntity(ctx context.Context, entityType string, entityID uuid.UUID) error
	GetRoute(ctx context.Context, id uuid.UUID) (*Route, error)
	GetRouteByPath(ctx context.Context, path string) (*Route, error)
	ListRoutes(ctx context.Context) ([]*Route, error)
}

// service implements the Service interface
type service struct {
	repo   Repository
	store  BlobStore
	events EventSink
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repo = repo
	}
}

// WithBlobStore sets the object-store gateway for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.events = sink
	}
}

// New creates a new service instance with the given options. A repository
// and a blob store are required; the event sink defaults to a no-op.
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.events == nil {
		s.events = NewNoopEventSink()
	}

	return s, nil
}
