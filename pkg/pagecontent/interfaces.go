package pagecontent

import (
	"context"

	"github.com/google/uuid"
)

// BlobStore is the two-method object-store gateway. Upload stores the file
// and returns its public URL; a failed upload propagates and aborts the
// caller's operation. Delete removes a previously uploaded object by its
// URL; callers treat delete failures as best-effort cleanup.
type BlobStore interface {
	Upload(ctx context.Context, file UploadFile) (string, error)
	Delete(ctx context.Context, url string) error
}

// Repository is the transactional relational store behind the service.
// WithTx runs fn against a transaction-scoped Repository; every write of a
// page orchestration script happens on one such handle and commits or
// rolls back atomically. Implementations must enforce the unique
// constraint on route paths and surface violations as ErrRoutePathTaken.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error

	// Page operations
	CreatePage(ctx context.Context, page *Page) error
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)
	UpdatePage(ctx context.Context, page *Page) error
	DeletePage(ctx context.Context, id uuid.UUID) error
	ListPages(ctx context.Context, kind PageKind) ([]*Page, error)

	// Section operations
	CreateSection(ctx context.Context, section *Section) error
	UpdateSection(ctx context.Context, section *Section) error
	ListSections(ctx context.Context, pageID uuid.UUID) ([]*Section, error)
	DeleteSections(ctx context.Context, ids []uuid.UUID) error

	// Route operations
	CreateRoute(ctx context.Context, route *Route) error
	GetRoute(ctx context.Context, id uuid.UUID) (*Route, error)
	GetRouteByPath(ctx context.Context, path string) (*Route, error)
	GetRouteByEntity(ctx context.Context, entityType string, entityID uuid.UUID) (*Route, error)
	UpdateRoute(ctx context.Context, route *Route) error
	SaveRoute(ctx context.Context, route *Route) error
	DeleteRoute(ctx context.Context, id uuid.UUID) error
	ListRoutes(ctx context.Context) ([]*Route, error)

	// Media operations
	CreateMediaItem(ctx context.Context, item *MediaItem) error
	UpdateMediaItem(ctx context.Context, item *MediaItem) error
	GetMediaItem(ctx context.Context, id uuid.UUID) (*MediaItem, error)
	ListMediaByTarget(ctx context.Context, targetID uuid.UUID, targetType string) ([]*MediaItem, error)
	ListMediaByTargets(ctx context.Context, targetIDs []uuid.UUID, targetType string) ([]*MediaItem, error)
	DeleteMediaItems(ctx context.Context, ids []uuid.UUID) error
}

// EventSink receives lifecycle events from the service. The core performs
// no logging of its own; observers attach here. Sinks must not block and
// cannot fail an operation.
type EventSink interface {
	PageCreated(ctx context.Context, page *Page, route *Route)
	PageUpdated(ctx context.Context, page *Page)
	PageDeleted(ctx context.Context, pageID uuid.UUID)
	RouteAllocated(ctx context.Context, route *Route)
	RouteRemoved(ctx context.Context, routeID uuid.UUID)
	MediaStored(ctx context.Context, item *MediaItem)
	MediaRemoved(ctx context.Context, item *MediaItem)
	StorageDeleteFailed(ctx context.Context, url string, err error)
}
