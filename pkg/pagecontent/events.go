package pagecontent

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink.
// Useful when no observer is attached or for testing.
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) PageCreated(ctx context.Context, page *Page, route *Route)       {}
func (n *NoopEventSink) PageUpdated(ctx context.Context, page *Page)                     {}
func (n *NoopEventSink) PageDeleted(ctx context.Context, pageID uuid.UUID)               {}
func (n *NoopEventSink) RouteAllocated(ctx context.Context, route *Route)                {}
func (n *NoopEventSink) RouteRemoved(ctx context.Context, routeID uuid.UUID)             {}
func (n *NoopEventSink) MediaStored(ctx context.Context, item *MediaItem)                {}
func (n *NoopEventSink) MediaRemoved(ctx context.Context, item *MediaItem)               {}
func (n *NoopEventSink) StorageDeleteFailed(ctx context.Context, url string, err error)  {}

// SlogEventSink writes lifecycle events to a structured logger. This is the
// observer the server wires by default; the core itself never logs.
type SlogEventSink struct {
	logger *slog.Logger
}

// NewSlogEventSink creates an event sink backed by the given logger.
func NewSlogEventSink(logger *slog.Logger) EventSink {
	return &SlogEventSink{logger: logger}
}

func (s *SlogEventSink) PageCreated(ctx context.Context, page *Page, route *Route) {
	s.logger.InfoContext(ctx, "page created",
		"page_id", page.ID, "kind", page.Kind, "path", route.Path)
}

func (s *SlogEventSink) PageUpdated(ctx context.Context, page *Page) {
	s.logger.InfoContext(ctx, "page updated", "page_id", page.ID, "kind", page.Kind)
}

func (s *SlogEventSink) PageDeleted(ctx context.Context, pageID uuid.UUID) {
	s.logger.InfoContext(ctx, "page deleted", "page_id", pageID)
}

func (s *SlogEventSink) RouteAllocated(ctx context.Context, route *Route) {
	s.logger.InfoContext(ctx, "route allocated",
		"route_id", route.ID, "path", route.Path, "entity_type", route.EntityType)
}

func (s *SlogEventSink) RouteRemoved(ctx context.Context, routeID uuid.UUID) {
	s.logger.InfoContext(ctx, "route removed", "route_id", routeID)
}

func (s *SlogEventSink) MediaStored(ctx context.Context, item *MediaItem) {
	s.logger.DebugContext(ctx, "media stored",
		"media_id", item.ID, "media_type", item.MediaType,
		"target_id", item.TargetID, "target_type", item.TargetType,
		"local", item.IsLocalFile)
}

func (s *SlogEventSink) MediaRemoved(ctx context.Context, item *MediaItem) {
	s.logger.DebugContext(ctx, "media removed",
		"media_id", item.ID, "target_id", item.TargetID, "local", item.IsLocalFile)
}

func (s *SlogEventSink) StorageDeleteFailed(ctx context.Context, url string, err error) {
	s.logger.WarnContext(ctx, "object store delete failed", "url", url, "error", err)
}
