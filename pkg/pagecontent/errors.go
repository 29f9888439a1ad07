package pagecontent

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrPageNotFound indicates a page was not found
	ErrPageNotFound = errors.New("page not found")

	// ErrRouteNotFound indicates a route was not found
	ErrRouteNotFound = errors.New("route not found")

	// ErrSectionNotFound indicates a section was not found
	ErrSectionNotFound = errors.New("section not found")

	// ErrMediaItemNotFound indicates a media item was not found
	ErrMediaItemNotFound = errors.New("media item not found")

	// ErrRoutePathTaken indicates the requested route path is already owned
	// by another route
	ErrRoutePathTaken = errors.New("route path already in use")

	// ErrUnknownPageKind indicates a request named a page kind the service
	// does not know
	ErrUnknownPageKind = errors.New("unknown page kind")
)

// ValidationError reports an invalid request before any persistence occurs.
// Field names the offending input field (for upload descriptors, the file
// field key that had no matching file).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed for %q: %s", e.Field, e.Reason)
}

// PageError represents an error during a page orchestration script.
type PageError struct {
	PageID uuid.UUID
	Op     string
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page operation %s failed for page %s: %v", e.Op, e.PageID, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// RouteError represents an error during a route allocator operation.
type RouteError struct {
	RouteID uuid.UUID
	Op      string
	Err     error
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("route operation %s failed for route %s: %v", e.Op, e.RouteID, e.Err)
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

// StorageError represents an object-store failure. Upload failures abort
// the enclosing operation; delete failures are reported to the event sink
// and suppressed.
type StorageError struct {
	URL string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for %s: %v", e.Op, e.URL, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
