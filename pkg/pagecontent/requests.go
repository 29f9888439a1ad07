package pagecontent

import "github.com/google/uuid"

// UploadFile is a file received with the current request, keyed in the
// request's file map by the descriptor's FileFieldKey.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// MediaInput is the wire shape of one requested media item. A nil ID means
// the item is new; an ID matches the descriptor to an existing item.
// Matching is by id only, never by URL or field key.
type MediaInput struct {
	ID           *uuid.UUID      `json:"id,omitempty"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	MediaType    MediaType       `json:"media_type"`
	SourceType   MediaSourceType `json:"source_type"`
	Platform     MediaPlatform   `json:"platform,omitempty"`
	URL          string          `json:"url,omitempty"`
	IsLocalFile  bool            `json:"is_local_file"`
	FileFieldKey string          `json:"file_field_key,omitempty"`
	OriginalName string          `json:"original_name,omitempty"`
	Size         int64           `json:"size,omitempty"`
}

// SectionInput describes one requested section of a section-bearing page.
// A nil ID introduces a new section; an ID updates the stored one. Stored
// sections absent from the request are removed along with their media.
type SectionInput struct {
	ID          *uuid.UUID   `json:"id,omitempty"`
	Caption     string       `json:"caption"`
	Description string       `json:"description"`
	Media       []MediaInput `json:"media"`
}

// CreatePageRequest creates a page aggregate of the given kind. Media holds
// the top-level media descriptors; Sections is used instead for
// section-bearing kinds.
type CreatePageRequest struct {
	Kind        PageKind       `json:"kind"`
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Description string         `json:"description"`
	RouteImage  string         `json:"route_image,omitempty"`
	Public      bool           `json:"public"`
	Media       []MediaInput   `json:"media,omitempty"`
	Sections    []SectionInput `json:"sections,omitempty"`
}

// UpdatePageRequest replaces a page's descriptive fields and reconciles its
// media (and sections) against the request.
type UpdatePageRequest struct {
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Description string         `json:"description"`
	Media       []MediaInput   `json:"media,omitempty"`
	Sections    []SectionInput `json:"sections,omitempty"`
}

// CreateRouteRequest creates a route directly, outside a page script. When
// Path is empty an available one is allocated from Title and Prefix.
type CreateRouteRequest struct {
	Path        string    `json:"path,omitempty"`
	Prefix      string    `json:"prefix,omitempty"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description"`
	EntityType  string    `json:"entity_type"`
	EntityID    uuid.UUID `json:"entity_id"`
	IDToFetch   uuid.UUID `json:"id_to_fetch"`
	Type        RouteType `json:"type"`
	Image       string    `json:"image,omitempty"`
	Public      bool      `json:"public"`
}

// RoutePatch is a partial route update; only non-nil fields are applied.
type RoutePatch struct {
	Title       *string    `json:"title,omitempty"`
	Subtitle    *string    `json:"subtitle,omitempty"`
	Description *string    `json:"description,omitempty"`
	Path        *string    `json:"path,omitempty"`
	Image       *string    `json:"image,omitempty"`
	Public      *bool      `json:"public,omitempty"`
	Type        *RouteType `json:"type,omitempty"`
}
