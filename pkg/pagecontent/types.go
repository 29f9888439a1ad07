package pagecontent

import (
	"time"

	"github.com/google/uuid"
)

// MediaType classifies what a media item contains.
type MediaType string

const (
	MediaTypeVideo    MediaType = "video"
	MediaTypeDocument MediaType = "document"
	MediaTypeImage    MediaType = "image"
	MediaTypeAudio    MediaType = "audio"
)

// MediaSourceType says where a media item's bytes come from.
type MediaSourceType string

const (
	SourceTypeLink   MediaSourceType = "link"
	SourceTypeUpload MediaSourceType = "upload"
)

// MediaPlatform identifies the external host of a linked media item.
// Meaningful only when the source type is "link".
type MediaPlatform string

const (
	PlatformYouTube     MediaPlatform = "youtube"
	PlatformGoogleDrive MediaPlatform = "googledrive"
	PlatformOneDrive    MediaPlatform = "onedrive"
	PlatformDropbox     MediaPlatform = "dropbox"
	PlatformAny         MediaPlatform = "any"
)

// RouteType is the read-side rendering hint carried by a route.
type RouteType string

const (
	RouteTypePage  RouteType = "page"
	RouteTypeDoc   RouteType = "doc"
	RouteTypeImage RouteType = "image"
)

// PageKind selects which page aggregate a request operates on.
type PageKind string

const (
	PageKindGallery        PageKind = "gallery"
	PageKindDocument       PageKind = "document"
	PageKindMeditation     PageKind = "meditation"
	PageKindImages         PageKind = "images"
	PageKindIdeas          PageKind = "ideas"
	PageKindVideos         PageKind = "videos"
	PageKindWeekMaterials  PageKind = "week_materials"
	PageKindStudyMaterials PageKind = "study_materials"
)

// MediaItem is a polymorphic attachment owned by a target aggregate.
// Its lifecycle is entirely owned by whichever aggregate currently
// references (TargetID, TargetType); it is created, replaced, or deleted
// only as a side effect of its owner's mutation.
//
// When SourceType is "upload" and IsLocalFile is true, URL points into the
// object store and OriginalName/Size are populated. When SourceType is
// "link", IsLocalFile is false and Platform should be set.
type MediaItem struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	MediaType    MediaType       `json:"media_type"`
	SourceType   MediaSourceType `json:"source_type"`
	Platform     MediaPlatform   `json:"platform,omitempty"`
	URL          string          `json:"url"`
	IsLocalFile  bool            `json:"is_local_file"`
	OriginalName string          `json:"original_name,omitempty"`
	Size         int64           `json:"size,omitempty"`
	TargetID     uuid.UUID       `json:"target_id"`
	TargetType   string          `json:"target_type"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Route is the unique URL slug and metadata bound 1:1 to a page aggregate.
// Path is unique across all routes; at most one route exists per
// (EntityType, EntityID) pair in normal operation.
type Route struct {
	ID          uuid.UUID `json:"id"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description"`
	EntityType  string    `json:"entity_type"`
	EntityID    uuid.UUID `json:"entity_id"`
	IDToFetch   uuid.UUID `json:"id_to_fetch"`
	Type        RouteType `json:"type"`
	Image       string    `json:"image,omitempty"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Page is the generic aggregate shape shared by all page kinds: descriptive
// fields, an owned route, and a set of owned media items addressed by
// TargetID = Page.ID (or by section id for section-bearing kinds).
type Page struct {
	ID          uuid.UUID `json:"id"`
	Kind        PageKind  `json:"kind"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description"`
	RouteID     uuid.UUID `json:"route_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Section is an intermediate entity owned by section-bearing pages
// (galleries, image pages). Sections own their media: the media target is
// the section id, not the page id.
type Section struct {
	ID          uuid.UUID `json:"id"`
	PageID      uuid.UUID `json:"page_id"`
	Caption     string    `json:"caption"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// kindSpec carries the per-kind parameters of the shared orchestration
// scripts: the slug prefix, the route rendering type, and the target type
// tags under which media rows are filed.
type kindSpec struct {
	slugPrefix        string
	routeType         RouteType
	targetType        string
	sectionTargetType string
	sectioned         bool
}

var pageKinds = map[PageKind]kindSpec{
	PageKindGallery: {
		slugPrefix:        "galeria_",
		routeType:         RouteTypePage,
		targetType:        "GalleryPage",
		sectionTargetType: "GallerySection",
		sectioned:         true,
	},
	PageKindDocument: {
		slugPrefix: "documentos_",
		routeType:  RouteTypeDoc,
		targetType: "document",
	},
	PageKindMeditation: {
		slugPrefix: "meditacao_",
		routeType:  RouteTypePage,
		targetType: "meditation",
	},
	PageKindImages: {
		slugPrefix:        "galeria_imagens_",
		routeType:         RouteTypeImage,
		targetType:        "ImagesPage",
		sectionTargetType: "ImagesSection",
		sectioned:         true,
	},
	PageKindIdeas: {
		slugPrefix:        "ideias_",
		routeType:         RouteTypePage,
		targetType:        "IdeasPage",
		sectionTargetType: "IdeasSection",
		sectioned:         true,
	},
	PageKindVideos: {
		slugPrefix: "videos_",
		routeType:  RouteTypePage,
		targetType: "VideosPage",
	},
	PageKindWeekMaterials: {
		slugPrefix: "materiais_semanal_",
		routeType:  RouteTypePage,
		targetType: "WeekMaterialsPage",
	},
	PageKindStudyMaterials: {
		slugPrefix: "clubinho_",
		routeType:  RouteTypePage,
		targetType: "StudyMaterialsPage",
	},
}

// KnownPageKind reports whether kind is one of the supported page kinds.
func KnownPageKind(kind PageKind) bool {
	_, ok := pageKinds[kind]
	return ok
}

// RouteView is the route read-shape embedded in page responses.
type RouteView struct {
	ID          uuid.UUID `json:"id"`
	Path        string    `json:"path"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description"`
	Type        RouteType `json:"type"`
}

// NewRouteView projects a route into its owner-facing read shape.
func NewRouteView(r *Route) RouteView {
	return RouteView{
		ID:          r.ID,
		Path:        r.Path,
		Title:       r.Title,
		Subtitle:    r.Subtitle,
		Description: r.Description,
		Type:        r.Type,
	}
}

// SectionView is a section together with the media it owns.
type SectionView struct {
	Section *Section     `json:"section"`
	Media   []*MediaItem `json:"media"`
}

// PageView is the assembled read shape of a page aggregate: the page row,
// its route, its top-level media, and its sections with their media.
type PageView struct {
	Page     *Page         `json:"page"`
	Route    RouteView     `json:"route"`
	Media    []*MediaItem  `json:"media,omitempty"`
	Sections []SectionView `json:"sections,omitempty"`
}
