package pagecontent

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaProcessor owns the lifecycle of polymorphic media attachments for a
// target aggregate: building records from input descriptors, resolving
// upload-vs-link sourcing, diffing a requested set against the persisted
// one, garbage-collecting orphans from both the database and the object
// store, and upserting survivors.
//
// The processor runs against whatever repository handle it is given, so the
// page orchestrators construct one per transaction.
type MediaProcessor struct {
	repo   Repository
	store  BlobStore
	events EventSink
}

// NewMediaProcessor creates a processor bound to the given repository
// handle, blob store, and event sink.
func NewMediaProcessor(repo Repository, store BlobStore, events EventSink) *MediaProcessor {
	return &MediaProcessor{repo: repo, store: store, events: events}
}

// BuildBaseMediaItem maps a descriptor to a fresh media record for the
// given target. Pure: no id is assigned and nothing is persisted or
// uploaded here.
func BuildBaseMediaItem(in MediaInput, targetID uuid.UUID, targetType string) *MediaItem {
	return &MediaItem{
		Title:        in.Title,
		Description:  in.Description,
		MediaType:    in.MediaType,
		SourceType:   in.SourceType,
		Platform:     in.Platform,
		URL:          in.URL,
		IsLocalFile:  in.IsLocalFile,
		OriginalName: in.OriginalName,
		Size:         in.Size,
		TargetID:     targetID,
		TargetType:   targetType,
	}
}

// resolveSource fills url/isLocalFile/originalName/size on item from the
// descriptor. Upload descriptors require a file at files[in.FileFieldKey]
// and fail with a ValidationError naming the missing key; the uploaded
// object's URL, original name, and byte size are captured. Link descriptors
// use the descriptor URL verbatim, trimmed.
func (p *MediaProcessor) resolveSource(ctx context.Context, in MediaInput, item *MediaItem, files map[string]UploadFile) error {
	if in.SourceType == SourceTypeUpload {
		file, ok := files[in.FileFieldKey]
		if !ok {
			return &ValidationError{Field: in.FileFieldKey, Reason: "missing file for upload descriptor"}
		}
		url, err := p.store.Upload(ctx, file)
		if err != nil {
			return &StorageError{URL: file.Name, Op: "upload", Err: err}
		}
		item.URL = url
		item.IsLocalFile = true
		item.OriginalName = file.Name
		item.Size = int64(len(file.Data))
		return nil
	}

	item.URL = strings.TrimSpace(in.URL)
	item.IsLocalFile = false
	return nil
}

// ProcessNewBatch builds, resolves, and persists every descriptor for a
// target that has no prior media. Items are returned in input order; the
// first failure aborts the batch and the caller's transaction rolls back.
func (p *MediaProcessor) ProcessNewBatch(ctx context.Context, inputs []MediaInput, targetID uuid.UUID, targetType string, files map[string]UploadFile) ([]*MediaItem, error) {
	items := make([]*MediaItem, 0, len(inputs))

	for _, in := range inputs {
		item := BuildBaseMediaItem(in, targetID, targetType)
		if err := p.resolveSource(ctx, in, item, files); err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		item.ID = uuid.New()
		item.CreatedAt = now
		item.UpdatedAt = now

		if err := p.repo.CreateMediaItem(ctx, item); err != nil {
			return nil, err
		}
		p.events.MediaStored(ctx, item)
		items = append(items, item)
	}

	return items, nil
}

// DiffAndReplace reconciles the requested descriptors against the persisted
// media of a target and returns the final set.
//
// Existing items whose id is absent from the request are orphans: their
// object-store files are deleted best-effort and their rows removed, before
// any survivor is touched, so a swap reusing the same file field key cannot
// collide in the store. Descriptors are matched to existing items by id
// only, never by URL or field key; a descriptor without an id is always new,
// even if its URL matches an existing row.
//
// An upload descriptor carrying an id but no new file keeps the prior
// item's url, isLocalFile, originalName, and size; with a new file, the old
// object is deleted first and the new one uploaded.
func (p *MediaProcessor) DiffAndReplace(ctx context.Context, inputs []MediaInput, existing []*MediaItem, targetID uuid.UUID, targetType string, files map[string]UploadFile) ([]*MediaItem, error) {
	requested := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if in.ID != nil {
			requested[*in.ID] = true
		}
	}

	byID := make(map[uuid.UUID]*MediaItem, len(existing))
	var orphans []*MediaItem
	for _, item := range existing {
		byID[item.ID] = item
		if !requested[item.ID] {
			orphans = append(orphans, item)
		}
	}

	if len(orphans) > 0 {
		if err := p.DeleteAll(ctx, orphans); err != nil {
			return nil, err
		}
	}

	result := make([]*MediaItem, 0, len(inputs))
	now := time.Now().UTC()

	for _, in := range inputs {
		item := BuildBaseMediaItem(in, targetID, targetType)

		if in.ID == nil {
			if err := p.resolveSource(ctx, in, item, files); err != nil {
				return nil, err
			}
			item.ID = uuid.New()
			item.CreatedAt = now
			item.UpdatedAt = now
			if err := p.repo.CreateMediaItem(ctx, item); err != nil {
				return nil, err
			}
			p.events.MediaStored(ctx, item)
			result = append(result, item)
			continue
		}

		prior := byID[*in.ID]
		_, hasFile := files[in.FileFieldKey]

		switch {
		case in.SourceType == SourceTypeUpload && prior != nil && !hasFile:
			// The caller did not resend the file; keep the stored object.
			item.URL = prior.URL
			item.IsLocalFile = prior.IsLocalFile
			item.OriginalName = prior.OriginalName
			item.Size = prior.Size
		case in.SourceType == SourceTypeUpload && prior != nil && hasFile:
			if prior.IsLocalFile {
				p.removeBlob(ctx, prior.URL)
			}
			if err := p.resolveSource(ctx, in, item, files); err != nil {
				return nil, err
			}
		default:
			if err := p.resolveSource(ctx, in, item, files); err != nil {
				return nil, err
			}
		}

		item.ID = *in.ID
		item.UpdatedAt = now
		if prior != nil {
			item.CreatedAt = prior.CreatedAt
			if err := p.repo.UpdateMediaItem(ctx, item); err != nil {
				return nil, err
			}
		} else {
			// Unknown id from the client: persist under it anyway,
			// matching save-with-id semantics.
			item.CreatedAt = now
			if err := p.repo.CreateMediaItem(ctx, item); err != nil {
				return nil, err
			}
		}
		p.events.MediaStored(ctx, item)
		result = append(result, item)
	}

	return result, nil
}

// DeleteAll removes every given item: object-store deletes for local files
// (best-effort, one failure does not block the rest), then the rows in one
// batch.
func (p *MediaProcessor) DeleteAll(ctx context.Context, items []*MediaItem) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.IsLocalFile {
			p.removeBlob(ctx, item.URL)
		}
		ids = append(ids, item.ID)
	}

	if err := p.repo.DeleteMediaItems(ctx, ids); err != nil {
		return err
	}
	for _, item := range items {
		p.events.MediaRemoved(ctx, item)
	}
	return nil
}

// FindByTarget returns the persisted media for one target.
func (p *MediaProcessor) FindByTarget(ctx context.Context, targetID uuid.UUID, targetType string) ([]*MediaItem, error) {
	return p.repo.ListMediaByTarget(ctx, targetID, targetType)
}

// FindByTargets returns the persisted media for several targets of one type
// in a single query.
func (p *MediaProcessor) FindByTargets(ctx context.Context, targetIDs []uuid.UUID, targetType string) ([]*MediaItem, error) {
	return p.repo.ListMediaByTargets(ctx, targetIDs, targetType)
}

// removeBlob deletes an object best-effort. Failures are reported to the
// event sink and suppressed; relational state never depends on the store.
func (p *MediaProcessor) removeBlob(ctx context.Context, url string) {
	if err := p.store.Delete(ctx, url); err != nil {
		p.events.StorageDeleteFailed(ctx, url, err)
	}
}
