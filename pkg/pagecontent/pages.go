package pagecontent

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Page orchestration. Each verb is one transactional script: every read the
// diff depends on, every write, and the final commit happen on a single
// repository transaction. Object-store calls happen mid-script outside the
// transaction and are not compensated if the commit later fails; an upload
// followed by a failed commit leaves an orphaned object to be reconciled
// out of band.

// CreatePage inserts the page row, allocates and binds its route, persists
// the requested media (per section for section-bearing kinds), and commits.
// Nothing survives a failed create.
func (s *service) CreatePage(ctx context.Context, req CreatePageRequest, files map[string]UploadFile) (*PageView, error) {
	spec, ok := pageKinds[req.Kind]
	if !ok {
		return nil, ErrUnknownPageKind
	}

	var view *PageView
	var createdRoute *Route
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		now := time.Now().UTC()
		page := &Page{
			ID:          uuid.New(),
			Kind:        req.Kind,
			Title:       req.Title,
			Subtitle:    req.Subtitle,
			Description: req.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreatePage(ctx, page); err != nil {
			return err
		}

		path, err := allocateAvailablePath(ctx, tx, req.Title, spec.slugPrefix, uuid.Nil)
		if err != nil {
			return err
		}
		route, err := createRoute(ctx, tx, CreateRouteRequest{
			Path:        path,
			Title:       req.Title,
			Subtitle:    req.Subtitle,
			Description: req.Description,
			EntityType:  spec.targetType,
			EntityID:    page.ID,
			IDToFetch:   page.ID,
			Type:        spec.routeType,
			Image:       req.RouteImage,
			Public:      req.Public,
		})
		if err != nil {
			return err
		}
		createdRoute = route

		page.RouteID = route.ID
		if err := tx.UpdatePage(ctx, page); err != nil {
			return err
		}

		proc := NewMediaProcessor(tx, s.store, s.events)
		if spec.sectioned {
			for i, si := range req.Sections {
				section := &Section{
					ID:          uuid.New(),
					PageID:      page.ID,
					Caption:     si.Caption,
					Description: si.Description,
					Position:    i,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := tx.CreateSection(ctx, section); err != nil {
					return err
				}
				if _, err := proc.ProcessNewBatch(ctx, si.Media, section.ID, spec.sectionTargetType, files); err != nil {
					return err
				}
			}
		} else {
			if _, err := proc.ProcessNewBatch(ctx, req.Media, page.ID, spec.targetType, files); err != nil {
				return err
			}
		}

		view, err = assemblePageView(ctx, tx, page)
		return err
	})
	if err != nil {
		return nil, &PageError{Op: "create", Err: err}
	}

	s.events.PageCreated(ctx, view.Page, createdRoute)
	return view, nil
}

// UpdatePage reconciles a stored page against the request: sections absent
// from the request are removed with their media, present ones are updated,
// new ones added; each target's media goes through the diff; the route is
// rewritten only when title, subtitle, or description actually changed.
func (s *service) UpdatePage(ctx context.Context, id uuid.UUID, req UpdatePageRequest, files map[string]UploadFile) (*PageView, error) {
	var view *PageView
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		page, err := tx.GetPage(ctx, id)
		if err != nil {
			return err
		}
		spec, ok := pageKinds[page.Kind]
		if !ok {
			return ErrUnknownPageKind
		}

		route, err := tx.GetRoute(ctx, page.RouteID)
		if err != nil {
			return err
		}

		proc := NewMediaProcessor(tx, s.store, s.events)
		if spec.sectioned {
			if err := s.reconcileSections(ctx, tx, proc, page, spec, req.Sections, files); err != nil {
				return err
			}
		} else {
			existing, err := proc.FindByTarget(ctx, page.ID, spec.targetType)
			if err != nil {
				return err
			}
			if _, err := proc.DiffAndReplace(ctx, req.Media, existing, page.ID, spec.targetType, files); err != nil {
				return err
			}
		}

		changed := page.Title != req.Title ||
			page.Subtitle != req.Subtitle ||
			page.Description != req.Description
		if changed {
			patch := RoutePatch{
				Title:       &req.Title,
				Subtitle:    &req.Subtitle,
				Description: &req.Description,
			}
			if _, err := upsertRoute(ctx, tx, route.ID, spec.slugPrefix, patch); err != nil {
				return err
			}
		}

		page.Title = req.Title
		page.Subtitle = req.Subtitle
		page.Description = req.Description
		page.UpdatedAt = time.Now().UTC()
		if err := tx.UpdatePage(ctx, page); err != nil {
			return err
		}

		view, err = assemblePageView(ctx, tx, page)
		return err
	})
	if err != nil {
		return nil, &PageError{PageID: id, Op: "update", Err: err}
	}

	s.events.PageUpdated(ctx, view.Page)
	return view, nil
}

// reconcileSections applies the section set of an update request: stored
// sections missing from the request are removed along with their media,
// matched ones are updated in place and their media diffed, and sections
// without an id are created fresh.
func (s *service) reconcileSections(ctx context.Context, tx Repository, proc *MediaProcessor, page *Page, spec kindSpec, inputs []SectionInput, files map[string]UploadFile) error {
	stored, err := tx.ListSections(ctx, page.ID)
	if err != nil {
		return err
	}
	storedByID := make(map[uuid.UUID]*Section, len(stored))
	for _, sec := range stored {
		storedByID[sec.ID] = sec
	}

	requested := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if in.ID != nil {
			requested[*in.ID] = true
		}
	}

	var removedIDs []uuid.UUID
	for _, sec := range stored {
		if !requested[sec.ID] {
			removedIDs = append(removedIDs, sec.ID)
		}
	}
	if len(removedIDs) > 0 {
		media, err := proc.FindByTargets(ctx, removedIDs, spec.sectionTargetType)
		if err != nil {
			return err
		}
		if err := proc.DeleteAll(ctx, media); err != nil {
			return err
		}
		if err := tx.DeleteSections(ctx, removedIDs); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	for i, in := range inputs {
		if in.ID != nil {
			sec, ok := storedByID[*in.ID]
			if !ok {
				return ErrSectionNotFound
			}
			sec.Caption = in.Caption
			sec.Description = in.Description
			sec.Position = i
			sec.UpdatedAt = now
			if err := tx.UpdateSection(ctx, sec); err != nil {
				return err
			}
			existing, err := proc.FindByTarget(ctx, sec.ID, spec.sectionTargetType)
			if err != nil {
				return err
			}
			if _, err := proc.DiffAndReplace(ctx, in.Media, existing, sec.ID, spec.sectionTargetType, files); err != nil {
				return err
			}
			continue
		}

		section := &Section{
			ID:          uuid.New(),
			PageID:      page.ID,
			Caption:     in.Caption,
			Description: in.Description,
			Position:    i,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.CreateSection(ctx, section); err != nil {
			return err
		}
		if _, err := proc.ProcessNewBatch(ctx, in.Media, section.ID, spec.sectionTargetType, files); err != nil {
			return err
		}
	}
	return nil
}

// DeletePage removes a page aggregate with an explicit, ordered script:
// media first (page-level and per section), then the route, the sections,
// and finally the page row.
func (s *service) DeletePage(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Repository) error {
		page, err := tx.GetPage(ctx, id)
		if err != nil {
			return err
		}
		spec, ok := pageKinds[page.Kind]
		if !ok {
			return ErrUnknownPageKind
		}

		proc := NewMediaProcessor(tx, s.store, s.events)

		var sectionIDs []uuid.UUID
		if spec.sectioned {
			sections, err := tx.ListSections(ctx, page.ID)
			if err != nil {
				return err
			}
			for _, sec := range sections {
				sectionIDs = append(sectionIDs, sec.ID)
			}
			if len(sectionIDs) > 0 {
				media, err := proc.FindByTargets(ctx, sectionIDs, spec.sectionTargetType)
				if err != nil {
					return err
				}
				if err := proc.DeleteAll(ctx, media); err != nil {
					return err
				}
			}
		}

		media, err := proc.FindByTarget(ctx, page.ID, spec.targetType)
		if err != nil {
			return err
		}
		if err := proc.DeleteAll(ctx, media); err != nil {
			return err
		}

		// pages.route_id references routes; unlink before deleting the route.
		routeID := page.RouteID
		if routeID != uuid.Nil {
			page.RouteID = uuid.Nil
			if err := tx.UpdatePage(ctx, page); err != nil {
				return err
			}
		}
		if err := removeRoute(ctx, tx, s.events, routeID); err != nil {
			return err
		}

		if len(sectionIDs) > 0 {
			if err := tx.DeleteSections(ctx, sectionIDs); err != nil {
				return err
			}
		}

		return tx.DeletePage(ctx, page.ID)
	})
	if err != nil {
		return &PageError{PageID: id, Op: "delete", Err: err}
	}

	s.events.PageDeleted(ctx, id)
	return nil
}

// GetPage loads a page with its route, media, and sections.
func (s *service) GetPage(ctx context.Context, id uuid.UUID) (*PageView, error) {
	page, err := s.repo.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	return assemblePageView(ctx, s.repo, page)
}

// ListPages loads every page of a kind with its full aggregate.
func (s *service) ListPages(ctx context.Context, kind PageKind) ([]*PageView, error) {
	if !KnownPageKind(kind) {
		return nil, ErrUnknownPageKind
	}
	pages, err := s.repo.ListPages(ctx, kind)
	if err != nil {
		return nil, err
	}
	views := make([]*PageView, 0, len(pages))
	for _, page := range pages {
		view, err := assemblePageView(ctx, s.repo, page)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// assemblePageView builds the read shape of a page from the given
// repository handle.
func assemblePageView(ctx context.Context, repo Repository, page *Page) (*PageView, error) {
	spec, ok := pageKinds[page.Kind]
	if !ok {
		return nil, ErrUnknownPageKind
	}

	route, err := repo.GetRoute(ctx, page.RouteID)
	if err != nil {
		return nil, err
	}
	view := &PageView{Page: page, Route: NewRouteView(route)}

	if spec.sectioned {
		sections, err := repo.ListSections(ctx, page.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(sections))
		for _, sec := range sections {
			ids = append(ids, sec.ID)
		}
		var media []*MediaItem
		if len(ids) > 0 {
			media, err = repo.ListMediaByTargets(ctx, ids, spec.sectionTargetType)
			if err != nil {
				return nil, err
			}
		}
		byTarget := make(map[uuid.UUID][]*MediaItem)
		for _, item := range media {
			byTarget[item.TargetID] = append(byTarget[item.TargetID], item)
		}
		for _, sec := range sections {
			view.Sections = append(view.Sections, SectionView{Section: sec, Media: byTarget[sec.ID]})
		}
		return view, nil
	}

	view.Media, err = repo.ListMediaByTarget(ctx, page.ID, spec.targetType)
	if err != nil {
		return nil, err
	}
	return view, nil
}
