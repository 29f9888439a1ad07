// Package memory provides an in-memory pagecontent.Repository used by
// tests and development servers. Transactions are modeled by running the
// closure against a deep copy of the state and swapping it in on success,
// so rollback semantics match the relational implementation.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/clubinho/content-backend/pkg/pagecontent"
)

type state struct {
	pages    map[uuid.UUID]*pagecontent.Page
	sections map[uuid.UUID]*pagecontent.Section
	routes   map[uuid.UUID]*pagecontent.Route
	pathIdx  map[string]uuid.UUID
	media    map[uuid.UUID]*pagecontent.MediaItem
	seq      map[uuid.UUID]int
	nextSeq  int
}

func newState() *state {
	return &state{
		pages:    make(map[uuid.UUID]*pagecontent.Page),
		sections: make(map[uuid.UUID]*pagecontent.Section),
		routes:   make(map[uuid.UUID]*pagecontent.Route),
		pathIdx:  make(map[string]uuid.UUID),
		media:    make(map[uuid.UUID]*pagecontent.MediaItem),
		seq:      make(map[uuid.UUID]int),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, p := range s.pages {
		cp := *p
		c.pages[id] = &cp
	}
	for id, sec := range s.sections {
		cp := *sec
		c.sections[id] = &cp
	}
	for id, r := range s.routes {
		cp := *r
		c.routes[id] = &cp
	}
	for path, id := range s.pathIdx {
		c.pathIdx[path] = id
	}
	for id, m := range s.media {
		cp := *m
		c.media[id] = &cp
	}
	for id, n := range s.seq {
		c.seq[id] = n
	}
	c.nextSeq = s.nextSeq
	return c
}

// Repository implements pagecontent.Repository using in-memory storage
type Repository struct {
	mu   sync.Mutex
	st   *state
	inTx bool
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{st: newState()}
}

func (r *Repository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

// WithTx runs fn against a snapshot of the state and commits it atomically
// on success. Transactions are serialized; a nested call joins the current
// transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx pagecontent.Repository) error) error {
	if r.inTx {
		return fn(ctx, r)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	txRepo := &Repository{st: r.st.clone(), inTx: true}
	if err := fn(ctx, txRepo); err != nil {
		return err
	}
	r.st = txRepo.st
	return nil
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *pagecontent.Page) error {
	defer r.lock()()
	cp := *page
	r.st.pages[page.ID] = &cp
	return nil
}

func (r *Repository) GetPage(ctx context.Context, id uuid.UUID) (*pagecontent.Page, error) {
	defer r.lock()()
	page, ok := r.st.pages[id]
	if !ok {
		return nil, pagecontent.ErrPageNotFound
	}
	cp := *page
	return &cp, nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *pagecontent.Page) error {
	defer r.lock()()
	if _, ok := r.st.pages[page.ID]; !ok {
		return pagecontent.ErrPageNotFound
	}
	cp := *page
	r.st.pages[page.ID] = &cp
	return nil
}

func (r *Repository) DeletePage(ctx context.Context, id uuid.UUID) error {
	defer r.lock()()
	if _, ok := r.st.pages[id]; !ok {
		return pagecontent.ErrPageNotFound
	}
	delete(r.st.pages, id)
	return nil
}

func (r *Repository) ListPages(ctx context.Context, kind pagecontent.PageKind) ([]*pagecontent.Page, error) {
	defer r.lock()()
	var pages []*pagecontent.Page
	for _, page := range r.st.pages {
		if page.Kind == kind {
			cp := *page
			pages = append(pages, &cp)
		}
	}
	sort.Slice(pages, func(i, j int) bool {
		if !pages[i].CreatedAt.Equal(pages[j].CreatedAt) {
			return pages[i].CreatedAt.Before(pages[j].CreatedAt)
		}
		return pages[i].ID.String() < pages[j].ID.String()
	})
	return pages, nil
}

// Section operations

func (r *Repository) CreateSection(ctx context.Context, section *pagecontent.Section) error {
	defer r.lock()()
	cp := *section
	r.st.sections[section.ID] = &cp
	return nil
}

func (r *Repository) UpdateSection(ctx context.Context, section *pagecontent.Section) error {
	defer r.lock()()
	if _, ok := r.st.sections[section.ID]; !ok {
		return pagecontent.ErrSectionNotFound
	}
	cp := *section
	r.st.sections[section.ID] = &cp
	return nil
}

func (r *Repository) ListSections(ctx context.Context, pageID uuid.UUID) ([]*pagecontent.Section, error) {
	defer r.lock()()
	var sections []*pagecontent.Section
	for _, sec := range r.st.sections {
		if sec.PageID == pageID {
			cp := *sec
			sections = append(sections, &cp)
		}
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Position < sections[j].Position })
	return sections, nil
}

func (r *Repository) DeleteSections(ctx context.Context, ids []uuid.UUID) error {
	defer r.lock()()
	for _, id := range ids {
		delete(r.st.sections, id)
	}
	return nil
}

// Route operations

func (r *Repository) CreateRoute(ctx context.Context, route *pagecontent.Route) error {
	defer r.lock()()
	if owner, ok := r.st.pathIdx[route.Path]; ok && owner != route.ID {
		return pagecontent.ErrRoutePathTaken
	}
	cp := *route
	r.st.routes[route.ID] = &cp
	r.st.pathIdx[route.Path] = route.ID
	return nil
}

func (r *Repository) GetRoute(ctx context.Context, id uuid.UUID) (*pagecontent.Route, error) {
	defer r.lock()()
	route, ok := r.st.routes[id]
	if !ok {
		return nil, pagecontent.ErrRouteNotFound
	}
	cp := *route
	return &cp, nil
}

func (r *Repository) GetRouteByPath(ctx context.Context, path string) (*pagecontent.Route, error) {
	defer r.lock()()
	id, ok := r.st.pathIdx[path]
	if !ok {
		return nil, pagecontent.ErrRouteNotFound
	}
	cp := *r.st.routes[id]
	return &cp, nil
}

func (r *Repository) GetRouteByEntity(ctx context.Context, entityType string, entityID uuid.UUID) (*pagecontent.Route, error) {
	defer r.lock()()
	for _, route := range r.st.routes {
		if route.EntityType == entityType && route.EntityID == entityID {
			cp := *route
			return &cp, nil
		}
	}
	return nil, pagecontent.ErrRouteNotFound
}

func (r *Repository) UpdateRoute(ctx context.Context, route *pagecontent.Route) error {
	defer r.lock()()
	prev, ok := r.st.routes[route.ID]
	if !ok {
		return pagecontent.ErrRouteNotFound
	}
	if owner, taken := r.st.pathIdx[route.Path]; taken && owner != route.ID {
		return pagecontent.ErrRoutePathTaken
	}
	delete(r.st.pathIdx, prev.Path)
	cp := *route
	r.st.routes[route.ID] = &cp
	r.st.pathIdx[route.Path] = route.ID
	return nil
}

func (r *Repository) SaveRoute(ctx context.Context, route *pagecontent.Route) error {
	defer r.lock()()
	if owner, taken := r.st.pathIdx[route.Path]; taken && owner != route.ID {
		return pagecontent.ErrRoutePathTaken
	}
	if prev, ok := r.st.routes[route.ID]; ok {
		delete(r.st.pathIdx, prev.Path)
	}
	cp := *route
	r.st.routes[route.ID] = &cp
	r.st.pathIdx[route.Path] = route.ID
	return nil
}

func (r *Repository) DeleteRoute(ctx context.Context, id uuid.UUID) error {
	defer r.lock()()
	route, ok := r.st.routes[id]
	if !ok {
		return pagecontent.ErrRouteNotFound
	}
	delete(r.st.pathIdx, route.Path)
	delete(r.st.routes, id)
	return nil
}

func (r *Repository) ListRoutes(ctx context.Context) ([]*pagecontent.Route, error) {
	defer r.lock()()
	routes := make([]*pagecontent.Route, 0, len(r.st.routes))
	for _, route := range r.st.routes {
		cp := *route
		routes = append(routes, &cp)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes, nil
}

// Media operations

func (r *Repository) CreateMediaItem(ctx context.Context, item *pagecontent.MediaItem) error {
	defer r.lock()()
	cp := *item
	r.st.media[item.ID] = &cp
	r.st.nextSeq++
	r.st.seq[item.ID] = r.st.nextSeq
	return nil
}

func (r *Repository) UpdateMediaItem(ctx context.Context, item *pagecontent.MediaItem) error {
	defer r.lock()()
	if _, ok := r.st.media[item.ID]; !ok {
		return pagecontent.ErrMediaItemNotFound
	}
	cp := *item
	r.st.media[item.ID] = &cp
	return nil
}

func (r *Repository) GetMediaItem(ctx context.Context, id uuid.UUID) (*pagecontent.MediaItem, error) {
	defer r.lock()()
	item, ok := r.st.media[id]
	if !ok {
		return nil, pagecontent.ErrMediaItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *Repository) ListMediaByTarget(ctx context.Context, targetID uuid.UUID, targetType string) ([]*pagecontent.MediaItem, error) {
	return r.ListMediaByTargets(ctx, []uuid.UUID{targetID}, targetType)
}

func (r *Repository) ListMediaByTargets(ctx context.Context, targetIDs []uuid.UUID, targetType string) ([]*pagecontent.MediaItem, error) {
	defer r.lock()()
	wanted := make(map[uuid.UUID]bool, len(targetIDs))
	for _, id := range targetIDs {
		wanted[id] = true
	}
	var items []*pagecontent.MediaItem
	for _, item := range r.st.media {
		if item.TargetType == targetType && wanted[item.TargetID] {
			cp := *item
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return r.st.seq[items[i].ID] < r.st.seq[items[j].ID] })
	return items, nil
}

func (r *Repository) DeleteMediaItems(ctx context.Context, ids []uuid.UUID) error {
	defer r.lock()()
	for _, id := range ids {
		delete(r.st.media, id)
		delete(r.st.seq, id)
	}
	return nil
}

var _ pagecontent.Repository = (*Repository)(nil)
