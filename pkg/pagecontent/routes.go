package pagecontent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Route allocator. Every operation has an internal variant that takes the
// repository handle explicitly, so the page orchestrators can run the same
// logic against their transaction while standalone callers work against the
// service's own repository.

// AllocateAvailablePath generates a slug from baseName and prefix and probes
// the store until an unused path is found, suffixing _1, _2, and so on.
//
// Allocation is check-then-insert: two concurrent calls with the same base
// name can both observe a candidate as free. The insert's unique constraint
// is the backstop; callers see ErrRoutePathTaken and may retry.
func (s *service) AllocateAvailablePath(ctx context.Context, baseName, prefix string) (string, error) {
	return allocateAvailablePath(ctx, s.repo, baseName, prefix, uuid.Nil)
}

// allocateAvailablePath probes for a free path. A route owning the candidate
// path whose id equals exclude does not count as a collision; UpsertRoute
// uses that so an unchanged title keeps its path.
func allocateAvailablePath(ctx context.Context, repo Repository, baseName, prefix string, exclude uuid.UUID) (string, error) {
	base := GenerateSlug(baseName, prefix)

	candidate := base
	for i := 1; ; i++ {
		existing, err := repo.GetRouteByPath(ctx, candidate)
		if errors.Is(err, ErrRouteNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("probing path %q: %w", candidate, err)
		}
		if existing.ID == exclude {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
}

// CreateRoute persists a new route. When req.Path is empty an available path
// is allocated from req.Title and req.Prefix.
func (s *service) CreateRoute(ctx context.Context, req CreateRouteRequest) (*Route, error) {
	route, err := createRoute(ctx, s.repo, req)
	if err != nil {
		return nil, err
	}
	s.events.RouteAllocated(ctx, route)
	return route, nil
}

func createRoute(ctx context.Context, repo Repository, req CreateRouteRequest) (*Route, error) {
	path := req.Path
	if path == "" {
		var err error
		path, err = allocateAvailablePath(ctx, repo, req.Title, req.Prefix, uuid.Nil)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	route := &Route{
		ID:          uuid.New(),
		Path:        path,
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		IDToFetch:   req.IDToFetch,
		Type:        req.Type,
		Image:       req.Image,
		Public:      req.Public,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := repo.CreateRoute(ctx, route); err != nil {
		return nil, &RouteError{RouteID: route.ID, Op: "create", Err: err}
	}
	return route, nil
}

// UpdateRoute loads the route, applies only the fields present in patch, and
// persists it. A path change is checked for global uniqueness excluding the
// route's own id; collisions fail with ErrRoutePathTaken and leave the
// stored path unchanged.
func (s *service) UpdateRoute(ctx context.Context, id uuid.UUID, patch RoutePatch) (*Route, error) {
	return updateRoute(ctx, s.repo, id, patch)
}

func updateRoute(ctx context.Context, repo Repository, id uuid.UUID, patch RoutePatch) (*Route, error) {
	route, err := repo.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Path != nil && *patch.Path != route.Path {
		owner, err := repo.GetRouteByPath(ctx, *patch.Path)
		if err == nil && owner.ID != id {
			return nil, ErrRoutePathTaken
		}
		if err != nil && !errors.Is(err, ErrRouteNotFound) {
			return nil, err
		}
		route.Path = *patch.Path
	}

	applyRoutePatch(route, patch)
	route.UpdatedAt = time.Now().UTC()

	if err := repo.UpdateRoute(ctx, route); err != nil {
		return nil, &RouteError{RouteID: id, Op: "update", Err: err}
	}
	return route, nil
}

// UpsertRoute regenerates the route's path from patch.Title and the prefix,
// then saves with create-or-replace semantics under the given id. The probe
// excludes the route's own id, so an unchanged title keeps its path and a
// changed one can never steal another route's.
func (s *service) UpsertRoute(ctx context.Context, id uuid.UUID, prefix string, patch RoutePatch) (*Route, error) {
	return upsertRoute(ctx, s.repo, id, prefix, patch)
}

func upsertRoute(ctx context.Context, repo Repository, id uuid.UUID, prefix string, patch RoutePatch) (*Route, error) {
	now := time.Now().UTC()

	route, err := repo.GetRoute(ctx, id)
	if errors.Is(err, ErrRouteNotFound) {
		route = &Route{ID: id, CreatedAt: now}
	} else if err != nil {
		return nil, err
	}

	applyRoutePatch(route, patch)

	if patch.Title != nil {
		path, err := allocateAvailablePath(ctx, repo, *patch.Title, prefix, id)
		if err != nil {
			return nil, err
		}
		route.Path = path
	}
	route.UpdatedAt = now

	if err := repo.SaveRoute(ctx, route); err != nil {
		return nil, &RouteError{RouteID: id, Op: "upsert", Err: err}
	}
	return route, nil
}

func applyRoutePatch(route *Route, patch RoutePatch) {
	if patch.Title != nil {
		route.Title = *patch.Title
	}
	if patch.Subtitle != nil {
		route.Subtitle = *patch.Subtitle
	}
	if patch.Description != nil {
		route.Description = *patch.Description
	}
	if patch.Image != nil {
		route.Image = *patch.Image
	}
	if patch.Public != nil {
		route.Public = *patch.Public
	}
	if patch.Type != nil {
		route.Type = *patch.Type
	}
}

// RemoveRoute deletes a route by id. Removing an absent route is a no-op.
func (s *service) RemoveRoute(ctx context.Context, id uuid.UUID) error {
	return removeRoute(ctx, s.repo, s.events, id)
}

func removeRoute(ctx context.Context, repo Repository, events EventSink, id uuid.UUID) error {
	_, err := repo.GetRoute(ctx, id)
	if errors.Is(err, ErrRouteNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := repo.DeleteRoute(ctx, id); err != nil {
		return &RouteError{RouteID: id, Op: "remove", Err: err}
	}
	events.RouteRemoved(ctx, id)
	return nil
}

// RemoveRouteByEntity deletes the route owned by (entityType, entityID).
// Idempotent like RemoveRoute.
func (s *service) RemoveRouteByEntity(ctx context.Context, entityType string, entityID uuid.UUID) error {
	route, err := s.repo.GetRouteByEntity(ctx, entityType, entityID)
	if errors.Is(err, ErrRouteNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return removeRoute(ctx, s.repo, s.events, route.ID)
}

// GetRoute returns a route by id.
func (s *service) GetRoute(ctx context.Context, id uuid.UUID) (*Route, error) {
	return s.repo.GetRoute(ctx, id)
}

// GetRouteByPath resolves a route by its slug. This is the read-side entry
// point the public site uses to fetch content for a URL.
func (s *service) GetRouteByPath(ctx context.Context, path string) (*Route, error) {
	return s.repo.GetRouteByPath(ctx, path)
}

// ListRoutes returns all routes.
func (s *service) ListRoutes(ctx context.Context) ([]*Route, error) {
	return s.repo.ListRoutes(ctx)
}
