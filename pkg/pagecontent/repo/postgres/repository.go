// Package postgres provides a pagecontent.Repository backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubinho/content-backend/pkg/pagecontent"
)

// DBTX is an interface that allows us to use either a connection pool or a
// transaction behind the same repository code.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements pagecontent.Repository using PostgreSQL
type Repository struct {
	db   DBTX
	pool *pgxpool.Pool
}

// NewWithPool creates a repository on a connection pool. Only a pool-backed
// repository can open transactions.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool, pool: pool}
}

// New creates a repository on an existing handle (pool or transaction).
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx begins a transaction, runs fn against a transaction-scoped
// repository, and commits on success or rolls back on error. A repository
// that is already transaction-scoped joins the current transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx pagecontent.Repository) error) error {
	if r.pool == nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &Repository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) handleError(op string, notFound error, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "routes_path") {
				return pagecontent.ErrRoutePathTaken
			}
			return fmt.Errorf("duplicate entry in %s", op)
		case "23503": // foreign_key_violation
			return fmt.Errorf("referential integrity violation in %s: %s", op, pgErr.ConstraintName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("database error in %s: %w", op, err)
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *pagecontent.Page) error {
	query := `
		INSERT INTO pages (id, kind, title, subtitle, description, route_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	routeID := nullableUUID(page.RouteID)
	_, err := r.db.Exec(ctx, query,
		page.ID, page.Kind, page.Title, page.Subtitle, page.Description,
		routeID, page.CreatedAt, page.UpdatedAt)
	if err != nil {
		return r.handleError("create page", pagecontent.ErrPageNotFound, err)
	}
	return nil
}

func (r *Repository) GetPage(ctx context.Context, id uuid.UUID) (*pagecontent.Page, error) {
	query := `
		SELECT id, kind, title, subtitle, description, COALESCE(route_id, '00000000-0000-0000-0000-000000000000'), created_at, updated_at
		FROM pages WHERE id = $1`

	var page pagecontent.Page
	err := r.db.QueryRow(ctx, query, id).Scan(
		&page.ID, &page.Kind, &page.Title, &page.Subtitle, &page.Description,
		&page.RouteID, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		return nil, r.handleError("get page", pagecontent.ErrPageNotFound, err)
	}
	return &page, nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *pagecontent.Page) error {
	query := `
		UPDATE pages
		SET title = $2, subtitle = $3, description = $4, route_id = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		page.ID, page.Title, page.Subtitle, page.Description,
		nullableUUID(page.RouteID), page.UpdatedAt)
	if err != nil {
		return r.handleError("update page", pagecontent.ErrPageNotFound, err)
	}
	if tag.RowsAffected() == 0 {
		return pagecontent.ErrPageNotFound
	}
	return nil
}

func (r *Repository) DeletePage(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return r.handleError("delete page", pagecontent.ErrPageNotFound, err)
	}
	if tag.RowsAffected() == 0 {
		return pagecontent.ErrPageNotFound
	}
	return nil
}

func (r *Repository) ListPages(ctx context.Context, kind pagecontent.PageKind) ([]*pagecontent.Page, error) {
	query := `
		SELECT id, kind, title, subtitle, description, COALESCE(route_id, '00000000-0000-0000-0000-000000000000'), created_at, updated_at
		FROM pages WHERE kind = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, kind)
	if err != nil {
		return nil, r.handleError("list pages", pagecontent.ErrPageNotFound, err)
	}
	defer rows.Close()

	var pages []*pagecontent.Page
	for rows.Next() {
		var page pagecontent.Page
		if err := rows.Scan(
			&page.ID, &page.Kind, &page.Title, &page.Subtitle, &page.Description,
			&page.RouteID, &page.CreatedAt, &page.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, &page)
	}
	return pages, rows.Err()
}

// Section operations

func (r *Repository) CreateSection(ctx context.Context, section *pagecontent.Section) error {
	query := `
		INSERT INTO sections (id, page_id, caption, description, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		section.ID, section.PageID, section.Caption, section.Description,
		section.Position, section.CreatedAt, section.UpdatedAt)
	if err != nil {
		return r.handleError("create section", pagecontent.ErrSectionNotFound, err)
	}
	return nil
}

func (r *Repository) UpdateSection(ctx context.Context, section *pagecontent.Section) error {
	query := `
		UPDATE sections SET caption = $2, description = $3, position = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		section.ID, section.Caption, section.Description, section.Position, section.UpdatedAt)
	if err != nil {
		return r.handleError("update section", pagecontent.ErrSectionNotFound, err)
	}
	if tag.RowsAffected() == 0 {
		return pagecontent.ErrSectionNotFound
	}
	return nil
}

func (r *Repository) ListSections(ctx context.Context, pageID uuid.UUID) ([]*pagecontent.Section, error) {
	query := `
		SELECT id, page_id, caption, description, position, created_at, updated_at
		FROM sections WHERE page_id = $1 ORDER BY position`

	rows, err := r.db.Query(ctx, query, pageID)
	if err != nil {
		return nil, r.handleError("list sections", pagecontent.ErrSectionNotFound, err)
	}
	defer rows.Close()

	var sections []*pagecontent.Section
	for rows.Next() {
		var sec pagecontent.Section
		if err := rows.Scan(
			&sec.ID, &sec.PageID, &sec.Caption, &sec.Description,
			&sec.Position, &sec.CreatedAt, &sec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, &sec)
	}
	return sections, rows.Err()
}

func (r *Repository) DeleteSections(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM sections WHERE id = ANY($1)`, ids)
	if err != nil {
		return r.handleError("delete sections", pagecontent.ErrSectionNotFound, err)
	}
	return nil
}

// Route operations

const routeColumns = `id, path, title, subtitle, description, entity_type, entity_id, id_to_fetch, type, image, public, created_at, updated_at`

func scanRoute(row pgx.Row) (*pagecontent.Route, error) {
	var route pagecontent.Route
	err := row.Scan(
		&route.ID, &route.Path, &route.Title, &route.Subtitle, &route.Description,
		&route.EntityType, &route.EntityID, &route.IDToFetch, &route.Type,
		&route.Image, &route.Public, &route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &route, nil
}

func (r *Repository) CreateRoute(ctx context.Context, route *pagecontent.Route) error {
	query := `
		INSERT INTO routes (` + routeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		route.ID, route.Path, route.Title, route.Subtitle, route.Description,
		route.EntityType, route.EntityID, route.IDToFetch, route.Type,
		route.Image, route.Public, route.CreatedAt, route.UpdatedAt)
	if err != nil {
		return r.handleError("create route", pagecontent.ErrRouteNotFound, err)
	}
	return nil
}

func (r *Repository) GetRoute(ctx context.Context, id uuid.UUID) (*pagecontent.Route, error) {
	route, err := scanRoute(r.db.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = $1`, id))
	if err != nil {
		return nil, r.handleError("get route", pagecontent.ErrRouteNotFound, err)
	}
	return route, nil
}

func (r *Repository) GetRouteByPath(ctx context.Context, path string) (*pagecontent.Route, error) {
	route, err := scanRoute(r.db.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE path = $1`, path))
	if err != nil {
		return nil, r.handleError("get route by path", pagecontent.ErrRouteNotFound, err)
	}
	return route, nil
}

func (r *Repository) GetRouteByEntity(ctx context.Context, entityType string, entityID uuid.UUID) (*pagecontent.Route, error) {
	route, err := scanRoute(r.db.QueryRow(ctx,
		`SELECT `+routeColumns+` FROM routes WHERE entity_type = $1 AND entity_id = $2`,
		entityType, entityID))
	if err != nil {
		return nil, r.handleError("get route by entity", pagecontent.ErrRouteNotFound, err)
	}
	return route, nil
}

func (r *Repository) UpdateRoute(ctx context.Context, route *pagecontent.Route) error {
	query := `
		UPDATE routes
		SET path = $2, title = $3, subtitle = $4, description = $5, entity_type = $6,
		    entity_id = $7, id_to_fetch = $8, type = $9, image = $10, public = $11, updated_at = $12
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		route.ID, route.Path, route.Title, route.Subtitle, route.Description,
		route.EntityType, route.EntityID, route.IDToFetch, route.Type,
		route.Image, route.Public, route.UpdatedAt)
	if err != nil {
		return r.handleError("update route", pagecontent.ErrRouteNotFound, err)
	}
	if tag.RowsAffected() == 0 {
		return pagecontent.ErrRouteNotFound
	}
	return nil
}

func (r *Repository) SaveRoute(ctx context.Context, route *pagecontent.Route) error {
	query := `
		INSERT INTO routes (` + routeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE
		SET path = EXCLUDED.path, title = EXCLUDED.title, subtitle = EXCLUDED.subtitle,
		    description = EXCLUDED.description, entity_type = EXCLUDED.entity_type,
		    entity_id = EXCLUDED.entity_id, id_to_fetch = EXCLUDED.id_to_fetch,
		    type = EXCLUDED.type, image = EXCLUDED.image, public = EXCLUDED.public,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		route.ID, route.Path, route.Title, route.Subtitle, route.Description,
		route.EntityType, route.EntityID, route.IDToFetch, route.Type,
		route.Image, route.Public, route.CreatedAt, route.UpdatedAt)
	if err != nil {
		return r.handleError("save route", pagecontent.ErrRouteNotFound, err)
	}
	return nil
}

func (r *Repository) DeleteRoute(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return r.handleError("delete route", pagecontent.ErrRouteNotFound, err)
	}
	if tag.RowsAffected() == 0 {
		return pagecontent.ErrRouteNotFound
	}
	return nil
}

func (r *Repository) ListRoutes(ctx context.Context) ([]*pagecontent.Route, error) {
	rows, err := r.db.Query(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY path`)
	if err != nil {
		return nil, r.handleError("list routes", pagecontent.ErrRouteNotFound, err)
	}
	defer rows.Close()

	var routes []*pagecontent.Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		routes = append(routes, route)
	}
	return routes, rows.Err()
}

// Media operations

const mediaColumns = `id, title, description, media_type, source_type, platform, url, is_local_file, original_name, size, target_id, target_type, created_at, updated_at`

func scanMediaItem(row pgx.Row) (*pagecontent.MediaItem, error) {
	var item pagecontent.MediaItem
	err := row.Scan(
		&item.ID, &item.Title, &item.Description, &item.MediaType, &item.SourceType,
		&item.Platform, &item.URL, &item.IsLocalFile, &item.OriginalName, &item.Size,
		&item.TargetID, &item.TargetType, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) CreateMediaItem(ctx context.Context, item *pagecontent.MediaItem) error {
	query := `
		INSERT INTO media_items (` + mediaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.db.Exec(ctx, query,
		item.ID, item.Title, item.Description, item.MediaType, item.SourceType,
		item.Platform, item.URL, item.IsLocalFile, item.OriginalName, item.Size,
		item.TargetID, item.TargetType, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return r.handleError("create media item", pagecontent.ErrMediaItemNotFound, err)
	}
	return nil
}

func (r *Repository) UpdateMediaItem(ctx context.Context, item *pagecontent.MediaItem) error {
	query := `
		UPDATE media_items
		SET title = $2, description = $3, media_type = $4, source_type = $5, platform = $6,
		    url = $7, is_local_file = $8, original_name = $9, size = $10,
		    target_id = $11, target_type = $12, updated_at = $13
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		item.ID, item.Title, item.Description, item.MediaType, item.SourceType,
		item.Platform, item.URL, item.IsLocalFile, item.OriginalName, item.Size,
		item.TargetID, item.TargetType, item.UpdatedAt)
	if err != nil {
		return r.handleError("update media item", pagecontent.ErrMediaItemNotFound, err)
	}
	if tag.RowsAffected() == 0 {
		return pagecontent.ErrMediaItemNotFound
	}
	return nil
}

func (r *Repository) GetMediaItem(ctx context.Context, id uuid.UUID) (*pagecontent.MediaItem, error) {
	item, err := scanMediaItem(r.db.QueryRow(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE id = $1`, id))
	if err != nil {
		return nil, r.handleError("get media item", pagecontent.ErrMediaItemNotFound, err)
	}
	return item, nil
}

func (r *Repository) ListMediaByTarget(ctx context.Context, targetID uuid.UUID, targetType string) ([]*pagecontent.MediaItem, error) {
	return r.ListMediaByTargets(ctx, []uuid.UUID{targetID}, targetType)
}

func (r *Repository) ListMediaByTargets(ctx context.Context, targetIDs []uuid.UUID, targetType string) ([]*pagecontent.MediaItem, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + mediaColumns + `
		FROM media_items WHERE target_id = ANY($1) AND target_type = $2
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, targetIDs, targetType)
	if err != nil {
		return nil, r.handleError("list media by targets", pagecontent.ErrMediaItemNotFound, err)
	}
	defer rows.Close()

	var items []*pagecontent.MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) DeleteMediaItems(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM media_items WHERE id = ANY($1)`, ids)
	if err != nil {
		return r.handleError("delete media items", pagecontent.ErrMediaItemNotFound, err)
	}
	return nil
}

func nullableUUID(id uuid.UUID) interface{} {
	if id == uuid.Nil {
		return nil
	}
	return id
}

var _ pagecontent.Repository = (*Repository)(nil)
