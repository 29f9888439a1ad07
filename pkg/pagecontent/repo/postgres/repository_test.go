package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubinho/content-backend/migrations"
	"github.com/clubinho/content-backend/pkg/pagecontent"
	"github.com/clubinho/content-backend/pkg/pagecontent/repo/postgres"
	memorystorage "github.com/clubinho/content-backend/pkg/pagecontent/storage/memory"
)

type testDB struct {
	pool *pgxpool.Pool
}

// newTestDB connects to the database named by TEST_DATABASE_URL and applies
// the embedded migrations. Tests are skipped when no database is configured.
func newTestDB(t *testing.T) *testDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, pool.Ping(ctx), "failed to ping test database")

	src, err := iofs.New(migrations.FS, "postgres")
	require.NoError(t, err)
	m, err := migrate.NewWithSourceInstance("iofs", src, connString)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("apply migrations: %v", err)
	}

	return &testDB{pool: pool}
}

func (db *testDB) cleanup(t *testing.T) {
	t.Helper()
	_, err := db.pool.Exec(context.Background(),
		`TRUNCATE media_items, sections, pages, routes CASCADE`)
	require.NoError(t, err)
}

func runTest(t *testing.T, fn func(t *testing.T, db *testDB)) {
	t.Helper()
	db := newTestDB(t)
	defer db.pool.Close()
	db.cleanup(t)
	fn(t, db)
}

func testRoute(path string) *pagecontent.Route {
	now := time.Now().UTC()
	return &pagecontent.Route{
		ID:         uuid.New(),
		Path:       path,
		Title:      path,
		EntityType: "GalleryPage",
		EntityID:   uuid.New(),
		IDToFetch:  uuid.New(),
		Type:       pagecontent.RouteTypePage,
		Public:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestPostgresRouteCRUD(t *testing.T) {
	runTest(t, func(t *testing.T, db *testDB) {
		repo := postgres.NewWithPool(db.pool)
		ctx := context.Background()

		route := testRoute("galeria_fotos")
		require.NoError(t, repo.CreateRoute(ctx, route))

		got, err := repo.GetRoute(ctx, route.ID)
		require.NoError(t, err)
		assert.Equal(t, route.Path, got.Path)
		assert.True(t, got.Public)

		byPath, err := repo.GetRouteByPath(ctx, "galeria_fotos")
		require.NoError(t, err)
		assert.Equal(t, route.ID, byPath.ID)

		byEntity, err := repo.GetRouteByEntity(ctx, route.EntityType, route.EntityID)
		require.NoError(t, err)
		assert.Equal(t, route.ID, byEntity.ID)

		route.Title = "renamed"
		route.Path = "galeria_fotos_novas"
		route.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.UpdateRoute(ctx, route))

		_, err = repo.GetRouteByPath(ctx, "galeria_fotos")
		assert.ErrorIs(t, err, pagecontent.ErrRouteNotFound)

		require.NoError(t, repo.DeleteRoute(ctx, route.ID))
		_, err = repo.GetRoute(ctx, route.ID)
		assert.ErrorIs(t, err, pagecontent.ErrRouteNotFound)
		assert.ErrorIs(t, repo.DeleteRoute(ctx, route.ID), pagecontent.ErrRouteNotFound)
	})
}

func TestPostgresRoutePathUnique(t *testing.T) {
	runTest(t, func(t *testing.T, db *testDB) {
		repo := postgres.NewWithPool(db.pool)
		ctx := context.Background()

		require.NoError(t, repo.CreateRoute(ctx, testRoute("galeria_fotos")))

		// The routes_path unique constraint maps to the domain error.
		err := repo.CreateRoute(ctx, testRoute("galeria_fotos"))
		assert.ErrorIs(t, err, pagecontent.ErrRoutePathTaken)

		other := testRoute("galeria_outras")
		require.NoError(t, repo.CreateRoute(ctx, other))
		other.Path = "galeria_fotos"
		assert.ErrorIs(t, repo.UpdateRoute(ctx, other), pagecontent.ErrRoutePathTaken)
		assert.ErrorIs(t, repo.SaveRoute(ctx, other), pagecontent.ErrRoutePathTaken)
	})
}

func TestPostgresSaveRouteUpserts(t *testing.T) {
	runTest(t, func(t *testing.T, db *testDB) {
		repo := postgres.NewWithPool(db.pool)
		ctx := context.Background()

		route := testRoute("galeria_fotos")
		require.NoError(t, repo.SaveRoute(ctx, route))

		route.Title = "renamed"
		route.Path = "galeria_fotos_novas"
		require.NoError(t, repo.SaveRoute(ctx, route))

		got, err := repo.GetRoute(ctx, route.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Title)
		assert.Equal(t, "galeria_fotos_novas", got.Path)
	})
}

func TestPostgresWithTxRollback(t *testing.T) {
	runTest(t, func(t *testing.T, db *testDB) {
		repo := postgres.NewWithPool(db.pool)
		ctx := context.Background()

		err := repo.WithTx(ctx, func(ctx context.Context, tx pagecontent.Repository) error {
			if err := tx.CreateRoute(ctx, testRoute("galeria_fotos")); err != nil {
				return err
			}
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		_, err = repo.GetRouteByPath(ctx, "galeria_fotos")
		assert.ErrorIs(t, err, pagecontent.ErrRouteNotFound)
	})
}

func TestPostgresRouteDeleteWhileReferenced(t *testing.T) {
	runTest(t, func(t *testing.T, db *testDB) {
		repo := postgres.NewWithPool(db.pool)
		ctx := context.Background()

		route := testRoute("galeria_fotos")
		require.NoError(t, repo.CreateRoute(ctx, route))

		now := time.Now().UTC()
		page := &pagecontent.Page{
			ID:        uuid.New(),
			Kind:      pagecontent.PageKindGallery,
			Title:     "Fotos",
			RouteID:   route.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, repo.CreatePage(ctx, page))

		err := repo.DeleteRoute(ctx, route.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "referential integrity")

		page.RouteID = uuid.Nil
		require.NoError(t, repo.UpdatePage(ctx, page))
		assert.NoError(t, repo.DeleteRoute(ctx, route.ID))
	})
}

func TestPostgresMediaBatchOperations(t *testing.T) {
	runTest(t, func(t *testing.T, db *testDB) {
		repo := postgres.NewWithPool(db.pool)
		ctx := context.Background()

		targetA := uuid.New()
		targetB := uuid.New()
		base := time.Now().UTC().Truncate(time.Millisecond)

		var ids []uuid.UUID
		for i, tc := range []struct {
			title  string
			target uuid.UUID
		}{
			{"first", targetA},
			{"second", targetA},
			{"third", targetB},
		} {
			item := &pagecontent.MediaItem{
				ID:         uuid.New(),
				Title:      tc.title,
				MediaType:  pagecontent.MediaTypeImage,
				SourceType: pagecontent.SourceTypeLink,
				URL:        "https://example.com/" + tc.title,
				TargetID:   tc.target,
				TargetType: "GallerySection",
				CreatedAt:  base.Add(time.Duration(i) * time.Millisecond),
				UpdatedAt:  base.Add(time.Duration(i) * time.Millisecond),
			}
			require.NoError(t, repo.CreateMediaItem(ctx, item))
			ids = append(ids, item.ID)
		}

		items, err := repo.ListMediaByTargets(ctx, []uuid.UUID{targetA, targetB}, "GallerySection")
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "first", items[0].Title)
		assert.Equal(t, "third", items[2].Title)

		onlyA, err := repo.ListMediaByTarget(ctx, targetA, "GallerySection")
		require.NoError(t, err)
		assert.Len(t, onlyA, 2)

		require.NoError(t, repo.DeleteMediaItems(ctx, ids[:2]))
		items, err = repo.ListMediaByTargets(ctx, []uuid.UUID{targetA, targetB}, "GallerySection")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestPostgresSectionOperations(t *testing.T) {
	runTest(t, func(t *testing.T, db *testDB) {
		repo := postgres.NewWithPool(db.pool)
		ctx := context.Background()

		now := time.Now().UTC()
		page := &pagecontent.Page{
			ID:        uuid.New(),
			Kind:      pagecontent.PageKindGallery,
			Title:     "Fotos",
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, repo.CreatePage(ctx, page))

		var ids []uuid.UUID
		for i, caption := range []string{"Manhã", "Tarde"} {
			sec := &pagecontent.Section{
				ID:        uuid.New(),
				PageID:    page.ID,
				Caption:   caption,
				Position:  i,
				CreatedAt: now,
				UpdatedAt: now,
			}
			require.NoError(t, repo.CreateSection(ctx, sec))
			ids = append(ids, sec.ID)
		}

		sections, err := repo.ListSections(ctx, page.ID)
		require.NoError(t, err)
		require.Len(t, sections, 2)
		assert.Equal(t, "Manhã", sections[0].Caption)

		sections[0].Caption = "Manhã Livre"
		require.NoError(t, repo.UpdateSection(ctx, sections[0]))

		require.NoError(t, repo.DeleteSections(ctx, ids))
		sections, err = repo.ListSections(ctx, page.ID)
		require.NoError(t, err)
		assert.Empty(t, sections)
	})
}

// TestPostgresDeletePageScript runs the full delete script against the real
// schema: the route unlink must precede the route delete or the foreign key
// rejects it.
func TestPostgresDeletePageScript(t *testing.T) {
	runTest(t, func(t *testing.T, db *testDB) {
		repo := postgres.NewWithPool(db.pool)
		store := memorystorage.New()
		svc, err := pagecontent.New(
			pagecontent.WithRepository(repo),
			pagecontent.WithBlobStore(store),
		)
		require.NoError(t, err)
		ctx := context.Background()

		view, err := svc.CreatePage(ctx, pagecontent.CreatePageRequest{
			Kind:        pagecontent.PageKindGallery,
			Title:       "Fotos de Natal",
			Description: "Registro",
			Sections: []pagecontent.SectionInput{
				{
					Caption: "Manhã",
					Media: []pagecontent.MediaInput{{
						Title:        "Capa",
						MediaType:    pagecontent.MediaTypeImage,
						SourceType:   pagecontent.SourceTypeUpload,
						FileFieldKey: "cover",
					}},
				},
			},
		}, map[string]pagecontent.UploadFile{
			"cover": {Name: "cover.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")},
		})
		require.NoError(t, err)
		require.Equal(t, "galeria_fotos_de_natal", view.Route.Path)

		require.NoError(t, svc.DeletePage(ctx, view.Page.ID))

		_, err = repo.GetPage(ctx, view.Page.ID)
		assert.ErrorIs(t, err, pagecontent.ErrPageNotFound)
		_, err = repo.GetRoute(ctx, view.Route.ID)
		assert.ErrorIs(t, err, pagecontent.ErrRouteNotFound)

		sections, err := repo.ListSections(ctx, view.Page.ID)
		require.NoError(t, err)
		assert.Empty(t, sections)
		assert.Equal(t, 0, store.Len())
	})
}
