package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubinho/content-backend/pkg/pagecontent"
	"github.com/clubinho/content-backend/pkg/pagecontent/repo/memory"
)

func newPage(kind pagecontent.PageKind, title string) *pagecontent.Page {
	now := time.Now().UTC()
	return &pagecontent.Page{
		ID:        uuid.New(),
		Kind:      kind,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newRoute(path string) *pagecontent.Route {
	now := time.Now().UTC()
	return &pagecontent.Route{
		ID:         uuid.New(),
		Path:       path,
		Title:      path,
		EntityType: "GalleryPage",
		EntityID:   uuid.New(),
		Type:       pagecontent.RouteTypePage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestPageCRUD(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	page := newPage(pagecontent.PageKindGallery, "Fotos de Natal")
	require.NoError(t, repo.CreatePage(ctx, page))

	got, err := repo.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, page.Title, got.Title)

	// The stored copy is isolated from caller mutation.
	got.Title = "mutated"
	again, err := repo.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fotos de Natal", again.Title)

	page.Title = "Fotos de Páscoa"
	require.NoError(t, repo.UpdatePage(ctx, page))
	again, err = repo.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fotos de Páscoa", again.Title)

	require.NoError(t, repo.DeletePage(ctx, page.ID))
	_, err = repo.GetPage(ctx, page.ID)
	assert.ErrorIs(t, err, pagecontent.ErrPageNotFound)

	assert.ErrorIs(t, repo.UpdatePage(ctx, page), pagecontent.ErrPageNotFound)
	assert.ErrorIs(t, repo.DeletePage(ctx, page.ID), pagecontent.ErrPageNotFound)
}

func TestListPagesFiltersByKind(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	require.NoError(t, repo.CreatePage(ctx, newPage(pagecontent.PageKindGallery, "A")))
	require.NoError(t, repo.CreatePage(ctx, newPage(pagecontent.PageKindGallery, "B")))
	require.NoError(t, repo.CreatePage(ctx, newPage(pagecontent.PageKindVideos, "C")))

	galleries, err := repo.ListPages(ctx, pagecontent.PageKindGallery)
	require.NoError(t, err)
	assert.Len(t, galleries, 2)

	videos, err := repo.ListPages(ctx, pagecontent.PageKindVideos)
	require.NoError(t, err)
	assert.Len(t, videos, 1)
}

func TestRoutePathUniqueness(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	first := newRoute("galeria_fotos")
	require.NoError(t, repo.CreateRoute(ctx, first))

	dup := newRoute("galeria_fotos")
	assert.ErrorIs(t, repo.CreateRoute(ctx, dup), pagecontent.ErrRoutePathTaken)

	second := newRoute("galeria_outras")
	require.NoError(t, repo.CreateRoute(ctx, second))

	second.Path = "galeria_fotos"
	assert.ErrorIs(t, repo.UpdateRoute(ctx, second), pagecontent.ErrRoutePathTaken)
	assert.ErrorIs(t, repo.SaveRoute(ctx, second), pagecontent.ErrRoutePathTaken)
}

func TestRouteUpdateFreesOldPath(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	route := newRoute("galeria_fotos")
	require.NoError(t, repo.CreateRoute(ctx, route))

	route.Path = "galeria_fotos_2024"
	require.NoError(t, repo.UpdateRoute(ctx, route))

	_, err := repo.GetRouteByPath(ctx, "galeria_fotos")
	assert.ErrorIs(t, err, pagecontent.ErrRouteNotFound)

	taken := newRoute("galeria_fotos")
	assert.NoError(t, repo.CreateRoute(ctx, taken))
}

func TestSaveRouteUpserts(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	route := newRoute("galeria_fotos")
	require.NoError(t, repo.SaveRoute(ctx, route))

	route.Title = "renamed"
	route.Path = "galeria_fotos_novas"
	require.NoError(t, repo.SaveRoute(ctx, route))

	got, err := repo.GetRoute(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "galeria_fotos_novas", got.Path)

	_, err = repo.GetRouteByPath(ctx, "galeria_fotos")
	assert.ErrorIs(t, err, pagecontent.ErrRouteNotFound)
}

func TestGetRouteByEntity(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	route := newRoute("galeria_fotos")
	require.NoError(t, repo.CreateRoute(ctx, route))

	got, err := repo.GetRouteByEntity(ctx, route.EntityType, route.EntityID)
	require.NoError(t, err)
	assert.Equal(t, route.ID, got.ID)

	_, err = repo.GetRouteByEntity(ctx, "document", route.EntityID)
	assert.ErrorIs(t, err, pagecontent.ErrRouteNotFound)
}

func TestSectionOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	pageID := uuid.New()
	now := time.Now().UTC()
	var ids []uuid.UUID
	for i, caption := range []string{"Manhã", "Tarde", "Noite"} {
		sec := &pagecontent.Section{
			ID:        uuid.New(),
			PageID:    pageID,
			Caption:   caption,
			Position:  i,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, repo.CreateSection(ctx, sec))
		ids = append(ids, sec.ID)
	}

	sections, err := repo.ListSections(ctx, pageID)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "Manhã", sections[0].Caption)
	assert.Equal(t, "Noite", sections[2].Caption)

	sections[1].Caption = "Tarde Livre"
	require.NoError(t, repo.UpdateSection(ctx, sections[1]))

	require.NoError(t, repo.DeleteSections(ctx, ids[:2]))
	sections, err = repo.ListSections(ctx, pageID)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Noite", sections[0].Caption)
}

func TestMediaByTargetsOrdering(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	target := uuid.New()
	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		item := &pagecontent.MediaItem{
			ID:         uuid.New(),
			Title:      title,
			TargetID:   target,
			TargetType: "GallerySection",
		}
		require.NoError(t, repo.CreateMediaItem(ctx, item))
	}

	items, err := repo.ListMediaByTarget(ctx, target, "GallerySection")
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, title := range titles {
		assert.Equal(t, title, items[i].Title)
	}

	other, err := repo.ListMediaByTarget(ctx, target, "GalleryPage")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestDeleteMediaItemsBatch(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	target := uuid.New()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		item := &pagecontent.MediaItem{ID: uuid.New(), TargetID: target, TargetType: "VideosPage"}
		require.NoError(t, repo.CreateMediaItem(ctx, item))
		ids = append(ids, item.ID)
	}

	require.NoError(t, repo.DeleteMediaItems(ctx, ids[:2]))

	items, err := repo.ListMediaByTarget(ctx, target, "VideosPage")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestWithTxCommit(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	page := newPage(pagecontent.PageKindGallery, "Fotos")
	err := repo.WithTx(ctx, func(ctx context.Context, tx pagecontent.Repository) error {
		return tx.CreatePage(ctx, page)
	})
	require.NoError(t, err)

	got, err := repo.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fotos", got.Title)
}

func TestWithTxRollback(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	kept := newRoute("galeria_antes")
	require.NoError(t, repo.CreateRoute(ctx, kept))

	page := newPage(pagecontent.PageKindGallery, "Fotos")
	err := repo.WithTx(ctx, func(ctx context.Context, tx pagecontent.Repository) error {
		if err := tx.CreatePage(ctx, page); err != nil {
			return err
		}
		if err := tx.CreateRoute(ctx, newRoute("galeria_depois")); err != nil {
			return err
		}
		if err := tx.DeleteRoute(ctx, kept.ID); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	// Everything inside the failed transaction is discarded.
	_, err = repo.GetPage(ctx, page.ID)
	assert.ErrorIs(t, err, pagecontent.ErrPageNotFound)
	_, err = repo.GetRouteByPath(ctx, "galeria_depois")
	assert.ErrorIs(t, err, pagecontent.ErrRouteNotFound)
	_, err = repo.GetRoute(ctx, kept.ID)
	assert.NoError(t, err)
}

func TestWithTxNestedJoins(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	page := newPage(pagecontent.PageKindVideos, "Encontros")
	err := repo.WithTx(ctx, func(ctx context.Context, tx pagecontent.Repository) error {
		return tx.WithTx(ctx, func(ctx context.Context, inner pagecontent.Repository) error {
			return inner.CreatePage(ctx, page)
		})
	})
	require.NoError(t, err)

	_, err = repo.GetPage(ctx, page.ID)
	assert.NoError(t, err)
}
