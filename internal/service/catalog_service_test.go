package service_test

import (
	"context"
	"testing"

	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/Baaaki/yamdb/internal/service"
	"github.com/Baaaki/yamdb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory_Slugs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	category, err := e.catalog.CreateCategory(ctx, e.admin, "Science Fiction", "")
	require.NoError(t, err)
	assert.Equal(t, "science-fiction", category.Slug)

	category, err = e.catalog.CreateCategory(ctx, e.admin, "Фантастика", "")
	require.NoError(t, err)
	assert.Equal(t, "fantastika", category.Slug)

	_, err = e.catalog.CreateCategory(ctx, e.admin, "Sci Fi", "science-fiction")
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = e.catalog.CreateCategory(ctx, e.admin, "Bad", "not a slug!")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = e.catalog.CreateCategory(ctx, e.admin, "", "empty")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCreateGenre(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	genre, err := e.catalog.CreateGenre(ctx, e.admin, "Drama", "drama_genre")
	require.NoError(t, err)
	assert.Equal(t, "drama_genre", genre.Slug)

	_, err = e.catalog.CreateGenre(ctx, e.admin, "Drama", "drama_genre")
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = e.catalog.CreateGenre(ctx, e.moderator, "Horror", "")
	assert.ErrorIs(t, err, service.ErrPermission)

	_, err = e.catalog.CreateGenre(ctx, nil, "Horror", "")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)
}

func TestCatalogDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	testutil.CreateCategory(t, e.db, "Books", "books")
	testutil.CreateGenre(t, e.db, "Drama", "drama")

	assert.ErrorIs(t, e.catalog.DeleteCategory(ctx, e.alice, "books"), service.ErrPermission)
	assert.ErrorIs(t, e.catalog.DeleteCategory(ctx, e.admin, "missing"), service.ErrNotFound)
	assert.ErrorIs(t, e.catalog.DeleteGenre(ctx, e.admin, "missing"), service.ErrNotFound)

	require.NoError(t, e.catalog.DeleteCategory(ctx, e.admin, "books"))
	require.NoError(t, e.catalog.DeleteGenre(ctx, e.admin, "drama"))

	categories, total, err := e.catalog.ListCategories(ctx, "", repository.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, categories)
}

func TestListCategories_Search(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	testutil.CreateCategory(t, e.db, "Films", "films")
	testutil.CreateCategory(t, e.db, "Books", "books")
	testutil.CreateCategory(t, e.db, "Music", "music")

	categories, total, err := e.catalog.ListCategories(ctx, "", repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "books", categories[0].Slug, "ordered by name")

	categories, total, err = e.catalog.ListCategories(ctx, "IL", repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "films", categories[0].Slug)
}
