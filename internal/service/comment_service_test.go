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

func TestComments_ReviewMustBelongToTitle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := testutil.CreateTitle(t, e.db, "A", 2000, nil)
	b := testutil.CreateTitle(t, e.db, "B", 2001, nil)
	review := testutil.CreateReview(t, e.db, b, e.alice, 5)
	comment := testutil.CreateComment(t, e.db, review, e.bob, "hello")

	_, _, err := e.commentS.List(ctx, a.ID, review.ID, repository.Page{})
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.commentS.Get(ctx, a.ID, review.ID, comment.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.commentS.Create(ctx, e.bob, a.ID, review.ID, "sneaky")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.commentS.Update(ctx, e.bob, a.ID, review.ID, comment.ID, strPtr("x"))
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = e.commentS.Delete(ctx, e.bob, a.ID, review.ID, comment.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	comments, total, err := e.commentS.List(ctx, b.ID, review.ID, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, comments, 1)
	assert.Equal(t, "bob", comments[0].Author.Username)
}

func TestCommentCreate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	title := testutil.CreateTitle(t, e.db, "Dune", 1965, nil)
	review := testutil.CreateReview(t, e.db, title, e.alice, 5)

	_, err := e.commentS.Create(ctx, nil, title.ID, review.ID, "anon")
	assert.ErrorIs(t, err, service.ErrUnauthenticated)

	_, err = e.commentS.Create(ctx, e.bob, title.ID, review.ID, "")
	assert.ErrorIs(t, err, service.ErrValidation)

	comment, err := e.commentS.Create(ctx, e.bob, title.ID, review.ID, "nice review")
	require.NoError(t, err)
	assert.Equal(t, "nice review", comment.Text)
	assert.Equal(t, "bob", comment.Author.Username)

	_, err = e.commentS.Create(ctx, e.bob, title.ID, review.ID, "and another")
	assert.NoError(t, err, "comments are not limited per author")
}

func TestCommentUpdateDelete_Permissions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	title := testutil.CreateTitle(t, e.db, "Dune", 1965, nil)
	review := testutil.CreateReview(t, e.db, title, e.alice, 5)
	comment := testutil.CreateComment(t, e.db, review, e.bob, "hello")

	_, err := e.commentS.Update(ctx, e.alice, title.ID, review.ID, comment.ID, strPtr("hijack"))
	assert.ErrorIs(t, err, service.ErrPermission, "the review author does not own the comment")

	updated, err := e.commentS.Update(ctx, e.bob, title.ID, review.ID, comment.ID, strPtr("edited"))
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	err = e.commentS.Delete(ctx, e.alice, title.ID, review.ID, comment.ID)
	assert.ErrorIs(t, err, service.ErrPermission)

	require.NoError(t, e.commentS.Delete(ctx, e.moderator, title.ID, review.ID, comment.ID))
	_, err = e.commentS.Get(ctx, title.ID, review.ID, comment.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
