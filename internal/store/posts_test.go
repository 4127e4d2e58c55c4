// ABOUTME: Tests for news post store operations
// ABOUTME: Covers CRUD, slug lookup, publish toggling, and list filtering

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPost(id, slug string) *Post {
	return &Post{
		ID:      id,
		Slug:    slug,
		TitleBG: "Нова новина",
		TitleEN: "News item",
		BodyBG:  "Текст на **новината**.",
		BodyEN:  "Body of the **post**.",
	}
}

func TestPostStore_CreateAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreatePost(ctx, testPost("post-1", "nova-novina")))

	post, err := store.GetPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, "Нова новина", post.TitleBG)
	assert.False(t, post.Published)
	assert.Nil(t, post.PublishedAt)
}

func TestPostStore_GetBySlug(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreatePost(ctx, testPost("post-1", "nova-novina")))

	post, err := store.GetPostBySlug(ctx, "nova-novina")
	require.NoError(t, err)
	assert.Equal(t, "post-1", post.ID)

	_, err = store.GetPostBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostStore_Update(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreatePost(ctx, testPost("post-1", "nova-novina")))

	post, err := store.GetPost(ctx, "post-1")
	require.NoError(t, err)
	post.TitleEN = "Updated title"
	require.NoError(t, store.UpdatePost(ctx, post))

	got, err := store.GetPost(ctx, "post-1")
	require.NoError(t, err)
	assert.Equal(t, "Updated title", got.TitleEN)
}

func TestPostStore_Update_Missing(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.UpdatePost(ctx, testPost("missing", "missing"))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostStore_Publish(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreatePost(ctx, testPost("post-1", "nova-novina")))
	require.NoError(t, store.SetPostPublished(ctx, "post-1", true))

	post, err := store.GetPost(ctx, "post-1")
	require.NoError(t, err)
	assert.True(t, post.Published)
	require.NotNil(t, post.PublishedAt)

	// Unpublishing clears the timestamp
	require.NoError(t, store.SetPostPublished(ctx, "post-1", false))
	post, err = store.GetPost(ctx, "post-1")
	require.NoError(t, err)
	assert.False(t, post.Published)
	assert.Nil(t, post.PublishedAt)
}

func TestPostStore_List_PublishedOnly(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreatePost(ctx, testPost("post-1", "one")))
	require.NoError(t, store.CreatePost(ctx, testPost("post-2", "two")))
	require.NoError(t, store.SetPostPublished(ctx, "post-2", true))

	all, err := store.ListPosts(ctx, false, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	published, err := store.ListPosts(ctx, true, 10)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "post-2", published[0].ID)
}

func TestPostStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreatePost(ctx, testPost("post-1", "one")))
	require.NoError(t, store.DeletePost(ctx, "post-1"))

	_, err := store.GetPost(ctx, "post-1")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = store.DeletePost(ctx, "post-1")
	assert.True(t, errors.Is(err, ErrNotFound))
}
