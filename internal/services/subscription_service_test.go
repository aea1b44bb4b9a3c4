package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franciscosanchezn/gin-recipes-api/internal/testutil"
)

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewSubscriptionService(db)

	reader := testutil.CreateUser(t, db, "reader")
	chef := testutil.CreateUser(t, db, "chef")
	testutil.CreateRecipe(t, db, chef, "first", nil)
	testutil.CreateRecipe(t, db, chef, "second", nil)
	testutil.CreateRecipe(t, db, chef, "third", nil)

	t.Run("self follow always fails", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, reader.ID, reader.ID, -1)
		assert.ErrorIs(t, err, ErrSelfFollow)
	})

	t.Run("unknown author", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, reader.ID, 9999, -1)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, svc.Unsubscribe(ctx, reader.ID, 9999), ErrNotFound)
	})

	t.Run("subscribe returns the author with limited recipes", func(t *testing.T) {
		sub, err := svc.Subscribe(ctx, reader.ID, chef.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, chef.ID, sub.Author.ID)
		assert.Equal(t, int64(3), sub.RecipesCount)
		require.Len(t, sub.Recipes, 2)
		assert.Equal(t, "third", sub.Recipes[0].Name)
	})

	t.Run("duplicate subscription", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, reader.ID, chef.ID, -1)
		assert.ErrorIs(t, err, ErrAlreadySubscribed)
	})

	t.Run("followed among", func(t *testing.T) {
		followed, err := svc.FollowedAmong(ctx, reader.ID, []uint{chef.ID, reader.ID})
		require.NoError(t, err)
		assert.True(t, followed[chef.ID])
		assert.False(t, followed[reader.ID])

		anon, err := svc.FollowedAmong(ctx, 0, []uint{chef.ID})
		require.NoError(t, err)
		assert.Empty(t, anon)
	})

	t.Run("unsubscribe then unsubscribe again", func(t *testing.T) {
		require.NoError(t, svc.Unsubscribe(ctx, reader.ID, chef.ID))
		assert.ErrorIs(t, svc.Unsubscribe(ctx, reader.ID, chef.ID), ErrNotSubscribed)
	})
}

func TestSubscriptionsList(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewSubscriptionService(db)

	reader := testutil.CreateUser(t, db, "reader")
	chefs := []string{"ann", "ben", "cid"}
	for _, name := range chefs {
		chef := testutil.CreateUser(t, db, name)
		testutil.CreateRecipe(t, db, chef, name+"-soup", nil)
		testutil.CreateRecipe(t, db, chef, name+"-stew", nil)
		_, err := svc.Subscribe(ctx, reader.ID, chef.ID, -1)
		require.NoError(t, err)
	}

	subs, total, err := svc.Subscriptions(ctx, reader.ID, Page{Number: 1, Limit: 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, subs, 2)
	assert.Equal(t, "ann", subs[0].Author.Username)
	assert.Equal(t, int64(2), subs[0].RecipesCount)
	require.Len(t, subs[0].Recipes, 1)
	assert.Equal(t, "ann-stew", subs[0].Recipes[0].Name)

	subs, _, err = svc.Subscriptions(ctx, reader.ID, Page{Number: 2, Limit: 2}, -1)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "cid", subs[0].Author.Username)
	assert.Len(t, subs[0].Recipes, 2)

	none, total, err := svc.Subscriptions(ctx, subs[0].Author.ID, Page{Number: 1, Limit: 6}, -1)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}
