package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
	"github.com/franciscosanchezn/gin-recipes-api/internal/testutil"
)

func TestMembershipSets(t *testing.T) {
	testCases := []struct {
		name       string
		newService func(db *gorm.DB) MembershipService
		errPresent error
		errAbsent  error
		model      interface{}
	}{
		{
			name:       "favorites",
			newService: NewFavoriteService,
			errPresent: ErrAlreadyInFavorites,
			errAbsent:  ErrNotInFavorites,
			model:      &models.Favorite{},
		},
		{
			name:       "shopping cart",
			newService: NewShoppingCartService,
			errPresent: ErrAlreadyInShoppingCart,
			errAbsent:  ErrNotInShoppingCart,
			model:      &models.ShoppingCartItem{},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := testutil.NewDB(t)
			svc := tt.newService(db)

			user := testutil.CreateUser(t, db, "alice")
			author := testutil.CreateUser(t, db, "bob")
			recipe := testutil.CreateRecipe(t, db, author, "soup", nil)

			t.Run("add then remove restores membership", func(t *testing.T) {
				got, err := svc.Add(ctx, user.ID, recipe.ID)
				require.NoError(t, err)
				assert.Equal(t, recipe.ID, got.ID)
				assert.Equal(t, "soup", got.Name)

				in, err := svc.Contains(ctx, user.ID, recipe.ID)
				require.NoError(t, err)
				assert.True(t, in)

				require.NoError(t, svc.Remove(ctx, user.ID, recipe.ID))

				in, err = svc.Contains(ctx, user.ID, recipe.ID)
				require.NoError(t, err)
				assert.False(t, in)
			})

			t.Run("double add is rejected and keeps one row", func(t *testing.T) {
				_, err := svc.Add(ctx, user.ID, recipe.ID)
				require.NoError(t, err)
				_, err = svc.Add(ctx, user.ID, recipe.ID)
				assert.ErrorIs(t, err, tt.errPresent)

				var count int64
				require.NoError(t, db.Model(tt.model).Where("user_id = ? AND recipe_id = ?", user.ID, recipe.ID).Count(&count).Error)
				assert.Equal(t, int64(1), count)

				require.NoError(t, svc.Remove(ctx, user.ID, recipe.ID))
			})

			t.Run("remove when absent", func(t *testing.T) {
				assert.ErrorIs(t, svc.Remove(ctx, user.ID, recipe.ID), tt.errAbsent)
			})

			t.Run("missing recipe is not found", func(t *testing.T) {
				_, err := svc.Add(ctx, user.ID, 9999)
				assert.ErrorIs(t, err, ErrNotFound)
				assert.ErrorIs(t, svc.Remove(ctx, user.ID, 9999), ErrNotFound)
			})

			t.Run("sets are per user", func(t *testing.T) {
				_, err := svc.Add(ctx, user.ID, recipe.ID)
				require.NoError(t, err)

				in, err := svc.Contains(ctx, author.ID, recipe.ID)
				require.NoError(t, err)
				assert.False(t, in)
			})
		})
	}
}

func TestMembershipUniqueIndexBacksTheSet(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "alice")
	recipe := testutil.CreateRecipe(t, db, user, "soup", nil)

	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error)
	err := db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error
	assert.True(t, isUniqueViolation(err), "expected unique violation, got %v", err)
}
