// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/franciscosanchezn/gin-recipes-api/internal/database"
	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// NewDB opens a private in-memory sqlite database with the full schema
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Password is the plain text password of every user created by CreateUser
const Password = "s3cret-pass"

// CreateUser stores a regular user named username
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
		Password:  Password,
		Role:      models.RoleUser,
	}
	require.NoError(t, user.HashPassword())
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateAdmin stores a user with the admin role
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := CreateUser(t, db, username)
	require.NoError(t, db.Model(user).Update("role", models.RoleAdmin).Error)
	user.Role = models.RoleAdmin
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

func CreateTag(t *testing.T, db *gorm.DB, name, color string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Color: color, Slug: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateRecipe stores a recipe directly, bypassing validation.
// amounts maps ingredient ids to amounts.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, amounts map[uint]int, tags ...*models.Tag) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       "/media/recipes/" + name + ".png",
		Text:        "Cook " + name,
		CookingTime: 10,
	}
	require.NoError(t, db.Omit("Author", "Tags", "Ingredients").Create(recipe).Error)

	for ingredientID, amount := range amounts {
		require.NoError(t, db.Create(&models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: ingredientID,
			Amount:       amount,
		}).Error)
	}
	if len(tags) > 0 {
		assoc := make([]models.Tag, len(tags))
		for i, tag := range tags {
			assoc[i] = *tag
		}
		require.NoError(t, db.Model(recipe).Association("Tags").Append(assoc))
	}
	return recipe
}
