package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/metrics"
	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// MembershipService toggles a user's relation to a recipe (favorites, shopping cart)
type MembershipService interface {
	// Add puts the recipe in the user's set and returns the recipe
	Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error)
	// Remove takes the recipe out of the user's set
	Remove(ctx context.Context, userID, recipeID uint) error
	// Contains reports whether the recipe is in the user's set
	Contains(ctx context.Context, userID, recipeID uint) (bool, error)
}

type membershipRow interface {
	models.Favorite | models.ShoppingCartItem
}

// membershipSet is a set of (user, recipe) rows in one table. The unique
// index on (user_id, recipe_id) is what keeps the set free of duplicates.
type membershipSet[T membershipRow] struct {
	db         *gorm.DB
	name       string
	newRow     func(userID, recipeID uint) *T
	errPresent error
	errAbsent  error
}

func NewFavoriteService(db *gorm.DB) MembershipService {
	return &membershipSet[models.Favorite]{
		db:   db,
		name: "favorites",
		newRow: func(userID, recipeID uint) *models.Favorite {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		errPresent: ErrAlreadyInFavorites,
		errAbsent:  ErrNotInFavorites,
	}
}

func NewShoppingCartService(db *gorm.DB) MembershipService {
	return &membershipSet[models.ShoppingCartItem]{
		db:   db,
		name: "shopping_cart",
		newRow: func(userID, recipeID uint) *models.ShoppingCartItem {
			return &models.ShoppingCartItem{UserID: userID, RecipeID: recipeID}
		},
		errPresent: ErrAlreadyInShoppingCart,
		errAbsent:  ErrNotInShoppingCart,
	}
}

func (s *membershipSet[T]) Add(ctx context.Context, userID, recipeID uint) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := db.First(&recipe, recipeID).Error; err != nil {
		return nil, notFound(err)
	}

	present, err := s.Contains(ctx, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if present {
		return nil, s.errPresent
	}

	if err := db.Create(s.newRow(userID, recipeID)).Error; err != nil {
		// lost a race with a concurrent add
		if isUniqueViolation(err) {
			return nil, s.errPresent
		}
		return nil, fmt.Errorf("add recipe %d to %s: %w", recipeID, s.name, err)
	}

	metrics.MembershipChanges.WithLabelValues(s.name, "add").Inc()
	log.WithFields(logrus.Fields{
		"set":       s.name,
		"user_id":   userID,
		"recipe_id": recipeID,
	}).Debug("Recipe added")
	return &recipe, nil
}

func (s *membershipSet[T]) Remove(ctx context.Context, userID, recipeID uint) error {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	result := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(new(T))
	if result.Error != nil {
		return fmt.Errorf("remove recipe %d from %s: %w", recipeID, s.name, result.Error)
	}
	if result.RowsAffected == 0 {
		return s.errAbsent
	}

	metrics.MembershipChanges.WithLabelValues(s.name, "remove").Inc()
	return nil
}

func (s *membershipSet[T]) Contains(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(new(T)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
