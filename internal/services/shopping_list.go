package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// ShoppingListLine is the total amount of one ingredient across a cart.
// Lines are keyed by (name, unit), so the same name in two units stays apart.
type ShoppingListLine struct {
	Name            string
	MeasurementUnit string
	Total           int64
}

func (l ShoppingListLine) String() string {
	return fmt.Sprintf("%s (%s) - %d", l.Name, l.MeasurementUnit, l.Total)
}

type ShoppingListService interface {
	// Aggregate sums ingredient amounts over every recipe in the user's cart,
	// ordered by ingredient name then unit. An empty cart is ErrEmptyShoppingCart.
	Aggregate(ctx context.Context, userID uint) ([]ShoppingListLine, error)
}

type shoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) ShoppingListService {
	return &shoppingListService{db: db}
}

func (s *shoppingListService) Aggregate(ctx context.Context, userID uint) ([]ShoppingListLine, error) {
	db := s.db.WithContext(ctx)

	var inCart int64
	if err := db.Model(&models.ShoppingCartItem{}).Where("user_id = ?", userID).Count(&inCart).Error; err != nil {
		return nil, err
	}
	if inCart == 0 {
		return nil, ErrEmptyShoppingCart
	}

	var lines []ShoppingListLine
	err := db.Table("shopping_cart_items").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = shopping_cart_items.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("shopping_cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list: %w", err)
	}
	return lines, nil
}
