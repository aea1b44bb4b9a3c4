package models

import (
	"time"
)

// Ingredient is shared reference data, deduplicated by (name, measurement unit)
type Ingredient struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"size:200;not null;index;uniqueIndex:idx_ingredient_name_unit"`
	MeasurementUnit string `gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit"`
}

// Tag categorizes recipes
type Tag struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"size:200;uniqueIndex;not null"`
	Color string `gorm:"size:7;uniqueIndex;not null"`
	Slug  string `gorm:"size:200;uniqueIndex;not null"`
}

// Recipe is owned by its author. Author and name are unique together.
type Recipe struct {
	ID          uint               `gorm:"primaryKey"`
	AuthorID    uint               `gorm:"not null;index;uniqueIndex:idx_recipe_author_name"`
	Author      User               `gorm:"constraint:OnDelete:CASCADE"`
	Name        string             `gorm:"size:200;not null;index;uniqueIndex:idx_recipe_author_name"`
	Image       string             `gorm:"size:500;not null"`
	Text        string             `gorm:"type:text;not null"`
	CookingTime int                `gorm:"not null"`
	PubDate     time.Time          `gorm:"autoCreateTime;index"`
	Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`

	// Derived per viewer at query time, never stored
	IsFavorited      bool `gorm:"->;-:migration"`
	IsInShoppingCart bool `gorm:"->;-:migration"`
}

// RecipeIngredient is the amount of one ingredient used by one recipe
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;index"`
	IngredientID uint       `gorm:"not null;index"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null"`
}
