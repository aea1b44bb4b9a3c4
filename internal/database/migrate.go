package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	log.Info("Running database migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartItem{},
		&models.Follow{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// DefaultTags are created on an empty database so recipes can be tagged right away
var DefaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

// SeedTags inserts DefaultTags when the tags table is empty
func SeedTags(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Tag{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("Tags already seeded")
		return nil
	}

	log.Info("Database is empty, seeding default tags")
	tags := make([]models.Tag, len(DefaultTags))
	copy(tags, DefaultTags)
	return db.Create(&tags).Error
}
