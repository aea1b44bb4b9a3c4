package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// ReferenceService reads the tag and ingredient catalogues
type ReferenceService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	// SearchIngredients returns ingredients whose name starts with prefix, ignoring case
	SearchIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
}

type referenceService struct {
	db *gorm.DB
}

func NewReferenceService(db *gorm.DB) ReferenceService {
	return &referenceService{db: db}
}

func (s *referenceService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *referenceService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *referenceService) SearchIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name, measurement_unit")
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeEscaper.Replace(strings.ToLower(prefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (s *referenceService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ingredient, nil
}
