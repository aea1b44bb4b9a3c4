package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/franciscosanchezn/gin-recipes-api/internal/metrics"
	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
	"github.com/franciscosanchezn/gin-recipes-api/internal/storage"
)

// Actor is the authenticated user performing an operation
type Actor struct {
	ID    uint
	Admin bool
}

// canModify reports whether the actor may change something owned by ownerID
func (a Actor) canModify(ownerID uint) bool {
	return a.Admin || (a.ID != 0 && a.ID == ownerID)
}

// IngredientAmount is one ingredient line of a recipe write
type IngredientAmount struct {
	ID     uint `json:"id" validate:"required"`
	Amount int  `json:"amount" validate:"min=1"`
}

// RecipeInput is a recipe create or update. Scalar fields are optional on
// update; ingredients and tags are always required and replace the old sets.
type RecipeInput struct {
	Name        *string            `json:"name" validate:"omitnil,min=1,max=200"`
	Text        *string            `json:"text" validate:"omitnil,min=1"`
	CookingTime *int               `json:"cooking_time" validate:"omitnil,min=1"`
	Image       *string            `json:"image" validate:"omitnil,min=1"`
	Ingredients []IngredientAmount `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []uint             `json:"tags" validate:"required,min=1,dive,required"`
}

// RecipeService provides methods to read and modify recipes
type RecipeService interface {
	// ListRecipes returns one page of recipes matching the filter and the total match count
	ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
	// GetRecipe returns a recipe with the viewer's favorite and cart flags
	GetRecipe(ctx context.Context, viewer, id uint) (*models.Recipe, error)
	// CreateRecipe validates and stores a new recipe authored by the actor
	CreateRecipe(ctx context.Context, actor Actor, in RecipeInput) (*models.Recipe, error)
	// UpdateRecipe changes a recipe owned by the actor (or any recipe for admins)
	UpdateRecipe(ctx context.Context, actor Actor, id uint, in RecipeInput) (*models.Recipe, error)
	// DeleteRecipe removes a recipe and everything that references it
	DeleteRecipe(ctx context.Context, actor Actor, id uint) error
}

type recipeService struct {
	db     *gorm.DB
	images storage.ImageStore
}

func NewRecipeService(db *gorm.DB, images storage.ImageStore) RecipeService {
	return &recipeService{db: db, images: images}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}

func (s *recipeService) ListRecipes(ctx context.Context, filter RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	db := s.db.WithContext(ctx)
	if err := checkTagSlugs(db, filter.Tags); err != nil {
		return nil, 0, err
	}

	var count int64
	if err := filter.Apply(db.Model(&models.Recipe{})).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count recipes: %w", err)
	}

	var recipes []models.Recipe
	query := withViewerFlags(filter.Apply(db.Model(&models.Recipe{})), filter.Viewer).
		Order("recipes.pub_date DESC, recipes.id DESC").
		Scopes(page.scope, preloadRecipe)
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, count, nil
}

func (s *recipeService) GetRecipe(ctx context.Context, viewer, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := withViewerFlags(s.db.WithContext(ctx).Model(&models.Recipe{}), viewer).
		Scopes(preloadRecipe).
		Where("recipes.id = ?", id).
		First(&recipe).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, actor Actor, in RecipeInput) (*models.Recipe, error) {
	prepared, err := s.prepare(ctx, actor.ID, 0, in, true)
	if err != nil {
		return nil, err
	}

	imageRef, err := s.images.Save(ctx, *prepared.image)
	if err != nil {
		return nil, fmt.Errorf("store recipe image: %w", err)
	}

	recipe := models.Recipe{
		AuthorID:    actor.ID,
		Name:        *in.Name,
		Text:        *in.Text,
		CookingTime: *in.CookingTime,
		Image:       imageRef,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return err
		}
		return writeRecipeSets(tx, &recipe, in.Ingredients, prepared.tags)
	})
	if err != nil {
		s.discardImage(ctx, imageRef)
		if isUniqueViolation(err) {
			return nil, nameTaken()
		}
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	metrics.RecipesCreated.Inc()
	log.WithFields(logrus.Fields{"recipe_id": recipe.ID, "author_id": actor.ID}).Info("Recipe created")
	return s.GetRecipe(ctx, actor.ID, recipe.ID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, actor Actor, id uint, in RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return nil, notFound(err)
	}
	if !actor.canModify(recipe.AuthorID) {
		return nil, ErrForbidden
	}

	prepared, err := s.prepare(ctx, recipe.AuthorID, recipe.ID, in, false)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Text != nil {
		updates["text"] = *in.Text
	}
	if in.CookingTime != nil {
		updates["cooking_time"] = *in.CookingTime
	}

	oldImage := recipe.Image
	if prepared.image != nil {
		ref, err := s.images.Save(ctx, *prepared.image)
		if err != nil {
			return nil, fmt.Errorf("store recipe image: %w", err)
		}
		updates["image"] = ref
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return writeRecipeSets(tx, &recipe, in.Ingredients, prepared.tags)
	})
	if err != nil {
		if ref, ok := updates["image"].(string); ok {
			s.discardImage(ctx, ref)
		}
		if isUniqueViolation(err) {
			return nil, nameTaken()
		}
		return nil, fmt.Errorf("update recipe %d: %w", id, err)
	}

	if _, replaced := updates["image"]; replaced {
		s.discardImage(ctx, oldImage)
	}
	return s.GetRecipe(ctx, actor.ID, recipe.ID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, actor Actor, id uint) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		return notFound(err)
	}
	if !actor.canModify(recipe.AuthorID) {
		return ErrForbidden
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.RecipeIngredient{},
			&models.Favorite{},
			&models.ShoppingCartItem{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return fmt.Errorf("delete recipe %d: %w", id, err)
	}

	s.discardImage(ctx, recipe.Image)
	log.WithFields(logrus.Fields{"recipe_id": recipe.ID, "actor_id": actor.ID}).Info("Recipe deleted")
	return nil
}

// preparedRecipe holds what validation loaded or decoded for the write
type preparedRecipe struct {
	tags  []models.Tag
	image *storage.Image
}

// prepare runs every check before anything is written: field rules,
// duplicates, referenced ingredients and tags, name uniqueness per author
// and the image payload.
func (s *recipeService) prepare(ctx context.Context, authorID, recipeID uint, in RecipeInput, create bool) (*preparedRecipe, error) {
	verr := &ValidationError{}
	if err := validateInput(&in); err != nil {
		var fieldErr *ValidationError
		if errors.As(err, &fieldErr) {
			verr = fieldErr
		}
	}

	if create {
		required := map[string]bool{
			"name":         in.Name == nil,
			"text":         in.Text == nil,
			"cooking_time": in.CookingTime == nil,
			"image":        in.Image == nil,
		}
		for _, field := range []string{"name", "text", "cooking_time", "image"} {
			if required[field] {
				verr.Add(field, field+" is required")
			}
		}
	}

	ingredientIDs := make([]uint, 0, len(in.Ingredients))
	seen := make(map[uint]bool, len(in.Ingredients))
	for _, item := range in.Ingredients {
		if seen[item.ID] {
			verr.Add("ingredients", "ingredient "+strconv.FormatUint(uint64(item.ID), 10)+" is listed more than once")
			continue
		}
		seen[item.ID] = true
		ingredientIDs = append(ingredientIDs, item.ID)
	}

	tagIDs := make([]uint, 0, len(in.Tags))
	seenTags := make(map[uint]bool, len(in.Tags))
	for _, id := range in.Tags {
		if seenTags[id] {
			verr.Add("tags", "tag "+strconv.FormatUint(uint64(id), 10)+" is listed more than once")
			continue
		}
		seenTags[id] = true
		tagIDs = append(tagIDs, id)
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var found int64
	if err := db.Model(&models.Ingredient{}).Where("id IN ?", ingredientIDs).Count(&found).Error; err != nil {
		return nil, err
	}
	if int(found) != len(ingredientIDs) {
		return nil, fmt.Errorf("ingredient: %w", ErrNotFound)
	}

	var tags []models.Tag
	if err := db.Where("id IN ?", tagIDs).Order("id").Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, fmt.Errorf("tag: %w", ErrNotFound)
	}

	if in.Name != nil {
		var clash int64
		err := db.Model(&models.Recipe{}).
			Where("author_id = ? AND name = ? AND id <> ?", authorID, *in.Name, recipeID).
			Count(&clash).Error
		if err != nil {
			return nil, err
		}
		if clash > 0 {
			return nil, nameTaken()
		}
	}

	prepared := &preparedRecipe{tags: tags}
	if in.Image != nil {
		img, err := storage.DecodeDataURI(*in.Image)
		if err != nil {
			verr.Add("image", err.Error())
			return nil, verr
		}
		prepared.image = &img
	}
	return prepared, nil
}

// writeRecipeSets inserts the ingredient rows and replaces the tag set
func writeRecipeSets(tx *gorm.DB, recipe *models.Recipe, items []IngredientAmount, tags []models.Tag) error {
	rows := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return err
	}
	return tx.Model(recipe).Association("Tags").Replace(tags)
}

func (s *recipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		log.WithError(err).WithField("image", ref).Warn("Failed to delete recipe image")
	}
}

func nameTaken() error {
	verr := &ValidationError{}
	verr.Add("name", "you already have a recipe with this name")
	return verr
}
