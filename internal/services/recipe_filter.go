package services

import (
	"fmt"
	"net/url"
	"strconv"

	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

// RecipeFilter narrows a recipe listing. Viewer 0 is an anonymous request.
type RecipeFilter struct {
	AuthorID         *uint
	Tags             []string
	IsFavorited      *bool
	IsInShoppingCart *bool
	Viewer           uint
}

const (
	favoritedExists = "EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = recipes.id AND f.user_id = ?)"
	inCartExists    = "EXISTS (SELECT 1 FROM shopping_cart_items s WHERE s.recipe_id = recipes.id AND s.user_id = ?)"
)

// ParseRecipeFilter reads author, tags, is_favorited and is_in_shopping_cart
// from the query string. Boolean flags accept 1/0/true/false.
func ParseRecipeFilter(query url.Values, viewer uint) (RecipeFilter, error) {
	filter := RecipeFilter{Viewer: viewer}
	verr := &ValidationError{}

	if raw := query.Get("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			verr.Add("author", "author must be a user id")
		} else {
			author := uint(id)
			filter.AuthorID = &author
		}
	}

	for _, slug := range query["tags"] {
		if slug != "" {
			filter.Tags = append(filter.Tags, slug)
		}
	}

	var err error
	if filter.IsFavorited, err = parseFlag(query.Get("is_favorited")); err != nil {
		verr.Add("is_favorited", "is_favorited must be 0 or 1")
	}
	if filter.IsInShoppingCart, err = parseFlag(query.Get("is_in_shopping_cart")); err != nil {
		verr.Add("is_in_shopping_cart", "is_in_shopping_cart must be 0 or 1")
	}

	if err := verr.OrNil(); err != nil {
		return RecipeFilter{}, err
	}
	return filter, nil
}

// checkTagSlugs rejects a filter naming a tag that does not exist
func checkTagSlugs(db *gorm.DB, slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}

	var known []string
	if err := db.Model(&models.Tag{}).Where("slug IN ?", slugs).Pluck("slug", &known).Error; err != nil {
		return fmt.Errorf("look up tags: %w", err)
	}
	exists := make(map[string]bool, len(known))
	for _, slug := range known {
		exists[slug] = true
	}

	verr := &ValidationError{}
	for _, slug := range slugs {
		if !exists[slug] {
			verr.Add("tags", fmt.Sprintf("unknown tag %q", slug))
		}
	}
	return verr.OrNil()
}

func parseFlag(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Apply adds the filter's WHERE clauses to a query over the recipes table.
// Membership flags are ignored for anonymous viewers.
func (f RecipeFilter) Apply(db *gorm.DB) *gorm.DB {
	if f.AuthorID != nil {
		db = db.Where("recipes.author_id = ?", *f.AuthorID)
	}
	if len(f.Tags) > 0 {
		db = db.Where("recipes.id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.Tags))
	}
	if f.Viewer != 0 {
		db = applyFlag(db, favoritedExists, f.IsFavorited, f.Viewer)
		db = applyFlag(db, inCartExists, f.IsInShoppingCart, f.Viewer)
	}
	return db
}

func applyFlag(db *gorm.DB, exists string, flag *bool, viewer uint) *gorm.DB {
	if flag == nil {
		return db
	}
	if *flag {
		return db.Where(exists, viewer)
	}
	return db.Where("NOT "+exists, viewer)
}

// withViewerFlags selects the recipe columns plus the per-viewer derived flags
func withViewerFlags(db *gorm.DB, viewer uint) *gorm.DB {
	return db.Select("recipes.*, "+favoritedExists+" AS is_favorited, "+inCartExists+" AS is_in_shopping_cart",
		viewer, viewer)
}
