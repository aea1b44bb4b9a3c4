package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franciscosanchezn/gin-recipes-api/internal/serializers"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
)

// ReferenceController serves the read-only tag and ingredient catalogues
type ReferenceController interface {
	ListTags(c *gin.Context)
	GetTag(c *gin.Context)
	ListIngredients(c *gin.Context)
	GetIngredient(c *gin.Context)
}

type referenceController struct {
	service services.ReferenceService
}

func NewReferenceController(service services.ReferenceService) *referenceController {
	return &referenceController{service: service}
}

// ListTags godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} serializers.Tag
// @Router /api/tags [get]
func (rc *referenceController) ListTags(c *gin.Context) {
	tags, err := rc.service.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializers.NewTags(tags))
}

// GetTag godoc
// @Summary Get tag by ID
// @Tags tags
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} serializers.Tag
// @Failure 404 {object} models.APIError
// @Router /api/tags/{id} [get]
func (rc *referenceController) GetTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tag, err := rc.service.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializers.NewTag(*tag))
}

// ListIngredients godoc
// @Summary List ingredients
// @Description Optionally narrowed to names starting with search, ignoring case
// @Tags ingredients
// @Produce json
// @Param search query string false "Name prefix"
// @Success 200 {array} serializers.Ingredient
// @Router /api/ingredients [get]
func (rc *referenceController) ListIngredients(c *gin.Context) {
	ingredients, err := rc.service.SearchIngredients(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializers.NewIngredients(ingredients))
}

// GetIngredient godoc
// @Summary Get ingredient by ID
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} serializers.Ingredient
// @Failure 404 {object} models.APIError
// @Router /api/ingredients/{id} [get]
func (rc *referenceController) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ingredient, err := rc.service.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializers.NewIngredient(*ingredient))
}
