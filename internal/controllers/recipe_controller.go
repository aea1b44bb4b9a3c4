package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/gin-recipes-api/internal/export"
	"github.com/franciscosanchezn/gin-recipes-api/internal/metrics"
	"github.com/franciscosanchezn/gin-recipes-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
	"github.com/franciscosanchezn/gin-recipes-api/internal/serializers"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
)

// RecipeController handles recipes, favorites and the shopping cart
type RecipeController interface {
	ListRecipes(c *gin.Context)
	GetRecipe(c *gin.Context)
	CreateRecipe(c *gin.Context)
	UpdateRecipe(c *gin.Context)
	DeleteRecipe(c *gin.Context)
	AddFavorite(c *gin.Context)
	RemoveFavorite(c *gin.Context)
	AddToShoppingCart(c *gin.Context)
	RemoveFromShoppingCart(c *gin.Context)
	// DownloadShoppingCart renders the aggregated ingredient list of the cart
	DownloadShoppingCart(c *gin.Context)
}

type recipeController struct {
	recipes       services.RecipeService
	favorites     services.MembershipService
	cart          services.MembershipService
	shoppingList  services.ShoppingListService
	subscriptions services.SubscriptionService
}

func NewRecipeController(
	recipes services.RecipeService,
	favorites services.MembershipService,
	cart services.MembershipService,
	shoppingList services.ShoppingListService,
	subscriptions services.SubscriptionService,
) *recipeController {
	return &recipeController{
		recipes:       recipes,
		favorites:     favorites,
		cart:          cart,
		shoppingList:  shoppingList,
		subscriptions: subscriptions,
	}
}

// ListRecipes godoc
// @Summary List recipes
// @Description Newest first. Tag slugs are OR-ed; the other filters are AND-ed. The favorite and cart flags need a token.
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs" collectionFormat(multi)
// @Param is_favorited query int false "1 to only list the caller's favorites"
// @Param is_in_shopping_cart query int false "1 to only list the caller's cart"
// @Success 200 {object} serializers.Paginated[serializers.Recipe]
// @Failure 400 {object} models.APIError
// @Router /api/recipes [get]
func (rc *recipeController) ListRecipes(c *gin.Context) {
	query := c.Request.URL.Query()
	page, err := services.ParsePage(query)
	if err != nil {
		respondError(c, err)
		return
	}
	filter, err := services.ParseRecipeFilter(query, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	recipes, count, err := rc.recipes.ListRecipes(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	followed, err := rc.followedAuthors(c, recipes...)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializers.NewPaginated(serializers.NewRecipes(recipes, followed), count, page, absoluteURL(c)))
}

// GetRecipe godoc
// @Summary Get recipe by ID
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} serializers.Recipe
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id} [get]
func (rc *recipeController) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := rc.recipes.GetRecipe(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.respondRecipe(c, http.StatusOK, recipe)
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Description The image is a base64 data URI. Ingredient ids must be distinct.
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body services.RecipeInput true "Recipe"
// @Success 201 {object} serializers.Recipe
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.OAuth2Error
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes [post]
func (rc *recipeController) CreateRecipe(c *gin.Context) {
	var in services.RecipeInput
	if !bindJSON(c, &in) {
		return
	}

	recipe, err := rc.recipes.CreateRecipe(c.Request.Context(), actor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.respondRecipe(c, http.StatusCreated, recipe)
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Scalar fields are optional. Ingredients and tags are required and replace the existing sets.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body services.RecipeInput true "Changes"
// @Success 200 {object} serializers.Recipe
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [patch]
func (rc *recipeController) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in services.RecipeInput
	if !bindJSON(c, &in) {
		return
	}

	recipe, err := rc.recipes.UpdateRecipe(c.Request.Context(), actor(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.respondRecipe(c, http.StatusOK, recipe)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [delete]
func (rc *recipeController) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := rc.recipes.DeleteRecipe(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFavorite godoc
// @Summary Add a recipe to favorites
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} serializers.RecipeShort
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [post]
func (rc *recipeController) AddFavorite(c *gin.Context) {
	rc.addMember(c, rc.favorites)
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [delete]
func (rc *recipeController) RemoveFavorite(c *gin.Context) {
	rc.removeMember(c, rc.favorites)
}

// AddToShoppingCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} serializers.RecipeShort
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [post]
func (rc *recipeController) AddToShoppingCart(c *gin.Context) {
	rc.addMember(c, rc.cart)
}

// RemoveFromShoppingCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [delete]
func (rc *recipeController) RemoveFromShoppingCart(c *gin.Context) {
	rc.removeMember(c, rc.cart)
}

// DownloadShoppingCart godoc
// @Summary Download the shopping list
// @Description Sums every ingredient over the recipes in the cart, one line per ingredient and unit
// @Tags recipes
// @Produce application/pdf
// @Produce plain
// @Param format query string false "pdf (default) or txt"
// @Success 200 {file} file
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/recipes/download_shopping_cart [get]
func (rc *recipeController) DownloadShoppingCart(c *gin.Context) {
	format := c.Query("format")
	renderer, err := export.ForFormat(format)
	if err != nil {
		respondValidation(c, map[string][]string{"format": {err.Error()}})
		return
	}

	userID := middleware.CurrentUserID(c)
	lines, err := rc.shoppingList.Aggregate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	// nothing is written to the client until rendering succeeded
	var buf bytes.Buffer
	if err := renderer.Render(&buf, lines); err != nil {
		respondError(c, fmt.Errorf("render shopping list: %w", err))
		return
	}

	metrics.RecordShoppingListExport(renderer.Extension())
	log.WithFields(logrus.Fields{
		"user_id": userID,
		"format":  renderer.Extension(),
		"lines":   len(lines),
	}).Debug("Shopping list exported")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=shopping_cart.%s", renderer.Extension()))
	c.Data(http.StatusOK, renderer.ContentType(), buf.Bytes())
}

func (rc *recipeController) addMember(c *gin.Context, set services.MembershipService) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := set.Add(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializers.NewRecipeShort(*recipe))
}

func (rc *recipeController) removeMember(c *gin.Context, set services.MembershipService) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := set.Remove(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *recipeController) respondRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	followed, err := rc.followedAuthors(c, *recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, serializers.NewRecipe(*recipe, followed[recipe.AuthorID]))
}

// followedAuthors resolves is_subscribed for the authors of the given recipes
func (rc *recipeController) followedAuthors(c *gin.Context, recipes ...models.Recipe) (map[uint]bool, error) {
	ids := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.AuthorID)
	}
	return rc.subscriptions.FollowedAmong(c.Request.Context(), middleware.CurrentUserID(c), ids)
}
