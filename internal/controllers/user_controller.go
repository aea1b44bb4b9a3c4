package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franciscosanchezn/gin-recipes-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipes-api/internal/serializers"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
)

// UserController handles accounts and author subscriptions
type UserController interface {
	ListUsers(c *gin.Context)
	Register(c *gin.Context)
	Me(c *gin.Context)
	GetUser(c *gin.Context)
	SetPassword(c *gin.Context)
	// Subscriptions lists the authors the current user follows
	Subscriptions(c *gin.Context)
	Subscribe(c *gin.Context)
	Unsubscribe(c *gin.Context)
}

type userController struct {
	users         services.UserService
	subscriptions services.SubscriptionService
}

func NewUserController(users services.UserService, subscriptions services.SubscriptionService) *userController {
	return &userController{users: users, subscriptions: subscriptions}
}

// ListUsers godoc
// @Summary List users
// @Description Paginated list of users. is_subscribed reflects the caller's follows.
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} serializers.Paginated[serializers.User]
// @Failure 400 {object} models.APIError
// @Router /api/users [get]
func (uc *userController) ListUsers(c *gin.Context) {
	page, err := services.ParsePage(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	users, count, err := uc.users.ListUsers(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	followed, err := uc.subscriptions.FollowedAmong(c.Request.Context(), middleware.CurrentUserID(c), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, serializers.NewPaginated(serializers.NewUsers(users, followed), count, page, absoluteURL(c)))
}

// Register godoc
// @Summary Sign up
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.SignupInput true "New account"
// @Success 201 {object} serializers.User
// @Failure 400 {object} models.APIError
// @Router /api/users [post]
func (uc *userController) Register(c *gin.Context) {
	var in services.SignupInput
	if !bindJSON(c, &in) {
		return
	}

	user, err := uc.users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializers.NewUser(*user, false))
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Success 200 {object} serializers.User
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/users/me [get]
func (uc *userController) Me(c *gin.Context) {
	user, err := uc.users.GetUserByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializers.NewUser(*user, false))
}

// GetUser godoc
// @Summary Get user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} serializers.User
// @Failure 404 {object} models.APIError
// @Router /api/users/{id} [get]
func (uc *userController) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := uc.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	followed, err := uc.subscriptions.FollowedAmong(c.Request.Context(), middleware.CurrentUserID(c), []uint{user.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializers.NewUser(*user, followed[user.ID]))
}

// SetPassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Param body body services.PasswordChange true "Current and new password"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/users/set_password [post]
func (uc *userController) SetPassword(c *gin.Context) {
	var in services.PasswordChange
	if !bindJSON(c, &in) {
		return
	}

	if err := uc.users.SetPassword(c.Request.Context(), middleware.CurrentUserID(c), in); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions godoc
// @Summary List followed authors
// @Description Authors the caller follows, each with up to recipes_limit of their newest recipes
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes shown per author"
// @Success 200 {object} serializers.Paginated[serializers.Subscription]
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/users/subscriptions [get]
func (uc *userController) Subscriptions(c *gin.Context) {
	query := c.Request.URL.Query()
	page, err := services.ParsePage(query)
	if err != nil {
		respondError(c, err)
		return
	}
	recipesLimit, err := services.ParseRecipesLimit(query)
	if err != nil {
		respondError(c, err)
		return
	}

	subs, count, err := uc.subscriptions.Subscriptions(c.Request.Context(), middleware.CurrentUserID(c), page, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializers.NewPaginated(serializers.NewSubscriptions(subs), count, page, absoluteURL(c)))
}

// Subscribe godoc
// @Summary Follow an author
// @Tags users
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes shown in the response"
// @Success 201 {object} serializers.Subscription
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [post]
func (uc *userController) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}
	recipesLimit, err := services.ParseRecipesLimit(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	sub, err := uc.subscriptions.Subscribe(c.Request.Context(), middleware.CurrentUserID(c), authorID, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializers.NewSubscription(*sub))
}

// Unsubscribe godoc
// @Summary Unfollow an author
// @Tags users
// @Param id path int true "Author ID"
// @Success 204
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [delete]
func (uc *userController) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := uc.subscriptions.Unsubscribe(c.Request.Context(), middleware.CurrentUserID(c), authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
