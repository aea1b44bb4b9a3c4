package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/franciscosanchezn/gin-recipes-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipes-api/internal/serializers"
	"github.com/franciscosanchezn/gin-recipes-api/internal/validation"
)

// TokenIssuer issues and revokes access tokens for the first-party client
type TokenIssuer interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, access string) error
}

// AuthController handles the JSON token login used by the web frontend.
// Third-party clients use the OAuth2 token endpoint instead.
type AuthController interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type authController struct {
	issuer TokenIssuer
}

func NewAuthController(issuer TokenIssuer) *authController {
	return &authController{issuer: issuer}
}

// Login godoc
// @Summary Obtain an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body serializers.TokenCreate true "Email and password"
// @Success 200 {object} serializers.Token
// @Failure 400 {object} models.APIError
// @Router /api/auth/token/login [post]
func (ac *authController) Login(c *gin.Context) {
	var in serializers.TokenCreate
	if !bindJSON(c, &in) {
		return
	}
	if verr := validation.ValidateStruct(&in); verr != nil {
		respondValidation(c, verr.Fields())
		return
	}

	token, err := ac.issuer.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, serializers.Token{AuthToken: token})
}

// Logout godoc
// @Summary Revoke the presented access token
// @Tags auth
// @Success 204
// @Failure 401 {object} models.OAuth2Error
// @Security BearerAuth
// @Router /api/auth/token/logout [post]
func (ac *authController) Logout(c *gin.Context) {
	if err := ac.issuer.Logout(c.Request.Context(), c.GetString(middleware.ContextAccessToken)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
