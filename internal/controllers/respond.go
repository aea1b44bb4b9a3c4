package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/gin-recipes-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
	"github.com/franciscosanchezn/gin-recipes-api/internal/validation"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// stateErrors are domain conflicts answered with 400 and a specific code
var stateErrors = []struct {
	err  error
	code string
}{
	{services.ErrAlreadyInFavorites, models.ErrAlreadyInFavorites},
	{services.ErrNotInFavorites, models.ErrNotInFavorites},
	{services.ErrAlreadyInShoppingCart, models.ErrAlreadyInShoppingCart},
	{services.ErrNotInShoppingCart, models.ErrNotInShoppingCart},
	{services.ErrEmptyShoppingCart, models.ErrEmptyShoppingCart},
	{services.ErrSelfFollow, models.ErrSelfFollow},
	{services.ErrAlreadySubscribed, models.ErrAlreadySubscribed},
	{services.ErrNotSubscribed, models.ErrNotSubscribed},
	{services.ErrInvalidCredentials, models.ErrInvalidCredentials},
}

// respondError maps a service error onto the APIError envelope
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr.Fields)
		return
	case errors.Is(err, services.ErrEmailTaken):
		respondValidation(c, map[string][]string{"email": {err.Error()}})
		return
	case errors.Is(err, services.ErrUsernameTaken):
		respondValidation(c, map[string][]string{"username": {err.Error()}})
		return
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, notFoundMessage(err)))
		return
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "You do not have permission to perform this action"))
		return
	}

	for _, state := range stateErrors {
		if errors.Is(err, state.err) {
			c.JSON(http.StatusBadRequest, models.NewAPIError(state.code, state.err.Error()))
			return
		}
	}

	log.WithError(err).WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString("requestID"),
	}).Error("Request failed")
	c.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "Internal server error"))
}

// notFoundMessage keeps the wrapped context, as in "tag: not found"
func notFoundMessage(err error) string {
	if err == services.ErrNotFound {
		return "Not found"
	}
	return err.Error()
}

func respondValidation(c *gin.Context, fields map[string][]string) {
	details := make(map[string]interface{}, len(fields))
	for field, messages := range fields {
		details[field] = messages
	}
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrValidationFailed, "Validation failed", details))
}

// bindJSON decodes the body into dst and answers 400 when it is not valid JSON
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondValidation(c, validation.FromError(err).Fields())
		return false
	}
	return true
}

// pathID reads a positive numeric path parameter and answers 404 for anything else
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "Not found"))
		return 0, false
	}
	return uint(id), true
}

func actor(c *gin.Context) services.Actor {
	return services.Actor{ID: middleware.CurrentUserID(c), Admin: middleware.CurrentUserIsAdmin(c)}
}

// absoluteURL rebuilds the request URL for pagination links
func absoluteURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	u := *c.Request.URL
	u.Scheme = scheme
	u.Host = c.Request.Host
	return &u
}
