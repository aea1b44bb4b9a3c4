package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/gin-recipes-api/internal/middleware"
	"github.com/franciscosanchezn/gin-recipes-api/internal/serializers"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
)

// ClientController lets admins manage confidential OAuth2 clients
type ClientController interface {
	CreateClient(c *gin.Context)
	ListClients(c *gin.Context)
	DeleteClient(c *gin.Context)
}

type clientController struct {
	service services.ClientService
}

func NewClientController(service services.ClientService) *clientController {
	return &clientController{service: service}
}

// CreateClient godoc
// @Summary Register an OAuth2 client
// @Description The secret is only returned by this call
// @Tags admin
// @Accept json
// @Produce json
// @Param client body services.ClientInput true "Client"
// @Success 201 {object} serializers.ClientCreated
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/clients [post]
func (cc *clientController) CreateClient(c *gin.Context) {
	var in services.ClientInput
	if !bindJSON(c, &in) {
		return
	}

	owner := middleware.CurrentUserID(c)
	client, secret, err := cc.service.CreateClient(c.Request.Context(), owner, in)
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithFields(logrus.Fields{
		"client_id": client.ID,
		"owner_id":  owner,
	}).Info("OAuth2 client created")
	c.JSON(http.StatusCreated, serializers.ClientCreated{
		Client:       serializers.NewClient(*client),
		ClientSecret: secret,
	})
}

// ListClients godoc
// @Summary List the caller's OAuth2 clients
// @Tags admin
// @Produce json
// @Success 200 {array} serializers.Client
// @Failure 403 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/clients [get]
func (cc *clientController) ListClients(c *gin.Context) {
	clients, err := cc.service.GetClientsByUserID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]serializers.Client, len(clients))
	for i, client := range clients {
		out[i] = serializers.NewClient(client)
	}
	c.JSON(http.StatusOK, out)
}

// DeleteClient godoc
// @Summary Delete an OAuth2 client
// @Tags admin
// @Param id path string true "Client ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/admin/clients/{id} [delete]
func (cc *clientController) DeleteClient(c *gin.Context) {
	if err := cc.service.DeleteClient(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
