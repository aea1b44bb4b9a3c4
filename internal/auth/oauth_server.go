package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// OAuthService issues and revokes access tokens. Tokens are JWTs that are
// also persisted, so a logout takes effect before the JWT expires.
type OAuthService struct {
	server   *server.Server
	manager  *manage.Manager
	users    services.UserService
	clientID string
}

// NewOAuthService builds the token server. clientID is the public client
// used for tokens issued through the JSON login endpoint.
func NewOAuthService(db *gorm.DB, users services.UserService, jwtSecret, clientID string, ttl time.Duration) *OAuthService {
	manager := manage.NewDefaultManager()
	manager.SetPasswordTokenCfg(&manage.Config{AccessTokenExp: ttl})

	// Use JWT for access tokens
	manager.MapAccessGenerate(NewJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS256, db))
	manager.MustTokenStorage(NewGormTokenStore(db), nil)
	manager.MapClientStorage(NewGormClientStore(db))

	o := &OAuthService{
		manager:  manager,
		users:    users,
		clientID: clientID,
	}

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.PasswordCredentials)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetPasswordAuthorizationHandler(o.authorizePassword)
	srv.SetInternalErrorHandler(func(err error) *oauth2errors.Response {
		log.WithError(err).Error("OAuth2 token endpoint failed")
		return nil
	})
	o.server = srv

	return o
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

// authorizePassword resolves the password grant's username (an email) to a user id.
// An empty id with a nil error makes the server answer invalid_grant.
func (o *OAuthService) authorizePassword(ctx context.Context, clientID, username, password string) (string, error) {
	user, err := o.users.Authenticate(ctx, username, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.WithField("client_id", clientID).Debug("Password grant rejected")
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(user.ID), 10), nil
}

// Login checks the credentials and issues a token for the public client
func (o *OAuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := o.users.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	ti, err := o.manager.GenerateAccessToken(ctx, oauth2.PasswordCredentials, &oauth2.TokenGenerateRequest{
		ClientID: o.clientID,
		UserID:   strconv.FormatUint(uint64(user.ID), 10),
	})
	if err != nil {
		return "", err
	}

	log.WithField("user_id", user.ID).Info("User logged in")
	return ti.GetAccess(), nil
}

// Logout revokes the access token
func (o *OAuthService) Logout(ctx context.Context, access string) error {
	return o.manager.RemoveAccessToken(ctx, access)
}

// VerifyAccessToken reports an error when the token was revoked or has expired
func (o *OAuthService) VerifyAccessToken(ctx context.Context, access string) error {
	_, err := o.manager.LoadAccessToken(ctx, access)
	return err
}

// HandleToken godoc
// @Summary Token endpoint
// @Description Obtain an access token with the OAuth2 password grant. The username is the account email.
// @Tags auth
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Must be password"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string false "Client secret, omitted for public clients"
// @Param username formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /api/oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		log.WithError(err).Error("Failed to write token response")
		c.JSON(http.StatusInternalServerError, models.NewOAuth2Error("server_error", "token response could not be written"))
	}
}
