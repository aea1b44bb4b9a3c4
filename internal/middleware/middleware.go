package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// Gin context keys set by the auth middleware
const (
	ContextUserID      = "userID"
	ContextUserRole    = "userRole"
	ContextAccessToken = "accessToken"
)

// TokenVerifier rejects tokens that were revoked or are no longer stored
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, access string) error
}

// OAuth2Auth middleware that handles OAuth2 JWT access tokens.
// Requests without a valid Bearer token are rejected with 401.
func OAuth2Auth(jwtSecret []byte, tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "authorization_required",
				"Missing Authorization header. A valid Bearer token is required.")
			return
		}
		if !authenticate(c, jwtSecret, tokens) {
			return
		}
		c.Next()
	}
}

// OptionalAuth treats a request without an Authorization header as anonymous
// (userID 0). A header that is present must still carry a valid token.
func OptionalAuth(jwtSecret []byte, tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		if !authenticate(c, jwtSecret, tokens) {
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user, or 0 for anonymous requests
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

func CurrentUserIsAdmin(c *gin.Context) bool {
	return c.GetString(ContextUserRole) == models.RoleAdmin
}

// authenticate validates the Bearer token and stores its claims on the context.
// It aborts the request and returns false on failure.
func authenticate(c *gin.Context, jwtSecret []byte, tokens TokenVerifier) bool {
	// RFC 6750: Extract Bearer token from Authorization header
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_request",
			"Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
		return false
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "Bearer token is empty")
		return false
	}

	claims, err := parseAndValidateJWT(tokenString, jwtSecret)
	if err != nil {
		respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
		return false
	}

	// A signed token is only honoured while it is still stored
	if tokens != nil {
		if err := tokens.VerifyAccessToken(c.Request.Context(), tokenString); err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", "token has been revoked or expired")
			return false
		}
	}

	if err := extractAndSetClaims(c, claims); err != nil {
		respondWithOAuth2Error(c, http.StatusUnauthorized, "invalid_token", err.Error())
		return false
	}
	c.Set(ContextAccessToken, tokenString)
	return true
}

// respondWithOAuth2Error responds with RFC 6750 compliant error format
func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	c.AbortWithStatusJSON(status, models.NewOAuth2Error(errorCode, description))
}

// parseJWTToken validates and parses a JWT token using HMAC signing method
func parseJWTToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Only HMAC is accepted, whatever the alg header claims
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v. Expected HMAC", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims format")
	}
	return claims, nil
}

// parseAndValidateJWT parses the JWT and performs strict validation
func parseAndValidateJWT(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	claims, err := parseJWTToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("token missing required 'exp' claim")
	}
	if exp.Before(now) {
		return nil, fmt.Errorf("token has expired")
	}

	nbf, err := claims.GetNotBefore()
	if err != nil {
		return nil, fmt.Errorf("invalid nbf claim: %w", err)
	}
	if nbf != nil && nbf.After(now) {
		return nil, fmt.Errorf("token not yet valid")
	}

	// iat is allowed a little clock skew
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("invalid iat claim: %w", err)
	}
	if iat != nil && iat.After(now.Add(time.Minute)) {
		return nil, fmt.Errorf("token issued in the future")
	}

	return claims, nil
}

// extractAndSetClaims extracts user information from JWT claims and sets it in the Gin context
func extractAndSetClaims(c *gin.Context, claims jwt.MapClaims) error {
	userID, err := extractUserID(claims)
	if err != nil {
		return err
	}
	if userID == 0 {
		return fmt.Errorf("invalid user identifier: cannot be zero")
	}

	role, err := extractRole(claims)
	if err != nil {
		return err
	}

	c.Set(ContextUserID, userID)
	c.Set(ContextUserRole, role)

	if aud, ok := claims["aud"].(string); ok && aud != "" {
		c.Set("clientID", aud)
	} else if audArray, ok := claims["aud"].([]interface{}); ok && len(audArray) > 0 {
		if firstAud, ok := audArray[0].(string); ok && firstAud != "" {
			c.Set("clientID", firstAud)
		}
	}

	if scope, ok := claims["scope"].(string); ok && scope != "" {
		c.Set("scopes", scope)
	}
	return nil
}

// extractUserID reads the "uid" claim, issued as a numeric string
func extractUserID(claims jwt.MapClaims) (uint, error) {
	if uid, ok := claims["uid"].(string); ok && uid != "" {
		parsedID, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid uid claim format: must be a numeric string, got: %s", uid)
		}
		return uint(parsedID), nil
	}

	// JSON numbers are parsed as float64
	if uid, ok := claims["uid"].(float64); ok {
		if uid <= 0 {
			return 0, fmt.Errorf("invalid uid claim: must be positive, got: %f", uid)
		}
		return uint(uid), nil
	}

	return 0, fmt.Errorf("token missing required 'uid' claim. This token is not valid for this API")
}

// extractRole extracts and validates the role from JWT claims.
// All tokens must have an explicit role claim.
func extractRole(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", fmt.Errorf("token missing required 'role' claim. Tokens must explicitly specify user roles")
	}

	switch role {
	case models.RoleAdmin, models.RoleUser:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role '%s'. Allowed roles: admin, user", role)
	}
}
