package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/homecart-backend/internal/app/model"
	apperrors "github.com/ikkim/homecart-backend/internal/errors"
	"github.com/ikkim/homecart-backend/pkg/util"
)

// Context keys for the resolved session
const (
	IdentityKey = "identity"
	ClaimsKey   = "claims"

	AccessTokenCookie = "access_token"
)

var (
	errNoToken        = errors.New("no session token")
	errMalformedToken = errors.New("malformed authorization header")
	errRevokedToken   = errors.New("session token revoked")
	errUnknownUser    = errors.New("session user no longer exists")
)

// UserFinder loads the account behind a session so its role is current.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret   string
	users       UserFinder
	revocations RevocationChecker
}

func NewAuthMiddleware(jwtSecret string, users UserFinder, revocations RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:   jwtSecret,
		users:       users,
		revocations: revocations,
	}
}

// extractToken reads a bearer token, falling back to the session cookie.
func extractToken(c *gin.Context) (string, error) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", errMalformedToken
		}
		return parts[1], nil
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", errNoToken
}

// resolve turns the request's token into an identity with the stored role.
func (m *AuthMiddleware) resolve(c *gin.Context) (*model.Identity, *util.Claims, error) {
	token, err := extractToken(c)
	if err != nil {
		return nil, nil, err
	}

	claims, err := util.ValidateTokenOfType(token, m.jwtSecret, util.AccessToken)
	if err != nil {
		return nil, nil, err
	}

	ctx := c.Request.Context()
	revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, errRevokedToken
	}

	user, err := m.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, errUnknownUser
	}

	identity := user.Identity()
	return &identity, claims, nil
}

// ResolveSession attaches the caller's identity when the request carries a
// usable session. It never rejects; a missing identity means anonymous.
func (m *AuthMiddleware) ResolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		identity, claims, err := m.resolve(c)
		if err != nil {
			if !errors.Is(err, errNoToken) {
				log.Debug("Session not resolved - continuing as anonymous", map[string]interface{}{
					"path":  c.Request.URL.Path,
					"error": err.Error(),
				})
			}
			c.Next()
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(ClaimsKey, claims)

		log.Debug("Session resolved", map[string]interface{}{
			"user_id": identity.ID,
			"role":    identity.Role,
		})
		c.Next()
	}
}

// Authenticate requires a resolved session and explains why one is missing.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		if _, ok := GetIdentity(c); ok {
			c.Next()
			return
		}

		identity, claims, err := m.resolve(c)
		if err != nil {
			log.Warn("Authentication failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			switch {
			case errors.Is(err, util.ErrExpiredToken):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Session has expired")
			case errors.Is(err, errRevokedToken):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "Session has been signed out")
			case errors.Is(err, errNoToken):
				apperrors.Unauthorized(c, "")
			default:
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Session token is invalid")
			}
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole checks the resolved identity against the allowed roles.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		identity, ok := GetIdentity(c)
		if !ok {
			log.Warn("Role check without identity", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzRoleNotFound, "Role information is missing")
			c.Abort()
			return
		}

		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}

		log.Warn("Insufficient permissions", map[string]interface{}{
			"user_id":        identity.ID,
			"user_role":      identity.Role,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzAdminOnly, "Administrator access required")
		c.Abort()
	}
}

// GetIdentity returns the caller resolved for this request.
func GetIdentity(c *gin.Context) (*model.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*model.Identity)
	return identity, ok && identity != nil
}

// GetUserID extracts the caller's user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	identity, ok := GetIdentity(c)
	if !ok {
		return "", false
	}
	return identity.ID, true
}

// GetClaims returns the validated access token claims.
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*util.Claims)
	return claims, ok
}
