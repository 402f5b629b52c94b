package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/homecart-backend/internal/app/model"
	"github.com/ikkim/homecart-backend/internal/app/service"
	apperrors "github.com/ikkim/homecart-backend/internal/errors"
	"github.com/ikkim/homecart-backend/internal/middleware"
	"github.com/ikkim/homecart-backend/pkg/util"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 10 * time.Minute
)

// CookieSettings controls the session cookie set alongside the JSON tokens.
type CookieSettings struct {
	Secure    bool
	AccessTTL time.Duration
}

type AuthController struct {
	authService  service.AuthService
	oauthService service.OAuthService
	cookies      CookieSettings
}

func NewAuthController(
	authService service.AuthService,
	oauthService service.OAuthService,
	cookies CookieSettings,
) *AuthController {
	return &AuthController{
		authService:  authService,
		oauthService: oauthService,
		cookies:      cookies,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func userResponse(user *model.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"name":     user.Name,
		"image":    user.Image,
		"role":     user.Role,
		"provider": user.Provider,
	}
}

func (ctrl *AuthController) setSessionCookie(c *gin.Context, tokens *util.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, tokens.AccessToken, int(ctrl.cookies.AccessTTL.Seconds()), "/", "", ctrl.cookies.Secure, true)
}

func (ctrl *AuthController) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", ctrl.cookies.Secure, true)
}

// Register handles user registration
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BindingFailed(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email is already registered")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ServerError(c, err, "register user")
		return
	}

	log.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})

	ctrl.setSessionCookie(c, tokens)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}

// Login handles credential sign-in
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BindingFailed(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ServerError(c, err, "login")
		return
	}

	ctrl.setSessionCookie(c, tokens)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}

// GetMe returns the signed-in user
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to fetch current user", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ServerError(c, err, "fetch user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userResponse(user),
	})
}

// Logout revokes the current session
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	// The body is optional; without a refresh token only the access token is revoked.
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := ctrl.authService.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		log.Error("Logout failed", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		apperrors.ServerError(c, err, "logout")
		return
	}

	ctrl.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}

// RefreshToken rotates the refresh token
// POST /api/v1/auth/refresh
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BindingFailed(c, err)
		return
	}

	user, tokens, err := ctrl.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExpiredToken):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Refresh token has expired")
		case errors.Is(err, service.ErrTokenRevoked):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "Refresh token has been revoked")
		case errors.Is(err, util.ErrInvalidToken), errors.Is(err, service.ErrUserNotFound):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Refresh token is invalid")
		default:
			log.Error("Token refresh failed", err)
			apperrors.ServerError(c, err, "refresh token")
		}
		return
	}

	ctrl.setSessionCookie(c, tokens)
	c.JSON(http.StatusOK, gin.H{
		"user":   userResponse(user),
		"tokens": tokens,
	})
}

// GoogleLogin redirects to the Google consent screen
// GET /api/v1/auth/google/login
func (ctrl *AuthController) GoogleLogin(c *gin.Context) {
	if !ctrl.oauthService.Enabled() {
		apperrors.NotFound(c, apperrors.AuthOAuthDisabled, "Google sign-in is not configured")
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, int(oauthStateMaxAge.Seconds()), "/", "", ctrl.cookies.Secure, true)
	c.Redirect(http.StatusFound, ctrl.oauthService.AuthCodeURL(state))
}

// GoogleCallback completes Google sign-in
// GET /api/v1/auth/google/callback
func (ctrl *AuthController) GoogleCallback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if !ctrl.oauthService.Enabled() {
		apperrors.NotFound(c, apperrors.AuthOAuthDisabled, "Google sign-in is not configured")
		return
	}

	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		log.Warn("OAuth state mismatch", nil)
		apperrors.BadRequest(c, apperrors.AuthOAuthStateMismatch, "Sign-in session expired, please try again")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", ctrl.cookies.Secure, true)

	code := c.Query("code")
	if code == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Authorization code is required")
		return
	}

	profile, err := ctrl.oauthService.Exchange(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrOAuthExchange) || errors.Is(err, service.ErrOAuthEmailRequired) {
			log.Warn("Google sign-in rejected", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthOAuthFailed, "Google sign-in failed")
			return
		}
		log.Error("Google sign-in failed", err)
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI, "Google is unavailable")
		return
	}

	user, tokens, err := ctrl.authService.LoginWithOAuth(c.Request.Context(), model.ProviderGoogle, profile)
	if err != nil {
		log.Error("OAuth account resolution failed", err, map[string]interface{}{
			"email": profile.Email,
		})
		apperrors.ServerError(c, err, "oauth login")
		return
	}

	log.Info("Google login successful", map[string]interface{}{
		"user_id": user.ID,
	})

	ctrl.setSessionCookie(c, tokens)
	c.JSON(http.StatusOK, gin.H{
		"message": "Google login successful",
		"user":    userResponse(user),
		"tokens":  tokens,
	})
}
