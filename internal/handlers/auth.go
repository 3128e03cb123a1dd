package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-admin-server/internal/auth"
	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Svc *auth.Service
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Svc: svc, Cfg: cfg}
}

// RegisterRequest represents the request body for account provisioning.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin doctor patient registration department"`
}

// Register runs the account provisioning flow.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	account, err := h.Svc.SignUp(c.Request.Context(), req.Email, req.Password, req.Username, models.Role(req.Role))
	if err != nil {
		respondFlowError(c, err)
		return
	}

	utils.Created(c, "Account provisioned successfully", gin.H{"user": account})
}

// LoginRequest represents the request body for sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful sign-in.
type LoginResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         *auth.Account `json:"user"`
	RedirectTo   string        `json:"redirectTo"`
}

// Login runs the session resolution flow for the credential path.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	account, tokens, err := h.Svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         account,
		RedirectTo:   auth.DashboardPathFor(account.Role),
	})
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	if token == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	tokens, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken, h.Cfg.JWTRefreshExpirationHours*60*60)

	utils.Success(c, "Access token refreshed successfully", tokens)
}

// Logout revokes the session identified by the refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := h.refreshTokenFrom(c)
	if token == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	if err := h.Svc.SignOut(c.Request.Context(), token); err != nil {
		respondFlowError(c, err)
		return
	}

	h.setRefreshCookie(c, "", -1)
	utils.Success(c, "Logout successful. Session has been revoked.", nil)
}

// GetProfile runs session restore: re-resolves the authenticated
// principal to its account record.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	principalID, ok := middleware.GetPrincipalID(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	account, err := h.Svc.Resolve(c.Request.Context(), principalID)
	if err != nil {
		respondFlowError(c, err)
		return
	}

	utils.Success(c, "Profile fetched successfully", account)
}

// refreshTokenFrom reads the refresh token from the HTTP-only cookie,
// falling back to the request body.
func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	if token, err := c.Cookie("refresh_token"); err == nil && token != "" {
		return token
	}
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetCookie(
		"refresh_token",
		value,
		maxAge,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)
}
