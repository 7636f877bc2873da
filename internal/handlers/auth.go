package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/upfeed/upfeed/internal/constants"
	"github.com/upfeed/upfeed/internal/dto"
	"github.com/upfeed/upfeed/internal/middleware"
	"github.com/upfeed/upfeed/internal/monitoring"
	"github.com/upfeed/upfeed/internal/services"

	apierrors "github.com/upfeed/upfeed/internal/errors"
)

// AuthHandler coordinates the authentication and account resolvers.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a user and establishes the session.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, fieldErrs, err := h.authService.Register(services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	if fieldErrs != nil {
		c.JSON(http.StatusOK, dto.UserResponse{Errors: fieldErrs})
		return
	}

	if !saveSessionUser(c, user.ID) {
		return
	}

	monitoring.RegisterSuccess.Inc()
	userDTO := dto.ToUserDTO(*user)
	c.JSON(http.StatusOK, dto.UserResponse{User: &userDTO})
}

// Login authenticates by username or email and establishes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		UsernameOrEmail string `json:"usernameOrEmail"`
		Password        string `json:"password"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, fieldErrs, err := h.authService.Login(services.LoginInput{
		UsernameOrEmail: req.UsernameOrEmail,
		Password:        req.Password,
	})
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	if fieldErrs != nil {
		monitoring.LoginFailure.WithLabelValues(fieldErrs[0].Field).Inc()
		c.JSON(http.StatusOK, dto.UserResponse{Errors: fieldErrs})
		return
	}

	if !saveSessionUser(c, user.ID) {
		return
	}

	monitoring.LoginSuccess.Inc()
	userDTO := dto.ToUserDTO(*user)
	c.JSON(http.StatusOK, dto.UserResponse{User: &userDTO})
}

// Logout destroys the session and clears the cookie. Resolves success=false
// when destruction fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the current user, or null when unauthenticated.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusOK, dto.UserResponse{User: nil})
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		// Session references a user that no longer exists.
		c.JSON(http.StatusOK, dto.UserResponse{User: nil})
		return
	}

	userDTO := dto.ToUserDTO(*user)
	c.JSON(http.StatusOK, dto.UserResponse{User: &userDTO})
}

// ForgotPassword always reports completion so callers cannot probe which
// emails have accounts.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	type ForgotPasswordRequest struct {
		Email string `json:"email"`
	}

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ForgotPassword(req.Email); err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"complete": true})
}

// ChangePassword consumes a reset token, replaces the password and logs the
// user in.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	type ChangePasswordRequest struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, fieldErrs, err := h.authService.ChangePassword(services.ChangePasswordInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	if fieldErrs != nil {
		c.JSON(http.StatusOK, dto.UserResponse{Errors: fieldErrs})
		return
	}

	if !saveSessionUser(c, user.ID) {
		return
	}

	userDTO := dto.ToUserDTO(*user)
	c.JSON(http.StatusOK, dto.UserResponse{User: &userDTO})
}

func saveSessionUser(c *gin.Context, userID uint64) bool {
	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, userID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return false
	}
	return true
}
