package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agendaly/backend/internal/models"
	"github.com/agendaly/backend/pkg/response"
)

// SignupRequest is the body for POST /api/auth/signup.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse is the auth success body: public user fields plus a JWT.
type SessionResponse struct {
	models.UserPublic
	Token string `json:"token"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	service *Service
	jwt     *JWTService
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(service *Service, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, jwt: jwt, logger: logger}
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email, password and name are required")
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, ErrMissingFields):
		response.BadRequest(c, err.Error())
		return
	case errors.Is(err, ErrEmailTaken):
		response.BadRequest(c, err.Error())
		return
	case err != nil:
		h.logger.Error("signup failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		h.logger.Error("generate token failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.Created(c, SessionResponse{UserPublic: user, Token: token})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email and password are required")
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
		return
	case err != nil:
		h.logger.Error("login failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		h.logger.Error("generate token failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.OK(c, SessionResponse{UserPublic: user, Token: token})
}

// Me handles GET /api/auth/me (JWT required). Returns the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	user, err := h.service.GetByID(c.Request.Context(), userID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.Unauthorized(c, "unknown user")
		return
	case err != nil:
		h.logger.Error("load user failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.OK(c, user)
}
