package events

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agendaly/backend/pkg/response"
)

// CreateRequest is the body for POST /api/events.
type CreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	UserID      string `json:"userId"`
}

// UserRequest is the body for vote and unregister.
type UserRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// RegisterRequest is the body for POST /api/events/:id/register.
type RegisterRequest struct {
	UserID string `json:"userId" binding:"required"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Create handles POST /api/events.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title and date are required")
		return
	}
	if req.UserID == "" {
		response.Unauthorized(c, "user required")
		return
	}

	view, err := h.service.Create(c.Request.Context(), CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		CreatedBy:   req.UserID,
	})
	switch {
	case errors.Is(err, ErrInvalidTime):
		response.BadRequest(c, err.Error())
		return
	case err != nil:
		h.logger.Error("create event failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.Created(c, view)
}

// List handles GET /api/events.
func (h *Handler) List(c *gin.Context) {
	views, err := h.service.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.OK(c, views)
}

// Get handles GET /api/events/:id.
func (h *Handler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, err.Error())
		return
	case err != nil:
		h.logger.Error("get event failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.OK(c, view)
}

// Delete handles DELETE /api/events/:id.
func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, err.Error())
		return
	case err != nil:
		h.logger.Error("delete event failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.OK(c, gin.H{"message": "event deleted"})
}

// Vote handles POST /api/events/:id/vote.
func (h *Handler) Vote(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "userId is required")
		return
	}
	view, err := h.service.Vote(c.Request.Context(), c.Param("id"), req.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, err.Error())
		return
	case errors.Is(err, ErrAlreadyVoted):
		response.BadRequest(c, err.Error())
		return
	case err != nil:
		h.logger.Error("vote failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.OK(c, view)
}

// Register handles POST /api/events/:id/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "userId is required")
		return
	}
	view, err := h.service.Register(c.Request.Context(), c.Param("id"), req.UserID, req.Name, req.Email)
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, err.Error())
		return
	case errors.Is(err, ErrAlreadyRegistered):
		response.BadRequest(c, err.Error())
		return
	case err != nil:
		h.logger.Error("register failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.OK(c, view)
}

// Unregister handles POST /api/events/:id/unregister.
func (h *Handler) Unregister(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "userId is required")
		return
	}
	view, err := h.service.Unregister(c.Request.Context(), c.Param("id"), req.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, err.Error())
		return
	case errors.Is(err, ErrNotRegistered):
		response.BadRequest(c, err.Error())
		return
	case err != nil:
		h.logger.Error("unregister failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.OK(c, view)
}

// Repair handles POST /api/admin/repair.
func (h *Handler) Repair(c *gin.Context) {
	repaired, total, err := h.service.RepairAll(c.Request.Context())
	if err != nil {
		h.logger.Error("repair failed", zap.Error(err))
		response.Internal(c, "server error")
		return
	}
	response.OK(c, gin.H{
		"message":  "data repaired",
		"repaired": repaired,
		"count":    total,
	})
}
