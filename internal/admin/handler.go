// File: internal/admin/handler.go
package admin

import (
	"errors"
	"strconv"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/middleware"
	"unihomes_backend/internal/shared"
	"unihomes_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateUserRequest changes a user's role and/or verification flag. At least
// one field must be present.
type UpdateUserRequest struct {
	Role       *string `json:"role" binding:"omitempty,oneof=student agent owner admin"`
	IsVerified *bool   `json:"is_verified"`
}

// Handler exposes the administrative user directory and dashboard.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new admin handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the admin routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, requireAdmin gin.HandlerFunc) {
	adminGroup := router.Group("/admin", authMW, requireAdmin)
	{
		adminGroup.GET("/stats", h.getStats)
		adminGroup.GET("/users", h.listUsers)
		adminGroup.PATCH("/users/:id", h.updateUser)
		adminGroup.DELETE("/users/:id", h.deleteUser)
	}
}

func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Platform stats retrieved.", stats)
}

func (h *Handler) listUsers(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	pq := common.PaginationQuery{Page: page, PageSize: pageSize}

	filters := user.ListFilters{
		Role:   c.Query("role"),
		Search: c.Query("search"),
	}
	if raw := c.Query("verified"); raw != "" {
		verified, err := strconv.ParseBool(raw)
		if err != nil {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Parameter 'verified' must be a boolean."))
			return
		}
		filters.Verified = &verified
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), filters, pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]shared.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, shared.ToUserResponse(&users[i]))
	}
	common.RespondPaginated(c, "Users retrieved.", responses, common.NewPagination(total, page, pageSize))
}

func (h *Handler) updateUser(c *gin.Context) {
	targetID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("UpdateUser: Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	if req.Role == nil && req.IsVerified == nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Provide 'role' and/or 'is_verified'."))
		return
	}

	updated, err := h.service.UpdateUser(c.Request.Context(), targetID, req.Role, req.IsVerified)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User updated.", shared.ToUserResponse(updated))
}

func (h *Handler) deleteUser(c *gin.Context) {
	targetID, ok := h.pathID(c)
	if !ok {
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	if err := h.service.DeleteUser(c.Request.Context(), actorID, targetID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid user ID format."))
		return uuid.Nil, false
	}
	return id, true
}
