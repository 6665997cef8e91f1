// File: internal/notification/handler.go
package notification

import (
	"unihomes_backend/internal/common"
	"unihomes_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the viewer's notification feed.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the notification routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	notifications := router.Group("/notifications", authMW)
	{
		notifications.GET("", h.listMine)
		notifications.POST("/:id/mark-read", h.markRead)
		notifications.POST("/mark-all-read", h.markAllRead)
	}
}

func (h *Handler) listMine(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	pq := common.PaginationQuery{Page: page, PageSize: pageSize}
	userID := middleware.GetUserIDFromContext(c)

	notifications, total, unread, err := h.service.ListMine(c.Request.Context(), userID, pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Notifications retrieved.", gin.H{
		"notifications": ToResponseList(notifications),
		"unread_count":  unread,
	}, common.NewPagination(total, page, pageSize))
}

func (h *Handler) markRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}

	userID := middleware.GetUserIDFromContext(c)
	if err := h.service.MarkRead(c.Request.Context(), userID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read.", nil)
}

func (h *Handler) markAllRead(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	updated, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read.", gin.H{"updated": updated})
}
