// File: internal/agent/handler.go
package agent

import (
	"strconv"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/listing"
	"unihomes_backend/internal/middleware"
	"unihomes_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the agent dashboard under /agents/me.
type Handler struct {
	service     *Service
	userService shared.Service
	logger      *zap.Logger
}

// NewHandler creates a new agent dashboard handler.
func NewHandler(service *Service, userService shared.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, userService: userService, logger: logger}
}

// RegisterRoutes sets up the agent dashboard routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, requireAgent gin.HandlerFunc) {
	me := router.Group("/agents/me", authMW, requireAgent)
	{
		me.GET("/stats", h.getStats)
		me.GET("/earnings", h.getEarnings)
		me.GET("/listings", h.listOwnListings)
	}
}

func (h *Handler) getStats(c *gin.Context) {
	agentID := middleware.GetUserIDFromContext(c)
	stats, err := h.service.GetStats(c.Request.Context(), agentID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Agent stats retrieved.", stats)
}

func (h *Handler) getEarnings(c *gin.Context) {
	agentID := middleware.GetUserIDFromContext(c)
	months, _ := strconv.Atoi(c.DefaultQuery("months", "6"))

	earnings, err := h.service.GetEarnings(c.Request.Context(), agentID, months)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Monthly earnings retrieved.", earnings)
}

func (h *Handler) listOwnListings(c *gin.Context) {
	agentID := middleware.GetUserIDFromContext(c)
	page, pageSize := common.GetPaginationParams(c)
	pq := common.PaginationQuery{Page: page, PageSize: pageSize}

	listings, total, err := h.service.ListOwnListings(c.Request.Context(), agentID, c.Query("status"), pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	// Owners always see the locked tier of their own listings.
	viewer, err := h.userService.GetUserByID(c.Request.Context(), agentID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Listings retrieved.", listing.ToResponseList(listings, viewer), common.NewPagination(total, page, pageSize))
}
