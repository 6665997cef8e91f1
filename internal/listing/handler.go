// File: internal/listing/handler.go
package listing

import (
	"errors"
	"strconv"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/middleware"
	"unihomes_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the listing HTTP surface.
type Handler struct {
	service     *Service
	userService shared.Service
	logger      *zap.Logger
}

// NewHandler creates a new listing handler.
func NewHandler(service *Service, userService shared.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, userService: userService, logger: logger}
}

// RegisterRoutes sets up the listing routes. Browse routes take optional
// auth so locked-tier gating can recognize a viewer; mutations require it.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, optionalAuthMW, requireAgent gin.HandlerFunc) {
	listings := router.Group("/listings")
	{
		listings.GET("", optionalAuthMW, h.list)
		listings.GET("/:id", optionalAuthMW, h.getByID)
		listings.POST("", authMW, requireAgent, h.create)
		listings.PATCH("/:id", authMW, h.update)
		listings.DELETE("/:id", authMW, h.delete)
		listings.PATCH("/:id/status", authMW, h.updateStatus)
	}

	me := router.Group("/users/me", authMW)
	{
		me.GET("/saved-listings", h.listSaved)
		me.GET("/unlocked-listings", h.listUnlocked)
	}
}

// viewer resolves the authenticated user for response gating. Anonymous and
// unresolvable viewers are both nil.
func (h *Handler) viewer(c *gin.Context) *shared.User {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		return nil
	}
	u, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil
	}
	return u
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn(op+": Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}

func (h *Handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid listing ID format."))
		return uuid.Nil, false
	}
	return id, true
}

func parseFilters(c *gin.Context) Filters {
	filters := Filters{
		Query:  c.Query("q"),
		Area:   c.Query("area"),
		Status: c.Query("status"),
	}
	if v := c.Query("min_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MinPrice = &parsed
		}
	}
	if v := c.Query("max_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MaxPrice = &parsed
		}
	}
	if v := c.Query("bedrooms"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			filters.Bedrooms = &parsed
		}
	}
	return filters
}

func (h *Handler) list(c *gin.Context) {
	filters := parseFilters(c)
	if filters.Status != "" && !IsValidStatus(filters.Status) {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Status must be 'available' or 'taken'."))
		return
	}

	page, pageSize := common.GetPaginationParams(c)
	pq := common.PaginationQuery{Page: page, PageSize: pageSize}

	listings, total, err := h.service.List(c.Request.Context(), filters, pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	pagination := common.NewPagination(total, page, pageSize)
	common.RespondPaginated(c, "Listings retrieved.", ToResponseList(listings, h.viewer(c)), pagination)
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	l, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing retrieved.", ToResponse(l, h.viewer(c)))
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if !h.bindJSON(c, &req, "CreateListing") {
		return
	}

	agentID := middleware.GetUserIDFromContext(c)
	l, err := h.service.Create(c.Request.Context(), agentID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	// The creator always sees the locked tier of their own listing.
	common.RespondCreated(c, "Listing created.", ToResponse(l, h.viewer(c)))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if !h.bindJSON(c, &req, "UpdateListing") {
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	l, err := h.service.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing updated.", ToResponse(l, h.viewer(c)))
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !h.bindJSON(c, &req, "UpdateListingStatus") {
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	l, err := h.service.UpdateStatus(c.Request.Context(), actorID, id, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing status updated.", ToResponse(l, h.viewer(c)))
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	if err := h.service.Delete(c.Request.Context(), actorID, actorRole, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) listSaved(c *gin.Context) {
	viewer := h.viewer(c)
	if viewer == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	listings, err := h.service.ListByIDs(c.Request.Context(), viewer.SavedListingIDs)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Saved listings retrieved.", ToResponseList(listings, viewer))
}

func (h *Handler) listUnlocked(c *gin.Context) {
	viewer := h.viewer(c)
	if viewer == nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	listings, err := h.service.ListByIDs(c.Request.Context(), viewer.UnlockedListingIDs)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Unlocked listings retrieved.", ToResponseList(listings, viewer))
}
