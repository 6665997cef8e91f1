// File: internal/roommate/handler.go
package roommate

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

// Handler exposes the roommate listing HTTP surface.
type Handler struct {
	service     *Service
	userService shared.Service
	logger      *zap.Logger
}

// NewHandler creates a new roommate handler.
func NewHandler(service *Service, userService shared.Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, userService: userService, logger: logger}
}

// RegisterRoutes sets up the roommate routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, optionalAuthMW gin.HandlerFunc) {
	roommates := router.Group("/roommates")
	{
		roommates.GET("", optionalAuthMW, h.list)
		roommates.GET("/:id", optionalAuthMW, h.getByID)
		roommates.POST("", authMW, h.create)
		roommates.PATCH("/:id", authMW, h.update)
		roommates.DELETE("/:id", authMW, h.delete)
	}

	me := router.Group("/users/me", authMW)
	{
		me.GET("/saved-roommates", h.listSaved)
	}
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
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid roommate listing ID format."))
		return uuid.Nil, false
	}
	return id, true
}

func parseFilters(c *gin.Context) Filters {
	filters := Filters{
		Query:       c.Query("q"),
		Area:        c.Query("area"),
		Gender:      c.Query("gender"),
		Cleanliness: c.Query("cleanliness"),
		StudyHours:  c.Query("study_hours"),
	}
	if v := c.Query("max_budget"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MaxBudget = &parsed
		}
	}
	if v := c.Query("smoking"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			filters.Smoking = &parsed
		}
	}
	if v := c.Query("pets"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			filters.Pets = &parsed
		}
	}
	return filters
}

func (h *Handler) list(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	pq := common.PaginationQuery{Page: page, PageSize: pageSize}

	listings, total, err := h.service.List(c.Request.Context(), parseFilters(c), pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	pagination := common.NewPagination(total, page, pageSize)
	common.RespondPaginated(c, "Roommate listings retrieved.", ToResponseList(listings), pagination)
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
	common.RespondOK(c, "Roommate listing retrieved.", ToResponse(l))
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if !h.bindJSON(c, &req, "CreateRoommateListing") {
		return
	}

	ownerID := middleware.GetUserIDFromContext(c)
	l, err := h.service.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Roommate listing created.", ToResponse(l))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if !h.bindJSON(c, &req, "UpdateRoommateListing") {
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	l, err := h.service.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Roommate listing updated.", ToResponse(l))
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
	userID := middleware.GetUserIDFromContext(c)
	viewer, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	listings, err := h.service.ListByIDs(c.Request.Context(), viewer.SavedRoommateIDs)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Saved roommate listings retrieved.", ToResponseList(listings))
}
