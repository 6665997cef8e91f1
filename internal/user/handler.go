// File: internal/user/handler.go
package user

import (
	"unihomes_backend/internal/common"
	"unihomes_backend/internal/middleware"
	"unihomes_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the viewer's reference-set mutations. Reads of the saved
// and unlocked collections live with the listing and roommate handlers,
// which own the response shaping.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for reference-set operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	meGroup := router.Group("/users/me", authMiddleware)
	{
		meGroup.POST("/saved-listings/:listingID", h.saveListing)
		meGroup.DELETE("/saved-listings/:listingID", h.unsaveListing)
		meGroup.POST("/saved-roommates/:roommateID", h.saveRoommate)
		meGroup.DELETE("/saved-roommates/:roommateID", h.unsaveRoommate)
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid "+name+" format."))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) saveListing(c *gin.Context) {
	listingID, ok := parseIDParam(c, "listingID")
	if !ok {
		return
	}
	userID := middleware.GetUserIDFromContext(c)

	updated, err := h.service.SaveListing(c.Request.Context(), userID, listingID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing saved.", shared.ToMeResponse(updated))
}

func (h *Handler) unsaveListing(c *gin.Context) {
	listingID, ok := parseIDParam(c, "listingID")
	if !ok {
		return
	}
	userID := middleware.GetUserIDFromContext(c)

	updated, err := h.service.UnsaveListing(c.Request.Context(), userID, listingID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Listing removed from saved.", shared.ToMeResponse(updated))
}

func (h *Handler) saveRoommate(c *gin.Context) {
	roommateID, ok := parseIDParam(c, "roommateID")
	if !ok {
		return
	}
	userID := middleware.GetUserIDFromContext(c)

	updated, err := h.service.SaveRoommate(c.Request.Context(), userID, roommateID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Roommate listing saved.", shared.ToMeResponse(updated))
}

func (h *Handler) unsaveRoommate(c *gin.Context) {
	roommateID, ok := parseIDParam(c, "roommateID")
	if !ok {
		return
	}
	userID := middleware.GetUserIDFromContext(c)

	updated, err := h.service.UnsaveRoommate(c.Request.Context(), userID, roommateID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Roommate listing removed from saved.", shared.ToMeResponse(updated))
}
