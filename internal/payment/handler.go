// File: internal/payment/handler.go
package payment

import (
	"errors"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the payment proof HTTP surface: submission and the viewer's
// own history under /payments, the review queue under /admin/payments.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the payment routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, requireAdmin gin.HandlerFunc) {
	payments := router.Group("/payments", authMW)
	{
		payments.POST("", h.submit)
		payments.GET("/me", h.listMine)
		payments.GET("/:id", h.getByID)
	}

	adminPayments := router.Group("/admin/payments", authMW, requireAdmin)
	{
		adminPayments.GET("", h.listForReview)
		adminPayments.PATCH("/:id/review", h.review)
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
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid payment proof ID format."))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) submit(c *gin.Context) {
	var req SubmitRequest
	if !h.bindJSON(c, &req, "SubmitPaymentProof") {
		return
	}

	userID := middleware.GetUserIDFromContext(c)
	proof, err := h.service.Submit(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Payment proof submitted. It will be reviewed shortly.", ToResponse(proof))
}

func (h *Handler) listMine(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	pq := common.PaginationQuery{Page: page, PageSize: pageSize}
	userID := middleware.GetUserIDFromContext(c)

	proofs, total, err := h.service.ListMine(c.Request.Context(), userID, pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Payment proofs retrieved.", ToResponseList(proofs), common.NewPagination(total, page, pageSize))
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	actorID := middleware.GetUserIDFromContext(c)
	actorRole := middleware.GetUserRoleFromContext(c)
	proof, err := h.service.GetByID(c.Request.Context(), actorID, actorRole, id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Payment proof retrieved.", ToResponse(proof))
}

func (h *Handler) listForReview(c *gin.Context) {
	page, pageSize := common.GetPaginationParams(c)
	pq := common.PaginationQuery{Page: page, PageSize: pageSize}

	proofs, total, err := h.service.ListForReview(c.Request.Context(), c.Query("status"), pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Payment proofs retrieved.", ToResponseList(proofs), common.NewPagination(total, page, pageSize))
}

func (h *Handler) review(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if !h.bindJSON(c, &req, "ReviewPaymentProof") {
		return
	}

	adminID := middleware.GetUserIDFromContext(c)
	proof, err := h.service.Review(c.Request.Context(), adminID, id, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Payment proof reviewed.", ToResponse(proof))
}
