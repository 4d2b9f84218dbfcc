package handlers

import (
	"errors"
	"net/http"

	"catering_backend/internal/models"
	"catering_backend/internal/repositories"
	"catering_backend/internal/services"
	"catering_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the lifecycle and picking services.
type OrderHandler struct {
	lifecycleService services.LifecycleService
	pickingService   services.PickingService
	recordRepo       repositories.RecordRepository
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(
	ls services.LifecycleService,
	ps services.PickingService,
	rr repositories.RecordRepository,
) *OrderHandler {
	return &OrderHandler{lifecycleService: ls, pickingService: ps, recordRepo: rr}
}

// SubmitReviewRequest is the payload for reviewing a finished order.
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// StartPicking moves an order from picking into in_progress.
func (h *OrderHandler) StartPicking(c *gin.Context) {
	orderID := c.Param("id")

	order, err := h.lifecycleService.StartPicking(orderID)
	if err != nil {
		utils.LogError(err, "StartPicking: Error from lifecycleService.StartPicking")
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// SubmitReview records the booker's review. Reviewing a pending_payment
// order implicitly completes it first.
func (h *OrderHandler) SubmitReview(c *gin.Context) {
	orderID := c.Param("id")

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "SubmitReview: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.lifecycleService.SubmitReview(orderID, req.Rating, req.Comment)
	if err != nil {
		utils.LogError(err, "SubmitReview: Error from lifecycleService.SubmitReview")
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// EvaluateTransition re-aggregates the order's fulfillment outcomes and
// applies a transition if one is due. The scheduled settlement job and
// the fulfillment webhook both enter here.
func (h *OrderHandler) EvaluateTransition(c *gin.Context) {
	orderID := c.Param("id")

	order, err := h.lifecycleService.EvaluateTransition(orderID)
	if err != nil {
		utils.LogError(err, "EvaluateTransition: Error from lifecycleService.EvaluateTransition")
		respondLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// QuantityCheck previews the capacity guard over the order's plans as
// currently stored. The result is advisory; nothing is written.
func (h *OrderHandler) QuantityCheck(c *gin.Context) {
	orderID := c.Param("id")

	order, err := h.recordRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", orderID))
			return
		}
		utils.LogError(err, "QuantityCheck: Error loading order")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to load order.", "Internal error"))
		return
	}

	isPickingPhase := order.State == models.OrderStatePicking
	reports := make(map[string]services.QuantityReport, len(order.PlanIDs))
	belowMin, aboveMax := false, false

	for _, planID := range order.PlanIDs {
		plan, err := h.recordRepo.GetPlanByID(planID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Plan not found.", planID))
				return
			}
			utils.LogError(err, "QuantityCheck: Error loading plan")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to load plan.", "Internal error"))
			return
		}
		report := h.pickingService.Validate(order.OrderType, isPickingPhase, plan.OrderDetail)
		reports[planID] = report
		belowMin = belowMin || report.BelowMin
		aboveMax = aboveMax || report.AboveMax
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":  order.ID,
		"below_min": belowMin,
		"above_max": aboveMax,
		"plans":     reports,
	})
}

// respondLifecycleError maps lifecycle service errors onto the API envelope.
func respondLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound), errors.Is(err, services.ErrPlanNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Record not found.", err.Error()))
	case errors.Is(err, services.ErrIllegalStateTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeIllegalStateTransition, "The order state does not permit this transition.", err.Error()))
	case errors.Is(err, services.ErrInvalidOrderState):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInvalidOrderState, "The order state does not permit this operation.", err.Error()))
	case errors.Is(err, repositories.ErrVersionConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "The record changed concurrently. Re-fetch and retry.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Operation failed.", "Internal error"))
	}
}
