package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"fundigo/middleware"
	"fundigo/models"
	"fundigo/services/dispatch"
	"fundigo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DispatchHandler exposes the dispatch engine over HTTP.
type DispatchHandler struct {
	Svc dispatch.DispatchService
}

func NewDispatchHandler(svc dispatch.DispatchService) *DispatchHandler {
	return &DispatchHandler{Svc: svc}
}

// CreateBooking starts a dispatch for the authenticated customer and returns
// the ranked candidate preview of the first batch.
func (h *DispatchHandler) CreateBooking(c *gin.Context) {
	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	customerID := middleware.ActorID(c)

	resp, err := h.Svc.CreateBooking(c.Request.Context(), customerID, input)
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}

	// Cache the preview so clients can re-fetch it without re-ranking.
	if data, err := json.Marshal(resp.RankedPreview); err == nil {
		cacheClient := utils.GetDispatchCacheClient()
		if err := cacheClient.Set(context.Background(), utils.DispatchPreviewPrefix+resp.BookingID, data, utils.DispatchPreviewTTL).Err(); err != nil {
			getLogger(c).Warn("failed to cache ranked preview", zap.String("bookingId", resp.BookingID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, resp)
}

// GetBooking returns the booking with its full offer history.
func (h *DispatchHandler) GetBooking(c *gin.Context) {
	booking, offers, err := h.Svc.GetBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "offers": offers})
}

// Accept resolves a provider's accept attempt. Losing the race is a normal
// outcome surfaced as won=false, not an error status.
func (h *DispatchHandler) Accept(c *gin.Context) {
	providerID := middleware.ActorID(c)
	result, err := h.Svc.TryAccept(c.Request.Context(), c.Param("bookingID"), providerID)
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Decline settles the provider's pending offer as declined.
func (h *DispatchHandler) Decline(c *gin.Context) {
	providerID := middleware.ActorID(c)
	if err := h.Svc.Decline(c.Request.Context(), c.Param("bookingID"), providerID); err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"declined": true})
}

// Cancel cancels the booking on behalf of the authenticated actor.
func (h *DispatchHandler) Cancel(c *gin.Context) {
	var input models.CancelBookingInput
	if err := c.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	booking, err := h.Svc.Cancel(c.Request.Context(), c.Param("bookingID"), middleware.ActorID(c), input.Reason)
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// ProviderComplete records the provider-side completion confirmation.
func (h *DispatchHandler) ProviderComplete(c *gin.Context) {
	booking, err := h.Svc.MarkProviderComplete(c.Request.Context(), c.Param("bookingID"), middleware.ActorID(c))
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CustomerComplete records the customer-side completion confirmation.
func (h *DispatchHandler) CustomerComplete(c *gin.Context) {
	booking, err := h.Svc.MarkCustomerComplete(c.Request.Context(), c.Param("bookingID"), middleware.ActorID(c))
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *DispatchHandler) respondDispatchError(c *gin.Context, err error) {
	switch dispatch.CodeOf(err) {
	case dispatch.CodeInvalidLocation, dispatch.CodeUnsupportedSortMode, dispatch.CodeUnknownTemplate:
		utils.JSONError(c, http.StatusBadRequest, "validation failed", err.Error())
	case dispatch.CodeReasonRequired:
		utils.JSONError(c, http.StatusUnprocessableEntity, "reason required", err.Error())
	case dispatch.CodeBookingNotFound:
		utils.JSONError(c, http.StatusNotFound, "booking not found", err.Error())
	case dispatch.CodeAlreadyTerminal, dispatch.CodeOfferNotPending, dispatch.CodeAlreadyAssigned:
		utils.JSONError(c, http.StatusConflict, "conflicting booking state", err.Error())
	case dispatch.CodeSchedulerFault:
		utils.JSONError(c, http.StatusServiceUnavailable, "scheduling temporarily unavailable", err.Error())
	default:
		getLogger(c).Error("dispatch request failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "an unexpected error occurred")
	}
}
