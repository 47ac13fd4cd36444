package payment

import (
	"errors"
	"net/http"
	"strconv"

	"facilitybook/internal/domain"
	"facilitybook/internal/middleware"
	"facilitybook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts payment endpoints. The provider callback is
// public: the gateway does not hold a user token, it holds the
// transaction ID.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/payments/callback", h.Callback)

	protected.POST("/payments", h.Create)
	protected.POST("/payments/:id/refund", middleware.AdminOnly(), h.Refund)
	protected.GET("/bookings/:id/payment", h.GetByBooking)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Method must be card, cash or transfer")
		return
	}

	p, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"payment": p})
}

func (h *Handler) Callback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid callback payload")
		return
	}

	p, err := h.service.HandleCallback(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) Refund(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment ID")
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Refund reason is required")
		return
	}

	p, err := h.service.Refund(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) GetByBooking(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking ID")
		return
	}

	p, err := h.service.GetByBooking(c.Request.Context(), bookingID, c.GetInt64("user_id"), domain.Role(c.GetString("role")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrPaymentNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Payment not found")
	case errors.Is(err, ErrPaymentExists):
		response.Error(c, http.StatusConflict, "CONFLICT", "Booking already has a payment")
	case errors.Is(err, ErrBookingCancelled):
		response.Error(c, http.StatusConflict, "CONFLICT", "Cannot pay for a cancelled booking")
	case errors.Is(err, ErrNotRefundable):
		response.Error(c, http.StatusConflict, "CONFLICT", "Only completed payments can be refunded")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed for this payment")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment request")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}
