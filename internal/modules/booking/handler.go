package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

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

// RegisterRoutes mounts booking endpoints. Creation sits on the
// optional-auth group so guests can book without a token; everything
// else requires authentication.
func (h *Handler) RegisterRoutes(optional, protected *gin.RouterGroup) {
	optional.POST("/bookings", h.Create)

	protected.GET("/bookings", middleware.AdminOnly(), h.ListForOperator)
	protected.GET("/bookings/my", h.ListMine)
	protected.GET("/bookings/:id", h.GetByID)
	protected.PATCH("/bookings/:id/status", middleware.AdminOnly(), h.ChangeStatus)
	protected.POST("/bookings/:id/cancel", h.Cancel)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	var userID *int64
	if id, exists := c.Get("user_id"); exists {
		uid := id.(int64)
		userID = &uid
	}

	b, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be confirmed, cancelled or completed")
		return
	}

	b, err := h.service.ChangeStatus(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Cancellation reason is required")
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListForOperator(c *gin.Context) {
	q := parseListQuery(c)
	bookings, total, err := h.service.ListForOperator(c.Request.Context(), c.GetInt64("user_id"), domain.Role(c.GetString("role")), q)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "bookings", bookings, q.Page, q.Limit, total)
}

func (h *Handler) ListMine(c *gin.Context) {
	q := parseListQuery(c)
	bookings, total, err := h.service.ListForUser(c.Request.Context(), c.GetInt64("user_id"), q)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "bookings", bookings, q.Page, q.Limit, total)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSlotNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Time slot not found or inactive")
	case errors.Is(err, ErrFacilityNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Facility not found or not open for booking")
	case errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Service not found or inactive")
	case errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrCapacityExceeded):
		response.Error(c, http.StatusConflict, "CAPACITY_EXCEEDED", "Not enough remaining capacity on this slot")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed for this booking")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "CONFLICT", "Booking status cannot change this way")
	case errors.Is(err, ErrAlreadyCancelled):
		response.Error(c, http.StatusConflict, "CONFLICT", "Booking is already cancelled")
	case errors.Is(err, ErrGuestContactMissing):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Guest bookings require a name and an email or phone")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking request")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}

func parseListQuery(c *gin.Context) ListQuery {
	var q ListQuery

	if v := c.Query("facility_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.FacilityID = &id
		}
	}
	if v := c.Query("status"); v != "" {
		st := domain.BookingStatus(v)
		q.Status = &st
	}
	if v := c.Query("date_from"); v != "" {
		if t, err := time.Parse(domain.DateFormat, v); err == nil {
			q.DateFrom = &t
		}
	}
	if v := c.Query("date_to"); v != "" {
		if t, err := time.Parse(domain.DateFormat, v); err == nil {
			end := t.AddDate(0, 0, 1)
			q.DateTo = &end
		}
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	return q
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking ID")
		return 0, false
	}
	return id, true
}
