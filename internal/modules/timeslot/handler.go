package timeslot

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

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/timeslots", h.List)

	protected.POST("/timeslots", middleware.AdminOnly(), h.Create)
	protected.POST("/timeslots/bulk", middleware.AdminOnly(), h.BulkCreate)
	protected.PUT("/timeslots/:id", middleware.AdminOnly(), h.Update)
	protected.DELETE("/timeslots/:id", middleware.AdminOnly(), h.Delete)
	protected.POST("/timeslots/bulk-delete", middleware.AdminOnly(), h.BulkDelete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	slot, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"slot": slot})
}

func (h *Handler) BulkCreate(c *gin.Context) {
	var req BulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	created, skipped, err := h.service.BulkCreate(c.Request.Context(), c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// Bulk generation is partially successful by design: per-item
	// conflicts are reported, not fatal.
	response.Success(c, http.StatusCreated, gin.H{
		"slots":         created,
		"created_count": len(created),
		"skipped":       skipped,
	})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := slotID(c)
	if !ok {
		return
	}

	var req UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	slot, err := h.service.Update(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := slotID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role"))); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	occupied, err := h.service.BulkDelete(c.Request.Context(), c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		if errors.Is(err, ErrSlotLocked) {
			response.ErrorWithDetails(c, http.StatusConflict, "SLOT_LOCKED",
				"Bulk delete rejected: some slots have reserved capacity",
				gin.H{"occupied_slot_ids": occupied})
			return
		}
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted_count": len(req.SlotIDs)})
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery

	if v := c.Query("facility_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.FacilityID = &id
		}
	}
	if v := c.Query("service_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.ServiceID = &id
		}
	}
	if v := c.Query("date"); v != "" {
		d, err := time.Parse(domain.DateFormat, v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Date must be YYYY-MM-DD")
			return
		}
		day := domain.DayOf(d)
		q.Date = &day
	}
	if v := c.Query("is_active"); v != "" {
		b := v == "true"
		q.IsActive = &b
	}
	if v := c.Query("is_booked"); v != "" {
		b := v == "true"
		q.IsBooked = &b
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	slots, total, err := h.service.List(c.Request.Context(), c.GetInt64("user_id"), domain.Role(c.GetString("role")), q)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	response.Paginated(c, http.StatusOK, "slots", slots, q.Page, q.Limit, total)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFacilityNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Facility not found")
	case errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Service not found")
	case errors.Is(err, ErrServiceInactive):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Service is deactivated")
	case errors.Is(err, ErrSlotNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Time slot not found")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "An active slot already exists for this time")
	case errors.Is(err, ErrSlotLocked):
		response.Error(c, http.StatusConflict, "SLOT_LOCKED", "Slot has reserved capacity and cannot be changed")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed for this facility")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date or time window")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}

func slotID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid slot ID")
		return 0, false
	}
	return id, true
}
