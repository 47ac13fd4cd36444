package catalog

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

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/facilities/:id/services", h.ListByFacility)
	public.GET("/services/:id", h.GetByID)

	protected.POST("/services", middleware.AdminOnly(), h.Create)
	protected.PUT("/services/:id", middleware.AdminOnly(), h.Update)
	protected.DELETE("/services/:id", middleware.AdminOnly(), h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	svc, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	svc, err := h.service.Update(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role"))); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	svc, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) ListByFacility(c *gin.Context) {
	facilityID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid facility ID")
		return
	}

	q := ListQuery{FacilityID: facilityID}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	services, total, err := h.service.ListByFacility(c.Request.Context(), c.GetInt64("user_id"), domain.Role(c.GetString("role")), q)
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
	response.Paginated(c, http.StatusOK, "services", services, q.Page, q.Limit, total)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFacilityNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Facility not found")
	case errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Service not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed for this service")
	case errors.Is(err, ErrServiceLocked):
		response.Error(c, http.StatusConflict, "SLOT_LOCKED", "Service has slots with reserved capacity; deactivate it instead")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid field value")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid service ID")
		return 0, false
	}
	return id, true
}
