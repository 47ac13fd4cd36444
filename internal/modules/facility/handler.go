package facility

import (
	"errors"
	"net/http"
	"strconv"

	"facilitybook/internal/domain"
	"facilitybook/internal/media"
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
	public.GET("/facilities", h.List)
	public.GET("/facilities/:id", h.GetByID)

	protected.POST("/facilities", middleware.AdminOnly(), h.Create)
	protected.PUT("/facilities/:id", middleware.AdminOnly(), h.Update)
	protected.PATCH("/facilities/:id/status", middleware.SuperAdminOnly(), h.UpdateStatus)
	protected.DELETE("/facilities/:id", middleware.AdminOnly(), h.Delete)
	protected.POST("/facilities/:id/gallery", middleware.AdminOnly(), h.UploadGalleryImage)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	f, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"facility": f})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := facilityID(c)
	if !ok {
		return
	}

	var req UpdateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	f, err := h.service.Update(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"facility": f})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := facilityID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Status must be approved or rejected")
		return
	}

	f, err := h.service.ChangeStatus(c.Request.Context(), id, domain.Role(c.GetString("role")), domain.FacilityStatus(req.Status))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"facility": f})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := facilityID(c)
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) UploadGalleryImage(c *gin.Context) {
	id, ok := facilityID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Multipart field 'file' is required")
		return
	}

	f, err := h.service.AddGalleryImage(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")), fh)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"facility": f})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := facilityID(c)
	if !ok {
		return
	}

	f, err := h.service.GetByID(c.Request.Context(), id, c.GetInt64("user_id"), domain.Role(c.GetString("role")))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"facility": f})
}

func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		City:   c.Query("city"),
		Status: c.Query("status"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	facilities, total, err := h.service.List(c.Request.Context(), c.GetInt64("user_id"), domain.Role(c.GetString("role")), q)
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
	response.Paginated(c, http.StatusOK, "facilities", facilities, q.Page, q.Limit, total)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Facility not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not allowed for this facility")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid status transition")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid facility data")
	case errors.Is(err, ErrMediaRelease):
		response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Media store failed to release gallery; facility not deleted")
	case errors.Is(err, media.ErrEmptyFile), errors.Is(err, media.ErrFileTooLarge), errors.Is(err, media.ErrUnsupportedType):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}

func facilityID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid facility ID")
		return 0, false
	}
	return id, true
}
