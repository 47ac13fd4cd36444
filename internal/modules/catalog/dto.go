package catalog

type CreateServiceRequest struct {
	FacilityID      int64   `json:"facility_id" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"gte=0"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,gt=0"`
	Capacity        int     `json:"capacity" binding:"required,gt=0"`
}

type UpdateServiceRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	DurationMinutes *int     `json:"duration_minutes"`
	Capacity        *int     `json:"capacity"`
	IsActive        *bool    `json:"is_active"`
}
