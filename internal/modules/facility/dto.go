package facility

type CreateFacilityRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Address     string `json:"address" binding:"required"`
	City        string `json:"city" binding:"required"`
	Phone       string `json:"phone"`
}

// UpdateFacilityRequest carries descriptive fields only. Status is
// never writable here; owners cannot self-approve.
type UpdateFacilityRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Phone       *string `json:"phone"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}
