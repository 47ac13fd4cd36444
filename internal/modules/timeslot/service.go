package timeslot

import (
	"context"
	"errors"
	"time"

	"facilitybook/internal/domain"
	"facilitybook/internal/repository"

	"gorm.io/gorm"
)

// maxStagedSlots caps one bulk request (offsets × windows).
const maxStagedSlots = 1000

type Service struct {
	slots      TimeSlotRepository
	services   ServiceRepository
	facilities FacilityRepository
}

func NewService(slots TimeSlotRepository, services ServiceRepository, facilities FacilityRepository) *Service {
	return &Service{
		slots:      slots,
		services:   services,
		facilities: facilities,
	}
}

// Create adds a single bookable window. Duplicate active keys are
// rejected both here and by the storage index, so a raced create comes
// back as the same conflict.
func (s *Service) Create(ctx context.Context, actorID int64, role domain.Role, req CreateSlotRequest) (*domain.TimeSlot, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, ErrValidation
	}
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	if _, err := s.authorizedService(ctx, req.FacilityID, req.ServiceID, actorID, role); err != nil {
		return nil, err
	}

	exists, err := s.slots.ExistsActive(ctx, req.FacilityID, req.ServiceID, date, req.StartTime)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	slot := &domain.TimeSlot{
		FacilityID: req.FacilityID,
		ServiceID:  req.ServiceID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		IsActive:   true,
		CreatedBy:  actorID,
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return slot, nil
}

// BulkCreate stages one slot per (day offset, window) pair and inserts
// whatever does not collide. Per-item conflicts are recorded as
// skipped, never fatal, which makes re-running the identical request
// safe: the second run creates nothing and reports every item as a
// duplicate.
func (s *Service) BulkCreate(ctx context.Context, actorID int64, role domain.Role, req BulkCreateRequest) ([]domain.TimeSlot, []SkippedSlot, error) {
	baseDate, err := parseDate(req.BaseDate)
	if err != nil {
		return nil, nil, ErrValidation
	}

	offsets := req.DayOffsets
	if len(offsets) == 0 {
		offsets = []int{0}
	}
	if len(offsets)*len(req.Slots) > maxStagedSlots {
		return nil, nil, ErrValidation
	}

	if _, err := s.authorizedService(ctx, req.FacilityID, req.ServiceID, actorID, role); err != nil {
		return nil, nil, err
	}

	created := make([]domain.TimeSlot, 0, len(offsets)*len(req.Slots))
	skipped := make([]SkippedSlot, 0)

	for _, offset := range offsets {
		slotDate := domain.DayOf(baseDate.AddDate(0, 0, offset))
		dateStr := slotDate.Format(domain.DateFormat)

		for _, w := range req.Slots {
			if err := validateWindow(w.StartTime, w.EndTime); err != nil {
				skipped = append(skipped, SkippedSlot{Date: dateStr, StartTime: w.StartTime, Reason: "invalid time window"})
				continue
			}

			exists, err := s.slots.ExistsActive(ctx, req.FacilityID, req.ServiceID, slotDate, w.StartTime)
			if err != nil {
				return nil, nil, err
			}
			if exists {
				skipped = append(skipped, SkippedSlot{Date: dateStr, StartTime: w.StartTime, Reason: "duplicate active slot"})
				continue
			}

			slot := domain.TimeSlot{
				FacilityID: req.FacilityID,
				ServiceID:  req.ServiceID,
				Date:       slotDate,
				StartTime:  w.StartTime,
				EndTime:    w.EndTime,
				IsActive:   true,
				CreatedBy:  actorID,
			}

			if err := s.slots.Create(ctx, &slot); err != nil {
				// A concurrent bulk run may win the insert between our
				// existence check and here; the unique index reports it
				// and the item becomes a skip like any other duplicate.
				if errors.Is(err, repository.ErrDuplicateKey) {
					skipped = append(skipped, SkippedSlot{Date: dateStr, StartTime: w.StartTime, Reason: "duplicate active slot"})
					continue
				}
				return nil, nil, err
			}
			created = append(created, slot)
		}
	}

	return created, skipped, nil
}

// Update mutates a slot that holds no reserved capacity. Moving the
// slot to a different (date, startTime) re-runs the conflict check
// against all other active slots of the pair.
func (s *Service) Update(ctx context.Context, slotID, actorID int64, role domain.Role, req UpdateSlotRequest) (*domain.TimeSlot, error) {
	slot, err := s.loadSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeFacility(ctx, slot.FacilityID, actorID, role); err != nil {
		return nil, err
	}
	if slot.IsLocked() {
		return nil, ErrSlotLocked
	}

	keyChanged := false

	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return nil, ErrValidation
		}
		if !date.Equal(slot.Date) {
			slot.Date = date
			keyChanged = true
		}
	}
	if req.StartTime != nil && *req.StartTime != slot.StartTime {
		slot.StartTime = *req.StartTime
		keyChanged = true
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if err := validateWindow(slot.StartTime, slot.EndTime); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		if *req.IsActive && !slot.IsActive {
			keyChanged = true // reactivation may collide with a newer active slot
		}
		slot.IsActive = *req.IsActive
	}

	if keyChanged && slot.IsActive {
		exists, err := s.slots.ExistsActive(ctx, slot.FacilityID, slot.ServiceID, slot.Date, slot.StartTime)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrConflict
		}
	}

	if err := s.slots.Update(ctx, slot); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, ErrConflict
		case errors.Is(err, repository.ErrSlotOccupied):
			// A reservation won the race after our lock check; the
			// storage guard refused the write.
			return nil, ErrSlotLocked
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

// Delete removes one unoccupied slot.
func (s *Service) Delete(ctx context.Context, slotID, actorID int64, role domain.Role) error {
	slot, err := s.loadSlot(ctx, slotID)
	if err != nil {
		return err
	}
	if err := s.authorizeFacility(ctx, slot.FacilityID, actorID, role); err != nil {
		return err
	}
	if slot.IsLocked() {
		return ErrSlotLocked
	}

	if err := s.slots.Delete(ctx, slotID); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotOccupied):
			return ErrSlotLocked
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrSlotNotFound
		}
		return err
	}
	return nil
}

// BulkDelete removes a set of slots all-or-nothing: if any target
// holds reserved capacity the whole batch is rejected and the occupied
// IDs are returned for the error detail.
func (s *Service) BulkDelete(ctx context.Context, actorID int64, role domain.Role, req BulkDeleteRequest) (occupied []int64, err error) {
	slots, err := s.slots.GetByIDs(ctx, req.SlotIDs)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, ErrSlotNotFound
	}
	for i := range slots {
		if err := s.authorizeFacility(ctx, slots[i].FacilityID, actorID, role); err != nil {
			return nil, err
		}
	}

	occupied, err = s.slots.DeleteBatch(ctx, req.SlotIDs)
	if err != nil {
		if errors.Is(err, repository.ErrSlotOccupied) {
			return occupied, ErrSlotLocked
		}
		return nil, err
	}
	return nil, nil
}

type ListQuery struct {
	FacilityID *int64
	ServiceID  *int64
	Date       *time.Time
	IsActive   *bool
	IsBooked   *bool
	Page       int
	Limit      int
}

// List scopes the inventory by the viewer: public and user views see
// active slots of approved facilities only, an admin additionally sees
// their own facilities in any status, a superadmin sees everything.
func (s *Service) List(ctx context.Context, actorID int64, role domain.Role, q ListQuery) ([]domain.TimeSlot, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	filters := repository.TimeSlotFilters{
		FacilityID: q.FacilityID,
		ServiceID:  q.ServiceID,
		Date:       q.Date,
		IsActive:   q.IsActive,
		IsBooked:   q.IsBooked,
		Limit:      q.Limit,
		Offset:     (q.Page - 1) * q.Limit,
	}

	switch role {
	case domain.RoleSuperAdmin:
	case domain.RoleAdmin:
		filters.ApprovedOnly = true
		filters.OwnerAdminID = &actorID
	default:
		filters.ApprovedOnly = true
		active := true
		filters.IsActive = &active
	}

	return s.slots.List(ctx, filters)
}

// authorizedService checks the facility/service preconditions shared
// by single and bulk creation: both exist, the service belongs to the
// facility and is still offered, and the actor operates their own
// facility.
func (s *Service) authorizedService(ctx context.Context, facilityID, serviceID, actorID int64, role domain.Role) (*domain.Service, error) {
	if err := s.authorizeFacility(ctx, facilityID, actorID, role); err != nil {
		return nil, err
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if svc.FacilityID != facilityID {
		return nil, ErrServiceNotFound
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}
	return svc, nil
}

func (s *Service) authorizeFacility(ctx context.Context, facilityID, actorID int64, role domain.Role) error {
	f, err := s.facilities.GetByID(ctx, facilityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFacilityNotFound
		}
		return err
	}
	if f.AdminID != actorID && role != domain.RoleSuperAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *Service) loadSlot(ctx context.Context, id int64) (*domain.TimeSlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return slot, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(domain.DateFormat, s)
	if err != nil {
		return time.Time{}, err
	}
	return domain.DayOf(d), nil
}

func validateWindow(start, end string) error {
	st, err := time.Parse(domain.TimeFormat, start)
	if err != nil {
		return ErrValidation
	}
	en, err := time.Parse(domain.TimeFormat, end)
	if err != nil {
		return ErrValidation
	}
	if !en.After(st) {
		return ErrValidation
	}
	return nil
}
