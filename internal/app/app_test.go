package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"facilitybook/internal/database"
	"facilitybook/internal/domain"
	jwtsvc "facilitybook/internal/pkg/jwt"
	"facilitybook/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type stubMediaStore struct{}

func (stubMediaStore) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	return "/static/uploads/stub.jpg", nil
}

func (stubMediaStore) Release(ctx context.Context, urls []string) error { return nil }

type fixture struct {
	router *gin.Engine
	db     *gorm.DB

	facility *domain.Facility
	pending  *domain.Facility
	service  *domain.Service
	slot     *domain.TimeSlot
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:app_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	ctx := context.Background()
	facilities := repository.NewFacilityRepository(db)
	services := repository.NewServiceRepository(db)
	slots := repository.NewTimeSlotRepository(db)

	f := &domain.Facility{AdminID: 2, Name: "Arena", City: "Almaty", Status: domain.FacilityApproved}
	require.NoError(t, facilities.Create(ctx, f))

	pending := &domain.Facility{AdminID: 3, Name: "Hidden Gym", City: "Astana", Status: domain.FacilityPending}
	require.NoError(t, facilities.Create(ctx, pending))

	svc := &domain.Service{
		FacilityID: f.ID, Name: "Court", Price: 4000,
		DurationMinutes: 60, Capacity: 4, IsActive: true,
	}
	require.NoError(t, services.Create(ctx, svc))

	slot := &domain.TimeSlot{
		FacilityID: f.ID, ServiceID: svc.ID,
		Date:      domain.DayOf(time.Now().AddDate(0, 0, 7)),
		StartTime: "10:00", EndTime: "11:00",
		IsActive: true, CreatedBy: 2,
	}
	require.NoError(t, slots.Create(ctx, slot))

	router := NewRouterWithMedia(db, Config{JWTSecret: testSecret}, stubMediaStore{})
	return &fixture{router: router, db: db, facility: f, pending: pending, service: svc, slot: slot}
}

func token(t *testing.T, userID int64, role domain.Role) string {
	t.Helper()
	tok, err := jwtsvc.New(testSecret, time.Hour).GenerateToken(userID, string(role))
	require.NoError(t, err)
	return tok
}

func (fx *fixture) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRouter_PublicListingShowsApprovedOnly(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, "GET", "/api/v1/facilities", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	list := data["facilities"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Arena", list[0].(map[string]any)["name"])
}

func TestRouter_PendingFacilityVisibleToItsOwner(t *testing.T) {
	fx := setup(t)

	path := fmt.Sprintf("/api/v1/facilities/%d", fx.pending.ID)

	w := fx.do(t, "GET", path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = fx.do(t, "GET", path, token(t, 3, domain.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// seedHiddenInventory gives the pending facility a service and an
// active slot, as if its admin prepared inventory before approval.
func seedHiddenInventory(t *testing.T, fx *fixture) (*domain.Service, *domain.TimeSlot) {
	t.Helper()
	ctx := context.Background()

	svc := &domain.Service{
		FacilityID: fx.pending.ID, Name: "Pool", Price: 2000,
		DurationMinutes: 60, Capacity: 6, IsActive: true,
	}
	require.NoError(t, repository.NewServiceRepository(fx.db).Create(ctx, svc))

	slot := &domain.TimeSlot{
		FacilityID: fx.pending.ID, ServiceID: svc.ID,
		Date:      domain.DayOf(time.Now().AddDate(0, 0, 7)),
		StartTime: "10:00", EndTime: "11:00",
		IsActive: true, CreatedBy: 3,
	}
	require.NoError(t, repository.NewTimeSlotRepository(fx.db).Create(ctx, slot))
	return svc, slot
}

func TestRouter_UnapprovedFacilityNotBookable(t *testing.T) {
	fx := setup(t)
	svc, slot := seedHiddenInventory(t, fx)

	w := fx.do(t, "POST", "/api/v1/bookings", "", map[string]any{
		"time_slot_id": slot.ID,
		"service_id":   svc.ID,
		"participants": 1,
		"guest_name":   "Walk-in",
		"guest_phone":  "+7 777 000 0000",
	})

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestRouter_SlotListingHidesUnapprovedFacilities(t *testing.T) {
	fx := setup(t)
	_, _ = seedHiddenInventory(t, fx)

	path := fmt.Sprintf("/api/v1/timeslots?facility_id=%d", fx.pending.ID)

	w := fx.do(t, "GET", path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Empty(t, data["slots"].([]any))

	// The owning admin still sees their own pending inventory.
	w = fx.do(t, "GET", path, token(t, 3, domain.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = decode(t, w)["data"].(map[string]any)
	assert.Len(t, data["slots"].([]any), 1)
}

func TestRouter_GuestBookingWithoutToken(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, "POST", "/api/v1/bookings", "", map[string]any{
		"time_slot_id": fx.slot.ID,
		"service_id":   fx.service.ID,
		"participants": 2,
		"guest_name":   "Walk-in",
		"guest_phone":  "+7 777 000 0000",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	booking := body["data"].(map[string]any)["booking"].(map[string]any)
	assert.Equal(t, 8000.0, booking["total_amount"])
	assert.Equal(t, "pending", booking["status"])
	assert.Nil(t, booking["user_id"])
}

func TestRouter_CapacityConflictEnvelope(t *testing.T) {
	fx := setup(t)
	userToken := token(t, 7, domain.RoleUser)

	book := func(participants int) *httptest.ResponseRecorder {
		return fx.do(t, "POST", "/api/v1/bookings", userToken, map[string]any{
			"time_slot_id": fx.slot.ID,
			"service_id":   fx.service.ID,
			"participants": participants,
		})
	}

	require.Equal(t, http.StatusCreated, book(3).Code)

	w := book(3)
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "CAPACITY_EXCEEDED", body["error"].(map[string]any)["code"])
}

func TestRouter_AdminCannotApproveOwnFacility(t *testing.T) {
	fx := setup(t)

	path := fmt.Sprintf("/api/v1/facilities/%d/status", fx.pending.ID)
	w := fx.do(t, "PATCH", path, token(t, 3, domain.RoleAdmin), map[string]any{"status": "approved"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_SuperAdminApprovesFacility(t *testing.T) {
	fx := setup(t)

	path := fmt.Sprintf("/api/v1/facilities/%d/status", fx.pending.ID)
	w := fx.do(t, "PATCH", path, token(t, 1, domain.RoleSuperAdmin), map[string]any{"status": "approved"})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	facility := body["data"].(map[string]any)["facility"].(map[string]any)
	assert.Equal(t, "approved", facility["status"])
}

func TestRouter_BookingPaymentAndRefundFlow(t *testing.T) {
	fx := setup(t)
	userToken := token(t, 7, domain.RoleUser)

	// Book.
	w := fx.do(t, "POST", "/api/v1/bookings", userToken, map[string]any{
		"time_slot_id": fx.slot.ID,
		"service_id":   fx.service.ID,
		"participants": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	bookingID := int64(decode(t, w)["data"].(map[string]any)["booking"].(map[string]any)["id"].(float64))

	// Open the payment.
	w = fx.do(t, "POST", "/api/v1/payments", userToken, map[string]any{
		"booking_id": bookingID,
		"method":     "card",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	payment := decode(t, w)["data"].(map[string]any)["payment"].(map[string]any)
	txID := payment["transaction_id"].(string)
	assert.Equal(t, 8000.0, payment["amount"])

	// A second payment for the same booking conflicts.
	w = fx.do(t, "POST", "/api/v1/payments", userToken, map[string]any{
		"booking_id": bookingID,
		"method":     "card",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Provider settles the payment; the callback needs no user token.
	w = fx.do(t, "POST", "/api/v1/payments/callback", "", map[string]any{
		"transaction_id": txID,
		"status":         "success",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Redelivered callback is a no-op.
	w = fx.do(t, "POST", "/api/v1/payments/callback", "", map[string]any{
		"transaction_id": txID,
		"status":         "failed",
	})
	require.Equal(t, http.StatusOK, w.Code)
	settled := decode(t, w)["data"].(map[string]any)["payment"].(map[string]any)
	assert.Equal(t, "completed", settled["status"])

	// Cancelling the paid booking releases capacity and refunds.
	w = fx.do(t, "POST", fmt.Sprintf("/api/v1/bookings/%d/cancel", bookingID), userToken, map[string]any{
		"reason": "plans changed",
	})
	require.Equal(t, http.StatusOK, w.Code)
	cancelled := decode(t, w)["data"].(map[string]any)["booking"].(map[string]any)
	assert.Equal(t, "cancelled", cancelled["status"])
	assert.Equal(t, "refunded", cancelled["payment_status"])

	// The ledger record carries the refund detail.
	w = fx.do(t, "GET", fmt.Sprintf("/api/v1/bookings/%d/payment", bookingID), userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	refunded := decode(t, w)["data"].(map[string]any)["payment"].(map[string]any)
	assert.Equal(t, "refunded", refunded["status"])
	assert.NotNil(t, refunded["refund_details"])

	// Capacity is back.
	slot, err := repository.NewTimeSlotRepository(fx.db).GetByID(context.Background(), fx.slot.ID)
	require.NoError(t, err)
	assert.Zero(t, slot.BookedCount)
}

func TestRouter_BulkSlotLifecycle(t *testing.T) {
	fx := setup(t)
	adminToken := token(t, 2, domain.RoleAdmin)

	base := domain.DayOf(time.Now().AddDate(0, 0, 14)).Format(domain.DateFormat)
	payload := map[string]any{
		"facility_id": fx.facility.ID,
		"service_id":  fx.service.ID,
		"base_date":   base,
		"day_offsets": []int{0, 1},
		"slots": []map[string]any{
			{"start_time": "09:00", "end_time": "10:00"},
			{"start_time": "10:00", "end_time": "11:00"},
		},
	}

	w := fx.do(t, "POST", "/api/v1/timeslots/bulk", adminToken, payload)
	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, 4.0, data["created_count"])

	// The identical request again creates nothing.
	w = fx.do(t, "POST", "/api/v1/timeslots/bulk", adminToken, payload)
	require.Equal(t, http.StatusCreated, w.Code)
	data = decode(t, w)["data"].(map[string]any)
	assert.Equal(t, 0.0, data["created_count"])
	assert.Len(t, data["skipped"].([]any), 4)
}

func TestRouter_UserCannotCreateSlots(t *testing.T) {
	fx := setup(t)

	w := fx.do(t, "POST", "/api/v1/timeslots", token(t, 7, domain.RoleUser), map[string]any{
		"facility_id": fx.facility.ID,
		"service_id":  fx.service.ID,
		"date":        "2026-09-01",
		"start_time":  "10:00",
		"end_time":    "11:00",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}
