package app

import (
	"time"

	"facilitybook/internal/media"
	"facilitybook/internal/middleware"
	"facilitybook/internal/modules/booking"
	"facilitybook/internal/modules/catalog"
	"facilitybook/internal/modules/facility"
	"facilitybook/internal/modules/payment"
	"facilitybook/internal/modules/timeslot"
	jwtsvc "facilitybook/internal/pkg/jwt"
	"facilitybook/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const staticPrefix = "/static/uploads"

type Config struct {
	JWTSecret  string
	TokenTTL   time.Duration
	UploadsDir string
}

// NewRouter assembles the full HTTP surface on one gin engine. Public
// reads run under optional auth so operators see their own unlisted
// resources through the same endpoints; writes require a token.
func NewRouter(db *gorm.DB, cfg Config) *gin.Engine {
	return NewRouterWithMedia(db, cfg, media.NewDiskStore(cfg.UploadsDir, staticPrefix))
}

// NewRouterWithMedia is NewRouter with an explicit media store,
// letting tests substitute the disk-backed one.
func NewRouterWithMedia(db *gorm.DB, cfg Config, mediaStore media.Store) *gin.Engine {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	j := jwtsvc.New(cfg.JWTSecret, cfg.TokenTTL)

	facilityRepo := repository.NewFacilityRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	facilityService := facility.NewService(facilityRepo, mediaStore)
	catalogService := catalog.NewService(serviceRepo, facilityRepo)
	timeslotService := timeslot.NewService(slotRepo, serviceRepo, facilityRepo)
	paymentService := payment.NewService(paymentRepo, bookingRepo, facilityRepo)
	bookingService := booking.NewService(bookingRepo, slotRepo, serviceRepo, facilityRepo, paymentService)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.ErrorLogger(), middleware.CORS())

	if cfg.UploadsDir != "" {
		r.Static(staticPrefix, cfg.UploadsDir)
	}

	v1 := r.Group("/api/v1")

	public := v1.Group("/")
	public.Use(middleware.OptionalJWTAuth(j))

	protected := v1.Group("/")
	protected.Use(middleware.JWTAuth(j))

	facility.NewHandler(facilityService).RegisterRoutes(public, protected)
	catalog.NewHandler(catalogService).RegisterRoutes(public, protected)
	timeslot.NewHandler(timeslotService).RegisterRoutes(public, protected)
	booking.NewHandler(bookingService).RegisterRoutes(public, protected)
	payment.NewHandler(paymentService).RegisterRoutes(public, protected)

	return r
}
