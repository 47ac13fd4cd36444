package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"facilitybook/internal/database"
	"facilitybook/internal/domain"
	"facilitybook/internal/repository"
)

// Seeds a local database with two facilities, their services and a week
// of time slots, plus a few bookings. Intended for development only.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "facilitybook.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("migration failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM time_slots")
	db.Exec("DELETE FROM services")
	db.Exec("DELETE FROM facilities")

	ctx := context.Background()
	facilities := repository.NewFacilityRepository(db)
	services := repository.NewServiceRepository(db)
	slots := repository.NewTimeSlotRepository(db)
	bookings := repository.NewBookingRepository(db)

	log.Println("Creating facilities...")
	arena := &domain.Facility{
		AdminID:     1,
		Name:        "Central Sports Arena",
		Description: "Indoor courts and a 25m pool",
		Address:     "12 Riverside Ave",
		City:        "Almaty",
		Phone:       "+7 727 000 0001",
		Status:      domain.FacilityApproved,
	}
	if err := facilities.Create(ctx, arena); err != nil {
		log.Fatal(err)
	}

	studio := &domain.Facility{
		AdminID: 2,
		Name:    "Northside Yoga Studio",
		Address: "4 Hillcrest Rd",
		City:    "Astana",
		Status:  domain.FacilityPending,
	}
	if err := facilities.Create(ctx, studio); err != nil {
		log.Fatal(err)
	}

	log.Println("Creating services...")
	court := &domain.Service{
		FacilityID:      arena.ID,
		Name:            "Badminton court",
		Price:           4000,
		DurationMinutes: 60,
		Capacity:        4,
		IsActive:        true,
	}
	pool := &domain.Service{
		FacilityID:      arena.ID,
		Name:            "Pool lane",
		Price:           2500,
		DurationMinutes: 45,
		Capacity:        6,
		IsActive:        true,
	}
	for _, svc := range []*domain.Service{court, pool} {
		if err := services.Create(ctx, svc); err != nil {
			log.Fatal(err)
		}
	}

	log.Println("Creating a week of slots...")
	windows := [][2]string{{"09:00", "10:00"}, {"10:00", "11:00"}, {"18:00", "19:00"}}
	var firstSlot *domain.TimeSlot
	for day := 0; day < 7; day++ {
		date := domain.DayOf(time.Now().AddDate(0, 0, day+1))
		for _, w := range windows {
			slot := &domain.TimeSlot{
				FacilityID: arena.ID,
				ServiceID:  court.ID,
				Date:       date,
				StartTime:  w[0],
				EndTime:    w[1],
				IsActive:   true,
				CreatedBy:  arena.AdminID,
			}
			if err := slots.Create(ctx, slot); err != nil {
				log.Fatal(err)
			}
			if firstSlot == nil {
				firstSlot = slot
			}
		}
	}

	log.Println("Creating bookings...")
	userID := int64(10)
	b := &domain.Booking{
		FacilityID:    arena.ID,
		ServiceID:     court.ID,
		TimeSlotID:    firstSlot.ID,
		UserID:        &userID,
		Participants:  2,
		TotalAmount:   court.Price * 2,
		Status:        domain.BookingConfirmed,
		PaymentStatus: domain.PaymentPending,
	}
	if err := bookings.CreateWithReservation(ctx, b, court.Capacity); err != nil {
		log.Fatal(err)
	}

	guest := &domain.Booking{
		FacilityID:    arena.ID,
		ServiceID:     court.ID,
		TimeSlotID:    firstSlot.ID,
		GuestName:     "Walk-in guest",
		GuestPhone:    "+7 777 123 4567",
		Participants:  1,
		TotalAmount:   court.Price,
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentPending,
	}
	if err := bookings.CreateWithReservation(ctx, guest, court.Capacity); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Seed completed:")
	fmt.Printf("  facility %d (%s, approved), facility %d (%s, pending)\n", arena.ID, arena.Name, studio.ID, studio.Name)
	fmt.Printf("  services %d, %d; 21 slots; 2 bookings on slot %d\n", court.ID, pool.ID, firstSlot.ID)
}
