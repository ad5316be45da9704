package database

import (
	"darshan/internal/bookings"
	"darshan/internal/crowd"
	"darshan/internal/emergency"
	"darshan/internal/parking"
	"darshan/internal/payments"
	"darshan/internal/queue"
	"darshan/internal/traffic"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&bookings.Booking{},
		&queue.QueueEntry{},
		&crowd.CrowdReading{},
		&parking.ParkingZone{},
		&traffic.Advisory{},
		&payments.PaymentTransaction{},
		&emergency.Incident{},
	)
}
