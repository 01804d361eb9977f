package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/zionnix/jmd-remake/internal/booking"
	"github.com/zionnix/jmd-remake/internal/db"
)

// seed fills the store with plausible appointment requests for local
// development of the moderation dashboard.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	repo := booking.NewPgRepository(pool)
	schedule := booking.DefaultSchedule()

	const attempts = 60
	created := 0

	for i := 0; i < attempts; i++ {
		date := booking.DateOnly(time.Now().AddDate(0, 0, rand.Intn(14)+1))
		template := schedule.TemplateFor(date)
		slotTime := template[rand.Intn(len(template))]

		appt := booking.Appointment{
			ID:        uuid.New(),
			Name:      gofakeit.Name(),
			Email:     gofakeit.Email(),
			SlotDate:  date,
			SlotTime:  slotTime,
			Status:    booking.StatusPending,
			CreatedAt: time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour),
		}
		if rand.Intn(2) == 0 {
			phone := gofakeit.Phone()
			appt.Phone = &phone
		}
		if rand.Intn(3) > 0 {
			msg := gofakeit.Sentence(12)
			appt.Message = &msg
		}

		stored, err := repo.CreateIfSlotFree(context.Background(), appt)
		if err != nil {
			if errors.Is(err, booking.ErrSlotTaken) {
				continue
			}
			log.Fatalf("seed appointment: %v", err)
		}
		created++

		// Roughly a third of the requests have already been moderated.
		switch rand.Intn(3) {
		case 0:
			target := booking.StatusValidated
			if rand.Intn(2) == 0 {
				target = booking.StatusRejected
			}
			_, err := repo.UpdateStatus(context.Background(), stored.ID, booking.StatusPending, target, time.Now())
			if err != nil {
				log.Fatalf("moderate seeded appointment: %v", err)
			}
		}
	}

	log.Printf("seed complete, created=%d", created)
}
