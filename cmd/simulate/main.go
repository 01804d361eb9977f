package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/zionnix/jmd-remake/internal/booking"
)

// simulate fires bursts of competing submissions for the same slot at a
// running api-server and checks that each burst admits exactly one of them.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	baseURL := flag.String("url", "http://127.0.0.1:8080", "api-server base URL")
	workers := flag.Int("workers", 20, "concurrent submissions per burst")
	rounds := flag.Int("rounds", 10, "number of slot bursts")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	schedule := booking.DefaultSchedule()
	client := &http.Client{Timeout: 10 * time.Second}

	var totalAdmitted, totalConflicts, totalErrors int64
	violations := 0

	for round := 0; round < *rounds; round++ {
		// A distinct slot per round, far enough out to never be in the past.
		date := booking.DateOnly(time.Now().AddDate(0, 0, 30+round))
		template := schedule.TemplateFor(date)
		slotTime := template[round%len(template)]

		var admitted, conflicts, errs int64
		var wg sync.WaitGroup

		for w := 0; w < *workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				status, err := submit(client, *baseURL, date, slotTime)
				switch {
				case err != nil:
					atomic.AddInt64(&errs, 1)
				case status == http.StatusCreated:
					atomic.AddInt64(&admitted, 1)
				case status == http.StatusConflict:
					atomic.AddInt64(&conflicts, 1)
				default:
					atomic.AddInt64(&errs, 1)
				}
			}()
		}
		wg.Wait()

		log.Printf("round=%d slot=%s %s admitted=%d conflicts=%d errors=%d",
			round, date.Format("2006-01-02"), slotTime, admitted, conflicts, errs)

		if admitted > 1 {
			violations++
			log.Printf("DOUBLE BOOKING: round=%d admitted=%d", round, admitted)
		}

		totalAdmitted += admitted
		totalConflicts += conflicts
		totalErrors += errs
	}

	log.Printf("done: admitted=%d conflicts=%d errors=%d double_bookings=%d",
		totalAdmitted, totalConflicts, totalErrors, violations)
	if violations > 0 {
		log.Fatal("slot uniqueness violated")
	}
}

func submit(client *http.Client, baseURL string, date time.Time, slotTime string) (int, error) {
	payload := map[string]string{
		"name":      gofakeit.Name(),
		"email":     gofakeit.Email(),
		"slot_date": date.Format("2006-01-02"),
		"slot_time": slotTime,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	resp, err := client.Post(fmt.Sprintf("%s/appointments", baseURL), "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
