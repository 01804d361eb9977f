package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/zionnix/jmd-remake/internal/booking"
	"github.com/zionnix/jmd-remake/internal/config"
	"github.com/zionnix/jmd-remake/internal/db"
	"github.com/zionnix/jmd-remake/internal/notify"
)

// review-reminder nudges the site owner about booking requests that sat in
// pending for too long. The site has a single moderator; without a nudge a
// forgotten request blocks its slot until it is reviewed.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("review-reminder starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if cfg.OwnerEmail == "" {
		log.Fatal("OWNER_EMAIL is required for the review reminder")
	}

	log.Printf("running reminder in env=%s interval=%s pending_max_age=%s",
		cfg.Env, cfg.ReminderInterval, cfg.PendingMaxAge)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	repo := booking.NewPgRepository(pgPool)
	notifier := notify.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.MailFrom, cfg.OwnerEmail)

	// Run once at startup
	runOnce(rootCtx, repo, notifier, cfg.PendingMaxAge)

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping review reminder")
			return
		case <-ticker.C:
			runOnce(rootCtx, repo, notifier, cfg.PendingMaxAge)
		}
	}
}

func runOnce(ctx context.Context, repo booking.Repository, notifier *notify.EmailNotifier, maxAge time.Duration) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	pending := booking.StatusPending
	appts, err := repo.List(runCtx, booking.Filter{Status: &pending})
	if err != nil {
		log.Printf("reminder run error: %v", err)
		return
	}

	cutoff := time.Now().Add(-maxAge)
	var stale []booking.Appointment
	for _, a := range appts {
		if a.CreatedAt.Before(cutoff) {
			stale = append(stale, a)
		}
	}

	if len(stale) == 0 {
		log.Println("reminder run complete, nothing stale")
		return
	}

	if err := notifier.SendDigest(runCtx, stale); err != nil {
		log.Printf("failed to send pending digest: %v", err)
		return
	}
	log.Printf("sent pending digest, count=%d", len(stale))
}
