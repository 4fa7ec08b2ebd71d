package service

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/expiry"
)

// Maintenance schedules
const (
	IdempotencyPurgeSchedule = "@hourly"
	ExpirySweepSchedule      = "0 6 * * *"
)

// MaintenanceService runs housekeeping jobs on a cron schedule. None of the
// jobs touch bills or stock.
type MaintenanceService struct {
	idempotencyRepo repository.IdempotencyRepository
	catalogRepo     repository.CatalogRepository
	cron            *cron.Cron
	now             func() time.Time
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(idempotencyRepo repository.IdempotencyRepository, catalogRepo repository.CatalogRepository) *MaintenanceService {
	return &MaintenanceService{
		idempotencyRepo: idempotencyRepo,
		catalogRepo:     catalogRepo,
		cron:            cron.New(),
		now:             expiry.Now,
	}
}

// WithClock replaces the clock used by the jobs
func (s *MaintenanceService) WithClock(now func() time.Time) *MaintenanceService {
	s.now = now
	return s
}

// StartScheduler registers the jobs and starts the cron runner
func (s *MaintenanceService) StartScheduler() error {
	if _, err := s.cron.AddFunc(IdempotencyPurgeSchedule, func() {
		if _, err := s.PurgeIdempotencyKeys(context.Background()); err != nil {
			log.Printf("Maintenance: idempotency purge failed: %v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(ExpirySweepSchedule, func() {
		if _, err := s.SweepExpiry(context.Background()); err != nil {
			log.Printf("Maintenance: expiry sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Maintenance scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs
func (s *MaintenanceService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("Maintenance scheduler stopped")
}

// PurgeIdempotencyKeys deletes replay entries past their TTL
func (s *MaintenanceService) PurgeIdempotencyKeys(ctx context.Context) (int64, error) {
	n, err := s.idempotencyRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("Maintenance: purged %d expired idempotency keys", n)
	}
	return n, nil
}

// ExpirySweep is the result of one expiry sweep
type ExpirySweep struct {
	Expired      int
	ExpiringSoon int
}

// SweepExpiry logs in-stock batches that are expired or about to expire
func (s *MaintenanceService) SweepExpiry(ctx context.Context) (*ExpirySweep, error) {
	now := s.now()
	until := expiry.Today(now).Add(expiry.SoonWindow + 24*time.Hour)
	items, err := s.catalogRepo.ListExpiringBefore(ctx, until)
	if err != nil {
		return nil, err
	}

	sweep := &ExpirySweep{}
	for i := range items {
		item := &items[i]
		switch expiry.Classify(&item.ExpiryDate, now) {
		case expiry.StatusExpired:
			sweep.Expired++
			log.Printf("Maintenance: %s (Batch: %s) expired on %s, %d units in stock",
				item.Name, item.BatchNo, item.ExpiryDate.Format(expiry.DateLayout), item.Quantity)
		case expiry.StatusExpiresSoon:
			sweep.ExpiringSoon++
		}
	}
	log.Printf("Maintenance: expiry sweep found %d expired and %d expiring soon", sweep.Expired, sweep.ExpiringSoon)
	return sweep, nil
}
