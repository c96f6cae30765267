package services

import (
	"context"
	"log"
	"time"

	"alumnihub/remote"
)

// Scheduler captures backend snapshots on a fixed interval
type Scheduler struct {
	queries  *Queries
	binding  *remote.Binding
	interval time.Duration
}

// NewScheduler creates a snapshot scheduler acting through the given binding
func NewScheduler(queries *Queries, binding *remote.Binding, interval time.Duration) *Scheduler {
	return &Scheduler{queries: queries, binding: binding, interval: interval}
}

// StartScheduler starts the task scheduler for periodic tasks. It returns
// immediately; the loop stops when ctx is cancelled.
func (s *Scheduler) StartScheduler(ctx context.Context) {
	if s.interval <= 0 {
		log.Println("Snapshot scheduler disabled")
		return
	}
	log.Printf("Starting snapshot scheduler, interval %v", s.interval)

	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Snapshot scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce captures a single snapshot and logs the outcome
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.binding.Connect()

	ctx, cancel := context.WithTimeout(ctx, s.interval/2+time.Second)
	defer cancel()

	id, err := s.queries.CreateSnapshot(ctx, s.binding)
	if err != nil {
		log.Printf("Scheduled snapshot failed: %v", err)
		return
	}
	log.Printf("Scheduled snapshot %d captured", id)
}
