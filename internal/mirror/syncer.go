// Package mirror periodically copies the open-task list into an
// external notes target. Syncing is best-effort: failures are logged
// and swallowed, never surfaced to request handling.
package mirror

import (
	"context"
	"log"
	"time"

	"github.com/odedby/tasknest/internal/service"
)

// Syncer runs the periodic mirror loop.
type Syncer struct {
	tasks    *service.TaskService
	writer   Writer
	interval time.Duration
}

func NewSyncer(tasks *service.TaskService, writer Writer, interval time.Duration) *Syncer {
	return &Syncer{tasks: tasks, writer: writer, interval: interval}
}

// Run syncs on the configured interval until the context is cancelled.
// It never returns a sync error; the loop outlives individual failures.
func (s *Syncer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("🔄 Mirror sync enabled (every %v)", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Mirror sync stopped")
			return ctx.Err()
		case <-ticker.C:
			s.SyncOnce(ctx)
		}
	}
}

// SyncOnce performs a single snapshot write. Failures are logged only.
func (s *Syncer) SyncOnce(ctx context.Context) {
	tasks, err := s.tasks.ListOpen(ctx, service.ListFilter{})
	if err != nil {
		log.Printf("⚠️ Mirror sync failed reading tasks: %v", err)
		return
	}

	if err := s.writer.WriteSnapshot(tasks); err != nil {
		log.Printf("⚠️ Mirror sync failed writing snapshot: %v", err)
		return
	}

	log.Printf("✅ Mirror sync complete: %d tasks", len(tasks))
}
