// Package cleanup removes finished jobs and their files once they age out.
package cleanup

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mhang/tilemark/internal/db"
)

type Cleaner struct {
	DB       *sql.DB
	DataDir  string
	Interval time.Duration
	MaxAge   time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func (c *Cleaner) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.loop(ctx)
	slog.Info("cleanup scheduler started", "interval", c.Interval, "max_age", c.MaxAge)
}

func (c *Cleaner) Stop() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	slog.Info("cleanup scheduler stopped")
}

func (c *Cleaner) loop(ctx context.Context) {
	defer close(c.done)

	c.runOnce()

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runOnce()
		}
	}
}

func (c *Cleaner) runOnce() {
	cutoff := time.Now().Add(-c.MaxAge)
	jobs, err := db.ListFinishedBefore(c.DB, cutoff)
	if err != nil {
		slog.Error("cleanup: list finished jobs", "error", err)
		return
	}
	for _, job := range jobs {
		jobDir := filepath.Join(c.DataDir, "jobs", job.ID)
		if err := os.RemoveAll(jobDir); err != nil {
			slog.Warn("cleanup: remove job dir", "dir", jobDir, "error", err)
			continue
		}
		if err := db.DeleteJob(c.DB, job.ID); err != nil {
			slog.Error("cleanup: delete job", "id", job.ID, "error", err)
			continue
		}
		slog.Info("cleanup: removed expired job", "id", job.ID, "state", job.State)
	}
}
