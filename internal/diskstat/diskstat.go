package diskstat

import (
	"io/fs"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// Stats is a point-in-time snapshot of disk usage.
type Stats struct {
	TotalBytes uint64
	FreeBytes  uint64
	JobsBytes  uint64 // bytes under DATA_DIR/jobs
	CapturedAt time.Time
}

// PctFree returns the percentage of disk space that is free (0–100).
func (s Stats) PctFree() float64 {
	if s.TotalBytes == 0 {
		return 100
	}
	return float64(s.FreeBytes) / float64(s.TotalBytes) * 100
}

// Cache is a goroutine-safe cached disk stats value, refreshed periodically.
type Cache struct {
	mu      sync.RWMutex
	stats   Stats
	dataDir string
	ttl     time.Duration
	stop    chan struct{}
}

// New creates a Cache. Call Start to begin background polling.
func New(dataDir string, ttl time.Duration) *Cache {
	return &Cache{
		dataDir: dataDir,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
}

// Start begins background polling.
func (c *Cache) Start() {
	c.refresh()
	go func() {
		t := time.NewTicker(c.ttl)
		defer t.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-t.C:
				c.refresh()
			}
		}
	}()
}

// Stop halts background polling.
func (c *Cache) Stop() {
	select {
	case c.stop <- struct{}{}:
	default:
	}
}

// Get returns the latest cached stats.
func (c *Cache) Get() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Refresh forces an immediate update.
func (c *Cache) Refresh() {
	c.refresh()
}

func (c *Cache) refresh() {
	total, free, err := statFS(c.dataDir)
	if err != nil {
		// Not fatal; leave previous values in place
		return
	}
	s := Stats{
		TotalBytes: total,
		FreeBytes:  free,
		JobsBytes:  jobsDirSize(c.dataDir),
		CapturedAt: time.Now(),
	}
	c.mu.Lock()
	c.stats = s
	c.mu.Unlock()
}

func statFS(path string) (total, free uint64, err error) {
	var stat syscall.Statfs_t
	if err = syscall.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	bsize := uint64(stat.Bsize)
	return bsize * stat.Blocks, bsize * stat.Bfree, nil
}

func jobsDirSize(dataDir string) (total uint64) {
	jobsDir := filepath.Join(dataDir, "jobs")
	filepath.WalkDir(jobsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total += uint64(info.Size())
		return nil
	})
	return
}
