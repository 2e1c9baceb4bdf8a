package worker

import (
	"context"
	"database/sql"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/mhang/tilemark/internal/config"
	"github.com/mhang/tilemark/internal/db"
	"github.com/mhang/tilemark/internal/media"
	"github.com/mhang/tilemark/internal/model"
	"github.com/mhang/tilemark/internal/watermark"
)

// Pool claims watermark jobs from the queue and runs the pipelines. Each
// worker processes one job at a time; a job's pipeline invocation is strictly
// sequential internally, so WorkerCount bounds the number of concurrent
// ffmpeg children.
type Pool struct {
	database *sql.DB
	cfg      *config.Config
	pipeline *watermark.Pipeline
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewPool(database *sql.DB, cfg *config.Config, pipeline *watermark.Pipeline) *Pool {
	return &Pool{database: database, cfg: cfg, pipeline: pipeline}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	slog.Info("worker pool started", "workers", p.cfg.WorkerCount)
}

func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	slog.Info("worker pool stopped")
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	jobTypes := []string{model.JobTypeImage, model.JobTypeVideo}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := db.ClaimNextJob(p.database, jobTypes)
		if err != nil {
			slog.Error("claim job", "worker", id, "error", err)
			sleep(ctx, 2*time.Second)
			continue
		}
		if job == nil {
			sleep(ctx, 2*time.Second)
			continue
		}

		slog.Info("processing job", "worker", id, "job", job.ID, "type", job.JobType)

		if processErr := p.processJob(ctx, job); processErr != nil {
			slog.Error("job failed", "job", job.ID, "error", processErr)
			db.FailJob(p.database, job.ID, processErr.Error())
		} else {
			slog.Info("job completed", "job", job.ID)
		}
	}
}

func (p *Pool) processJob(ctx context.Context, job *model.Job) error {
	spec := watermark.NewSpec(job.Text, job.FontSize)

	outDir := filepath.Join(p.cfg.DataDir, "jobs", job.ID)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	db.UpdateJobProgress(p.database, job.ID, 10)
	p.recordMediaInfo(ctx, job)

	var outputPath string
	var err error
	switch job.JobType {
	case model.JobTypeImage:
		outputPath = filepath.Join(outDir, "output.png")
		err = p.pipeline.WatermarkImage(ctx, job.InputPath, outputPath, spec)
	case model.JobTypeVideo:
		outputPath = filepath.Join(outDir, "output.mp4")
		err = p.pipeline.WatermarkVideo(ctx, job.InputPath, outputPath, spec)
	default:
		return &unknownJobTypeError{jobType: job.JobType}
	}
	if err != nil {
		return err
	}

	return db.CompleteJob(p.database, job.ID, outputPath)
}

// recordMediaInfo stores the source dimensions (and duration for video) on
// the job row. Best effort: a probe failure here is not a job failure — the
// pipeline will report its own, better-typed error.
func (p *Pool) recordMediaInfo(ctx context.Context, job *model.Job) {
	switch job.JobType {
	case model.JobTypeVideo:
		info, err := media.Probe(ctx, job.InputPath)
		if err != nil {
			return
		}
		db.SetJobMediaInfo(p.database, job.ID, info.Width, info.Height, info.DurationSecs)
	case model.JobTypeImage:
		f, err := os.Open(job.InputPath)
		if err != nil {
			return
		}
		defer f.Close()
		cfg, _, err := image.DecodeConfig(f)
		if err != nil {
			return
		}
		db.SetJobMediaInfo(p.database, job.ID, cfg.Width, cfg.Height, 0)
	}
}

type unknownJobTypeError struct {
	jobType string
}

func (e *unknownJobTypeError) Error() string { return "unknown job type: " + e.jobType }

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
