package model

import "time"

// Job types.
const (
	JobTypeImage = "watermark_image"
	JobTypeVideo = "watermark_video"
)

// Job states.
const (
	StatePending   = "PENDING"
	StateRunning   = "RUNNING"
	StateCompleted = "COMPLETED"
	StateFailed    = "FAILED"
)

// Job is one queued watermark operation.
type Job struct {
	ID           string
	JobType      string
	State        string
	Text         string
	FontSize     int
	InputPath    string
	OutputPath   string
	ErrorMessage string
	Progress     int

	// Media properties recorded when the job is processed.
	Width        *int64
	Height       *int64
	DurationSecs *float64

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Finished reports whether the job reached a terminal state.
func (j *Job) Finished() bool {
	return j.State == StateCompleted || j.State == StateFailed
}
