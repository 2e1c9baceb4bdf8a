package handler

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mhang/tilemark/internal/db"
	"github.com/mhang/tilemark/internal/model"
	"github.com/mhang/tilemark/internal/watermark"
)

// imageExts and videoExts decide which pipeline an upload is queued for.
var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".tif": true, ".tiff": true, ".bmp": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".webm": true,
}

type apiJob struct {
	JobID        string   `json:"job_id"`
	JobType      string   `json:"job_type"`
	State        string   `json:"state"`
	Progress     int      `json:"progress"`
	Text         string   `json:"text"`
	FontSize     int      `json:"font_size"`
	Width        *int64   `json:"width,omitempty"`
	Height       *int64   `json:"height,omitempty"`
	DurationSecs *float64 `json:"duration_secs,omitempty"`
	Error        string   `json:"error,omitempty"`
	CreatedAt    string   `json:"created_at"`
	StartedAt    *string  `json:"started_at,omitempty"`
	CompletedAt  *string  `json:"completed_at,omitempty"`
}

func jobToAPI(j *model.Job) apiJob {
	out := apiJob{
		JobID:        j.ID,
		JobType:      j.JobType,
		State:        j.State,
		Progress:     j.Progress,
		Text:         j.Text,
		FontSize:     j.FontSize,
		Width:        j.Width,
		Height:       j.Height,
		DurationSecs: j.DurationSecs,
		Error:        j.ErrorMessage,
		CreatedAt:    j.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if j.StartedAt != nil {
		s := j.StartedAt.UTC().Format("2006-01-02T15:04:05Z")
		out.StartedAt = &s
	}
	if j.CompletedAt != nil {
		s := j.CompletedAt.UTC().Format("2006-01-02T15:04:05Z")
		out.CompletedAt = &s
	}
	return out
}

// APIWatermarkSubmit — POST /api/v1/watermark
// Multipart form: file (image or video), text, font_size (optional).
func (h *Handler) APIWatermarkSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "missing 'file' field in form")
		return
	}
	defer file.Close()

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "missing 'text' field")
		return
	}

	fontSize := watermark.DefaultFontSize
	if v := r.FormValue("font_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "font_size must be a positive integer")
			return
		}
		fontSize = n
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	var jobType string
	switch {
	case imageExts[ext]:
		jobType = model.JobTypeImage
	case videoExts[ext]:
		jobType = model.JobTypeVideo
	default:
		renderJSONError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "unsupported file type")
		return
	}

	jobID := uuid.New().String()

	jobDir := filepath.Join(h.Cfg.DataDir, "jobs", jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		slog.Error("create job dir", "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create job directory")
		return
	}

	inputPath := filepath.Join(jobDir, "input"+ext)
	dst, err := os.Create(inputPath)
	if err != nil {
		slog.Error("create input file", "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create input file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		slog.Error("save input file", "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to save file")
		return
	}

	job := &model.Job{
		ID:        jobID,
		JobType:   jobType,
		Text:      text,
		FontSize:  fontSize,
		InputPath: inputPath,
	}
	if err := db.EnqueueJob(h.DB, job); err != nil {
		slog.Error("enqueue job", "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to enqueue job")
		return
	}

	stored, err := db.GetJob(h.DB, jobID)
	if err != nil || stored == nil {
		slog.Error("load enqueued job", "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load job")
		return
	}
	renderJSON(w, http.StatusAccepted, jobToAPI(stored))
}

// APIJobGet — GET /api/v1/jobs/{jobID}
func (h *Handler) APIJobGet(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := db.GetJob(h.DB, jobID)
	if err != nil {
		slog.Error("get job", "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to get job")
		return
	}
	if job == nil {
		renderJSONError(w, http.StatusNotFound, "NOT_FOUND", "job not found")
		return
	}
	renderJSON(w, http.StatusOK, jobToAPI(job))
}

// APIJobFile — GET /api/v1/jobs/{jobID}/file
func (h *Handler) APIJobFile(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := db.GetJob(h.DB, jobID)
	if err != nil {
		slog.Error("get job", "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to get job")
		return
	}
	if job == nil {
		renderJSONError(w, http.StatusNotFound, "NOT_FOUND", "job not found")
		return
	}
	if job.State != model.StateCompleted || job.OutputPath == "" {
		renderJSONError(w, http.StatusConflict, "NOT_READY", "job has not completed")
		return
	}

	name := "watermarked" + filepath.Ext(job.OutputPath)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeFile(w, r, job.OutputPath)
}
