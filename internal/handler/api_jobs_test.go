package handler_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mhang/tilemark/internal/config"
	"github.com/mhang/tilemark/internal/db"
	"github.com/mhang/tilemark/internal/handler"
	"github.com/mhang/tilemark/internal/model"
)

func newTestServer(t *testing.T) (*httptest.Server, *sql.DB, *config.Config) {
	t.Helper()

	dataDir := t.TempDir()
	database, err := db.Open(dataDir)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(database); err != nil {
		t.Fatalf("db.Migrate: %v", err)
	}

	cfg := &config.Config{
		DataDir:        dataDir,
		MaxUploadBytes: 32 << 20,
	}

	rl := handler.NewRateLimiter(1000, 1000)
	t.Cleanup(rl.Stop)

	h := handler.New(database, cfg, nil)
	srv := httptest.NewServer(h.Routes(rl))
	t.Cleanup(srv.Close)
	return srv, database, cfg
}

func multipartUpload(t *testing.T, filename, text, fontSize string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("fake media payload"))
	if text != "" {
		mw.WriteField("text", text)
	}
	if fontSize != "" {
		mw.WriteField("font_size", fontSize)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeJob(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return m
}

func TestSubmitImageJob(t *testing.T) {
	srv, database, cfg := newTestServer(t)

	body, ctype := multipartUpload(t, "photo.jpg", "CONFIDENTIAL", "48")
	resp, err := http.Post(srv.URL+"/api/v1/watermark", ctype, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	got := decodeJob(t, resp.Body)
	if got["job_type"] != model.JobTypeImage {
		t.Errorf("job_type = %v, want %s", got["job_type"], model.JobTypeImage)
	}
	if got["state"] != model.StatePending {
		t.Errorf("state = %v, want %s", got["state"], model.StatePending)
	}
	if got["font_size"] != float64(48) {
		t.Errorf("font_size = %v, want 48", got["font_size"])
	}

	jobID, _ := got["job_id"].(string)
	if jobID == "" {
		t.Fatal("response carries no job_id")
	}

	// Upload saved under the job directory.
	inputPath := filepath.Join(cfg.DataDir, "jobs", jobID, "input.jpg")
	if _, err := os.Stat(inputPath); err != nil {
		t.Errorf("uploaded file not saved: %v", err)
	}

	// Row persisted.
	stored, err := db.GetJob(database, jobID)
	if err != nil || stored == nil {
		t.Fatalf("GetJob(%s) = %v, %v", jobID, stored, err)
	}
	if stored.Text != "CONFIDENTIAL" {
		t.Errorf("stored text = %q", stored.Text)
	}
}

func TestSubmitVideoJobDefaultFontSize(t *testing.T) {
	srv, _, _ := newTestServer(t)

	body, ctype := multipartUpload(t, "clip.mp4", "draft", "")
	resp, err := http.Post(srv.URL+"/api/v1/watermark", ctype, body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	got := decodeJob(t, resp.Body)
	if got["job_type"] != model.JobTypeVideo {
		t.Errorf("job_type = %v, want %s", got["job_type"], model.JobTypeVideo)
	}
	if got["font_size"] != float64(36) {
		t.Errorf("font_size = %v, want default 36", got["font_size"])
	}
}

func TestSubmitRejectsBadRequests(t *testing.T) {
	srv, _, _ := newTestServer(t)

	cases := []struct {
		name       string
		filename   string
		text       string
		fontSize   string
		wantStatus int
	}{
		{"missing text", "a.png", "", "", http.StatusBadRequest},
		{"bad font size", "a.png", "x", "zero", http.StatusBadRequest},
		{"negative font size", "a.png", "x", "-3", http.StatusBadRequest},
		{"unsupported extension", "a.exe", "x", "", http.StatusUnsupportedMediaType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ctype := multipartUpload(t, tc.filename, tc.text, tc.fontSize)
			resp, err := http.Post(srv.URL+"/api/v1/watermark", ctype, body)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
		})
	}
}

func TestGetJob(t *testing.T) {
	srv, database, _ := newTestServer(t)

	job := &model.Job{ID: "known", JobType: model.JobTypeImage, Text: "x", FontSize: 36, InputPath: "/in"}
	if err := db.EnqueueJob(database, job); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/api/v1/jobs/known")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decodeJob(t, resp.Body)
	if got["job_id"] != "known" {
		t.Errorf("job_id = %v", got["job_id"])
	}
}

func TestGetJobNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/jobs/ghost")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestJobFileNotReady(t *testing.T) {
	srv, database, _ := newTestServer(t)

	job := &model.Job{ID: "pending", JobType: model.JobTypeImage, Text: "x", FontSize: 36, InputPath: "/in"}
	if err := db.EnqueueJob(database, job); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/api/v1/jobs/pending/file")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestJobFileDownload(t *testing.T) {
	srv, database, cfg := newTestServer(t)

	outPath := filepath.Join(cfg.DataDir, "result.png")
	if err := os.WriteFile(outPath, []byte("png bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	job := &model.Job{ID: "done", JobType: model.JobTypeImage, Text: "x", FontSize: 36, InputPath: "/in"}
	if err := db.EnqueueJob(database, job); err != nil {
		t.Fatal(err)
	}
	if err := db.CompleteJob(database, "done", outPath); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/api/v1/jobs/done/file")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="watermarked.png"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "png bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decodeJob(t, resp.Body)
	if got["status"] != "ok" {
		t.Errorf("status field = %v, want ok", got["status"])
	}
}
