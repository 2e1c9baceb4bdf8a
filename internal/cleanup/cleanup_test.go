package cleanup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mhang/tilemark/internal/db"
	"github.com/mhang/tilemark/internal/model"
)

func setup(t *testing.T) (*sql.DB, string) {
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
	return database, dataDir
}

func addJob(t *testing.T, database *sql.DB, dataDir, id string, completedAt string) {
	t.Helper()
	job := &model.Job{ID: id, JobType: model.JobTypeImage, Text: "x", FontSize: 36, InputPath: "/in"}
	if err := db.EnqueueJob(database, job); err != nil {
		t.Fatal(err)
	}
	if completedAt != "" {
		if err := db.CompleteJob(database, id, "/out"); err != nil {
			t.Fatal(err)
		}
		if _, err := database.Exec(`UPDATE jobs SET completed_at = ? WHERE id = ?`, completedAt, id); err != nil {
			t.Fatal(err)
		}
	}
	jobDir := filepath.Join(dataDir, "jobs", id)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(jobDir, "output.png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunOnceRemovesExpiredJobs(t *testing.T) {
	database, dataDir := setup(t)

	addJob(t, database, dataDir, "ancient", "2000-01-01T00:00:00.000Z")
	addJob(t, database, dataDir, "recent", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	addJob(t, database, dataDir, "running", "")

	c := &Cleaner{DB: database, DataDir: dataDir, Interval: time.Hour, MaxAge: 24 * time.Hour}
	c.runOnce()

	// The expired job and its files are gone.
	if j, _ := db.GetJob(database, "ancient"); j != nil {
		t.Error("expired job still in database")
	}
	if _, err := os.Stat(filepath.Join(dataDir, "jobs", "ancient")); !os.IsNotExist(err) {
		t.Error("expired job directory still on disk")
	}

	// The fresh and the unfinished jobs survive.
	for _, id := range []string{"recent", "running"} {
		if j, _ := db.GetJob(database, id); j == nil {
			t.Errorf("job %s was removed, want kept", id)
		}
		if _, err := os.Stat(filepath.Join(dataDir, "jobs", id)); err != nil {
			t.Errorf("job %s directory missing: %v", id, err)
		}
	}
}
