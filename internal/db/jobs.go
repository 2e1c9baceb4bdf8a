package db

import (
	"database/sql"
	"time"

	"github.com/mhang/tilemark/internal/model"
)

func EnqueueJob(database *sql.DB, j *model.Job) error {
	_, err := database.Exec(
		`INSERT INTO jobs (id, job_type, text, font_size, input_path, state)
		 VALUES (?, ?, ?, ?, ?, 'PENDING')`,
		j.ID, j.JobType, j.Text, j.FontSize, j.InputPath,
	)
	return err
}

// ClaimNextJob atomically moves the oldest PENDING job of one of the given
// types to RUNNING and returns it. Returns nil when the queue is empty.
func ClaimNextJob(database *sql.DB, jobTypes []string) (*model.Job, error) {
	if len(jobTypes) == 0 {
		return nil, nil
	}

	query := `
		UPDATE jobs
		SET state = 'RUNNING', started_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = (
			SELECT id FROM jobs
			WHERE state = 'PENDING' AND job_type IN (`

	args := make([]interface{}, len(jobTypes))
	for i, jt := range jobTypes {
		if i > 0 {
			query += ","
		}
		query += "?"
		args[i] = jt
	}
	query += `) ORDER BY created_at ASC LIMIT 1
		)
		RETURNING id, job_type, state, text, font_size, input_path, output_path,
		          COALESCE(error_message, ''), progress, created_at, started_at`

	j := &model.Job{}
	var createdAt, startedAt SQLiteTime
	err := database.QueryRow(query, args...).Scan(
		&j.ID, &j.JobType, &j.State, &j.Text, &j.FontSize,
		&j.InputPath, &j.OutputPath, &j.ErrorMessage, &j.Progress,
		&createdAt, &startedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.CreatedAt = createdAt.Time
	j.StartedAt = &startedAt.Time
	return j, nil
}

func CompleteJob(database *sql.DB, id, outputPath string) error {
	_, err := database.Exec(
		`UPDATE jobs SET state = 'COMPLETED', progress = 100, output_path = ?,
		        completed_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`, outputPath, id,
	)
	return err
}

func FailJob(database *sql.DB, id, errorMsg string) error {
	_, err := database.Exec(
		`UPDATE jobs SET state = 'FAILED', error_message = ?,
		        completed_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		 WHERE id = ?`, errorMsg, id,
	)
	return err
}

func UpdateJobProgress(database *sql.DB, id string, progress int) error {
	_, err := database.Exec(`UPDATE jobs SET progress = ? WHERE id = ?`, progress, id)
	return err
}

// SetJobMediaInfo records the probed source properties on the job row.
func SetJobMediaInfo(database *sql.DB, id string, width, height int, durationSecs float64) error {
	_, err := database.Exec(
		`UPDATE jobs SET width = ?, height = ?, duration_secs = ? WHERE id = ?`,
		width, height, durationSecs, id,
	)
	return err
}

func GetJob(database *sql.DB, id string) (*model.Job, error) {
	j := &model.Job{}
	var createdAt SQLiteTime
	var startedAt, completedAt sql.NullString
	var width, height sql.NullInt64
	var duration sql.NullFloat64
	err := database.QueryRow(`
		SELECT id, job_type, state, text, font_size, input_path, output_path,
		       COALESCE(error_message, ''), progress, width, height, duration_secs,
		       created_at, started_at, completed_at
		FROM jobs WHERE id = ?`, id,
	).Scan(
		&j.ID, &j.JobType, &j.State, &j.Text, &j.FontSize,
		&j.InputPath, &j.OutputPath, &j.ErrorMessage, &j.Progress,
		&width, &height, &duration,
		&createdAt, &startedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.CreatedAt = createdAt.Time
	if width.Valid {
		j.Width = &width.Int64
	}
	if height.Valid {
		j.Height = &height.Int64
	}
	if duration.Valid {
		j.DurationSecs = &duration.Float64
	}
	if startedAt.Valid {
		var st SQLiteTime
		st.Scan(startedAt.String)
		j.StartedAt = &st.Time
	}
	if completedAt.Valid {
		var ct SQLiteTime
		ct.Scan(completedAt.String)
		j.CompletedAt = &ct.Time
	}
	return j, nil
}

// ListFinishedBefore returns terminal jobs completed before cutoff, for the
// cleanup scheduler.
func ListFinishedBefore(database *sql.DB, cutoff time.Time) ([]model.Job, error) {
	rows, err := database.Query(`
		SELECT id, job_type, state, input_path, output_path
		FROM jobs
		WHERE state IN ('COMPLETED', 'FAILED')
		  AND completed_at < ?`,
		cutoff.UTC().Format("2006-01-02T15:04:05.000Z"),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var j model.Job
		if err := rows.Scan(&j.ID, &j.JobType, &j.State, &j.InputPath, &j.OutputPath); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func DeleteJob(database *sql.DB, id string) error {
	_, err := database.Exec(`DELETE FROM jobs WHERE id = ?`, id)
	return err
}
