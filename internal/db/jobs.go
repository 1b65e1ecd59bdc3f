package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/history"
	"github.com/jonathan/knotic/internal/types"
)

const jobColumns = `id, user_id, company, position, job_description, source_url, location, salary,
	status, status_history, applied_date, notes, cached_analysis, created_at, updated_at`

// CreateJob inserts a job. The caller assigns ID and timestamps.
func (db *DB) CreateJob(ctx context.Context, job *types.Job) error {
	args, err := jobArgs(job)
	if err != nil {
		return err
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO jobs (`+jobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// UpdateJob overwrites every mutable column of an existing job.
func (db *DB) UpdateJob(ctx context.Context, job *types.Job) error {
	args, err := jobArgs(job)
	if err != nil {
		return err
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET company = $3, position = $4, job_description = $5, source_url = $6,
			location = $7, salary = $8, status = $9, status_history = $10, applied_date = $11,
			notes = $12, cached_analysis = $13, updated_at = $14
		 WHERE id = $1 AND user_id = $2`,
		append(args[:13:13], job.UpdatedAt)...,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &history.NotFoundError{Resource: history.ResourceJob, ID: job.ID}
	}
	return nil
}

// GetJob returns *history.NotFoundError when the job does not exist for the user.
func (db *DB) GetJob(ctx context.Context, userID, id uuid.UUID) (*types.Job, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 AND id = $2`, userID, id)
	job, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return nil, &history.NotFoundError{Resource: history.ResourceJob, ID: id}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns the user's jobs, newest first.
func (db *DB) ListJobs(ctx context.Context, userID uuid.UUID) ([]*types.Job, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*types.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// DeleteJob removes a job.
func (db *DB) DeleteJob(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &history.NotFoundError{Resource: history.ResourceJob, ID: id}
	}
	return nil
}

// SaveAnalysis overwrites the job's cached match report.
func (db *DB) SaveAnalysis(ctx context.Context, userID, jobID uuid.UUID, report *types.MatchReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE jobs SET cached_analysis = $3, updated_at = NOW() WHERE user_id = $1 AND id = $2`,
		userID, jobID, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &history.NotFoundError{Resource: history.ResourceJob, ID: jobID}
	}
	return nil
}

func jobArgs(job *types.Job) ([]any, error) {
	salary, err := marshalNullable(job.Salary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal salary: %w", err)
	}
	statusHistory := job.StatusHistory
	if statusHistory == nil {
		statusHistory = []types.StatusEntry{}
	}
	historyJSON, err := json.Marshal(statusHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status history: %w", err)
	}
	analysis, err := marshalNullable(job.CachedAnalysis)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	return []any{
		job.ID, job.UserID, job.Company, job.Position, job.JobDescription, job.SourceURL,
		job.Location, salary, string(job.Status), historyJSON, job.AppliedDate, job.Notes,
		analysis, job.CreatedAt, job.UpdatedAt,
	}, nil
}

func scanJob(row rowScanner) (*types.Job, error) {
	var (
		job                             types.Job
		status                          string
		salary, statusHistory, analysis []byte
	)
	err := row.Scan(&job.ID, &job.UserID, &job.Company, &job.Position, &job.JobDescription, &job.SourceURL,
		&job.Location, &salary, &status, &statusHistory, &job.AppliedDate, &job.Notes,
		&analysis, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	job.Status = types.JobStatus(status)

	if len(salary) > 0 {
		job.Salary = &types.Salary{}
		if err := json.Unmarshal(salary, job.Salary); err != nil {
			return nil, fmt.Errorf("failed to decode salary: %w", err)
		}
	}
	job.StatusHistory = []types.StatusEntry{}
	if len(statusHistory) > 0 {
		if err := json.Unmarshal(statusHistory, &job.StatusHistory); err != nil {
			return nil, fmt.Errorf("failed to decode status history: %w", err)
		}
	}
	if len(analysis) > 0 {
		job.CachedAnalysis = &types.MatchReport{}
		if err := json.Unmarshal(analysis, job.CachedAnalysis); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
	}
	return &job, nil
}
