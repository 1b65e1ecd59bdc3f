package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/knotic/internal/history"
	"github.com/jonathan/knotic/internal/types"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var _ history.Repository = (*DB)(nil)

const versionColumns = `id, user_id, file_name, raw_text, structured, readiness_report, uploaded_at`

// InsertVersion stores a new résumé version.
func (db *DB) InsertVersion(ctx context.Context, v *types.ResumeVersion) error {
	structured, err := json.Marshal(v.Structured)
	if err != nil {
		return fmt.Errorf("failed to marshal structured resume: %w", err)
	}
	readiness, err := marshalNullable(v.ReadinessReport)
	if err != nil {
		return fmt.Errorf("failed to marshal readiness report: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO resume_versions (id, user_id, file_name, raw_text, structured, readiness_report, uploaded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.UserID, v.FileName, v.RawText, structured, readiness, v.UploadedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &history.DuplicateVersionError{FileName: v.FileName}
		}
		return fmt.Errorf("failed to insert resume version: %w", err)
	}
	return nil
}

// GetVersion returns *history.NotFoundError for unknown ids.
func (db *DB) GetVersion(ctx context.Context, userID, id uuid.UUID) (*types.ResumeVersion, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+versionColumns+` FROM resume_versions WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	v, err := scanVersion(row)
	if err != nil {
		if isNoRows(err) {
			return nil, &history.NotFoundError{Resource: history.ResourceVersion, ID: id}
		}
		return nil, fmt.Errorf("failed to get resume version: %w", err)
	}
	return v, nil
}

// ListVersions returns versions in upload order.
func (db *DB) ListVersions(ctx context.Context, userID uuid.UUID) ([]types.ResumeVersion, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+versionColumns+` FROM resume_versions WHERE user_id = $1 ORDER BY seq`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resume versions: %w", err)
	}
	defer rows.Close()

	versions := []types.ResumeVersion{}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume version: %w", err)
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

// DeleteVersion removes a version. The foreign key clears a matching active pointer.
func (db *DB) DeleteVersion(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM resume_versions WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete resume version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &history.NotFoundError{Resource: history.ResourceVersion, ID: id}
	}
	return nil
}

// FileNameExists compares names case-insensitively.
func (db *DB) FileNameExists(ctx context.Context, userID uuid.UUID, fileName string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM resume_versions WHERE user_id = $1 AND LOWER(file_name) = LOWER($2))`,
		userID, fileName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check file name: %w", err)
	}
	return exists, nil
}

// UpdateReadiness replaces the version's readiness report.
func (db *DB) UpdateReadiness(ctx context.Context, userID, id uuid.UUID, report *types.ReadinessReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal readiness report: %w", err)
	}
	tag, err := db.pool.Exec(ctx,
		`UPDATE resume_versions SET readiness_report = $3 WHERE user_id = $1 AND id = $2`,
		userID, id, data,
	)
	if err != nil {
		return fmt.Errorf("failed to update readiness report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &history.NotFoundError{Resource: history.ResourceVersion, ID: id}
	}
	return nil
}

// ActiveVersionID returns nil when no version is active.
func (db *DB) ActiveVersionID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	var id *uuid.UUID
	err := db.pool.QueryRow(ctx, `SELECT active_resume_id FROM users WHERE id = $1`, userID).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active resume: %w", err)
	}
	return id, nil
}

// SetActiveVersionID sets or clears the active pointer.
func (db *DB) SetActiveVersionID(ctx context.Context, userID uuid.UUID, id *uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET active_resume_id = $2, updated_at = NOW() WHERE id = $1`,
		userID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set active resume: %w", err)
	}
	return nil
}

func scanVersion(row rowScanner) (*types.ResumeVersion, error) {
	var (
		v          types.ResumeVersion
		structured []byte
		readiness  []byte
	)
	if err := row.Scan(&v.ID, &v.UserID, &v.FileName, &v.RawText, &structured, &readiness, &v.UploadedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(structured, &v.Structured); err != nil {
		return nil, fmt.Errorf("failed to decode structured resume: %w", err)
	}
	if len(readiness) > 0 {
		v.ReadinessReport = &types.ReadinessReport{}
		if err := json.Unmarshal(readiness, v.ReadinessReport); err != nil {
			return nil, fmt.Errorf("failed to decode readiness report: %w", err)
		}
	}
	return &v, nil
}

// marshalNullable returns nil for a nil pointer so the column stays NULL.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
