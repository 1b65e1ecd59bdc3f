// Package history keeps each user's ordered résumé versions and the pointer
// to the active one.
package history

import (
	"context"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/types"
)

// Repository persists résumé versions. Implementations return
// *NotFoundError for unknown ids and list versions in insertion order.
type Repository interface {
	InsertVersion(ctx context.Context, version *types.ResumeVersion) error
	GetVersion(ctx context.Context, userID, id uuid.UUID) (*types.ResumeVersion, error)
	ListVersions(ctx context.Context, userID uuid.UUID) ([]types.ResumeVersion, error)
	DeleteVersion(ctx context.Context, userID, id uuid.UUID) error
	FileNameExists(ctx context.Context, userID uuid.UUID, fileName string) (bool, error)
	UpdateReadiness(ctx context.Context, userID, id uuid.UUID, report *types.ReadinessReport) error

	// ActiveVersionID returns nil when the user has no active version.
	ActiveVersionID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error)
	SetActiveVersionID(ctx context.Context, userID uuid.UUID, id *uuid.UUID) error
}
