package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/logging"
	"github.com/jonathan/knotic/internal/types"
	"go.uber.org/zap"
)

// Store applies the history rules on top of a Repository: unique file
// names per user, newest upload becomes active, and readiness is the only
// mutation of a stored version.
type Store struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewStore creates a Store.
func NewStore(repo Repository, logger *zap.Logger) *Store {
	return &Store{repo: repo, logger: logging.OrNop(logger), now: time.Now}
}

// CheckFileName returns *DuplicateVersionError when the user already has a
// version with this name. Call it before the expensive normalization step.
func (s *Store) CheckFileName(ctx context.Context, userID uuid.UUID, fileName string) error {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return fmt.Errorf("file name is required")
	}
	exists, err := s.repo.FileNameExists(ctx, userID, fileName)
	if err != nil {
		return fmt.Errorf("failed to check file name: %w", err)
	}
	if exists {
		return &DuplicateVersionError{FileName: fileName}
	}
	return nil
}

// Append stores a new version and makes it active. The file name is stored
// trimmed; ID and UploadedAt are assigned when zero.
func (s *Store) Append(ctx context.Context, version *types.ResumeVersion) error {
	if version == nil {
		return fmt.Errorf("version is required")
	}
	version.FileName = strings.TrimSpace(version.FileName)
	if err := s.CheckFileName(ctx, version.UserID, version.FileName); err != nil {
		return err
	}
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}
	if version.UploadedAt.IsZero() {
		version.UploadedAt = s.now().UTC()
	}

	if err := s.repo.InsertVersion(ctx, version); err != nil {
		return fmt.Errorf("failed to insert resume version: %w", err)
	}
	if err := s.repo.SetActiveVersionID(ctx, version.UserID, &version.ID); err != nil {
		return fmt.Errorf("failed to activate resume version: %w", err)
	}

	s.logger.Info("resume version stored",
		zap.String("user_id", version.UserID.String()),
		zap.String("version_id", version.ID.String()),
		zap.String("file_name", version.FileName),
	)
	return nil
}

// Get returns one version.
func (s *Store) Get(ctx context.Context, userID, id uuid.UUID) (*types.ResumeVersion, error) {
	return s.repo.GetVersion(ctx, userID, id)
}

// Delete removes a version. Deleting the active version clears the active
// pointer; no other version is promoted.
func (s *Store) Delete(ctx context.Context, userID, id uuid.UUID) error {
	activeID, err := s.repo.ActiveVersionID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read active version: %w", err)
	}
	if err := s.repo.DeleteVersion(ctx, userID, id); err != nil {
		return err
	}
	if activeID != nil && *activeID == id {
		if err := s.repo.SetActiveVersionID(ctx, userID, nil); err != nil {
			return fmt.Errorf("failed to clear active version: %w", err)
		}
		s.logger.Info("active resume version deleted", zap.String("user_id", userID.String()))
	}
	return nil
}

// List returns the user's versions in upload order.
func (s *Store) List(ctx context.Context, userID uuid.UUID) ([]types.ResumeVersion, error) {
	versions, err := s.repo.ListVersions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resume versions: %w", err)
	}
	if versions == nil {
		versions = []types.ResumeVersion{}
	}
	return versions, nil
}

// Summaries returns the list view of the user's versions.
func (s *Store) Summaries(ctx context.Context, userID uuid.UUID) ([]types.ResumeVersionSummary, error) {
	versions, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	activeID, err := s.repo.ActiveVersionID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read active version: %w", err)
	}
	out := make([]types.ResumeVersionSummary, 0, len(versions))
	for i := range versions {
		out = append(out, versions[i].Summarize(activeID))
	}
	return out, nil
}

// Active returns the active version, or *NotFoundError when none is set.
func (s *Store) Active(ctx context.Context, userID uuid.UUID) (*types.ResumeVersion, error) {
	activeID, err := s.repo.ActiveVersionID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read active version: %w", err)
	}
	if activeID == nil {
		return nil, &NotFoundError{Resource: "active " + ResourceVersion}
	}
	return s.repo.GetVersion(ctx, userID, *activeID)
}

// SetActive points the user's active version at id, which must exist.
func (s *Store) SetActive(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.repo.GetVersion(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.SetActiveVersionID(ctx, userID, &id); err != nil {
		return fmt.Errorf("failed to set active version: %w", err)
	}
	return nil
}

// AttachReadiness stores report on the version.
func (s *Store) AttachReadiness(ctx context.Context, userID, id uuid.UUID, report *types.ReadinessReport) error {
	if report == nil {
		return fmt.Errorf("readiness report is required")
	}
	return s.repo.UpdateReadiness(ctx, userID, id, report)
}
