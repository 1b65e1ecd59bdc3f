// Package resumes orchestrates résumé uploads: extraction, normalization,
// history storage, archiving and readiness assessment.
package resumes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/blobstore"
	"github.com/jonathan/knotic/internal/fingerprint"
	"github.com/jonathan/knotic/internal/history"
	"github.com/jonathan/knotic/internal/ingestion"
	"github.com/jonathan/knotic/internal/logging"
	"github.com/jonathan/knotic/internal/types"
	"go.uber.org/zap"
)

// Normalizer structures extracted résumé text.
type Normalizer interface {
	Normalize(ctx context.Context, rawText string) (*types.StructuredResume, error)
}

// Assessor produces readiness reports.
type Assessor interface {
	Assess(ctx context.Context, resume *types.StructuredResume) (*types.ReadinessReport, error)
}

// Service handles résumé versions for authenticated users.
type Service struct {
	extractor  ingestion.Extractor
	normalizer Normalizer
	assessor   Assessor
	history    *history.Store
	blobs      blobstore.Store
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a Service. A nil blob store disables archiving.
func NewService(extractor ingestion.Extractor, normalizer Normalizer, assessor Assessor, store *history.Store, blobs blobstore.Store, logger *zap.Logger) *Service {
	if blobs == nil {
		blobs = blobstore.Nop{}
	}
	return &Service{
		extractor:  extractor,
		normalizer: normalizer,
		assessor:   assessor,
		history:    store,
		blobs:      blobs,
		logger:     logging.OrNop(logger),
		now:        time.Now,
	}
}

// Upload turns a PDF into a new active résumé version. The file name is
// checked before any extraction or delegate work, and nothing is stored
// unless every step succeeds.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, fileName string, data []byte) (*types.ResumeVersion, error) {
	fileName = strings.TrimSpace(fileName)
	if err := s.history.CheckFileName(ctx, userID, fileName); err != nil {
		return nil, err
	}

	text, err := ingestion.ExtractText(ctx, s.extractor, data)
	if err != nil {
		return nil, err
	}

	structured, err := s.normalizer.Normalize(ctx, text)
	if err != nil {
		return nil, err
	}

	version := &types.ResumeVersion{
		ID:         uuid.New(),
		UserID:     userID,
		FileName:   fileName,
		RawText:    text,
		Structured: *structured,
		UploadedAt: s.now().UTC(),
	}

	if err := s.blobs.Put(ctx, userID, version.ID, data); err != nil {
		return nil, err
	}
	if err := s.history.Append(ctx, version); err != nil {
		if delErr := s.blobs.Delete(ctx, userID, version.ID); delErr != nil {
			s.logger.Warn("failed to remove archived document", zap.Error(delErr))
		}
		return nil, err
	}
	return version, nil
}

// Delete removes a version and its archived document.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.history.Delete(ctx, userID, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, userID, id); err != nil {
		s.logger.Warn("failed to delete archived document",
			zap.String("version_id", id.String()), zap.Error(err))
	}
	return nil
}

// List returns the version summaries.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]types.ResumeVersionSummary, error) {
	return s.history.Summaries(ctx, userID)
}

// Get returns one version.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*types.ResumeVersion, error) {
	return s.history.Get(ctx, userID, id)
}

// Active returns the active version.
func (s *Service) Active(ctx context.Context, userID uuid.UUID) (*types.ResumeVersion, error) {
	return s.history.Active(ctx, userID)
}

// SetActive switches the active version.
func (s *Service) SetActive(ctx context.Context, userID, id uuid.UUID) error {
	return s.history.SetActive(ctx, userID, id)
}

// Assess returns the version's readiness report, reusing the stored one
// unless refresh is set or it was computed from different content. The
// boolean reports reuse.
func (s *Service) Assess(ctx context.Context, userID, id uuid.UUID, refresh bool) (*types.ReadinessReport, bool, error) {
	version, err := s.history.Get(ctx, userID, id)
	if err != nil {
		return nil, false, err
	}

	current := fingerprint.Of(version.Structured)
	if !refresh && version.ReadinessReport != nil && fingerprint.Equal(version.ReadinessReport.ResumeHash, current) {
		return version.ReadinessReport, true, nil
	}

	report, err := s.assessor.Assess(ctx, &version.Structured)
	if err != nil {
		return nil, false, err
	}
	report.ResumeHash = current

	if err := s.history.AttachReadiness(ctx, userID, id, report); err != nil {
		return nil, false, fmt.Errorf("failed to store readiness report: %w", err)
	}
	return report, false, nil
}
