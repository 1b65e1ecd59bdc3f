// Package jobs implements the job tracker: CRUD, the application status
// workflow, importing descriptions from URLs and cached match analysis.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/analysis"
	"github.com/jonathan/knotic/internal/fetch"
	"github.com/jonathan/knotic/internal/history"
	"github.com/jonathan/knotic/internal/logging"
	"github.com/jonathan/knotic/internal/types"
	"go.uber.org/zap"
)

// DefaultAnalyzeParallel bounds concurrent delegate calls in AnalyzeAll.
const DefaultAnalyzeParallel = 4

// Resumes is the résumé side of an analysis.
type Resumes interface {
	Upload(ctx context.Context, userID uuid.UUID, fileName string, data []byte) (*types.ResumeVersion, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*types.ResumeVersion, error)
	Active(ctx context.Context, userID uuid.UUID) (*types.ResumeVersion, error)
	SetActive(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Importer fetches job description text from a posting URL.
type Importer interface {
	Import(ctx context.Context, url string, useBrowser bool) (*fetch.Posting, error)
}

// Service implements the job tracker for authenticated users.
type Service struct {
	repo     Repository
	cache    *analysis.Cache
	resumes  Resumes
	importer Importer
	logger   *zap.Logger
	now      func() time.Time
	parallel int
}

// NewService creates a Service.
func NewService(repo Repository, cache *analysis.Cache, resumes Resumes, importer Importer, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		resumes:  resumes,
		importer: importer,
		logger:   logging.OrNop(logger),
		now:      time.Now,
		parallel: DefaultAnalyzeParallel,
	}
}

// WithParallel sets the AnalyzeAll concurrency limit.
func (s *Service) WithParallel(n int) *Service {
	if n > 0 {
		s.parallel = n
	}
	return s
}

// Create starts tracking a job in the Interested state.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *types.CreateJobRequest) (*types.Job, error) {
	now := s.now().UTC()
	job := &types.Job{
		ID:             uuid.New(),
		UserID:         userID,
		Company:        strings.TrimSpace(req.Company),
		Position:       strings.TrimSpace(req.Position),
		JobDescription: types.StringPtr(strings.TrimSpace(req.JobDescription)),
		SourceURL:      types.StringPtr(req.SourceURL),
		Location:       req.Location,
		Salary:         req.Salary,
		Notes:          req.Notes,
		CreatedAt:      now,
	}
	if job.Location == "" {
		job.Location = types.LocationRemote
	}
	job.TransitionTo(types.StatusInterested, "", now)

	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Import creates a job whose description is fetched from req.URL.
func (s *Service) Import(ctx context.Context, userID uuid.UUID, req *types.ImportJobRequest) (*types.Job, error) {
	if s.importer == nil {
		return nil, errors.New("job import is not configured")
	}
	posting, err := s.importer.Import(ctx, req.URL, req.UseBrowser)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, userID, &types.CreateJobRequest{
		Company:        req.Company,
		Position:       req.Position,
		JobDescription: posting.Text,
		SourceURL:      posting.URL,
	})
}

// Get returns one job.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*types.Job, error) {
	return s.repo.GetJob(ctx, userID, id)
}

// List returns the user's jobs, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*types.Job, error) {
	return s.repo.ListJobs(ctx, userID)
}

// Update applies the non-nil fields of req. Editing the job description
// does not clear the cached analysis; its fingerprint no longer matches.
func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *types.UpdateJobRequest) (*types.Job, error) {
	job, err := s.repo.GetJob(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Company != nil {
		job.Company = strings.TrimSpace(*req.Company)
	}
	if req.Position != nil {
		job.Position = strings.TrimSpace(*req.Position)
	}
	if req.JobDescription != nil {
		job.JobDescription = types.StringPtr(strings.TrimSpace(*req.JobDescription))
	}
	if req.Location != nil {
		job.Location = *req.Location
	}
	if req.Salary != nil {
		job.Salary = req.Salary
	}
	if req.Notes != nil {
		job.Notes = *req.Notes
	}
	job.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateStatus moves the job through the application workflow.
func (s *Service) UpdateStatus(ctx context.Context, userID, id uuid.UUID, req *types.UpdateStatusRequest) (*types.Job, error) {
	status, err := types.ParseJobStatus(req.Status)
	if err != nil {
		return nil, err
	}
	job, err := s.repo.GetJob(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	job.TransitionTo(status, req.Note, s.now().UTC())
	if err := s.repo.UpdateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete stops tracking a job.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteJob(ctx, userID, id)
}

// Upload is a résumé file submitted with an analysis request
type Upload struct {
	FileName string
	Data     []byte
}

// AnalyzeRequest selects the résumé for an analysis. Upload wins over
// ResumeID, which wins over the active version. An upload always forces a
// fresh analysis.
type AnalyzeRequest struct {
	ResumeID     *uuid.UUID
	Upload       *Upload
	ForceRefresh bool
}

// AnalyzeResult is a match report and whether it came from the cache
type AnalyzeResult struct {
	Report          *types.MatchReport `json:"analysis"`
	Cached          bool               `json:"cached"`
	ResumeVersionID uuid.UUID          `json:"resumeVersionId"`
}

// Analyze scores the job against a résumé, reusing the cached report when
// neither input has changed. A résumé uploaded with the request is removed
// again, and the previous active version restored, when scoring fails.
func (s *Service) Analyze(ctx context.Context, userID, jobID uuid.UUID, req AnalyzeRequest) (*AnalyzeResult, error) {
	job, err := s.repo.GetJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if !job.HasJobDescription() {
		return nil, analysis.ErrMissingJobDescription
	}

	var prevActive *uuid.UUID
	if req.Upload != nil {
		if prevActive, err = s.activeID(ctx, userID); err != nil {
			return nil, err
		}
	}

	version, force, err := s.resolveResume(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	report, cached, err := s.cache.GetOrCompute(ctx, job, version, force)
	if err != nil {
		if req.Upload != nil {
			s.rollbackUpload(ctx, userID, version.ID, prevActive)
		}
		return nil, err
	}
	return &AnalyzeResult{Report: report, Cached: cached, ResumeVersionID: version.ID}, nil
}

// activeID returns the active version id, or nil when none is set.
func (s *Service) activeID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	v, err := s.resumes.Active(ctx, userID)
	if err != nil {
		var nf *history.NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}
	return &v.ID, nil
}

func (s *Service) rollbackUpload(ctx context.Context, userID, uploaded uuid.UUID, prevActive *uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	if err := s.resumes.Delete(ctx, userID, uploaded); err != nil {
		s.logger.Error("failed to remove uploaded resume after failed analysis",
			zap.String("version_id", uploaded.String()), zap.Error(err))
		return
	}
	if prevActive == nil {
		return
	}
	if err := s.resumes.SetActive(ctx, userID, *prevActive); err != nil {
		s.logger.Error("failed to restore active resume after failed analysis",
			zap.String("version_id", prevActive.String()), zap.Error(err))
	}
}

func (s *Service) resolveResume(ctx context.Context, userID uuid.UUID, req AnalyzeRequest) (*types.ResumeVersion, bool, error) {
	switch {
	case req.Upload != nil:
		v, err := s.resumes.Upload(ctx, userID, req.Upload.FileName, req.Upload.Data)
		return v, true, err
	case req.ResumeID != nil:
		v, err := s.resumes.Get(ctx, userID, *req.ResumeID)
		return v, req.ForceRefresh, err
	default:
		v, err := s.activeResume(ctx, userID)
		return v, req.ForceRefresh, err
	}
}

func (s *Service) activeResume(ctx context.Context, userID uuid.UUID) (*types.ResumeVersion, error) {
	v, err := s.resumes.Active(ctx, userID)
	if err != nil {
		var nf *history.NotFoundError
		if errors.As(err, &nf) {
			return nil, analysis.ErrMissingResume
		}
		return nil, err
	}
	return v, nil
}

// AnalyzeAll refreshes every job with a description against the active
// résumé. Jobs whose cached report is still fresh are not rescored.
func (s *Service) AnalyzeAll(ctx context.Context, userID uuid.UUID) ([]analysis.Outcome, error) {
	version, err := s.activeResume(ctx, userID)
	if err != nil {
		return nil, err
	}
	jobs, err := s.repo.ListJobs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	outcomes, err := s.cache.RefreshAll(ctx, jobs, version, s.parallel)
	if err != nil {
		return nil, err
	}
	s.logger.Info("batch analysis finished",
		zap.String("user_id", userID.String()),
		zap.Int("jobs", len(outcomes)),
	)
	return outcomes, nil
}
