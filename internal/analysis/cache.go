// Package analysis caches match reports on tracked jobs and invalidates
// them structurally: a cached report is reused only while both the job
// description and the résumé it was computed from are unchanged.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/fingerprint"
	"github.com/jonathan/knotic/internal/logging"
	"github.com/jonathan/knotic/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrMissingJobDescription is returned when the job has no job description to analyze.
var ErrMissingJobDescription = errors.New("job has no job description")

// ErrMissingResume is returned when no résumé version is available.
var ErrMissingResume = errors.New("no resume version to analyze against")

// Scorer produces a fresh match report.
type Scorer interface {
	Match(ctx context.Context, resume *types.StructuredResume, jobDescription string) (*types.MatchReport, error)
}

// JobStore persists the cached report on a job.
type JobStore interface {
	SaveAnalysis(ctx context.Context, userID, jobID uuid.UUID, report *types.MatchReport) error
}

// Cache wraps a Scorer with per-job report caching.
type Cache struct {
	scorer Scorer
	jobs   JobStore
	logger *zap.Logger
	now    func() time.Time
}

// NewCache creates a Cache.
func NewCache(scorer Scorer, jobs JobStore, logger *zap.Logger) *Cache {
	return &Cache{scorer: scorer, jobs: jobs, logger: logging.OrNop(logger), now: time.Now}
}

// GetOrCompute returns the job's cached report when its fingerprints match
// the current inputs and forceRefresh is false, reporting true for a hit.
// Otherwise it scores, persists and returns a fresh report. job is updated
// only after the report has been saved.
func (c *Cache) GetOrCompute(ctx context.Context, job *types.Job, version *types.ResumeVersion, forceRefresh bool) (*types.MatchReport, bool, error) {
	if job == nil || !job.HasJobDescription() {
		return nil, false, ErrMissingJobDescription
	}
	if version == nil {
		return nil, false, ErrMissingResume
	}

	jdHash := fingerprint.Of(*job.JobDescription)
	resumeHash := fingerprint.Of(version.Structured)
	logger := c.logger.With(zap.String("job_id", job.ID.String()), zap.String("version_id", version.ID.String()))

	if !forceRefresh && IsFresh(job.CachedAnalysis, jdHash, resumeHash) {
		logger.Debug("analysis cache hit")
		return job.CachedAnalysis, true, nil
	}

	report, err := c.scorer.Match(ctx, &version.Structured, *job.JobDescription)
	if err != nil {
		return nil, false, err
	}

	versionID := version.ID
	report.JDHash = jdHash
	report.ResumeHash = resumeHash
	report.ResumeVersionID = &versionID
	report.AnalyzedAt = c.now().UTC()

	if err := c.jobs.SaveAnalysis(ctx, job.UserID, job.ID, report); err != nil {
		return nil, false, fmt.Errorf("failed to save analysis: %w", err)
	}
	job.CachedAnalysis = report

	logger.Info("analysis computed",
		zap.Float64("score", report.Score),
		zap.Bool("forced", forceRefresh),
	)
	return report, false, nil
}

// IsFresh reports whether report was computed from inputs with these fingerprints.
func IsFresh(report *types.MatchReport, jdHash, resumeHash string) bool {
	return report != nil &&
		fingerprint.Equal(report.JDHash, jdHash) &&
		fingerprint.Equal(report.ResumeHash, resumeHash)
}

// Outcome is the result of analyzing one job in a batch
type Outcome struct {
	JobID  uuid.UUID          `json:"jobId"`
	Report *types.MatchReport `json:"report,omitempty"`
	Cached bool               `json:"cached"`
	Err    error              `json:"-"`
	Error  string             `json:"error,omitempty"`
}

// RefreshAll runs GetOrCompute for every job with a job description, at
// most limit at a time. Per-job failures are recorded in the outcomes and
// do not stop the batch; only context cancellation returns an error.
// Outcomes keep the order of jobs that were analyzed.
func (c *Cache) RefreshAll(ctx context.Context, jobs []*types.Job, version *types.ResumeVersion, limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = 1
	}

	eligible := make([]*types.Job, 0, len(jobs))
	for _, job := range jobs {
		if job != nil && job.HasJobDescription() {
			eligible = append(eligible, job)
		}
	}

	outcomes := make([]Outcome, len(eligible))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range eligible {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, cached, err := c.GetOrCompute(gctx, job, version, false)
			outcomes[i] = Outcome{JobID: job.ID, Report: report, Cached: cached, Err: err}
			if err != nil {
				outcomes[i].Error = err.Error()
				c.logger.Warn("batch analysis failed", zap.String("job_id", job.ID.String()), zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
