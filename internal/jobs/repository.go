package jobs

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/history"
	"github.com/jonathan/knotic/internal/types"
)

// Repository persists tracked jobs. It also satisfies analysis.JobStore.
type Repository interface {
	CreateJob(ctx context.Context, job *types.Job) error
	UpdateJob(ctx context.Context, job *types.Job) error
	GetJob(ctx context.Context, userID, id uuid.UUID) (*types.Job, error)
	ListJobs(ctx context.Context, userID uuid.UUID) ([]*types.Job, error)
	DeleteJob(ctx context.Context, userID, id uuid.UUID) error
	SaveAnalysis(ctx context.Context, userID, jobID uuid.UUID, report *types.MatchReport) error
}

// MemoryRepository keeps jobs in process.
type MemoryRepository struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]types.Job
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{jobs: make(map[uuid.UUID]types.Job)}
}

// CreateJob implements Repository.
func (r *MemoryRepository) CreateJob(_ context.Context, job *types.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

// UpdateJob implements Repository.
func (r *MemoryRepository) UpdateJob(_ context.Context, job *types.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.jobs[job.ID]
	if !ok || existing.UserID != job.UserID {
		return &history.NotFoundError{Resource: history.ResourceJob, ID: job.ID}
	}
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

// GetJob implements Repository.
func (r *MemoryRepository) GetJob(_ context.Context, userID, id uuid.UUID) (*types.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok || job.UserID != userID {
		return nil, &history.NotFoundError{Resource: history.ResourceJob, ID: id}
	}
	out := cloneJob(&job)
	return &out, nil
}

// ListJobs returns the user's jobs newest first.
func (r *MemoryRepository) ListJobs(_ context.Context, userID uuid.UUID) ([]*types.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*types.Job{}
	for _, job := range r.jobs {
		if job.UserID == userID {
			j := cloneJob(&job)
			out = append(out, &j)
		}
	}
	slices.SortFunc(out, func(a, b *types.Job) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// DeleteJob implements Repository.
func (r *MemoryRepository) DeleteJob(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.UserID != userID {
		return &history.NotFoundError{Resource: history.ResourceJob, ID: id}
	}
	delete(r.jobs, id)
	return nil
}

// SaveAnalysis implements analysis.JobStore.
func (r *MemoryRepository) SaveAnalysis(_ context.Context, userID, jobID uuid.UUID, report *types.MatchReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.UserID != userID {
		return &history.NotFoundError{Resource: history.ResourceJob, ID: jobID}
	}
	job.CachedAnalysis = report
	r.jobs[jobID] = job
	return nil
}

func cloneJob(job *types.Job) types.Job {
	out := *job
	out.StatusHistory = slices.Clone(job.StatusHistory)
	return out
}
