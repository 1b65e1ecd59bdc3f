package history

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/types"
)

// MemoryRepository is an in-process Repository used by the CLI and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	versions map[uuid.UUID][]types.ResumeVersion
	active   map[uuid.UUID]uuid.UUID
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		versions: make(map[uuid.UUID][]types.ResumeVersion),
		active:   make(map[uuid.UUID]uuid.UUID),
	}
}

// InsertVersion appends a copy of version to the user's history.
func (r *MemoryRepository) InsertVersion(_ context.Context, version *types.ResumeVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[version.UserID] = append(r.versions[version.UserID], *version)
	return nil
}

// GetVersion returns a copy of the stored version.
func (r *MemoryRepository) GetVersion(_ context.Context, userID, id uuid.UUID) (*types.ResumeVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(userID, id)
	if i < 0 {
		return nil, &NotFoundError{Resource: ResourceVersion, ID: id}
	}
	v := r.versions[userID][i]
	return &v, nil
}

// ListVersions returns the user's versions oldest first.
func (r *MemoryRepository) ListVersions(_ context.Context, userID uuid.UUID) ([]types.ResumeVersion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.versions[userID]), nil
}

// DeleteVersion removes a version. The active pointer is not touched.
func (r *MemoryRepository) DeleteVersion(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(userID, id)
	if i < 0 {
		return &NotFoundError{Resource: ResourceVersion, ID: id}
	}
	r.versions[userID] = slices.Delete(r.versions[userID], i, i+1)
	return nil
}

// FileNameExists compares names case-insensitively.
func (r *MemoryRepository) FileNameExists(_ context.Context, userID uuid.UUID, fileName string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.versions[userID] {
		if strings.EqualFold(v.FileName, fileName) {
			return true, nil
		}
	}
	return false, nil
}

// UpdateReadiness replaces the readiness report of a stored version.
func (r *MemoryRepository) UpdateReadiness(_ context.Context, userID, id uuid.UUID, report *types.ReadinessReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(userID, id)
	if i < 0 {
		return &NotFoundError{Resource: ResourceVersion, ID: id}
	}
	r.versions[userID][i].ReadinessReport = report
	return nil
}

// ActiveVersionID returns the active pointer, or nil.
func (r *MemoryRepository) ActiveVersionID(_ context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.active[userID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

// SetActiveVersionID sets or, with nil, clears the active pointer.
func (r *MemoryRepository) SetActiveVersionID(_ context.Context, userID uuid.UUID, id *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == nil {
		delete(r.active, userID)
		return nil
	}
	r.active[userID] = *id
	return nil
}

// indexOf must be called with mu held.
func (r *MemoryRepository) indexOf(userID, id uuid.UUID) int {
	return slices.IndexFunc(r.versions[userID], func(v types.ResumeVersion) bool { return v.ID == id })
}
