package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the application stage of a tracked job
type JobStatus string

// Status constants for the application workflow
const (
	StatusInterested   JobStatus = "Interested"
	StatusApplied      JobStatus = "Applied"
	StatusInterviewing JobStatus = "Interviewing"
	StatusOffer        JobStatus = "Offer"
	StatusRejected     JobStatus = "Rejected"
)

// AllStatuses lists the valid statuses in workflow order.
func AllStatuses() []JobStatus {
	return []JobStatus{StatusInterested, StatusApplied, StatusInterviewing, StatusOffer, StatusRejected}
}

// ParseJobStatus validates a status string.
func ParseJobStatus(s string) (JobStatus, error) {
	for _, st := range AllStatuses() {
		if string(st) == s {
			return st, nil
		}
	}
	names := make([]string, 0, 5)
	for _, st := range AllStatuses() {
		names = append(names, string(st))
	}
	return "", fmt.Errorf("invalid status %q, allowed values: %s", s, strings.Join(names, ", "))
}

// Location constants
const (
	LocationRemote = "Remote"
	LocationOnSite = "On-site"
	LocationHybrid = "Hybrid"
)

// Job is a tracked job application
type Job struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uuid.UUID     `json:"userId"`
	Company        string        `json:"company"`
	Position       string        `json:"position"`
	JobDescription *string       `json:"jobDescription"`
	SourceURL      *string       `json:"sourceUrl,omitempty"`
	Location       string        `json:"location"`
	Salary         *Salary       `json:"salary,omitempty"`
	Status         JobStatus     `json:"status"`
	StatusHistory  []StatusEntry `json:"statusHistory"`
	AppliedDate    *time.Time    `json:"appliedDate,omitempty"`
	Notes          string        `json:"notes"`
	CachedAnalysis *MatchReport  `json:"cachedAnalysis"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Salary is an optional pay range
type Salary struct {
	Min      *int   `json:"min,omitempty"`
	Max      *int   `json:"max,omitempty"`
	Currency string `json:"currency"`
}

// StatusEntry records a status transition
type StatusEntry struct {
	Status    JobStatus `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
	Note      *string   `json:"note,omitempty"`
}

// TransitionTo moves the job to status, appending to the history. Moving to
// Applied stamps AppliedDate.
func (j *Job) TransitionTo(status JobStatus, note string, at time.Time) {
	j.Status = status
	j.StatusHistory = append(j.StatusHistory, StatusEntry{
		Status:    status,
		ChangedAt: at,
		Note:      StringPtr(strings.TrimSpace(note)),
	})
	if status == StatusApplied {
		applied := at
		j.AppliedDate = &applied
	}
	j.UpdatedAt = at
}

// HasJobDescription reports whether a non-blank job description is set.
func (j *Job) HasJobDescription() bool {
	return j.JobDescription != nil && strings.TrimSpace(*j.JobDescription) != ""
}

// CreateJobRequest is the body of a job creation request
type CreateJobRequest struct {
	Company        string  `json:"company" validate:"required,min=1,max=200"`
	Position       string  `json:"position" validate:"required,min=1,max=200"`
	JobDescription string  `json:"jobDescription" validate:"required,min=1"`
	SourceURL      string  `json:"sourceUrl,omitempty" validate:"omitempty,url"`
	Location       string  `json:"location,omitempty" validate:"omitempty,oneof=Remote On-site Hybrid"`
	Salary         *Salary `json:"salary,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// UpdateJobRequest is the body of a job update; nil fields are left unchanged
type UpdateJobRequest struct {
	Company        *string `json:"company,omitempty" validate:"omitempty,min=1,max=200"`
	Position       *string `json:"position,omitempty" validate:"omitempty,min=1,max=200"`
	JobDescription *string `json:"jobDescription,omitempty"`
	Location       *string `json:"location,omitempty" validate:"omitempty,oneof=Remote On-site Hybrid"`
	Salary         *Salary `json:"salary,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// UpdateStatusRequest is the body of a status change
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Interested Applied Interviewing Offer Rejected"`
	Note   string `json:"note,omitempty" validate:"max=500"`
}

// ImportJobRequest creates a job from a posting URL
type ImportJobRequest struct {
	URL        string `json:"url" validate:"required,url"`
	Company    string `json:"company" validate:"required,min=1,max=200"`
	Position   string `json:"position" validate:"required,min=1,max=200"`
	UseBrowser bool   `json:"useBrowser,omitempty"`
}
