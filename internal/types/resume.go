// Package types provides type definitions for structured data used throughout the knotic system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// StructuredResume is the canonical résumé record produced by normalization.
// Nullable scalars are pointers; list fields are never nil once normalized.
type StructuredResume struct {
	Candidate      Candidate    `json:"candidate"`
	Education      []Education  `json:"education"`
	Experience     []Experience `json:"experience"`
	Activities     []Activity   `json:"activities"`
	Skills         Skills       `json:"skills"`
	Projects       []Project    `json:"projects"`
	Certifications []string     `json:"certifications"`
}

// Candidate holds contact details
type Candidate struct {
	Name  *string  `json:"name"`
	Email *string  `json:"email"`
	Phone *string  `json:"phone"`
	Links []string `json:"links"`
}

// Education represents a single education entry
type Education struct {
	Institution string  `json:"institution"`
	Degree      string  `json:"degree"`
	Field       *string `json:"field"`
	GPA         *string `json:"gpa"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
}

// Experience is a paid or professional role. Unpaid roles belong in Activities.
type Experience struct {
	Company  string   `json:"company"`
	Role     string   `json:"role"`
	Duration *string  `json:"duration"`
	Details  []string `json:"details"`
}

// Activity is an unpaid, student or volunteer role
type Activity struct {
	Organization string   `json:"organization"`
	Role         string   `json:"role"`
	Duration     *string  `json:"duration"`
	Details      []string `json:"details,omitempty"`
}

// Skills groups lowercase, deduplicated skills by category
type Skills struct {
	Technical []string `json:"technical"`
	Domain    []string `json:"domain"`
	Tools     []string `json:"tools"`
	Soft      []string `json:"soft"`
}

// Project represents a project with bullet-point descriptions
type Project struct {
	Title       string   `json:"title"`
	Tech        []string `json:"tech"`
	Description []string `json:"description"`
}

// HardSkills returns technical skills and tools, the set scored by skills matching.
func (s Skills) HardSkills() []string {
	out := make([]string, 0, len(s.Technical)+len(s.Tools))
	out = append(out, s.Technical...)
	return append(out, s.Tools...)
}

// HasContact reports whether any contact channel is present.
func (c Candidate) HasContact() bool {
	return c.Email != nil || c.Phone != nil
}

// ResumeVersion is one uploaded and normalized résumé owned by a user.
// It is mutated only to attach a readiness report.
type ResumeVersion struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"userId"`
	FileName        string           `json:"fileName"`
	RawText         string           `json:"rawText"`
	Structured      StructuredResume `json:"structured"`
	UploadedAt      time.Time        `json:"uploadedAt"`
	ReadinessReport *ReadinessReport `json:"readinessReport,omitempty"`
}

// ResumeVersionSummary is the list view of a version, without raw text
type ResumeVersionSummary struct {
	ID           uuid.UUID `json:"id"`
	FileName     string    `json:"fileName"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Active       bool      `json:"active"`
	HasReadiness bool      `json:"hasReadiness"`
}

// Summarize builds the list view of a version.
func (v *ResumeVersion) Summarize(activeID *uuid.UUID) ResumeVersionSummary {
	return ResumeVersionSummary{
		ID:           v.ID,
		FileName:     v.FileName,
		UploadedAt:   v.UploadedAt,
		Active:       activeID != nil && *activeID == v.ID,
		HasReadiness: v.ReadinessReport != nil,
	}
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences p, returning "" for nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
