package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	s := NewStore(NewMemoryRepository(), nil)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func newVersion(userID uuid.UUID, fileName string) *types.ResumeVersion {
	return &types.ResumeVersion{
		UserID:   userID,
		FileName: fileName,
		RawText:  "raw text of " + fileName,
		Structured: types.StructuredResume{
			Candidate: types.Candidate{Name: types.StringPtr("Ada"), Links: []string{}},
		},
	}
}

func TestStore_AppendActivatesNewest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	userID := uuid.New()

	first := newVersion(userID, "cv-2025.pdf")
	require.NoError(t, s.Append(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), first.UploadedAt)

	second := newVersion(userID, "cv-2026.pdf")
	require.NoError(t, s.Append(ctx, second))

	active, err := s.Active(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	summaries, err := s.Summaries(ctx, userID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.False(t, summaries[0].Active)
	assert.True(t, summaries[1].Active)
}

func TestStore_DuplicateFileNameRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	userID := uuid.New()

	require.NoError(t, s.Append(ctx, newVersion(userID, "resume.pdf")))
	require.NoError(t, s.Append(ctx, newVersion(userID, "resume-v2.pdf")))

	err := s.Append(ctx, newVersion(userID, "Resume.pdf"))
	var dupErr *DuplicateVersionError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "Resume.pdf", dupErr.FileName)

	assert.ErrorAs(t, s.CheckFileName(ctx, userID, "resume.pdf"), &dupErr)
	assert.NoError(t, s.CheckFileName(ctx, uuid.New(), "resume.pdf"), "names are scoped per user")

	versions, err := s.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "resume.pdf", versions[0].FileName)
	assert.Equal(t, "resume-v2.pdf", versions[1].FileName)
}

func TestStore_AppendTrimsFileName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	userID := uuid.New()

	padded := newVersion(userID, "cv.pdf ")
	require.NoError(t, s.Append(ctx, padded))
	assert.Equal(t, "cv.pdf", padded.FileName)

	var dupErr *DuplicateVersionError
	assert.ErrorAs(t, s.Append(ctx, newVersion(userID, "cv.pdf")), &dupErr)
	assert.ErrorAs(t, s.CheckFileName(ctx, userID, " cv.pdf"), &dupErr)

	versions, err := s.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "cv.pdf", versions[0].FileName)
}

func TestStore_DeleteActiveClearsPointer(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	userID := uuid.New()

	older := newVersion(userID, "a.pdf")
	newer := newVersion(userID, "b.pdf")
	require.NoError(t, s.Append(ctx, older))
	require.NoError(t, s.Append(ctx, newer))

	require.NoError(t, s.Delete(ctx, userID, newer.ID))

	_, err := s.Active(ctx, userID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	require.NoError(t, s.SetActive(ctx, userID, older.ID))
	active, err := s.Active(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, active.ID)
}

func TestStore_DeleteInactiveKeepsPointer(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	userID := uuid.New()

	older := newVersion(userID, "a.pdf")
	newer := newVersion(userID, "b.pdf")
	require.NoError(t, s.Append(ctx, older))
	require.NoError(t, s.Append(ctx, newer))

	require.NoError(t, s.Delete(ctx, userID, older.ID))

	active, err := s.Active(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, active.ID)

	require.NoError(t, s.Append(ctx, newVersion(userID, "a.pdf")), "a deleted name can be reused")
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	userID := uuid.New()
	v := newVersion(userID, "mine.pdf")
	require.NoError(t, s.Append(ctx, v))

	tests := []struct {
		name string
		call func() error
	}{
		{"get unknown id", func() error { _, err := s.Get(ctx, userID, uuid.New()); return err }},
		{"get other user's version", func() error { _, err := s.Get(ctx, uuid.New(), v.ID); return err }},
		{"delete unknown id", func() error { return s.Delete(ctx, userID, uuid.New()) }},
		{"activate unknown id", func() error { return s.SetActive(ctx, userID, uuid.New()) }},
		{"readiness on unknown id", func() error {
			return s.AttachReadiness(ctx, userID, uuid.New(), &types.ReadinessReport{})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nf *NotFoundError
			assert.ErrorAs(t, tt.call(), &nf)
		})
	}
}

func TestStore_AttachReadiness(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	userID := uuid.New()
	v := newVersion(userID, "cv.pdf")
	require.NoError(t, s.Append(ctx, v))

	report := &types.ReadinessReport{OverallScore: 81, QualityLevel: types.QualityLevel{Level: types.QualityGood}}
	require.NoError(t, s.AttachReadiness(ctx, userID, v.ID, report))

	got, err := s.Get(ctx, userID, v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadinessReport)
	assert.Equal(t, 81.0, got.ReadinessReport.OverallScore)
	assert.Equal(t, v.RawText, got.RawText)

	summaries, err := s.Summaries(ctx, userID)
	require.NoError(t, err)
	assert.True(t, summaries[0].HasReadiness)
}

func TestStore_EmptyHistory(t *testing.T) {
	s := newTestStore()
	versions, err := s.List(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, versions)
	assert.Empty(t, versions)
}
