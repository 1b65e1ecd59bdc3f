package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/jonathan/knotic/internal/ingestion"
)

const (
	resumeFormField = "resume"
	// multipartOverhead leaves room for form framing around a maximum-size file.
	multipartOverhead = 1 << 20
)

type uploadedFile struct {
	name string
	data []byte
}

// readResumeFile reads the "resume" form file. It returns nil, nil when the
// request has no such file and required is false.
func readResumeFile(w http.ResponseWriter, r *http.Request, required bool) (*uploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, ingestion.MaxDocumentBytes+multipartOverhead)
	if err := r.ParseMultipartForm(ingestion.MaxDocumentBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ingestion.ErrTooLarge
		}
		return nil, &ErrValidation{Field: resumeFormField, Message: "expected multipart/form-data"}
	}

	file, header, err := r.FormFile(resumeFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && !required {
			return nil, nil
		}
		return nil, &ErrValidation{Field: resumeFormField, Message: "file is required"}
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(io.LimitReader(file, ingestion.MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return &uploadedFile{name: header.Filename, data: data}, nil
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	upload, err := readResumeFile(w, r, true)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}

	version, err := s.resumes.Upload(r.Context(), userID, upload.name, upload.data)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusCreated, version)
}

func (s *Server) handleListResumes(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	summaries, err := s.resumes.List(r.Context(), userID)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"resumes": summaries,
		"count":   len(summaries),
	})
}

func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "resume")
	if !ok {
		return
	}

	version, err := s.resumes.Get(r.Context(), userID, id)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, version)
}

func (s *Server) handleDeleteResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "resume")
	if !ok {
		return
	}

	if err := s.resumes.Delete(r.Context(), userID, id); err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSetActiveResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "resume")
	if !ok {
		return
	}

	if err := s.resumes.SetActive(r.Context(), userID, id); err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "active", "id": id.String()})
}

func (s *Server) handleAssessResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "resume")
	if !ok {
		return
	}
	refresh, ok := boolQuery(w, r, "refresh")
	if !ok {
		return
	}

	report, cached, err := s.resumes.Assess(r.Context(), userID, id, refresh)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"report": report,
		"cached": cached,
	})
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(w http.ResponseWriter, r *http.Request, name string) (bool, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid "+name+" parameter")
		return false, false
	}
	return v, true
}
