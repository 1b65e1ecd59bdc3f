package server

import (
	"mime"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/knotic/internal/jobs"
	"github.com/jonathan/knotic/internal/types"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	list, err := s.jobs.List(r.Context(), userID)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  list,
		"count": len(list),
	})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req types.CreateJobRequest
	if !decodeAndValidate(w, r, s.validate, &req) {
		return
	}

	job, err := s.jobs.Create(r.Context(), userID, &req)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleImportJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req types.ImportJobRequest
	if !decodeAndValidate(w, r, s.validate, &req) {
		return
	}

	job, err := s.jobs.Import(r.Context(), userID, &req)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusCreated, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "job")
	if !ok {
		return
	}
	var req types.UpdateJobRequest
	if !decodeAndValidate(w, r, s.validate, &req) {
		return
	}

	job, err := s.jobs.Update(r.Context(), userID, id, &req)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "job")
	if !ok {
		return
	}
	var req types.UpdateStatusRequest
	if !decodeAndValidate(w, r, s.validate, &req) {
		return
	}

	job, err := s.jobs.UpdateStatus(r.Context(), userID, id, &req)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "job")
	if !ok {
		return
	}

	if err := s.jobs.Delete(r.Context(), userID, id); err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleAnalyzeJob accepts either a multipart form with an optional
// "resume" file and "resume_id" field, or query parameters resume_id and
// refresh. An uploaded file always forces a fresh analysis.
func (s *Server) handleAnalyzeJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "job")
	if !ok {
		return
	}

	var req jobs.AnalyzeRequest
	refresh, ok := boolQuery(w, r, "refresh")
	if !ok {
		return
	}
	req.ForceRefresh = refresh
	resumeID := r.URL.Query().Get("resume_id")

	if isMultipart(r) {
		upload, err := readResumeFile(w, r, false)
		if err != nil {
			serviceError(w, s.logger, err)
			return
		}
		if upload != nil {
			req.Upload = &jobs.Upload{FileName: upload.name, Data: upload.data}
		}
		if v := r.FormValue("resume_id"); v != "" {
			resumeID = v
		}
	}

	if resumeID != "" && req.Upload == nil {
		parsed, err := uuid.Parse(resumeID)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "Invalid resume ID")
			return
		}
		req.ResumeID = &parsed
	}

	result, err := s.jobs.Analyze(r.Context(), userID, id, req)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleAnalyzeAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	outcomes, err := s.jobs.AnalyzeAll(r.Context(), userID)
	if err != nil {
		serviceError(w, s.logger, err)
		return
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"results": outcomes,
		"count":   len(outcomes),
		"failed":  failed,
	})
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
