package viewer

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/aviationcerts/internal/apiclient"
	"github.com/yourorg/aviationcerts/internal/batch"
	"github.com/yourorg/aviationcerts/internal/cert"
	"github.com/yourorg/aviationcerts/internal/export"
	"github.com/yourorg/aviationcerts/internal/notice"
	"github.com/yourorg/aviationcerts/internal/render"
	"github.com/yourorg/aviationcerts/internal/selection"
)

// startBatchRequest carries either checked ids or a target token from an
// earlier batch response. ids wins when both are set.
type startBatchRequest struct {
	IDs    []string `json:"ids"`
	Target string   `json:"target,omitempty"`
}

type startBatchResponse struct {
	JobID  string `json:"jobId"`
	Target string `json:"target"`
	Total  int    `json:"total"`
}

type batchStatus struct {
	JobID     string          `json:"jobId"`
	Target    string          `json:"target"`
	Phase     batch.Phase     `json:"phase"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Failed    []batch.Failure `json:"failed"`
	Notices   []notice.Notice `json:"notices"`
}

func (s *Server) log(r *http.Request) *slog.Logger {
	return s.logger.With("corrId", corrIDFrom(r))
}

func (s *Server) listCertificates(w http.ResponseWriter, r *http.Request) {
	list, err := s.api.ListCertificates(r.Context())
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	out := cert.Filter(list, r.URL.Query().Get("q"))
	if out == nil {
		out = []cert.Certificate{}
	}
	writeJSON(w, http.StatusOK, out, nil)
}

func (s *Server) createCertificate(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	created, err := s.api.CreateCertificate(r.Context(), draft)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	s.log(r).Info("certificate created", "id", created.ID)
	writeJSON(w, http.StatusCreated, created, nil)
}

func (s *Server) updateCertificate(w http.ResponseWriter, r *http.Request) {
	draft, ok := s.decodeDraft(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	updated, err := s.api.UpdateCertificate(r.Context(), id, draft)
	if err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	s.log(r).Info("certificate updated", "id", id)
	writeJSON(w, http.StatusOK, updated, nil)
}

func (s *Server) deleteCertificate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.api.DeleteCertificate(r.Context(), id); err != nil {
		s.writeUpstreamError(w, r, err)
		return
	}
	s.log(r).Info("certificate deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request) (cert.Draft, bool) {
	defer r.Body.Close()
	var draft cert.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_JSON", "invalid JSON", false)
		return cert.Draft{}, false
	}
	if result := s.validator.Validate(draft); !result.Valid {
		writeJSON(w, http.StatusBadRequest, ErrorBody{
			Code:    "VALIDATION_ERROR",
			Message: "certificate validation failed",
			CorrID:  corrIDFrom(r),
			Errors:  result.Errors,
		}, nil)
		return cert.Draft{}, false
	}
	return draft, true
}

func (s *Server) startBatch(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req startBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_JSON", "invalid JSON", false)
		return
	}
	var (
		sel selection.Selection
		err error
	)
	if len(req.IDs) == 0 && req.Target != "" {
		sel, err = selection.Parse(req.Target)
	} else {
		sel, err = selection.Collect(req.IDs)
	}
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "NO_SELECTION", selection.NoSelectionMessage, false)
		return
	}

	owner := ownerFrom(r)
	if ok, retryAfter := s.limiter.Allow(owner); !ok {
		seconds := max(1, int(retryAfter.Seconds()))
		writeJSON(w, http.StatusTooManyRequests, ErrorBody{
			Code:              "RATE_LIMITED",
			Message:           "too many batches",
			CorrID:            corrIDFrom(r),
			Retryable:         true,
			RetryAfterSeconds: seconds,
		}, map[string]string{"Retry-After": strconv.Itoa(seconds)})
		return
	}

	jobID, _, err := s.registry.Start(r.Context(), owner, sel)
	if err != nil {
		s.log(r).Error("batch start failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), true)
		return
	}
	s.log(r).Info("batch started", "jobId", jobID, "total", sel.Len())
	writeJSON(w, http.StatusAccepted, startBatchResponse{
		JobID:  jobID,
		Target: sel.Target(),
		Total:  sel.Len(),
	}, map[string]string{"Location": "/batches/" + jobID})
}

func (s *Server) getBatch(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, target, ok := s.lookup(w, r, jobID)
	if !ok {
		return
	}
	p := job.Progress()
	writeJSON(w, http.StatusOK, batchStatus{
		JobID:     jobID,
		Target:    target,
		Phase:     p.Phase,
		Completed: p.Completed,
		Total:     p.Total,
		Failed:    job.Result().Failed,
		Notices:   job.Notices(),
	}, nil)
}

func (s *Server) printBatch(w http.ResponseWriter, r *http.Request) {
	docs, ok := s.documents(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(s.driver.PrintView(docs)))
}

func (s *Server) downloadPDF(w http.ResponseWriter, r *http.Request) {
	docs, ok := s.documents(w, r)
	if !ok {
		return
	}
	certID := chi.URLParam(r, "certID")
	var doc *render.Document
	for i := range docs {
		if docs[i].RecordID == certID {
			doc = &docs[i]
			break
		}
	}
	if doc == nil {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "certificate not in batch", false)
		return
	}

	art, err := s.driver.Artifact(r.Context(), *doc)
	if err != nil {
		s.log(r).Error("pdf export failed", "record", certID, "err", err)
		writeError(w, r, http.StatusBadGateway, "EXPORT_FAILED", export.FailedMessage, true)
		return
	}
	if s.artifacts != nil {
		if err := s.artifacts.PutObject(r.Context(), art.Name, art.Body, art.ContentType); err != nil {
			s.log(r).Warn("artifact not kept", "name", art.Name, "err", err)
		}
	}
	writeArtifact(w, export.ObjectMeta{Key: art.Name, Size: len(art.Body), ContentType: art.ContentType})
	_, _ = w.Write(art.Body)
}

func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	if s.artifacts == nil {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "artifact not found", false)
		return
	}
	body, meta, err := s.artifacts.GetObject(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.artifactError(w, r, err)
		return
	}
	writeArtifact(w, meta)
	_, _ = w.Write(body)
}

func (s *Server) headArtifact(w http.ResponseWriter, r *http.Request) {
	if s.artifacts == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	meta, err := s.artifacts.Head(r.Context(), chi.URLParam(r, "name"))
	if errors.Is(err, export.ErrObjectNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		s.log(r).Error("artifact head failed", "err", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeArtifact(w, meta)
}

func (s *Server) artifactError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, export.ErrObjectNotFound) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "artifact not found", false)
		return
	}
	s.log(r).Error("artifact read failed", "err", err)
	writeError(w, r, http.StatusBadRequest, "BAD_ARTIFACT", "invalid artifact name", false)
}

func writeArtifact(w http.ResponseWriter, meta export.ObjectMeta) {
	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": meta.Key}))
	w.Header().Set("Content-Length", strconv.Itoa(meta.Size))
	w.WriteHeader(http.StatusOK)
}

// documents renders every fetched certificate of a finished job.
func (s *Server) documents(w http.ResponseWriter, r *http.Request) ([]render.Document, bool) {
	job, _, ok := s.lookup(w, r, chi.URLParam(r, "jobID"))
	if !ok {
		return nil, false
	}
	p := job.Progress()
	if p.Phase != batch.Done {
		writeError(w, r, http.StatusConflict, "BATCH_IN_PROGRESS",
			fmt.Sprintf("Loading certificates: %d of %d", p.Completed, p.Total), true)
		return nil, false
	}
	result := job.Result()
	return render.RenderAll(result.Succeeded, result.Flag), true
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request, jobID string) (*batch.Job, string, bool) {
	job, target, err := s.registry.Get(jobID, ownerFrom(r))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "batch not found", false)
		return nil, "", false
	}
	return job, target, true
}

func (s *Server) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	s.log(r).Error("certificates api failed", "err", err)
	var se *apiclient.StatusError
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required", false)
	case errors.Is(err, apiclient.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "certificate not found", false)
	case errors.As(err, &se) && se.StatusCode == http.StatusBadRequest:
		writeError(w, r, http.StatusBadRequest, "UPSTREAM_REJECTED", se.Message, false)
	default:
		writeError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "certificates API unavailable", true)
	}
}
