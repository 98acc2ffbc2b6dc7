package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

const (
	// filesField is the multipart field carrying uploads.
	filesField = "files"

	// multipartMemory is how much of a multipart body is kept in memory
	// before parts spill to temporary files.
	multipartMemory = 8 << 20
)

// askRequest is the body of POST /ask.
type askRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

// ingestResult is one file's outcome in POST /ingest.
type ingestResult struct {
	Filename  string `json:"filename"`
	ItemID    string `json:"item_id,omitempty"`
	Chunks    int    `json:"chunks"`
	SHA256    string `json:"sha256,omitempty"`
	Duplicate bool   `json:"duplicate"`
	Error     string `json:"error,omitempty"`
}

// ingestResponse is the body returned by POST /ingest.
type ingestResponse struct {
	Results []ingestResult `json:"results"`
}

// documentView is the JSON shape of a document.
type documentView struct {
	ItemID     string    `json:"item_id"`
	Title      string    `json:"title"`
	Source     string    `json:"source"`
	Kind       string    `json:"kind"`
	SHA256     string    `json:"sha256"`
	ChunkCount *int      `json:"chunk_count,omitempty"`
	WordCount  *int      `json:"word_count,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// healthResponse is the body returned by GET /health.
type healthResponse struct {
	Status string              `json:"status"`
	Index  *driving.IndexStats `json:"index,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ports.Document == nil {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}

	stats, err := s.ports.Document.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Index: stats})
}

// handleIngest accepts one or more files in the "files" multipart field.
// Per-file failures are reported in the results; the request itself succeeds.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		writeJSONError(w, status, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	headers := r.MultipartForm.File[filesField]
	if len(headers) == 0 {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("no files in field %q", filesField))
		return
	}

	// 1. Read every part; unreadable parts fail on their own.
	results := make([]ingestResult, len(headers))
	reqs := make([]domain.IngestRequest, 0, len(headers))
	slots := make([]int, 0, len(headers))
	for i, fh := range headers {
		results[i].Filename = fh.Filename
		content, err := readPart(fh)
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		reqs = append(reqs, domain.IngestRequest{
			Content:  content,
			Filename: fh.Filename,
			MIMEType: partMIMEType(fh),
		})
		slots = append(slots, i)
	}

	// 2. Ingest the readable parts as one batch.
	if len(reqs) > 0 {
		for j, res := range s.ports.Ingest.IngestBatch(r.Context(), reqs) {
			results[slots[j]] = toIngestResult(res)
		}
	}

	writeJSON(w, http.StatusOK, ingestResponse{Results: results})
}

// handleAsk always answers 200 for a well-formed body; the outcome is in status.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.ports.Answer.Ask(r.Context(), req.Question, req.TopK))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if !s.requireDocuments(w) {
		return
	}

	docs, err := s.ports.Document.List(r.Context())
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}

	views := make([]documentView, 0, len(docs))
	for i := range docs {
		views = append(views, documentView{
			ItemID:    docs[i].ItemID,
			Title:     docs[i].Title,
			Source:    docs[i].Source,
			Kind:      docs[i].Kind,
			SHA256:    docs[i].SHA256,
			CreatedAt: docs[i].CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if !s.requireDocuments(w) {
		return
	}

	details, err := s.ports.Document.GetDetails(r.Context(), r.PathValue("id"))
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, documentView{
		ItemID:     details.ItemID,
		Title:      details.Title,
		Source:     details.Source,
		Kind:       details.Kind,
		SHA256:     details.SHA256,
		ChunkCount: &details.ChunkCount,
		WordCount:  &details.WordCount,
		CreatedAt:  details.CreatedAt,
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !s.requireDocuments(w) {
		return
	}

	if err := s.ports.Document.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if !s.requireDocuments(w) {
		return
	}

	stats, err := s.ports.Document.Stats(r.Context())
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleReset drops the vector collection and every document.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !s.requireDocuments(w) {
		return
	}

	if err := s.ports.Document.ResetIndex(r.Context()); err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) requireDocuments(w http.ResponseWriter) bool {
	if s.ports.Document == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "document service unavailable")
		return false
	}
	return true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return content, nil
}

// partMIMEType returns the declared part type, ignoring the generic default
// so detection falls back to the file name.
func partMIMEType(fh *multipart.FileHeader) string {
	t := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if strings.HasPrefix(t, "application/octet-stream") {
		return ""
	}
	return t
}

func toIngestResult(res domain.IngestResult) ingestResult {
	out := ingestResult{
		Filename:  res.Filename,
		ItemID:    res.ItemID,
		Chunks:    res.Chunks,
		SHA256:    res.SHA256,
		Duplicate: res.Duplicate,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}
