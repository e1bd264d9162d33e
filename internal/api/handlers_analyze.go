package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/contractlens/internal/apperr"
	"github.com/dgallion1/contractlens/internal/parser"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	text, err := s.extractor.Extract(data, filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.service.Analyze(r.Context(), text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("analysis served",
		"filename", filename,
		"analysis_id", res.Metadata.AnalysisID,
		"status", res.Metadata.Status,
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyzeOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{})
}

// readUpload parses the multipart form and returns the "file" part. On
// failure it has already written the error response.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), "too_large", http.StatusRequestEntityTooLarge)
			return nil, "", false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), apperr.InvalidInput.String(), http.StatusBadRequest)
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		jsonError(w, "file is required", apperr.InvalidInput.String(), http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		r.MultipartForm.RemoveAll()
		jsonError(w, "failed to read file", "internal", http.StatusInternalServerError)
		return nil, "", false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		r.MultipartForm.RemoveAll()
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), "too_large", http.StatusRequestEntityTooLarge)
		return nil, "", false
	}

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupported(filename, data) {
		r.MultipartForm.RemoveAll()
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), apperr.InvalidInput.String(), http.StatusBadRequest)
		return nil, "", false
	}
	return data, filename, true
}

// writeError maps err to a status code and a {"detail", "code"} body.
// Errors without a kind are reported as 500 without their internals.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetReqID(r.Context())
	e, ok := apperr.As(err)
	if !ok {
		s.log.Error("request failed", "path", r.URL.Path, "error", err, "request_id", reqID)
		jsonError(w, "internal server error", "internal", http.StatusInternalServerError)
		return
	}

	status := e.Kind.HTTPStatus()
	if status >= 500 {
		s.log.Error("request failed", "path", r.URL.Path, "code", e.Code(), "error", err, "request_id", reqID)
	} else {
		s.log.Warn("request rejected", "path", r.URL.Path, "code", e.Code(), "detail", e.Message, "request_id", reqID)
	}
	jsonError(w, e.Message, e.Code(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg, code string, status int) {
	writeJSON(w, status, map[string]string{"detail": msg, "code": code})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
