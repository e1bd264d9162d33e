package api

import (
	"net/http"
	"strings"

	"github.com/dgallion1/contractlens/internal/apperr"
)

// handleAsk answers a question about an uploaded contract. The question may
// come from the form body or the query string.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		jsonError(w, "Question is required", apperr.InvalidInput.String(), http.StatusBadRequest)
		return
	}

	text, err := s.extractor.Extract(data, filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ans, err := s.service.Ask(r.Context(), text, question)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}
