package api

import (
	"net/http"

	"github.com/seniorcare/smartmatch/internal/domain/matching"
	"github.com/seniorcare/smartmatch/internal/domain/vocabulary"
)

type vocabularyResponse struct {
	vocabulary.Document
	Weights matching.Weights `json:"weights"`
}

// handleVocabulary handles GET /vocabulary. It exposes the alias table and the
// factor weights so clients can explain scores.
func (s *Server) handleVocabulary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vocabularyResponse{
		Document: s.deps.Vocabulary(),
		Weights:  s.deps.Weights(),
	})
}
