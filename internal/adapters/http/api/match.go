package api

import (
	"net/http"

	"github.com/seniorcare/smartmatch/internal/domain/matching"
	"github.com/seniorcare/smartmatch/internal/domain/model"
)

// highlightCount is how many top factors a single match explains.
const highlightCount = 3

// matchRequest is the POST /match body.
type matchRequest struct {
	Family     model.FamilyProfile `json:"family"`
	Caregivers []caregiverPayload  `json:"caregivers"`
}

// caregiverMatch is a single scored caregiver with its explanation.
type caregiverMatch struct {
	model.MatchResult
	Bucket     model.Quality           `json:"quality"`
	Highlights []matching.Contribution `json:"highlights"`
}

// handleMatchFamily handles GET /caregivers/match?familyId=...
func (s *Server) handleMatchFamily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	familyID, err := familyIDParam(q)
	if err != nil {
		writeFailure(w, err)
		return
	}
	filter, sel, err := parseMatchQuery(q, s.maxLimit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	results, err := s.deps.MatchFamily(r.Context(), familyID, filter, sel)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(results))
}

// handleMatch handles POST /match.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeBody(w, r, s.schemas.match, &req); err != nil {
		writeFailure(w, err)
		return
	}
	caregivers := make([]model.CaregiverProfile, len(req.Caregivers))
	for i, c := range req.Caregivers {
		caregivers[i] = c.profile()
	}
	results, err := s.deps.Match(r.Context(), &req.Family, caregivers)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(results))
}

// handleMatchCaregiver handles GET /caregivers/{id}/match?familyId=...
func (s *Server) handleMatchCaregiver(w http.ResponseWriter, r *http.Request) {
	familyID, err := familyIDParam(r.URL.Query())
	if err != nil {
		writeFailure(w, err)
		return
	}
	result, err := s.deps.MatchCaregiver(r.Context(), familyID, r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, caregiverMatch{
		MatchResult: result,
		Bucket:      result.Quality(),
		Highlights:  matching.Highlights(result, s.deps.Weights(), highlightCount),
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
