package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/seniorcare/smartmatch/internal/domain/model"
)

// caregiverPayload decodes a caregiver body. Available defaults to true when
// omitted.
type caregiverPayload struct {
	model.CaregiverProfile
	Available *bool `json:"available"`
}

func (p caregiverPayload) profile() model.CaregiverProfile {
	c := p.CaregiverProfile
	c.Available = p.Available == nil || *p.Available
	return c
}

// pathID returns the {id} path value and checks it against the body ID.
// Surrounding spaces are ignored on both.
func pathID(r *http.Request, bodyID string) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	bodyID = strings.TrimSpace(bodyID)
	if bodyID != "" && bodyID != id {
		return "", fmt.Errorf("%w: %q != %q", ErrIDMismatch, bodyID, id)
	}
	return id, nil
}

func (s *Server) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	var f model.FamilyProfile
	if err := decodeBody(w, r, s.schemas.family, &f); err != nil {
		writeFailure(w, err)
		return
	}
	saved, err := s.deps.SaveFamily(r.Context(), f)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handlePutFamily(w http.ResponseWriter, r *http.Request) {
	var f model.FamilyProfile
	if err := decodeBody(w, r, s.schemas.family, &f); err != nil {
		writeFailure(w, err)
		return
	}
	id, err := pathID(r, f.ID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	f.ID = id
	saved, err := s.deps.SaveFamily(r.Context(), f)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetFamily(w http.ResponseWriter, r *http.Request) {
	f, err := s.deps.Family(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleCreateCaregiver(w http.ResponseWriter, r *http.Request) {
	var p caregiverPayload
	if err := decodeBody(w, r, s.schemas.caregiver, &p); err != nil {
		writeFailure(w, err)
		return
	}
	saved, err := s.deps.SaveCaregiver(r.Context(), p.profile())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handlePutCaregiver(w http.ResponseWriter, r *http.Request) {
	var p caregiverPayload
	if err := decodeBody(w, r, s.schemas.caregiver, &p); err != nil {
		writeFailure(w, err)
		return
	}
	id, err := pathID(r, p.ID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	c := p.profile()
	c.ID = id
	saved, err := s.deps.SaveCaregiver(r.Context(), c)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleGetCaregiver(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Caregiver(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleListCaregivers handles GET /caregivers with filter and paging query.
func (s *Server) handleListCaregivers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query(), s.maxLimit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	list, err := s.deps.ListCaregivers(r.Context(), filter)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}
