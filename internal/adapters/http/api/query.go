package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/seniorcare/smartmatch/internal/adapters/repository"
	"github.com/seniorcare/smartmatch/internal/domain/matching"
)

const defaultMaxLimit = 100

// parseFilter reads caregiver filter parameters. available_only defaults to
// true. limit defaults to maxLimit and may not exceed it.
func parseFilter(q url.Values, maxLimit int) (repository.Filter, error) {
	f := repository.Filter{
		City:           strings.TrimSpace(q.Get("city")),
		Neighborhood:   strings.TrimSpace(q.Get("neighborhood")),
		Specialization: strings.TrimSpace(q.Get("specialization")),
		AvailableOnly:  true,
		Limit:          maxLimit,
	}

	var err error
	if f.MinPrice, err = floatParam(q, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = floatParam(q, "max_price"); err != nil {
		return f, err
	}
	if f.MinRating, err = floatParam(q, "min_rating"); err != nil {
		return f, err
	}
	if f.VerifiedOnly, err = boolParam(q, "verified_only", false); err != nil {
		return f, err
	}
	if f.AvailableOnly, err = boolParam(q, "available_only", true); err != nil {
		return f, err
	}
	if f.Offset, err = intParam(q, "skip", 0); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(q, "limit", maxLimit); err != nil {
		return f, err
	}
	if f.Limit < 1 {
		return f, fmt.Errorf("%w: limit must be at least 1", ErrBadRequest)
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

// parseMatchQuery splits match parameters into the store pre-filter and the
// post-ranking selection. The store filter is left unlimited so that the
// limit applies to ranked results rather than to the candidate pool.
func parseMatchQuery(q url.Values, maxLimit int) (repository.Filter, matching.Selection, error) {
	f, err := parseFilter(q, maxLimit)
	if err != nil {
		return f, matching.Selection{}, err
	}
	exclude, err := boolParam(q, "exclude_violations", false)
	if err != nil {
		return f, matching.Selection{}, err
	}
	sel := matching.Selection{Limit: f.Limit, ExcludeViolations: exclude}
	f.Limit = 0
	f.Offset = 0
	return f, sel, nil
}

func floatParam(q url.Values, name string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", ErrBadRequest, name)
	}
	return &v, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%w: %s must be a boolean", ErrBadRequest, name)
	}
	return v, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, name)
	}
	return v, nil
}

// familyIDParam accepts both familyId and family_id.
func familyIDParam(q url.Values) (string, error) {
	id := strings.TrimSpace(q.Get("familyId"))
	if id == "" {
		id = strings.TrimSpace(q.Get("family_id"))
	}
	if id == "" {
		return "", fmt.Errorf("%w: familyId", ErrMissingParam)
	}
	return id, nil
}
