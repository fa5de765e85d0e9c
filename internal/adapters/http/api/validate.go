package api

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var (
	//go:embed schemas/family.json
	familySchemaJSON []byte
	//go:embed schemas/caregiver.json
	caregiverSchemaJSON []byte
	//go:embed schemas/match.json
	matchSchemaJSON []byte
)

// schemas holds the compiled request body schemas.
type schemas struct {
	family    *gojsonschema.Schema
	caregiver *gojsonschema.Schema
	match     *gojsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	family, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(familySchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile family schema: %w", err)
	}
	caregiver, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(caregiverSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile caregiver schema: %w", err)
	}

	sl := gojsonschema.NewSchemaLoader()
	if err := sl.AddSchemas(
		gojsonschema.NewBytesLoader(familySchemaJSON),
		gojsonschema.NewBytesLoader(caregiverSchemaJSON),
	); err != nil {
		return nil, fmt.Errorf("register profile schemas: %w", err)
	}
	match, err := sl.Compile(gojsonschema.NewBytesLoader(matchSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile match schema: %w", err)
	}
	return &schemas{family: family, caregiver: caregiver, match: match}, nil
}

func mustCompileSchemas() *schemas {
	s, err := compileSchemas()
	if err != nil {
		panic(err)
	}
	return s
}

// validateBody checks a raw JSON body against schema. The returned error
// wraps ErrBadRequest and lists every violation.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: malformed JSON: %w", ErrBadRequest, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrBadRequest, strings.Join(msgs, "; "))
}

var errEmptyBody = errors.New("request body is empty")

// readBody reads a capped request body and validates it against schema.
func readBody(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, errEmptyBody)
	}
	if err := validateBody(schema, body); err != nil {
		return nil, err
	}
	return body, nil
}

// decodeBody reads, validates and decodes a request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, schema *gojsonschema.Schema, v any) error {
	body, err := readBody(w, r, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
