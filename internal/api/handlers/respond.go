// Package handlers implements the HTTP endpoints. Bodies are checked against
// a JSON schema, decoded into typed commands and handed to the services;
// every failure goes through the shared error handler.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "dealsdash/internal/common/errors"
	"dealsdash/internal/common/validation"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type messageResponse struct {
	Message string `json:"message"`
}

// decodeBody validates the request body against schema and decodes it into
// dst. Schema failures carry the offending fields in the error metadata.
func decodeBody(r *http.Request, schema *validation.Schema, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", apperrors.ErrInvalidArgument, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: body exceeds %d bytes", apperrors.ErrInvalidArgument, maxBodyBytes)
	}

	res := schema.Validate(body)
	if !res.Valid {
		stdErr := apperrors.NewInvalidArgumentError(fmt.Sprintf("%s: %v", schema.Name(), res.GetErrorMessages()))
		stdErr.Metadata = map[string]interface{}{"fields": res.Errors}
		return stdErr
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: decode body: %v", apperrors.ErrInvalidArgument, err)
	}
	return nil
}

// pathID reads a UUID path parameter. Malformed ids are a client error.
func pathID(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q is not a valid id", apperrors.ErrInvalidArgument, name, raw)
	}
	return id.String(), nil
}
