// ABOUTME: JSON request decoding and response helpers shared by every handler
// ABOUTME: Status bodies follow {"status": ..., "detail": ...}

package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

const maxBodyBytes = 1 << 20

// StatusBody is the response shape for actions that return no resource.
type StatusBody struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
	RentID int64  `json:"rent_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, StatusBody{Status: "Ok", Detail: detail})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, StatusBody{Status: "Error", Detail: detail})
}

func (a *API) writeInternal(w http.ResponseWriter, msg string, err error) {
	a.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal error")
}

// decodeBody reads a JSON object into dst. Unknown fields are rejected.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// pathID parses the {id} wildcard. IDs are positive 32-bit integers.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer, got %q", r.PathValue("id"))
	}
	return id, nil
}

// decodeOrReject decodes the body into dst and writes a 400 on failure.
func decodeOrReject(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeBody(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// rejectInvalid writes a 422 for a failed validation and reports whether it did.
func rejectInvalid(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}
	writeError(w, http.StatusUnprocessableEntity, err.Error())
	return true
}
