package tasks

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type messageResponse struct {
	Message string `json:"message"`
}

type serverErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeServerError surfaces the underlying error text to the caller.
// Known compatibility behavior; the error is also logged server-side.
func writeServerError(w http.ResponseWriter, msg string, err error) {
	writeJSON(w, http.StatusInternalServerError, serverErrorResponse{Message: msg, Error: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}
