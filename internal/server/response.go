package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Veraticus/trash-scanner/internal/common"
	"github.com/Veraticus/trash-scanner/internal/setup"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Data    any    `json:"data,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Status: "success", Data: data})
}

// fail writes a localized error. The message key comes from err when it
// carries one, else from fallbackKey.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, fallbackKey string, err error) {
	key := errorKey(err, fallbackKey)
	if err != nil && status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "key", key, "error", err)
	}
	loc := s.localizer(r)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Language", string(loc.Language()))
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Status:  "error",
		Code:    key,
		Message: loc.T(key),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}

var errBadRequest = errors.New("bad request")

func errorKey(err error, fallback string) string {
	var setupErr *setup.Error
	if errors.As(err, &setupErr) {
		return setupErr.Key()
	}
	return common.UserErrorKey(err, fallback)
}
