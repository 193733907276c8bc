package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/pixo/internal/common"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type APIFunc func(w http.ResponseWriter, r *http.Request) error

// makeHandler turns an APIFunc into a handler that renders returned errors
// as ErrorResponse bodies.
func (s *Server) makeHandler(f APIFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}

		se, body := toStatusError(err)
		if se.Status >= http.StatusInternalServerError {
			s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		} else {
			s.logger.Debug(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
		}

		writeJSON(w, se.Status, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads one JSON object from the request body. Malformed or
// missing bodies are ErrInvalidInput.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", common.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON body", common.ErrInvalidInput)
	}
	return nil
}
