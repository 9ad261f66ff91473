package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-discover/pkg/discover"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps validation failures to 400 and everything else to 500.
// Internal error details are logged, not returned.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *discover.ValidationError
	if errors.As(err, &ve) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: ve.Error(), Field: ve.Field})
		return
	}

	slog.Error("Request failed", "op", op, "path", r.URL.Path, "error", err)
	writeStatus(w, r, http.StatusInternalServerError, "internal server error")
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}
