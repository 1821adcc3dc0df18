package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/yourorg/openhouse-api/internal/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeError(w http.ResponseWriter, req *http.Request, status int, code string, detail string) {
	render.Status(req, status)
	body := map[string]any{"error": code}
	if detail != "" {
		body["detail"] = detail
	}
	render.JSON(w, req, body)
}

// decodeBody reads a JSON body into dst and runs struct validation. On failure
// the error response has already been written.
func decodeBody(w http.ResponseWriter, req *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, 64<<10))
	if err := dec.Decode(dst); err != nil {
		writeError(w, req, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, req, http.StatusBadRequest, "invalid_request", validationDetail(err))
		return false
	}
	return true
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// pathParam returns the unescaped URL parameter; chi hands back the raw
// segment when the path contained escapes.
func pathParam(req *http.Request, name string) string {
	v := chi.URLParam(req, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// persisted reports whether a state write reached storage. A failed write
// keeps the new value in memory and is logged, not surfaced as an error.
func persisted(sessionID string, err error) bool {
	if err != nil {
		logger.Log.Warnf("session %s: persist failed: %v", sessionID, err)
		return false
	}
	return true
}
