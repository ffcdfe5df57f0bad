package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soaringjerry/NeuroReclaim/internal/logger"
	"github.com/soaringjerry/NeuroReclaim/internal/middleware"
	"github.com/soaringjerry/NeuroReclaim/internal/services"
	"github.com/soaringjerry/NeuroReclaim/internal/utils"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusBadRequest
		switch se.Code {
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, errorBody{Error: se.Message, Code: string(se.Code), Field: se.Field})
		return
	}
	logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	locale := middleware.LocaleFromContext(r.Context())
	writeError(w, http.StatusInternalServerError, "internal", utils.T(locale, "error.internal"))
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return services.NewInvalidError("malformed JSON")
		}
		return services.NewInvalidError("invalid request body: " + err.Error())
	}
	return nil
}
