// Package errors define el AppError de la API y cómo se serializa.
package errors

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Code          string   `json:"code"`
	Message       string   `json:"message"`
	Detail        string   `json:"detail,omitempty"`
	MissingFields []string `json:"missingFields,omitempty"`
}

// WriteError escribe err como JSON. La causa (Err) nunca se envía.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(appErr.HTTPStatus)

	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:          appErr.Code,
		Message:       appErr.Message,
		Detail:        appErr.Detail,
		MissingFields: appErr.MissingFields,
	})
}
