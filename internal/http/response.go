package http

import (
	"net/http"

	"priestbook/backend/internal/httpjson"
)

// APIError is the error body shape used by every v1 handler.
type APIError struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	httpjson.Write(w, status, v)
}

func Fail(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, APIError{Message: msg})
}
