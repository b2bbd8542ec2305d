package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse тело любого ответа с ошибкой
type ErrorResponse struct {
	Message string `json:"message"`
}

// JSON пишет статус и тело в формате JSON.
func JSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func Error(w http.ResponseWriter, status int, message string) {
	_ = JSON(w, status, ErrorResponse{Message: message})
}
