package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hugh/teamboard/internal/api/dto"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, dto.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func respondPage(w http.ResponseWriter, message string, data interface{}, pagination *dto.Pagination) {
	writeJSON(w, http.StatusOK, dto.Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.Response{
		Success: false,
		Message: message,
	})
}

func respondValidation(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusBadRequest, dto.Response{
		Success: false,
		Message: "Validation failed",
		Details: details,
	})
}
