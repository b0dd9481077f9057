package server

import (
	"encoding/json"
	"net/http"
)

// apiResponse is the envelope for all JSON endpoints.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func jsonSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, apiResponse{Success: true, Data: data})
}

func jsonMessage(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, apiResponse{Success: true, Data: data, Message: message})
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, apiResponse{Success: false, Message: message})
}

func jsonValidationError(w http.ResponseWriter, errs []string) {
	writeJSON(w, http.StatusUnprocessableEntity, apiResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
