package response

import (
	"encoding/json"
	"net/http"
)

type messageBody struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Message writes the flat {"message": ...} body the API contract uses for
// every non-data response, success or failure.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, messageBody{Message: message})
}

func NotAuthenticated(w http.ResponseWriter) {
	Message(w, http.StatusUnauthorized, "Not authenticated")
}

func InternalServerError(w http.ResponseWriter) {
	Message(w, http.StatusInternalServerError, "Internal Server Error")
}
