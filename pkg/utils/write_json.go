package utils

import (
	"encoding/json"
	"net/http"
)

// WriteJSON encodes data with a 200 status.
func WriteJSON(w http.ResponseWriter, data interface{}) {
	WriteJSONStatus(w, http.StatusOK, data)
}

func WriteJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		Logger.WithError(err).Error("failed to encode JSON response")
	}
}

// WriteSuccess writes the {"status":"success","message":..,"data":..} envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	response := map[string]interface{}{
		"status": "success",
	}
	if message != "" {
		response["message"] = message
	}
	if data != nil {
		response["data"] = data
	}
	WriteJSONStatus(w, status, response)
}
