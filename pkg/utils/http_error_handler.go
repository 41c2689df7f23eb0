package utils

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// WriteError writes the {"status":"error","message":..} envelope.
// Server-side failures are also logged with their status.
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		Logger.WithFields(logrus.Fields{"status": statusCode}).Warn(message)
	}
	WriteJSONStatus(w, statusCode, errorResponse{
		Status:  "error",
		Message: message,
	})
}
