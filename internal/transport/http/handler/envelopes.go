package handler

import (
	"encoding/json"
	"net/http"

	"github.com/weedscan-auth/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeResult serializes an AuthResult with its embedded status code.
// Successful envelopes carry no status, so they default to 200.
func writeResult(w http.ResponseWriter, res domain.AuthResult) {
	status := res.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

func writeError(w http.ResponseWriter, err *domain.Error) {
	writeResult(w, domain.AuthResult{
		Success:    false,
		Error:      err.Code,
		Message:    err.Message,
		StatusCode: err.Status,
	})
}
