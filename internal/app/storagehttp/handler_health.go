package storagehttp

import (
	"encoding/json"
	"net/http"
)

// healthStats — payload ответа /health.
type healthStats struct {
	OK         bool  `json:"ok"`
	Files      int   `json:"files"`
	TotalBytes int64 `json:"total_bytes"`
}

// health возвращает агрегированную статистику по данным хранилища.
func (a *Server) health(w http.ResponseWriter, r *http.Request) {
	usage, err := a.Files.Usage(r.Context())

	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthStats{
		OK:         err == nil,
		Files:      usage.Files,
		TotalBytes: usage.TotalBytes,
	})
}
