package storagehttp

import (
	"encoding/json"
	"net/http"

	"github.com/sir_venger/flatstore/internal/metrics"
	"github.com/sir_venger/flatstore/pkg/httperrors"
)

// explorer возвращает JSON-массив имён файлов. Каждый вызов заново обходит каталог.
func (a *Server) explorer(w http.ResponseWriter, r *http.Request) {
	names, err := a.Files.List(r.Context())
	metrics.RecordListing(err == nil)
	if err != nil {
		httperrors.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(names); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
