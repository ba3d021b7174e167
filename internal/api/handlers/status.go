package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"structwatch/internal/engine/status"
	"structwatch/internal/platform/config"
	"structwatch/internal/platform/repositories"
)

// StatusHandler exposes the service-wide sync health signal for
// external monitoring.
type StatusHandler struct {
	db  *sql.DB
	cfg config.SyncConfig
}

func NewStatusHandler(db *sql.DB, cfg config.SyncConfig) *StatusHandler {
	return &StatusHandler{db: db, cfg: cfg}
}

// Get reports 200 when every owner that participates in service status
// has all four sync lanes healthy, 503 otherwise.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	owners, err := repositories.NewOwnerRepository(h.db).ListIncludedInServiceStatus()
	if err != nil {
		log.Error().Err(err).Msg("failed to load owners for status report")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	ok, reports := status.Aggregate(owners, h.cfg, time.Now().UTC())

	response := struct {
		OK     bool                 `json:"ok"`
		Owners []status.OwnerStatus `json:"owners"`
	}{
		OK:     ok,
		Owners: reports,
	}

	statusCode := http.StatusOK
	if !ok {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
