package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/SeanFuture9999/stock-game1/internal/database"
	"github.com/SeanFuture9999/stock-game1/internal/events"
	"github.com/SeanFuture9999/stock-game1/internal/scheduler"
)

// SystemHandlers serves health, system stats and background job endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	databases []*database.DB
	scheduler *scheduler.Scheduler
	events    *events.Manager
	startedAt time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, databases []*database.DB,
	sched *scheduler.Scheduler, ev *events.Manager) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		databases: databases,
		scheduler: sched,
		events:    ev,
		startedAt: time.Now(),
	}
}

// HandleHealth handles GET /health
// Pings every database; any failure degrades the overall status.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := make(map[string]string, len(h.databases))
	for _, db := range h.databases {
		if err := db.HealthCheck(r.Context()); err != nil {
			checks[db.Name()] = err.Error()
			status = "degraded"
		} else {
			checks[db.Name()] = "ok"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, map[string]any{
		"status":    status,
		"databases": checks,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// HandleSystemStats handles GET /api/system/stats
func (h *SystemHandlers) HandleSystemStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"goroutines": runtime.NumGoroutine(),
		"go_version": runtime.Version(),
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats["memory_used_percent"] = vm.UsedPercent
		stats["memory_total_mb"] = vm.Total / 1024 / 1024
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats["cpu_percent"] = percents[0]
	}

	dbStats := make([]map[string]any, 0, len(h.databases))
	for _, db := range h.databases {
		entry := map[string]any{"name": db.Name()}
		if s, err := db.GetStats(); err == nil {
			entry["size_bytes"] = s.SizeBytes
			entry["wal_size_bytes"] = s.WALSizeBytes
			entry["page_count"] = s.PageCount
		}
		dbStats = append(dbStats, entry)
	}
	stats["databases"] = dbStats

	h.writeJSON(w, http.StatusOK, map[string]any{"data": stats})
}

// HandleJobStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"data": h.scheduler.Status()})
}

// HandleRunJob handles POST /api/system/jobs/{name}/run
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.scheduler.RunNow(name) {
		h.writeJSON(w, http.StatusNotFound, map[string]any{"error": "Unknown job"})
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]any{"started": name})
}

// HandleRecentEvents handles GET /api/system/events
func (h *SystemHandlers) HandleRecentEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"data": h.events.Recent(limit)})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
