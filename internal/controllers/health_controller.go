package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"streakd/internal/services"
	"time"
)

// BackupClock reports when the last backup succeeded.
type BackupClock interface {
	LastBackup() time.Time
}

type HealthController struct {
	service   services.StreakServiceInterface
	backups   BackupClock
	startTime time.Time
}

type healthResponse struct {
	Status           string  `json:"status"`
	Uptime           string  `json:"uptime"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	RecordsProcessed int64   `json:"records_processed"`
	MilestonesSent   int64   `json:"milestones_sent"`
	LastBackup       string  `json:"last_backup,omitempty"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:           "ok",
		Uptime:           formatDuration(uptime),
		UptimeSeconds:    uptime.Seconds(),
		RecordsProcessed: hc.service.RecordsProcessed(),
		MilestonesSent:   hc.service.MilestonesSent(),
	}
	if hc.backups != nil {
		if last := hc.backups.LastBackup(); !last.IsZero() {
			resp.LastBackup = last.UTC().Format(time.RFC3339)
		}
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.StreakServiceInterface, backups BackupClock) *HealthController {
	return &HealthController{
		service:   service,
		backups:   backups,
		startTime: time.Now(),
	}
}
