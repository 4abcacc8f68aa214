package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/workshoperp/demandcast/internal/database"
	"github.com/workshoperp/demandcast/internal/telemetry"
)

type HealthHandler struct {
	db    *database.PostgresDB
	redis *database.RedisClient
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

func NewHealthHandler(db *database.PostgresDB, redis *database.RedisClient) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Check reports liveness plus the status of each dependency. Any degraded
// dependency turns the overall status to degraded with HTTP 503.
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   telemetry.ServiceVersion,
		Services:  map[string]string{},
	}

	status := http.StatusOK

	response.Services["database"] = "ok"
	if h.db == nil || h.db.HealthCheck(c.Request.Context()) != nil {
		response.Services["database"] = "unavailable"
		response.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	response.Services["redis"] = "ok"
	if h.redis == nil || h.redis.HealthCheck(c.Request.Context()) != nil {
		response.Services["redis"] = "unavailable"
		response.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, response)
}

// System returns a point-in-time snapshot of host resource usage.
func (h *HealthHandler) System(c *gin.Context) {
	snapshot := gin.H{
		"timestamp":  time.Now().UTC(),
		"goroutines": runtime.NumGoroutine(),
	}

	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		snapshot["cpu_percent"] = percentages[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snapshot["memory_used_percent"] = vm.UsedPercent
		snapshot["memory_total_bytes"] = vm.Total
	}

	c.JSON(http.StatusOK, snapshot)
}
