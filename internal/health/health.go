package health

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is anything that can prove it is reachable: the pgx pool, the cache
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker pings the database and cache for the health endpoints
type HealthChecker struct {
	db      Pinger
	cache   Pinger
	started time.Time
}

type HealthStatus struct {
	Status   string          `json:"status"`
	Database ComponentHealth `json:"database"`
	Cache    ComponentHealth `json:"cache"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

type DetailedStatus struct {
	HealthStatus
	Uptime        string  `json:"uptime"`
	Goroutines    int     `json:"goroutines"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      string  `json:"disk_used"`
}

// NewHealthChecker accepts nil components; they are reported as "disabled"
func NewHealthChecker(db, cache Pinger) *HealthChecker {
	return &HealthChecker{db: db, cache: cache, started: time.Now()}
}

// CheckBasic reports liveness and uptime without touching dependencies
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := check(ctx, h.db)
	cacheHealth := check(ctx, h.cache)

	status := "healthy"
	if dbHealth.Status == "unhealthy" {
		status = "unhealthy"
	} else if cacheHealth.Status == "unhealthy" {
		status = "degraded"
	}

	return HealthStatus{Status: status, Database: dbHealth, Cache: cacheHealth}
}

// CheckDetailed adds host statistics of the current node
func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	d := DetailedStatus{
		HealthStatus: h.CheckBasic(ctx),
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		Goroutines:   runtime.NumGoroutine(),
	}

	if percents, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(percents) > 0 {
		d.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		d.MemoryPercent = vm.UsedPercent
		d.MemoryUsed = formatBytes(vm.Used)
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		d.DiskPercent = du.UsedPercent
		d.DiskUsed = formatBytes(du.Used)
	}
	return d
}

func check(ctx context.Context, p Pinger) ComponentHealth {
	if p == nil {
		return ComponentHealth{Status: "disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: responseTime}
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb >= 1 {
		return fmt.Sprintf("%.2f GB", gb)
	}
	return fmt.Sprintf("%.0f MB", float64(bytes)/(1024*1024))
}
