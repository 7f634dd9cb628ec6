package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type ApplicationMetrics struct {
	RequestCount   int64            `json:"request_count"`
	ErrorCount     int64            `json:"error_count"`
	ActiveRequests int64            `json:"active_requests"`
	TotalLatency   time.Duration    `json:"total_latency_ns"`
	StatusCodes    map[string]int64 `json:"status_codes"`
	Endpoints      map[string]int64 `json:"endpoints"`
}

type metricsRegistry struct {
	mu      sync.Mutex
	metrics ApplicationMetrics
}

var globalMetrics = &metricsRegistry{
	metrics: newApplicationMetrics(),
}

var startTime = time.Now()

func newApplicationMetrics() ApplicationMetrics {
	return ApplicationMetrics{
		StatusCodes: make(map[string]int64),
		Endpoints:   make(map[string]int64),
	}
}

// MetricsMiddleware records request counts, latency, status codes, and
// per-endpoint hit counts for every request passing through the router.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		globalMetrics.mu.Lock()
		globalMetrics.metrics.ActiveRequests++
		globalMetrics.mu.Unlock()

		c.Next()

		status := c.Writer.Status()
		endpoint := c.Request.Method + " " + c.FullPath()
		if c.FullPath() == "" {
			endpoint = c.Request.Method + " " + c.Request.URL.Path
		}

		globalMetrics.mu.Lock()
		defer globalMetrics.mu.Unlock()
		globalMetrics.metrics.ActiveRequests--
		globalMetrics.metrics.RequestCount++
		globalMetrics.metrics.TotalLatency += time.Since(start)
		globalMetrics.metrics.StatusCodes[http.StatusText(status)]++
		globalMetrics.metrics.Endpoints[endpoint]++
		if status >= http.StatusInternalServerError {
			globalMetrics.metrics.ErrorCount++
		}
	}
}

// GetMetrics returns a copy of the current application metrics.
func GetMetrics() ApplicationMetrics {
	globalMetrics.mu.Lock()
	defer globalMetrics.mu.Unlock()

	snapshot := globalMetrics.metrics
	snapshot.StatusCodes = make(map[string]int64, len(globalMetrics.metrics.StatusCodes))
	for k, v := range globalMetrics.metrics.StatusCodes {
		snapshot.StatusCodes[k] = v
	}
	snapshot.Endpoints = make(map[string]int64, len(globalMetrics.metrics.Endpoints))
	for k, v := range globalMetrics.metrics.Endpoints {
		snapshot.Endpoints[k] = v
	}
	return snapshot
}

type MemoryUsage struct {
	Alloc      uint64 `json:"alloc_mb"`
	TotalAlloc uint64 `json:"total_alloc_mb"`
	Sys        uint64 `json:"sys_mb"`
	NumGC      uint32 `json:"num_gc"`
}

type SystemMetrics struct {
	Uptime         time.Duration `json:"uptime_ns"`
	GoroutineCount int           `json:"goroutine_count"`
	CPUCount       int           `json:"cpu_count"`
	GoVersion      string        `json:"go_version"`
	MemoryUsage    MemoryUsage   `json:"memory_usage"`
}

func GetSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		Uptime:         time.Since(startTime),
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
		MemoryUsage: MemoryUsage{
			Alloc:      bToMb(m.Alloc),
			TotalAlloc: bToMb(m.TotalAlloc),
			Sys:        bToMb(m.Sys),
			NumGC:      m.NumGC,
		},
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

// MetricsHandler exposes application and system metrics as JSON.
func MetricsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"application": GetMetrics(),
			"system":      GetSystemMetrics(),
			"timestamp":   time.Now().Format(time.RFC3339),
		})
	}
}

type HealthCheck func(ctx context.Context) error

type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthChecker struct {
	mu     sync.Mutex
	checks map[string]HealthCheck
}

var globalHealthChecker = &healthChecker{
	checks: make(map[string]HealthCheck),
}

// RegisterHealthCheck adds a named dependency check consulted by the health
// and readiness endpoints.
func RegisterHealthCheck(name string, check HealthCheck) {
	globalHealthChecker.mu.Lock()
	defer globalHealthChecker.mu.Unlock()
	globalHealthChecker.checks[name] = check
}

func RunHealthChecks() map[string]CheckResult {
	globalHealthChecker.mu.Lock()
	checks := make(map[string]HealthCheck, len(globalHealthChecker.checks))
	for name, check := range globalHealthChecker.checks {
		checks[name] = check
	}
	globalHealthChecker.mu.Unlock()

	results := make(map[string]CheckResult, len(checks))
	for name, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := check(ctx); err != nil {
			results[name] = CheckResult{Status: "unhealthy", Error: err.Error()}
		} else {
			results[name] = CheckResult{Status: "healthy"}
		}
		cancel()
	}
	return results
}

func allHealthy(results map[string]CheckResult) bool {
	for _, result := range results {
		if result.Status != "healthy" {
			return false
		}
	}
	return true
}

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results := RunHealthChecks()

		status := "healthy"
		code := http.StatusOK
		if !allHealthy(results) {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"checks":    results,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

func ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		results := RunHealthChecks()

		if !allHealthy(results) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"checks": results,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
	}
}

func LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "alive",
			"uptime": time.Since(startTime).String(),
		})
	}
}
