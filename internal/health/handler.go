package health

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/praxisnote/transcription/internal/realtime"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type ComponentStatus struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status           Status                     `json:"status"`
	Timestamp        time.Time                  `json:"timestamp"`
	UptimeSeconds    int64                      `json:"uptime_seconds"`
	ActiveRecordings int                        `json:"active_recordings"`
	Goroutines       int                        `json:"goroutines"`
	Components       map[string]ComponentStatus `json:"components"`
}

type Handler struct {
	db         *gorm.DB
	redis      *redis.Client
	sessionMgr *realtime.Manager
	startTime  time.Time
}

func NewHandler(db *gorm.DB, redisClient *redis.Client, sessionMgr *realtime.Manager) *Handler {
	return &Handler{
		db:         db,
		redis:      redisClient,
		sessionMgr: sessionMgr,
		startTime:  time.Now(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
}

func (h *Handler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	components := make(map[string]ComponentStatus)
	var mu sync.Mutex
	var wg sync.WaitGroup

	checks := map[string]func(context.Context) ComponentStatus{
		"database": h.checkDatabase,
		"redis":    h.checkRedis,
	}

	wg.Add(len(checks))
	for name, fn := range checks {
		go func(name string, fn func(context.Context) ComponentStatus) {
			defer wg.Done()
			status := fn(ctx)
			mu.Lock()
			components[name] = status
			mu.Unlock()
		}(name, fn)
	}
	wg.Wait()

	overall := StatusHealthy
	for _, status := range components {
		if status.Status == StatusUnhealthy {
			overall = StatusUnhealthy
			break
		}
	}

	resp := HealthResponse{
		Status:           overall,
		Timestamp:        time.Now().UTC(),
		UptimeSeconds:    int64(time.Since(h.startTime).Seconds()),
		ActiveRecordings: h.sessionMgr.SessionCount(),
		Goroutines:       runtime.NumGoroutine(),
		Components:       components,
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, resp)
}

func (h *Handler) checkDatabase(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.db == nil {
		return ComponentStatus{Status: StatusUnhealthy, Error: "database not configured"}
	}

	sqlDB, err := h.db.DB()
	if err != nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "failed to get underlying db",
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ping failed",
		}
	}

	return ComponentStatus{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
}

func (h *Handler) checkRedis(ctx context.Context) ComponentStatus {
	start := time.Now()
	if h.redis == nil {
		// Redis is optional; the in-memory arbiter serves single-instance
		// deployments.
		return ComponentStatus{Status: StatusDegraded, Error: "redis not configured"}
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		return ComponentStatus{
			Status:    StatusUnhealthy,
			LatencyMs: time.Since(start).Milliseconds(),
			Error:     "ping failed",
		}
	}

	return ComponentStatus{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
}
