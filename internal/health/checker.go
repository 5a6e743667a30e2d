package health

import (
	"context"
	"time"

	"github.com/Ayash-Bera/medquery/internal/database"
	"github.com/Ayash-Bera/medquery/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"

	ServicePostgres = "postgresql"
	ServiceRedis    = "redis"
	ServiceMedical  = "medical_api"

	defaultCheckTimeout = 5 * time.Second
)

// Pinger is anything with a cheap liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	dbManager  *database.Manager
	cache      *database.Cache
	healthRepo models.SystemHealthRepository
	medical    Pinger
	logger     *logrus.Logger
	started    time.Time

	// checkTimeout bounds each check; the medical client has no timeout of its own by default.
	checkTimeout time.Duration
}

// NewHealthChecker builds a checker. healthRepo may be nil when no database
// is configured.
func NewHealthChecker(dbManager *database.Manager, healthRepo models.SystemHealthRepository, medical Pinger, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		dbManager:  dbManager,
		cache:      database.NewCache(dbManager.Redis, logger),
		healthRepo: healthRepo,
		medical:    medical,
		logger:     logger,
		started:    time.Now(),

		checkTimeout: defaultCheckTimeout,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status         string          `json:"status"`
	Services       []ServiceHealth `json:"services"`
	Uptime         string          `json:"uptime"`
	ActiveSessions int             `json:"active_sessions"`
}

func (h *HealthChecker) check(ctx context.Context, name, failedStatus string, ping func(context.Context) error) ServiceHealth {
	checkCtx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()

	start := time.Now()
	err := ping(checkCtx)
	responseTime := int(time.Since(start).Milliseconds())

	status := StatusHealthy
	errorMsg := ""
	if err != nil {
		status = failedStatus
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", name).Error("Health check failed")
	}

	if h.healthRepo != nil {
		if err := h.healthRepo.UpdateServiceHealth(name, status, responseTime, errorMsg); err != nil {
			h.logger.WithError(err).WithField("service", name).Warn("Failed to persist health status")
		}
	}

	return ServiceHealth{
		Name:         name,
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll checks every configured service. Storage failures make the
// system unhealthy; a failing medical backend only degrades it, since the
// form still renders and reports the failure.
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	var services []ServiceHealth

	if h.dbManager.DB != nil {
		services = append(services, h.check(ctx, ServicePostgres, StatusUnhealthy, h.dbManager.PingDatabase))
	}
	if h.dbManager.Redis != nil {
		services = append(services, h.check(ctx, ServiceRedis, StatusUnhealthy, h.dbManager.PingRedis))
	}
	services = append(services, h.check(ctx, ServiceMedical, StatusDegraded, h.medical.Ping))

	return OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   h.getUptime(),
	}
}

func overallStatus(services []ServiceHealth) string {
	overall := StatusHealthy
	for _, service := range services {
		if service.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if service.Status == StatusDegraded {
			overall = StatusDegraded
		}
	}
	return overall
}

// CheckCached returns the last recorded health status, from Redis first
// and then from the newest persisted rows.
func (h *HealthChecker) CheckCached(ctx context.Context) (*OverallHealth, error) {
	cachedHealth, err := h.cache.GetCachedSystemHealth(ctx)
	if err != nil && h.healthRepo != nil {
		stored, repoErr := h.healthRepo.GetAllServicesHealth()
		if repoErr == nil && len(stored) > 0 {
			cachedHealth, err = stored, nil
		}
	}
	if err != nil {
		return nil, err
	}

	services := make([]ServiceHealth, len(cachedHealth))
	for i, health := range cachedHealth {
		services[i] = ServiceHealth{
			Name:         health.ServiceName,
			Status:       health.Status,
			ResponseTime: health.ResponseTimeMs,
			Error:        health.ErrorMessage,
			LastChecked:  health.CheckedAt.Format(time.RFC3339),
		}
	}

	return &OverallHealth{
		Status:   overallStatus(services),
		Services: services,
		Uptime:   h.getUptime(),
	}, nil
}

// Current prefers the cached report and falls back to a live check.
func (h *HealthChecker) Current(ctx context.Context) OverallHealth {
	if cached, err := h.CheckCached(ctx); err == nil {
		return *cached
	}
	return h.CheckAll(ctx)
}

func (h *HealthChecker) getUptime() string {
	return time.Since(h.started).Round(time.Second).String()
}

// PeriodicHealthCheck runs health checks periodically
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.refresh(ctx, interval)
		}
	}
}

func (h *HealthChecker) refresh(ctx context.Context, interval time.Duration) {
	health := h.CheckAll(ctx)

	healthModels := make([]models.SystemHealth, len(health.Services))
	for i, service := range health.Services {
		checkedAt, _ := time.Parse(time.RFC3339, service.LastChecked)
		healthModels[i] = models.SystemHealth{
			ServiceName:    service.Name,
			Status:         service.Status,
			ResponseTimeMs: service.ResponseTime,
			ErrorMessage:   service.Error,
			CheckedAt:      checkedAt,
		}
	}

	cacheCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.cache.CacheSystemHealth(cacheCtx, healthModels, 2*interval); err != nil {
		h.logger.WithError(err).Error("Failed to cache health status")
	}

	h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
}
