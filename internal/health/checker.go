package health

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/code-geek/ai-project-template/internal/cache"
	"github.com/code-geek/ai-project-template/pkg/metrics"
)

// MigrationSource reports schema migrations that have not been applied
// yet. Satisfied by database.Migrator.
type MigrationSource interface {
	Pending(ctx context.Context) ([]string, error)
}

// LivenessReport says the process is running, independent of
// dependency health
type LivenessReport struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}

// DatabaseReport is the result of one database round trip
type DatabaseReport struct {
	Database  string  `json:"database"`
	Error     *string `json:"error"`
	Timestamp string  `json:"timestamp"`
}

// CacheReport is the result of one sentinel round trip against the
// cache backend
type CacheReport struct {
	Cache     string  `json:"cache"`
	Error     *string `json:"error"`
	Timestamp string  `json:"timestamp"`
}

// ReadinessReport aggregates the database, cache and migration checks.
// Ready is the AND of all three.
type ReadinessReport struct {
	Ready     bool              `json:"ready"`
	Checks    map[string]bool   `json:"checks"`
	Errors    map[string]string `json:"errors"`
	Timestamp string            `json:"timestamp"`
}

// Checker runs dependency health checks. Every report is produced
// fresh per call; nothing is retained between requests. Checks run
// sequentially with no retries.
type Checker struct {
	logger     *zap.Logger
	db         *gorm.DB
	cache      cache.Store
	migrations MigrationSource
	service    string
	version    string
}

// NewChecker creates a health checker
func NewChecker(logger *zap.Logger, db *gorm.DB, store cache.Store, migrations MigrationSource, service, version string) *Checker {
	return &Checker{
		logger:     logger,
		db:         db,
		cache:      store,
		migrations: migrations,
		service:    service,
		version:    version,
	}
}

// Liveness reports static service metadata. It never fails.
func (c *Checker) Liveness() LivenessReport {
	return LivenessReport{
		Status:    "healthy",
		Timestamp: timestamp(),
		Service:   c.service,
		Version:   c.version,
	}
}

// CheckDatabase runs one trivial round-trip query. Any error is
// reported in the body instead of propagating.
func (c *Checker) CheckDatabase(ctx context.Context) DatabaseReport {
	report := DatabaseReport{Database: "connected", Timestamp: timestamp()}

	if err := c.pingDatabase(ctx); err != nil {
		msg := err.Error()
		report.Database = "error"
		report.Error = &msg
	}
	return report
}

// CheckCache writes a short-lived sentinel value and reads it back.
// A read-back mismatch is status "error" with a null error field; an
// operation failure carries the message.
func (c *Checker) CheckCache(ctx context.Context) CacheReport {
	report := CacheReport{Cache: "connected", Timestamp: timestamp()}

	ok, err := c.pingCache(ctx, "health_check")
	if err != nil {
		msg := err.Error()
		report.Cache = "error"
		report.Error = &msg
	} else if !ok {
		report.Cache = "error"
	}
	return report
}

// CheckReadiness aggregates the database, cache and pending-migration
// checks for load balancers. Errors is nil when every check passed.
func (c *Checker) CheckReadiness(ctx context.Context) ReadinessReport {
	checks := map[string]bool{"database": true, "cache": true, "migrations": true}
	errs := map[string]string{}

	if err := c.pingDatabase(ctx); err != nil {
		checks["database"] = false
		errs["database"] = err.Error()
	}

	if ok, err := c.pingCache(ctx, "readiness_check"); err != nil {
		checks["cache"] = false
		errs["cache"] = err.Error()
	} else if !ok {
		checks["cache"] = false
	}

	if pending, err := c.migrations.Pending(ctx); err != nil {
		checks["migrations"] = false
		errs["migrations"] = err.Error()
	} else if len(pending) > 0 {
		checks["migrations"] = false
		errs["migrations"] = "Pending migrations detected"
	}

	ready := true
	for name, up := range checks {
		if up {
			metrics.HealthCheckUp.WithLabelValues(name).Set(1)
		} else {
			ready = false
			metrics.HealthCheckUp.WithLabelValues(name).Set(0)
		}
	}

	if !ready {
		c.logger.Warn("Readiness check failed", zap.Any("checks", checks))
	}

	report := ReadinessReport{
		Ready:     ready,
		Checks:    checks,
		Timestamp: timestamp(),
	}
	if len(errs) > 0 {
		report.Errors = errs
	}
	return report
}

func (c *Checker) pingDatabase(ctx context.Context) error {
	var one int
	return c.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

// pingCache returns whether the sentinel read back unchanged; an error
// means the backend operation itself failed.
func (c *Checker) pingCache(ctx context.Context, key string) (bool, error) {
	if err := c.cache.Set(ctx, key, "ok", time.Second); err != nil {
		return false, err
	}
	value, err := c.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		// A vanished sentinel is a mismatch, not an operation failure
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value == "ok", nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
