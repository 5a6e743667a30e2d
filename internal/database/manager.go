package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Ayash-Bera/medquery/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotConfigured is returned when a backing store was left unset in config.
var ErrNotConfigured = errors.New("not configured")

// Database connection manager. Either connection may be nil.
type Manager struct {
	DB     *gorm.DB
	Redis  *redis.Client
	logger *logrus.Logger
}

// Database configuration
type Config struct {
	DatabaseURL string
	RedisURL    string
	LogLevel    string
}

// NewManager opens whichever of PostgreSQL and Redis has a URL.
func NewManager(config *Config, l *logrus.Logger) (*Manager, error) {
	m := &Manager{logger: l}

	if config.DatabaseURL != "" {
		db, err := openPostgres(config, l)
		if err != nil {
			return nil, err
		}
		m.DB = db
	}

	if config.RedisURL != "" {
		client, err := openRedis(config.RedisURL)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.Redis = client
	}

	l.WithFields(logrus.Fields{
		"postgres": m.DB != nil,
		"redis":    m.Redis != nil,
	}).Info("Storage connections established")

	return m, nil
}

func gormLogger(level string, l *logrus.Logger) logger.Interface {
	if level != "debug" {
		return logger.Default.LogMode(logger.Silent)
	}
	return logger.New(
		log.New(l.Writer(), "", 0),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func openPostgres(config *Config, l *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.DatabaseURL), &gorm.Config{
		Logger:                 gormLogger(config.LogLevel, l),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func openRedis(url string) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.PoolSize = 10
	redisOpts.MinIdleConns = 2
	redisOpts.IdleTimeout = 30 * time.Minute

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Migrate runs GORM auto-migrations
func (m *Manager) Migrate() error {
	if m.DB == nil {
		return fmt.Errorf("postgres: %w", ErrNotConfigured)
	}
	m.logger.Info("Running database migrations...")

	return m.DB.AutoMigrate(
		&models.QueryRecord{},
		&models.SystemHealth{},
	)
}

// Close closes all database connections
func (m *Manager) Close() error {
	if m.Redis != nil {
		if err := m.Redis.Close(); err != nil {
			m.logger.WithError(err).Error("Failed to close Redis connection")
		}
	}

	if m.DB != nil {
		sqlDB, err := m.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}

// Health check methods
func (m *Manager) PingDatabase(ctx context.Context) error {
	if m.DB == nil {
		return fmt.Errorf("postgres: %w", ErrNotConfigured)
	}
	sqlDB, err := m.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (m *Manager) PingRedis(ctx context.Context) error {
	if m.Redis == nil {
		return fmt.Errorf("redis: %w", ErrNotConfigured)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.Redis.Ping(ctx).Err()
}

// Cache is a thin JSON layer over Redis. A nil *Cache behaves as a cache
// that always misses.
type Cache struct {
	client redis.Cmdable
	logger *logrus.Logger
}

// NewCache returns nil when client is nil.
func NewCache(client *redis.Client, logger *logrus.Logger) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Cache key constants
const (
	RecentHistoryKey = "history:recent:%d"
	HistoryPattern   = "history:*"
	SystemHealthKey  = "system:health"
)

// CacheRecentHistory caches the newest query records for a given page size
func (c *Cache) CacheRecentHistory(ctx context.Context, limit int, records []models.QueryRecord, expiration time.Duration) error {
	if c == nil {
		return nil
	}
	return c.setJSON(ctx, fmt.Sprintf(RecentHistoryKey, limit), records, expiration)
}

// GetCachedRecentHistory retrieves cached query records
func (c *Cache) GetCachedRecentHistory(ctx context.Context, limit int) ([]models.QueryRecord, error) {
	if c == nil {
		return nil, redis.Nil
	}
	var records []models.QueryRecord
	err := c.getJSON(ctx, fmt.Sprintf(RecentHistoryKey, limit), &records)
	return records, err
}

// InvalidateHistory drops every cached history page
func (c *Cache) InvalidateHistory(ctx context.Context) error {
	if c == nil {
		return nil
	}

	var keys []string
	iter := c.client.Scan(ctx, 0, HistoryPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// CacheSystemHealth caches system health status
func (c *Cache) CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error {
	if c == nil {
		return nil
	}
	return c.setJSON(ctx, SystemHealthKey, health, expiration)
}

// GetCachedSystemHealth retrieves cached system health
func (c *Cache) GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, error) {
	if c == nil {
		return nil, redis.Nil
	}
	var health []models.SystemHealth
	err := c.getJSON(ctx, SystemHealthKey, &health)
	return health, err
}

func (c *Cache) setJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *Cache) getJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// IsCacheMiss reports whether err means the key was absent or caching is off.
func IsCacheMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
