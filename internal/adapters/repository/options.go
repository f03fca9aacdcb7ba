package repository

import "time"

// GormOption applies a configuration option to the GormStore.
type GormOption func(*GormStore)

// WithGormClock overrides the clock used for timestamps and document expiry.
func WithGormClock(now func() time.Time) GormOption {
	return func(s *GormStore) {
		if now != nil {
			s.now = now
		}
	}
}

// PoolConfig tunes the database/sql pool under gorm.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// WithPool sets connection pool limits. Zero fields keep the defaults.
func WithPool(p PoolConfig) GormOption {
	return func(s *GormStore) {
		if p.MaxOpenConns > 0 {
			s.pool.MaxOpenConns = p.MaxOpenConns
		}
		if p.MaxIdleConns > 0 {
			s.pool.MaxIdleConns = p.MaxIdleConns
		}
		if p.ConnMaxIdleTime > 0 {
			s.pool.ConnMaxIdleTime = p.ConnMaxIdleTime
		}
		if p.ConnMaxLifetime > 0 {
			s.pool.ConnMaxLifetime = p.ConnMaxLifetime
		}
	}
}
