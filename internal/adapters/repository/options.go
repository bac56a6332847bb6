package repository

import gormlogger "gorm.io/gorm/logger"

type gormOptions struct {
	logLevel gormlogger.LogLevel
}

// Option applies a configuration option to OpenSQLite.
type Option func(*gormOptions)

// WithSQLLogging enables gorm's statement logger.
func WithSQLLogging(enabled bool) Option {
	return func(o *gormOptions) {
		if enabled {
			o.logLevel = gormlogger.Info
		} else {
			o.logLevel = gormlogger.Silent
		}
	}
}
