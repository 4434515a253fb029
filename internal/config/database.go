package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectAttempts = 5

// OpenDatabase подключается к MySQL с несколькими попытками и экспоненциальной паузой
func OpenDatabase(cfg Config, logg logrus.FieldLogger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLog()})
		if err == nil {
			logg.WithFields(logrus.Fields{"attempt": attempt, "host": cfg.DBHost}).Info("connected to database")
			return db, nil
		}
		lastErr = err
		sleep := backoff(attempt)
		logg.WithFields(logrus.Fields{"attempt": attempt, "retry_in": sleep.String()}).Warnf("failed to connect database: %v", err)
		time.Sleep(sleep)
	}
	return nil, fmt.Errorf("connect database: %w", lastErr)
}

// OpenRedis подключается к Redis и проверяет соединение через PING
func OpenRedis(ctx context.Context, cfg Config, logg logrus.FieldLogger) (*redis.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			DB:       0,
			PoolSize: 20,
		})
		if err := rdb.Ping(ctx).Err(); err == nil {
			logg.WithFields(logrus.Fields{"attempt": attempt, "addr": cfg.RedisAddr}).Info("connected to redis")
			return rdb, nil
		} else {
			lastErr = err
			_ = rdb.Close()
		}
		sleep := backoff(attempt)
		logg.WithFields(logrus.Fields{"attempt": attempt, "retry_in": sleep.String()}).Warnf("failed to connect redis: %v", lastErr)
		time.Sleep(sleep)
	}
	return nil, fmt.Errorf("connect redis: %w", lastErr)
}

func backoff(attempt int) time.Duration {
	sleep := time.Second * time.Duration(1<<min(attempt, 5))
	if sleep > 30*time.Second {
		sleep = 30 * time.Second
	}
	return sleep
}

func gormLog() gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			Colorful:      false,
			LogLevel:      gormlogger.Error,
			SlowThreshold: time.Second,
		},
	)
}
