package handler

import (
	"context"
	"net/http"
	"time"

	"vendapos/internal/infra"
	"vendapos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the fiscal breaker state;
// never exposes credentials or internals. cb is nil in mock fiscal mode.
func Health(db *gorm.DB, rdb *redis.Client, cb *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var dlq map[string]int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			dlq, _ = worker.DLQLengths(ctx, rdb)
		}

		fiscalState := "mock"
		if cb != nil {
			fiscalState = cb.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":             status == http.StatusOK,
			"db":             dbStatus,
			"redis":          redisStatus,
			"fiscal_breaker": fiscalState,
			"dead_letters":   dlq,
		})
	}
}
