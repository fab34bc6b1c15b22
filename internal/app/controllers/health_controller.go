package controllers

import (
	"dingdong-http-service/internal/app/middleware"
	"dingdong-http-service/internal/domain/services"
	"dingdong-http-service/internal/domain/services/container"
	"dingdong-http-service/internal/error/response"
	"dingdong-http-service/internal/infrastructure/database"

	"github.com/gin-gonic/gin"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	Container *container.ServiceContainer
	Pool      *database.ConnectionPool
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(container *container.ServiceContainer, pool *database.ConnectionPool) *HealthCheckController {
	return &HealthCheckController{
		Container: container,
		Pool:      pool,
	}
}

// Ping 健康检查端点
func (h *HealthCheckController) Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status 返回数据库连接池和Redis的状态
func (h *HealthCheckController) Status(c *gin.Context) {
	dbStatus := "up"
	var poolStats map[string]interface{}
	if h.Pool != nil {
		stats, err := h.Pool.Stats()
		if err != nil {
			dbStatus = "down"
		} else {
			poolStats = stats
		}
	} else {
		dbStatus = "unknown"
	}

	redisStatus := "up"
	redisService := h.Container.GetService("redis").(services.InterfaceRedisService)
	if err := redisService.Ping(); err != nil {
		redisStatus = "down"
	}

	response.Success(c, gin.H{
		"database":   dbStatus,
		"db_pool":    poolStats,
		"redis":      redisStatus,
		"http_cache": middleware.CacheStats(),
	})
}
