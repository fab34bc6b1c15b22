package middleware

import (
	"strconv"

	"dingdong-http-service/internal/domain/models"
	"dingdong-http-service/internal/domain/services"
	"dingdong-http-service/internal/domain/services/container"
	"dingdong-http-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ContextBuzzKey buzz中间件写入gin上下文的键
const ContextBuzzKey = "buzz"

// TwiML 语音路由的公共中间件：响应是TwiML文档，统一设置text/xml，
// 并记录回调的路径和表单内容
func TwiML() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/xml; charset=utf-8")
		if err := c.Request.ParseForm(); err == nil {
			logger.Info("voice回调 %s %v", c.Request.URL.Path, c.Request.PostForm)
		}
		c.Next()
	}
}

// LoadBuzz 从:buzzId路径参数加载Buzz及其套房关联。
// 回调URL中的ID是跨无状态请求的唯一关联键，加载失败按伪造/过期
// 处理返回401，而不是崩溃
func LoadBuzz(container *container.ServiceContainer) gin.HandlerFunc {
	return func(c *gin.Context) {
		buzzID, err := strconv.ParseUint(c.Param("buzzId"), 10, 32)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		buzzService := container.GetService("buzz").(services.InterfaceBuzzService)
		buzz, err := buzzService.GetBuzzByID(uint(buzzID))
		if err != nil {
			logger.Error("加载Buzz %d 失败: %v", buzzID, err)
			c.AbortWithStatus(401)
			return
		}

		c.Set(ContextBuzzKey, buzz)
		c.Next()
	}
}

// BuzzFromContext 取出LoadBuzz放入上下文的Buzz
func BuzzFromContext(c *gin.Context) (*models.Buzz, bool) {
	value, exists := c.Get(ContextBuzzKey)
	if !exists {
		return nil, false
	}
	buzz, ok := value.(*models.Buzz)
	return buzz, ok
}
