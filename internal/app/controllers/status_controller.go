package controllers

import (
	"net/http"
	"time"

	"dingdong-http-service/internal/domain/services"
	"dingdong-http-service/internal/domain/services/container"
	"dingdong-http-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// InterfaceStatusController 定义通话状态回调控制器接口
type InterfaceStatusController interface {
	CallStatus()
}

// StatusController 处理Twilio通话状态回调。状态回调不保证顺序，
// 可能与语音回调交错到达，这里只做幂等的落库和缓存更新
type StatusController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewStatusController 创建通话状态控制器
func NewStatusController(ctx *gin.Context, container *container.ServiceContainer) *StatusController {
	return &StatusController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleStatusFunc 返回一个处理状态回调的Gin处理函数
func HandleStatusFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewStatusController(ctx, container)

		switch method {
		case "callStatus":
			controller.CallStatus()
		default:
			ctx.Status(http.StatusNotFound)
		}
	}
}

// 1. CallStatus 通话状态回调：所有状态写入Redis供查询接口使用，
// completed状态额外记录通话结束时间。同一CallSid的重复completed
// 回调采用后写覆盖
func (c *StatusController) CallStatus() {
	callSid := c.Ctx.PostForm("CallSid")
	callStatus := c.Ctx.PostForm("CallStatus")

	logger.Info("通话状态回调 call_sid=%s status=%s", callSid, callStatus)

	if callSid == "" {
		c.Ctx.Status(http.StatusOK)
		return
	}

	redisService := c.Container.GetService("redis").(services.InterfaceRedisService)
	if err := redisService.SetCallStatus(callSid, callStatus); err != nil {
		// 缓存失败不影响回调处理
		logger.Warning("写入通话状态缓存失败 call_sid=%s: %v", callSid, err)
	}

	if callStatus == "completed" {
		buzzService := c.Container.GetService("buzz").(services.InterfaceBuzzService)
		if err := buzzService.RecordCallEnd(callSid, time.Now()); err != nil {
			logger.Error("记录通话结束失败 call_sid=%s: %v", callSid, err)
			c.Ctx.Status(http.StatusInternalServerError)
			return
		}
	}

	c.Ctx.Status(http.StatusOK)
}
