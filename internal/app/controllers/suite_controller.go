package controllers

import (
	"strconv"

	"dingdong-http-service/internal/error/code"
	"dingdong-http-service/internal/error/response"
	"dingdong-http-service/internal/domain/models"
	"dingdong-http-service/internal/domain/services"
	"dingdong-http-service/internal/domain/services/container"
	"dingdong-http-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// InterfaceSuiteController 定义套房/门禁控制器接口
type InterfaceSuiteController interface {
	CreateBuzzer()
	GetBuzzers()
	CreateSuite()
	GetSuites()
	GetSuite()
	GetSuiteBuzzes()
}

// SuiteController 管理门禁设备和套房的后台接口
type SuiteController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewSuiteController 创建一个新的套房控制器
func NewSuiteController(ctx *gin.Context, container *container.ServiceContainer) *SuiteController {
	return &SuiteController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateBuzzerRequest 创建门禁设备请求。电话号码在激活流程完成时绑定
type CreateBuzzerRequest struct {
	PlaceID string `json:"place_id" binding:"required" example:"ChIJs0-pQ_FzhlQRi_OBm-qWkbs"`
	Address string `json:"address" example:"1055 W Georgia St, Vancouver"`
	Country string `json:"country" example:"CA"`
}

// CreateSuiteRequest 创建套房请求
type CreateSuiteRequest struct {
	BuzzerID uint   `json:"buzzer_id" binding:"required" example:"1"`
	Unit     string `json:"unit" binding:"required" example:"701"`
}

// HandleSuiteFunc 返回一个处理套房/门禁请求的Gin处理函数
func HandleSuiteFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewSuiteController(ctx, container)

		switch method {
		case "createBuzzer":
			controller.CreateBuzzer()
		case "getBuzzers":
			controller.GetBuzzers()
		case "createSuite":
			controller.CreateSuite()
		case "getSuites":
			controller.GetSuites()
		case "getSuite":
			controller.GetSuite()
		case "getSuiteBuzzes":
			controller.GetSuiteBuzzes()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *SuiteController) suiteService() services.InterfaceSuiteService {
	return c.Container.GetService("suite").(services.InterfaceSuiteService)
}

// 1 CreateBuzzer 创建门禁设备
func (c *SuiteController) CreateBuzzer() {
	var req CreateBuzzerRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	buzzer := models.Buzzer{
		PlaceID: req.PlaceID,
		Address: req.Address,
		Country: req.Country,
	}
	if err := c.suiteService().CreateBuzzer(&buzzer); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "创建门禁设备失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, buzzer)
}

// 2 GetBuzzers 分页获取门禁设备列表
func (c *SuiteController) GetBuzzers() {
	var pagination models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&pagination); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}
	pagination.Normalize()

	buzzers, total, err := c.suiteService().GetAllBuzzers(pagination.Page, pagination.PageSize)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询门禁列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"buzzers":   buzzers,
		"total":     total,
		"page":      pagination.Page,
		"page_size": pagination.PageSize,
	})
}

// 3 CreateSuite 在指定门禁下创建套房，返回的激活码只在此时下发一次
func (c *SuiteController) CreateSuite() {
	var req CreateSuiteRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	suite, err := c.suiteService().CreateSuite(req.BuzzerID, req.Unit)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrNoAvailableLine, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, suite)
}

// 4 GetSuites 分页获取套房列表
func (c *SuiteController) GetSuites() {
	var pagination models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&pagination); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}
	pagination.Normalize()

	suites, total, err := c.suiteService().GetAllSuites(pagination.Page, pagination.PageSize)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询套房列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"suites":    suites,
		"total":     total,
		"page":      pagination.Page,
		"page_size": pagination.PageSize,
	})
}

// 5 GetSuite 根据ID获取套房详情及其住户关联
func (c *SuiteController) GetSuite() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}

	suite, err := c.suiteService().GetSuiteByID(uint(id))
	if err != nil {
		response.Fail(c.Ctx, code.ErrSuiteNotFound, nil)
		return
	}

	response.Success(c.Ctx, suite)
}

// 6 GetSuiteBuzzes 获取套房的呼叫历史。进行中呼叫的实时状态
// 来自Redis的状态回调缓存
func (c *SuiteController) GetSuiteBuzzes() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}

	var pagination models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&pagination); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}
	pagination.Normalize()

	buzzes, total, err := c.suiteService().GetSuiteBuzzes(uint(id), pagination.Page, pagination.PageSize)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询呼叫历史失败: "+err.Error(), nil)
		return
	}

	redisService := c.Container.GetService("redis").(services.InterfaceRedisService)
	items := make([]gin.H, 0, len(buzzes))
	for _, buzz := range buzzes {
		status, err := redisService.GetCallStatus(buzz.CallSid)
		if err != nil {
			logger.Warning("读取通话状态缓存失败 call_sid=%s: %v", buzz.CallSid, err)
		}
		items = append(items, gin.H{
			"buzz":        buzz,
			"call_status": status,
		})
	}

	response.Success(c.Ctx, gin.H{
		"buzzes":    items,
		"total":     total,
		"page":      pagination.Page,
		"page_size": pagination.PageSize,
	})
}
