package controllers

import (
	"strconv"

	"dingdong-http-service/internal/error/code"
	"dingdong-http-service/internal/error/response"
	"dingdong-http-service/internal/domain/models"
	"dingdong-http-service/internal/domain/services"
	"dingdong-http-service/internal/domain/services/container"

	"github.com/gin-gonic/gin"
)

// InterfaceLineController 定义线路控制器接口
type InterfaceLineController interface {
	GetLines()
	GetLine()
	CreateLine()
	DeleteLine()
}

// LineController 管理Twilio线路号码池
type LineController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewLineController 创建一个新的线路控制器
func NewLineController(ctx *gin.Context, container *container.ServiceContainer) *LineController {
	return &LineController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateLineRequest 创建线路请求
type CreateLineRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required" example:"+16045550123"`
	Country     string `json:"country" example:"CA"`
}

// HandleLineFunc 返回一个处理线路请求的Gin处理函数
func HandleLineFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewLineController(ctx, container)

		switch method {
		case "getLines":
			controller.GetLines()
		case "getLine":
			controller.GetLine()
		case "createLine":
			controller.CreateLine()
		case "deleteLine":
			controller.DeleteLine()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *LineController) lineService() services.InterfaceLineService {
	return c.Container.GetService("line").(services.InterfaceLineService)
}

// 1 GetLines 分页获取线路列表
func (c *LineController) GetLines() {
	var pagination models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&pagination); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}
	pagination.Normalize()

	lines, total, err := c.lineService().GetAllLines(pagination.Page, pagination.PageSize)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询线路列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"lines":     lines,
		"total":     total,
		"page":      pagination.Page,
		"page_size": pagination.PageSize,
	})
}

// 2 GetLine 根据ID获取线路
func (c *LineController) GetLine() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}

	line, err := c.lineService().GetLineByID(uint(id))
	if err != nil {
		response.Fail(c.Ctx, code.ErrLineNotFound, nil)
		return
	}

	response.Success(c.Ctx, line)
}

// 3 CreateLine 登记一个已购买的Twilio号码
func (c *LineController) CreateLine() {
	var req CreateLineRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	line := models.Line{
		PhoneNumber: req.PhoneNumber,
		Country:     req.Country,
	}
	if err := c.lineService().CreateLine(&line); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrLineAlreadyExist, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, line)
}

// 4 DeleteLine 删除线路，仍被套房引用时拒绝
func (c *LineController) DeleteLine() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}

	if err := c.lineService().DeleteLine(uint(id)); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}
