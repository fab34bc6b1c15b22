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

// InterfacePersonController 定义住户控制器接口
type InterfacePersonController interface {
	GetPersons()
	GetPerson()
	CreatePerson()
	UpsertPerson()
	AssociateToSuite()
}

// PersonController 管理住户及其套房关联的后台接口
type PersonController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPersonController 创建一个新的住户控制器
func NewPersonController(ctx *gin.Context, container *container.ServiceContainer) *PersonController {
	return &PersonController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreatePersonRequest 创建住户请求
type CreatePersonRequest struct {
	FirstName   string `json:"first_name" example:"Jane"`
	LastName    string `json:"last_name" example:"Smith"`
	Nickname    string `json:"nickname" example:"JJ"`
	PhoneNumber string `json:"phone_number" example:"+16045550188"`
}

// UpsertPersonRequest 按电话号码登记住户请求
type UpsertPersonRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required" example:"+16045550188"`
}

// AssociateRequest 住户-套房关联请求
type AssociateRequest struct {
	SuiteID    uint   `json:"suite_id" binding:"required" example:"1"`
	Role       string `json:"role" binding:"required" example:"owner"`
	UnlockCode string `json:"unlock_code" example:"2468"`
}

// HandlePersonFunc 返回一个处理住户请求的Gin处理函数
func HandlePersonFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPersonController(ctx, container)

		switch method {
		case "getPersons":
			controller.GetPersons()
		case "getPerson":
			controller.GetPerson()
		case "createPerson":
			controller.CreatePerson()
		case "upsertPerson":
			controller.UpsertPerson()
		case "associateToSuite":
			controller.AssociateToSuite()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *PersonController) personService() services.InterfacePersonService {
	return c.Container.GetService("person").(services.InterfacePersonService)
}

// 1 GetPersons 分页获取住户列表，支持按姓名/号码搜索
func (c *PersonController) GetPersons() {
	var pagination models.PaginationQuery
	if err := c.Ctx.ShouldBindQuery(&pagination); err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}
	pagination.Normalize()
	search := c.Ctx.Query("search")

	persons, total, err := c.personService().GetAllPersons(pagination.Page, pagination.PageSize, search)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "查询住户列表失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"persons":   persons,
		"total":     total,
		"page":      pagination.Page,
		"page_size": pagination.PageSize,
	})
}

// 2 GetPerson 根据ID获取住户及其套房关联
func (c *PersonController) GetPerson() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}

	person, err := c.personService().GetPersonByID(uint(id))
	if err != nil {
		response.Fail(c.Ctx, code.ErrPersonNotFound, nil)
		return
	}

	response.Success(c.Ctx, person)
}

// 3 CreatePerson 创建新住户
func (c *PersonController) CreatePerson() {
	var req CreatePersonRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	person := models.Person{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Nickname:  req.Nickname,
	}
	if req.PhoneNumber != "" {
		person.PhoneNumber = &req.PhoneNumber
	}

	if err := c.personService().CreatePerson(&person); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrPersonAlreadyExist, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, person)
}

// 4 UpsertPerson 按电话号码登记住户，已存在则直接返回。
// 新建时尝试通过号码归属查询预填充姓名
func (c *PersonController) UpsertPerson() {
	var req UpsertPersonRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	person, err := c.personService().UpsertPersonByPhone(req.PhoneNumber)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "登记住户失败: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, person)
}

// 5 AssociateToSuite 把住户关联到套房
func (c *PersonController) AssociateToSuite() {
	id, err := strconv.ParseUint(c.Ctx.Param("id"), 10, 32)
	if err != nil {
		response.ParamError(c.Ctx, "无效的请求参数")
		return
	}

	var req AssociateRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数", nil)
		return
	}

	role := models.PersonSuiteRole(req.Role)
	if role != models.RoleOwner && role != models.RoleResident && role != models.RoleVisitor {
		response.FailWithMessage(c.Ctx, code.ErrValidation, "无效的角色", nil)
		return
	}

	ps, err := c.personService().AssociateToSuite(uint(id), req.SuiteID, role, req.UnlockCode)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrPersonSuiteExists, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, ps)
}
