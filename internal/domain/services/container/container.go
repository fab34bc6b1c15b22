package container

import (
	"sync"

	"dingdong-http-service/internal/domain/services"
	"dingdong-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// ServiceContainer 管理所有服务的依赖注入。
// 所有客户端（数据库、Twilio、Redis）在进程入口构造一次并复用，
// 不使用包级可变单例
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config

	// 基础服务
	jwtService   services.InterfaceJWTService
	redisService services.InterfaceRedisService

	// Twilio REST服务
	twilioService services.InterfaceTwilioService

	// 业务服务
	buzzService   services.InterfaceBuzzService
	lineService   services.InterfaceLineService
	suiteService  services.InterfaceSuiteService
	personService services.InterfacePersonService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config, c.db)
	c.redisService = services.NewRedisService(c.config)

	// 初始化Twilio服务
	c.twilioService = services.NewTwilioService(c.config)

	// 初始化业务服务
	c.buzzService = services.NewBuzzService(c.db, c.config)
	c.lineService = services.NewLineService(c.db, c.config)
	c.suiteService = services.NewSuiteService(c.db, c.config, c.buzzService)
	c.personService = services.NewPersonService(c.db, c.config, c.twilioService)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "twilio":
		return c.twilioService
	case "buzz":
		return c.buzzService
	case "line":
		return c.lineService
	case "suite":
		return c.suiteService
	case "person":
		return c.personService
	default:
		return nil
	}
}

// SetService 覆盖指定名称的服务，测试中注入替身使用
func (c *ServiceContainer) SetService(name string, svc interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case "jwt":
		c.jwtService = svc.(services.InterfaceJWTService)
	case "redis":
		c.redisService = svc.(services.InterfaceRedisService)
	case "twilio":
		c.twilioService = svc.(services.InterfaceTwilioService)
	case "buzz":
		c.buzzService = svc.(services.InterfaceBuzzService)
	case "line":
		c.lineService = svc.(services.InterfaceLineService)
	case "suite":
		c.suiteService = svc.(services.InterfaceSuiteService)
	case "person":
		c.personService = svc.(services.InterfacePersonService)
	}
}
