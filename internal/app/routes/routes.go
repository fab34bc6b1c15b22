package routes

import (
	"time"

	"dingdong-http-service/internal/app/controllers"
	"dingdong-http-service/internal/app/middleware"
	"dingdong-http-service/internal/domain/services/container"
	"dingdong-http-service/internal/infrastructure/config"
	"dingdong-http-service/internal/infrastructure/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(db *gorm.DB, cfg *config.Config, pool *database.ConnectionPool) *gin.Engine {
	// 初始化 Gin
	r := gin.Default()

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
	// 创建服务容器
	serviceContainer := container.NewServiceContainer(db, cfg)
	// 初始化中间件
	middleware.InitAuthMiddleware(cfg, db)

	// 注册路由
	registerRoutes(r, serviceContainer, cfg, pool)
	return r
}

// registerRoutes 配置所有路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
	cfg *config.Config,
	pool *database.ConnectionPool,
) {
	// Twilio webhook路由（语音状态机 + 通话状态回调）
	registerVoiceRoutes(r, container, cfg)

	// API 路由根路径
	api := r.Group("/api")
	// 注册公共路由
	registerPublicRoutes(api, container, pool)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerVoiceRoutes 注册Twilio回调路由。
// 所有回调先过签名校验，语音回调统一输出TwiML
func registerVoiceRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
	cfg *config.Config,
) {
	voice := r.Group("/voice")
	voice.Use(middleware.TwilioSignature(cfg))
	voice.Use(middleware.TwiML())

	// 呼叫入口
	voice.POST("", controllers.HandleVoiceFunc(container, "entry"))

	// 激活流程。入口的302重定向按GET到达，
	// TwiML的Redirect动词按POST到达，两种都要接
	voice.GET("/activate-suite", controllers.HandleVoiceFunc(container, "activate"))
	voice.POST("/activate-suite", controllers.HandleVoiceFunc(container, "activate"))
	voice.POST("/activate-suite/callback", controllers.HandleVoiceFunc(container, "activateCallback"))

	// 呼叫会话路由，:buzzId是跨回调的关联键
	buzzGroup := voice.Group("/buzz/:buzzId")
	buzzGroup.Use(middleware.LoadBuzz(container))
	buzzGroup.POST("/unlock", controllers.HandleVoiceFunc(container, "unlock"))
	buzzGroup.POST("/speach", controllers.HandleVoiceFunc(container, "partialSpeech"))
	buzzGroup.POST("/dial", controllers.HandleVoiceFunc(container, "dial"))
	buzzGroup.POST("/join", controllers.HandleVoiceFunc(container, "join"))

	// 通话状态回调（非TwiML响应）
	status := r.Group("/status")
	status.Use(middleware.TwilioSignature(cfg))
	status.POST("", controllers.HandleStatusFunc(container, "callStatus"))
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
	pool *database.ConnectionPool,
) {
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	api.Use(middleware.IPRateLimiter(10, 20))

	healthController := controllers.NewHealthCheckController(container, pool)

	// 健康检查路由
	api.GET("/ping", healthController.Ping)
	api.GET("/health", healthController.Ping) // 兼容Docker健康检查的路由

	// 健康状态路由组
	healthGroup := api.Group("/health")
	healthGroup.GET("/status", healthController.Status)

	// 认证路由
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.PathRateLimiter(5, 10)) // 每秒5个请求，最多突发10个
	authGroup.POST("/login", controllers.HandleJWTFunc(container, "login"))
}

// registerAuthenticatedRoutes 注册需要认证的后台管理路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加认证中间件
	auth := api.Group("/")
	auth.Use(middleware.AuthenticateAdmin())

	// 添加通用限流中间件 - 每秒30个请求，最多突发50个请求
	auth.Use(middleware.IPRateLimiter(30, 50))

	// 线路路由
	lineGroup := auth.Group("/lines")
	lineGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleLineFunc(container, "getLines"))
	lineGroup.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleLineFunc(container, "getLine"))
	lineGroup.POST("", controllers.HandleLineFunc(container, "createLine"))
	lineGroup.DELETE("/:id", controllers.HandleLineFunc(container, "deleteLine"))

	// 门禁设备路由
	buzzerGroup := auth.Group("/buzzers")
	buzzerGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleSuiteFunc(container, "getBuzzers"))
	buzzerGroup.POST("", controllers.HandleSuiteFunc(container, "createBuzzer"))

	// 套房路由
	suiteGroup := auth.Group("/suites")
	suiteGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleSuiteFunc(container, "getSuites"))
	suiteGroup.GET("/:id", controllers.HandleSuiteFunc(container, "getSuite"))
	suiteGroup.POST("", controllers.HandleSuiteFunc(container, "createSuite"))
	suiteGroup.GET("/:id/buzzes", middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Second}), controllers.HandleSuiteFunc(container, "getSuiteBuzzes"))

	// 住户路由
	personGroup := auth.Group("/persons")
	personGroup.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandlePersonFunc(container, "getPersons"))
	personGroup.GET("/:id", controllers.HandlePersonFunc(container, "getPerson"))
	personGroup.POST("", controllers.HandlePersonFunc(container, "createPerson"))
	personGroup.POST("/upsert", controllers.HandlePersonFunc(container, "upsertPerson"))
	personGroup.POST("/:id/suites", controllers.HandlePersonFunc(container, "associateToSuite"))
}
