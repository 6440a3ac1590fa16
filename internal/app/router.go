package app

import (
	"compliance_edu_backend/docs"
	"compliance_edu_backend/internal/config"
	"compliance_edu_backend/internal/middleware"
	"compliance_edu_backend/internal/model"

	"compliance_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerEmployeeRoutes(authGroup, c)

		// 合规专员 + 管理员
		officer := authGroup.Group("")
		officer.Use(middleware.RoleMiddleware(model.ComplianceOfficer))
		{
			officer.GET("/reports/compliance", c.report.Compliance)
		}
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerEmployeeRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.user.GetProfile)
	rg.PUT("/profile", c.user.UpdateProfile)
	rg.GET("/navigation", c.user.Navigation)
	rg.GET("/dashboard", c.report.EmployeeDashboard)

	// 培训模块
	rg.GET("/modules", c.module.List)
	rg.GET("/modules/:id", c.module.Get)
	rg.GET("/modules/:id/progress", c.module.GetProgress)
	rg.PUT("/modules/:id/progress", c.module.UpdateProgress)
	rg.GET("/progress", c.module.MyProgress)

	// 情景模拟
	rg.GET("/scenarios", c.scenario.List)
	rg.GET("/scenarios/:id", c.scenario.Get)
	rg.POST("/scenarios/:id/sessions", c.scenario.StartSession)
	rg.GET("/scenario-sessions/:sessionId", c.scenario.GetSession)
	rg.POST("/scenario-sessions/:sessionId/choose", c.scenario.Choose)
	rg.POST("/scenario-sessions/:sessionId/restart", c.scenario.Restart)

	// 测评
	rg.GET("/assessments", c.assessment.List)
	rg.GET("/assessments/:id", c.assessment.Get)
	rg.POST("/assessments/:id/sessions", c.assessment.StartSession)
	rg.GET("/quiz-sessions/:sessionId", c.assessment.GetSession)
	rg.PUT("/quiz-sessions/:sessionId/answers", c.assessment.Answer)
	rg.POST("/quiz-sessions/:sessionId/next", c.assessment.Next)
	rg.POST("/quiz-sessions/:sessionId/prev", c.assessment.Prev)
	rg.POST("/quiz-sessions/:sessionId/submit", c.assessment.Submit)
	rg.GET("/attempts", c.assessment.MyAttempts)
	rg.GET("/attempts/:id/review", c.assessment.Review)

	// 证书
	rg.GET("/certificates", c.certificate.List)
	rg.GET("/certificates/:id", c.certificate.Get)
	rg.GET("/certificates/:id/document", c.certificate.Document)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg))

	// 内容维护：合规专员和管理员
	content := admin.Group("")
	content.Use(middleware.RoleMiddleware(model.ComplianceOfficer))
	{
		content.POST("/modules", c.module.Create)
		content.PUT("/modules/:id", c.module.Update)
		content.DELETE("/modules/:id", c.module.Delete)

		content.POST("/scenarios", c.scenario.Create)
		content.DELETE("/scenarios/:id", c.scenario.Delete)

		content.POST("/assessments", c.assessment.Create)
		content.DELETE("/assessments/:id", c.assessment.Delete)
	}

	adminOnly := admin.Group("")
	adminOnly.Use(middleware.RoleMiddleware(model.Admin))
	{
		adminOnly.GET("/dashboard", c.report.AdminDashboard)
		adminOnly.GET("/audit-logs", c.report.AuditLogs)
		adminOnly.GET("/users", c.user.ListUsers)
		adminOnly.PUT("/users/:id/role", c.user.SetRole)
	}
}
