package app

import (
	"hse_training_backend/docs"
	"hse_training_backend/internal/config"
	"hse_training_backend/internal/middleware"
	"hse_training_backend/internal/model"
	"hse_training_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.employee))
	{
		a.registerEmployeeRoutes(authGroup, c)
		a.registerManagerRoutes(authGroup, c)
	}
}

// registerEmployeeRoutes 普通员工可用的接口
func (a *App) registerEmployeeRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/me", c.auth.Me)
	group.PUT("/profile", c.employee.UpdateProfile)

	// 培训目录与进度
	group.GET("/training/modules", c.training.ListModules)
	group.GET("/training/modules/:id", c.training.GetModule)
	group.GET("/training/progress", c.training.MyProgress)
	group.POST("/training/modules/:id/start", c.training.Start)
	group.POST("/training/modules/:id/contents/:contentId/complete", c.training.CompleteContentModule)
	group.POST("/training/modules/:id/results", c.training.RecordAssessmentResult)
	group.POST("/training/modules/:id/complete", c.training.CompleteTraining)

	// 测评作答
	group.GET("/assessments/:id", c.assessment.Get)
	group.POST("/submissions/:id/start", c.assessment.StartAttempt)
	group.PUT("/submissions/:id/answers", c.assessment.SaveAnswers)
	group.POST("/submissions/:id/submit", c.assessment.Submit)

	// 认证路径（只读 + 本人阶段操作）
	group.GET("/certification/paths", c.certification.ListPaths)
	group.GET("/certification/progress/:id", c.certification.GetProgress)
	group.GET("/certification/candidates/:candidateId/progress", c.certification.CandidateProgress)
	group.POST("/certification/progress/:id/start-training", c.certification.StartTraining)
	group.POST("/certification/progress/:id/complete-training", c.certification.CompleteTraining)
	group.POST("/certification/progress/:id/start-evaluation", c.certification.StartEvaluation)
	group.POST("/certification/progress/:id/submit-evaluation", c.certification.SubmitEvaluation)

	group.GET("/compliance/me", c.compliance.MyCompliance)
}

// registerManagerRoutes HSE 负责人与管理员接口
func (a *App) registerManagerRoutes(group *gin.RouterGroup, c *controllers) {
	manager := group.Group("/manager")
	manager.Use(middleware.RoleMiddleware(model.RoleManager))
	{
		// 员工管理
		manager.GET("/employees", c.employee.List)
		manager.GET("/employees/services", c.employee.ListServices)
		manager.GET("/employees/:id", c.employee.Get)
		manager.PUT("/employees/:id/assignment", c.employee.UpdateAssignment)

		// 培训目录维护与进度管理
		manager.POST("/training/modules", c.training.CreateModule)
		manager.POST("/training/modules/:id/contents", c.training.AddContentModule)
		manager.GET("/training/progress/:employeeId", c.training.EmployeeProgress)
		manager.POST("/training/progress/:employeeId/:id/reset", c.training.Reset)

		// 测评管理
		manager.POST("/assessments", c.assessment.Create)
		manager.GET("/assessments", c.assessment.List)
		manager.POST("/assessments/:id/publish", c.assessment.Publish)
		manager.POST("/assessments/:id/questions", c.assessment.AddQuestion)
		manager.POST("/assessments/:id/assign", c.assessment.Assign)
		manager.POST("/submissions/:id/correct", c.assessment.Correct)
		manager.GET("/candidates/:candidateId/submissions", c.assessment.CandidateSubmissions)

		// 认证路径
		manager.POST("/certification/paths", c.certification.CreatePath)
		manager.POST("/certification/paths/:id/assign", c.certification.Assign)
		manager.POST("/certification/paths/:id/bulk-assign", c.certification.BulkAssign)
		manager.POST("/certification/progress/:id/complete-evaluation", c.certification.CompleteEvaluation)
		manager.POST("/certification/progress/:id/certificate", c.certification.UploadCertificate)

		// 合规
		manager.GET("/compliance/overview", c.compliance.Overview)
		manager.GET("/compliance/actions", c.compliance.RequiringAction)
		manager.GET("/compliance/employees/:employeeId", c.compliance.EmployeeCompliance)
		manager.GET("/compliance/services/:service", c.compliance.ServiceCompliance)
		manager.GET("/compliance/roles/:role", c.compliance.RoleCompliance)

		// 告警
		manager.GET("/alerts", c.alert.List)
		manager.POST("/alerts/:id/read", c.alert.MarkRead)
		manager.POST("/alerts/read-all", c.alert.MarkAllRead)
		manager.POST("/alerts/recompute", c.alert.Recompute)

		// 设备检查
		manager.POST("/equipment", c.equipment.Create)
		manager.GET("/equipment", c.equipment.List)
		manager.POST("/equipment/:id/check", c.equipment.RecordCheck)
		manager.DELETE("/equipment/:id", c.equipment.Delete)
	}
}
