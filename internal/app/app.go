package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hse_training_backend/internal/config"
	"hse_training_backend/internal/controller"
	"hse_training_backend/internal/repository"
	"hse_training_backend/internal/service"
	"hse_training_backend/pkg/configwatcher"
	"hse_training_backend/pkg/database"
	"hse_training_backend/pkg/logger"
	"hse_training_backend/pkg/monitoring"
	"hse_training_backend/pkg/offline"
	"hse_training_backend/pkg/security"
	"hse_training_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	alertRunner     *service.AlertRunner
	configCallbacks []func(*config.Config)
}

type repositories struct {
	employee      *repository.EmployeeRepository
	training      *repository.TrainingRepository
	progress      *repository.ProgressRepository
	assessment    *repository.AssessmentRepository
	certification *repository.CertificationRepository
	alert         *repository.AlertRepository
	equipment     *repository.EquipmentRepository
}

type services struct {
	auth          *service.AuthService
	employee      *service.EmployeeService
	storage       *service.StorageService
	persist       *service.PersistService
	training      *service.TrainingService
	assessment    *service.AssessmentService
	certification *service.CertificationService
	compliance    *service.ComplianceService
	alert         *service.AlertService
	equipment     *service.EquipmentService
}

type controllers struct {
	auth          *controller.AuthController
	employee      *controller.EmployeeController
	training      *controller.TrainingController
	assessment    *controller.AssessmentController
	certification *controller.CertificationController
	compliance    *controller.ComplianceController
	alert         *controller.AlertController
	equipment     *controller.EquipmentController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		employee:      repository.NewEmployeeRepository(db),
		training:      repository.NewTrainingRepository(db),
		progress:      repository.NewProgressRepository(db),
		assessment:    repository.NewAssessmentRepository(db),
		certification: repository.NewCertificationRepository(db),
		alert:         repository.NewAlertRepository(db),
		equipment:     repository.NewEquipmentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.employee, cfg)
	s.employee = service.NewEmployeeService(repos.employee)

	// 远程写超时后降级到 redis 离线存储
	s.persist = service.NewPersistService(offline.NewRedisStore(rdb), cfg.Remote.WriteTimeout())

	s.training = service.NewTrainingService(repos.training, repos.progress, s.persist)
	s.assessment = service.NewAssessmentService(repos.assessment, s.persist)
	s.certification = service.NewCertificationService(repos.certification, s.persist)
	s.compliance = service.NewComplianceService(repos.employee, repos.training, s.training)
	s.alert = service.NewAlertService(repos.alert, repos.employee, repos.equipment, s.compliance, s.certification)
	s.equipment = service.NewEquipmentService(repos.equipment)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth),
		employee:      controller.NewEmployeeController(s.employee),
		training:      controller.NewTrainingController(s.training),
		assessment:    controller.NewAssessmentController(s.assessment),
		certification: controller.NewCertificationController(s.certification, s.storage),
		compliance:    controller.NewComplianceController(s.compliance),
		alert:         controller.NewAlertController(s.alert),
		equipment:     controller.NewEquipmentController(s.equipment),
		health:        controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("hse-training-platform", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 后台告警重算循环
	app.alertRunner = service.NewAlertRunner(services.alert, cfg.Alerts.RecomputeInterval())
	app.alertRunner.Start()

	// 配置热更新
	go configwatcher.WatchConfig("configs/config.yaml", func(reloaded *config.Config) {
		logger.Log.Info("config reloaded")
		for _, callback := range app.configCallbacks {
			callback(reloaded)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 停掉后台循环与进行中的倒计时
	if a.alertRunner != nil {
		a.alertRunner.Stop()
	}
	if a.services != nil && a.services.assessment != nil {
		a.services.assessment.StopAllCountdowns()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
