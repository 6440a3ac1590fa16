package app

import (
	"compliance_edu_backend/internal/config"
	"compliance_edu_backend/internal/controller"
	"compliance_edu_backend/internal/repository"
	"compliance_edu_backend/internal/service"
	"compliance_edu_backend/pkg/configwatcher"
	"compliance_edu_backend/pkg/database"
	"compliance_edu_backend/pkg/logger"
	"compliance_edu_backend/pkg/monitoring"
	"compliance_edu_backend/pkg/security"
	"compliance_edu_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	limiter         *security.Limiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user        *repository.UserRepository
	module      *repository.ModuleRepository
	progress    *repository.ProgressRepository
	scenario    *repository.ScenarioRepository
	assessment  *repository.AssessmentRepository
	attempt     *repository.AttemptRepository
	certificate *repository.CertificateRepository
	audit       *repository.AuditRepository
	session     *repository.SessionRepository
}

type services struct {
	audit       *service.AuditService
	storage     *service.StorageService
	auth        *service.AuthService
	user        *service.UserService
	module      *service.ModuleService
	scenario    *service.ScenarioService
	certificate *service.CertificateService
	assessment  *service.AssessmentService
	report      *service.ReportService
	dashboard   *service.DashboardService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	module      *controller.ModuleController
	scenario    *controller.ScenarioController
	assessment  *controller.AssessmentController
	certificate *controller.CertificateController
	report      *controller.ReportController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:        repository.NewUserRepository(db),
		module:      repository.NewModuleRepository(db),
		progress:    repository.NewProgressRepository(db),
		scenario:    repository.NewScenarioRepository(db),
		assessment:  repository.NewAssessmentRepository(db),
		attempt:     repository.NewAttemptRepository(db),
		certificate: repository.NewCertificateRepository(db),
		audit:       repository.NewAuditRepository(db),
		session:     repository.NewSessionRepository(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.audit = service.NewAuditService(repos.audit)
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, s.audit, cfg)
	s.user = service.NewUserService(repos.user, s.audit)
	s.module = service.NewModuleService(repos.module, repos.progress, s.audit)
	s.scenario = service.NewScenarioService(repos.scenario, repos.session, s.audit, cfg.Session.TTL)
	s.certificate = service.NewCertificateService(repos.certificate, repos.user, s.storage, s.audit, cfg.Certificate)
	s.assessment = service.NewAssessmentService(
		repos.assessment,
		repos.module,
		repos.attempt,
		repos.session,
		s.certificate,
		s.audit,
		cfg,
	)
	s.report = service.NewReportService(repos.attempt, repos.certificate)
	s.dashboard = service.NewDashboardService(
		repos.module,
		repos.progress,
		repos.certificate,
		repos.attempt,
		repos.user,
		repos.scenario,
	)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.user),
		module:      controller.NewModuleController(s.module),
		scenario:    controller.NewScenarioController(s.scenario),
		assessment:  controller.NewAssessmentController(s.assessment),
		certificate: controller.NewCertificateController(s.certificate),
		report:      controller.NewReportController(s.report, s.dashboard, s.audit),
		health:      controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewLimiter(cfg.RateLimit.MaxRequests, rateWindow(cfg))
	router.Use(a.limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func rateWindow(cfg *config.Config) time.Duration {
	return time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
}

// startBackgroundTasks 定时补发证书，ctx 取消后退出
func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	interval := a.Config.Certificate.ReconcileInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.certificate.Reconcile(ctx); err != nil && ctx.Err() == nil {
					logger.Log.Error("certificate reconcile error", zap.Error(err))
				}
			}
		}
	}()
}

func (a *App) watchConfig(ctx context.Context) {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetMode(cfg.Server.Mode)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.limiter.SetLimit(cfg.RateLimit.MaxRequests, rateWindow(cfg))
	})

	file := filepath.Join(a.ConfigDir, "config.yaml")
	go func() {
		err := configwatcher.WatchConfig(ctx, file, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
			logger.Log.Info("Config reloaded",
				zap.String("mode", cfg.Server.Mode),
				zap.Int("rate_limit", cfg.RateLimit.MaxRequests),
			)
		})
		if err != nil {
			logger.Log.Warn("config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
	}

	// 只迁移时不需要 Redis 和路由
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	a.startBackgroundTasks(ctx, a.services)
	a.watchConfig(ctx)

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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
