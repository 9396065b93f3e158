package app

import (
	"context"
	"interview_coach_backend/internal/config"
	"interview_coach_backend/internal/controller"
	"interview_coach_backend/internal/repository"
	"interview_coach_backend/internal/service"
	"interview_coach_backend/pkg/database"
	"interview_coach_backend/pkg/logger"
	"interview_coach_backend/pkg/monitoring"
	"interview_coach_backend/pkg/security"
	"interview_coach_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	configMu sync.RWMutex
}

type repositories struct {
	session *repository.SessionRepository
	bank    *repository.BankRepository
	coding  *repository.CodingRepository
}

type services struct {
	ai         *service.AIService
	bank       *service.QuestionBankService
	interview  *service.InterviewService
	sandbox    *service.SandboxService
	coding     *service.CodingService
	evaluation *service.EvaluationService
}

type controllers struct {
	interview  *controller.InterviewController
	coding     *controller.CodingController
	evaluation *controller.EvaluationController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		session: repository.NewSessionRepository(db),
		bank:    repository.NewBankRepository(db),
		coding:  repository.NewCodingRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)
	s.bank = service.NewQuestionBankService(repos.bank, rdb)
	s.interview = service.NewInterviewService(repos.session, s.bank, s.ai)
	s.sandbox = service.NewSandboxService(cfg.Sandbox)
	s.coding = service.NewCodingService(repos.coding, s.sandbox, s.ai)
	s.evaluation = service.NewEvaluationService(s.interview, s.ai)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		interview:  controller.NewInterviewController(s.interview, s.bank),
		coding:     controller.NewCodingController(s.coding),
		evaluation: controller.NewEvaluationController(s.evaluation),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	// 认证中间件从上下文取配置
	router.Use(func(c *gin.Context) {
		a.configMu.RLock()
		c.Set("config", a.Config)
		a.configMu.RUnlock()
		c.Next()
	})

	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 120
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

// ReloadConfig 配置热更新回调，替换运行期可安全变更的部分
func (a *App) ReloadConfig(newCfg *config.Config) {
	a.configMu.Lock()
	a.Config.JWT = newCfg.JWT
	a.Config.AI = newCfg.AI
	a.Config.Sandbox = newCfg.Sandbox
	a.Config.CORS = newCfg.CORS
	a.Config.RateLimit = newCfg.RateLimit
	a.configMu.Unlock()
	logger.Log.Info("Config reloaded")
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
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("interview-coach", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	app.registerRoutes(router, controllers)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
