package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"quiz_adaptive_backend/internal/config"
	"quiz_adaptive_backend/internal/controller"
	"quiz_adaptive_backend/internal/recommend"
	"quiz_adaptive_backend/internal/repository"
	"quiz_adaptive_backend/internal/service"
	"quiz_adaptive_backend/internal/util"
	"quiz_adaptive_backend/pkg/configwatcher"
	"quiz_adaptive_backend/pkg/database"
	"quiz_adaptive_backend/pkg/logger"
	"quiz_adaptive_backend/pkg/monitoring"
	"quiz_adaptive_backend/pkg/security"
	"quiz_adaptive_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const taxonomyRefreshInterval = time.Minute

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
	tracerProvider  *sdktrace.TracerProvider
	memoryCache     *recommend.MemoryCache
	cancel          context.CancelFunc
}

type repositories struct {
	user         *repository.UserRepository
	answer       *repository.AnswerRepository
	taxonomy     *repository.TaxonomyRepository
	profileCache *repository.ProfileCacheRepository
	tipsCache    *repository.StudyTipsCacheRepository
}

type services struct {
	auth           *service.AuthService
	answer         *service.AnswerService
	recommendation *service.RecommendationService
	taxonomy       *service.TaxonomyService
	studyTips      *service.StudyTipsService
}

type controllers struct {
	auth           *controller.AuthController
	answer         *controller.AnswerController
	recommendation *controller.RecommendationController
	taxonomy       *controller.TaxonomyController
	health         *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		logger.Log.Error("Reloaded config rejected", zap.Error(err))
		return
	}
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	repos := &repositories{
		user:     repository.NewUserRepository(db),
		answer:   repository.NewAnswerRepository(db),
		taxonomy: repository.NewTaxonomyRepository(db),
	}
	if rdb != nil {
		repos.profileCache = repository.NewProfileCacheRepository(rdb, cfg.Recommendation.CacheTTL)
		repos.tipsCache = repository.NewStudyTipsCacheRepository(rdb)
	}
	return repos
}

// profileCache 按配置选择画像缓存，TTL 为 0 时不缓存
func (a *App) profileCache(repos *repositories, cfg *config.Config) recommend.ProfileCache {
	if cfg.Recommendation.CacheTTL <= 0 {
		return nil
	}
	if cfg.Recommendation.CacheBackend == "memory" || repos.profileCache == nil {
		a.memoryCache = recommend.NewMemoryCache(cfg.Recommendation.CacheTTL)
		return a.memoryCache
	}
	return repos.profileCache
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)

	s.taxonomy = service.NewTaxonomyService(repos.taxonomy, cfg.Recommendation.Taxonomy)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := s.taxonomy.Refresh(ctx); err != nil {
		// 数据库覆盖项加载失败时先用配置文件里的分类
		logger.Log.Warn("Failed to load taxonomy overrides", zap.Error(err))
	}
	cancel()

	s.recommendation = service.NewRecommendationService(repos.answer, s.taxonomy.Taxonomy(), a.profileCache(repos, cfg), cfg)
	s.answer = service.NewAnswerService(repos.answer, s.recommendation)

	var generator service.TipsGenerator
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		generator = service.NewOpenAITipsGenerator(cfg.AI)
	} else if cfg.AI.Enabled {
		logger.Log.Warn("AI study tips enabled without api key, using default tips")
	}
	var tipsCache service.TipsCache
	if repos.tipsCache != nil {
		tipsCache = repos.tipsCache
	}
	s.studyTips = service.NewStudyTipsService(s.recommendation, s.taxonomy.Taxonomy(), generator, tipsCache, cfg.AI)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:           controller.NewAuthController(s.auth),
		answer:         controller.NewAnswerController(s.answer),
		recommendation: controller.NewRecommendationController(s.recommendation, s.studyTips),
		taxonomy:       controller.NewTaxonomyController(s.taxonomy),
		health:         controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(ctx context.Context, s *services) {
	// 其他实例写入的分类覆盖项定期同步
	go func() {
		ticker := time.NewTicker(taxonomyRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.taxonomy.Refresh(ctx); err != nil {
					logger.Log.Error("taxonomy refresh error", zap.Error(err))
				}
				if a.memoryCache != nil {
					a.memoryCache.Purge()
				}
			}
		}
	}()

	go func() {
		dir := a.Config.ConfigDir
		if dir == "" {
			dir = "configs"
		}
		path := filepath.Join(dir, "config.yaml")
		if err := configwatcher.WatchConfig(ctx, path, nil, a.applyConfig); err != nil {
			logger.Log.Error("config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
		logger.Log.Info("Database migrated")
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	// memory 模式下不依赖 Redis，学习建议也不缓存
	var rdb *redis.Client
	if cfg.Recommendation.CacheBackend != "memory" {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
			log.Fatalf("Failed to initialize redis: %v", err)
		}
	}
	app.Redis = rdb

	if err := util.RegisterValidators(); err != nil {
		logger.Log.Fatal("Failed to register validators", zap.Error(err))
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, cfg)

	// 热更新只影响分类种子，其余配置需要重启
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.taxonomy.ReloadStatic(newCfg.Recommendation.Taxonomy)
		logger.Log.Info("Taxonomy seeds reloaded", zap.Int("categories", len(newCfg.Recommendation.Taxonomy)))
	})

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.startBackgroundTasks(ctx, services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// 停止后台任务和配置监听
	if a.cancel != nil {
		a.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
