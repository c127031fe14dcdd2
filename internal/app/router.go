package app

import (
	"quiz_adaptive_backend/docs"
	"quiz_adaptive_backend/internal/config"
	"quiz_adaptive_backend/internal/middleware"
	"quiz_adaptive_backend/internal/model"
	"quiz_adaptive_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 教师/管理员接口
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

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 答题记录
	rg.POST("/answers", c.answer.RecordAnswer)

	// 自适应推荐
	rg.GET("/recommendations", c.recommendation.GetRecommendations)
	rg.GET("/recommendations/next-question", c.recommendation.GetNextQuestion)
	rg.GET("/recommendations/performance", c.recommendation.GetPerformance)
	rg.GET("/recommendations/study-tips", c.recommendation.GetStudyTips)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Teacher))
	{
		admin.GET("/users/:userId/recommendations", c.recommendation.GetUserRecommendations)
		admin.GET("/taxonomies", c.taxonomy.ListTaxonomies)
		admin.GET("/taxonomies/:category", c.taxonomy.GetTaxonomy)

		// 分类维护只开放给管理员
		manage := admin.Group("/taxonomies")
		manage.Use(middleware.RoleMiddleware(model.Admin))
		{
			manage.PUT("/:category", c.taxonomy.PutTaxonomy)
			manage.DELETE("/:category", c.taxonomy.DeleteTaxonomy)
		}
	}
}
