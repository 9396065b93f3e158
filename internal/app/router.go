package app

import (
	"interview_coach_backend/docs"
	"interview_coach_backend/internal/middleware"
	"interview_coach_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware())
	{
		interviews := authGroup.Group("/interviews")
		{
			interviews.GET("/roles", c.interview.ListRoles)
			interviews.POST("", c.interview.CreateSession)
			interviews.GET("", c.interview.ListSessions)
			interviews.GET("/:id", c.interview.GetSession)
			interviews.POST("/:id/start", c.interview.StartSession)
			interviews.POST("/:id/answers", c.interview.SubmitAnswer)
			interviews.POST("/:id/complete", c.interview.CompleteSession)
			interviews.GET("/:id/summary", c.interview.PracticeSummary)
			interviews.GET("/:id/questions/:questionId/hint", c.interview.QuestionHint)
		}

		coding := authGroup.Group("/coding")
		{
			coding.GET("/challenges", c.coding.ListChallenges)
			coding.GET("/challenges/:id", c.coding.GetChallenge)
			coding.POST("/challenges/:id/run", c.coding.RunCode)
			coding.POST("/challenges/:id/submit", c.coding.SubmitCode)
			coding.GET("/submissions", c.coding.ListSubmissions)
			coding.GET("/submissions/:id", c.coding.GetSubmission)
		}

		evaluations := authGroup.Group("/evaluations")
		{
			evaluations.POST("/:id/report", c.evaluation.BuildReport)
			evaluations.POST("/questions-from-jd",
				middleware.RoleMiddleware(middleware.RoleRecruiter), c.evaluation.QuestionsFromJD)
		}
	}
}
