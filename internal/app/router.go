package app

import (
	"learnhub_backend/docs"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/middleware"
	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/api/health", c.health.HealthCheck)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))
	{
		// Shared read surface; visibility is enforced per role in the services.
		api.GET("/quizzes", c.quiz.List)
		api.GET("/quizzes/:id", c.quiz.Get)
		api.GET("/quizzes/:id/questions", c.question.List)

		api.POST("/quizzes/:id/submissions", c.submission.Submit)
		api.GET("/quizzes/:id/submissions", c.submission.ListForQuiz)
		api.GET("/submissions/:id", c.submission.Get)

		api.GET("/grades", c.grade.List)

		teacher := api.Group("/teacher")
		teacher.Use(middleware.RoleMiddleware(model.Instructor))
		{
			teacher.POST("/quizzes", c.quiz.Create)
			teacher.POST("/quizzes/generate", c.quiz.Generate)
			teacher.PUT("/quizzes/:id", c.quiz.Update)
			teacher.DELETE("/quizzes/:id", c.quiz.Delete)
			teacher.POST("/quizzes/:id/publish", c.quiz.Publish)

			teacher.POST("/quizzes/:id/questions", c.question.Add)
			teacher.PUT("/questions/:id", c.question.Update)
			teacher.DELETE("/questions/:id", c.question.Remove)

			teacher.POST("/grades", c.grade.Record)
		}
	}
}
