package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coursefaq/controllers"
)

type Deps struct {
	QA       controllers.QuestionAnswerer
	Feedback controllers.FeedbackRecorder
	Logger   *zap.Logger
}

func SetupRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	qa := controllers.NewQAController(deps.QA, logger)
	api := r.Group("/api")
	{
		api.GET("/courses", qa.ListCourses)
		api.POST("/qa", qa.AnswerQuestion)

		if deps.Feedback != nil {
			fb := controllers.NewFeedbackController(deps.Feedback)
			api.POST("/feedback", fb.SubmitFeedback)
			api.GET("/feedback/rank", fb.GetTopCourses)
			api.GET("/feedback/:course", fb.GetFeedback)
		}
	}

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
