package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/ytlearn/backend/internal/http/handlers"
	httpMW "github.com/ytlearn/backend/internal/http/middleware"
	"github.com/ytlearn/backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	CORSOrigins []string

	Health        *httpH.HealthHandler
	Video         *httpH.VideoHandler
	Transcription *httpH.TranscriptionHandler
	Generation    *httpH.GenerationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("ytlearn-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.Health != nil {
		r.GET("/healthcheck", cfg.Health.HealthCheck)
	}

	// Lightweight in-process counters for the pipeline's main stages,
	// scraped directly rather than pushed anywhere.
	r.GET("/debug/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		if cfg.Video != nil {
			api.POST("/videos/download", cfg.Video.Download)
			api.GET("/videos", cfg.Video.List)
			api.GET("/videos/:external_id", cfg.Video.Get)
			api.DELETE("/videos/:external_id", cfg.Video.Delete)
		}

		if cfg.Transcription != nil {
			api.POST("/videos/transcribe", cfg.Transcription.Transcribe)
			api.POST("/transcriptions/transcribe", cfg.Transcription.Transcribe)
			api.GET("/transcriptions", cfg.Transcription.List)
			api.GET("/transcriptions/video/:external_id", cfg.Transcription.GetByVideo)
			api.GET("/transcriptions/:id", cfg.Transcription.Get)
			api.DELETE("/transcriptions/:id", cfg.Transcription.Delete)
		}

		if cfg.Generation != nil {
			api.POST("/questions/generate", cfg.Generation.Generate)
			api.GET("/generations", cfg.Generation.List)
			api.GET("/generations/:id", cfg.Generation.Get)
			api.DELETE("/generations/:id", cfg.Generation.Delete)
			api.PUT("/generations/:id/questions/reorder", cfg.Generation.ReorderQuestions)
			api.PUT("/generations/:id/questions/:qid", cfg.Generation.UpdateQuestion)
			api.DELETE("/generations/:id/questions/:qid", cfg.Generation.DeleteQuestion)
		}
	}

	return r
}
