package app

import (
	"github.com/gin-gonic/gin"

	httpserver "github.com/ytlearn/backend/internal/http"
	httpH "github.com/ytlearn/backend/internal/http/handlers"
	"github.com/ytlearn/backend/internal/pipeline"
	"github.com/ytlearn/backend/internal/pkg/logger"
)

func wireRouter(
	log *logger.Logger,
	cfg Config,
	repos Repos,
	download pipeline.DownloadService,
	transcription pipeline.TranscriptionService,
	questionGen pipeline.QuestionGenerator,
) *gin.Engine {
	log.Info("wiring handlers...")
	healthHandler := httpH.NewHealthHandler()
	videoHandler := httpH.NewVideoHandler(repos.Video, download)
	transcriptionHandler := httpH.NewTranscriptionHandler(repos.Transcription, repos.Video, transcription)
	generationHandler := httpH.NewGenerationHandler(repos.Generation, questionGen)

	log.Info("wiring router...")
	return httpserver.NewRouter(httpserver.RouterConfig{
		Log:           log,
		CORSOrigins:   cfg.CORSOrigins,
		Health:        healthHandler,
		Video:         videoHandler,
		Transcription: transcriptionHandler,
		Generation:    generationHandler,
	})
}
