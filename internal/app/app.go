package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ytlearn/backend/internal/clients/gcp"
	"github.com/ytlearn/backend/internal/clients/openai"
	"github.com/ytlearn/backend/internal/data/db"
	"github.com/ytlearn/backend/internal/pkg/logger"
	"github.com/ytlearn/backend/internal/pipeline"
	"github.com/ytlearn/backend/internal/platform/localmedia"
	"github.com/ytlearn/backend/internal/platform/tracing"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	shutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("loading environment variables...")
	cfg := LoadConfig(log)

	shutdownTracing := tracing.Init(context.Background(), log, tracing.Config{
		ServiceName: "ytlearn-backend",
		Enabled:     cfg.TracingEnabled,
		SampleRatio: cfg.TracingSampleRatio,
	})

	// openai.NewClient reads its connection settings from OPENAI_* env vars
	// directly; bridge our llm_base_url/llm_model config names onto them
	// when the caller hasn't already set the OpenAI-flavored ones.
	if cfg.LLMBaseURL != "" && os.Getenv("OPENAI_BASE_URL") == "" {
		os.Setenv("OPENAI_BASE_URL", cfg.LLMBaseURL)
	}
	if cfg.LLMModel != "" && os.Getenv("OPENAI_MODEL") == "" {
		os.Setenv("OPENAI_MODEL", cfg.LLMModel)
	}
	if cfg.EmbeddingModelName != "" && os.Getenv("OPENAI_EMBED_MODEL") == "" {
		os.Setenv("OPENAI_EMBED_MODEL", cfg.EmbeddingModelName)
	}

	pg, err := db.NewPostgresService(cfg.DatabaseURL, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.Migrate(cfg.EmbeddingDim); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	theDB := pg.DB()

	reposet := wireRepos(theDB, log)

	tools := localmedia.New(log)

	llmClient, err := openai.NewClient(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init openai client: %w", err)
	}

	var speech gcp.Speech
	if cfg.TranscriptionProvider == string(pipeline.TranscriberProviderRemote) {
		speech, err = gcp.NewSpeech(log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init speech client: %w", err)
		}
	}

	transcriber, err := pipeline.NewTranscriber(pipeline.TranscriberConfig{
		Provider: pipeline.TranscriberProvider(cfg.TranscriptionProvider),
		Model:    cfg.TranscriptionModel,
	}, speech, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init transcriber: %w", err)
	}

	embedder, err := pipeline.NewEmbedder(pipeline.EmbedderConfig{
		Provider:  pipeline.EmbedderProviderRemote,
		ModelName: cfg.EmbeddingModelName,
		Dim:       cfg.EmbeddingDim,
	}, llmClient, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	chunker := pipeline.NewChunker(pipeline.ChunkerConfig{
		StoragePath:                 cfg.StoragePath,
		MaxChunkSizeMB:              cfg.MaxChunkSizeMB,
		SilenceThresholdDB:          cfg.SilenceThresholdDB,
		MinSilenceDurationS:         cfg.MinSilenceDurationS,
		DeleteOriginalAfterChunking: cfg.DeleteOriginalAfterChunking,
	}, tools, reposet.AudioChunk, log)

	fetcher := pipeline.NewMediaFetcher(pipeline.FetcherConfig{
		StoragePath: cfg.StoragePath,
	}, reposet.Video, log)

	transcriptionService := pipeline.NewTranscriptionService(pipeline.TranscriptionServiceConfig{
		EmbeddingDim: cfg.EmbeddingDim,
	}, reposet, chunker, transcriber, embedder, log)

	questionGenerator := pipeline.NewQuestionGenerator(pipeline.QuestionGeneratorConfig{}, reposet, llmClient, log)

	downloadService := pipeline.NewDownloadService(fetcher, log)

	router := wireRouter(log, cfg, reposet, downloadService, transcriptionService, questionGenerator)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		shutdown: shutdownTracing,
	}, nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.shutdown != nil {
		if err := a.shutdown(context.Background()); err != nil && a.Log != nil {
			a.Log.Warn("tracing shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
