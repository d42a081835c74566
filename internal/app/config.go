package app

import (
	"github.com/ytlearn/backend/internal/pkg/logger"
	"github.com/ytlearn/backend/internal/utils"
)

// Config holds every configuration variable the pipeline needs, read once
// at startup.
type Config struct {
	DatabaseURL string
	StoragePath string

	TranscriptionProvider string
	TranscriptionModel    string

	EmbeddingModelName string
	EmbeddingDim       int

	LLMBaseURL string
	LLMModel   string

	MaxChunkSizeMB              float64
	SilenceThresholdDB          float64
	MinSilenceDurationS         float64
	DeleteOriginalAfterChunking bool

	CORSOrigins []string

	TracingEnabled     bool
	TracingSampleRatio float64
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		DatabaseURL: utils.GetEnv("DATABASE_URL", "", log),
		StoragePath: utils.GetEnv("STORAGE_PATH", "/var/lib/ytlearn/storage", log),

		TranscriptionProvider: utils.GetEnv("TRANSCRIPTION_PROVIDER", "remote", log),
		TranscriptionModel:    utils.GetEnv("TRANSCRIPTION_MODEL", "latest_long", log),

		EmbeddingModelName: utils.GetEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small", log),
		EmbeddingDim:       utils.GetEnvAsInt("EMBEDDING_DIM", 1536, log),

		LLMBaseURL: utils.GetEnv("LLM_BASE_URL", "", log),
		LLMModel:   utils.GetEnv("LLM_MODEL", "gpt-4o-mini", log),

		MaxChunkSizeMB:              utils.GetEnvAsFloat("MAX_CHUNK_SIZE_MB", 25, log),
		SilenceThresholdDB:          utils.GetEnvAsFloat("SILENCE_THRESHOLD_DB", -35, log),
		MinSilenceDurationS:         utils.GetEnvAsFloat("MIN_SILENCE_DURATION_S", 0.3, log),
		DeleteOriginalAfterChunking: utils.GetEnvAsBool("DELETE_ORIGINAL_AFTER_CHUNKING", false, log),

		CORSOrigins: utils.GetEnvAsStringSlice("CORS_ORIGINS", nil, log),

		TracingEnabled:     utils.GetEnvAsBool("TRACING_ENABLED", true, log),
		TracingSampleRatio: utils.GetEnvAsFloat("TRACING_SAMPLE_RATIO", 0.1, log),
	}
}
