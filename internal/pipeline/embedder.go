package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/ytlearn/backend/internal/clients/openai"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/logger"
)

// EmbedderProvider selects which Embedder variant the factory builds.
type EmbedderProvider string

const (
	EmbedderProviderLocal  EmbedderProvider = "local"
	EmbedderProviderRemote EmbedderProvider = "remote"
)

type EmbedderConfigError struct {
	Provider string
	Cause    error
}

func (e *EmbedderConfigError) Error() string {
	return fmt.Sprintf("invalid embedding_provider %q: %v", e.Provider, e.Cause)
}

func (e *EmbedderConfigError) Unwrap() error { return e.Cause }

// Embedder maps text to a unit-norm vector of a fixed dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dim() int
}

type EmbedderConfig struct {
	Provider  EmbedderProvider
	ModelName string
	Dim       int
	// MaxInputChars truncates from the end before calling the model, since
	// the caller is never informed of truncation per the contract.
	MaxInputChars int
}

func NewEmbedder(cfg EmbedderConfig, client openai.Client, log *logger.Logger) (Embedder, error) {
	if cfg.Dim <= 0 {
		return nil, &EmbedderConfigError{Provider: string(cfg.Provider), Cause: fmt.Errorf("embedding_dim must be > 0")}
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = 32000
	}
	switch cfg.Provider {
	case EmbedderProviderRemote, "":
		if client == nil {
			return nil, &EmbedderConfigError{Provider: string(cfg.Provider), Cause: fmt.Errorf("remote provider requires a configured OpenAI client")}
		}
		return &remoteEmbedder{cfg: cfg, client: client, log: log.With("service", "Embedder", "provider", "remote")}, nil
	case EmbedderProviderLocal:
		return nil, &EmbedderConfigError{Provider: string(cfg.Provider), Cause: fmt.Errorf("local embedding provider is not wired in this build")}
	default:
		return nil, &EmbedderConfigError{Provider: string(cfg.Provider), Cause: fmt.Errorf("must be %q or %q", EmbedderProviderLocal, EmbedderProviderRemote)}
	}
}

type remoteEmbedder struct {
	cfg    EmbedderConfig
	client openai.Client
	log    *logger.Logger
}

func (e *remoteEmbedder) Dim() int { return e.cfg.Dim }

func (e *remoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	truncated := text
	if len(truncated) > e.cfg.MaxInputChars {
		truncated = truncated[:e.cfg.MaxInputChars]
	}

	vecs, err := e.client.Embed(ctx, []string{truncated})
	if err != nil {
		return nil, apperr.NewEmbeddingFailedError("embedding call failed: %v", err)
	}
	if len(vecs) == 0 {
		return nil, apperr.NewEmbeddingFailedError("embedding call returned no vectors")
	}
	vec := vecs[0]
	if len(vec) != e.cfg.Dim {
		return nil, apperr.NewEmbeddingFailedError("embedding model returned %d dims, expected %d", len(vec), e.cfg.Dim)
	}
	return normalize(vec), nil
}

// normalize returns v scaled to unit L2 norm. A zero vector is returned
// unchanged rather than dividing by zero.
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, f := range v {
		sumSq += float64(f) * float64(f)
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}
