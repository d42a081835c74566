package pipeline

import (
	"context"
	"os"
	"strings"

	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"github.com/ytlearn/backend/internal/data/repos"
	"github.com/ytlearn/backend/internal/domain"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
	"github.com/ytlearn/backend/internal/pkg/httpx"
	"github.com/ytlearn/backend/internal/pkg/logger"
	"github.com/ytlearn/backend/internal/pkg/retry"
)

// chunkTranscribeConcurrency bounds how many of a video's chunks are
// transcribed at once; the local whisper-style transcriber serializes
// internally via its own mutex, so this mainly benefits the remote path.
const chunkTranscribeConcurrency = 4

const transcribeTotalSteps = 5

// Per-item status values for POST /videos/transcribe.
const (
	TranscribeStatusSuccess  = "success"
	TranscribeStatusNotFound = "not_found"
	TranscribeStatusNoAudio  = "no_audio"
	TranscribeStatusFailed   = "failed"
)

// TranscribeItemResult is one entry in a transcribe batch's results array.
type TranscribeItemResult struct {
	VideoExternalID string `json:"video_id"`
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
	StepsCompleted  int    `json:"steps_completed"`
	TotalSteps      int    `json:"total_steps"`
	TranscriptionID uint   `json:"transcription_id,omitempty"`
}

// TranscriptionService runs the full locate -> prepare -> transcribe ->
// embed -> persist sequence for one video.
type TranscriptionService interface {
	TranscribeVideo(ctx context.Context, externalID string) TranscribeItemResult
}

type TranscriptionServiceConfig struct {
	Language     string
	EmbeddingDim int
	Retry        retry.Policy
}

type transcriptionService struct {
	cfg            TranscriptionServiceConfig
	videos         repos.VideoRepo
	chunks         repos.AudioChunkRepo
	transcriptions repos.TranscriptionRepo
	chunker        Chunker
	transcriber    Transcriber
	embedder       Embedder
	log            *logger.Logger
}

func NewTranscriptionService(
	cfg TranscriptionServiceConfig,
	store repos.Store,
	chunker Chunker,
	transcriber Transcriber,
	embedder Embedder,
	log *logger.Logger,
) TranscriptionService {
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = retry.Default()
		cfg.Retry.Retryable = httpx.IsRetryableError
	}
	return &transcriptionService{
		cfg:            cfg,
		videos:         store.Video,
		chunks:         store.AudioChunk,
		transcriptions: store.Transcription,
		chunker:        chunker,
		transcriber:    transcriber,
		embedder:       embedder,
		log:            log.With("service", "TranscriptionService"),
	}
}

func (s *transcriptionService) TranscribeVideo(ctx context.Context, externalID string) TranscribeItemResult {
	res := TranscribeItemResult{VideoExternalID: externalID, TotalSteps: transcribeTotalSteps}
	dbc := dbctx.Context{Ctx: ctx}

	video, err := s.videos.GetByExternalID(dbc, externalID)
	if err != nil {
		return failResult(res, err)
	}
	if video == nil {
		res.Status = TranscribeStatusNotFound
		res.Message = "video not found"
		return res
	}
	if video.AudioPath == nil {
		res.Status = TranscribeStatusNoAudio
		res.Message = "video has no audio_path"
		return res
	}
	if _, statErr := os.Stat(*video.AudioPath); statErr != nil {
		res.Status = TranscribeStatusNoAudio
		res.Message = "audio file missing on disk"
		return res
	}
	res.StepsCompleted = 1 // locate

	chunkRows, err := s.chunks.GetByVideoID(dbc, video.ID)
	if err != nil {
		return failResult(res, err)
	}
	if len(chunkRows) == 0 && s.transcriber.MaxFileSizeBytes() > 0 {
		info, statErr := os.Stat(*video.AudioPath)
		if statErr == nil && info.Size() > s.transcriber.MaxFileSizeBytes() {
			produced, cerr := s.chunker.Chunk(ctx, video)
			if cerr != nil {
				return failResult(res, cerr)
			}
			chunkRows = produced
		}
	}
	res.StepsCompleted = 2 // prepare

	text, err := s.transcribeText(ctx, video, chunkRows)
	if err != nil {
		return failResult(res, apperr.NewTranscriptionFailedError("%v", err))
	}
	res.StepsCompleted = 3 // transcribe

	row := &domain.Transcription{
		VideoID: video.ID,
		Text:    text,
		Status:  domain.TranscriptionStatusCompleted,
	}
	vec, embedErr := s.embedder.Embed(ctx, text)
	if embedErr != nil {
		s.log.Warn("embedding failed; storing transcription without a vector", "video_id", externalID, "error", embedErr)
		row.Status = domain.TranscriptionStatusCompletedNoEmbedding
	} else {
		v := pgvector.NewVector(vec)
		row.Vector = &v
	}
	res.StepsCompleted = 4 // embed

	saved, err := s.transcriptions.Insert(dbc, row, s.cfg.EmbeddingDim)
	if err != nil {
		return failResult(res, err)
	}
	res.StepsCompleted = 5 // persist
	res.Status = TranscribeStatusSuccess
	res.TranscriptionID = saved.ID
	return res
}

// transcribeText transcribes every chunk concurrently (bounded by
// chunkTranscribeConcurrency) and joins the results in chunk order, which
// errgroup.SetLimit plus a pre-sized results slice gives us without any
// extra ordering logic.
func (s *transcriptionService) transcribeText(ctx context.Context, video *domain.Video, chunkRows []*domain.AudioChunk) (string, error) {
	if len(chunkRows) == 0 {
		return s.transcribeWithRetry(ctx, *video.AudioPath)
	}

	parts := make([]string, len(chunkRows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(chunkTranscribeConcurrency)

	for i, c := range chunkRows {
		i, c := i, c
		g.Go(func() error {
			t, err := s.transcribeWithRetry(gctx, c.FilePath)
			if err != nil {
				return err
			}
			parts[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(parts, " "), nil
}

func (s *transcriptionService) transcribeWithRetry(ctx context.Context, audioPath string) (string, error) {
	var text string
	err := retry.Do(ctx, s.cfg.Retry, func(attempt int) error {
		t, err := s.transcriber.Transcribe(ctx, audioPath, s.cfg.Language)
		if err != nil {
			return err
		}
		text = t
		return nil
	})
	return text, err
}

func failResult(res TranscribeItemResult, err error) TranscribeItemResult {
	res.Status = TranscribeStatusFailed
	res.Message = err.Error()
	return res
}
