package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ytlearn/backend/internal/data/repos"
	"github.com/ytlearn/backend/internal/domain"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
)

type fakeVideoRepo struct {
	byExternalID map[string]*domain.Video
}

func (f *fakeVideoRepo) Insert(dbc dbctx.Context, row *domain.Video) (*domain.Video, error) {
	return row, nil
}
func (f *fakeVideoRepo) GetByID(dbc dbctx.Context, id uint) (*domain.Video, error) { return nil, nil }
func (f *fakeVideoRepo) GetByExternalID(dbc dbctx.Context, externalID string) (*domain.Video, error) {
	return f.byExternalID[externalID], nil
}
func (f *fakeVideoRepo) List(dbc dbctx.Context, status string, limit, offset int) ([]*domain.Video, error) {
	return nil, nil
}
func (f *fakeVideoRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	return nil
}
func (f *fakeVideoRepo) Delete(dbc dbctx.Context, id uint, cascade bool) error { return nil }

type fakeAudioChunkRepo struct {
	byVideoID map[uint][]*domain.AudioChunk
}

func (f *fakeAudioChunkRepo) Create(dbc dbctx.Context, rows []*domain.AudioChunk) ([]*domain.AudioChunk, error) {
	return rows, nil
}
func (f *fakeAudioChunkRepo) GetByVideoID(dbc dbctx.Context, videoID uint) ([]*domain.AudioChunk, error) {
	return f.byVideoID[videoID], nil
}
func (f *fakeAudioChunkRepo) CountByVideoID(dbc dbctx.Context, videoID uint) (int64, error) {
	return int64(len(f.byVideoID[videoID])), nil
}
func (f *fakeAudioChunkRepo) DeleteByVideoID(dbc dbctx.Context, videoID uint) error { return nil }

type fakeTranscriptionRepo struct {
	inserted *domain.Transcription
}

func (f *fakeTranscriptionRepo) Insert(dbc dbctx.Context, row *domain.Transcription, embeddingDim int) (*domain.Transcription, error) {
	row.ID = 1
	f.inserted = row
	return row, nil
}
func (f *fakeTranscriptionRepo) GetByID(dbc dbctx.Context, id uint) (*domain.Transcription, error) {
	return nil, nil
}
func (f *fakeTranscriptionRepo) GetLatestByVideoID(dbc dbctx.Context, videoID uint) (*domain.Transcription, error) {
	return nil, nil
}
func (f *fakeTranscriptionRepo) List(dbc dbctx.Context, videoID uint, limit, offset int) ([]*domain.Transcription, error) {
	return nil, nil
}
func (f *fakeTranscriptionRepo) Delete(dbc dbctx.Context, id uint) error { return nil }

type fakeChunker struct {
	called bool
	chunks []*domain.AudioChunk
	err    error
}

func (f *fakeChunker) Chunk(ctx context.Context, video *domain.Video) ([]*domain.AudioChunk, error) {
	f.called = true
	return f.chunks, f.err
}

type fakeTranscriber struct {
	maxBytes int64
	text     string
	err      error
	calls    []string
}

func (f *fakeTranscriber) MaxFileSizeBytes() int64 { return f.maxBytes }
func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string, language string) (string, error) {
	f.calls = append(f.calls, audioPath)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeEmbedder struct {
	dim int
	vec []float32
	err error
}

func (f *fakeEmbedder) Dim() int { return f.dim }
func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func newTestStore(videos *fakeVideoRepo, chunks *fakeAudioChunkRepo, transcriptions *fakeTranscriptionRepo) repos.Store {
	return repos.Store{Video: videos, AudioChunk: chunks, Transcription: transcriptions}
}

func TestTranscribeVideo_NotFound(t *testing.T) {
	videos := &fakeVideoRepo{byExternalID: map[string]*domain.Video{}}
	svc := NewTranscriptionService(TranscriptionServiceConfig{EmbeddingDim: 4},
		newTestStore(videos, &fakeAudioChunkRepo{}, &fakeTranscriptionRepo{}),
		&fakeChunker{}, &fakeTranscriber{}, &fakeEmbedder{dim: 4}, newTestLogger(t))

	res := svc.TranscribeVideo(context.Background(), "missing")
	if res.Status != TranscribeStatusNotFound {
		t.Fatalf("expected not_found, got %+v", res)
	}
}

func TestTranscribeVideo_NoAudioPath(t *testing.T) {
	videos := &fakeVideoRepo{byExternalID: map[string]*domain.Video{
		"vid1": {ID: 1, ExternalID: "vid1"},
	}}
	svc := NewTranscriptionService(TranscriptionServiceConfig{EmbeddingDim: 4},
		newTestStore(videos, &fakeAudioChunkRepo{}, &fakeTranscriptionRepo{}),
		&fakeChunker{}, &fakeTranscriber{}, &fakeEmbedder{dim: 4}, newTestLogger(t))

	res := svc.TranscribeVideo(context.Background(), "vid1")
	if res.Status != TranscribeStatusNoAudio {
		t.Fatalf("expected no_audio, got %+v", res)
	}
}

func TestTranscribeVideo_AudioMissingOnDisk(t *testing.T) {
	missingPath := filepath.Join(t.TempDir(), "does-not-exist.wav")
	videos := &fakeVideoRepo{byExternalID: map[string]*domain.Video{
		"vid1": {ID: 1, ExternalID: "vid1", AudioPath: &missingPath},
	}}
	svc := NewTranscriptionService(TranscriptionServiceConfig{EmbeddingDim: 4},
		newTestStore(videos, &fakeAudioChunkRepo{}, &fakeTranscriptionRepo{}),
		&fakeChunker{}, &fakeTranscriber{}, &fakeEmbedder{dim: 4}, newTestLogger(t))

	res := svc.TranscribeVideo(context.Background(), "vid1")
	if res.Status != TranscribeStatusNoAudio {
		t.Fatalf("expected no_audio, got %+v", res)
	}
}

func TestTranscribeVideo_SuccessWithEmbedding(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(audioPath, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write fixture file: %v", err)
	}
	videos := &fakeVideoRepo{byExternalID: map[string]*domain.Video{
		"vid1": {ID: 1, ExternalID: "vid1", AudioPath: &audioPath},
	}}
	transcriptions := &fakeTranscriptionRepo{}
	svc := NewTranscriptionService(TranscriptionServiceConfig{EmbeddingDim: 3},
		newTestStore(videos, &fakeAudioChunkRepo{}, transcriptions),
		&fakeChunker{}, &fakeTranscriber{text: "hello world"}, &fakeEmbedder{dim: 3, vec: []float32{1, 0, 0}}, newTestLogger(t))

	res := svc.TranscribeVideo(context.Background(), "vid1")
	if res.Status != TranscribeStatusSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.StepsCompleted != transcribeTotalSteps {
		t.Fatalf("expected all %d steps completed, got %d", transcribeTotalSteps, res.StepsCompleted)
	}
	if transcriptions.inserted == nil || transcriptions.inserted.Status != domain.TranscriptionStatusCompleted {
		t.Fatalf("expected a completed transcription row, got %+v", transcriptions.inserted)
	}
	if transcriptions.inserted.Vector == nil {
		t.Fatalf("expected an embedding vector to be attached")
	}
}

func TestTranscribeVideo_EmbeddingFailureStillPersistsWithoutVector(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(audioPath, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write fixture file: %v", err)
	}
	videos := &fakeVideoRepo{byExternalID: map[string]*domain.Video{
		"vid1": {ID: 1, ExternalID: "vid1", AudioPath: &audioPath},
	}}
	transcriptions := &fakeTranscriptionRepo{}
	svc := NewTranscriptionService(TranscriptionServiceConfig{EmbeddingDim: 3},
		newTestStore(videos, &fakeAudioChunkRepo{}, transcriptions),
		&fakeChunker{}, &fakeTranscriber{text: "hello world"}, &fakeEmbedder{dim: 3, err: apperr.NewEmbeddingFailedError("boom")}, newTestLogger(t))

	res := svc.TranscribeVideo(context.Background(), "vid1")
	if res.Status != TranscribeStatusSuccess {
		t.Fatalf("expected success (embedding failure is non-fatal), got %+v", res)
	}
	if transcriptions.inserted.Status != domain.TranscriptionStatusCompletedNoEmbedding {
		t.Fatalf("expected completed_no_embedding status, got %q", transcriptions.inserted.Status)
	}
	if transcriptions.inserted.Vector != nil {
		t.Fatalf("expected no vector attached")
	}
}

func TestTranscribeVideo_TranscriberFailureReturnsFailed(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(audioPath, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write fixture file: %v", err)
	}
	videos := &fakeVideoRepo{byExternalID: map[string]*domain.Video{
		"vid1": {ID: 1, ExternalID: "vid1", AudioPath: &audioPath},
	}}
	cfg := TranscriptionServiceConfig{EmbeddingDim: 3}
	svc := NewTranscriptionService(cfg,
		newTestStore(videos, &fakeAudioChunkRepo{}, &fakeTranscriptionRepo{}),
		&fakeChunker{}, &fakeTranscriber{err: apperr.NewRemoteFailureError("speech api down")}, &fakeEmbedder{dim: 3}, newTestLogger(t))

	res := svc.TranscribeVideo(context.Background(), "vid1")
	if res.Status != TranscribeStatusFailed {
		t.Fatalf("expected failed, got %+v", res)
	}
}
