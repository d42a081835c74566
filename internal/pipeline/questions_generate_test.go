package pipeline

import (
	"context"
	"testing"

	"github.com/ytlearn/backend/internal/clients/openai"
	"github.com/ytlearn/backend/internal/data/repos"
	"github.com/ytlearn/backend/internal/domain"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
	"github.com/ytlearn/backend/internal/pkg/retry"
)

type fakeGenerationRepo struct {
	inserted *domain.Generation
}

func (f *fakeGenerationRepo) Insert(dbc dbctx.Context, gen *domain.Generation) (*domain.Generation, error) {
	gen.ID = 42
	f.inserted = gen
	return gen, nil
}
func (f *fakeGenerationRepo) GetByID(dbc dbctx.Context, id uint, withQuestions bool) (*domain.Generation, error) {
	return nil, nil
}
func (f *fakeGenerationRepo) List(dbc dbctx.Context, limit, offset int) ([]*domain.Generation, error) {
	return nil, nil
}
func (f *fakeGenerationRepo) Delete(dbc dbctx.Context, id uint) error { return nil }
func (f *fakeGenerationRepo) UpdateQuestionFields(dbc dbctx.Context, generationID, questionID uint, updates map[string]interface{}) error {
	return nil
}
func (f *fakeGenerationRepo) DeleteQuestion(dbc dbctx.Context, generationID, questionID uint) error {
	return nil
}
func (f *fakeGenerationRepo) ReorderQuestions(dbc dbctx.Context, generationID uint, orderedQuestionIDs []uint) error {
	return nil
}

type fakeOpenAIClient struct {
	text string
	err  error
}

func (f *fakeOpenAIClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return nil, nil
}
func (f *fakeOpenAIClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return nil, nil
}
func (f *fakeOpenAIClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}
func (f *fakeOpenAIClient) GenerateTextWithImages(ctx context.Context, system, user string, images []openai.ImageInput) (string, error) {
	return "", nil
}
func (f *fakeOpenAIClient) GenerateImage(ctx context.Context, prompt string) (openai.ImageGeneration, error) {
	return openai.ImageGeneration{}, nil
}
func (f *fakeOpenAIClient) GenerateVideo(ctx context.Context, prompt string, opts openai.VideoGenerationOptions) (openai.VideoGeneration, error) {
	return openai.VideoGeneration{}, nil
}
func (f *fakeOpenAIClient) StreamText(ctx context.Context, system, user string, onDelta func(delta string)) (string, error) {
	return "", nil
}
func (f *fakeOpenAIClient) CreateConversation(ctx context.Context) (string, error) { return "", nil }
func (f *fakeOpenAIClient) GenerateTextInConversation(ctx context.Context, conversationID, instructions, user string) (string, error) {
	return "", nil
}
func (f *fakeOpenAIClient) StreamTextInConversation(ctx context.Context, conversationID, instructions, user string, onDelta func(delta string)) (string, error) {
	return "", nil
}

func newQuestionTestStore(videos *fakeVideoRepo, transcriptions *fakeTranscriptionRepoWithLatest, generations *fakeGenerationRepo) repos.Store {
	return repos.Store{Video: videos, Transcription: transcriptions, Generation: generations}
}

// fakeTranscriptionRepoWithLatest lets tests stub GetLatestByVideoID per video id,
// unlike fakeTranscriptionRepo (used by the transcription-service tests) which
// always returns nil.
type fakeTranscriptionRepoWithLatest struct {
	byVideoID map[uint]*domain.Transcription
}

func (f *fakeTranscriptionRepoWithLatest) Insert(dbc dbctx.Context, row *domain.Transcription, embeddingDim int) (*domain.Transcription, error) {
	return row, nil
}
func (f *fakeTranscriptionRepoWithLatest) GetByID(dbc dbctx.Context, id uint) (*domain.Transcription, error) {
	return nil, nil
}
func (f *fakeTranscriptionRepoWithLatest) GetLatestByVideoID(dbc dbctx.Context, videoID uint) (*domain.Transcription, error) {
	return f.byVideoID[videoID], nil
}
func (f *fakeTranscriptionRepoWithLatest) List(dbc dbctx.Context, videoID uint, limit, offset int) ([]*domain.Transcription, error) {
	return nil, nil
}
func (f *fakeTranscriptionRepoWithLatest) Delete(dbc dbctx.Context, id uint) error { return nil }

func TestQuestionGenerator_NoTranscriptionBucketsDoNotContribute(t *testing.T) {
	videos := &fakeVideoRepo{byExternalID: map[string]*domain.Video{
		"has-transcript": {ID: 1, ExternalID: "has-transcript"},
	}}
	transcriptions := &fakeTranscriptionRepoWithLatest{byVideoID: map[uint]*domain.Transcription{
		1: {Text: "a full transcript about cats"},
	}}
	generations := &fakeGenerationRepo{}
	llm := &fakeOpenAIClient{text: `[{"question_text":"What is a cat?","video_id":"has-transcript","difficulty":"easy","question_type":"factual"}]`}

	gen := NewQuestionGenerator(QuestionGeneratorConfig{}, newQuestionTestStore(videos, transcriptions, generations), llm, newTestLogger(t))

	summary, err := gen.Generate(context.Background(), QuestionGenRequest{
		VideoExternalIDs: []string{"has-transcript", "missing-video", "no-transcript-video"},
		QuestionCount:    1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 3 {
		t.Fatalf("expected total=3, got %d", summary.Total)
	}
	if summary.NoTranscription != 2 {
		t.Fatalf("expected no_transcription=2 (missing video + no transcript), got %d", summary.NoTranscription)
	}
	if summary.Successful != 1 {
		t.Fatalf("expected successful=1, got %d", summary.Successful)
	}
	if summary.Failed != 0 {
		t.Fatalf("expected failed=0, got %d", summary.Failed)
	}
	if summary.Successful+summary.Failed+summary.NoTranscription != summary.Total {
		t.Fatalf("buckets must sum to total: %+v", summary)
	}
	if generations.inserted == nil || generations.inserted.QuestionCount != 1 {
		t.Fatalf("expected a persisted generation with 1 question, got %+v", generations.inserted)
	}
}

func TestQuestionGenerator_ContributingVideoWithNoReturnedQuestionsCountsFailed(t *testing.T) {
	videos := &fakeVideoRepo{byExternalID: map[string]*domain.Video{
		"vid1": {ID: 1, ExternalID: "vid1"},
		"vid2": {ID: 2, ExternalID: "vid2"},
	}}
	transcriptions := &fakeTranscriptionRepoWithLatest{byVideoID: map[uint]*domain.Transcription{
		1: {Text: "transcript one"},
		2: {Text: "transcript two"},
	}}
	generations := &fakeGenerationRepo{}
	// LLM only returns a question for vid1; vid2 contributed a transcript
	// but produced nothing, so it must count as failed, not no_transcription.
	llm := &fakeOpenAIClient{text: `[{"question_text":"Q about one","video_id":"vid1"}]`}

	gen := NewQuestionGenerator(QuestionGeneratorConfig{}, newQuestionTestStore(videos, transcriptions, generations), llm, newTestLogger(t))

	summary, err := gen.Generate(context.Background(), QuestionGenRequest{
		VideoExternalIDs: []string{"vid1", "vid2"},
		QuestionCount:    2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Successful != 1 || summary.Failed != 1 || summary.NoTranscription != 0 {
		t.Fatalf("expected successful=1 failed=1 no_transcription=0, got %+v", summary)
	}
}

func TestQuestionGenerator_LLMFailureAfterRetriesReturnsNoRow(t *testing.T) {
	videos := &fakeVideoRepo{byExternalID: map[string]*domain.Video{
		"vid1": {ID: 1, ExternalID: "vid1"},
	}}
	transcriptions := &fakeTranscriptionRepoWithLatest{byVideoID: map[uint]*domain.Transcription{
		1: {Text: "some transcript"},
	}}
	generations := &fakeGenerationRepo{}
	llm := &fakeOpenAIClient{err: apperr.NewLLMUnavailableError("model overloaded")}

	gen := NewQuestionGenerator(QuestionGeneratorConfig{Retry: retry.Policy{MaxAttempts: 1}},
		newQuestionTestStore(videos, transcriptions, generations), llm, newTestLogger(t))

	_, err := gen.Generate(context.Background(), QuestionGenRequest{VideoExternalIDs: []string{"vid1"}})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if _, ok := err.(*apperr.LLMUnavailableError); !ok {
		t.Fatalf("expected *apperr.LLMUnavailableError, got %T", err)
	}
	if generations.inserted != nil {
		t.Fatalf("expected no generation row to be persisted on LLM failure")
	}
}

func TestQuestionGenerator_AllVideosMissingSkipsLLMCall(t *testing.T) {
	videos := &fakeVideoRepo{byExternalID: map[string]*domain.Video{}}
	generations := &fakeGenerationRepo{}
	llm := &fakeOpenAIClient{text: "should never be read"}

	gen := NewQuestionGenerator(QuestionGeneratorConfig{}, newQuestionTestStore(videos, &fakeTranscriptionRepoWithLatest{}, generations), llm, newTestLogger(t))

	summary, err := gen.Generate(context.Background(), QuestionGenRequest{VideoExternalIDs: []string{"gone"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.NoTranscription != 1 || summary.Total != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if generations.inserted != nil {
		t.Fatalf("expected no generation row when nothing contributes")
	}
}
