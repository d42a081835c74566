package testutil

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/ytlearn/backend/internal/domain"
)

func SeedVideo(tb testing.TB, ctx context.Context, tx *gorm.DB, externalID string) *types.Video {
	tb.Helper()
	v := &types.Video{
		ExternalID: externalID,
		Title:      "video " + externalID,
		Status:     types.VideoStatusCompleted,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed video: %v", err)
	}
	return v
}

func SeedAudioChunk(tb testing.TB, ctx context.Context, tx *gorm.DB, videoID uint, index int, filePath string) *types.AudioChunk {
	tb.Helper()
	c := &types.AudioChunk{
		VideoID:    videoID,
		ChunkIndex: index,
		FilePath:   filePath,
		SizeBytes:  1024,
		StartMs:    int64(index) * 1000,
		EndMs:      int64(index+1) * 1000,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed audio chunk: %v", err)
	}
	return c
}

func SeedTranscription(tb testing.TB, ctx context.Context, tx *gorm.DB, videoID uint, text string) *types.Transcription {
	tb.Helper()
	t := &types.Transcription{
		VideoID: videoID,
		Text:    text,
		Status:  types.TranscriptionStatusCompletedNoEmbedding,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed transcription: %v", err)
	}
	return t
}

func SeedGeneration(tb testing.TB, ctx context.Context, tx *gorm.DB, videoExternalIDs []string) *types.Generation {
	tb.Helper()
	idsJSON := fmt.Sprintf(`[%s]`, quoteJoin(videoExternalIDs))
	g := &types.Generation{
		VideoExternalIDs: datatypes.JSON([]byte(idsJSON)),
		QuestionCount:    0,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed generation: %v", err)
	}
	return g
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, generationID uint, videoExternalID string, orderIndex int) *types.Question {
	tb.Helper()
	q := &types.Question{
		GenerationID:    generationID,
		VideoExternalID: videoExternalID,
		QuestionText:    fmt.Sprintf("question %d", orderIndex),
		OrderIndex:      orderIndex,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func quoteJoin(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ","
		}
		out += `"` + s + `"`
	}
	return out
}
