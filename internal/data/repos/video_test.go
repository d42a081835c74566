package repos

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ytlearn/backend/internal/data/repos/testutil"
	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
	types "github.com/ytlearn/backend/internal/domain"
)

func TestVideoRepo_Delete_NonCascadeBlocksOnDependents(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewVideoRepo(gdb, testutil.Logger(t))

	video := testutil.SeedVideo(t, ctx, tx, "nocascade01")
	testutil.SeedAudioChunk(t, ctx, tx, video.ID, 0, filepath.Join(t.TempDir(), "chunk-0.wav"))
	testutil.SeedTranscription(t, ctx, tx, video.ID, "hello world")
	gen := testutil.SeedGeneration(t, ctx, tx, []string{video.ExternalID})
	testutil.SeedQuestion(t, ctx, tx, gen.ID, video.ExternalID, 0)

	err := repo.Delete(dbc, video.ID, false)
	if err == nil {
		t.Fatalf("expected dependency violation, got nil")
	}
	depErr, ok := err.(*apperr.DependencyViolationError)
	if !ok {
		t.Fatalf("expected *apperr.DependencyViolationError, got %T: %v", err, err)
	}

	kinds := map[string]bool{}
	for _, d := range depErr.Dependent {
		kinds[d.Type] = true
	}
	for _, want := range []string{"audio_chunk", "transcription", "question"} {
		if !kinds[want] {
			t.Fatalf("expected dependent kind %q in %+v", want, depErr.Dependent)
		}
	}

	still, err := repo.GetByID(dbc, video.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if still == nil {
		t.Fatalf("video should not have been deleted")
	}
}

func TestVideoRepo_Delete_CascadeRemovesQuestionsAndFiles(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewVideoRepo(gdb, testutil.Logger(t))

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(audioPath, []byte("fake-audio"), 0o644); err != nil {
		t.Fatalf("write audio file: %v", err)
	}
	chunkPath := filepath.Join(dir, "chunk-0.wav")
	if err := os.WriteFile(chunkPath, []byte("fake-chunk"), 0o644); err != nil {
		t.Fatalf("write chunk file: %v", err)
	}

	video := testutil.SeedVideo(t, ctx, tx, "cascade0001")
	if err := tx.WithContext(ctx).Model(&types.Video{}).Where("id = ?", video.ID).
		Update("audio_path", audioPath).Error; err != nil {
		t.Fatalf("set audio_path: %v", err)
	}
	testutil.SeedAudioChunk(t, ctx, tx, video.ID, 0, chunkPath)
	testutil.SeedTranscription(t, ctx, tx, video.ID, "hello world")
	gen := testutil.SeedGeneration(t, ctx, tx, []string{video.ExternalID})
	q := testutil.SeedQuestion(t, ctx, tx, gen.ID, video.ExternalID, 0)

	if err := repo.Delete(dbc, video.ID, true); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	still, err := repo.GetByID(dbc, video.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if still != nil {
		t.Fatalf("expected video to be deleted")
	}

	var chunkCount int64
	if err := tx.WithContext(ctx).Model(&types.AudioChunk{}).Where("video_id = ?", video.ID).Count(&chunkCount).Error; err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if chunkCount != 0 {
		t.Fatalf("expected audio chunks to be deleted, found %d", chunkCount)
	}

	var questionCount int64
	if err := tx.WithContext(ctx).Model(&types.Question{}).Where("id = ?", q.ID).Count(&questionCount).Error; err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if questionCount != 0 {
		t.Fatalf("expected denormalized question rows to be deleted, found %d", questionCount)
	}

	if _, err := os.Stat(audioPath); !os.IsNotExist(err) {
		t.Fatalf("expected audio file to be removed from disk, stat err: %v", err)
	}
	if _, err := os.Stat(chunkPath); !os.IsNotExist(err) {
		t.Fatalf("expected chunk file to be removed from disk, stat err: %v", err)
	}
}
