package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/ytlearn/backend/internal/domain"
	"github.com/ytlearn/backend/internal/pkg/logger"
)

type fakeMediaFetcher struct {
	result FetchResult
	err    error
}

func (f *fakeMediaFetcher) Fetch(ctx context.Context, rawURL string) (FetchResult, error) {
	return f.result, f.err
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestDownloadVideo_Success(t *testing.T) {
	fetcher := &fakeMediaFetcher{result: FetchResult{Video: &domain.Video{ExternalID: "abc123"}}}
	svc := NewDownloadService(fetcher, newTestLogger(t))

	res := svc.DownloadVideo(context.Background(), "https://youtu.be/abc123")
	if res.Status != DownloadStatusSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.VideoExternalID != "abc123" {
		t.Fatalf("expected video id abc123, got %+v", res)
	}
}

func TestDownloadVideo_Duplicate(t *testing.T) {
	fetcher := &fakeMediaFetcher{result: FetchResult{Video: &domain.Video{ExternalID: "abc123"}, AlreadyExists: true}}
	svc := NewDownloadService(fetcher, newTestLogger(t))

	res := svc.DownloadVideo(context.Background(), "https://youtu.be/abc123")
	if res.Status != DownloadStatusDuplicate {
		t.Fatalf("expected duplicate, got %+v", res)
	}
}

func TestDownloadVideo_FetchErrorReportedAsFailed(t *testing.T) {
	fetcher := &fakeMediaFetcher{err: errors.New("yt-dlp exploded")}
	svc := NewDownloadService(fetcher, newTestLogger(t))

	res := svc.DownloadVideo(context.Background(), "not-a-real-url")
	if res.Status != DownloadStatusFailed {
		t.Fatalf("expected failed, got %+v", res)
	}
	if res.Message == "" {
		t.Fatalf("expected a failure message")
	}
}
