package pipeline

import (
	"context"

	"github.com/ytlearn/backend/internal/pkg/logger"
)

// Per-item status values for POST /videos/download.
const (
	DownloadStatusSuccess   = "success"
	DownloadStatusDuplicate = "duplicate"
	DownloadStatusFailed    = "failed"
)

// DownloadItemResult is one entry in a download batch's results array.
type DownloadItemResult struct {
	URL             string `json:"url"`
	VideoExternalID string `json:"video_id,omitempty"`
	Status          string `json:"status"`
	Message         string `json:"message,omitempty"`
}

// DownloadService adapts MediaFetcher to the batch-endpoint shape: one
// result per requested URL, never an error that would abort the rest of
// the batch.
type DownloadService interface {
	DownloadVideo(ctx context.Context, rawURL string) DownloadItemResult
}

type downloadService struct {
	fetcher MediaFetcher
	log     *logger.Logger
}

func NewDownloadService(fetcher MediaFetcher, log *logger.Logger) DownloadService {
	return &downloadService{fetcher: fetcher, log: log.With("service", "DownloadService")}
}

func (s *downloadService) DownloadVideo(ctx context.Context, rawURL string) DownloadItemResult {
	res := DownloadItemResult{URL: rawURL}

	result, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		res.Status = DownloadStatusFailed
		res.Message = err.Error()
		return res
	}

	res.VideoExternalID = result.Video.ExternalID
	if result.AlreadyExists {
		res.Status = DownloadStatusDuplicate
		res.Message = "video already exists"
		return res
	}
	res.Status = DownloadStatusSuccess
	return res
}
