package domain

import "time"

type VideoDownloadStatus string

const (
	VideoStatusPending     VideoDownloadStatus = "pending"
	VideoStatusDownloading VideoDownloadStatus = "downloading"
	VideoStatusCompleted   VideoDownloadStatus = "completed"
	VideoStatusFailed      VideoDownloadStatus = "failed"
)

// Video is a single ingested YouTube source, keyed by its canonical
// 11-character external id.
type Video struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	ExternalID   string              `gorm:"column:external_id;not null;uniqueIndex;size:11" json:"external_id"`
	Title        string              `gorm:"column:title;not null" json:"title"`
	ThumbnailURL *string             `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	AudioPath    *string             `gorm:"column:audio_path" json:"audio_path,omitempty"`
	Status       VideoDownloadStatus `gorm:"column:status;not null;default:pending;index" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();index" json:"created_at"`
}

func (Video) TableName() string { return "videos" }
