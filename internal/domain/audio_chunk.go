package domain

import "time"

// AudioChunk is one contiguous slice of a Video's audio, produced only when
// the original file exceeds the configured chunking threshold. Chunks for a
// Video form an ordered, non-overlapping partition of the original.
type AudioChunk struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	VideoID   uint  `gorm:"column:video_id;not null;index:idx_audio_chunk_video_order,unique,priority:1" json:"video_id"`
	Video     *Video `gorm:"constraint:OnDelete:CASCADE;foreignKey:VideoID;references:ID" json:"-"`
	ChunkIndex int   `gorm:"column:chunk_index;not null;index:idx_audio_chunk_video_order,unique,priority:2" json:"chunk_index"`

	FilePath   string `gorm:"column:file_path;not null" json:"file_path"`
	SizeBytes  int64  `gorm:"column:size_bytes;not null" json:"size_bytes"`
	StartMs    int64  `gorm:"column:start_ms;not null" json:"start_ms"`
	EndMs      int64  `gorm:"column:end_ms;not null" json:"end_ms"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

func (AudioChunk) TableName() string { return "audio_chunks" }
