package domain

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

const (
	TranscriptionStatusCompleted           = "completed"
	TranscriptionStatusCompletedNoEmbedding = "completed_no_embedding"
)

// Transcription holds one transcription run for a Video. Re-runs are
// allowed; there is no uniqueness constraint on video_id. The embedding
// column is a fixed-width pgvector column bootstrapped outside AutoMigrate
// (see internal/data/db) because its width is only known at runtime
// (embedding_dim). gorm still reads/writes it normally; "-:migration"
// just keeps AutoMigrate from trying to own its DDL.
type Transcription struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	VideoID uint   `gorm:"column:video_id;not null;index" json:"video_id"`
	Video   *Video `gorm:"constraint:OnDelete:CASCADE;foreignKey:VideoID;references:ID" json:"-"`

	Text   string           `gorm:"column:text;not null" json:"text"`
	Vector *pgvector.Vector `gorm:"column:embedding;type:vector;-:migration" json:"-"`
	Status string           `gorm:"column:status;not null;default:completed" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();index" json:"created_at"`
}

func (Transcription) TableName() string { return "transcriptions" }

// EmbeddingVector exposes the raw float32 slice, or nil when no embedding
// was produced.
func (t *Transcription) EmbeddingVector() []float32 {
	if t.Vector == nil {
		return nil
	}
	return t.Vector.Slice()
}
