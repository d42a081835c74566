package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Generation represents one batch question-generation event across a set
// of source videos.
type Generation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// VideoExternalIDs preserves the caller's requested order; stored as a
	// JSON array of strings since its length is unbounded and it is never
	// filtered on directly.
	VideoExternalIDs datatypes.JSON `gorm:"column:video_external_ids;type:jsonb;not null" json:"video_external_ids"`
	QuestionCount    int            `gorm:"column:question_count;not null" json:"question_count"`

	Questions []Question `gorm:"constraint:OnDelete:CASCADE;foreignKey:GenerationID;references:ID" json:"questions,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Generation) TableName() string { return "generations" }
