package domain

import "time"

type QuestionDifficulty string

const (
	QuestionDifficultyEasy   QuestionDifficulty = "easy"
	QuestionDifficultyMedium QuestionDifficulty = "medium"
	QuestionDifficultyHard   QuestionDifficulty = "hard"
)

type QuestionType string

const (
	QuestionTypeFactual    QuestionType = "factual"
	QuestionTypeConceptual QuestionType = "conceptual"
	QuestionTypeAnalytical QuestionType = "analytical"
)

// Question belongs to exactly one Generation. order_index is unique within
// a Generation and forms a 0-based contiguous sequence.
type Question struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	GenerationID uint        `gorm:"column:generation_id;not null;index:idx_question_generation_order,unique,priority:1" json:"generation_id"`
	Generation   *Generation `gorm:"constraint:OnDelete:CASCADE;foreignKey:GenerationID;references:ID" json:"-"`

	// VideoExternalID is denormalized from the source video for filtering
	// without a join.
	VideoExternalID string `gorm:"column:video_external_id;not null;index" json:"video_external_id"`

	QuestionText string  `gorm:"column:question_text;not null" json:"question_text"`
	Answer       *string `gorm:"column:answer" json:"answer,omitempty"`
	Context      *string `gorm:"column:context" json:"context,omitempty"`
	Difficulty   *string `gorm:"column:difficulty" json:"difficulty,omitempty"`
	QuestionType *string `gorm:"column:question_type" json:"question_type,omitempty"`

	OrderIndex int `gorm:"column:order_index;not null;index:idx_question_generation_order,unique,priority:2" json:"order_index"`

	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (Question) TableName() string { return "questions" }

func IsValidDifficulty(s string) bool {
	switch QuestionDifficulty(s) {
	case QuestionDifficultyEasy, QuestionDifficultyMedium, QuestionDifficultyHard:
		return true
	default:
		return false
	}
}

func IsValidQuestionType(s string) bool {
	switch QuestionType(s) {
	case QuestionTypeFactual, QuestionTypeConceptual, QuestionTypeAnalytical:
		return true
	default:
		return false
	}
}
