package repos

import (
	"gorm.io/gorm"

	"github.com/ytlearn/backend/internal/pkg/logger"
)

// Store bundles every repository the pipeline depends on.
type Store struct {
	Video         VideoRepo
	AudioChunk    AudioChunkRepo
	Transcription TranscriptionRepo
	Generation    GenerationRepo
}

func NewStore(db *gorm.DB, baseLog *logger.Logger) Store {
	return Store{
		Video:         NewVideoRepo(db, baseLog),
		AudioChunk:    NewAudioChunkRepo(db, baseLog),
		Transcription: NewTranscriptionRepo(db, baseLog),
		Generation:    NewGenerationRepo(db, baseLog),
	}
}
