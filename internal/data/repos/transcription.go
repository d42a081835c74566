package repos

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
	"github.com/ytlearn/backend/internal/pkg/logger"

	types "github.com/ytlearn/backend/internal/domain"
)

type TranscriptionRepo interface {
	// Insert validates the video exists and, when row.Vector is non-nil,
	// that it has exactly embeddingDim entries, before writing the row.
	Insert(dbc dbctx.Context, row *types.Transcription, embeddingDim int) (*types.Transcription, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Transcription, error)
	GetLatestByVideoID(dbc dbctx.Context, videoID uint) (*types.Transcription, error)
	List(dbc dbctx.Context, videoID uint, limit, offset int) ([]*types.Transcription, error)
	Delete(dbc dbctx.Context, id uint) error
}

type transcriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptionRepo(db *gorm.DB, baseLog *logger.Logger) TranscriptionRepo {
	return &transcriptionRepo{db: db, log: baseLog.With("repo", "TranscriptionRepo")}
}

func (r *transcriptionRepo) Insert(dbc dbctx.Context, row *types.Transcription, embeddingDim int) (*types.Transcription, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}

	var videoCount int64
	if err := t.WithContext(dbc.Ctx).Model(&types.Video{}).Where("id = ?", row.VideoID).Count(&videoCount).Error; err != nil {
		return nil, err
	}
	if videoCount == 0 {
		return nil, apperr.NewNotFoundError("video", fmt.Sprintf("%d", row.VideoID))
	}

	if row.Vector != nil {
		if n := len(row.Vector.Slice()); n != embeddingDim {
			return nil, apperr.NewValidationError("embedding has %d dimensions, expected %d", n, embeddingDim)
		}
	}

	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *transcriptionRepo) GetByID(dbc dbctx.Context, id uint) (*types.Transcription, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Transcription
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *transcriptionRepo) GetLatestByVideoID(dbc dbctx.Context, videoID uint) (*types.Transcription, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Transcription
	err := t.WithContext(dbc.Ctx).
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *transcriptionRepo) List(dbc dbctx.Context, videoID uint, limit, offset int) ([]*types.Transcription, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Order("created_at DESC")
	if videoID != 0 {
		q = q.Where("video_id = ?", videoID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var out []*types.Transcription
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *transcriptionRepo) Delete(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("id = ?", id).Delete(&types.Transcription{}).Error
}
