package repos

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ytlearn/backend/internal/pkg/dbctx"
	"github.com/ytlearn/backend/internal/pkg/logger"

	types "github.com/ytlearn/backend/internal/domain"
)

type AudioChunkRepo interface {
	Create(dbc dbctx.Context, rows []*types.AudioChunk) ([]*types.AudioChunk, error)
	GetByVideoID(dbc dbctx.Context, videoID uint) ([]*types.AudioChunk, error)
	CountByVideoID(dbc dbctx.Context, videoID uint) (int64, error)
	DeleteByVideoID(dbc dbctx.Context, videoID uint) error
}

type audioChunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAudioChunkRepo(db *gorm.DB, baseLog *logger.Logger) AudioChunkRepo {
	return &audioChunkRepo{db: db, log: baseLog.With("repo", "AudioChunkRepo")}
}

func (r *audioChunkRepo) Create(dbc dbctx.Context, rows []*types.AudioChunk) ([]*types.AudioChunk, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.AudioChunk{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *audioChunkRepo) GetByVideoID(dbc dbctx.Context, videoID uint) ([]*types.AudioChunk, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.AudioChunk
	err := t.WithContext(dbc.Ctx).
		Where("video_id = ?", videoID).
		Order("chunk_index ASC").
		Find(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *audioChunkRepo) CountByVideoID(dbc dbctx.Context, videoID uint) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).Model(&types.AudioChunk{}).Where("video_id = ?", videoID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *audioChunkRepo) DeleteByVideoID(dbc dbctx.Context, videoID uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Unscoped().Where("video_id = ?", videoID).Delete(&types.AudioChunk{}).Error
}
