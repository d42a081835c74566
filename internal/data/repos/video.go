package repos

import (
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/ytlearn/backend/internal/pkg/apperr"
	"github.com/ytlearn/backend/internal/pkg/dbctx"
	"github.com/ytlearn/backend/internal/pkg/logger"

	types "github.com/ytlearn/backend/internal/domain"
)

type VideoRepo interface {
	Insert(dbc dbctx.Context, row *types.Video) (*types.Video, error)

	GetByID(dbc dbctx.Context, id uint) (*types.Video, error)
	GetByExternalID(dbc dbctx.Context, externalID string) (*types.Video, error)
	List(dbc dbctx.Context, status string, limit, offset int) ([]*types.Video, error)

	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error

	// Delete removes a video. When cascade is false and dependent audio
	// chunks, transcriptions or questions exist, it returns a
	// *apperr.DependencyViolationError naming them instead of deleting
	// anything. When cascade is true it also removes those dependents (questions
	// are matched by their denormalized video_external_id, since they carry
	// no foreign key to videos) and best-effort deletes the audio files the
	// video and its chunks reference on disk.
	Delete(dbc dbctx.Context, id uint, cascade bool) error
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	return &videoRepo{db: db, log: baseLog.With("repo", "VideoRepo")}
}

func (r *videoRepo) Insert(dbc dbctx.Context, row *types.Video) (*types.Video, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	existing, err := r.GetByExternalID(dbc, row.ExternalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.NewDuplicateError("video", row.ExternalID)
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *videoRepo) GetByID(dbc dbctx.Context, id uint) (*types.Video, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Video
	err := t.WithContext(dbc.Ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *videoRepo) GetByExternalID(dbc dbctx.Context, externalID string) (*types.Video, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Video
	err := t.WithContext(dbc.Ctx).Where("external_id = ?", externalID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *videoRepo) List(dbc dbctx.Context, status string, limit, offset int) ([]*types.Video, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var out []*types.Video
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *videoRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Model(&types.Video{}).Where("id = ?", id).Updates(updates).Error
}

func (r *videoRepo) Delete(dbc dbctx.Context, id uint, cascade bool) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	ctx := dbc.Ctx

	var video types.Video
	if err := t.WithContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFoundError("video", fmt.Sprintf("%d", id))
		}
		return err
	}

	var chunks []types.AudioChunk
	if err := t.WithContext(ctx).Select("id", "file_path").Where("video_id = ?", id).Find(&chunks).Error; err != nil {
		return err
	}

	var transcriptions []types.Transcription
	if err := t.WithContext(ctx).Select("id").Where("video_id = ?", id).Find(&transcriptions).Error; err != nil {
		return err
	}

	var questions []types.Question
	if err := t.WithContext(ctx).Select("id").Where("video_external_id = ?", video.ExternalID).Find(&questions).Error; err != nil {
		return err
	}

	if !cascade {
		var dependents []apperr.DependentResource
		for _, c := range chunks {
			dependents = append(dependents, apperr.DependentResource{Type: "audio_chunk", ID: c.ID})
		}
		for _, tr := range transcriptions {
			dependents = append(dependents, apperr.DependentResource{Type: "transcription", ID: tr.ID})
		}
		for _, q := range questions {
			dependents = append(dependents, apperr.DependentResource{Type: "question", ID: q.ID})
		}
		if len(dependents) > 0 {
			return apperr.NewDependencyViolationError("video has dependent resources", dependents)
		}
	}

	err := t.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(chunks) > 0 {
			if err := tx.Unscoped().Where("video_id = ?", id).Delete(&types.AudioChunk{}).Error; err != nil {
				return err
			}
		}
		if len(transcriptions) > 0 {
			if err := tx.Unscoped().Where("video_id = ?", id).Delete(&types.Transcription{}).Error; err != nil {
				return err
			}
		}
		if len(questions) > 0 {
			if err := tx.Unscoped().Where("video_external_id = ?", video.ExternalID).Delete(&types.Question{}).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Where("id = ?", id).Delete(&types.Video{}).Error
	})
	if err != nil {
		return err
	}

	r.removeFilesBestEffort(video, chunks)
	return nil
}

// removeFilesBestEffort deletes the video's audio file and any chunk files
// after their rows are gone. Failures are logged, not returned: the row
// delete already committed and the caller has no action left to retry.
func (r *videoRepo) removeFilesBestEffort(video types.Video, chunks []types.AudioChunk) {
	if video.AudioPath != nil {
		if err := os.Remove(*video.AudioPath); err != nil && !os.IsNotExist(err) {
			r.log.Warn("failed to delete video audio file", "video_id", video.ExternalID, "path", *video.AudioPath, "error", err)
		}
	}
	for _, c := range chunks {
		if err := os.Remove(c.FilePath); err != nil && !os.IsNotExist(err) {
			r.log.Warn("failed to delete audio chunk file", "video_id", video.ExternalID, "path", c.FilePath, "error", err)
		}
	}
}
