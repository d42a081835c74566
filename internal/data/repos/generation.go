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

type GenerationRepo interface {
	// Insert creates a Generation and its Questions (order_index assigned
	// by caller) in one transaction.
	Insert(dbc dbctx.Context, gen *types.Generation) (*types.Generation, error)

	GetByID(dbc dbctx.Context, id uint, withQuestions bool) (*types.Generation, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Generation, error)
	Delete(dbc dbctx.Context, id uint) error

	UpdateQuestionFields(dbc dbctx.Context, generationID, questionID uint, updates map[string]interface{}) error
	DeleteQuestion(dbc dbctx.Context, generationID, questionID uint) error

	// ReorderQuestions assigns order_index 0..N-1 following orderedQuestionIDs.
	// orderedQuestionIDs must be exactly the set of question IDs currently
	// belonging to generationID, no more, no fewer; otherwise it returns a
	// *apperr.ValidationError and makes no changes.
	ReorderQuestions(dbc dbctx.Context, generationID uint, orderedQuestionIDs []uint) error
}

type generationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRepo {
	return &generationRepo{db: db, log: baseLog.With("repo", "GenerationRepo")}
}

func (r *generationRepo) Insert(dbc dbctx.Context, gen *types.Generation) (*types.Generation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Create(gen).Error; err != nil {
		return nil, err
	}
	return gen, nil
}

func (r *generationRepo) GetByID(dbc dbctx.Context, id uint, withQuestions bool) (*types.Generation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx)
	if withQuestions {
		q = q.Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		})
	}
	var row types.Generation
	err := q.Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *generationRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Generation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var out []*types.Generation
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *generationRepo) Delete(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	// Question rows carry no real foreign key (FK creation is disabled at
	// migration time), so they are removed explicitly with the generation.
	return t.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("generation_id = ?", id).Delete(&types.Question{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", id).Delete(&types.Generation{}).Error
	})
}

func (r *generationRepo) UpdateQuestionFields(dbc dbctx.Context, generationID, questionID uint, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Question{}).
		Where("id = ? AND generation_id = ?", questionID, generationID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFoundError("question", fmt.Sprintf("%d", questionID))
	}
	return nil
}

func (r *generationRepo) DeleteQuestion(dbc dbctx.Context, generationID, questionID uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Unscoped().
		Where("id = ? AND generation_id = ?", questionID, generationID).
		Delete(&types.Question{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFoundError("question", fmt.Sprintf("%d", questionID))
	}
	return nil
}

func (r *generationRepo) ReorderQuestions(dbc dbctx.Context, generationID uint, orderedQuestionIDs []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	ctx := dbc.Ctx

	return t.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []types.Question
		if err := tx.Select("id").Where("generation_id = ?", generationID).Find(&existing).Error; err != nil {
			return err
		}
		existingSet := make(map[uint]bool, len(existing))
		for _, q := range existing {
			existingSet[q.ID] = true
		}

		if len(orderedQuestionIDs) != len(existing) {
			return apperr.NewValidationError(
				"reorder list has %d ids, generation has %d questions",
				len(orderedQuestionIDs), len(existing),
			)
		}
		seen := make(map[uint]bool, len(orderedQuestionIDs))
		for _, id := range orderedQuestionIDs {
			if !existingSet[id] {
				return apperr.NewValidationError("question %d does not belong to generation %d", id, generationID)
			}
			if seen[id] {
				return apperr.NewValidationError("question %d appears more than once in reorder list", id)
			}
			seen[id] = true
		}

		// order_index is enforced by a non-deferrable unique index on
		// (generation_id, order_index), so writing final positions directly
		// can collide with a row that hasn't moved yet (e.g. reordering
		// [0,1,2] to [2,0,1] tries to write order_index=0 for id at position
		// 2 while the original order_index=0 row is still unmoved). Stage
		// every row through a negative offset first so no intermediate value
		// can collide with a final value, then assign the real indices.
		offset := len(orderedQuestionIDs)
		for idx, id := range orderedQuestionIDs {
			if err := tx.Model(&types.Question{}).
				Where("id = ? AND generation_id = ?", id, generationID).
				Update("order_index", -(idx + 1 + offset)).Error; err != nil {
				return err
			}
		}
		for idx, id := range orderedQuestionIDs {
			if err := tx.Model(&types.Question{}).
				Where("id = ? AND generation_id = ?", id, generationID).
				Update("order_index", idx).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
