package grocery

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

type MealPlanRepo interface {
	Create(dbc dbctx.Context, row *types.MealPlanEntry) (*types.MealPlanEntry, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MealPlanEntry, error)
	ListByUserRange(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.MealPlanEntry, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type mealPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMealPlanRepo(db *gorm.DB, baseLog *logger.Logger) MealPlanRepo {
	return &mealPlanRepo{db: db, log: baseLog.With("repo", "MealPlanRepo")}
}

func (r *mealPlanRepo) Create(dbc dbctx.Context, row *types.MealPlanEntry) (*types.MealPlanEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *mealPlanRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MealPlanEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.MealPlanEntry
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *mealPlanRepo) ListByUserRange(dbc dbctx.Context, userID uuid.UUID, from, to time.Time) ([]*types.MealPlanEntry, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.MealPlanEntry
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND planned_for >= ? AND planned_for <= ?", userID, from, to).
		Order("planned_for ASC, slot ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mealPlanRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.MealPlanEntry{}).Error
}
