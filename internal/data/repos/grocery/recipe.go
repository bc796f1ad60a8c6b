package grocery

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

type RecipeRepo interface {
	Create(dbc dbctx.Context, row *types.Recipe) (*types.Recipe, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Recipe, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Recipe, error)
	Update(dbc dbctx.Context, row *types.Recipe) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type recipeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeRepo(db *gorm.DB, baseLog *logger.Logger) RecipeRepo {
	return &recipeRepo{db: db, log: baseLog.With("repo", "RecipeRepo")}
}

func (r *recipeRepo) Create(dbc dbctx.Context, row *types.Recipe) (*types.Recipe, error) {
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

func (r *recipeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Recipe, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Recipe
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *recipeRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Recipe, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Recipe
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recipeRepo) Update(dbc dbctx.Context, row *types.Recipe) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *recipeRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Recipe{}).Error
}
