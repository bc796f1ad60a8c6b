package grocery

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

type ShoppingListRepo interface {
	Create(dbc dbctx.Context, row *types.ShoppingList) (*types.ShoppingList, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ShoppingList, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ShoppingList, error)
	Update(dbc dbctx.Context, row *types.ShoppingList) error
	Delete(dbc dbctx.Context, id uuid.UUID) error

	AddItem(dbc dbctx.Context, row *types.ShoppingListItem) (*types.ShoppingListItem, error)
	ListItems(dbc dbctx.Context, listID uuid.UUID) ([]*types.ShoppingListItem, error)
	UpdateItem(dbc dbctx.Context, row *types.ShoppingListItem) error
	DeleteItem(dbc dbctx.Context, id uuid.UUID) error
}

type shoppingListRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShoppingListRepo(db *gorm.DB, baseLog *logger.Logger) ShoppingListRepo {
	return &shoppingListRepo{db: db, log: baseLog.With("repo", "ShoppingListRepo")}
}

func (r *shoppingListRepo) Create(dbc dbctx.Context, row *types.ShoppingList) (*types.ShoppingList, error) {
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

func (r *shoppingListRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ShoppingList, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.ShoppingList
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *shoppingListRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.ShoppingList, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ShoppingList
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *shoppingListRepo) Update(dbc dbctx.Context, row *types.ShoppingList) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *shoppingListRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if err := t.WithContext(dbc.Ctx).Where("list_id = ?", id).Delete(&types.ShoppingListItem{}).Error; err != nil {
		return err
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.ShoppingList{}).Error
}

func (r *shoppingListRepo) AddItem(dbc dbctx.Context, row *types.ShoppingListItem) (*types.ShoppingListItem, error) {
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

func (r *shoppingListRepo) ListItems(dbc dbctx.Context, listID uuid.UUID) ([]*types.ShoppingListItem, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ShoppingListItem
	if err := t.WithContext(dbc.Ctx).
		Where("list_id = ?", listID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *shoppingListRepo) UpdateItem(dbc dbctx.Context, row *types.ShoppingListItem) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *shoppingListRepo) DeleteItem(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.ShoppingListItem{}).Error
}
