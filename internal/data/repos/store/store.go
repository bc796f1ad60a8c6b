package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

type StoreRepo interface {
	Create(dbc dbctx.Context, rows []*types.Store) ([]*types.Store, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Store, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Store, error)
	List(dbc dbctx.Context, limit int) ([]*types.Store, error)
	Exists(dbc dbctx.Context, id uuid.UUID) (bool, error)
	Update(dbc dbctx.Context, row *types.Store) error
}

type storeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoreRepo(db *gorm.DB, baseLog *logger.Logger) StoreRepo {
	return &storeRepo{db: db, log: baseLog.With("repo", "StoreRepo")}
}

func (r *storeRepo) Create(dbc dbctx.Context, rows []*types.Store) ([]*types.Store, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Store{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *storeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Store, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *storeRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Store, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Store
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *storeRepo) List(dbc dbctx.Context, limit int) ([]*types.Store, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Store
	q := t.WithContext(dbc.Ctx).Order("name ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *storeRepo) Exists(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return false, nil
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Store{}).
		Where("id = ?", id).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *storeRepo) Update(dbc dbctx.Context, row *types.Store) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}
