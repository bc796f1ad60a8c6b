package mapping

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

type ExplorerBonusRepo interface {
	// AwardIfFirst inserts the (contributor, store) bonus row if absent. The
	// unique index makes this the concurrency guard: exactly one of two
	// racing submissions sees awarded=true.
	AwardIfFirst(dbc dbctx.Context, contributorID, storeID uuid.UUID, points int) (bool, error)
	SumPoints(dbc dbctx.Context, contributorID uuid.UUID) (int64, error)
	CountForPair(dbc dbctx.Context, contributorID, storeID uuid.UUID) (int64, error)
}

type explorerBonusRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExplorerBonusRepo(db *gorm.DB, baseLog *logger.Logger) ExplorerBonusRepo {
	return &explorerBonusRepo{db: db, log: baseLog.With("repo", "ExplorerBonusRepo")}
}

func (r *explorerBonusRepo) AwardIfFirst(dbc dbctx.Context, contributorID, storeID uuid.UUID, points int) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	row := &types.ExplorerBonus{
		ID:            uuid.New(),
		ContributorID: contributorID,
		StoreID:       storeID,
		Points:        points,
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contributor_id"}, {Name: "store_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *explorerBonusRepo) SumPoints(dbc dbctx.Context, contributorID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n *int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.ExplorerBonus{}).
		Where("contributor_id = ?", contributorID).
		Select("SUM(points)").
		Scan(&n).Error
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}

func (r *explorerBonusRepo) CountForPair(dbc dbctx.Context, contributorID, storeID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.ExplorerBonus{}).
		Where("contributor_id = ? AND store_id = ?", contributorID, storeID).
		Count(&n).Error
	return n, err
}

type BadgeRepo interface {
	// Award inserts the badge if not already held; holding it is a no-op,
	// not an error.
	Award(dbc dbctx.Context, contributorID uuid.UUID, code string) (bool, error)
	ListByContributor(dbc dbctx.Context, contributorID uuid.UUID) ([]*types.Badge, error)
}

type badgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBadgeRepo(db *gorm.DB, baseLog *logger.Logger) BadgeRepo {
	return &badgeRepo{db: db, log: baseLog.With("repo", "BadgeRepo")}
}

func (r *badgeRepo) Award(dbc dbctx.Context, contributorID uuid.UUID, code string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	row := &types.Badge{
		ID:            uuid.New(),
		ContributorID: contributorID,
		Code:          code,
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "contributor_id"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *badgeRepo) ListByContributor(dbc dbctx.Context, contributorID uuid.UUID) ([]*types.Badge, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Badge
	if err := t.WithContext(dbc.Ctx).
		Where("contributor_id = ?", contributorID).
		Order("awarded_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
