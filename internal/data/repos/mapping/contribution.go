package mapping

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

// ContributionRepo is the append-only ledger. There are deliberately no
// update or delete methods.
type ContributionRepo interface {
	Append(dbc dbctx.Context, row *types.Contribution) (*types.Contribution, error)

	ListBySubject(dbc dbctx.Context, subjectKey string, limit int) ([]*types.Contribution, error)

	// LastConfirmAt returns when the contributor last confirmed this subject,
	// or nil. Backs the 24h confirmation cooldown.
	LastConfirmAt(dbc dbctx.Context, contributorID uuid.UUID, subjectKey string) (*time.Time, error)

	CountByContributor(dbc dbctx.Context, contributorID uuid.UUID) (int64, error)
	CountDistinctStores(dbc dbctx.Context, contributorID uuid.UUID) (int64, error)
	SumPointsByContributor(dbc dbctx.Context, contributorID uuid.UUID) (int64, error)
	SumPointsAll(dbc dbctx.Context) ([]ContributorPoints, error)
}

type ContributorPoints struct {
	ContributorID uuid.UUID `gorm:"column:contributor_id"`
	Points        int64     `gorm:"column:points"`
}

type contributionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContributionRepo(db *gorm.DB, baseLog *logger.Logger) ContributionRepo {
	return &contributionRepo{db: db, log: baseLog.With("repo", "ContributionRepo")}
}

func (r *contributionRepo) Append(dbc dbctx.Context, row *types.Contribution) (*types.Contribution, error) {
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

func (r *contributionRepo) ListBySubject(dbc dbctx.Context, subjectKey string, limit int) ([]*types.Contribution, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Contribution
	q := t.WithContext(dbc.Ctx).
		Where("subject_key = ?", subjectKey).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contributionRepo) LastConfirmAt(dbc dbctx.Context, contributorID uuid.UUID, subjectKey string) (*time.Time, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Contribution
	if err := t.WithContext(dbc.Ctx).
		Where("contributor_id = ? AND subject_key = ? AND kind = ?", contributorID, subjectKey, types.ContributionConfirm).
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	ts := out[0].CreatedAt
	return &ts, nil
}

func (r *contributionRepo) CountByContributor(dbc dbctx.Context, contributorID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.Contribution{}).
		Where("contributor_id = ?", contributorID).
		Count(&n).Error
	return n, err
}

func (r *contributionRepo) CountDistinctStores(dbc dbctx.Context, contributorID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.Contribution{}).
		Where("contributor_id = ?", contributorID).
		Distinct("store_id").
		Count(&n).Error
	return n, err
}

func (r *contributionRepo) SumPointsByContributor(dbc dbctx.Context, contributorID uuid.UUID) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n *int64
	err := t.WithContext(dbc.Ctx).
		Model(&types.Contribution{}).
		Where("contributor_id = ?", contributorID).
		Select("SUM(points_awarded)").
		Scan(&n).Error
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}

func (r *contributionRepo) SumPointsAll(dbc dbctx.Context) ([]ContributorPoints, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []ContributorPoints
	err := t.WithContext(dbc.Ctx).
		Model(&types.Contribution{}).
		Where("contributor_id IS NOT NULL").
		Select("contributor_id, SUM(points_awarded) AS points").
		Group("contributor_id").
		Scan(&out).Error
	return out, err
}
