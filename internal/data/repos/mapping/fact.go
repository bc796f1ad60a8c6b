package mapping

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/aislemap-backend/internal/crowd"
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

// MergeInput is one contribution's fully-computed effect on a fact. The repo
// applies it as a single INSERT ... ON CONFLICT DO UPDATE so concurrent
// contributions for the same subject both land (deltas are arithmetic against
// the stored row, never against a value read in a previous round trip).
type MergeInput struct {
	Subject crowd.Subject
	Value   datatypes.JSON // nil for confirmations and plain reports

	Delta             float64
	InitialConfidence float64
	MinConfidence     float64
	MaxConfidence     float64

	// IncrementVerified is false for reports: they erode confidence but never
	// touch verified_count.
	IncrementVerified bool
	// OverwriteValue is true for scan/manual submissions carrying a value and
	// for reports carrying an explicit replacement.
	OverwriteValue bool
	// ResetConfidence is true for reports with a replacement value: the
	// replacement is effectively a new claim, so confidence restarts.
	ResetConfidence bool
	// BecomeDirect converts a propagated cache row into a direct fact at
	// initial confidence. True for every kind except report.
	BecomeDirect bool
}

// PriceSource is one candidate source fact for price propagation, joined with
// its store and the great-circle distance to the target store.
type PriceSource struct {
	FactID         uuid.UUID      `gorm:"column:fact_id"`
	StoreID        uuid.UUID      `gorm:"column:store_id"`
	StoreName      string         `gorm:"column:store_name"`
	Value          datatypes.JSON `gorm:"column:value"`
	Confidence     float64        `gorm:"column:confidence"`
	VerifiedCount  int            `gorm:"column:verified_count"`
	LastVerifiedAt time.Time      `gorm:"column:last_verified_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at"`
	DistanceKm     float64        `gorm:"column:distance_km"`
}

type FactRepo interface {
	Merge(dbc dbctx.Context, in MergeInput) (*types.Fact, error)

	// InsertPropagated caches a propagation result under the target subject,
	// strictly insert-if-absent: it never overwrites an existing row, direct
	// or otherwise. The returned fact is whatever row holds the subject after
	// the attempt; created reports whether this call inserted it.
	InsertPropagated(dbc dbctx.Context, fact *types.Fact) (*types.Fact, bool, error)

	GetBySubjectKey(dbc dbctx.Context, subjectKey string) (*types.Fact, error)
	ListByStore(dbc dbctx.Context, storeID uuid.UUID) ([]*types.Fact, error)

	// NearestChainPriceSource picks the propagation source among same-chain
	// stores: direct price facts for the barcode, fresh within the window,
	// nearest first, ties broken by recency then store id.
	NearestChainPriceSource(dbc dbctx.Context, q ChainSourceQuery) (*PriceSource, error)
	// LatestAnyPriceSource is the cross-chain fallback: the most recently
	// updated direct price fact for the barcode from any other store.
	LatestAnyPriceSource(dbc dbctx.Context, targetStoreID uuid.UUID, barcode string) (*PriceSource, error)
}

type ChainSourceQuery struct {
	TargetStoreID uuid.UUID
	TargetLat     float64
	TargetLon     float64
	ChainToken    string
	Barcode       string
	FreshSince    time.Time
}

type factRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactRepo(db *gorm.DB, baseLog *logger.Logger) FactRepo {
	return &factRepo{db: db, log: baseLog.With("repo", "FactRepo")}
}

func (r *factRepo) Merge(dbc dbctx.Context, in MergeInput) (*types.Fact, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}

	now := time.Now().UTC()
	row := &types.Fact{
		ID:             uuid.New(),
		SubjectKind:    in.Subject.Kind,
		SubjectKey:     in.Subject.Key(),
		StoreID:        in.Subject.StoreID,
		Value:          in.Value,
		Confidence:     in.InitialConfidence,
		VerifiedCount:  1,
		Origin:         types.OriginDirect,
		LastVerifiedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	verifiedInc := 0
	if in.IncrementVerified {
		verifiedInc = 1
	}

	assignments := map[string]interface{}{
		"confidence": gorm.Expr(
			`CASE
				WHEN ?::boolean THEN ?
				WHEN fact.origin = 'propagated' AND ?::boolean THEN ?
				ELSE LEAST(?::numeric, GREATEST(?::numeric, fact.confidence + ?))
			END`,
			in.ResetConfidence, in.InitialConfidence,
			in.BecomeDirect, in.InitialConfidence,
			in.MaxConfidence, in.MinConfidence, in.Delta,
		),
		"value": gorm.Expr(
			`CASE WHEN ?::boolean THEN EXCLUDED.value ELSE fact.value END`,
			in.OverwriteValue,
		),
		"verified_count": gorm.Expr(`fact.verified_count + ?`, verifiedInc),
		"origin": gorm.Expr(
			`CASE WHEN ?::boolean THEN 'direct' ELSE fact.origin END`,
			in.BecomeDirect,
		),
		"source_fact_id": gorm.Expr(
			`CASE WHEN ?::boolean THEN NULL ELSE fact.source_fact_id END`,
			in.BecomeDirect,
		),
		"source_store_id": gorm.Expr(
			`CASE WHEN ?::boolean THEN NULL ELSE fact.source_store_id END`,
			in.BecomeDirect,
		),
		"last_verified_at": gorm.Expr(
			`CASE WHEN ?::boolean THEN now() ELSE fact.last_verified_at END`,
			in.IncrementVerified,
		),
		"updated_at": gorm.Expr(`now()`),
	}

	err := t.WithContext(dbc.Ctx).
		Clauses(
			clause.OnConflict{
				Columns:   []clause.Column{{Name: "subject_key"}},
				DoUpdates: clause.Assignments(assignments),
			},
			clause.Returning{},
		).
		Create(row).Error
	if err != nil {
		if isRetryableSerialization(err) {
			return nil, errors.ErrConflict
		}
		return nil, err
	}
	return row, nil
}

func (r *factRepo) InsertPropagated(dbc dbctx.Context, fact *types.Fact) (*types.Fact, bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if fact.ID == uuid.Nil {
		fact.ID = uuid.New()
	}
	fact.Origin = types.OriginPropagated

	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject_key"}},
			DoNothing: true,
		}).
		Create(fact)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected > 0
	if created {
		return fact, true, nil
	}
	// Lost the race (possibly to a direct write). Re-read the winner.
	current, err := r.GetBySubjectKey(dbc, fact.SubjectKey)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func (r *factRepo) GetBySubjectKey(dbc dbctx.Context, subjectKey string) (*types.Fact, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Fact
	if err := t.WithContext(dbc.Ctx).
		Where("subject_key = ?", subjectKey).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *factRepo) ListByStore(dbc dbctx.Context, storeID uuid.UUID) ([]*types.Fact, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Fact
	if storeID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("store_id = ?", storeID).
		Order("confidence DESC, subject_key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *factRepo) NearestChainPriceSource(dbc dbctx.Context, q ChainSourceQuery) (*PriceSource, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*PriceSource
	err := t.WithContext(dbc.Ctx).Raw(`
		SELECT f.id AS fact_id, f.store_id, s.name AS store_name,
		       f.value, f.confidence, f.verified_count, f.last_verified_at, f.updated_at,
		       earth_distance(ll_to_earth(?, ?), ll_to_earth(s.latitude, s.longitude)) / 1000.0 AS distance_km
		FROM fact f
		JOIN store s ON s.id = f.store_id
		WHERE f.subject_kind = 'price'
		  AND split_part(f.subject_key, ':', 3) = ?
		  AND f.origin = 'direct'
		  AND f.store_id <> ?
		  AND f.updated_at >= ?
		  AND split_part(lower(s.name), ' ', 1) = ?
		ORDER BY distance_km ASC, f.updated_at DESC, s.id ASC
		LIMIT 1`,
		q.TargetLat, q.TargetLon, q.Barcode, q.TargetStoreID, q.FreshSince, q.ChainToken,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *factRepo) LatestAnyPriceSource(dbc dbctx.Context, targetStoreID uuid.UUID, barcode string) (*PriceSource, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*PriceSource
	err := t.WithContext(dbc.Ctx).Raw(`
		SELECT f.id AS fact_id, f.store_id, s.name AS store_name,
		       f.value, f.confidence, f.verified_count, f.last_verified_at, f.updated_at,
		       0.0 AS distance_km
		FROM fact f
		JOIN store s ON s.id = f.store_id
		WHERE f.subject_kind = 'price'
		  AND split_part(f.subject_key, ':', 3) = ?
		  AND f.origin = 'direct'
		  AND f.store_id <> ?
		ORDER BY f.updated_at DESC, s.id ASC
		LIMIT 1`,
		barcode, targetStoreID,
	).Scan(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// isRetryableSerialization matches Postgres serialization_failure (40001) and
// deadlock_detected (40P01), the two cases worth a bounded in-process retry.
func isRetryableSerialization(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "40001") || strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "deadlock detected") || strings.Contains(msg, "could not serialize")
}
