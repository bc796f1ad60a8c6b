package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/yungbote/aislemap-backend/internal/clients/redis"
	"github.com/yungbote/aislemap-backend/internal/data/repos"
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
)

// In-memory doubles for the repo interfaces. fakeFactRepo mirrors the
// conditional-upsert arithmetic of the real merge so service tests exercise
// the same transitions the SQL applies.

type fakeFactRepo struct {
	facts map[string]*types.Fact

	// conflictsRemaining makes the next N merges fail with ErrConflict.
	conflictsRemaining int

	chainSource    *repos.PriceSource
	fallbackSource *repos.PriceSource

	chainQueries []repos.ChainSourceQuery
}

func newFakeFactRepo() *fakeFactRepo {
	return &fakeFactRepo{facts: map[string]*types.Fact{}}
}

func (r *fakeFactRepo) Merge(_ dbctx.Context, in repos.MergeInput) (*types.Fact, error) {
	if r.conflictsRemaining > 0 {
		r.conflictsRemaining--
		return nil, errors.ErrConflict
	}
	now := time.Now().UTC()
	key := in.Subject.Key()
	f, ok := r.facts[key]
	if !ok {
		f = &types.Fact{
			ID:             uuid.New(),
			SubjectKind:    in.Subject.Kind,
			SubjectKey:     key,
			StoreID:        in.Subject.StoreID,
			Value:          in.Value,
			Confidence:     in.InitialConfidence,
			VerifiedCount:  1,
			Origin:         types.OriginDirect,
			LastVerifiedAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		r.facts[key] = f
		cp := *f
		return &cp, nil
	}

	switch {
	case in.ResetConfidence:
		f.Confidence = in.InitialConfidence
	case f.Origin == types.OriginPropagated && in.BecomeDirect:
		f.Confidence = in.InitialConfidence
	default:
		c := f.Confidence + in.Delta
		if c < in.MinConfidence {
			c = in.MinConfidence
		}
		if c > in.MaxConfidence {
			c = in.MaxConfidence
		}
		f.Confidence = c
	}
	if in.OverwriteValue {
		f.Value = in.Value
	}
	if in.IncrementVerified {
		f.VerifiedCount++
		f.LastVerifiedAt = now
	}
	if in.BecomeDirect {
		f.Origin = types.OriginDirect
		f.SourceFactID = nil
		f.SourceStoreID = nil
	}
	f.UpdatedAt = now
	cp := *f
	return &cp, nil
}

func (r *fakeFactRepo) InsertPropagated(_ dbctx.Context, fact *types.Fact) (*types.Fact, bool, error) {
	if existing, ok := r.facts[fact.SubjectKey]; ok {
		cp := *existing
		return &cp, false, nil
	}
	if fact.ID == uuid.Nil {
		fact.ID = uuid.New()
	}
	fact.Origin = types.OriginPropagated
	now := time.Now().UTC()
	fact.CreatedAt = now
	fact.UpdatedAt = now
	r.facts[fact.SubjectKey] = fact
	cp := *fact
	return &cp, true, nil
}

func (r *fakeFactRepo) GetBySubjectKey(_ dbctx.Context, subjectKey string) (*types.Fact, error) {
	f, ok := r.facts[subjectKey]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFactRepo) ListByStore(_ dbctx.Context, storeID uuid.UUID) ([]*types.Fact, error) {
	var out []*types.Fact
	for _, f := range r.facts {
		if f.StoreID == storeID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeFactRepo) NearestChainPriceSource(_ dbctx.Context, q repos.ChainSourceQuery) (*repos.PriceSource, error) {
	r.chainQueries = append(r.chainQueries, q)
	return r.chainSource, nil
}

func (r *fakeFactRepo) LatestAnyPriceSource(_ dbctx.Context, _ uuid.UUID, _ string) (*repos.PriceSource, error) {
	return r.fallbackSource, nil
}

type fakeContributionRepo struct {
	rows      []*types.Contribution
	appendErr error
}

func (r *fakeContributionRepo) Append(_ dbctx.Context, row *types.Contribution) (*types.Contribution, error) {
	if r.appendErr != nil {
		return nil, r.appendErr
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, row)
	return row, nil
}

func (r *fakeContributionRepo) ListBySubject(_ dbctx.Context, subjectKey string, limit int) ([]*types.Contribution, error) {
	var out []*types.Contribution
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].SubjectKey == subjectKey {
			out = append(out, r.rows[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeContributionRepo) LastConfirmAt(_ dbctx.Context, contributorID uuid.UUID, subjectKey string) (*time.Time, error) {
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if row.Kind != types.ContributionConfirm || row.SubjectKey != subjectKey {
			continue
		}
		if row.ContributorID != nil && *row.ContributorID == contributorID {
			ts := row.CreatedAt
			return &ts, nil
		}
	}
	return nil, nil
}

func (r *fakeContributionRepo) CountByContributor(_ dbctx.Context, contributorID uuid.UUID) (int64, error) {
	var n int64
	for _, row := range r.rows {
		if row.ContributorID != nil && *row.ContributorID == contributorID {
			n++
		}
	}
	return n, nil
}

func (r *fakeContributionRepo) CountDistinctStores(_ dbctx.Context, contributorID uuid.UUID) (int64, error) {
	seen := map[uuid.UUID]bool{}
	for _, row := range r.rows {
		if row.ContributorID != nil && *row.ContributorID == contributorID {
			seen[row.StoreID] = true
		}
	}
	return int64(len(seen)), nil
}

func (r *fakeContributionRepo) SumPointsByContributor(_ dbctx.Context, contributorID uuid.UUID) (int64, error) {
	var n int64
	for _, row := range r.rows {
		if row.ContributorID != nil && *row.ContributorID == contributorID {
			n += int64(row.PointsAwarded)
		}
	}
	return n, nil
}

func (r *fakeContributionRepo) SumPointsAll(_ dbctx.Context) ([]repos.ContributorPoints, error) {
	sums := map[uuid.UUID]int64{}
	var order []uuid.UUID
	for _, row := range r.rows {
		if row.ContributorID == nil {
			continue
		}
		if _, ok := sums[*row.ContributorID]; !ok {
			order = append(order, *row.ContributorID)
		}
		sums[*row.ContributorID] += int64(row.PointsAwarded)
	}
	out := make([]repos.ContributorPoints, 0, len(order))
	for _, id := range order {
		out = append(out, repos.ContributorPoints{ContributorID: id, Points: sums[id]})
	}
	return out, nil
}

type bonusKey struct{ contributor, store uuid.UUID }

type fakeBonusRepo struct {
	awards   map[bonusKey]int
	awardErr error
}

func newFakeBonusRepo() *fakeBonusRepo { return &fakeBonusRepo{awards: map[bonusKey]int{}} }

func (r *fakeBonusRepo) AwardIfFirst(_ dbctx.Context, contributorID, storeID uuid.UUID, points int) (bool, error) {
	if r.awardErr != nil {
		return false, r.awardErr
	}
	k := bonusKey{contributorID, storeID}
	if _, ok := r.awards[k]; ok {
		return false, nil
	}
	r.awards[k] = points
	return true, nil
}

func (r *fakeBonusRepo) SumPoints(_ dbctx.Context, contributorID uuid.UUID) (int64, error) {
	var n int64
	for k, pts := range r.awards {
		if k.contributor == contributorID {
			n += int64(pts)
		}
	}
	return n, nil
}

func (r *fakeBonusRepo) CountForPair(_ dbctx.Context, contributorID, storeID uuid.UUID) (int64, error) {
	if _, ok := r.awards[bonusKey{contributorID, storeID}]; ok {
		return 1, nil
	}
	return 0, nil
}

type badgeKey struct {
	contributor uuid.UUID
	code        string
}

type fakeBadgeRepo struct {
	held map[badgeKey]bool
}

func newFakeBadgeRepo() *fakeBadgeRepo { return &fakeBadgeRepo{held: map[badgeKey]bool{}} }

func (r *fakeBadgeRepo) Award(_ dbctx.Context, contributorID uuid.UUID, code string) (bool, error) {
	k := badgeKey{contributorID, code}
	if r.held[k] {
		return false, nil
	}
	r.held[k] = true
	return true, nil
}

func (r *fakeBadgeRepo) ListByContributor(_ dbctx.Context, contributorID uuid.UUID) ([]*types.Badge, error) {
	var out []*types.Badge
	for k := range r.held {
		if k.contributor == contributorID {
			out = append(out, &types.Badge{ContributorID: k.contributor, Code: k.code})
		}
	}
	return out, nil
}

type fakeStoreRepo struct {
	stores map[uuid.UUID]*types.Store
}

func newFakeStoreRepo(stores ...*types.Store) *fakeStoreRepo {
	r := &fakeStoreRepo{stores: map[uuid.UUID]*types.Store{}}
	for _, s := range stores {
		r.stores[s.ID] = s
	}
	return r
}

func (r *fakeStoreRepo) Create(_ dbctx.Context, rows []*types.Store) ([]*types.Store, error) {
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		r.stores[row.ID] = row
	}
	return rows, nil
}

func (r *fakeStoreRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (r *fakeStoreRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.Store, error) {
	var out []*types.Store
	for _, id := range ids {
		if s, ok := r.stores[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeStoreRepo) List(_ dbctx.Context, _ int) ([]*types.Store, error) {
	var out []*types.Store
	for _, s := range r.stores {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeStoreRepo) Exists(_ dbctx.Context, id uuid.UUID) (bool, error) {
	_, ok := r.stores[id]
	return ok, nil
}

func (r *fakeStoreRepo) Update(_ dbctx.Context, row *types.Store) error {
	r.stores[row.ID] = row
	return nil
}

type fakeLeaderboard struct {
	scores  map[uuid.UUID]int64
	incrErr error
}

func newFakeLeaderboard() *fakeLeaderboard { return &fakeLeaderboard{scores: map[uuid.UUID]int64{}} }

func (l *fakeLeaderboard) IncrBy(_ context.Context, contributorID uuid.UUID, points int64) error {
	if l.incrErr != nil {
		return l.incrErr
	}
	l.scores[contributorID] += points
	return nil
}

func (l *fakeLeaderboard) Set(_ context.Context, contributorID uuid.UUID, points int64) error {
	l.scores[contributorID] = points
	return nil
}

func (l *fakeLeaderboard) Top(_ context.Context, n int64) ([]redisclient.Entry, error) {
	var out []redisclient.Entry
	for id, pts := range l.scores {
		out = append(out, redisclient.Entry{ContributorID: id, Points: pts})
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Points > out[i].Points {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if int64(len(out)) > n {
		out = out[:n]
	}
	return out, nil
}

func (l *fakeLeaderboard) Clear(_ context.Context) error {
	l.scores = map[uuid.UUID]int64{}
	return nil
}

func (l *fakeLeaderboard) Close() error { return nil }

var errFakeDown = fmt.Errorf("fake dependency down")
