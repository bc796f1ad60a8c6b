package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	redisclient "github.com/yungbote/aislemap-backend/internal/clients/redis"
	"github.com/yungbote/aislemap-backend/internal/crowd"
	"github.com/yungbote/aislemap-backend/internal/data/repos"
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

// Badge thresholds, checked after every accepted contribution. Awards are
// insert-if-absent, so re-crossing a threshold is a no-op.
const (
	BadgeFirstSteps = "first_steps"
	BadgeMapper10   = "mapper_10"
	BadgeMapper50   = "mapper_50"
	BadgeScout5     = "scout_5"
)

// SubmitInput is one contribution as it arrives from a client. Value is
// required for scan/manual, optional for report (an explicit replacement
// claim), and must be absent for confirm.
type SubmitInput struct {
	ContributorID uuid.UUID
	Kind          crowd.Kind
	Subject       crowd.Subject
	Value         crowd.Value
	HasEvidence   bool
}

type SubmitResult struct {
	Fact          *types.Fact
	PointsAwarded int
	BonusAwarded  bool
	NewBadges     []string

	// PointsPending is set when the fact merge and ledger append committed but
	// a points-side write (bonus, badge, leaderboard) failed. The contribution
	// itself is never rolled back for reward bookkeeping.
	PointsPending bool
}

type ContributionService interface {
	Submit(dbc dbctx.Context, in SubmitInput) (*SubmitResult, error)
	History(dbc dbctx.Context, subjectKey string, limit int) ([]*types.Contribution, error)
}

type contributionService struct {
	cfg         crowd.Config
	log         *logger.Logger
	factRepo    repos.FactRepo
	contribRepo repos.ContributionRepo
	bonusRepo   repos.ExplorerBonusRepo
	badgeRepo   repos.BadgeRepo
	storeRepo   repos.StoreRepo
	leaderboard redisclient.Leaderboard // optional
}

func NewContributionService(
	cfg crowd.Config,
	log *logger.Logger,
	factRepo repos.FactRepo,
	contribRepo repos.ContributionRepo,
	bonusRepo repos.ExplorerBonusRepo,
	badgeRepo repos.BadgeRepo,
	storeRepo repos.StoreRepo,
	leaderboard redisclient.Leaderboard,
) ContributionService {
	return &contributionService{
		cfg:         cfg,
		log:         log.With("service", "ContributionService"),
		factRepo:    factRepo,
		contribRepo: contribRepo,
		bonusRepo:   bonusRepo,
		badgeRepo:   badgeRepo,
		storeRepo:   storeRepo,
		leaderboard: leaderboard,
	}
}

func (s *contributionService) Submit(dbc dbctx.Context, in SubmitInput) (*SubmitResult, error) {
	if in.ContributorID == uuid.Nil {
		return nil, errors.Validationf("a contributor is required")
	}
	if in.Kind == crowd.KindPropagation {
		return nil, errors.Validationf("propagation entries are system-generated")
	}
	if _, err := crowd.ParseKind(string(in.Kind)); err != nil {
		return nil, err
	}
	if err := in.Subject.Validate(); err != nil {
		return nil, err
	}

	var encoded datatypes.JSON
	switch {
	case in.Kind.CarriesValue():
		raw, err := crowd.EncodeValue(in.Subject.Kind, in.Value)
		if err != nil {
			return nil, err
		}
		encoded = raw
	case in.Kind == crowd.KindReport && in.Value != nil:
		// A report may carry a replacement claim.
		raw, err := crowd.EncodeValue(in.Subject.Kind, in.Value)
		if err != nil {
			return nil, err
		}
		encoded = raw
	case in.Value != nil:
		return nil, errors.Validationf("%s contributions do not carry a value", in.Kind)
	}

	ok, err := s.storeRepo.Exists(dbc, in.Subject.StoreID)
	if err != nil {
		return nil, errors.Storagef("checking store: %v", err)
	}
	if !ok {
		return nil, errors.NotFoundf("store %s", in.Subject.StoreID)
	}

	subjectKey := in.Subject.Key()

	// Confirm and report act on an existing fact; there is nothing to
	// corroborate or dispute otherwise.
	if in.Kind == crowd.KindConfirm || in.Kind == crowd.KindReport {
		existing, err := s.factRepo.GetBySubjectKey(dbc, subjectKey)
		if err != nil {
			return nil, errors.Storagef("loading fact: %v", err)
		}
		if existing == nil {
			return nil, errors.NotFoundf("no fact for subject %s", subjectKey)
		}
	}

	if in.Kind == crowd.KindConfirm {
		last, err := s.contribRepo.LastConfirmAt(dbc, in.ContributorID, subjectKey)
		if err != nil {
			return nil, errors.Storagef("checking confirmation cooldown: %v", err)
		}
		if last != nil {
			if elapsed := time.Since(*last); elapsed < s.cfg.ConfirmCooldown {
				return nil, &errors.RateLimitedError{RetryAfter: s.cfg.ConfirmCooldown - elapsed}
			}
		}
	}

	replacement := in.Kind == crowd.KindReport && encoded != nil
	delta := s.cfg.Delta(in.Kind, in.HasEvidence)
	mi := repos.MergeInput{
		Subject:           in.Subject,
		Value:             encoded,
		Delta:             delta,
		InitialConfidence: s.cfg.InitialConfidence,
		MinConfidence:     s.cfg.MinConfidence,
		MaxConfidence:     s.cfg.MaxConfidence,
		IncrementVerified: in.Kind.IncrementsVerified(),
		OverwriteValue:    encoded != nil,
		ResetConfidence:   replacement,
		BecomeDirect:      in.Kind != crowd.KindReport,
	}

	var fact *types.Fact
	for attempt := 1; ; attempt++ {
		fact, err = s.factRepo.Merge(dbc, mi)
		if err == nil {
			break
		}
		if !errors.Is(err, errors.ErrConflict) {
			return nil, errors.Storagef("merging contribution: %v", err)
		}
		if attempt >= s.cfg.MergeRetries {
			return nil, err
		}
		s.log.Warn("merge conflict, retrying", "subject_key", subjectKey, "attempt", attempt)
	}

	points := s.cfg.Points(in.Kind)
	contributor := in.ContributorID
	if _, err := s.contribRepo.Append(dbc, &types.Contribution{
		SubjectKind:     in.Subject.Kind,
		SubjectKey:      subjectKey,
		StoreID:         in.Subject.StoreID,
		ContributorID:   &contributor,
		Kind:            string(in.Kind),
		ConfidenceDelta: delta,
		PointsAwarded:   points,
	}); err != nil {
		return nil, errors.Storagef("appending ledger: %v", err)
	}

	res := &SubmitResult{Fact: fact, PointsAwarded: points}
	s.awardRewards(dbc, in, res)
	return res, nil
}

// awardRewards handles everything downstream of the accepted contribution:
// the first-explorer bonus, badge thresholds, and the leaderboard push. None
// of these may fail the submission; a failure marks the result PointsPending
// and the ledger remains the source of truth for a later reconcile.
func (s *contributionService) awardRewards(dbc dbctx.Context, in SubmitInput, res *SubmitResult) {
	awarded, err := s.bonusRepo.AwardIfFirst(dbc, in.ContributorID, in.Subject.StoreID, s.cfg.ExplorerBonusPoints)
	if err != nil {
		s.log.Warn("explorer bonus award failed", "contributor_id", in.ContributorID, "err", err)
		res.PointsPending = true
	}
	res.BonusAwarded = awarded

	total, err := s.contribRepo.CountByContributor(dbc, in.ContributorID)
	if err != nil {
		s.log.Warn("contribution count failed", "contributor_id", in.ContributorID, "err", err)
		res.PointsPending = true
	} else {
		for _, c := range []struct {
			code string
			min  int64
		}{
			{BadgeFirstSteps, 1},
			{BadgeMapper10, 10},
			{BadgeMapper50, 50},
		} {
			if total < c.min {
				continue
			}
			fresh, err := s.badgeRepo.Award(dbc, in.ContributorID, c.code)
			if err != nil {
				s.log.Warn("badge award failed", "code", c.code, "err", err)
				res.PointsPending = true
				continue
			}
			if fresh {
				res.NewBadges = append(res.NewBadges, c.code)
			}
		}
	}

	stores, err := s.contribRepo.CountDistinctStores(dbc, in.ContributorID)
	if err != nil {
		s.log.Warn("distinct store count failed", "contributor_id", in.ContributorID, "err", err)
		res.PointsPending = true
	} else if stores >= 5 {
		fresh, err := s.badgeRepo.Award(dbc, in.ContributorID, BadgeScout5)
		if err != nil {
			s.log.Warn("badge award failed", "code", BadgeScout5, "err", err)
			res.PointsPending = true
		} else if fresh {
			res.NewBadges = append(res.NewBadges, BadgeScout5)
		}
	}

	if s.leaderboard != nil {
		pts := int64(res.PointsAwarded)
		if res.BonusAwarded {
			pts += int64(s.cfg.ExplorerBonusPoints)
		}
		if err := s.leaderboard.IncrBy(dbc.Ctx, in.ContributorID, pts); err != nil {
			s.log.Warn("leaderboard increment failed", "contributor_id", in.ContributorID, "err", err)
			res.PointsPending = true
		}
	}
}

func (s *contributionService) History(dbc dbctx.Context, subjectKey string, limit int) ([]*types.Contribution, error) {
	if _, err := crowd.ParseSubjectKey(subjectKey); err != nil {
		return nil, err
	}
	rows, err := s.contribRepo.ListBySubject(dbc, subjectKey, limit)
	if err != nil {
		return nil, errors.Storagef("listing contributions: %v", err)
	}
	return rows, nil
}
