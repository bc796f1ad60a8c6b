package services

import (
	"context"

	redisclient "github.com/yungbote/aislemap-backend/internal/clients/redis"
	"github.com/yungbote/aislemap-backend/internal/data/repos"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

// LeaderboardService reads the redis ZSET and can rebuild it from the ledger
// (contribution point sums plus explorer bonuses). The ledger is
// authoritative; redis is a derived view.
type LeaderboardService interface {
	Top(ctx context.Context, n int64) ([]redisclient.Entry, error)
	Rebuild(dbc dbctx.Context) error
}

type leaderboardService struct {
	log         *logger.Logger
	leaderboard redisclient.Leaderboard
	contribRepo repos.ContributionRepo
	bonusRepo   repos.ExplorerBonusRepo
}

func NewLeaderboardService(
	log *logger.Logger,
	leaderboard redisclient.Leaderboard,
	contribRepo repos.ContributionRepo,
	bonusRepo repos.ExplorerBonusRepo,
) LeaderboardService {
	return &leaderboardService{
		log:         log.With("service", "LeaderboardService"),
		leaderboard: leaderboard,
		contribRepo: contribRepo,
		bonusRepo:   bonusRepo,
	}
}

func (s *leaderboardService) Top(ctx context.Context, n int64) ([]redisclient.Entry, error) {
	if s.leaderboard == nil {
		return nil, errors.Storagef("leaderboard unavailable")
	}
	entries, err := s.leaderboard.Top(ctx, n)
	if err != nil {
		return nil, errors.Storagef("reading leaderboard: %v", err)
	}
	return entries, nil
}

func (s *leaderboardService) Rebuild(dbc dbctx.Context) error {
	if s.leaderboard == nil {
		return errors.Storagef("leaderboard unavailable")
	}
	sums, err := s.contribRepo.SumPointsAll(dbc)
	if err != nil {
		return errors.Storagef("summing ledger points: %v", err)
	}
	if err := s.leaderboard.Clear(dbc.Ctx); err != nil {
		return errors.Storagef("clearing leaderboard: %v", err)
	}
	for _, row := range sums {
		bonus, err := s.bonusRepo.SumPoints(dbc, row.ContributorID)
		if err != nil {
			return errors.Storagef("summing bonus points: %v", err)
		}
		if err := s.leaderboard.Set(dbc.Ctx, row.ContributorID, row.Points+bonus); err != nil {
			return errors.Storagef("writing leaderboard entry: %v", err)
		}
	}
	s.log.Info("leaderboard rebuilt", "contributors", len(sums))
	return nil
}
