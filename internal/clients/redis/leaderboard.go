package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

// Leaderboard is a redis ZSET keyed by contributor id, scored by total points.
// It is a cache over the contribution ledger: the ledger is authoritative and
// the ZSET can be rebuilt from it at any time.
type Leaderboard interface {
	IncrBy(ctx context.Context, contributorID uuid.UUID, points int64) error
	Set(ctx context.Context, contributorID uuid.UUID, points int64) error
	Top(ctx context.Context, n int64) ([]Entry, error)
	Clear(ctx context.Context) error
	Close() error
}

type Entry struct {
	ContributorID uuid.UUID
	Points        int64
}

type leaderboard struct {
	log *logger.Logger
	rdb *goredis.Client
	key string
}

func NewLeaderboard(log *logger.Logger) (Leaderboard, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	key := strings.TrimSpace(os.Getenv("REDIS_LEADERBOARD_KEY"))
	if key == "" {
		key = "points:leaderboard"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &leaderboard{
		log: log.With("service", "RedisLeaderboard"),
		rdb: rdb,
		key: key,
	}, nil
}

func (l *leaderboard) IncrBy(ctx context.Context, contributorID uuid.UUID, points int64) error {
	if l == nil || l.rdb == nil {
		return fmt.Errorf("leaderboard not initialized")
	}
	return l.rdb.ZIncrBy(ctx, l.key, float64(points), contributorID.String()).Err()
}

func (l *leaderboard) Set(ctx context.Context, contributorID uuid.UUID, points int64) error {
	if l == nil || l.rdb == nil {
		return fmt.Errorf("leaderboard not initialized")
	}
	return l.rdb.ZAdd(ctx, l.key, goredis.Z{Score: float64(points), Member: contributorID.String()}).Err()
}

func (l *leaderboard) Top(ctx context.Context, n int64) ([]Entry, error) {
	if l == nil || l.rdb == nil {
		return nil, fmt.Errorf("leaderboard not initialized")
	}
	if n <= 0 {
		n = 10
	}
	zs, err := l.rdb.ZRevRangeWithScores(ctx, l.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(member)
		if err != nil {
			l.log.Warn("skipping malformed leaderboard member", "member", member)
			continue
		}
		out = append(out, Entry{ContributorID: id, Points: int64(z.Score)})
	}
	return out, nil
}

func (l *leaderboard) Clear(ctx context.Context) error {
	if l == nil || l.rdb == nil {
		return fmt.Errorf("leaderboard not initialized")
	}
	return l.rdb.Del(ctx, l.key).Err()
}

func (l *leaderboard) Close() error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Close()
}
