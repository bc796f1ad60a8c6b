package services

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/aislemap-backend/internal/crowd"
	"github.com/yungbote/aislemap-backend/internal/data/repos"
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

// FactView pairs a stored fact with its effective confidence at read time.
// Staleness decay is applied here and only here; the stored score is never
// rewritten.
type FactView struct {
	Fact                *types.Fact
	EffectiveConfidence float64
}

type FactService interface {
	// Get returns a single subject with no threshold filter: a client asking
	// about one specific fact sees it even below the display threshold.
	Get(dbc dbctx.Context, subjectKey string) (*FactView, error)

	// ListForStore returns the store's facts at or above
	// max(minConfidence, DisplayThreshold), ordered by effective confidence
	// descending then subject key ascending.
	ListForStore(dbc dbctx.Context, storeID uuid.UUID, minConfidence float64) ([]*FactView, error)
}

type factService struct {
	cfg       crowd.Config
	log       *logger.Logger
	factRepo  repos.FactRepo
	storeRepo repos.StoreRepo
}

func NewFactService(cfg crowd.Config, log *logger.Logger, factRepo repos.FactRepo, storeRepo repos.StoreRepo) FactService {
	return &factService{
		cfg:       cfg,
		log:       log.With("service", "FactService"),
		factRepo:  factRepo,
		storeRepo: storeRepo,
	}
}

func (s *factService) Get(dbc dbctx.Context, subjectKey string) (*FactView, error) {
	if _, err := crowd.ParseSubjectKey(subjectKey); err != nil {
		return nil, err
	}
	fact, err := s.factRepo.GetBySubjectKey(dbc, subjectKey)
	if err != nil {
		return nil, errors.Storagef("loading fact: %v", err)
	}
	if fact == nil {
		return nil, errors.NotFoundf("no fact for subject %s", subjectKey)
	}
	return &FactView{
		Fact:                fact,
		EffectiveConfidence: s.cfg.EffectiveConfidence(fact.Confidence, fact.LastVerifiedAt, time.Now().UTC()),
	}, nil
}

func (s *factService) ListForStore(dbc dbctx.Context, storeID uuid.UUID, minConfidence float64) ([]*FactView, error) {
	ok, err := s.storeRepo.Exists(dbc, storeID)
	if err != nil {
		return nil, errors.Storagef("checking store: %v", err)
	}
	if !ok {
		return nil, errors.NotFoundf("store %s", storeID)
	}

	facts, err := s.factRepo.ListByStore(dbc, storeID)
	if err != nil {
		return nil, errors.Storagef("listing facts: %v", err)
	}

	threshold := s.cfg.DisplayThreshold
	if minConfidence > threshold {
		threshold = minConfidence
	}

	now := time.Now().UTC()
	out := make([]*FactView, 0, len(facts))
	for _, f := range facts {
		eff := s.cfg.EffectiveConfidence(f.Confidence, f.LastVerifiedAt, now)
		if eff < threshold {
			continue
		}
		out = append(out, &FactView{Fact: f, EffectiveConfidence: eff})
	}

	// The repo orders by stored confidence; decay can reorder, so re-sort on
	// the effective score.
	sort.Slice(out, func(i, j int) bool {
		if out[i].EffectiveConfidence != out[j].EffectiveConfidence {
			return out[i].EffectiveConfidence > out[j].EffectiveConfidence
		}
		return out[i].Fact.SubjectKey < out[j].Fact.SubjectKey
	})
	return out, nil
}
