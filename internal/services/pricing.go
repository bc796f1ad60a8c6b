package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/aislemap-backend/internal/crowd"
	"github.com/yungbote/aislemap-backend/internal/data/repos"
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

// PriceResult provenance. "store" is a fact already held for the target
// (direct or a previously cached propagation); "chain" is a fresh same-chain
// sibling; "fallback" is the cross-chain last resort.
const (
	PriceSourceStore    = "store"
	PriceSourceChain    = "chain"
	PriceSourceFallback = "fallback"
)

type PriceResult struct {
	Fact       *types.Fact
	Value      crowd.PriceValue
	Confidence float64 // effective, staleness-decayed
	Source     string

	// Set for chain and fallback results.
	SourceStoreID *uuid.UUID
	DistanceKm    *float64
}

// PricingService answers "what does this barcode cost at this store",
// propagating from chain siblings when the store has no price of its own.
type PricingService interface {
	Resolve(dbc dbctx.Context, targetStoreID uuid.UUID, barcode string) (*PriceResult, error)
}

type pricingService struct {
	cfg         crowd.Config
	log         *logger.Logger
	factRepo    repos.FactRepo
	contribRepo repos.ContributionRepo
	storeRepo   repos.StoreRepo
}

func NewPricingService(
	cfg crowd.Config,
	log *logger.Logger,
	factRepo repos.FactRepo,
	contribRepo repos.ContributionRepo,
	storeRepo repos.StoreRepo,
) PricingService {
	return &pricingService{
		cfg:         cfg,
		log:         log.With("service", "PricingService"),
		factRepo:    factRepo,
		contribRepo: contribRepo,
		storeRepo:   storeRepo,
	}
}

func (s *pricingService) Resolve(dbc dbctx.Context, targetStoreID uuid.UUID, barcode string) (*PriceResult, error) {
	subject := crowd.PriceSubject(targetStoreID, barcode)
	if err := subject.Validate(); err != nil {
		return nil, err
	}

	target, err := s.storeRepo.GetByID(dbc, targetStoreID)
	if err != nil {
		return nil, errors.Storagef("loading store: %v", err)
	}
	if target == nil {
		return nil, errors.NotFoundf("store %s", targetStoreID)
	}

	// A held fact wins outright, whatever its origin: a cached propagation is
	// only replaced by a direct contribution, never by re-propagating.
	held, err := s.factRepo.GetBySubjectKey(dbc, subject.Key())
	if err != nil {
		return nil, errors.Storagef("loading price fact: %v", err)
	}
	if held != nil {
		return s.result(held, PriceSourceStore, nil, nil)
	}

	now := time.Now().UTC()
	source, err := s.factRepo.NearestChainPriceSource(dbc, repos.ChainSourceQuery{
		TargetStoreID: targetStoreID,
		TargetLat:     target.Latitude,
		TargetLon:     target.Longitude,
		ChainToken:    crowd.ChainToken(target.Name),
		Barcode:       subject.Barcode,
		FreshSince:    now.Add(-s.cfg.FreshnessWindow),
	})
	if err != nil {
		return nil, errors.Storagef("finding chain source: %v", err)
	}
	if source != nil {
		if mult, ok := s.cfg.BandMultiplier(source.DistanceKm); ok {
			return s.propagate(dbc, subject, source, s.cfg.Clamp(source.Confidence*mult), PriceSourceChain)
		}
		s.log.Debug("nearest chain sibling beyond last band",
			"store_id", targetStoreID, "barcode", subject.Barcode, "distance_km", source.DistanceKm)
	}

	// Cross-chain fallback: best-effort estimate, source confidence carried
	// over unmultiplied since no distance band applies across chains.
	fallback, err := s.factRepo.LatestAnyPriceSource(dbc, targetStoreID, subject.Barcode)
	if err != nil {
		return nil, errors.Storagef("finding fallback source: %v", err)
	}
	if fallback != nil {
		return s.propagate(dbc, subject, fallback, s.cfg.Clamp(fallback.Confidence), PriceSourceFallback)
	}

	return nil, errors.NotFoundf("no price data for barcode %s", subject.Barcode)
}

// propagate caches the derived price under the target subject and records a
// system propagation entry in the ledger. The cache write is insert-if-absent:
// losing the race (possibly to a direct contribution) just means serving the
// winning row instead.
func (s *pricingService) propagate(dbc dbctx.Context, subject crowd.Subject, src *repos.PriceSource, confidence float64, provenance string) (*PriceResult, error) {
	srcFactID := src.FactID
	srcStoreID := src.StoreID
	row := &types.Fact{
		SubjectKind:    subject.Kind,
		SubjectKey:     subject.Key(),
		StoreID:        subject.StoreID,
		Value:          src.Value,
		Confidence:     confidence,
		VerifiedCount:  0,
		Origin:         types.OriginPropagated,
		SourceFactID:   &srcFactID,
		SourceStoreID:  &srcStoreID,
		LastVerifiedAt: src.LastVerifiedAt,
	}

	fact, created, err := s.factRepo.InsertPropagated(dbc, row)
	if err != nil {
		return nil, errors.Storagef("caching propagated price: %v", err)
	}
	if fact == nil {
		return nil, errors.NotFoundf("no price data for barcode %s", subject.Barcode)
	}

	if created {
		// Nil contributor marks the entry system-generated; zero delta and
		// zero points keep it out of scoring and rewards.
		if _, err := s.contribRepo.Append(dbc, &types.Contribution{
			SubjectKind: subject.Kind,
			SubjectKey:  subject.Key(),
			StoreID:     subject.StoreID,
			Kind:        types.ContributionPropagation,
		}); err != nil {
			s.log.Warn("propagation ledger append failed", "subject_key", subject.Key(), "err", err)
		}
		dist := src.DistanceKm
		return s.result(fact, provenance, &srcStoreID, &dist)
	}
	return s.result(fact, PriceSourceStore, nil, nil)
}

func (s *pricingService) result(fact *types.Fact, provenance string, srcStoreID *uuid.UUID, distanceKm *float64) (*PriceResult, error) {
	v, err := crowd.DecodeValue(fact.SubjectKind, fact.Value)
	if err != nil {
		return nil, errors.Storagef("decoding price value: %v", err)
	}
	price, ok := v.(crowd.PriceValue)
	if !ok {
		return nil, errors.Storagef("fact %s holds a non-price value", fact.SubjectKey)
	}
	if srcStoreID == nil && fact.Origin == types.OriginPropagated {
		srcStoreID = fact.SourceStoreID
	}
	return &PriceResult{
		Fact:          fact,
		Value:         price,
		Confidence:    s.cfg.EffectiveConfidence(fact.Confidence, fact.LastVerifiedAt, time.Now().UTC()),
		Source:        provenance,
		SourceStoreID: srcStoreID,
		DistanceKm:    distanceKm,
	}, nil
}
