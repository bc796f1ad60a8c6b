package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/aislemap-backend/internal/crowd"
	"github.com/yungbote/aislemap-backend/internal/data/repos"
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
)

type pricingHarness struct {
	svc    PricingService
	facts  *fakeFactRepo
	ledger *fakeContributionRepo
	stores *fakeStoreRepo
	dbc    dbctx.Context
}

func newPricingHarness(t *testing.T, stores ...*types.Store) *pricingHarness {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h := &pricingHarness{
		facts:  newFakeFactRepo(),
		ledger: &fakeContributionRepo{},
		stores: newFakeStoreRepo(stores...),
		dbc:    dbctx.Context{Ctx: context.Background()},
	}
	h.svc = NewPricingService(crowd.DefaultConfig(), log, h.facts, h.ledger, h.stores)
	return h
}

func priceJSON(t *testing.T, price float64) datatypes.JSON {
	t.Helper()
	raw, err := crowd.EncodeValue(types.SubjectKindPrice, crowd.PriceValue{Price: price, Currency: "USD"})
	if err != nil {
		t.Fatalf("encode price: %v", err)
	}
	return raw
}

func chainSource(t *testing.T, price, confidence, distanceKm float64) *repos.PriceSource {
	t.Helper()
	now := time.Now().UTC()
	return &repos.PriceSource{
		FactID:         uuid.New(),
		StoreID:        uuid.New(),
		StoreName:      "Kroger Eastside",
		Value:          priceJSON(t, price),
		Confidence:     confidence,
		VerifiedCount:  3,
		LastVerifiedAt: now,
		UpdatedAt:      now,
		DistanceKm:     distanceKm,
	}
}

const barcode = "036000291452"

func TestResolveHeldFactWins(t *testing.T) {
	store := testStore("Kroger Midtown")
	h := newPricingHarness(t, store)
	subject := crowd.PriceSubject(store.ID, barcode)

	h.facts.facts[subject.Key()] = &types.Fact{
		ID:             uuid.New(),
		SubjectKind:    subject.Kind,
		SubjectKey:     subject.Key(),
		StoreID:        store.ID,
		Value:          priceJSON(t, 2.99),
		Confidence:     60,
		Origin:         types.OriginDirect,
		LastVerifiedAt: time.Now().UTC(),
	}
	// A sibling exists but must not be consulted over a held fact.
	h.facts.chainSource = chainSource(t, 1.99, 90, 5)

	res, err := h.svc.Resolve(h.dbc, store.ID, barcode)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != PriceSourceStore {
		t.Fatalf("source = %q, want store", res.Source)
	}
	if res.Value.Price != 2.99 || res.Confidence != 60 {
		t.Fatalf("price=%v confidence=%v", res.Value.Price, res.Confidence)
	}
	if len(h.facts.chainQueries) != 0 {
		t.Fatal("chain lookup ran despite held fact")
	}
}

func TestResolveChainPropagation(t *testing.T) {
	store := testStore("Kroger Midtown")
	h := newPricingHarness(t, store)
	src := chainSource(t, 3.49, 80, 10)
	h.facts.chainSource = src

	res, err := h.svc.Resolve(h.dbc, store.ID, barcode)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != PriceSourceChain {
		t.Fatalf("source = %q, want chain", res.Source)
	}
	if res.Confidence != 76 { // 80 * 0.95
		t.Fatalf("confidence = %v, want 76", res.Confidence)
	}
	if res.Value.Price != 3.49 {
		t.Fatalf("price = %v", res.Value.Price)
	}
	if res.SourceStoreID == nil || *res.SourceStoreID != src.StoreID {
		t.Fatalf("source store = %v", res.SourceStoreID)
	}

	subject := crowd.PriceSubject(store.ID, barcode)
	cached := h.facts.facts[subject.Key()]
	if cached == nil || cached.Origin != types.OriginPropagated {
		t.Fatalf("propagated fact not cached: %+v", cached)
	}
	if cached.VerifiedCount != 0 {
		t.Fatalf("cached verified_count = %d, want 0", cached.VerifiedCount)
	}

	if len(h.ledger.rows) != 1 {
		t.Fatalf("ledger rows = %d, want 1", len(h.ledger.rows))
	}
	entry := h.ledger.rows[0]
	if entry.Kind != types.ContributionPropagation || entry.ContributorID != nil {
		t.Fatalf("propagation entry = %+v", entry)
	}
	if entry.PointsAwarded != 0 || entry.ConfidenceDelta != 0 {
		t.Fatalf("propagation entry carries scoring: %+v", entry)
	}

	// The chain lookup used the target's chain token and coordinates.
	q := h.facts.chainQueries[0]
	if q.ChainToken != "kroger" || q.Barcode != barcode {
		t.Fatalf("chain query = %+v", q)
	}

	// Second resolve serves the cache without another propagation entry.
	res, err = h.svc.Resolve(h.dbc, store.ID, barcode)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if res.Source != PriceSourceStore {
		t.Fatalf("second resolve source = %q, want store", res.Source)
	}
	if len(h.ledger.rows) != 1 {
		t.Fatalf("ledger rows after cached resolve = %d, want 1", len(h.ledger.rows))
	}
}

func TestResolveBandMultipliers(t *testing.T) {
	cases := []struct {
		distanceKm float64
		confidence float64
		want       float64
	}{
		{10, 80, 76},   // ×0.95
		{30, 80, 68},   // ×0.85
		{100, 80, 56},  // ×0.70
		{160, 100, 70}, // boundary of the last band
	}
	for _, tc := range cases {
		store := testStore("Kroger Midtown")
		h := newPricingHarness(t, store)
		h.facts.chainSource = chainSource(t, 4.99, tc.confidence, tc.distanceKm)

		res, err := h.svc.Resolve(h.dbc, store.ID, barcode)
		if err != nil {
			t.Fatalf("distance %v: %v", tc.distanceKm, err)
		}
		if res.Confidence != tc.want {
			t.Fatalf("distance %v: confidence = %v, want %v", tc.distanceKm, res.Confidence, tc.want)
		}
	}
}

func TestResolveBeyondBandsFallsBack(t *testing.T) {
	store := testStore("Kroger Midtown")
	h := newPricingHarness(t, store)
	h.facts.chainSource = chainSource(t, 4.99, 80, 200)
	fb := chainSource(t, 5.49, 40, 0)
	fb.StoreName = "Publix Downtown"
	h.facts.fallbackSource = fb

	res, err := h.svc.Resolve(h.dbc, store.ID, barcode)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Source != PriceSourceFallback {
		t.Fatalf("source = %q, want fallback", res.Source)
	}
	if res.Confidence != 40 { // unmultiplied
		t.Fatalf("fallback confidence = %v, want 40", res.Confidence)
	}
	if res.Value.Price != 5.49 {
		t.Fatalf("fallback price = %v", res.Value.Price)
	}
}

func TestResolveNoData(t *testing.T) {
	store := testStore("Corner Grocer")
	h := newPricingHarness(t, store)

	_, err := h.svc.Resolve(h.dbc, store.ID, barcode)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestResolveValidation(t *testing.T) {
	store := testStore("Kroger Midtown")
	h := newPricingHarness(t, store)

	if _, err := h.svc.Resolve(h.dbc, store.ID, "abc"); !errors.Is(err, errors.ErrValidation) {
		t.Fatalf("bad barcode err = %v, want validation", err)
	}
	if _, err := h.svc.Resolve(h.dbc, uuid.New(), barcode); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("unknown store err = %v, want not found", err)
	}
}
