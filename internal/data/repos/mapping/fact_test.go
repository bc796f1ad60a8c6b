package mapping

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	crowdpolicy "github.com/yungbote/aislemap-backend/internal/crowd"
	"github.com/yungbote/aislemap-backend/internal/data/repos/testutil"
	types "github.com/yungbote/aislemap-backend/internal/domain"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
)

func seedStore(t *testing.T, dbc dbctx.Context, name string, lat, lon float64) *types.Store {
	t.Helper()
	row := &types.Store{ID: uuid.New(), Name: name, Latitude: lat, Longitude: lon}
	if err := dbc.Tx.Create(row).Error; err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return row
}

func directMerge(cfg crowdpolicy.Config, subject crowdpolicy.Subject, value crowdpolicy.Value, kind crowdpolicy.Kind) MergeInput {
	in := MergeInput{
		Subject:           subject,
		Delta:             cfg.Delta(kind, false),
		InitialConfidence: cfg.InitialConfidence,
		MinConfidence:     cfg.MinConfidence,
		MaxConfidence:     cfg.MaxConfidence,
		IncrementVerified: kind.IncrementsVerified(),
		OverwriteValue:    kind.CarriesValue() && value != nil,
		BecomeDirect:      kind != crowdpolicy.KindReport,
	}
	if value != nil {
		raw, err := crowdpolicy.EncodeValue(subject.Kind, value)
		if err != nil {
			panic(err)
		}
		in.Value = raw
	}
	return in
}

func TestFactMergeScenario(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	cfg := crowdpolicy.DefaultConfig()
	repo := NewFactRepo(db, testutil.Logger(t))
	store := seedStore(t, dbc, "Kroger Midtown", 33.78, -84.38)
	subject := crowdpolicy.AisleSubject(store.ID, "12")

	// First scan creates the fact at the initial confidence.
	fact, err := repo.Merge(dbc, directMerge(cfg, subject, crowdpolicy.AisleValue{Label: "Cereal"}, crowdpolicy.KindScan))
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	if fact.Confidence != 50 || fact.VerifiedCount != 1 || fact.Origin != types.OriginDirect {
		t.Fatalf("first merge: conf=%v verified=%d origin=%s", fact.Confidence, fact.VerifiedCount, fact.Origin)
	}

	// Confirmation bumps confidence and verified count.
	fact, err = repo.Merge(dbc, directMerge(cfg, subject, nil, crowdpolicy.KindConfirm))
	if err != nil {
		t.Fatalf("confirm merge: %v", err)
	}
	if fact.Confidence != 55 || fact.VerifiedCount != 2 {
		t.Fatalf("confirm merge: conf=%v verified=%d", fact.Confidence, fact.VerifiedCount)
	}

	// Report erodes confidence but never touches verified count.
	fact, err = repo.Merge(dbc, directMerge(cfg, subject, nil, crowdpolicy.KindReport))
	if err != nil {
		t.Fatalf("report merge: %v", err)
	}
	if fact.Confidence != 45 || fact.VerifiedCount != 2 {
		t.Fatalf("report merge: conf=%v verified=%d", fact.Confidence, fact.VerifiedCount)
	}

	// Exactly one row per subject.
	var n int64
	if err := tx.Model(&types.Fact{}).Where("subject_key = ?", subject.Key()).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("fact rows: n=%d err=%v", n, err)
	}
}

func TestFactMergeClampFloor(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	cfg := crowdpolicy.DefaultConfig()
	repo := NewFactRepo(db, testutil.Logger(t))
	store := seedStore(t, dbc, "Safeway Lakeview", 47.61, -122.33)
	subject := crowdpolicy.AisleSubject(store.ID, "3")

	if _, err := repo.Merge(dbc, directMerge(cfg, subject, crowdpolicy.AisleValue{Label: "Dairy"}, crowdpolicy.KindManual)); err != nil {
		t.Fatalf("seed merge: %v", err)
	}
	for i := 0; i < 8; i++ {
		fact, err := repo.Merge(dbc, directMerge(cfg, subject, nil, crowdpolicy.KindReport))
		if err != nil {
			t.Fatalf("report %d: %v", i, err)
		}
		if fact.Confidence < 0 || fact.Confidence > 100 {
			t.Fatalf("report %d: confidence %v out of range", i, fact.Confidence)
		}
	}
	fact, err := repo.GetBySubjectKey(dbc, subject.Key())
	if err != nil || fact == nil {
		t.Fatalf("get: fact=%v err=%v", fact, err)
	}
	if fact.Confidence != 0 {
		t.Fatalf("floor: confidence=%v, want 0", fact.Confidence)
	}
	// Reported-to-zero facts survive and can recover.
	fact, err = repo.Merge(dbc, directMerge(cfg, subject, nil, crowdpolicy.KindConfirm))
	if err != nil || fact.Confidence != 5 {
		t.Fatalf("recover: conf=%v err=%v", fact.Confidence, err)
	}
}

func TestInsertPropagatedNeverOverwritesDirect(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	cfg := crowdpolicy.DefaultConfig()
	repo := NewFactRepo(db, testutil.Logger(t))
	target := seedStore(t, dbc, "Kroger Downtown", 33.75, -84.39)
	source := seedStore(t, dbc, "Kroger Midtown", 33.78, -84.38)
	subject := crowdpolicy.PriceSubject(target.ID, "012345678905")

	raw, err := crowdpolicy.EncodeValue(subject.Kind, crowdpolicy.PriceValue{Price: 2.99, Currency: "USD"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Direct fact exists first: the propagated insert must lose.
	direct, err := repo.Merge(dbc, directMerge(cfg, subject, crowdpolicy.PriceValue{Price: 3.49, Currency: "USD"}, crowdpolicy.KindScan))
	if err != nil {
		t.Fatalf("direct merge: %v", err)
	}

	prop := &types.Fact{
		SubjectKind:    subject.Kind,
		SubjectKey:     subject.Key(),
		StoreID:        target.ID,
		Value:          raw,
		Confidence:     40,
		SourceFactID:   &direct.ID,
		SourceStoreID:  &source.ID,
		LastVerifiedAt: time.Now().UTC(),
	}
	current, created, err := repo.InsertPropagated(dbc, prop)
	if err != nil {
		t.Fatalf("insert propagated: %v", err)
	}
	if created {
		t.Fatal("propagated insert must not replace an existing fact")
	}
	if current.Origin != types.OriginDirect || current.Confidence != direct.Confidence {
		t.Fatalf("existing direct fact disturbed: %+v", current)
	}
}

func TestDirectSupersedesPropagated(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	cfg := crowdpolicy.DefaultConfig()
	repo := NewFactRepo(db, testutil.Logger(t))
	target := seedStore(t, dbc, "Kroger Downtown", 33.75, -84.39)
	source := seedStore(t, dbc, "Kroger Midtown", 33.78, -84.38)
	subject := crowdpolicy.PriceSubject(target.ID, "036000291452")

	raw, err := crowdpolicy.EncodeValue(subject.Kind, crowdpolicy.PriceValue{Price: 2.99, Currency: "USD"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	srcID := uuid.New()
	_, created, err := repo.InsertPropagated(dbc, &types.Fact{
		SubjectKind:    subject.Kind,
		SubjectKey:     subject.Key(),
		StoreID:        target.ID,
		Value:          raw,
		Confidence:     38,
		SourceFactID:   &srcID,
		SourceStoreID:  &source.ID,
		LastVerifiedAt: time.Now().UTC(),
	})
	if err != nil || !created {
		t.Fatalf("insert propagated: created=%v err=%v", created, err)
	}

	// A later direct submission takes the row over at initial confidence.
	fact, err := repo.Merge(dbc, directMerge(cfg, subject, crowdpolicy.PriceValue{Price: 3.29, Currency: "USD"}, crowdpolicy.KindManual))
	if err != nil {
		t.Fatalf("direct merge: %v", err)
	}
	if fact.Origin != types.OriginDirect || fact.Confidence != cfg.InitialConfidence {
		t.Fatalf("takeover: origin=%s conf=%v", fact.Origin, fact.Confidence)
	}
	if fact.SourceFactID != nil || fact.SourceStoreID != nil {
		t.Fatalf("takeover kept source refs: %+v", fact)
	}

	// Re-running propagation afterwards must not revert it.
	current, created, err := repo.InsertPropagated(dbc, &types.Fact{
		SubjectKind:    subject.Kind,
		SubjectKey:     subject.Key(),
		StoreID:        target.ID,
		Value:          raw,
		Confidence:     38,
		SourceStoreID:  &source.ID,
		LastVerifiedAt: time.Now().UTC(),
	})
	if err != nil || created {
		t.Fatalf("re-propagation: created=%v err=%v", created, err)
	}
	if current.Origin != types.OriginDirect {
		t.Fatalf("re-propagation reverted origin: %s", current.Origin)
	}
}

func TestNearestChainPriceSource(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	cfg := crowdpolicy.DefaultConfig()
	repo := NewFactRepo(db, testutil.Logger(t))

	// Target in midtown Atlanta; siblings at roughly 5, 12 and 40km; one
	// cross-chain store nearby that must be ignored.
	target := seedStore(t, dbc, "Kroger Midtown", 33.7800, -84.3800)
	near := seedStore(t, dbc, "Kroger Eastside", 33.8200, -84.3500)    // ~5km
	mid := seedStore(t, dbc, "Kroger Vinings", 33.8700, -84.4600)     // ~12km
	far := seedStore(t, dbc, "Kroger Newnan", 33.4200, -84.5800)      // ~40km+
	other := seedStore(t, dbc, "Publix Midtown", 33.7810, -84.3790)   // cross-chain

	barcode := "012345678905"
	for _, s := range []*types.Store{near, mid, far, other} {
		subject := crowdpolicy.PriceSubject(s.ID, barcode)
		if _, err := repo.Merge(dbc, directMerge(cfg, subject, crowdpolicy.PriceValue{Price: 2.99, Currency: "USD"}, crowdpolicy.KindScan)); err != nil {
			t.Fatalf("seed price for %s: %v", s.Name, err)
		}
	}

	src, err := repo.NearestChainPriceSource(dbc, ChainSourceQuery{
		TargetStoreID: target.ID,
		TargetLat:     target.Latitude,
		TargetLon:     target.Longitude,
		ChainToken:    "kroger",
		Barcode:       barcode,
		FreshSince:    time.Now().UTC().Add(-cfg.FreshnessWindow),
	})
	if err != nil {
		t.Fatalf("NearestChainPriceSource: %v", err)
	}
	if src == nil || src.StoreID != near.ID {
		t.Fatalf("selected %+v, want nearest sibling %s", src, near.ID)
	}
	if src.DistanceKm <= 0 || src.DistanceKm > 16 {
		t.Fatalf("distance_km=%v, want within first band", src.DistanceKm)
	}

	// Stale facts are not eligible sources at all.
	if err := tx.Model(&types.Fact{}).
		Where("store_id IN ?", []uuid.UUID{near.ID, mid.ID, far.ID}).
		Update("updated_at", time.Now().UTC().Add(-30*24*time.Hour)).Error; err != nil {
		t.Fatalf("age facts: %v", err)
	}
	src, err = repo.NearestChainPriceSource(dbc, ChainSourceQuery{
		TargetStoreID: target.ID,
		TargetLat:     target.Latitude,
		TargetLon:     target.Longitude,
		ChainToken:    "kroger",
		Barcode:       barcode,
		FreshSince:    time.Now().UTC().Add(-cfg.FreshnessWindow),
	})
	if err != nil {
		t.Fatalf("NearestChainPriceSource (stale): %v", err)
	}
	if src != nil {
		t.Fatalf("stale sources must be ineligible, got %+v", src)
	}

	// Fallback still finds the most recent direct fact from any chain.
	fb, err := repo.LatestAnyPriceSource(dbc, target.ID, barcode)
	if err != nil {
		t.Fatalf("LatestAnyPriceSource: %v", err)
	}
	if fb == nil || fb.StoreID != other.ID {
		t.Fatalf("fallback selected %+v, want most recent (%s)", fb, other.ID)
	}
}
