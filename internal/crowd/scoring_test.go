package crowd

import (
	"testing"
	"time"
)

func TestClampBounds(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "below_floor", in: -3, want: 0},
		{name: "at_floor", in: 0, want: 0},
		{name: "mid", in: 55.5, want: 55.5},
		{name: "at_ceiling", in: 100, want: 100},
		{name: "above_ceiling", in: 104.2, want: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cfg.Clamp(tc.in); got != tc.want {
				t.Fatalf("Clamp(%v)=%v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestClampInvariantOverContributionSequences(t *testing.T) {
	cfg := DefaultConfig()
	// Long alternating sequences must never leave [0,100] at any step.
	seqs := [][]struct {
		kind     Kind
		evidence bool
	}{
		{{KindScan, true}, {KindScan, true}, {KindScan, true}, {KindScan, true}, {KindScan, true}, {KindScan, true}, {KindScan, true}},
		{{KindReport, false}, {KindReport, false}, {KindReport, false}, {KindReport, false}, {KindReport, false}, {KindReport, false}},
		{{KindConfirm, false}, {KindReport, false}, {KindScan, false}, {KindReport, false}, {KindManual, false}},
	}
	for _, seq := range seqs {
		conf := cfg.InitialConfidence
		for i, step := range seq {
			conf = cfg.Clamp(conf + cfg.Delta(step.kind, step.evidence))
			if conf < 0 || conf > 100 {
				t.Fatalf("step %d (%s): confidence %v out of [0,100]", i, step.kind, conf)
			}
		}
	}
}

func TestDeltaTable(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name     string
		kind     Kind
		evidence bool
		want     float64
	}{
		{name: "scan", kind: KindScan, want: 10},
		{name: "scan_with_photo", kind: KindScan, evidence: true, want: 15},
		{name: "manual", kind: KindManual, want: 5},
		{name: "confirm", kind: KindConfirm, want: 5},
		{name: "report", kind: KindReport, want: -10},
		{name: "propagation", kind: KindPropagation, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cfg.Delta(tc.kind, tc.evidence); got != tc.want {
				t.Fatalf("Delta(%s, %v)=%v, want %v", tc.kind, tc.evidence, got, tc.want)
			}
		})
	}
}

func TestPointsTable(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		kind Kind
		want int
	}{
		{KindScan, 50},
		{KindManual, 30},
		{KindConfirm, 10},
		{KindReport, 15},
		{KindPropagation, 0},
	}
	for _, tc := range cases {
		if got := cfg.Points(tc.kind); got != tc.want {
			t.Fatalf("Points(%s)=%d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestReportNeverIncrementsVerified(t *testing.T) {
	if KindReport.IncrementsVerified() {
		t.Fatal("report must not increment verified_count")
	}
	for _, k := range []Kind{KindScan, KindManual, KindConfirm} {
		if !k.IncrementsVerified() {
			t.Fatalf("%s should increment verified_count", k)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"scan", "manual", "confirm", "report", "propagation"} {
		if _, err := ParseKind(s); err != nil {
			t.Fatalf("ParseKind(%q): %v", s, err)
		}
	}
	if _, err := ParseKind("drive_by"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestEffectiveConfidenceDecay(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{name: "fresh", age: 24 * time.Hour, want: 80},
		{name: "past_30d", age: 31 * 24 * time.Hour, want: 72},
		{name: "past_90d", age: 91 * 24 * time.Hour, want: 60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cfg.EffectiveConfidence(80, now.Add(-tc.age), now)
			if got != tc.want {
				t.Fatalf("EffectiveConfidence(80, age=%s)=%v, want %v", tc.age, got, tc.want)
			}
		})
	}
}
