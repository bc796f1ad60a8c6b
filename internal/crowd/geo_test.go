package crowd

import (
	"math"
	"testing"
)

func TestBandMultiplier(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name    string
		km      float64
		want    float64
		refused bool
	}{
		{name: "10km", km: 10, want: 0.95},
		{name: "boundary_16km", km: 16, want: 0.95},
		{name: "30km", km: 30, want: 0.85},
		{name: "boundary_48km", km: 48, want: 0.85},
		{name: "100km", km: 100, want: 0.70},
		{name: "boundary_160km", km: 160, want: 0.70},
		{name: "200km_refused", km: 200, refused: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := cfg.BandMultiplier(tc.km)
			if tc.refused {
				if ok {
					t.Fatalf("BandMultiplier(%v) should refuse, got %v", tc.km, got)
				}
				return
			}
			if !ok || got != tc.want {
				t.Fatalf("BandMultiplier(%v)=%v ok=%v, want %v", tc.km, got, ok, tc.want)
			}
		})
	}
}

func TestHaversineKm(t *testing.T) {
	// NYC -> Philadelphia is ~130km.
	d := HaversineKm(40.7128, -74.0060, 39.9526, -75.1652)
	if math.Abs(d-130) > 5 {
		t.Fatalf("NYC-PHL distance = %vkm, want ~130km", d)
	}
	if z := HaversineKm(40.7128, -74.0060, 40.7128, -74.0060); z != 0 {
		t.Fatalf("zero distance = %v", z)
	}
}

func TestChainToken(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "two_words", in: "Kroger Midtown", want: "kroger"},
		{name: "case_insensitive", in: "KROGER eastside", want: "kroger"},
		{name: "leading_space", in: "  Safeway #104", want: "safeway"},
		{name: "single_word", in: "Brooklyn-Bodega", want: "brooklyn-bodega"},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChainToken(tc.in); got != tc.want {
				t.Fatalf("ChainToken(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}

	if !SameChain("Kroger Midtown", "kroger eastside") {
		t.Fatal("same token should match")
	}
	if SameChain("Kroger Midtown", "Safeway Midtown") {
		t.Fatal("different tokens should not match")
	}
	if SameChain("", "") {
		t.Fatal("empty names are never the same chain")
	}
}
