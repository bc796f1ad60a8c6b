package crowd

import (
	"time"

	"github.com/yungbote/aislemap-backend/internal/platform/envutil"
)

// Band maps a distance ceiling to the confidence multiplier applied when a
// price is propagated from a chain sibling within that distance.
type Band struct {
	MaxKm      float64
	Multiplier float64
}

// DecayStep scales effective confidence once a fact has gone unverified for
// longer than Age. Applied at read time only; stored confidence is never
// rewritten by decay.
type DecayStep struct {
	Age    time.Duration
	Factor float64
}

// Config carries every tunable of the scoring/propagation policy. The numbers
// are product tuning, not invariants, so they are loaded from the environment
// with the defaults below.
type Config struct {
	InitialConfidence float64
	MinConfidence     float64
	MaxConfidence     float64

	ScanDelta         float64
	ScanEvidenceDelta float64
	ManualDelta       float64
	ConfirmDelta      float64
	ReportDelta       float64

	DisplayThreshold float64
	ConfirmCooldown  time.Duration

	// FreshnessWindow bounds how old a sibling fact may be and still serve as
	// a propagation source.
	FreshnessWindow time.Duration
	// Bands must be sorted by MaxKm ascending. Distances beyond the last band
	// refuse chain propagation entirely.
	Bands []Band

	DecaySteps []DecayStep

	ScanPoints    int
	ManualPoints  int
	ConfirmPoints int
	ReportPoints  int

	ExplorerBonusPoints int

	// MergeRetries bounds internal retries of the atomic merge before the
	// failure surfaces as a storage error.
	MergeRetries int
}

func DefaultConfig() Config {
	return Config{
		InitialConfidence: 50,
		MinConfidence:     0,
		MaxConfidence:     100,

		ScanDelta:         10,
		ScanEvidenceDelta: 15,
		ManualDelta:       5,
		ConfirmDelta:      5,
		ReportDelta:       -10,

		DisplayThreshold: 20,
		ConfirmCooldown:  24 * time.Hour,

		FreshnessWindow: 14 * 24 * time.Hour,
		Bands: []Band{
			{MaxKm: 16, Multiplier: 0.95},
			{MaxKm: 48, Multiplier: 0.85},
			{MaxKm: 160, Multiplier: 0.70},
		},

		DecaySteps: []DecayStep{
			{Age: 90 * 24 * time.Hour, Factor: 0.75},
			{Age: 30 * 24 * time.Hour, Factor: 0.90},
		},

		ScanPoints:    50,
		ManualPoints:  30,
		ConfirmPoints: 10,
		ReportPoints:  15,

		ExplorerBonusPoints: 200,

		MergeRetries: 3,
	}
}

// ConfigFromEnv overlays CROWD_* environment variables onto the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.InitialConfidence = envutil.Float("CROWD_INITIAL_CONFIDENCE", cfg.InitialConfidence)
	cfg.ScanDelta = envutil.Float("CROWD_SCAN_DELTA", cfg.ScanDelta)
	cfg.ScanEvidenceDelta = envutil.Float("CROWD_SCAN_EVIDENCE_DELTA", cfg.ScanEvidenceDelta)
	cfg.ManualDelta = envutil.Float("CROWD_MANUAL_DELTA", cfg.ManualDelta)
	cfg.ConfirmDelta = envutil.Float("CROWD_CONFIRM_DELTA", cfg.ConfirmDelta)
	cfg.ReportDelta = envutil.Float("CROWD_REPORT_DELTA", cfg.ReportDelta)
	cfg.DisplayThreshold = envutil.Float("CROWD_DISPLAY_THRESHOLD", cfg.DisplayThreshold)
	cfg.ConfirmCooldown = envutil.Duration("CROWD_CONFIRM_COOLDOWN", cfg.ConfirmCooldown)
	cfg.FreshnessWindow = envutil.Duration("CROWD_FRESHNESS_WINDOW", cfg.FreshnessWindow)
	cfg.ScanPoints = envutil.Int("CROWD_SCAN_POINTS", cfg.ScanPoints)
	cfg.ManualPoints = envutil.Int("CROWD_MANUAL_POINTS", cfg.ManualPoints)
	cfg.ConfirmPoints = envutil.Int("CROWD_CONFIRM_POINTS", cfg.ConfirmPoints)
	cfg.ReportPoints = envutil.Int("CROWD_REPORT_POINTS", cfg.ReportPoints)
	cfg.ExplorerBonusPoints = envutil.Int("CROWD_EXPLORER_BONUS_POINTS", cfg.ExplorerBonusPoints)
	cfg.MergeRetries = envutil.Int("CROWD_MERGE_RETRIES", cfg.MergeRetries)
	return cfg
}
