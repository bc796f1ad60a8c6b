package crowd

import "time"

// EffectiveConfidence applies read-time staleness decay: the stored score is
// scaled down once the fact has gone unverified past each configured age.
// Decay is a view concern only; the stored confidence is never rewritten, so
// a stale fact recovers its full score the moment someone confirms it.
func (c Config) EffectiveConfidence(stored float64, lastVerifiedAt, now time.Time) float64 {
	age := now.Sub(lastVerifiedAt)
	for _, step := range c.DecaySteps {
		if age >= step.Age {
			return c.Clamp(stored * step.Factor)
		}
	}
	return c.Clamp(stored)
}
