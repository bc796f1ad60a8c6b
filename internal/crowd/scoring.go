package crowd

// Clamp bounds a confidence value to [MinConfidence, MaxConfidence]. Clamping
// is the only normalization applied to confidence; there is no re-scaling.
func (c Config) Clamp(v float64) float64 {
	if v < c.MinConfidence {
		return c.MinConfidence
	}
	if v > c.MaxConfidence {
		return c.MaxConfidence
	}
	return v
}

// Delta returns the confidence delta applied when a contribution of the given
// kind merges into an existing fact. hasEvidence marks a scan backed by a
// photo, the higher-trust end of the scan channel.
func (c Config) Delta(kind Kind, hasEvidence bool) float64 {
	switch kind {
	case KindScan:
		if hasEvidence {
			return c.ScanEvidenceDelta
		}
		return c.ScanDelta
	case KindManual:
		return c.ManualDelta
	case KindConfirm:
		return c.ConfirmDelta
	case KindReport:
		return c.ReportDelta
	case KindPropagation:
		// Propagated confidence is derived from the source fact, not from a
		// delta; the merge path never applies one.
		return 0
	}
	return 0
}

// Points returns the points awarded for a successful contribution.
func (c Config) Points(kind Kind) int {
	switch kind {
	case KindScan:
		return c.ScanPoints
	case KindManual:
		return c.ManualPoints
	case KindConfirm:
		return c.ConfirmPoints
	case KindReport:
		return c.ReportPoints
	case KindPropagation:
		return 0
	}
	return 0
}

// IncrementsVerified reports whether the kind corroborates the fact.
// Reports erode confidence but never decrement (or grow) verified_count.
func (k Kind) IncrementsVerified() bool {
	switch k {
	case KindScan, KindManual, KindConfirm:
		return true
	}
	return false
}
