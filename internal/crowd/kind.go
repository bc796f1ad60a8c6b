package crowd

import (
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
)

// Kind is the closed set of contribution channels. Keeping it a named type
// forces the scoring switch below to account for every channel.
type Kind string

const (
	KindScan        Kind = "scan"
	KindManual      Kind = "manual"
	KindConfirm     Kind = "confirm"
	KindReport      Kind = "report"
	KindPropagation Kind = "propagation"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindScan, KindManual, KindConfirm, KindReport, KindPropagation:
		return Kind(s), nil
	}
	return "", errors.Validationf("unknown contribution kind %q", s)
}

// CarriesValue reports whether a contribution of this kind may replace the
// fact's value. Confirmations never do; reports only when they include an
// explicit replacement.
func (k Kind) CarriesValue() bool {
	return k == KindScan || k == KindManual
}
