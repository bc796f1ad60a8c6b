package crowd

import (
	"math"
	"strings"
)

const earthRadiusKm = 6371.0

// HaversineKm is the great-circle distance between two coordinates.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// BandMultiplier returns the confidence multiplier for propagating from a
// chain sibling at the given distance. ok=false means the sibling is past the
// last band and chain propagation is refused.
func (c Config) BandMultiplier(distanceKm float64) (float64, bool) {
	for _, b := range c.Bands {
		if distanceKm <= b.MaxKm {
			return b.Multiplier, true
		}
	}
	return 0, false
}

// ChainToken is the cheap same-chain proxy: the first whitespace-delimited
// token of a store name, lowercased. "Kroger Midtown" and "Kroger Eastside"
// share a chain; a one-word independent store is its own chain.
func ChainToken(storeName string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(storeName)))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// SameChain reports whether two store names share a chain token.
func SameChain(a, b string) bool {
	ta := ChainToken(a)
	return ta != "" && ta == ChainToken(b)
}
