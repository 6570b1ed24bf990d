package geo

import (
	"github.com/TomiHiltunen/geohash-golang"
)

// ClusterPrecision is roughly a 150m cell, enough to group blocos sharing a
// meeting point.
const ClusterPrecision = 7

func Geohash(lat, lon float64, precision int) string {
	gh := geohash.Encode(lat, lon)
	if precision > 0 && precision < len(gh) {
		gh = gh[:precision]
	}
	return gh
}
