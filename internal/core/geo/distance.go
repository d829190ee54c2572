// Package geo computes geodesic distances on the WGS-84 ellipsoid.
package geo

import (
	"github.com/tidwall/geodesic"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
)

// Distance returns the geodesic distance in meters between a and b. Karney's
// inverse solution converges for every pair, antipodal points included.
func Distance(a, b domain.Point) float64 {
	if a == b {
		return 0
	}
	var s12 float64
	geodesic.WGS84.Inverse(a.Latitude, a.Longitude, b.Latitude, b.Longitude, &s12, nil, nil)
	return s12
}
