package core

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used when the caller does not
// configure an explicit sphere radius (kilometres).
const EarthRadiusKm = 6371.0

// Geodesic computes great-circle distances on a sphere of fixed radius
// using the haversine formula, which stays well conditioned at the small
// separations produced by fixes a few seconds apart.
type Geodesic struct {
	// RadiusKm is the sphere radius in kilometres. For ground-track
	// distances this is the Earth radius; callers measuring orbital arc
	// length pass radius plus orbit altitude instead.
	RadiusKm float64
}

// NewGeodesic returns a Geodesic over a sphere of the given radius,
// falling back to EarthRadiusKm when the radius is not positive.
func NewGeodesic(radiusKm float64) Geodesic {
	if radiusKm <= 0 {
		radiusKm = EarthRadiusKm
	}
	return Geodesic{RadiusKm: radiusKm}
}

// DistanceKm returns the great-circle distance in kilometres between
// (lat1, lon1) and (lat2, lon2), both in decimal degrees. Coordinates
// outside the valid latitude/longitude ranges fail with
// ErrInvalidCoordinate rather than producing a garbage distance.
func (g Geodesic) DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if err := ValidateCoordinate(lat1, lon1); err != nil {
		return 0, err
	}
	if err := ValidateCoordinate(lat2, lon2); err != nil {
		return 0, err
	}

	rlat1 := lat1 * math.Pi / 180.0
	rlat2 := lat2 * math.Pi / 180.0
	dlat := (lat2 - lat1) * math.Pi / 180.0
	dlon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)

	// Floating-point roundoff can push a just past 1 at antipodal points
	// (or just below 0 at identical ones); clamp before asin.
	root := math.Sqrt(a)
	if root > 1 {
		root = 1
	} else if root < 0 {
		root = 0
	}

	return 2 * g.RadiusKm * math.Asin(root), nil
}

// ValidateCoordinate checks that latitude is within [-90, 90] and longitude
// within [-180, 180] degrees, wrapping ErrInvalidCoordinate with the
// offending value otherwise.
func ValidateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of [-90, 90]", ErrInvalidCoordinate, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %v out of [-180, 180]", ErrInvalidCoordinate, lon)
	}
	return nil
}
