// Package geo holds great-circle helpers shared by the redirection engine.
package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for all distance math.
const EarthRadiusKm = 6371.0

// HaversineDistance returns the great-circle distance in kilometres between
// two points given in decimal degrees.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// EstimateTravelTime converts a distance into whole minutes of driving at
// speedKmh. A non-positive speed yields 0.
func EstimateTravelTime(distanceKm, speedKmh float64) int {
	if speedKmh <= 0 || distanceKm <= 0 {
		return 0
	}
	return int(math.Round(distanceKm / speedKmh * 60))
}

// ValidCoordinates reports whether lat/lon are finite and inside the
// geographic range.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadiusCap is a coarse spherical cap around a centre point. It is padded so
// that it never rejects a point whose haversine distance is within the
// radius; callers still make the exact decision with HaversineDistance.
type RadiusCap struct {
	cap s2.Cap
}

// NewRadiusCap builds a cap of radiusKm around lat/lon.
func NewRadiusCap(lat, lon, radiusKm float64) RadiusCap {
	padded := radiusKm*1.01 + 0.05
	if padded < 0 {
		padded = 0
	}
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	return RadiusCap{cap: s2.CapFromCenterAngle(center, s1.Angle(padded/EarthRadiusKm))}
}

// MayContain reports whether lat/lon could be within the radius.
func (c RadiusCap) MayContain(lat, lon float64) bool {
	return c.cap.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
}
