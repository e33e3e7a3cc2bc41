// Package geo provides great-circle distance math for guess scoring.
package geo

import "math"

// earthRadiusKm is the mean Earth radius.
const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between two
// points given in decimal degrees, using the Haversine formula. Latitudes must
// be within [-90, 90] and longitudes within [-180, 180]; the caller validates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Clamp before Asin: floating point can push a just above 1 for
	// near-antipodal points.
	c := 2 * math.Asin(math.Min(1, math.Sqrt(a)))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
