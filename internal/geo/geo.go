// Package geo holds the small geodesic helpers the normaliser is built on:
// haversine distance, object centroids, and the per-track maximum radius.
// Coordinates are degrees; distances are kilometres.
package geo

import (
	"math"

	"github.com/meridian-data/extremetrack/internal/label"
	"github.com/meridian-data/extremetrack/internal/track"
)

// DefaultEarthRadiusKm is the geodesic radius used unless configured.
const DefaultEarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in km between two points
// given in degrees.
func Haversine(lat1, lon1, lat2, lon2, radiusKm float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	a := sinLat*sinLat + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*sinLon*sinLon

	return 2 * radiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Centroid returns the unweighted arithmetic mean (lon, lat) of an
// object's member cells. The result is a local origin and scale, not an
// invariant spherical quantity.
func Centroid(o *label.Object, lon, lat []float64) (lonC, latC float64) {
	cells := o.Cells()
	for _, c := range cells {
		lonC += lon[c.I-1]
		latC += lat[c.J-1]
	}
	n := float64(len(cells))
	return lonC / n, latC / n
}

// MaxRadius returns the largest cell-to-centroid haversine distance
// observed over a track's lifetime, the R_max scale of the polar frame.
func MaxRadius(tr *track.Track, lon, lat []float64, radiusKm float64) float64 {
	rMax := 0.0
	for _, o := range tr.Objects {
		lonC, latC := Centroid(o, lon, lat)
		for _, c := range o.Cells() {
			d := Haversine(latC, lonC, lat[c.J-1], lon[c.I-1], radiusKm)
			if d > rMax {
				rMax = d
			}
		}
	}
	return rMax
}
