// Package frames implements conversions between geodetic, earth-centered
// (ECEF), local tangent-plane (ENU), and observer-relative (AER) coordinate
// frames on the WGS-84 ellipsoid.
//
// All conversion functions are batch-oriented: the slice forms are the single
// numeric path, and the scalar forms are length-1 batches over them, so both
// produce identical results for the same logical input.
package frames

import (
	"errors"
	"math"
)

// WGS-84 ellipsoid parameters.
const (
	wgs84A  = 6378137.0             // semi-major axis (meters)
	wgs84F  = 1.0 / 298.257223563   // flattening
	wgs84E2 = wgs84F * (2 - wgs84F) // first eccentricity squared
)

// Bowring latitude recovery: fixed iteration budget and convergence tolerance.
const (
	maxLatIter = 10
	latTolRad  = 1e-12 // ~6 micrometers on the Earth's surface
)

// ErrNoConvergence is returned when the ECEF to geodetic conversion cannot
// recover a latitude, e.g. for points at or near the geocenter.
var ErrNoConvergence = errors.New("frames: ecef to geodetic conversion did not converge")

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// Geodetic is a point on or above the WGS-84 ellipsoid.
// Latitude and longitude are in degrees, altitude in meters.
type Geodetic struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

// ECEF is an earth-centered, earth-fixed Cartesian point in meters.
type ECEF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ENU is a point or displacement in a local East-North-Up tangent plane,
// in meters. The type carries no reference to its anchoring origin; adding
// or subtracting ENU values from different origins is a caller error.
type ENU struct {
	E float64 `json:"e"`
	N float64 `json:"n"`
	U float64 `json:"u"`
}

// Add returns p + q component-wise.
func (p ENU) Add(q ENU) ENU {
	return ENU{E: p.E + q.E, N: p.N + q.N, U: p.U + q.U}
}

// Sub returns p - q component-wise.
func (p ENU) Sub(q ENU) ENU {
	return ENU{E: p.E - q.E, N: p.N - q.N, U: p.U - q.U}
}

// AER describes a target relative to an observer: azimuth in degrees
// clockwise from North in [0,360), elevation in degrees in [-90,90], and
// slant range in meters.
type AER struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
	Range     float64 `json:"range"`
}

// GeodeticToECEFBatch converts geodetic points to ECEF using the closed-form
// ellipsoidal formula with the prime-vertical radius of curvature.
func GeodeticToECEFBatch(points []Geodetic) []ECEF {
	out := make([]ECEF, len(points))
	for i, g := range points {
		lat := g.Lat * deg2rad
		lon := g.Lon * deg2rad
		sinLat, cosLat := math.Sincos(lat)
		sinLon, cosLon := math.Sincos(lon)

		// Radius of curvature in the prime vertical.
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

		out[i] = ECEF{
			X: (n + g.Alt) * cosLat * cosLon,
			Y: (n + g.Alt) * cosLat * sinLon,
			Z: (n*(1-wgs84E2) + g.Alt) * sinLat,
		}
	}
	return out
}

// GeodeticToECEF converts a single geodetic point to ECEF.
func GeodeticToECEF(g Geodetic) ECEF {
	return GeodeticToECEFBatch([]Geodetic{g})[0]
}

// ECEFToGeodeticBatch converts ECEF points to geodetic using iterative
// Bowring latitude recovery. It converges to sub-millimeter accuracy within
// a few iterations for all Earth-surface-proximate inputs. If any point
// fails to converge the whole batch fails; no partial results are returned.
func ECEFToGeodeticBatch(points []ECEF) ([]Geodetic, error) {
	out := make([]Geodetic, len(points))
	for i, p := range points {
		g, err := ecefToGeodetic(p)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// ECEFToGeodetic converts a single ECEF point to geodetic.
func ECEFToGeodetic(p ECEF) (Geodetic, error) {
	out, err := ECEFToGeodeticBatch([]ECEF{p})
	if err != nil {
		return Geodetic{}, err
	}
	return out[0], nil
}

func ecefToGeodetic(pt ECEF) (Geodetic, error) {
	p := math.Hypot(pt.X, pt.Y)
	if p == 0 && pt.Z == 0 {
		// The geocenter has no defined latitude or longitude.
		return Geodetic{}, ErrNoConvergence
	}

	lon := math.Atan2(pt.Y, pt.X)

	// Initial estimate per Bowring.
	lat := math.Atan2(pt.Z, p*(1-wgs84E2))

	converged := false
	for i := 0; i < maxLatIter; i++ {
		sinLat := math.Sin(lat)
		n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)
		next := math.Atan2(pt.Z+wgs84E2*n*sinLat, p)
		if math.Abs(next-lat) < latTolRad {
			lat = next
			converged = true
			break
		}
		lat = next
	}
	if !converged {
		return Geodetic{}, ErrNoConvergence
	}

	sinLat, cosLat := math.Sincos(lat)
	n := wgs84A / math.Sqrt(1-wgs84E2*sinLat*sinLat)

	var alt float64
	if math.Abs(cosLat) > 1e-10 {
		alt = p/cosLat - n
	} else {
		// Polar axis: derive altitude from the z component.
		alt = math.Abs(pt.Z)/math.Abs(sinLat) - n*(1-wgs84E2)
	}

	return Geodetic{
		Lat: lat * rad2deg,
		Lon: lon * rad2deg,
		Alt: alt,
	}, nil
}

// GeodeticToENU converts a geodetic point into the ENU frame anchored at origin.
func GeodeticToENU(g Geodetic, origin Geodetic) ENU {
	return NewLocalFrame(origin).ToENU(g)
}

// ENUToGeodetic converts an ENU point anchored at origin back to geodetic.
func ENUToGeodetic(p ENU, origin Geodetic) (Geodetic, error) {
	return NewLocalFrame(origin).ToGeodetic(p)
}
