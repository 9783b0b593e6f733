package frames

import "math"

// ENUToAERBatch converts ENU displacement vectors to azimuth, elevation and
// slant range. Azimuth is measured clockwise from North; the degenerate case
// e=n=0 yields azimuth 0 by convention.
func ENUToAERBatch(points []ENU) []AER {
	out := make([]AER, len(points))
	for i, p := range points {
		horiz := math.Hypot(p.E, p.N)

		az := math.Atan2(p.E, p.N)
		if az < 0 {
			az += 2 * math.Pi
		}

		out[i] = AER{
			Azimuth:   az * rad2deg,
			Elevation: math.Atan2(p.U, horiz) * rad2deg,
			Range:     math.Sqrt(p.E*p.E + p.N*p.N + p.U*p.U),
		}
	}
	return out
}

// ENUToAER converts a single ENU displacement to AER.
func ENUToAER(p ENU) AER {
	return ENUToAERBatch([]ENU{p})[0]
}

// AERToENUBatch converts azimuth/elevation/range triples to ENU
// displacements. It is the exact inverse of ENUToAERBatch.
func AERToENUBatch(aers []AER) []ENU {
	out := make([]ENU, len(aers))
	for i, a := range aers {
		sinAz, cosAz := math.Sincos(a.Azimuth * deg2rad)
		sinEl, cosEl := math.Sincos(a.Elevation * deg2rad)

		horiz := a.Range * cosEl
		out[i] = ENU{
			E: horiz * sinAz,
			N: horiz * cosAz,
			U: a.Range * sinEl,
		}
	}
	return out
}

// AERToENU converts a single AER triple to an ENU displacement.
func AERToENU(a AER) ENU {
	return AERToENUBatch([]AER{a})[0]
}
