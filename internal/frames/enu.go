package frames

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// LocalFrame is an East-North-Up tangent plane anchored at a geodetic origin.
// The origin's ECEF position and local rotation matrix are computed once at
// construction and reused for every conversion, so a frame can be shared
// across many batch calls. A LocalFrame is immutable after construction and
// safe for concurrent use.
type LocalFrame struct {
	origin     Geodetic
	originECEF ECEF
	rot        *mat.Dense // rows are the East, North, Up unit vectors
}

// NewLocalFrame builds the local tangent frame anchored at origin.
func NewLocalFrame(origin Geodetic) *LocalFrame {
	sinLat, cosLat := math.Sincos(origin.Lat * deg2rad)
	sinLon, cosLon := math.Sincos(origin.Lon * deg2rad)

	rot := mat.NewDense(3, 3, []float64{
		-sinLon, cosLon, 0,
		-sinLat * cosLon, -sinLat * sinLon, cosLat,
		cosLat * cosLon, cosLat * sinLon, sinLat,
	})

	return &LocalFrame{
		origin:     origin,
		originECEF: GeodeticToECEF(origin),
		rot:        rot,
	}
}

// Origin returns the anchoring geodetic point of the frame.
func (f *LocalFrame) Origin() Geodetic {
	return f.origin
}

// ToENUBatch converts geodetic points into this frame: ECEF delta from the
// origin rotated by the local East/North/Up rows.
func (f *LocalFrame) ToENUBatch(points []Geodetic) []ENU {
	ecef := GeodeticToECEFBatch(points)
	out := make([]ENU, len(ecef))
	d := mat.NewVecDense(3, nil)
	r := mat.NewVecDense(3, nil)
	for i, p := range ecef {
		d.SetVec(0, p.X-f.originECEF.X)
		d.SetVec(1, p.Y-f.originECEF.Y)
		d.SetVec(2, p.Z-f.originECEF.Z)
		r.MulVec(f.rot, d)
		out[i] = ENU{E: r.AtVec(0), N: r.AtVec(1), U: r.AtVec(2)}
	}
	return out
}

// ToENU converts a single geodetic point into this frame.
func (f *LocalFrame) ToENU(g Geodetic) ENU {
	return f.ToENUBatch([]Geodetic{g})[0]
}

// ToGeodeticBatch converts ENU points in this frame back to geodetic:
// inverse (transposed) rotation, then ECEF to geodetic. If any point fails
// latitude recovery the whole batch fails.
func (f *LocalFrame) ToGeodeticBatch(points []ENU) ([]Geodetic, error) {
	ecef := make([]ECEF, len(points))
	v := mat.NewVecDense(3, nil)
	r := mat.NewVecDense(3, nil)
	for i, p := range points {
		v.SetVec(0, p.E)
		v.SetVec(1, p.N)
		v.SetVec(2, p.U)
		r.MulVec(f.rot.T(), v)
		ecef[i] = ECEF{
			X: r.AtVec(0) + f.originECEF.X,
			Y: r.AtVec(1) + f.originECEF.Y,
			Z: r.AtVec(2) + f.originECEF.Z,
		}
	}
	return ECEFToGeodeticBatch(ecef)
}

// ToGeodetic converts a single ENU point in this frame back to geodetic.
func (f *LocalFrame) ToGeodetic(p ENU) (Geodetic, error) {
	out, err := f.ToGeodeticBatch([]ENU{p})
	if err != nil {
		return Geodetic{}, err
	}
	return out[0], nil
}
