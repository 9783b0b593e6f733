package trajectory

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
)

// ArcParams describes a fixed-AER elevation-sweeping arc: points at constant
// azimuth and slant range from the POI, with elevation spanning
// ElCenter ± ElWidth/2.
type ArcParams struct {
	POI        frames.ENU
	SlantRange float64 // meters, > 0
	AzCenter   float64 // degrees
	ElCenter   float64 // degrees
	ElWidth    float64 // degrees, >= 0
	Steps      int     // number of points, >= 1
}

// NominalParams describes a nominal-pointing arc. The nominal POI/az/el/range
// fix the arc center in space; the sweep azimuth, elevation and range are then
// re-derived from the actual POI to that center, so the flown path stays put
// while the drone tracks a different POI.
type NominalParams struct {
	NominalPOI   frames.ENU
	NominalAz    float64 // degrees
	NominalEl    float64 // degrees
	NominalRange float64 // meters, > 0

	POI     frames.ENU
	DeltaEl float64 // degrees of elevation sweep, >= 0
	Steps   int     // number of points, >= 1
}

// NewArcTrajectory synthesizes a fixed-AER arc around the POI. The arc center
// is left unset; boresight computations fall back to the mean point.
func NewArcTrajectory(anchor Anchor, p ArcParams) (*DroneTrajectory, error) {
	if err := checkSweep(p.Steps, p.SlantRange, p.ElWidth); err != nil {
		return nil, err
	}

	els := elevationSpan(p.ElCenter-p.ElWidth/2, p.ElCenter+p.ElWidth/2, p.Steps)
	traj, err := buildArc(anchor, p.POI, p.AzCenter, els, p.SlantRange)
	if err != nil {
		return nil, err
	}
	return traj, nil
}

// NewNominalArcTrajectory synthesizes a nominal-pointing arc. The returned
// trajectory records the arc center explicitly.
func NewNominalArcTrajectory(anchor Anchor, p NominalParams) (*DroneTrajectory, error) {
	if err := checkSweep(p.Steps, p.NominalRange, p.DeltaEl); err != nil {
		return nil, err
	}

	// The nominal pointing solution fixes the arc center in the site frame.
	center := frames.AERToENU(frames.AER{
		Azimuth:   p.NominalAz,
		Elevation: p.NominalEl,
		Range:     p.NominalRange,
	}).Add(p.NominalPOI)

	// Re-derive the sweep geometry from the actual POI to that center.
	a0 := frames.ENUToAER(center.Sub(p.POI))

	els := elevationSpan(a0.Elevation-p.DeltaEl/2, a0.Elevation+p.DeltaEl/2, p.Steps)
	traj, err := buildArc(anchor, p.POI, a0.Azimuth, els, a0.Range)
	if err != nil {
		return nil, err
	}
	traj.ArcCenter = &center
	return traj, nil
}

func checkSweep(steps int, srange, width float64) error {
	if steps < 1 {
		return fmt.Errorf("%w: need at least 1 point, got %d", ErrInvalidTrajectory, steps)
	}
	if srange <= 0 {
		return fmt.Errorf("%w: slant range must be positive, got %g", ErrInvalidTrajectory, srange)
	}
	if width < 0 {
		return fmt.Errorf("%w: elevation sweep width must be non-negative, got %g", ErrInvalidTrajectory, width)
	}
	return nil
}

// buildArc places points at constant azimuth and range from the POI for each
// sweep elevation, derives the facing orientation, and enriches the
// trajectory through the anchor.
func buildArc(anchor Anchor, poi frames.ENU, az float64, els []float64, srange float64) (*DroneTrajectory, error) {
	aers := make([]frames.AER, len(els))
	for i, el := range els {
		aers[i] = frames.AER{Azimuth: az, Elevation: el, Range: srange}
	}

	offsets := frames.AERToENUBatch(aers)
	points := make([]frames.ENU, len(offsets))
	facing := make([]frames.ENU, len(offsets))
	for i, off := range offsets {
		points[i] = off.Add(poi)
		facing[i] = poi.Sub(points[i])
	}

	// Yaw and pitch face the drone back toward the POI.
	look := frames.ENUToAERBatch(facing)
	yaw := make([]float64, len(look))
	pitch := make([]float64, len(look))
	for i, a := range look {
		yaw[i] = a.Azimuth
		pitch[i] = a.Elevation
	}

	poiGeo, err := anchor.ENUToGeodetic(poi)
	if err != nil {
		return nil, err
	}

	traj := &DroneTrajectory{
		ENU:         points,
		Yaw:         yaw,
		Pitch:       pitch,
		POI:         &poiGeo,
		LandingSite: anchor.LandingSite(),
		CurveRadius: srange,
	}
	if err := traj.ComputeGeodetic(anchor); err != nil {
		return nil, err
	}
	return traj, nil
}

// elevationSpan returns n linearly spaced elevations inclusive of both
// endpoints. n == 1 degenerates to the single center value.
func elevationSpan(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{(lo + hi) / 2}
	}
	dst := make([]float64, n)
	floats.Span(dst, lo, hi)
	return dst
}
