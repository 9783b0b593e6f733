// Package trajectory synthesizes arc-shaped drone calibration trajectories
// around a point of interest and carries the resulting flight geometry.
package trajectory

import (
	"errors"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
)

var (
	// ErrInvalidTrajectory is returned for non-positive point counts or
	// malformed sweep parameters.
	ErrInvalidTrajectory = errors.New("trajectory: invalid trajectory parameters")
	// ErrGeodeticNotComputed is returned when derived geodetic views are
	// requested before ComputeGeodetic.
	ErrGeodeticNotComputed = errors.New("trajectory: geodetic coordinates not computed, call ComputeGeodetic first")
)

// Anchor provides the origin-bound conversions and landing site a trajectory
// needs for enrichment. *site.Site satisfies it.
type Anchor interface {
	ENUToGeodetic(p frames.ENU) (frames.Geodetic, error)
	ENUToGeodeticBatch(points []frames.ENU) ([]frames.Geodetic, error)
	LandingSite() *frames.Geodetic
}

// DroneTrajectory is a sequence of ENU points with the drone orientation
// (yaw/pitch toward the POI) at each point. Geodetic is derived from ENU via
// an Anchor; it is absent until ComputeGeodetic has run. Yaw, Pitch and ENU
// always have equal length.
type DroneTrajectory struct {
	ENU   []frames.ENU
	Yaw   []float64 // degrees, azimuth of the POI as seen from each point
	Pitch []float64 // degrees, elevation of the POI as seen from each point

	ArcCenter   *frames.ENU
	Geodetic    []frames.Geodetic
	POI         *frames.Geodetic
	LandingSite *frames.Geodetic
	CurveRadius float64
}

// NPoints returns the number of trajectory points.
func (d *DroneTrajectory) NPoints() int {
	return len(d.ENU)
}

// ComputeGeodetic derives the geodetic view of the ENU points through the
// anchor's origin. Generators call this themselves; it is exposed for
// trajectories assembled by hand and for re-deriving after an origin change.
func (d *DroneTrajectory) ComputeGeodetic(a Anchor) error {
	geo, err := a.ENUToGeodeticBatch(d.ENU)
	if err != nil {
		return err
	}
	d.Geodetic = geo
	return nil
}

// GeodeticPoints returns the derived geodetic points, or
// ErrGeodeticNotComputed before derivation.
func (d *DroneTrajectory) GeodeticPoints() ([]frames.Geodetic, error) {
	if d.Geodetic == nil {
		return nil, ErrGeodeticNotComputed
	}
	return d.Geodetic, nil
}

// Center returns the arc center, falling back to the arithmetic mean of the
// ENU points when no explicit center was recorded.
func (d *DroneTrajectory) Center() frames.ENU {
	if d.ArcCenter != nil {
		return *d.ArcCenter
	}
	return d.MeanENU()
}

// MeanENU returns the component-wise mean of the trajectory points.
func (d *DroneTrajectory) MeanENU() frames.ENU {
	var sum frames.ENU
	if len(d.ENU) == 0 {
		return sum
	}
	for _, p := range d.ENU {
		sum = sum.Add(p)
	}
	n := float64(len(d.ENU))
	return frames.ENU{E: sum.E / n, N: sum.N / n, U: sum.U / n}
}
