// Package mission turns planned trajectories into flight-controller mission
// files: QGroundControl .plan JSON, Litchi CSV and plain-text QGC WPL 110
// waypoint lists.
package mission

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
	"github.com/AleNovelli/drone-flightplans/internal/geofence"
	"github.com/AleNovelli/drone-flightplans/internal/trajectory"
)

var (
	// ErrIncompleteTrajectory is returned when a trajectory lacks the
	// geodetic points, POI or landing site an exporter needs.
	ErrIncompleteTrajectory = errors.New("mission: trajectory missing geodetic points, POI or landing site")
	// ErrTooManyWaypoints is returned when a mission exceeds the target
	// format's waypoint limit.
	ErrTooManyWaypoints = errors.New("mission: too many waypoints")
)

// MAVLink mission commands shared by all three formats.
const (
	cmdWaypoint = 16
	cmdDelay    = 19
	cmdRTH      = 20
	cmdSpeed    = 178
	cmdROI      = 195

	frameGlobal       = 0 // absolute altitude
	frameMission      = 2 // no position
	frameGlobalRelAlt = 3 // altitude relative to home
)

// Options configures a mission export. Altitudes in the output are always
// relative to the landing-site altitude.
type Options struct {
	MoveSpeed float64 // m/s toward and away from the arc
	ScanSpeed float64 // m/s along the arc
	Repeat    int     // arc traversals; values below 1 mean a single pass

	// SafetyDirection selects the approach corridor from the geofence
	// data. Empty means no safety points, which is logged as a warning.
	SafetyDirection string
	Geofence        *geofence.Data

	Fence  bool // embed the site fence geometry (QGC plans only)
	AddRTH bool // append a return-to-launch item
}

func (o Options) repeat() int {
	if o.Repeat < 1 {
		return 1
	}
	return o.Repeat
}

// safetyPoints resolves the configured approach corridor. No direction set
// is allowed but warned about; a direction without geofence data is an error.
func (o Options) safetyPoints(logger *slog.Logger) ([]geofence.Waypoint, error) {
	if o.SafetyDirection == "" {
		logger.Warn("no safety corridor specified, mission flies straight to the arc")
		return nil, nil
	}
	if o.Geofence == nil {
		return nil, fmt.Errorf("%w: %q (no geofence data loaded)", geofence.ErrUnknownDirection, o.SafetyDirection)
	}
	return o.Geofence.SafetyWaypoints(o.SafetyDirection)
}

// waypointRow is one exported waypoint: geodetic position with the drone's
// facing orientation at that point.
type waypointRow struct {
	Geo   frames.Geodetic
	Yaw   float64
	Pitch float64
}

// checkTrajectory verifies a trajectory carries everything an exporter
// needs: derived geodetic points, a POI and a landing site.
func checkTrajectory(traj *trajectory.DroneTrajectory) error {
	switch {
	case traj.NPoints() == 0:
		return fmt.Errorf("%w: no points", ErrIncompleteTrajectory)
	case len(traj.Geodetic) != traj.NPoints():
		return fmt.Errorf("%w: geodetic points not derived", ErrIncompleteTrajectory)
	case traj.POI == nil:
		return fmt.Errorf("%w: no POI", ErrIncompleteTrajectory)
	case traj.LandingSite == nil:
		return fmt.Errorf("%w: no landing site", ErrIncompleteTrajectory)
	}
	return nil
}

// expandArc builds the flown waypoint sequence: the arc, then its interior
// points reversed (so the drone sweeps back without repeating the
// endpoints), the whole cycle repeated.
func expandArc(traj *trajectory.DroneTrajectory, repeat int) []waypointRow {
	n := traj.NPoints()
	cycle := make([]waypointRow, 0, 2*n-2)
	for i := 0; i < n; i++ {
		cycle = append(cycle, waypointRow{
			Geo:   traj.Geodetic[i],
			Yaw:   traj.Yaw[i],
			Pitch: traj.Pitch[i],
		})
	}
	for i := n - 2; i >= 1; i-- {
		cycle = append(cycle, cycle[i])
	}

	rows := make([]waypointRow, 0, len(cycle)*repeat)
	for r := 0; r < repeat; r++ {
		rows = append(rows, cycle...)
	}
	return rows
}
