// Package observe computes the pointing geometry under which the site's
// telescopes track drone trajectories.
package observe

import (
	"fmt"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
	"github.com/AleNovelli/drone-flightplans/internal/site"
	"github.com/AleNovelli/drone-flightplans/internal/trajectory"
)

// TelescopeToTargetAERBatch returns the azimuth, elevation and slant range
// under which the telescope sees each target point. The telescope must be
// anchored (its ENU position derived via the site origin).
func TelescopeToTargetAERBatch(tel *site.Telescope, targets []frames.ENU) ([]frames.AER, error) {
	if tel.ENU == nil {
		return nil, fmt.Errorf("%w: %q", site.ErrTelescopeNotAnchored, tel.Name)
	}
	diffs := make([]frames.ENU, len(targets))
	for i, p := range targets {
		diffs[i] = p.Sub(*tel.ENU)
	}
	return frames.ENUToAERBatch(diffs), nil
}

// TelescopeToTargetAER is TelescopeToTargetAERBatch for a single target.
func TelescopeToTargetAER(tel *site.Telescope, target frames.ENU) (frames.AER, error) {
	out, err := TelescopeToTargetAERBatch(tel, []frames.ENU{target})
	if err != nil {
		return frames.AER{}, err
	}
	return out[0], nil
}

// Boresight returns the pointing the telescope needs to hold for the whole
// pass: the AER toward the trajectory's arc center, falling back to the mean
// point for trajectories without an explicit center.
func Boresight(tel *site.Telescope, traj *trajectory.DroneTrajectory) (frames.AER, error) {
	return TelescopeToTargetAER(tel, traj.Center())
}
