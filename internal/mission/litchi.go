package mission

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/AleNovelli/drone-flightplans/internal/geofence"
	"github.com/AleNovelli/drone-flightplans/internal/trajectory"
)

// litchiColumns is the canonical Litchi CSV header.
// https://www.wesbarris.com/litchiutilities/docs/litchiCsv.php
var litchiColumns = []string{
	"latitude", "longitude", "altitude(m)", "heading(deg)", "curvesize(m)",
	"rotationdir", "gimbalmode", "gimbalpitchangle", "actiontype1",
	"actionparam1", "altitudemode", "speed(m/s)", "poi_latitude",
	"poi_longitude", "poi_altitude(m)", "poi_altitudemode",
}

// litchiMaxWaypoints is Litchi's hard mission size limit.
const litchiMaxWaypoints = 100

// litchiHeading is the fixed heading flown along each safety corridor:
// facing away from the approach direction, back toward the site.
var litchiHeading = map[string]float64{
	"south": 0,
	"north": 180,
	"east":  270,
	"west":  90,
}

// litchiRow is one Litchi CSV record, in column order. Gimbal mode 1 keeps
// the camera focused on the POI throughout.
type litchiRow struct {
	Lat, Lon, Alt    float64
	Heading          float64
	CurveSize        float64
	RotationDir      int
	GimbalMode       int
	GimbalPitchAngle float64
	ActionType1      int
	ActionParam1     float64
	AltitudeMode     int
	Speed            float64
	POILat, POILon   float64
	POIAlt           float64
	POIAltitudeMode  int
}

func (r litchiRow) record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		f(r.Lat), f(r.Lon), f(r.Alt), f(r.Heading), f(r.CurveSize),
		strconv.Itoa(r.RotationDir), strconv.Itoa(r.GimbalMode),
		f(r.GimbalPitchAngle), strconv.Itoa(r.ActionType1), f(r.ActionParam1),
		strconv.Itoa(r.AltitudeMode), f(r.Speed), f(r.POILat), f(r.POILon),
		f(r.POIAlt), strconv.Itoa(r.POIAltitudeMode),
	}
}

// ExportLitchi writes the trajectory as a Litchi CSV mission: the safety
// corridor at travel speed, then the expanded arc at scan speed, every
// waypoint tracking the POI. Litchi rejects missions of 100 waypoints or
// more, hence ErrTooManyWaypoints.
func ExportLitchi(w io.Writer, traj *trajectory.DroneTrajectory, opts Options, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := checkTrajectory(traj); err != nil {
		return err
	}
	safety, err := opts.safetyPoints(logger)
	if err != nil {
		return err
	}

	home := *traj.LandingSite
	poiAlt := traj.POI.Alt - home.Alt
	var rows []litchiRow

	if len(safety) > 0 {
		heading, ok := litchiHeading[opts.SafetyDirection]
		if !ok {
			return fmt.Errorf("%w: no litchi heading for %q", geofence.ErrUnknownDirection, opts.SafetyDirection)
		}
		for _, sp := range safety {
			rows = append(rows, litchiRow{
				Lat: sp.Lat, Lon: sp.Lon, Alt: sp.Alt,
				Heading:          heading,
				CurveSize:        traj.CurveRadius,
				GimbalMode:       1,
				GimbalPitchAngle: traj.Pitch[0],
				ActionType1:      -1,
				Speed:            opts.MoveSpeed,
				POILat:           traj.POI.Lat,
				POILon:           traj.POI.Lon,
				POIAlt:           poiAlt,
			})
		}
	}

	for _, row := range expandArc(traj, opts.repeat()) {
		rows = append(rows, litchiRow{
			Lat: row.Geo.Lat, Lon: row.Geo.Lon, Alt: row.Geo.Alt - home.Alt,
			Heading:          row.Yaw,
			CurveSize:        traj.CurveRadius,
			GimbalMode:       1,
			GimbalPitchAngle: row.Pitch,
			ActionType1:      -1,
			Speed:            opts.ScanSpeed,
			POILat:           traj.POI.Lat,
			POILon:           traj.POI.Lon,
			POIAlt:           poiAlt,
		})
	}

	if len(rows) >= litchiMaxWaypoints {
		return fmt.Errorf("%w: litchi missions are limited to %d waypoints, got %d",
			ErrTooManyWaypoints, litchiMaxWaypoints, len(rows))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(litchiColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	logger.Info("litchi mission written", "waypoints", len(rows), "repeat", opts.repeat())
	return nil
}
