package mission

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
	"github.com/AleNovelli/drone-flightplans/internal/trajectory"
)

// mavTextHeader opens every plain-text waypoint file.
const mavTextHeader = "QGC WPL 110\n"

// mavWriter emits tab-separated QGC WPL 110 mission lines with running
// sequence numbers.
type mavWriter struct {
	sb  strings.Builder
	seq int
}

func (m *mavWriter) item(current, frame, command int, p1, p2, p3, p4, x, y, z float64) {
	fmt.Fprintf(&m.sb, "%d\t%d\t%d\t%d\t%.6f\t%.6f\t%.6f\t%.6f\t%.8f\t%.8f\t%.6f\t%d\n",
		m.seq, current, frame, command, p1, p2, p3, p4, x, y, z, 1)
	m.seq++
}

func (m *mavWriter) waypoint(lat, lon, alt float64, frame int) {
	m.item(0, frame, cmdWaypoint, 0, 0, 0, 0, lat, lon, alt)
}

func (m *mavWriter) roi(lat, lon, alt float64) {
	m.item(0, frameGlobalRelAlt, cmdROI, 0, 0, 0, 0, lat, lon, alt)
}

func (m *mavWriter) speed(speed float64) {
	m.item(0, frameMission, cmdSpeed, 0, speed, 0, 0, 0, 0, 0)
}

func (m *mavWriter) delay(seconds float64) {
	m.item(0, frameMission, cmdDelay, seconds, 0, 0, 0, 0, 0, 0)
}

func (m *mavWriter) rth() {
	m.item(0, frameMission, cmdRTH, 0, 0, 0, 0, 0, 0, 0)
}

// ExportMAVText writes the trajectory as a plain-text QGC WPL 110 waypoint
// list. The first line after the header is the home position at the landing
// site in absolute altitude; the flight controller overwrites it at takeoff.
func ExportMAVText(w io.Writer, traj *trajectory.DroneTrajectory, opts Options, logger *slog.Logger) error {
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
	var m mavWriter
	m.sb.WriteString(mavTextHeader)

	m.waypoint(home.Lat, home.Lon, home.Alt, frameGlobal)
	m.roi(traj.POI.Lat, traj.POI.Lon, traj.POI.Alt-home.Alt)
	m.speed(opts.MoveSpeed)
	for _, sp := range safety {
		m.waypoint(sp.Lat, sp.Lon, sp.Alt, frameGlobalRelAlt)
	}

	rows := expandArc(traj, opts.repeat())
	m.waypoint(rows[0].Geo.Lat, rows[0].Geo.Lon, rows[0].Geo.Alt-home.Alt, frameGlobalRelAlt)
	m.speed(opts.ScanSpeed)
	for _, row := range rows[1:] {
		m.waypoint(row.Geo.Lat, row.Geo.Lon, row.Geo.Alt-home.Alt, frameGlobalRelAlt)
	}
	if opts.AddRTH {
		m.rth()
	}

	if _, err := io.WriteString(w, m.sb.String()); err != nil {
		return err
	}
	logger.Info("waypoint list written", "items", m.seq, "repeat", opts.repeat())
	return nil
}

// ExportROISwitchTest writes a diagnostic mission that hovers 10 m above the
// landing site and alternates the camera ROI between two POIs, pausing after
// each switch. Used to verify gimbal POI tracking before flying a real pass.
func ExportROISwitchTest(w io.Writer, landing, poi1, poi2 frames.Geodetic, repeat int) error {
	if repeat < 1 {
		repeat = 1
	}

	var m mavWriter
	m.sb.WriteString(mavTextHeader)

	m.waypoint(landing.Lat, landing.Lon, landing.Alt, frameGlobal)
	m.speed(1)
	m.waypoint(landing.Lat, landing.Lon, 10, frameGlobalRelAlt)
	m.delay(10)
	m.roi(landing.Lat, landing.Lon, 0)
	m.delay(10)

	for i := 0; i < repeat; i++ {
		m.roi(poi1.Lat, poi1.Lon, poi1.Alt-landing.Alt)
		m.delay(10)
		m.roi(poi2.Lat, poi2.Lon, poi2.Alt-landing.Alt)
		m.delay(10)
	}
	m.rth()

	_, err := io.WriteString(w, m.sb.String())
	return err
}
