// planarc plans a single calibration arc from the command line: it loads the
// site, generates the trajectory, prints the telescope boresight table and
// optionally writes a mission file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
	"github.com/AleNovelli/drone-flightplans/internal/geofence"
	"github.com/AleNovelli/drone-flightplans/internal/mission"
	"github.com/AleNovelli/drone-flightplans/internal/observe"
	"github.com/AleNovelli/drone-flightplans/internal/site"
	"github.com/AleNovelli/drone-flightplans/internal/trajectory"
)

func main() {
	var (
		sitePath     = flag.String("site", "", "site configuration file (required)")
		geofencePath = flag.String("geofence", "", "geofence configuration file")

		poiE       = flag.Float64("poi-e", 0, "POI east offset in meters")
		poiN       = flag.Float64("poi-n", 0, "POI north offset in meters")
		poiU       = flag.Float64("poi-u", 0, "POI up offset in meters")
		slantRange = flag.Float64("range", 1000, "slant range from the POI in meters")
		azCenter   = flag.Float64("az", 0, "arc center azimuth in degrees")
		elCenter   = flag.Float64("el", 20, "arc center elevation in degrees")
		elWidth    = flag.Float64("width", 10, "elevation sweep width in degrees")
		steps      = flag.Int("steps", 5, "number of arc points")

		format    = flag.String("format", "qgc", "mission format: qgc, litchi or text")
		out       = flag.String("out", "", "mission output file (omit to skip export)")
		moveSpeed = flag.Float64("move-speed", 8, "travel speed in m/s")
		scanSpeed = flag.Float64("scan-speed", 2, "arc speed in m/s")
		repeat    = flag.Int("repeat", 1, "arc traversals")
		safety    = flag.String("safety", "", "safety corridor direction")
		fence     = flag.Bool("fence", false, "embed the site fence (qgc only)")
		rth       = flag.Bool("rth", false, "append return-to-launch")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if *sitePath == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -site is required")
		flag.Usage()
		os.Exit(2)
	}

	st, err := site.Load(*sitePath, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR loading site:", err)
		os.Exit(1)
	}
	if !st.Anchored() {
		if err := st.SetOrigin(nil); err != nil {
			fmt.Fprintln(os.Stderr, "ERROR anchoring site:", err)
			os.Exit(1)
		}
	}

	var geo *geofence.Data
	if *geofencePath != "" {
		geo, err = geofence.Load(*geofencePath, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR loading geofence:", err)
			os.Exit(1)
		}
	}

	traj, err := trajectory.NewArcTrajectory(st, trajectory.ArcParams{
		POI:        frames.ENU{E: *poiE, N: *poiN, U: *poiU},
		SlantRange: *slantRange,
		AzCenter:   *azCenter,
		ElCenter:   *elCenter,
		ElWidth:    *elWidth,
		Steps:      *steps,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR generating trajectory:", err)
		os.Exit(1)
	}

	fmt.Printf("Arc: %d points, POI (%.1f, %.1f, %.1f) m ENU, az %.1f el %.1f±%.1f deg, range %.0f m\n",
		traj.NPoints(), *poiE, *poiN, *poiU, *azCenter, *elCenter, *elWidth/2, *slantRange)
	for i, p := range traj.ENU {
		fmt.Printf("  point %d: ENU (%.1f, %.1f, %.1f)  lat %.6f lon %.6f alt %.1f  yaw %.1f pitch %.1f\n",
			i, p.E, p.N, p.U,
			traj.Geodetic[i].Lat, traj.Geodetic[i].Lon, traj.Geodetic[i].Alt,
			traj.Yaw[i], traj.Pitch[i])
	}

	pool := observe.NewPool(4, logger)
	sum, err := pool.Summarize(context.Background(), st, observe.Request{
		Trajectories: map[string]*trajectory.DroneTrajectory{"arc": traj},
		Boresight:    true,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR computing boresight table:", err)
		os.Exit(1)
	}

	fmt.Println("\nBoresight table:")
	for _, row := range sum.Boresight {
		fmt.Printf("  %-12s az %8.3f deg  el %7.3f deg\n", row.Telescope, row.Azimuth, row.Elevation)
	}

	if *out == "" {
		return
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR creating output file:", err)
		os.Exit(1)
	}
	defer f.Close()

	opts := mission.Options{
		MoveSpeed:       *moveSpeed,
		ScanSpeed:       *scanSpeed,
		Repeat:          *repeat,
		SafetyDirection: *safety,
		Geofence:        geo,
		Fence:           *fence,
		AddRTH:          *rth,
	}

	switch *format {
	case "qgc":
		plan, err := mission.ExportQGC(traj, opts, logger)
		if err == nil {
			err = mission.WriteQGC(f, plan)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR exporting QGC plan:", err)
			os.Exit(1)
		}
	case "litchi":
		if err := mission.ExportLitchi(f, traj, opts, logger); err != nil {
			fmt.Fprintln(os.Stderr, "ERROR exporting litchi mission:", err)
			os.Exit(1)
		}
	case "text":
		if err := mission.ExportMAVText(f, traj, opts, logger); err != nil {
			fmt.Fprintln(os.Stderr, "ERROR exporting waypoint list:", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "ERROR: unknown format %q (want qgc, litchi or text)\n", *format)
		os.Exit(2)
	}

	fmt.Printf("\nMission written to %s (%s)\n", *out, *format)
}
