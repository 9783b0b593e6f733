package trajectory

import (
	"errors"
	"math"
	"testing"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
	"github.com/AleNovelli/drone-flightplans/internal/site"
)

func anchoredSite(t *testing.T) *site.Site {
	t.Helper()
	s := site.New(nil)
	s.AddTelescope(site.Telescope{Name: "t1", Geodetic: frames.Geodetic{Lat: 44.0, Lon: 10.0, Alt: 500}})
	s.SetLandingSite(frames.Geodetic{Lat: 44.0, Lon: 10.001, Alt: 495})
	origin := frames.Geodetic{Lat: 44.0, Lon: 10.0, Alt: 500}
	if err := s.SetOrigin(&origin); err != nil {
		t.Fatalf("SetOrigin: %v", err)
	}
	return s
}

func TestNewArcTrajectory_ElevationSweep(t *testing.T) {
	s := anchoredSite(t)
	poi := frames.ENU{E: 200, N: -100, U: 0}

	traj, err := NewArcTrajectory(s, ArcParams{
		POI:        poi,
		SlantRange: 1000,
		AzCenter:   45,
		ElCenter:   20,
		ElWidth:    10,
		Steps:      5,
	})
	if err != nil {
		t.Fatalf("NewArcTrajectory: %v", err)
	}

	if traj.NPoints() != 5 {
		t.Fatalf("points = %d, want 5", traj.NPoints())
	}
	if len(traj.Yaw) != 5 || len(traj.Pitch) != 5 {
		t.Fatalf("yaw/pitch lengths = %d/%d, want 5", len(traj.Yaw), len(traj.Pitch))
	}

	// The AER of each point as seen from the POI is linearly spaced in
	// elevation between the extremes, at constant azimuth and range.
	wantEls := []float64{15, 17.5, 20, 22.5, 25}
	for i, p := range traj.ENU {
		a := frames.ENUToAER(p.Sub(poi))
		if math.Abs(a.Elevation-wantEls[i]) > 1e-6 {
			t.Errorf("point %d elevation = %.8f, want %.8f", i, a.Elevation, wantEls[i])
		}
		if math.Abs(a.Azimuth-45) > 1e-6 {
			t.Errorf("point %d azimuth = %.8f, want 45", i, a.Azimuth)
		}
		if math.Abs(a.Range-1000) > 1e-6 {
			t.Errorf("point %d range = %.8f, want 1000", i, a.Range)
		}
	}

	// The midpoint sits exactly at the center elevation.
	mid := frames.ENUToAER(traj.ENU[2].Sub(poi))
	if math.Abs(mid.Elevation-20) > 1e-6 {
		t.Errorf("midpoint elevation = %.8f, want 20", mid.Elevation)
	}

	// Enrichment: geodetic derived, landing site copied, radius recorded.
	if traj.Geodetic == nil || len(traj.Geodetic) != 5 {
		t.Error("geodetic not derived")
	}
	if traj.LandingSite == nil {
		t.Error("landing site not copied from the site")
	}
	if traj.CurveRadius != 1000 {
		t.Errorf("curve radius = %v, want 1000", traj.CurveRadius)
	}
	if traj.ArcCenter != nil {
		t.Error("fixed-AER arc should not record an explicit arc center")
	}
	if traj.POI == nil {
		t.Error("POI not recorded")
	}
}

func TestNewArcTrajectory_Orientation(t *testing.T) {
	s := anchoredSite(t)
	poi := frames.ENU{E: 1000, N: 0, U: 0}

	traj, err := NewArcTrajectory(s, ArcParams{
		POI:        poi,
		SlantRange: 800,
		AzCenter:   90,
		ElCenter:   10,
		ElWidth:    10,
		Steps:      7,
	})
	if err != nil {
		t.Fatalf("NewArcTrajectory: %v", err)
	}

	// Stored yaw/pitch must match an independent AER(point -> POI).
	for i, p := range traj.ENU {
		a := frames.ENUToAER(poi.Sub(p))
		if math.Abs(a.Azimuth-traj.Yaw[i]) > 1e-6 {
			t.Errorf("point %d yaw = %.8f, want %.8f", i, traj.Yaw[i], a.Azimuth)
		}
		if math.Abs(a.Elevation-traj.Pitch[i]) > 1e-6 {
			t.Errorf("point %d pitch = %.8f, want %.8f", i, traj.Pitch[i], a.Elevation)
		}
	}
}

func TestNewArcTrajectory_SinglePoint(t *testing.T) {
	s := anchoredSite(t)
	traj, err := NewArcTrajectory(s, ArcParams{
		POI:        frames.ENU{},
		SlantRange: 500,
		AzCenter:   180,
		ElCenter:   30,
		ElWidth:    20,
		Steps:      1,
	})
	if err != nil {
		t.Fatalf("NewArcTrajectory: %v", err)
	}
	if traj.NPoints() != 1 {
		t.Fatalf("points = %d, want 1", traj.NPoints())
	}
	// The lone point sits at the center elevation.
	a := frames.ENUToAER(traj.ENU[0])
	if math.Abs(a.Elevation-30) > 1e-6 {
		t.Errorf("degenerate elevation = %.8f, want 30", a.Elevation)
	}
}

func TestNewArcTrajectory_InvalidParams(t *testing.T) {
	s := anchoredSite(t)
	tests := []struct {
		name string
		p    ArcParams
	}{
		{"zero steps", ArcParams{SlantRange: 100, Steps: 0}},
		{"negative steps", ArcParams{SlantRange: 100, Steps: -3}},
		{"zero range", ArcParams{SlantRange: 0, Steps: 5}},
		{"negative width", ArcParams{SlantRange: 100, ElWidth: -1, Steps: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewArcTrajectory(s, tt.p); !errors.Is(err, ErrInvalidTrajectory) {
				t.Errorf("err = %v, want ErrInvalidTrajectory", err)
			}
		})
	}
}

func TestNewNominalArcTrajectory_ArcCenter(t *testing.T) {
	s := anchoredSite(t)
	nominal := frames.ENU{E: 0, N: 0, U: 0}

	traj, err := NewNominalArcTrajectory(s, NominalParams{
		NominalPOI:   nominal,
		NominalAz:    90,
		NominalEl:    10,
		NominalRange: 1000,
		POI:          frames.ENU{E: 100, N: 50, U: 0},
		DeltaEl:      10,
		Steps:        5,
	})
	if err != nil {
		t.Fatalf("NewNominalArcTrajectory: %v", err)
	}

	if traj.ArcCenter == nil {
		t.Fatal("nominal arc must record its arc center")
	}
	want := frames.AERToENU(frames.AER{Azimuth: 90, Elevation: 10, Range: 1000})
	if math.Abs(traj.ArcCenter.E-want.E) > 1e-9 ||
		math.Abs(traj.ArcCenter.N-want.N) > 1e-9 ||
		math.Abs(traj.ArcCenter.U-want.U) > 1e-9 {
		t.Errorf("arc center = %+v, want %+v", traj.ArcCenter, want)
	}

	// The middle point coincides with the arc center: the sweep is centered
	// on the POI-to-center pointing solution.
	mid := traj.ENU[2]
	if math.Abs(mid.E-want.E) > 1e-6 || math.Abs(mid.N-want.N) > 1e-6 || math.Abs(mid.U-want.U) > 1e-6 {
		t.Errorf("middle point = %+v, want arc center %+v", mid, want)
	}
}

// When the nominal and actual POI coincide, the nominal-pointing arc
// re-derives exactly the nominal azimuth/elevation/range and both variants
// produce the same points and orientations.
func TestVariantsAgreeWhenPOIsCoincide(t *testing.T) {
	s := anchoredSite(t)
	poi := frames.ENU{E: 300, N: 400, U: 12}

	fixed, err := NewArcTrajectory(s, ArcParams{
		POI:        poi,
		SlantRange: 1200,
		AzCenter:   135,
		ElCenter:   25,
		ElWidth:    8,
		Steps:      9,
	})
	if err != nil {
		t.Fatalf("NewArcTrajectory: %v", err)
	}

	nominal, err := NewNominalArcTrajectory(s, NominalParams{
		NominalPOI:   poi,
		NominalAz:    135,
		NominalEl:    25,
		NominalRange: 1200,
		POI:          poi,
		DeltaEl:      8,
		Steps:        9,
	})
	if err != nil {
		t.Fatalf("NewNominalArcTrajectory: %v", err)
	}

	if fixed.NPoints() != nominal.NPoints() {
		t.Fatalf("point counts differ: %d vs %d", fixed.NPoints(), nominal.NPoints())
	}
	for i := range fixed.ENU {
		f, n := fixed.ENU[i], nominal.ENU[i]
		if math.Abs(f.E-n.E) > 1e-6 || math.Abs(f.N-n.N) > 1e-6 || math.Abs(f.U-n.U) > 1e-6 {
			t.Errorf("point %d differs: %+v vs %+v", i, f, n)
		}
		if math.Abs(fixed.Yaw[i]-nominal.Yaw[i]) > 1e-6 {
			t.Errorf("yaw %d differs: %v vs %v", i, fixed.Yaw[i], nominal.Yaw[i])
		}
		if math.Abs(fixed.Pitch[i]-nominal.Pitch[i]) > 1e-6 {
			t.Errorf("pitch %d differs: %v vs %v", i, fixed.Pitch[i], nominal.Pitch[i])
		}
	}

	// They still differ in arc-center bookkeeping.
	if fixed.ArcCenter != nil || nominal.ArcCenter == nil {
		t.Error("arc-center presence should distinguish the two variants")
	}
}

func TestGeodeticPoints_RequiresDerivation(t *testing.T) {
	d := &DroneTrajectory{ENU: []frames.ENU{{E: 1, N: 2, U: 3}}}
	if _, err := d.GeodeticPoints(); !errors.Is(err, ErrGeodeticNotComputed) {
		t.Errorf("err = %v, want ErrGeodeticNotComputed", err)
	}

	s := anchoredSite(t)
	if err := d.ComputeGeodetic(s); err != nil {
		t.Fatalf("ComputeGeodetic: %v", err)
	}
	if _, err := d.GeodeticPoints(); err != nil {
		t.Errorf("GeodeticPoints after derivation: %v", err)
	}
}

func TestCenterFallsBackToMean(t *testing.T) {
	d := &DroneTrajectory{ENU: []frames.ENU{
		{E: 0, N: 0, U: 0},
		{E: 2, N: 4, U: 6},
	}}
	if got := d.Center(); got != (frames.ENU{E: 1, N: 2, U: 3}) {
		t.Errorf("mean fallback center = %+v", got)
	}

	c := frames.ENU{E: 9, N: 9, U: 9}
	d.ArcCenter = &c
	if got := d.Center(); got != c {
		t.Errorf("explicit center = %+v, want %+v", got, c)
	}
}
