package frames

import (
	"math"
	"testing"
)

func TestLocalFrame_CardinalDirections(t *testing.T) {
	origin := Geodetic{Lat: 44.0, Lon: 10.0, Alt: 500}
	f := NewLocalFrame(origin)

	// A point slightly north of the origin has a dominant +N component.
	north := f.ToENU(Geodetic{Lat: 44.01, Lon: 10.0, Alt: 500})
	if north.N < 1000 || math.Abs(north.E) > 1 {
		t.Errorf("northward point = %+v, want N >> 0, E ~ 0", north)
	}

	// Slightly east: dominant +E.
	east := f.ToENU(Geodetic{Lat: 44.0, Lon: 10.01, Alt: 500})
	if east.E < 500 || math.Abs(east.N) > 100 {
		t.Errorf("eastward point = %+v, want E >> 0", east)
	}

	// Directly above: pure +U.
	up := f.ToENU(Geodetic{Lat: 44.0, Lon: 10.0, Alt: 600})
	if math.Abs(up.U-100) > 1e-6 || math.Abs(up.E) > 1e-6 || math.Abs(up.N) > 1e-6 {
		t.Errorf("overhead point = %+v, want (0, 0, 100)", up)
	}
}

func TestLocalFrame_RoundTrip(t *testing.T) {
	origins := []Geodetic{
		{0, 0, 0},
		{44.2, 10.7, 825},
		{-33.9, 18.4, 42},
		{89.0, 120.0, 0},
	}
	offsets := []ENU{
		{0, 0, 0},
		{1000, 0, 0},
		{0, -2500, 120},
		{-730, 410, -55},
		{15000, 15000, 3000},
	}

	for _, origin := range origins {
		f := NewLocalFrame(origin)
		for _, p := range offsets {
			g, err := f.ToGeodetic(p)
			if err != nil {
				t.Fatalf("ToGeodetic(%+v) at origin %+v: %v", p, origin, err)
			}
			back := f.ToENU(g)
			if math.Abs(back.E-p.E) > 1e-6 ||
				math.Abs(back.N-p.N) > 1e-6 ||
				math.Abs(back.U-p.U) > 1e-6 {
				t.Errorf("origin %+v: round trip %+v -> %+v", origin, p, back)
			}
		}
	}
}

func TestLocalFrame_GeodeticRoundTrip(t *testing.T) {
	// enu_to_geodetic(geodetic_to_enu(p)) reproduces p within 1e-6 deg and 1e-3 m.
	origin := Geodetic{Lat: 44.2, Lon: 10.7, Alt: 825}
	f := NewLocalFrame(origin)

	points := []Geodetic{
		{44.21, 10.71, 900},
		{44.19, 10.69, 700},
		{44.2, 10.7, 825},
		{44.5, 11.2, 2000},
	}
	for _, p := range points {
		got, err := f.ToGeodetic(f.ToENU(p))
		if err != nil {
			t.Fatalf("ToGeodetic: %v", err)
		}
		if math.Abs(got.Lat-p.Lat) > 1e-6 || math.Abs(got.Lon-p.Lon) > 1e-6 {
			t.Errorf("round trip %+v -> lat/lon %+v", p, got)
		}
		if math.Abs(got.Alt-p.Alt) > 1e-3 {
			t.Errorf("round trip %+v -> alt %.6f", p, got.Alt)
		}
	}
}

func TestLocalFrame_BatchScalarIdentity(t *testing.T) {
	f := NewLocalFrame(Geodetic{Lat: 44.2, Lon: 10.7, Alt: 825})
	points := []Geodetic{
		{44.21, 10.71, 900},
		{44.19, 10.69, 700},
	}

	batch := f.ToENUBatch(points)
	for i, g := range points {
		if single := f.ToENU(g); single != batch[i] {
			t.Errorf("point %d: scalar %+v != batch %+v", i, single, batch[i])
		}
	}
}

func TestPackageLevelWrappers(t *testing.T) {
	origin := Geodetic{Lat: 44.2, Lon: 10.7, Alt: 825}
	p := Geodetic{44.21, 10.71, 900}

	enu := GeodeticToENU(p, origin)
	back, err := ENUToGeodetic(enu, origin)
	if err != nil {
		t.Fatalf("ENUToGeodetic: %v", err)
	}
	if math.Abs(back.Lat-p.Lat) > 1e-6 || math.Abs(back.Lon-p.Lon) > 1e-6 || math.Abs(back.Alt-p.Alt) > 1e-3 {
		t.Errorf("wrapper round trip = %+v, want %+v", back, p)
	}
}
