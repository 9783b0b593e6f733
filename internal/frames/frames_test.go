package frames

import (
	"errors"
	"math"
	"testing"
)

func TestGeodeticToECEF_KnownMagnitudes(t *testing.T) {
	// Sea-level point on the equator: ECEF magnitude equals the WGS-84
	// equatorial radius.
	p := GeodeticToECEF(Geodetic{Lat: 0, Lon: 0, Alt: 0})
	mag := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
	if math.Abs(mag-6378137.0) > 1.0 {
		t.Errorf("equatorial ECEF magnitude = %.1f m, want ~6378137 m", mag)
	}

	// North pole: magnitude equals the polar radius.
	p2 := GeodeticToECEF(Geodetic{Lat: 90, Lon: 0, Alt: 0})
	mag2 := math.Sqrt(p2.X*p2.X + p2.Y*p2.Y + p2.Z*p2.Z)
	if math.Abs(mag2-6356752.3) > 1.0 {
		t.Errorf("polar ECEF magnitude = %.1f m, want ~6356752 m", mag2)
	}
}

func TestGeodeticToECEF_AltitudeOffset(t *testing.T) {
	p0 := GeodeticToECEF(Geodetic{Lat: 45, Lon: 7, Alt: 0})
	p100 := GeodeticToECEF(Geodetic{Lat: 45, Lon: 7, Alt: 100})

	d := math.Sqrt((p100.X-p0.X)*(p100.X-p0.X) +
		(p100.Y-p0.Y)*(p100.Y-p0.Y) +
		(p100.Z-p0.Z)*(p100.Z-p0.Z))
	if math.Abs(d-100.0) > 0.01 {
		t.Errorf("altitude offset = %.3f m, want 100 m", d)
	}
}

func TestECEFToGeodetic_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		g    Geodetic
	}{
		{"equator prime meridian", Geodetic{0, 0, 0}},
		{"mid latitude", Geodetic{44.2, 10.7, 825}},
		{"southern hemisphere", Geodetic{-33.9, 18.4, 42}},
		{"western longitude", Geodetic{39.7392, -104.9903, 1609}},
		{"near north pole", Geodetic{89.9, 45, 10}},
		{"north pole", Geodetic{90, 0, 100}},
		{"high altitude", Geodetic{12.5, 122.1, 80000}},
		{"negative altitude", Geodetic{51.5, -0.12, -50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ECEFToGeodetic(GeodeticToECEF(tt.g))
			if err != nil {
				t.Fatalf("ECEFToGeodetic: %v", err)
			}
			if math.Abs(got.Lat-tt.g.Lat) > 1e-9 {
				t.Errorf("lat = %.12f, want %.12f", got.Lat, tt.g.Lat)
			}
			// Longitude is undefined exactly at the pole.
			if tt.g.Lat != 90 && math.Abs(got.Lon-tt.g.Lon) > 1e-9 {
				t.Errorf("lon = %.12f, want %.12f", got.Lon, tt.g.Lon)
			}
			if math.Abs(got.Alt-tt.g.Alt) > 1e-3 {
				t.Errorf("alt = %.6f, want %.6f", got.Alt, tt.g.Alt)
			}
		})
	}
}

func TestECEFToGeodetic_Geocenter(t *testing.T) {
	_, err := ECEFToGeodetic(ECEF{X: 0, Y: 0, Z: 0})
	if !errors.Is(err, ErrNoConvergence) {
		t.Errorf("geocenter error = %v, want ErrNoConvergence", err)
	}
}

func TestECEFToGeodetic_BatchFailsWhole(t *testing.T) {
	// One bad point poisons the batch: no partial results.
	pts := []ECEF{
		GeodeticToECEF(Geodetic{10, 20, 30}),
		{X: 0, Y: 0, Z: 0},
	}
	out, err := ECEFToGeodeticBatch(pts)
	if !errors.Is(err, ErrNoConvergence) {
		t.Fatalf("err = %v, want ErrNoConvergence", err)
	}
	if out != nil {
		t.Errorf("expected nil result on batch failure, got %v", out)
	}
}

func TestBatchScalarIdentity(t *testing.T) {
	points := []Geodetic{
		{0, 0, 0},
		{44.2, 10.7, 825},
		{-33.9, 18.4, 42},
	}

	batch := GeodeticToECEFBatch(points)
	for i, g := range points {
		single := GeodeticToECEF(g)
		if single != batch[i] {
			t.Errorf("point %d: scalar %+v != batch %+v", i, single, batch[i])
		}
	}
}

func TestENUArithmetic(t *testing.T) {
	a := ENU{E: 1, N: 2, U: 3}
	b := ENU{E: 0.5, N: -1, U: 4}

	sum := a.Add(b)
	if sum != (ENU{E: 1.5, N: 1, U: 7}) {
		t.Errorf("Add = %+v", sum)
	}
	diff := a.Sub(b)
	if diff != (ENU{E: 0.5, N: 3, U: -1}) {
		t.Errorf("Sub = %+v", diff)
	}
	// Sub is the inverse of Add.
	if got := sum.Sub(b); got != a {
		t.Errorf("Add then Sub = %+v, want %+v", got, a)
	}
}
