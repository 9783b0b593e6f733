package site

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, "site.json", `{
		"telescopes": {
			"astri-1": {"lat": 28.3, "lon": -16.51, "alt": 2390, "focalplane_height": 4.5},
			"astri-2": {"lat": 28.31, "lon": -16.5, "alt": 2395}
		},
		"landing_site": {"lat": 28.3, "lon": -16.5, "alt": 2380},
		"origin": {"lat": 28.305, "lon": -16.505, "alt": 2390}
	}`)

	s, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tels := s.Telescopes()
	if len(tels) != 2 {
		t.Fatalf("telescope count = %d, want 2", len(tels))
	}
	if got := tels["astri-1"].FocalPlaneHeight; got != 4.5 {
		t.Errorf("astri-1 focalplane_height = %v, want 4.5", got)
	}
	if got := tels["astri-2"].FocalPlaneHeight; got != 0 {
		t.Errorf("astri-2 focalplane_height = %v, want default 0", got)
	}

	// The configured origin anchors all telescopes at load time.
	if !s.Anchored() {
		t.Fatal("site not anchored despite configured origin")
	}
	for name, tel := range tels {
		if tel.ENU == nil {
			t.Errorf("telescope %s has no ENU after load", name)
		}
	}

	ls := s.LandingSite()
	if ls == nil || math.Abs(ls.Alt-2380) > 1e-9 {
		t.Errorf("landing site = %+v, want alt 2380", ls)
	}
}

func TestLoad_WithoutOrigin(t *testing.T) {
	path := writeConfig(t, "site.json", `{
		"telescopes": {
			"t1": {"lat": 44.0, "lon": 10.0, "alt": 500}
		}
	}`)

	s, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Anchored() {
		t.Error("site anchored without configured origin")
	}
	if s.LandingSite() != nil {
		t.Error("unexpected landing site")
	}
}

func TestLoad_MissingTelescopeField(t *testing.T) {
	path := writeConfig(t, "site.json", `{
		"telescopes": {
			"broken": {"lat": 44.0, "alt": 500}
		}
	}`)

	if _, err := Load(path, nil); !errors.Is(err, ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json"), nil); !errors.Is(err, ErrConfig) {
		t.Errorf("err = %v, want ErrConfig", err)
	}
}

func TestLoad_YAMLConfig(t *testing.T) {
	path := writeConfig(t, "site.yaml", `
telescopes:
  t1:
    lat: 44.0
    lon: 10.0
    alt: 500
landing_site:
  lat: 44.0
  lon: 10.0
  alt: 490
`)

	s, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Telescopes()) != 1 {
		t.Errorf("telescope count = %d, want 1", len(s.Telescopes()))
	}
}
