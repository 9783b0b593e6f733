package site

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
)

// ErrConfig is returned for malformed site configuration records.
var ErrConfig = errors.New("site: invalid configuration")

// PointConfig is a geodetic triple in a configuration file.
type PointConfig struct {
	Lat *float64 `mapstructure:"lat"`
	Lon *float64 `mapstructure:"lon"`
	Alt *float64 `mapstructure:"alt"`
}

func (p *PointConfig) geodetic(field string) (frames.Geodetic, error) {
	if p.Lat == nil || p.Lon == nil || p.Alt == nil {
		return frames.Geodetic{}, fmt.Errorf("%w: %s requires lat, lon and alt", ErrConfig, field)
	}
	return frames.Geodetic{Lat: *p.Lat, Lon: *p.Lon, Alt: *p.Alt}, nil
}

// TelescopeConfig describes one telescope in a configuration file.
// focalplane_height is optional and defaults to 0.
type TelescopeConfig struct {
	Lat              *float64 `mapstructure:"lat"`
	Lon              *float64 `mapstructure:"lon"`
	Alt              *float64 `mapstructure:"alt"`
	FocalPlaneHeight float64  `mapstructure:"focalplane_height"`
}

// Config is the external site configuration record.
type Config struct {
	Telescopes  map[string]TelescopeConfig `mapstructure:"telescopes"`
	LandingSite *PointConfig               `mapstructure:"landing_site"`
	Origin      *PointConfig               `mapstructure:"origin"`
}

// Load reads a site configuration file (JSON, YAML or TOML, decided by the
// file extension) and builds the Site. If the file carries an origin it is
// applied immediately, anchoring all telescopes.
func Load(path string, logger *slog.Logger) (*Site, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrConfig, path, err)
	}

	return FromConfig(cfg, logger)
}

// FromConfig builds a Site from an already-decoded configuration record.
func FromConfig(cfg Config, logger *slog.Logger) (*Site, error) {
	s := New(logger)

	for name, tc := range cfg.Telescopes {
		if tc.Lat == nil || tc.Lon == nil || tc.Alt == nil {
			return nil, fmt.Errorf("%w: telescope %q requires lat, lon and alt", ErrConfig, name)
		}
		s.AddTelescope(Telescope{
			Name:             name,
			Geodetic:         frames.Geodetic{Lat: *tc.Lat, Lon: *tc.Lon, Alt: *tc.Alt},
			FocalPlaneHeight: tc.FocalPlaneHeight,
		})
	}

	if cfg.LandingSite != nil {
		g, err := cfg.LandingSite.geodetic("landing_site")
		if err != nil {
			return nil, err
		}
		s.SetLandingSite(g)
	}

	if cfg.Origin != nil {
		g, err := cfg.Origin.geodetic("origin")
		if err != nil {
			return nil, err
		}
		if err := s.SetOrigin(&g); err != nil {
			return nil, err
		}
	}

	return s, nil
}
