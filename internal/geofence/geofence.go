// Package geofence loads the site's safety corridors and flight fences:
// named approach waypoint lists keyed by compass direction, plus the raw
// circle/polygon fence geometry embedded into QGroundControl plans.
package geofence

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/viper"
)

var (
	// ErrConfig is returned for unreadable or malformed geofence files.
	ErrConfig = errors.New("geofence: invalid configuration")
	// ErrUnknownDirection is returned when a safety corridor is requested
	// for a direction the file does not define.
	ErrUnknownDirection = errors.New("geofence: unknown safety direction")
)

// Waypoint is one geodetic safety point. Altitudes are relative to the
// landing site, matching how mission files expect them.
type Waypoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

// Fence is the geoFence block of a QGroundControl plan. Circle and polygon
// entries are carried opaquely; the planner never interprets them.
type Fence struct {
	Circles  []any `mapstructure:"circles" json:"circles"`
	Polygons []any `mapstructure:"polygons" json:"polygons"`
	Version  int   `mapstructure:"version" json:"version"`
}

// EmptyFence is the fence block used when fencing is disabled.
func EmptyFence() Fence {
	return Fence{Circles: []any{}, Polygons: []any{}, Version: 2}
}

// Data holds the loaded geofence file.
type Data struct {
	safety map[string][]Waypoint
	fence  Fence
}

type rawConfig struct {
	SafetyWaypoints map[string][][]float64 `mapstructure:"safety_waypoints"`
	Fences          Fence                  `mapstructure:"fences"`
}

// Load reads a geofence file (JSON, YAML or TOML, by extension).
func Load(path string, logger *slog.Logger) (*Data, error) {
	if logger == nil {
		logger = slog.Default()
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrConfig, path, err)
	}

	d := &Data{
		safety: make(map[string][]Waypoint, len(raw.SafetyWaypoints)),
		fence:  raw.Fences,
	}
	if d.fence.Circles == nil {
		d.fence.Circles = []any{}
	}
	if d.fence.Polygons == nil {
		d.fence.Polygons = []any{}
	}
	if d.fence.Version == 0 {
		d.fence.Version = 2
	}

	for dir, points := range raw.SafetyWaypoints {
		wps := make([]Waypoint, len(points))
		for i, p := range points {
			if len(p) != 3 {
				return nil, fmt.Errorf("%w: safety waypoint %s[%d] has %d values, want [lat lon alt]",
					ErrConfig, dir, i, len(p))
			}
			wps[i] = Waypoint{Lat: p[0], Lon: p[1], Alt: p[2]}
		}
		d.safety[dir] = wps
	}

	logger.Info("geofence loaded",
		"path", path,
		"directions", len(d.safety),
		"circles", len(d.fence.Circles),
		"polygons", len(d.fence.Polygons),
	)
	return d, nil
}

// SafetyWaypoints returns the approach corridor for one direction.
func (d *Data) SafetyWaypoints(direction string) ([]Waypoint, error) {
	wps, ok := d.safety[direction]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownDirection, direction, d.Directions())
	}
	out := make([]Waypoint, len(wps))
	copy(out, wps)
	return out, nil
}

// Directions lists the defined safety corridors, sorted.
func (d *Data) Directions() []string {
	dirs := make([]string, 0, len(d.safety))
	for dir := range d.safety {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// Fence returns the fence geometry for QGroundControl plans.
func (d *Data) Fence() Fence {
	return d.fence
}
