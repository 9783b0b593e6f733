// Package site models a survey site: a named set of telescopes, an optional
// anchoring origin, and the conversions between geodetic coordinates and the
// site's local ENU frame.
package site

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
)

var (
	// ErrOriginNotSet is returned by origin-bound conversions before SetOrigin.
	ErrOriginNotSet = errors.New("site: origin not set")
	// ErrNoTelescopes is returned when a barycenter is requested on an empty site.
	ErrNoTelescopes = errors.New("site: no telescopes defined")
	// ErrUnknownTelescope is returned when a telescope name cannot be resolved.
	ErrUnknownTelescope = errors.New("site: unknown telescope")
	// ErrTelescopeNotAnchored is returned when a telescope's ENU position is
	// required but the site origin has not been set.
	ErrTelescopeNotAnchored = errors.New("site: telescope not anchored, call SetOrigin first")
)

// Telescope is a ground telescope belonging to a Site. ECEF and ENU are
// derived from the geodetic position (with the focal-plane height added) when
// the owning site's origin is set; they are never assigned independently.
type Telescope struct {
	Name             string
	Geodetic         frames.Geodetic
	FocalPlaneHeight float64

	ECEF *frames.ECEF
	ENU  *frames.ENU
}

// focalPoint is the telescope's geodetic position raised by the focal-plane height.
func (t *Telescope) focalPoint() frames.Geodetic {
	g := t.Geodetic
	g.Alt += t.FocalPlaneHeight
	return g
}

// Site owns the telescopes of one survey configuration. The origin and every
// telescope's derived ENU position are updated as a single atomic unit under
// SetOrigin: readers never observe a new origin with stale telescope frames.
type Site struct {
	mu          sync.RWMutex
	telescopes  map[string]*Telescope
	origin      *frames.Geodetic
	frame       *frames.LocalFrame
	landingSite *frames.Geodetic
	logger      *slog.Logger
}

// New creates an empty site. A nil logger discards log output.
func New(logger *slog.Logger) *Site {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Site{
		telescopes: make(map[string]*Telescope),
		logger:     logger,
	}
}

// AddTelescope registers a telescope. Adding after the origin is set anchors
// the new telescope immediately so the site invariant holds.
func (s *Site) AddTelescope(t Telescope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tel := t
	tel.ECEF = nil
	tel.ENU = nil
	if s.frame != nil {
		anchorTelescope(&tel, s.frame)
	}
	s.telescopes[tel.Name] = &tel
}

// SetLandingSite records the landing site used by trajectory generation.
func (s *Site) SetLandingSite(g frames.Geodetic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.landingSite = &g
}

// LandingSite returns a copy of the landing site, or nil if none is set.
func (s *Site) LandingSite() *frames.Geodetic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.landingSite == nil {
		return nil
	}
	g := *s.landingSite
	return &g
}

// Origin returns a copy of the site origin, or nil before SetOrigin.
func (s *Site) Origin() *frames.Geodetic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.origin == nil {
		return nil
	}
	g := *s.origin
	return &g
}

// Anchored reports whether the site origin has been set.
func (s *Site) Anchored() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.origin != nil
}

// Telescope returns the telescope with the given name.
func (s *Site) Telescope(name string) (*Telescope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.telescopes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTelescope, name)
	}
	cp := *t
	return &cp, nil
}

// Telescopes returns the telescopes sorted by nothing in particular; the map
// is copied so callers cannot mutate site state.
func (s *Site) Telescopes() map[string]*Telescope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Telescope, len(s.telescopes))
	for name, t := range s.telescopes {
		cp := *t
		out[name] = &cp
	}
	return out
}

// SetOrigin anchors the site's local ENU frame at the given geodetic point
// and recomputes every telescope's derived ECEF/ENU position. Passing nil
// uses the telescope barycenter and logs a warning about the implicit origin.
// Re-setting the origin is allowed and triggers a full recompute.
func (s *Site) SetOrigin(origin *frames.Geodetic) error {
	if origin == nil {
		bc, err := s.Barycenter()
		if err != nil {
			return err
		}
		s.logger.Warn("no origin provided, anchoring site at telescope barycenter",
			"lat", bc.Lat, "lon", bc.Lon, "alt", bc.Alt)
		origin = &bc
	}

	frame := frames.NewLocalFrame(*origin)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.telescopes {
		anchorTelescope(t, frame)
	}
	o := *origin
	s.origin = &o
	s.frame = frame
	return nil
}

func anchorTelescope(t *Telescope, frame *frames.LocalFrame) {
	fp := t.focalPoint()
	ecef := frames.GeodeticToECEF(fp)
	enu := frame.ToENU(fp)
	t.ECEF = &ecef
	t.ENU = &enu
}

// Barycenter returns the geodetic barycenter of the telescope set: the mean
// of their ECEF positions, focal-plane heights included, converted back to
// geodetic.
func (s *Site) Barycenter() (frames.Geodetic, error) {
	s.mu.RLock()
	points := make([]frames.Geodetic, 0, len(s.telescopes))
	for _, t := range s.telescopes {
		points = append(points, t.focalPoint())
	}
	s.mu.RUnlock()

	if len(points) == 0 {
		return frames.Geodetic{}, ErrNoTelescopes
	}

	ecef := frames.GeodeticToECEFBatch(points)
	xs := make([]float64, len(ecef))
	ys := make([]float64, len(ecef))
	zs := make([]float64, len(ecef))
	for i, p := range ecef {
		xs[i] = p.X
		ys[i] = p.Y
		zs[i] = p.Z
	}

	mean := frames.ECEF{
		X: stat.Mean(xs, nil),
		Y: stat.Mean(ys, nil),
		Z: stat.Mean(zs, nil),
	}
	bc, err := frames.ECEFToGeodetic(mean)
	if err != nil {
		return frames.Geodetic{}, fmt.Errorf("site: barycenter conversion: %w", err)
	}
	return bc, nil
}

// localFrame returns the current frame or ErrOriginNotSet.
func (s *Site) localFrame() (*frames.LocalFrame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.frame == nil {
		return nil, ErrOriginNotSet
	}
	return s.frame, nil
}

// GeodeticToENUBatch converts geodetic points into the site frame.
func (s *Site) GeodeticToENUBatch(points []frames.Geodetic) ([]frames.ENU, error) {
	f, err := s.localFrame()
	if err != nil {
		return nil, err
	}
	return f.ToENUBatch(points), nil
}

// GeodeticToENU converts a single geodetic point into the site frame.
func (s *Site) GeodeticToENU(g frames.Geodetic) (frames.ENU, error) {
	out, err := s.GeodeticToENUBatch([]frames.Geodetic{g})
	if err != nil {
		return frames.ENU{}, err
	}
	return out[0], nil
}

// ENUToGeodeticBatch converts site-frame ENU points back to geodetic.
func (s *Site) ENUToGeodeticBatch(points []frames.ENU) ([]frames.Geodetic, error) {
	f, err := s.localFrame()
	if err != nil {
		return nil, err
	}
	return f.ToGeodeticBatch(points)
}

// ENUToGeodetic converts a single site-frame ENU point back to geodetic.
func (s *Site) ENUToGeodetic(p frames.ENU) (frames.Geodetic, error) {
	out, err := s.ENUToGeodeticBatch([]frames.ENU{p})
	if err != nil {
		return frames.Geodetic{}, err
	}
	return out[0], nil
}

// ObservePoints computes the azimuth, elevation and slant range under which
// the referenced telescope observes each geodetic point.
func (s *Site) ObservePoints(points []frames.Geodetic, ref TelescopeRef) ([]frames.AER, error) {
	enu, err := s.GeodeticToENUBatch(points)
	if err != nil {
		return nil, err
	}
	return s.ObserveENUPoints(enu, ref)
}

// ObserveENUPoints is ObservePoints for targets already in the site frame.
func (s *Site) ObserveENUPoints(points []frames.ENU, ref TelescopeRef) ([]frames.AER, error) {
	telPos, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	diffs := make([]frames.ENU, len(points))
	for i, p := range points {
		diffs[i] = p.Sub(telPos)
	}
	return frames.ENUToAERBatch(diffs), nil
}
