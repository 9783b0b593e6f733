package site

import (
	"fmt"

	"github.com/AleNovelli/drone-flightplans/internal/frames"
)

// TelescopeRef selects a telescope position for observation geometry. It is
// a tagged variant: either a name resolved against the site's telescope set,
// or a raw position in the site frame. Resolution happens once at the call
// boundary, not inside the geometry routines.
type TelescopeRef struct {
	name string
	pos  *frames.ENU
}

// ByName references a telescope by its configured name.
func ByName(name string) TelescopeRef {
	return TelescopeRef{name: name}
}

// ByPosition references an observer at an explicit site-frame ENU position.
func ByPosition(p frames.ENU) TelescopeRef {
	return TelescopeRef{pos: &p}
}

// ByTelescope references an already-resolved telescope. The telescope must be
// anchored (site origin set) or resolution fails.
func ByTelescope(t *Telescope) TelescopeRef {
	if t != nil && t.ENU != nil {
		return TelescopeRef{pos: t.ENU}
	}
	// Fall back to name resolution so an unanchored telescope surfaces the
	// anchoring error at Resolve time.
	var name string
	if t != nil {
		name = t.Name
	}
	return TelescopeRef{name: name}
}

// ByGeodetic references an observer at a geodetic position, converted into
// the site frame at resolution time.
func (s *Site) ByGeodetic(g frames.Geodetic) (TelescopeRef, error) {
	p, err := s.GeodeticToENU(g)
	if err != nil {
		return TelescopeRef{}, err
	}
	return ByPosition(p), nil
}

// Resolve turns a TelescopeRef into a single site-frame ENU position.
// Name lookups require the telescope to exist and to be anchored.
func (s *Site) Resolve(ref TelescopeRef) (frames.ENU, error) {
	if ref.pos != nil {
		return *ref.pos, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.telescopes[ref.name]
	if !ok {
		return frames.ENU{}, fmt.Errorf("%w: %q", ErrUnknownTelescope, ref.name)
	}
	if t.ENU == nil {
		return frames.ENU{}, fmt.Errorf("%w: %q", ErrTelescopeNotAnchored, ref.name)
	}
	return *t.ENU, nil
}
