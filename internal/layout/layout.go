package layout

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"sortline/internal/config"
	"sortline/internal/faults"
	"sortline/internal/figure"
)

// TrackID identifies the conveyor track element.
const TrackID = "track"

const binSuffix = "Container"

// ErrNotFound is returned when no element carries the requested identifier.
var ErrNotFound = errors.New("layout element not found")

// Rect is a bounding box in track units.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// CenterX returns the horizontal centre.
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }

// Provider resolves element identifiers to their current bounding box.
type Provider interface {
	Bounds(id string) (Rect, error)
}

// BinID returns the element identifier of the bin for kind.
func BinID(kind figure.Kind) string {
	return string(kind) + binSuffix
}

// KindFromBinID reverses BinID.
func KindFromBinID(id string) (figure.Kind, bool) {
	if !strings.HasSuffix(id, binSuffix) || id == binSuffix {
		return "", false
	}
	return figure.Kind(strings.TrimSuffix(id, binSuffix)), true
}

// TargetOffset computes the claw offset that centres a figure of the given
// half width over bin, measured from the track's left edge.
func TargetOffset(track, bin Rect, halfWidth float64) float64 {
	return bin.Left - track.Left + bin.Width/2 - halfWidth
}

// BinTarget resolves the track and the bin for kind and returns the claw
// offset. A missing bin is reported as faults.ErrMissingBin.
func BinTarget(p Provider, kind figure.Kind, halfWidth float64) (float64, error) {
	if p == nil {
		return 0, faults.Wrap(faults.ErrConfiguration, "transfer", "resolve layout", "layout provider unavailable", nil)
	}
	track, err := p.Bounds(TrackID)
	if err != nil {
		return 0, faults.Wrap(faults.ErrMissingBin, "transfer", "resolve track", "track element unavailable", err)
	}
	bin, err := p.Bounds(BinID(kind))
	if err != nil {
		return 0, faults.Wrap(faults.ErrMissingBin, "transfer", "resolve bin", fmt.Sprintf("no bin for %q", kind), err)
	}
	return TargetOffset(track, bin, halfWidth), nil
}

// Static is a mutable in-memory Provider. Set may be called from any
// goroutine; reads observe the latest geometry.
type Static struct {
	mu    sync.RWMutex
	rects map[string]Rect
}

// NewStatic constructs a provider over a copy of rects.
func NewStatic(rects map[string]Rect) *Static {
	cp := make(map[string]Rect, len(rects))
	maps.Copy(cp, rects)
	return &Static{rects: cp}
}

// FromConfig builds the track and bin geometry from the layout section.
func FromConfig(cfg config.Layout) *Static {
	rects := make(map[string]Rect, len(cfg.Bins)+1)
	rects[TrackID] = fromConfigRect(cfg.Track)
	for name, bin := range cfg.Bins {
		rects[BinID(figure.ParseKind(name))] = fromConfigRect(bin)
	}
	return NewStatic(rects)
}

func fromConfigRect(r config.Rect) Rect {
	return Rect{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height}
}

// Bounds implements Provider.
func (s *Static) Bounds(id string) (Rect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rect, ok := s.rects[id]
	if !ok {
		return Rect{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rect, nil
}

// Set replaces or adds the box for id, e.g. after a resize.
func (s *Static) Set(id string, rect Rect) {
	s.mu.Lock()
	s.rects[id] = rect
	s.mu.Unlock()
}

// Remove deletes the element with id.
func (s *Static) Remove(id string) {
	s.mu.Lock()
	delete(s.rects, id)
	s.mu.Unlock()
}

// IDs returns the known identifiers sorted.
func (s *Static) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.rects))
}

// BinKinds returns the kinds that have a bin, sorted.
func (s *Static) BinKinds() []figure.Kind {
	var kinds []figure.Kind
	for _, id := range s.IDs() {
		if kind, ok := KindFromBinID(id); ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
