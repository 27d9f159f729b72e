package figure

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Handle references one cloned visual element. The zero Handle is invalid.
type Handle struct {
	ID     int64
	Kind   Kind
	Source string
}

// Valid reports whether the handle was minted by a Catalog.
func (h Handle) Valid() bool { return h.ID > 0 }

func (h Handle) String() string {
	if !h.Valid() {
		return "figure(invalid)"
	}
	return fmt.Sprintf("%s#%d", h.Kind, h.ID)
}

// Catalog is the palette of draggable originals. Clone mints a fresh handle
// for a dropped figure, mirroring a DOM cloneNode on the dragged element.
type Catalog struct {
	mu       sync.Mutex
	next     int64
	grabbing map[Kind]bool
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{grabbing: make(map[Kind]bool)}
}

// Clone returns a new handle for kind. Any non-empty identifier is accepted;
// kinds without a bin surface later as classification failures.
func (c *Catalog) Clone(kind Kind) (Handle, error) {
	if strings.TrimSpace(string(kind)) == "" {
		return Handle{}, errors.New("clone figure: empty kind identifier")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return Handle{ID: c.next, Kind: kind, Source: string(kind)}, nil
}

// SetGrabbing toggles the drag marker on the palette original for kind.
func (c *Catalog) SetGrabbing(kind Kind, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.grabbing[kind] = true
		return
	}
	delete(c.grabbing, kind)
}

// Grabbing reports whether the palette original for kind is being dragged.
func (c *Catalog) Grabbing(kind Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grabbing[kind]
}
