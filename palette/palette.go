// Package palette implements the named 16/256-entry RGB palette registry
// (spec.md §4.5). Builtin palettes are generated the way the teacher's
// terminal.Cube256/CubeRGB256 functions derive the xterm 256-color cube
// from formula rather than a hardcoded table; dynamic palettes are
// registered at runtime and deduplicated by content hash.
package palette

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/lucasb-eyer/go-colorful"

	phcolor "github.com/phosphor-art/phosphor/color"
)

// Builtin identifies one of the engine's fixed palettes.
type Builtin int

const (
	Xterm16 Builtin = iota
	Xterm256
	VGA
)

func (b Builtin) String() string {
	switch b {
	case Xterm16:
		return "xterm-16"
	case Xterm256:
		return "xterm-256"
	case VGA:
		return "vga"
	default:
		return "unknown"
	}
}

// UID is the content hash identifying a dynamically registered palette.
// Two palettes with identical RGB lists share a UID and therefore
// deduplicate in the registry.
type UID uint64

// Kind distinguishes a builtin palette reference from a dynamic one.
type Kind uint8

const (
	KindBuiltin Kind = iota
	KindDynamic
)

// Ref is how a document stores its palette identity (spec.md §3, §4.5).
type Ref struct {
	Kind    Kind
	Builtin Builtin
	UID     UID
}

// Palette is a named, ordered list of RGB entries.
type Palette struct {
	Name string
	RGB  []phcolor.Color32
}

// HashRGB computes the content-hash UID for an RGB list. Two equal lists
// (same length, same bytes) hash identically.
func HashRGB(rgb []phcolor.Color32) UID {
	h := xxhash.New()
	buf := make([]byte, 4)
	for _, c := range rgb {
		buf[0] = byte(c)
		buf[1] = byte(c >> 8)
		buf[2] = byte(c >> 16)
		buf[3] = byte(c >> 24)
		_, _ = h.Write(buf)
	}
	return UID(h.Sum64())
}

// NearestPolicy selects the distance metric used by Color32ToIndex when an
// exact match is not present. The only policy implemented today is plain
// L2 distance in sRGB space, but the type exists so future policies
// (perceptual weighting, index-range restriction) can be added without
// changing call sites.
type NearestPolicy int

const (
	// PolicyEuclideanSRGB measures squared Euclidean distance in raw
	// 8-bit sRGB channels.
	PolicyEuclideanSRGB NearestPolicy = iota
)

// Registry owns the fixed builtin palettes plus runtime-registered
// dynamic ones. It is safe for concurrent use, though per spec.md §5 a
// single document is never shared across threads — a Registry is a
// separate value that several documents may share (palette registrations
// are append-only), so it carries its own lock.
type Registry struct {
	mu       sync.RWMutex
	builtins map[Builtin]*Palette
	dynamic  map[UID]*Palette
}

// NewRegistry builds a registry pre-populated with the builtin palettes.
func NewRegistry() *Registry {
	r := &Registry{
		builtins: map[Builtin]*Palette{
			Xterm16:  generateXterm16(),
			Xterm256: generateXterm256(),
			VGA:      generateVGA(),
		},
		dynamic: make(map[UID]*Palette),
	}
	return r
}

// Register adds (or reuses, if content-identical) a dynamic palette and
// returns its UID.
func (r *Registry) Register(name string, rgb []phcolor.Color32) UID {
	uid := HashRGB(rgb)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dynamic[uid]; !ok {
		cp := make([]phcolor.Color32, len(rgb))
		copy(cp, rgb)
		r.dynamic[uid] = &Palette{Name: name, RGB: cp}
	}
	return uid
}

// Resolve returns the Palette for a Ref, or nil if a dynamic UID is
// unknown.
func (r *Registry) Resolve(ref Ref) *Palette {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ref.Kind == KindBuiltin {
		return r.builtins[ref.Builtin]
	}
	return r.dynamic[ref.UID]
}

// IndexToColor32 returns the packed color for a palette index, or
// phcolor.Unset if index is the unset sentinel or out of range.
func (r *Registry) IndexToColor32(ref Ref, index phcolor.PaletteIndex) phcolor.Color32 {
	if index == phcolor.IndexUnset {
		return phcolor.Unset
	}
	p := r.Resolve(ref)
	if p == nil || int(index) >= len(p.RGB) {
		return phcolor.Unset
	}
	return p.RGB[index]
}

// Color32ToIndex finds the palette index for a packed color: an exact
// match if one exists, otherwise the nearest entry by L2 distance in
// sRGB under policy.
func (r *Registry) Color32ToIndex(ref Ref, c phcolor.Color32, policy NearestPolicy) (phcolor.PaletteIndex, bool) {
	p := r.Resolve(ref)
	if p == nil || len(p.RGB) == 0 {
		return phcolor.IndexUnset, false
	}
	for i, entry := range p.RGB {
		if entry == c {
			return phcolor.PaletteIndex(i), true
		}
	}
	cr, cg, cb := c.Channels()
	target := colorful.Color{R: float64(cr) / 255, G: float64(cg) / 255, B: float64(cb) / 255}
	best := -1
	bestDist := float64(-1)
	for i, entry := range p.RGB {
		er, eg, eb := entry.Channels()
		cand := colorful.Color{R: float64(er) / 255, G: float64(eg) / 255, B: float64(eb) / 255}
		d := sqDist(target, cand)
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best == -1 {
		return phcolor.IndexUnset, false
	}
	return phcolor.PaletteIndex(best), true
}

func sqDist(a, b colorful.Color) float64 {
	dr := a.R - b.R
	dg := a.G - b.G
	db := a.B - b.B
	return dr*dr + dg*dg + db*db
}

// generateXterm16 derives the standard 16-color ANSI table.
func generateXterm16() *Palette {
	base := []phcolor.Color32{
		phcolor.RGB(0, 0, 0),
		phcolor.RGB(128, 0, 0),
		phcolor.RGB(0, 128, 0),
		phcolor.RGB(128, 128, 0),
		phcolor.RGB(0, 0, 128),
		phcolor.RGB(128, 0, 128),
		phcolor.RGB(0, 128, 128),
		phcolor.RGB(192, 192, 192),
		phcolor.RGB(128, 128, 128),
		phcolor.RGB(255, 0, 0),
		phcolor.RGB(0, 255, 0),
		phcolor.RGB(255, 255, 0),
		phcolor.RGB(0, 0, 255),
		phcolor.RGB(255, 0, 255),
		phcolor.RGB(0, 255, 255),
		phcolor.RGB(255, 255, 255),
	}
	return &Palette{Name: Xterm16.String(), RGB: base}
}

// cubeStep maps a cube coordinate in [0,5] to its 8-bit channel value,
// matching the teacher's Cube256/CubeRGB256 formula's implied ramp.
func cubeStep(n uint8) uint8 {
	if n == 0 {
		return 0
	}
	return 55 + n*40
}

// generateXterm256 derives the full 256-entry xterm palette: the 16 base
// colors, the 6x6x6 color cube, and the 24-step grayscale ramp.
func generateXterm256() *Palette {
	rgb := make([]phcolor.Color32, 256)
	copy(rgb, generateXterm16().RGB)
	for r := uint8(0); r < 6; r++ {
		for g := uint8(0); g < 6; g++ {
			for b := uint8(0); b < 6; b++ {
				idx := 16 + 36*r + 6*g + b
				rgb[idx] = phcolor.RGB(cubeStep(r), cubeStep(g), cubeStep(b))
			}
		}
	}
	for step := uint8(0); step < 24; step++ {
		level := 8 + 10*step
		rgb[232+step] = phcolor.RGB(level, level, level)
	}
	return &Palette{Name: Xterm256.String(), RGB: rgb}
}

// generateVGA derives the classic VGA 16-color text-mode palette (darker
// blue/brown than the ANSI table above).
func generateVGA() *Palette {
	rgb := []phcolor.Color32{
		phcolor.RGB(0, 0, 0),
		phcolor.RGB(170, 0, 0),
		phcolor.RGB(0, 170, 0),
		phcolor.RGB(170, 85, 0),
		phcolor.RGB(0, 0, 170),
		phcolor.RGB(170, 0, 170),
		phcolor.RGB(0, 170, 170),
		phcolor.RGB(170, 170, 170),
		phcolor.RGB(85, 85, 85),
		phcolor.RGB(255, 85, 85),
		phcolor.RGB(85, 255, 85),
		phcolor.RGB(255, 255, 85),
		phcolor.RGB(85, 85, 255),
		phcolor.RGB(255, 85, 255),
		phcolor.RGB(85, 255, 255),
		phcolor.RGB(255, 255, 255),
	}
	return &Palette{Name: VGA.String(), RGB: rgb}
}
