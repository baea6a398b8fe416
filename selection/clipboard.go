package selection

import (
	"sync"

	"github.com/phosphor-art/phosphor/color"
)

// Clipboard is the process-global rectangular scratch used by cut/copy/
// paste (spec.md §3, §5 "last writer wins"). It is a module-level value
// rather than passed by reference through every call, matching the
// teacher's process-global-with-explicit-reset idiom; callers never hold
// a raw mutable alias to its planes — Get returns copies.
type Clipboard struct {
	mu sync.Mutex
	w  int
	h  int
	cp []rune
	fg []color.Color32
	bg []color.Color32
}

var global = &Clipboard{}

// Global returns the process-wide clipboard instance.
func Global() *Clipboard { return global }

// HasContent reports presence per spec.md §3: width>0, height>0, and all
// three planes sized w*h.
func (c *Clipboard) HasContent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.w * c.h
	return c.w > 0 && c.h > 0 && len(c.cp) == n && len(c.fg) == n && len(c.bg) == n
}

// Size returns the current clipboard dimensions.
func (c *Clipboard) Size() (w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

// Set overwrites the clipboard contents (last writer wins).
func (c *Clipboard) Set(w, h int, cp []rune, fg, bg []color.Color32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w, c.h = w, h
	c.cp = append([]rune(nil), cp...)
	c.fg = append([]color.Color32(nil), fg...)
	c.bg = append([]color.Color32(nil), bg...)
}

// Get returns copies of the clipboard's current planes.
func (c *Clipboard) Get() (w, h int, cp []rune, fg, bg []color.Color32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h,
		append([]rune(nil), c.cp...),
		append([]color.Color32(nil), c.fg...),
		append([]color.Color32(nil), c.bg...)
}

// Reset empties the clipboard.
func (c *Clipboard) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w, c.h, c.cp, c.fg, c.bg = 0, 0, nil, nil, nil
}
