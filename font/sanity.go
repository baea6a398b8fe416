package font

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/phosphor-art/phosphor/glyphart"
	"github.com/phosphor-art/phosphor/palette"
)

// SchemaVersion is bumped whenever SanityCache's shape or fingerprinting
// strategy changes; a cache built under an older version is always
// treated as stale.
const SchemaVersion = 1

// SanityCache is a persisted record of which loaded fonts fail a
// render-and-inspect validation pass, keyed to a fingerprint of the font
// set that was checked. A caller re-fingerprints its current font set
// on startup; a fingerprint match means the cached BrokenIDs are still
// valid and the (expensive, renders every font) validation pass can be
// skipped.
type SanityCache struct {
	SchemaVersion    int
	FontsFingerprint uint64
	Complete         bool
	BrokenIDs        []string
}

// NewSanityCache returns an empty, not-yet-validated cache.
func NewSanityCache() *SanityCache {
	return &SanityCache{SchemaVersion: SchemaVersion}
}

// Fingerprint hashes a font set's identifying names into the value
// Validate stamps onto the cache and a caller compares against on a
// later run to decide whether cached BrokenIDs are still trustworthy.
// Names are sorted first so fingerprinting doesn't depend on map
// iteration order.
func Fingerprint(names []string) uint64 {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	h := xxhash.New()
	for _, n := range sorted {
		_, _ = h.Write([]byte(n))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// Stale reports whether fingerprint no longer matches the fingerprint
// this cache was last validated against, meaning the font set changed
// since and a fresh Validate pass is warranted.
func (c *SanityCache) Stale(fingerprint uint64) bool {
	return !c.Complete || c.SchemaVersion != SchemaVersion || c.FontsFingerprint != fingerprint
}

// CheckResult is one font's render-and-inspect outcome.
type CheckResult struct {
	OK      bool
	Reasons []string
}

func (r *CheckResult) fail(why string) { r.OK = false; r.Reasons = append(r.Reasons, why) }

// probeText is the short string every candidate font renders to judge
// whether it produces usable ink; four glyphs is enough to catch a
// font whose glyph table is empty or whose decoder silently produces
// blank cells without needing a full alphabet pass.
const probeText = "test"

// CheckGlyphSource renders probeText through src and inspects the
// result for the failure shapes a broken TDF/FIGlet decode tends to
// produce: no ink at all, or suspiciously little of it.
func CheckGlyphSource(src glyphart.Source) CheckResult {
	res := CheckResult{OK: true}
	rows, width, height := glyphart.RenderLine(src, []rune(probeText), glyphart.Options{Mode: glyphart.ModeDisplay}, palette.NewRegistry())
	if width <= 0 || height <= 0 {
		res.fail("empty dimensions")
		return res
	}

	nonBlank := 0
	total := 0
	for _, row := range rows {
		for _, cell := range row {
			total++
			if cell.Ch != ' ' && cell.Ch != 0 {
				nonBlank++
			}
		}
	}
	if total == 0 {
		res.fail("empty dimensions")
		return res
	}
	if nonBlank == 0 {
		res.fail("renders blank (no ink)")
		return res
	}
	if nonBlank < 8 && !(width <= 8 && height <= 8) {
		res.fail("very low ink (<8 non-blank cells)")
	}
	return res
}

// CheckEmbeddedFont inspects f for the failure shape specific to a
// bitmap font rather than a rendered glyph source: a glyph run that is
// entirely zero bits past the point a blank placeholder (space, NUL)
// would plausibly end, suggesting a truncated or misaligned decode
// rather than an intentionally blank glyph.
func CheckEmbeddedFont(f *EmbeddedFont) CheckResult {
	res := CheckResult{OK: true}
	if err := f.Validate(); err != nil {
		res.fail("bitmap size mismatch")
		return res
	}

	blank := 0
	for g := 0; g < f.GlyphCount; g++ {
		allZero := true
		for row := 0; row < f.CellH; row++ {
			if f.Row(g, row) != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			blank++
		}
	}
	// A handful of intentionally blank glyphs (space, NUL, unused
	// trailing slots in a 512-glyph page) is normal; most of the page
	// being blank means the font bytes never made it through decode.
	if blank > f.GlyphCount*3/4 {
		res.fail("suspiciously many blank glyphs")
	}
	return res
}

// Validate runs CheckGlyphSource over every entry in sources, records
// which ids failed, and stamps the cache as complete for fingerprint.
// Callers that also carry a document's embedded font should additionally
// fold in CheckEmbeddedFont's result under whatever id they use for it;
// SanityCache itself is agnostic to where an id's bytes came from.
func (c *SanityCache) Validate(sources map[string]glyphart.Source, fingerprint uint64) {
	ids := make([]string, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var broken []string
	for _, id := range ids {
		if res := CheckGlyphSource(sources[id]); !res.OK {
			broken = append(broken, id)
		}
	}
	c.SchemaVersion = SchemaVersion
	c.FontsFingerprint = fingerprint
	c.Complete = true
	c.BrokenIDs = broken
}

// IsBroken reports whether id was recorded broken by the last Validate
// pass.
func (c *SanityCache) IsBroken(id string) bool {
	for _, b := range c.BrokenIDs {
		if b == id {
			return true
		}
	}
	return false
}

// Summary renders a one-line human-readable count, mirroring the
// "Checked: N fonts / Broken: M fonts" report a validation pass prints.
func (c *SanityCache) Summary() string {
	if !c.Complete {
		return "sanity cache: not yet validated"
	}
	if len(c.BrokenIDs) == 0 {
		return "sanity cache: 0 broken fonts"
	}
	return "sanity cache: broken fonts: " + strings.Join(c.BrokenIDs, ", ")
}
