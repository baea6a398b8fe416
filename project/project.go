// Package project implements the self-describing project file of
// spec.md §4.7/§6.1: schema version, palette identity, the full SAUCE
// record, undo_limit, the current document snapshot, and the undo/redo
// entry lists. Loading constructs a fresh document, assigns fresh state
// tokens to every restored entry, and applies the current snapshot last,
// per §4.7's load order.
//
// The on-disk format is TOML, encoded/decoded through the teacher's
// adapted toml package; cell planes have no native TOML representation,
// so each plane is stored as a base64 string of its fixed-width little-
// endian encoding rather than a multi-million-entry inline array.
package project

import (
	"encoding/base64"
	"encoding/binary"

	"go.uber.org/zap"

	phcolor "github.com/phosphor-art/phosphor/color"
	"github.com/phosphor-art/phosphor/document"
	"github.com/phosphor-art/phosphor/font"
	"github.com/phosphor-art/phosphor/grid"
	"github.com/phosphor-art/phosphor/palette"
	"github.com/phosphor-art/phosphor/phosphorerr"
	"github.com/phosphor-art/phosphor/sauce"
	"github.com/phosphor-art/phosphor/toml"
	"github.com/phosphor-art/phosphor/undo"
)

// CurrentVersion is the schema version this package writes; Load accepts
// any version it knows how to interpret (today, only 1).
const CurrentVersion = 1

// PaletteRefDTO is the persisted form of a palette.Ref. UID is stored as
// a plain int rather than uint64: the toml package's decoder only
// handles signed integer kinds, so an unsigned field would silently
// decode to zero.
type PaletteRefDTO struct {
	Kind    string `toml:"kind"`
	Builtin string `toml:"builtin,omitempty"`
	UID     int    `toml:"uid,omitempty"`
}

// SauceDTO is the persisted form of a sauce.Record. Fields that are
// unsigned in sauce.Record are stored as int for the same reason as
// PaletteRefDTO.UID.
type SauceDTO struct {
	Title    string   `toml:"title,omitempty"`
	Author   string   `toml:"author,omitempty"`
	Group    string   `toml:"group,omitempty"`
	Date     string   `toml:"date,omitempty"`
	DataType int      `toml:"data_type,omitempty"`
	FileType int      `toml:"file_type,omitempty"`
	TInfo1   int      `toml:"tinfo1,omitempty"`
	TInfo2   int      `toml:"tinfo2,omitempty"`
	TInfo3   int      `toml:"tinfo3,omitempty"`
	TInfo4   int      `toml:"tinfo4,omitempty"`
	TFlags   int      `toml:"tflags,omitempty"`
	TInfoS   string   `toml:"tinfos,omitempty"`
	Comments []string `toml:"comments,omitempty"`
}

// LayerSnapshotDTO is the persisted form of one grid.LayerSnapshot; cell
// planes are base64-encoded fixed-width binary.
type LayerSnapshotDTO struct {
	Name             string `toml:"name"`
	Visible          bool   `toml:"visible"`
	LockTransparency bool   `toml:"lock_transparency"`
	OffsetX          int    `toml:"offset_x"`
	OffsetY          int    `toml:"offset_y"`
	CP               string `toml:"cp"`
	FG               string `toml:"fg"`
	BG               string `toml:"bg"`
	Attrs            string `toml:"attrs,omitempty"`
}

// SnapshotDTO is the persisted form of a grid.DocSnapshot.
type SnapshotDTO struct {
	Cols        int                `toml:"cols"`
	Rows        int                `toml:"rows"`
	ActiveLayer int                `toml:"active_layer"`
	CaretRow    int                `toml:"caret_row"`
	CaretCol    int                `toml:"caret_col"`
	Layers      []LayerSnapshotDTO `toml:"layers"`
}

// LayerMetaDTO is the persisted form of a grid.LayerMeta.
type LayerMetaDTO struct {
	Name             string `toml:"name"`
	Visible          bool   `toml:"visible"`
	LockTransparency bool   `toml:"lock_transparency"`
	OffsetX          int    `toml:"offset_x"`
	OffsetY          int    `toml:"offset_y"`
}

// PageDTO is the persisted form of one undo.PageData.
type PageDTO struct {
	Layer    int    `toml:"layer"`
	Page     int    `toml:"page"`
	RowCount int    `toml:"row_count"`
	CP       string `toml:"cp"`
	FG       string `toml:"fg"`
	BG       string `toml:"bg"`
	Attrs    string `toml:"attrs,omitempty"`
}

// PatchDTO is the persisted body of a Kind=patch undo entry.
type PatchDTO struct {
	PageRows int            `toml:"page_rows"`
	Layers   []LayerMetaDTO `toml:"layers,omitempty"`
	Pages    []PageDTO      `toml:"pages,omitempty"`
}

// EntryDTO is the persisted form of one undo.Entry, either a Snapshot or
// a Patch body depending on Kind.
type EntryDTO struct {
	Kind        string       `toml:"kind"`
	Cols        int          `toml:"cols"`
	Rows        int          `toml:"rows"`
	ActiveLayer int          `toml:"active_layer"`
	CaretRow    int          `toml:"caret_row"`
	CaretCol    int          `toml:"caret_col"`
	StateToken  int          `toml:"state_token"`
	Snapshot    *SnapshotDTO `toml:"snapshot,omitempty"`
	Patch       *PatchDTO    `toml:"patch,omitempty"`
}

// FontDTO is the persisted form of a font.EmbeddedFont; the bitmap is
// base64-encoded raw row bytes, the same form xbin.DecodeFont/EncodeFont
// pass on the wire.
type FontDTO struct {
	CellW      int    `toml:"cell_w"`
	CellH      int    `toml:"cell_h"`
	GlyphCount int    `toml:"glyph_count"`
	VGA9ColDup bool   `toml:"vga_9col_dup"`
	Bitmap     string `toml:"bitmap"`
}

// File is the full on-disk project record.
type File struct {
	Version    int           `toml:"version"`
	PaletteRef PaletteRefDTO `toml:"palette_ref"`
	Sauce      SauceDTO      `toml:"sauce"`
	UndoLimit  int           `toml:"undo_limit"`
	Current    SnapshotDTO   `toml:"current"`
	Font       *FontDTO      `toml:"font,omitempty"`
	Undo       []EntryDTO    `toml:"undo,omitempty"`
	Redo       []EntryDTO    `toml:"redo,omitempty"`
}

// Option configures Save/Load's logging.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger attaches a logger Save/Load use for Error-level encode/
// decode failure notices. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func resolveOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Save encodes doc and rec into a complete File and marshals it to TOML.
func Save(doc *document.Document, rec sauce.Record, opts ...Option) ([]byte, error) {
	o := resolveOptions(opts)
	f := File{
		Version:    CurrentVersion,
		PaletteRef: paletteRefToDTO(doc.Palette),
		Sauce:      sauceToDTO(rec),
		UndoLimit:  doc.Undo.Limit(),
		Current:    snapshotToDTO(doc.Grid.Snapshot()),
		Font:       fontToDTO(doc.Font),
	}
	for _, e := range doc.Undo.UndoEntries() {
		f.Undo = append(f.Undo, entryToDTO(e))
	}
	for _, e := range doc.Undo.RedoEntries() {
		f.Redo = append(f.Redo, entryToDTO(e))
	}
	out, err := toml.Marshal(f)
	if err != nil {
		o.logger.Error("project save failed to encode", zap.Error(err))
	}
	return out, err
}

// Load decodes a File and reconstructs a document: a fresh Document is
// built from the current snapshot's dimensions, every undo/redo entry is
// rebuilt with a freshly assigned state token, and the current snapshot
// is applied last (spec.md §4.7's load order).
func Load(data []byte, opts ...Option) (*document.Document, sauce.Record, error) {
	o := resolveOptions(opts)
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		o.logger.Error("project load failed to decode", zap.Error(err))
		return nil, sauce.Record{}, err
	}

	snap, err := dtoToSnapshot(f.Current)
	if err != nil {
		o.logger.Error("project load failed to decode current snapshot", zap.Error(err))
		return nil, sauce.Record{}, err
	}

	doc := document.New(snap.Cols, snap.Rows)
	doc.Palette = dtoToPaletteRef(f.PaletteRef)
	doc.Undo.SetLimit(f.UndoLimit)

	if f.Font != nil {
		ef, err := dtoToFont(*f.Font)
		if err != nil {
			o.logger.Error("project load failed to decode embedded font", zap.Error(err))
			return nil, sauce.Record{}, err
		}
		if err := doc.SetEmbeddedFont(ef); err != nil {
			o.logger.Error("project load rejected embedded font", zap.Error(err))
			return nil, sauce.Record{}, err
		}
	}

	var token int = 1
	for _, dto := range f.Undo {
		e, err := dtoToEntry(dto, &token)
		if err != nil {
			o.logger.Error("project load failed to decode undo entry", zap.Error(err))
			return nil, sauce.Record{}, err
		}
		doc.Undo.PushUndo(e)
	}
	for _, dto := range f.Redo {
		e, err := dtoToEntry(dto, &token)
		if err != nil {
			o.logger.Error("project load failed to decode redo entry", zap.Error(err))
			return nil, sauce.Record{}, err
		}
		doc.Undo.PushRedo(e)
	}
	doc.Undo.SetStateToken(uint64(token))

	doc.Grid.Restore(snap)
	return doc, dtoToSauce(f.Sauce), nil
}

func paletteRefToDTO(ref palette.Ref) PaletteRefDTO {
	if ref.Kind == palette.KindBuiltin {
		return PaletteRefDTO{Kind: "builtin", Builtin: ref.Builtin.String()}
	}
	return PaletteRefDTO{Kind: "dynamic", UID: int(ref.UID)}
}

func dtoToPaletteRef(d PaletteRefDTO) palette.Ref {
	if d.Kind == "dynamic" {
		return palette.Ref{Kind: palette.KindDynamic, UID: palette.UID(uint64(d.UID))}
	}
	b := palette.Xterm256
	switch d.Builtin {
	case "xterm-16":
		b = palette.Xterm16
	case "vga":
		b = palette.VGA
	}
	return palette.Ref{Kind: palette.KindBuiltin, Builtin: b}
}

func sauceToDTO(r sauce.Record) SauceDTO {
	return SauceDTO{
		Title: r.Title, Author: r.Author, Group: r.Group, Date: r.Date,
		DataType: int(r.DataType), FileType: int(r.FileType),
		TInfo1: int(r.TInfo1), TInfo2: int(r.TInfo2), TInfo3: int(r.TInfo3), TInfo4: int(r.TInfo4),
		TFlags: int(r.TFlags), TInfoS: r.TInfoS, Comments: r.Comments,
	}
}

func dtoToSauce(d SauceDTO) sauce.Record {
	return sauce.Record{
		Title: d.Title, Author: d.Author, Group: d.Group, Date: d.Date,
		DataType: sauce.DataType(d.DataType), FileType: uint8(d.FileType),
		TInfo1: uint16(d.TInfo1), TInfo2: uint16(d.TInfo2), TInfo3: uint16(d.TInfo3), TInfo4: uint16(d.TInfo4),
		TFlags: uint8(d.TFlags), TInfoS: d.TInfoS, Comments: d.Comments,
	}
}

func fontToDTO(f *font.EmbeddedFont) *FontDTO {
	if f == nil {
		return nil
	}
	return &FontDTO{
		CellW: f.CellW, CellH: f.CellH, GlyphCount: f.GlyphCount,
		VGA9ColDup: f.VGA9ColDup, Bitmap: base64.StdEncoding.EncodeToString(f.Bitmap),
	}
}

func dtoToFont(d FontDTO) (*font.EmbeddedFont, error) {
	bitmap, err := base64.StdEncoding.DecodeString(d.Bitmap)
	if err != nil {
		return nil, phosphorerr.ErrMalformedFile
	}
	f := &font.EmbeddedFont{
		CellW: d.CellW, CellH: d.CellH, GlyphCount: d.GlyphCount,
		VGA9ColDup: d.VGA9ColDup, Bitmap: bitmap,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func layerSnapshotToDTO(l grid.LayerSnapshot) LayerSnapshotDTO {
	return LayerSnapshotDTO{
		Name: l.Name, Visible: l.Visible, LockTransparency: l.LockTransparency,
		OffsetX: l.OffsetX, OffsetY: l.OffsetY,
		CP: encodeRunes(l.CP), FG: encodeColors(l.FG), BG: encodeColors(l.BG), Attrs: encodeAttrs(l.Attrs),
	}
}

func dtoToLayerSnapshot(d LayerSnapshotDTO) (grid.LayerSnapshot, error) {
	cp, err := decodeRunes(d.CP)
	if err != nil {
		return grid.LayerSnapshot{}, err
	}
	fg, err := decodeColors(d.FG)
	if err != nil {
		return grid.LayerSnapshot{}, err
	}
	bg, err := decodeColors(d.BG)
	if err != nil {
		return grid.LayerSnapshot{}, err
	}
	attrs, err := decodeAttrs(d.Attrs)
	if err != nil {
		return grid.LayerSnapshot{}, err
	}
	if len(attrs) == 0 && len(cp) > 0 {
		attrs = make([]phcolor.Attrs, len(cp))
	}
	return grid.LayerSnapshot{
		Name: d.Name, Visible: d.Visible, LockTransparency: d.LockTransparency,
		OffsetX: d.OffsetX, OffsetY: d.OffsetY,
		CP: cp, FG: fg, BG: bg, Attrs: attrs,
	}, nil
}

func snapshotToDTO(s grid.DocSnapshot) SnapshotDTO {
	d := SnapshotDTO{
		Cols: s.Cols, Rows: s.Rows, ActiveLayer: s.ActiveLayer,
		CaretRow: s.Caret.Row, CaretCol: s.Caret.Col,
	}
	for _, l := range s.Layers {
		d.Layers = append(d.Layers, layerSnapshotToDTO(l))
	}
	return d
}

func dtoToSnapshot(d SnapshotDTO) (grid.DocSnapshot, error) {
	s := grid.DocSnapshot{
		Cols: d.Cols, Rows: d.Rows, ActiveLayer: d.ActiveLayer,
		Caret: grid.Point{Row: d.CaretRow, Col: d.CaretCol},
	}
	for _, ld := range d.Layers {
		l, err := dtoToLayerSnapshot(ld)
		if err != nil {
			return grid.DocSnapshot{}, err
		}
		s.Layers = append(s.Layers, l)
	}
	return s, nil
}

func layerMetaToDTO(m grid.LayerMeta) LayerMetaDTO {
	return LayerMetaDTO{
		Name: m.Name, Visible: m.Visible, LockTransparency: m.LockTransparency,
		OffsetX: m.OffsetX, OffsetY: m.OffsetY,
	}
}

func dtoToLayerMeta(d LayerMetaDTO) grid.LayerMeta {
	return grid.LayerMeta{
		Name: d.Name, Visible: d.Visible, LockTransparency: d.LockTransparency,
		OffsetX: d.OffsetX, OffsetY: d.OffsetY,
	}
}

func pageToDTO(p undo.PageData) PageDTO {
	return PageDTO{
		Layer: p.Layer, Page: p.Page, RowCount: p.RowCount,
		CP: encodeRunes(p.CP), FG: encodeColors(p.FG), BG: encodeColors(p.BG), Attrs: encodeAttrs(p.Attrs),
	}
}

func dtoToPage(d PageDTO) (undo.PageData, error) {
	cp, err := decodeRunes(d.CP)
	if err != nil {
		return undo.PageData{}, err
	}
	fg, err := decodeColors(d.FG)
	if err != nil {
		return undo.PageData{}, err
	}
	bg, err := decodeColors(d.BG)
	if err != nil {
		return undo.PageData{}, err
	}
	attrs, err := decodeAttrs(d.Attrs)
	if err != nil {
		return undo.PageData{}, err
	}
	if len(attrs) == 0 && len(cp) > 0 {
		attrs = make([]phcolor.Attrs, len(cp))
	}
	return undo.PageData{Layer: d.Layer, Page: d.Page, RowCount: d.RowCount, CP: cp, FG: fg, BG: bg, Attrs: attrs}, nil
}

func entryToDTO(e *undo.Entry) EntryDTO {
	d := EntryDTO{
		Cols: e.Cols, Rows: e.Rows, ActiveLayer: e.ActiveLayer,
		CaretRow: e.Caret.Row, CaretCol: e.Caret.Col, StateToken: int(e.StateToken),
	}
	if e.Kind == undo.KindSnapshot {
		d.Kind = "snapshot"
		snap := snapshotToDTO(*e.Snapshot)
		d.Snapshot = &snap
		return d
	}
	d.Kind = "patch"
	patch := PatchDTO{PageRows: e.PageRows}
	for _, m := range e.LayerMetas {
		patch.Layers = append(patch.Layers, layerMetaToDTO(m))
	}
	for _, p := range e.Pages() {
		patch.Pages = append(patch.Pages, pageToDTO(p))
	}
	d.Patch = &patch
	return d
}

// dtoToEntry reconstructs an undo.Entry, assigning it the next fresh
// state token and advancing *token (spec.md §4.7: "assign fresh state
// tokens to every entry").
func dtoToEntry(d EntryDTO, token *int) (*undo.Entry, error) {
	caret := grid.Point{Row: d.CaretRow, Col: d.CaretCol}
	t := uint64(*token)
	*token++

	switch d.Kind {
	case "snapshot":
		if d.Snapshot == nil {
			return nil, phosphorerr.ErrMalformedFile
		}
		snap, err := dtoToSnapshot(*d.Snapshot)
		if err != nil {
			return nil, err
		}
		return undo.NewEntry(undo.KindSnapshot, d.Cols, d.Rows, d.ActiveLayer, caret, t, nil, 0, nil, &snap), nil
	case "patch":
		if d.Patch == nil {
			return nil, phosphorerr.ErrMalformedFile
		}
		metas := make([]grid.LayerMeta, len(d.Patch.Layers))
		for i, m := range d.Patch.Layers {
			metas[i] = dtoToLayerMeta(m)
		}
		pages := make([]undo.PageData, len(d.Patch.Pages))
		for i, p := range d.Patch.Pages {
			pd, err := dtoToPage(p)
			if err != nil {
				return nil, err
			}
			pages[i] = pd
		}
		return undo.NewEntry(undo.KindPatch, d.Cols, d.Rows, d.ActiveLayer, caret, t, metas, d.Patch.PageRows, pages, nil), nil
	default:
		return nil, phosphorerr.ErrMalformedFile
	}
}

func encodeRunes(rs []rune) string {
	buf := make([]byte, 4*len(rs))
	for i, r := range rs {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(r))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeRunes(s string) ([]rune, error) {
	if s == "" {
		return nil, nil
	}
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(buf)%4 != 0 {
		return nil, phosphorerr.ErrMalformedFile
	}
	out := make([]rune, len(buf)/4)
	for i := range out {
		out[i] = rune(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}

func encodeColors(cs []phcolor.Color32) string {
	buf := make([]byte, 4*len(cs))
	for i, c := range cs {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(c))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeColors(s string) ([]phcolor.Color32, error) {
	if s == "" {
		return nil, nil
	}
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(buf)%4 != 0 {
		return nil, phosphorerr.ErrMalformedFile
	}
	out := make([]phcolor.Color32, len(buf)/4)
	for i := range out {
		out[i] = phcolor.Color32(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}

func encodeAttrs(as []phcolor.Attrs) string {
	buf := make([]byte, 2*len(as))
	for i, a := range as {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(a))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeAttrs(s string) ([]phcolor.Attrs, error) {
	if s == "" {
		return nil, nil
	}
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(buf)%2 != 0 {
		return nil, phosphorerr.ErrMalformedFile
	}
	out := make([]phcolor.Attrs, len(buf)/2)
	for i := range out {
		out[i] = phcolor.Attrs(binary.LittleEndian.Uint16(buf[i*2:]))
	}
	return out, nil
}
