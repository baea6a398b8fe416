// Package sauce implements the SAUCE ("Standard Architecture for
// Universal Comment Extensions") 00 record: parsing a trailing record
// and optional comment block off a byte stream, and appending one to a
// payload on export. Field offsets, the ZString TInfoS encoding, and the
// COMNT block layout are ported bit-exact from
// original_source/src/io/formats/sauce.cpp; the Go struct-tag DTO shape
// for the in-memory Record follows the teacher's `toml` package and
// genetic/persistence conventions for a flat, field-tagged value type.
package sauce

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/phosphor-art/phosphor/cp437"
	"github.com/phosphor-art/phosphor/phosphorerr"
)

const (
	RecordSize        = 128
	commentHeaderSize = 5 // "COMNT"
	commentLineWidth  = 64
	subByte           = 0x1A
)

// DataType is the SAUCE DataType byte.
type DataType uint8

const (
	DataNone       DataType = 0
	DataCharacter  DataType = 1
	DataBitmap     DataType = 2
	DataVector     DataType = 3
	DataAudio      DataType = 4
	DataBinaryText DataType = 5
	DataXBin       DataType = 6
	DataArchive    DataType = 7
	DataExecutable DataType = 8
)

// Record is the in-memory form of a SAUCE 00 record plus its optional
// comment lines.
type Record struct {
	Title  string // max 35 codepoints
	Author string // max 20 codepoints
	Group  string // max 20 codepoints
	Date   string // "CCYYMMDD", ASCII digits only

	FileSize      uint32
	DataType      DataType
	FileType      uint8
	TInfo1        uint16
	TInfo2        uint16
	TInfo3        uint16
	TInfo4        uint16
	TFlags        uint8
	TInfoS        string // max 22 codepoints, ZString on the wire
	Comments      []string
}

// Parsed is the result of scanning a byte stream for a trailing record.
type Parsed struct {
	Record         Record
	Present        bool
	PayloadSize    int
	HasEOFByte     bool
	HasCommentBlock bool
}

// WriteOptions controls how AppendToBytes serializes a record.
type WriteOptions struct {
	IncludeEOFByte  bool
	IncludeComments bool
}

// DefaultWriteOptions mirrors the original exporter's defaults.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{IncludeEOFByte: true, IncludeComments: true}
}

// ParseFromBytes scans the tail of data for a SAUCE 00 record and
// optional COMNT block. If none is found, Parsed.Present is false and
// PayloadSize equals len(data).
func ParseFromBytes(data []byte) Parsed {
	out := Parsed{PayloadSize: len(data)}
	if len(data) < RecordSize {
		return out
	}
	sauceOff := len(data) - RecordSize
	rec := data[sauceOff:]
	if !isSauce00(rec) {
		return out
	}

	r := Record{
		Title:    decodeFixedField(rec[7:42]),
		Author:   decodeFixedField(rec[42:62]),
		Group:    decodeFixedField(rec[62:82]),
		Date:     decodeFixedFieldASCII(rec[82:90]),
		FileSize: binary.LittleEndian.Uint32(rec[90:94]),
		DataType: DataType(rec[94]),
		FileType: rec[95],
		TInfo1:   binary.LittleEndian.Uint16(rec[96:98]),
		TInfo2:   binary.LittleEndian.Uint16(rec[98:100]),
		TInfo3:   binary.LittleEndian.Uint16(rec[100:102]),
		TInfo4:   binary.LittleEndian.Uint16(rec[102:104]),
		TFlags:   rec[105],
	}
	commentsCount := int(rec[104])

	tinfosField := rec[106:128]
	n := 0
	for n < len(tinfosField) && tinfosField[n] != 0 {
		n++
	}
	r.TInfoS = decodeFixedField(tinfosField[:n])

	payloadEnd := sauceOff
	hasComment := false
	if commentsCount > 0 {
		need := commentHeaderSize + commentsCount*commentLineWidth
		if payloadEnd >= need {
			comntOff := payloadEnd - need
			hdr := data[comntOff : comntOff+commentHeaderSize]
			if string(hdr) == "COMNT" {
				hasComment = true
				lines := data[comntOff+commentHeaderSize : comntOff+need]
				r.Comments = decodeCommentLines(lines, commentsCount)
				payloadEnd = comntOff
			}
		}
	}

	hasEOF := false
	if payloadEnd > 0 && data[payloadEnd-1] == subByte {
		hasEOF = true
		payloadEnd--
	}

	out.Record = r
	out.Present = true
	out.HasCommentBlock = hasComment
	out.HasEOFByte = hasEOF
	out.PayloadSize = payloadEnd
	return out
}

// ComputePayloadSize returns the art-byte length after stripping any
// trailing SAUCE/COMNT/EOF, or len(data) if none is present.
func ComputePayloadSize(data []byte) int {
	p := ParseFromBytes(data)
	if !p.Present {
		return len(data)
	}
	return p.PayloadSize
}

// StripFromBytes returns a copy of data's payload with any trailing
// SAUCE/COMNT/EOF removed.
func StripFromBytes(data []byte) []byte {
	n := ComputePayloadSize(data)
	out := make([]byte, n)
	copy(out, data[:n])
	return out
}

// AppendToBytes appends an EOF byte (optional), a COMNT block (optional,
// only if record.Comments is non-empty), and the 128-byte SAUCE record to
// payload, returning the combined byte stream.
func AppendToBytes(payload []byte, record Record, opt WriteOptions) ([]byte, error) {
	r := sanitizeForWrite(record)

	var commentLines []string
	if opt.IncludeComments && len(r.Comments) > 0 {
		commentLines = chunkComments(r.Comments)
	}
	if len(commentLines) > 255 {
		return nil, phosphorerr.ErrMalformedFile
	}

	out := make([]byte, 0, len(payload)+1+commentHeaderSize+len(commentLines)*commentLineWidth+RecordSize)
	out = append(out, payload...)

	if opt.IncludeEOFByte {
		out = append(out, subByte)
	}
	if len(commentLines) > 0 {
		out = append(out, 'C', 'O', 'M', 'N', 'T')
		for _, line := range commentLines {
			out = append(out, encodeCharField(line, commentLineWidth)...)
		}
	}

	rec := make([]byte, RecordSize)
	for i := range rec {
		rec[i] = ' '
	}
	copy(rec[0:5], "SAUCE")
	copy(rec[5:7], "00")

	copy(rec[7:42], encodeCharField(r.Title, 35))
	copy(rec[42:62], encodeCharField(r.Author, 20))
	copy(rec[62:82], encodeCharField(r.Group, 20))
	copy(rec[82:90], encodeCharField(r.Date, 8))

	fileSize := r.FileSize
	if fileSize == 0 {
		fileSize = uint32(len(payload))
	}
	binary.LittleEndian.PutUint32(rec[90:94], fileSize)
	rec[94] = byte(r.DataType)
	rec[95] = r.FileType
	binary.LittleEndian.PutUint16(rec[96:98], r.TInfo1)
	binary.LittleEndian.PutUint16(rec[98:100], r.TInfo2)
	binary.LittleEndian.PutUint16(rec[100:102], r.TInfo3)
	binary.LittleEndian.PutUint16(rec[102:104], r.TInfo4)
	rec[104] = byte(len(commentLines))
	rec[105] = r.TFlags

	tinfos := make([]byte, 22)
	s := encodeCharField(r.TInfoS, 22)
	n := len(s)
	for n > 0 && s[n-1] == ' ' {
		n--
	}
	if n > len(tinfos) {
		n = len(tinfos)
	}
	copy(tinfos, s[:n])
	copy(rec[106:128], tinfos)

	out = append(out, rec...)
	return out, nil
}

func isSauce00(rec []byte) bool {
	return len(rec) >= 7 && string(rec[0:5]) == "SAUCE" && rec[5] == '0' && rec[6] == '0'
}

func decodeFixedField(b []byte) string {
	runes := cp437.DecodeBytes(trimTrailingSpace(b))
	return string(runes)
}

func decodeFixedFieldASCII(b []byte) string {
	return string(trimTrailingSpace(b))
}

func trimTrailingSpace(b []byte) []byte {
	n := len(b)
	for n > 0 && (b[n-1] == ' ' || b[n-1] == 0) {
		n--
	}
	return b[:n]
}

func decodeCommentLines(lines []byte, count int) []string {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		start := i * commentLineWidth
		out = append(out, decodeFixedField(lines[start:start+commentLineWidth]))
	}
	return out
}

// encodeCharField pads s (truncated to width codepoints) with spaces to
// exactly width CP437 bytes, substituting '?' for unmappable runes.
func encodeCharField(s string, width int) []byte {
	runes := []rune(s)
	if len(runes) > width {
		runes = runes[:width]
	}
	out := make([]byte, 0, width)
	for _, r := range runes {
		b, ok := cp437.FromRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	for len(out) < width {
		out = append(out, ' ')
	}
	return out
}

// sanitizeForWrite enforces the fixed-width truncations and the
// digits-only date constraint before encoding.
func sanitizeForWrite(r Record) Record {
	r.Title = truncateCodepoints(r.Title, 35)
	r.Author = truncateCodepoints(r.Author, 20)
	r.Group = truncateCodepoints(r.Group, 20)
	r.Date = keepOnlyDigits(r.Date)
	if len(r.Date) > 8 {
		r.Date = r.Date[:8]
	}
	r.TInfoS = truncateCodepoints(r.TInfoS, 22)
	return r
}

func truncateCodepoints(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func keepOnlyDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}

// chunkComments splits any comment line over 64 codepoints into multiple
// lines, mirroring the original exporter's ChunkAndAppendComments.
func chunkComments(comments []string) []string {
	out := make([]string, 0, len(comments))
	for _, line := range comments {
		runes := []rune(line)
		if len(runes) == 0 {
			out = append(out, "")
			continue
		}
		for len(runes) > 0 {
			n := commentLineWidth
			if n > len(runes) {
				n = len(runes)
			}
			out = append(out, string(runes[:n]))
			runes = runes[n:]
		}
	}
	return out
}

// TodayYYYYMMDD formats a time.Time as a SAUCE date string.
func TodayYYYYMMDD(t time.Time) string {
	return t.Format("20060102")
}

// ParseDateYYYYMMDD splits an 8-digit SAUCE date into year/month/day.
func ParseDateYYYYMMDD(s string) (year, month, day int, ok bool) {
	if len(s) != 8 {
		return 0, 0, 0, false
	}
	y, err1 := strconv.Atoi(s[0:4])
	m, err2 := strconv.Atoi(s[4:6])
	d, err3 := strconv.Atoi(s[6:8])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return y, m, d, true
}
