package fit

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Endianness selects the byte order of multi-byte reads.
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

func (e Endianness) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// Stream is a positioned reader over an in-memory FIT buffer.
// Reads past the end fail with ErrEndOfStream and leave the position unchanged.
type Stream struct {
	data []byte
	ks   *kaitai.Stream
}

// NewStream wraps data without copying it.
func NewStream(data []byte) *Stream {
	return &Stream{
		data: data,
		ks:   kaitai.NewStream(bytes.NewReader(data)),
	}
}

// Length returns the total buffer size.
func (s *Stream) Length() int64 {
	return int64(len(s.data))
}

// Position returns the current read offset.
func (s *Stream) Position() int64 {
	pos, err := s.ks.Pos()
	if err != nil {
		return 0
	}
	return pos
}

// Remaining returns the number of unread bytes.
func (s *Stream) Remaining() int64 {
	return s.Length() - s.Position()
}

// EOF reports whether every byte has been consumed.
func (s *Stream) EOF() bool {
	return s.Remaining() <= 0
}

// Seek moves to an absolute offset within the buffer.
func (s *Stream) Seek(pos int64) error {
	if pos < 0 || pos > s.Length() {
		return newDecodeError(pos, fmt.Errorf("seek out of range: %w", ErrEndOfStream))
	}
	_, err := s.ks.Seek(pos, io.SeekStart)
	return err
}

// Reset rewinds to the start of the buffer.
func (s *Stream) Reset() {
	_ = s.Seek(0)
}

// Slice returns a view of data[start:end] without moving the cursor.
func (s *Stream) Slice(start, end int64) []byte {
	if start < 0 {
		start = 0
	}
	if end > s.Length() {
		end = s.Length()
	}
	if start >= end {
		return nil
	}
	return s.data[start:end]
}

func (s *Stream) require(n int64) error {
	if n < 0 || s.Remaining() < n {
		return newDecodeError(s.Position(), ErrEndOfStream)
	}
	return nil
}

// PeekByte returns the next byte without consuming it.
func (s *Stream) PeekByte() (byte, error) {
	if err := s.require(1); err != nil {
		return 0, err
	}
	return s.data[s.Position()], nil
}

// ReadByte consumes one byte.
func (s *Stream) ReadByte() (byte, error) {
	if err := s.require(1); err != nil {
		return 0, err
	}
	return s.ks.ReadU1()
}

// ReadBytes consumes n bytes. The returned slice is a copy.
func (s *Stream) ReadBytes(n int) ([]byte, error) {
	if err := s.require(int64(n)); err != nil {
		return nil, err
	}
	return s.ks.ReadBytes(n)
}

// ReadUint16 consumes a 16-bit unsigned integer.
func (s *Stream) ReadUint16(e Endianness) (uint16, error) {
	if err := s.require(2); err != nil {
		return 0, err
	}
	if e == BigEndian {
		return s.ks.ReadU2be()
	}
	return s.ks.ReadU2le()
}

// ReadUint32 consumes a 32-bit unsigned integer.
func (s *Stream) ReadUint32(e Endianness) (uint32, error) {
	if err := s.require(4); err != nil {
		return 0, err
	}
	if e == BigEndian {
		return s.ks.ReadU4be()
	}
	return s.ks.ReadU4le()
}

// ReadString consumes size bytes and decodes them as NUL separated UTF-8.
// It returns nil when no string is present, a string for one, and []any for several.
func (s *Stream) ReadString(size int) (any, error) {
	raw, err := s.ReadBytes(size)
	if err != nil {
		return nil, err
	}
	return decodeStrings(raw), nil
}

func decodeStrings(raw []byte) any {
	parts := bytes.Split(raw, []byte{0})
	for len(parts) > 0 && len(parts[len(parts)-1]) == 0 {
		parts = parts[:len(parts)-1]
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return cleanUTF8(parts[0])
	}
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = cleanUTF8(p)
	}
	return out
}

// cleanUTF8 drops ill-formed sequences.
func cleanUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	t := transform.Chain(
		runes.ReplaceIllFormed(),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError })),
	)
	out, _, err := transform.Bytes(t, b)
	if err != nil {
		return ""
	}
	return string(out)
}

// ReadValue consumes size bytes of the given base type.
//
// A size that is not a multiple of the base type width is consumed and yields nil.
// With convertInvalidToNull each invalid element becomes nil; a value whose
// elements are all invalid is nil. Single element values collapse to a scalar.
func (s *Stream) ReadValue(bt BaseType, size int, e Endianness, convertInvalidToNull bool) (any, error) {
	def, ok := bt.Definition()
	if !ok {
		return nil, newDecodeError(s.Position(), fmt.Errorf("%w 0x%02X", ErrUnknownBaseType, uint8(bt)))
	}
	if err := s.require(int64(size)); err != nil {
		return nil, err
	}
	if bt == BaseTypeString {
		return s.ReadString(size)
	}
	if size%def.Size != 0 {
		if _, err := s.ReadBytes(size); err != nil {
			return nil, err
		}
		return nil, nil
	}

	count := size / def.Size
	values := make([]any, 0, count)
	allInvalid := true
	for i := 0; i < count; i++ {
		raw, err := s.readRaw(def.Size, e)
		if err != nil {
			return nil, err
		}
		invalid := raw == def.Invalid
		if !invalid {
			allInvalid = false
		}
		if invalid && convertInvalidToNull && bt != BaseTypeByte {
			values = append(values, nil)
			continue
		}
		values = append(values, convertRaw(def, raw))
	}

	if convertInvalidToNull && allInvalid {
		return nil, nil
	}
	if len(values) == 1 {
		return values[0], nil
	}
	return values, nil
}

func (s *Stream) readRaw(width int, e Endianness) (uint64, error) {
	switch width {
	case 1:
		v, err := s.ks.ReadU1()
		return uint64(v), err
	case 2:
		var v uint16
		var err error
		if e == BigEndian {
			v, err = s.ks.ReadU2be()
		} else {
			v, err = s.ks.ReadU2le()
		}
		return uint64(v), err
	case 4:
		var v uint32
		var err error
		if e == BigEndian {
			v, err = s.ks.ReadU4be()
		} else {
			v, err = s.ks.ReadU4le()
		}
		return uint64(v), err
	case 8:
		if e == BigEndian {
			return s.ks.ReadU8be()
		}
		return s.ks.ReadU8le()
	}
	return 0, fmt.Errorf("unsupported width %d", width)
}

// convertRaw turns the raw bit pattern into the decoded Go value.
// Integers up to 32 bits and sint64 become int64, uint64 types stay uint64.
func convertRaw(def BaseTypeDefinition, raw uint64) any {
	if def.Float {
		if def.Size == 4 {
			return float64(math.Float32frombits(uint32(raw)))
		}
		return math.Float64frombits(raw)
	}
	if def.Signed {
		switch def.Size {
		case 1:
			return int64(int8(raw))
		case 2:
			return int64(int16(raw))
		case 4:
			return int64(int32(raw))
		}
		return int64(raw)
	}
	if def.Size == 8 {
		return raw
	}
	return int64(raw)
}

// isInvalidValue reports whether a decoded value carries the invalid sentinel
// of its base type.
func isInvalidValue(v any, bt BaseType) bool {
	def, ok := bt.Definition()
	if !ok {
		return false
	}
	raw, ok := rawBits(v, def)
	if !ok {
		return v == nil
	}
	return raw == def.Invalid
}

// rawBits recovers the wire bit pattern of a decoded scalar.
func rawBits(v any, def BaseTypeDefinition) (uint64, bool) {
	mask := uint64(math.MaxUint64)
	if def.Size < 8 {
		mask = (uint64(1) << (8 * def.Size)) - 1
	}
	switch n := v.(type) {
	case int64:
		return uint64(n) & mask, true
	case uint64:
		return n & mask, true
	case int:
		return uint64(n) & mask, true
	case float64:
		if def.Float {
			if def.Size == 4 {
				return uint64(math.Float32bits(float32(n))), true
			}
			return math.Float64bits(n), true
		}
		return uint64(int64(n)) & mask, true
	}
	return 0, false
}
