package fit

import (
	"bytes"
	"fmt"
	"math"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
)

// fieldWriter serializes little endian record bytes. The first write error
// sticks and is reported by Bytes.
type fieldWriter struct {
	buf bytes.Buffer
	w   *kaitai.Writer
	err error
}

func newFieldWriter() *fieldWriter {
	fw := &fieldWriter{}
	fw.w = kaitai.NewWriter(&fw.buf)
	return fw
}

func (fw *fieldWriter) u1(v uint8) {
	if fw.err == nil {
		fw.err = fw.w.WriteU1(v)
	}
}

func (fw *fieldWriter) u2(v uint16) {
	if fw.err == nil {
		fw.err = fw.w.WriteU2le(v)
	}
}

func (fw *fieldWriter) u4(v uint32) {
	if fw.err == nil {
		fw.err = fw.w.WriteU4le(v)
	}
}

func (fw *fieldWriter) u8(v uint64) {
	if fw.err == nil {
		fw.err = fw.w.WriteU8le(v)
	}
}

func (fw *fieldWriter) bytes(b []byte) {
	if fw.err == nil {
		fw.err = fw.w.WriteBytes(b)
	}
}

// raw writes one element of a def-wide base type from its bit pattern.
func (fw *fieldWriter) raw(def BaseTypeDefinition, v uint64) {
	switch def.Size {
	case 1:
		fw.u1(uint8(v))
	case 2:
		fw.u2(uint16(v))
	case 4:
		fw.u4(uint32(v))
	case 8:
		fw.u8(v)
	default:
		if fw.err == nil {
			fw.err = fmt.Errorf("%w 0x%02X", ErrUnknownBaseType, uint8(def.Type))
		}
	}
}

func (fw *fieldWriter) Bytes() ([]byte, error) {
	return fw.buf.Bytes(), fw.err
}

// widthMask covers the low bits of an integer that is bits wide.
func widthMask(bits int) uint64 {
	if bits >= 64 {
		return math.MaxUint64
	}
	return 1<<uint(bits) - 1
}

// signedRaw range checks n against def and returns its two's complement bits.
func signedRaw(n int64, def BaseTypeDefinition) (uint64, error) {
	bits := def.Size * 8
	if def.Signed {
		if bits < 64 {
			limit := int64(1) << uint(bits-1)
			if n < -limit || n > limit-1 {
				return 0, fmt.Errorf("%w: %d does not fit %s", ErrInvalidFieldValue, n, def.Type)
			}
		}
		return uint64(n) & widthMask(bits), nil
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d does not fit %s", ErrInvalidFieldValue, n, def.Type)
	}
	return unsignedRaw(uint64(n), def)
}

func unsignedRaw(u uint64, def BaseTypeDefinition) (uint64, error) {
	bits := def.Size * 8
	limit := widthMask(bits)
	if def.Signed {
		limit >>= 1
	}
	if u > limit {
		return 0, fmt.Errorf("%w: %d does not fit %s", ErrInvalidFieldValue, u, def.Type)
	}
	return u, nil
}

// integerRaw handles Go integer kinds without a detour through float64.
func integerRaw(v any, def BaseTypeDefinition) (uint64, bool, error) {
	var (
		r   uint64
		err error
	)
	switch n := v.(type) {
	case int:
		r, err = signedRaw(int64(n), def)
	case int8:
		r, err = signedRaw(int64(n), def)
	case int16:
		r, err = signedRaw(int64(n), def)
	case int32:
		r, err = signedRaw(int64(n), def)
	case int64:
		r, err = signedRaw(n, def)
	case uint:
		r, err = unsignedRaw(uint64(n), def)
	case uint8:
		r, err = unsignedRaw(uint64(n), def)
	case uint16:
		r, err = unsignedRaw(uint64(n), def)
	case uint32:
		r, err = unsignedRaw(uint64(n), def)
	case uint64:
		r, err = unsignedRaw(n, def)
	default:
		return 0, false, nil
	}
	return r, true, err
}

// floatRaw rounds f to the nearest integer of def.
func floatRaw(f float64, def BaseTypeDefinition) (uint64, error) {
	if !isFiniteNumber(f) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrInvalidFieldValue, f)
	}
	f = math.Round(f)
	switch {
	case f >= math.MaxInt64:
		if f >= math.MaxUint64 {
			return 0, fmt.Errorf("%w: %v does not fit %s", ErrInvalidFieldValue, f, def.Type)
		}
		return unsignedRaw(uint64(f), def)
	case f < math.MinInt64:
		return 0, fmt.Errorf("%w: %v does not fit %s", ErrInvalidFieldValue, f, def.Type)
	}
	return signedRaw(int64(f), def)
}

// toNumber widens any Go numeric kind, and bool, to float64.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// elementsOf flattens the slice kinds a field value may arrive as.
func elementsOf(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []byte:
		out := make([]any, len(s))
		for i, b := range s {
			out[i] = b
		}
		return out
	case []int:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out
	case []int64:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out
	case []float64:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out
	case []string:
		out := make([]any, len(s))
		for i, n := range s {
			out[i] = n
		}
		return out
	}
	return []any{v}
}
