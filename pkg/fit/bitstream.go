package fit

import (
	"bytes"
	"fmt"

	"github.com/kaitai-io/kaitai_struct_go_runtime/kaitai"
)

// BitStream yields consecutive bit fields from a scalar or array value,
// least significant bits first, crossing element boundaries transparently.
type BitStream struct {
	ks       *kaitai.Stream
	total    int
	consumed int
}

// NewBitStream seeds a bit reader with value, whose elements are bt wide.
// Nil elements are read as the invalid sentinel of bt.
func NewBitStream(value any, bt BaseType) (*BitStream, error) {
	def, ok := bt.Definition()
	if !ok {
		return nil, fmt.Errorf("%w 0x%02X", ErrUnknownBaseType, uint8(bt))
	}

	var elems []any
	switch v := value.(type) {
	case []any:
		elems = v
	case []byte:
		elems = make([]any, len(v))
		for i, b := range v {
			elems[i] = int64(b)
		}
	default:
		elems = []any{v}
	}

	buf := make([]byte, 0, len(elems)*def.Size)
	for _, e := range elems {
		raw, ok := rawBits(e, def)
		if !ok {
			raw = def.Invalid
		}
		for i := 0; i < def.Size; i++ {
			buf = append(buf, byte(raw>>(8*i)))
		}
	}

	return &BitStream{
		ks:    kaitai.NewStream(bytes.NewReader(buf)),
		total: len(buf) * 8,
	}, nil
}

// BitsAvailable returns the number of unread bits.
func (b *BitStream) BitsAvailable() int {
	return b.total - b.consumed
}

// HasBitsAvailable reports whether any bit remains.
func (b *BitStream) HasBitsAvailable() bool {
	return b.BitsAvailable() > 0
}

// ReadBit returns the next bit.
func (b *BitStream) ReadBit() (uint64, error) {
	return b.ReadBits(1)
}

// ReadBits returns the next n bits as an unsigned integer. On failure nothing is consumed.
func (b *BitStream) ReadBits(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("cannot read %d bits", n)
	}
	if n > b.BitsAvailable() {
		return 0, fmt.Errorf("%w: requested %d, have %d", ErrBitsExhausted, n, b.BitsAvailable())
	}
	if n == 0 {
		return 0, nil
	}
	v, err := b.ks.ReadBitsIntLe(n)
	if err != nil {
		return 0, err
	}
	b.consumed += n
	return v, nil
}
