package fit

import (
	"bytes"
	"encoding/binary"
)

// fitBuilder assembles little endian FIT units for tests.
type fitBuilder struct {
	records bytes.Buffer
}

type fieldDef struct {
	num      uint8
	size     uint8
	baseType BaseType
}

type devFieldDef struct {
	num                uint8
	size               uint8
	developerDataIndex uint8
}

func (b *fitBuilder) definition(local uint8, mesgNum uint16, fields ...fieldDef) *fitBuilder {
	return b.devDefinition(local, mesgNum, fields, nil)
}

func (b *fitBuilder) devDefinition(local uint8, mesgNum uint16, fields []fieldDef, devFields []devFieldDef) *fitBuilder {
	header := mesgDefinitionMask | local
	if len(devFields) > 0 {
		header |= devDataMask
	}
	b.records.WriteByte(header)
	b.records.WriteByte(0) // reserved
	b.records.WriteByte(0) // little endian
	b.records.Write(le16(mesgNum))
	b.records.WriteByte(byte(len(fields)))
	for _, f := range fields {
		b.records.Write([]byte{f.num, f.size, byte(f.baseType)})
	}
	if len(devFields) > 0 {
		b.records.WriteByte(byte(len(devFields)))
		for _, f := range devFields {
			b.records.Write([]byte{f.num, f.size, f.developerDataIndex})
		}
	}
	return b
}

func (b *fitBuilder) data(local uint8, payload ...[]byte) *fitBuilder {
	b.records.WriteByte(local)
	for _, p := range payload {
		b.records.Write(p)
	}
	return b
}

// bytes returns the unit with a 14 byte header and both CRCs.
func (b *fitBuilder) bytes() []byte {
	out := make([]byte, 0, headerWithCRCSize+b.records.Len()+crcSize)
	out = append(out, headerWithCRCSize, 0x20)
	out = append(out, le16(2171)...)
	out = append(out, le32(uint32(b.records.Len()))...)
	out = append(out, DataTypeFIT...)
	out = append(out, le16(CRC16(out, 0, headerCRCCoveredBytes))...)
	out = append(out, b.records.Bytes()...)
	return append(out, le16(CRC16(out, 0, len(out)))...)
}

func le16(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

func le32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func cstr(s string, size int) []byte {
	out := make([]byte, size)
	copy(out, s)
	return out
}
