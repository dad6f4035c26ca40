package fit

import "fmt"

// DataTypeFIT is the tag at header bytes 8..11.
const DataTypeFIT = ".FIT"

// FileHeader is the 12 or 14 byte preamble of a FIT unit.
type FileHeader struct {
	HeaderSize      uint8  `json:"headerSize"`
	ProtocolVersion uint8  `json:"protocolVersion"`
	ProfileVersion  uint16 `json:"profileVersion"`
	DataSize        uint32 `json:"dataSize"`
	DataType        string `json:"dataType"`
	HeaderCRC       uint16 `json:"headerCRC,omitempty"`
}

// FileSize is the byte length of the unit including the trailing CRC.
func (h FileHeader) FileSize() int64 {
	return int64(h.HeaderSize) + int64(h.DataSize) + crcSize
}

// ReadFileHeader reads the header at the current position. With restore set
// the stream position is put back afterwards, whatever the outcome.
func ReadFileHeader(s *Stream, restore bool) (FileHeader, error) {
	start := s.Position()
	if restore {
		defer func() { _ = s.Seek(start) }()
	}

	var h FileHeader
	size, err := s.ReadByte()
	if err != nil {
		return h, err
	}
	h.HeaderSize = size
	if size != headerWithCRCSize && size != headerWithoutCRCSize {
		return h, newDecodeError(start, fmt.Errorf("%w: header size %d", ErrNotFIT, size))
	}
	if h.ProtocolVersion, err = s.ReadByte(); err != nil {
		return h, err
	}
	if h.ProfileVersion, err = s.ReadUint16(LittleEndian); err != nil {
		return h, err
	}
	if h.DataSize, err = s.ReadUint32(LittleEndian); err != nil {
		return h, err
	}
	tag, err := s.ReadBytes(4)
	if err != nil {
		return h, err
	}
	h.DataType = string(tag)
	if size == headerWithCRCSize {
		if h.HeaderCRC, err = s.ReadUint16(LittleEndian); err != nil {
			return h, err
		}
	}
	return h, nil
}

// IsFIT reports whether data starts with a plausible FIT header.
func IsFIT(data []byte) bool {
	return isFIT(NewStream(data))
}

// isFIT checks the unit starting at the current position and never moves it.
func isFIT(s *Stream) bool {
	size, err := s.PeekByte()
	if err != nil {
		return false
	}
	if size != headerWithCRCSize && size != headerWithoutCRCSize {
		return false
	}
	if s.Remaining() < int64(size)+crcSize {
		return false
	}
	h, err := ReadFileHeader(s, true)
	if err != nil {
		return false
	}
	return h.DataType == DataTypeFIT
}

// checkIntegrity validates the unit starting at the current position,
// leaving the position unchanged.
func checkIntegrity(s *Stream) bool {
	if !isFIT(s) {
		return false
	}
	start := s.Position()
	h, err := ReadFileHeader(s, true)
	if err != nil {
		return false
	}
	if s.Remaining() < h.FileSize() {
		return false
	}

	data := s.Slice(start, start+h.FileSize())
	if h.HeaderSize == headerWithCRCSize && h.HeaderCRC != 0 {
		if CRC16(data, 0, headerCRCCoveredBytes) != h.HeaderCRC {
			return false
		}
	}

	end := int(h.HeaderSize) + int(h.DataSize)
	trailer := uint16(data[end]) | uint16(data[end+1])<<8
	return CRC16(data, 0, end) == trailer
}

// ReadFileHeaders lists the headers of every chained unit in data, stopping
// at the first byte range that is not a FIT unit.
func ReadFileHeaders(data []byte) ([]FileHeader, error) {
	s := NewStream(data)
	var headers []FileHeader
	for !s.EOF() {
		if !isFIT(s) {
			return headers, newDecodeError(s.Position(), ErrNotFIT)
		}
		h, err := ReadFileHeader(s, true)
		if err != nil {
			return headers, err
		}
		headers = append(headers, h)
		next := s.Position() + h.FileSize()
		if next > s.Length() {
			return headers, newDecodeError(s.Position(), fmt.Errorf("unit truncated: %w", ErrEndOfStream))
		}
		if err := s.Seek(next); err != nil {
			return headers, err
		}
	}
	return headers, nil
}
