package fit

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInput        = errors.New("missing input data")
	ErrNotFIT              = errors.New("input is not a FIT file")
	ErrCRC                 = errors.New("CRC error")
	ErrUnknownBaseType     = errors.New("unknown base type")
	ErrMissingDefinition   = errors.New("missing message definition")
	ErrCompressedTimestamp = errors.New("compressed timestamp messages are not currently supported")
	ErrInvalidOptions      = errors.New("mergeHeartRates requires applyScaleAndOffset and expandComponents to be enabled")
	ErrEndOfStream         = errors.New("read past end of stream")
	ErrBitsExhausted       = errors.New("not enough bits available")

	ErrUnknownMessage        = errors.New("unknown message")
	ErrInvalidFieldValue     = errors.New("invalid field value")
	ErrStringTooLong         = errors.New("string exceeds 255 bytes")
	ErrFieldTooLarge         = errors.New("field exceeds 255 bytes")
	ErrInvalidDeveloperField = errors.New("invalid developer field")
	ErrEncoderClosed         = errors.New("encoder is closed")
)

// DecodeError locates a decode fault in the input.
type DecodeError struct {
	Pos int64
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("FIT Runtime Error at byte %d", e.Pos)
	}
	return fmt.Sprintf("FIT Runtime Error at byte %d %s", e.Pos, e.Err.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(pos int64, err error) *DecodeError {
	return &DecodeError{Pos: pos, Err: err}
}
