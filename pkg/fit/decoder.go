package fit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/twinfer/fit-plugin/pkg/profile"
)

// Result is the outcome of one Read. Messages decoded before a fault are kept.
type Result struct {
	Messages map[string][]*Message
	Errors   []error
}

// Err returns the first error, or nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// Decoder decodes a complete in-memory FIT buffer, which may hold several
// chained FIT units. A Decoder is safe for concurrent use; every Read works
// on its own cursor and state.
type Decoder struct {
	data    []byte
	options options
}

// NewDecoder creates a decoder over data. Options become the defaults of every Read.
func NewDecoder(data []byte, opts ...Option) (*Decoder, error) {
	if data == nil {
		return nil, newDecodeError(0, ErrMissingInput)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{data: data, options: o}, nil
}

// IsFIT reports whether the buffer starts with a FIT header.
func (d *Decoder) IsFIT() bool {
	return IsFIT(d.data)
}

// CheckIntegrity verifies the header and file CRCs of the first FIT unit.
func (d *Decoder) CheckIntegrity() bool {
	return checkIntegrity(NewStream(d.data))
}

// Read decodes every chained unit. It never panics on malformed input; the
// first fault stops decoding and is reported in Result.Errors.
func (d *Decoder) Read(ctx context.Context, opts ...Option) *Result {
	o := d.options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.profile == nil {
		o.profile = profile.Default()
	}

	s := &session{
		ctx:         ctx,
		opts:        o,
		logger:      o.logger,
		profile:     o.profile,
		stream:      NewStream(d.data),
		developer:   newDeveloperRegistry(),
		accumulator: NewAccumulator(),
		messages:    make(map[string][]*Message),
	}

	result := &Result{Messages: s.messages}
	if err := s.run(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to decode FIT data", "error", err)
		result.Errors = append(result.Errors, err)
	}
	return result
}

// session holds the state of one Read.
type session struct {
	ctx         context.Context
	opts        options
	logger      *slog.Logger
	profile     ProfileLookup
	stream      *Stream
	localDefs   [maxLocalMessageSlots]*messageDefinition
	developer   *developerRegistry
	accumulator *Accumulator
	messages    map[string][]*Message

	fieldsWithSubFields []string
	fieldsToExpand      []string
}

func (s *session) run() error {
	if err := s.opts.validate(); err != nil {
		return newDecodeError(0, err)
	}

	s.logger.DebugContext(s.ctx, "Starting FIT decoding", "size", s.stream.Length())
	for !s.stream.EOF() {
		if err := s.decodeNextFile(); err != nil {
			return err
		}
	}

	if s.opts.mergeHeartRates {
		MergeHeartRates(s.messages["hrMesgs"], s.messages["recordMesgs"])
	}
	if s.opts.decodeMemoGlobs {
		DecodeMemoGlobs(s.messages, s.profile)
	}
	s.logger.DebugContext(s.ctx, "Finished FIT decoding", "message_types", len(s.messages))
	return nil
}

func (s *session) decodeNextFile() error {
	start := s.stream.Position()
	if !isFIT(s.stream) {
		return newDecodeError(start, ErrNotFIT)
	}

	s.localDefs = [maxLocalMessageSlots]*messageDefinition{}

	header, err := ReadFileHeader(s.stream, false)
	if err != nil {
		return err
	}
	s.logger.DebugContext(s.ctx, "Decoding FIT file", "offset", start, "header_size", header.HeaderSize, "data_size", header.DataSize, "profile_version", header.ProfileVersion)

	end := start + int64(header.HeaderSize) + int64(header.DataSize)
	for s.stream.Position() < end {
		select {
		case <-s.ctx.Done():
			return newDecodeError(s.stream.Position(), s.ctx.Err())
		default:
		}
		if err := s.decodeNextRecord(); err != nil {
			return err
		}
	}

	crcEnd := s.stream.Position()
	calculated := CRC16(s.stream.Slice(start, crcEnd), 0, int(crcEnd-start))
	crc, err := s.stream.ReadUint16(LittleEndian)
	if err != nil {
		return err
	}
	if crc != calculated {
		return newDecodeError(s.stream.Position(), ErrCRC)
	}
	return nil
}

func (s *session) decodeNextRecord() error {
	header, err := s.stream.PeekByte()
	if err != nil {
		return err
	}

	switch {
	case header&compressedHeaderMask == compressedHeaderMask:
		return newDecodeError(s.stream.Position(), ErrCompressedTimestamp)
	case header&mesgDefinitionMask == mesgDefinitionMask:
		return s.decodeMessageDefinition()
	default:
		return s.decodeMessage()
	}
}

func (s *session) decodeMessageDefinition() error {
	header, err := s.stream.ReadByte()
	if err != nil {
		return err
	}

	def := &messageDefinition{localMesgNum: header & localMesgNumMask}
	if _, err := s.stream.ReadByte(); err != nil { // reserved
		return err
	}
	if def.architecture, err = s.stream.ReadByte(); err != nil {
		return err
	}
	def.endianness = LittleEndian
	if def.architecture != 0 {
		def.endianness = BigEndian
	}
	if def.globalMesgNum, err = s.stream.ReadUint16(def.endianness); err != nil {
		return err
	}

	numFields, err := s.stream.ReadByte()
	if err != nil {
		return err
	}
	def.fields = make([]fieldDefinition, 0, numFields)
	for i := 0; i < int(numFields); i++ {
		triple, err := s.stream.ReadBytes(3)
		if err != nil {
			return err
		}
		fd := fieldDefinition{num: triple[0], size: int(triple[1]), baseType: BaseType(triple[2])}
		if !fd.baseType.Valid() {
			return newDecodeError(s.stream.Position(), fmt.Errorf("%w 0x%02X in field %d of message %d", ErrUnknownBaseType, triple[2], fd.num, def.globalMesgNum))
		}
		def.fields = append(def.fields, fd)
		def.messageSize += fd.size
	}

	if header&devDataMask == devDataMask {
		numDevFields, err := s.stream.ReadByte()
		if err != nil {
			return err
		}
		def.developerFields = make([]developerFieldDefinition, 0, numDevFields)
		for i := 0; i < int(numDevFields); i++ {
			triple, err := s.stream.ReadBytes(3)
			if err != nil {
				return err
			}
			dfd := developerFieldDefinition{num: triple[0], size: int(triple[1]), developerDataIndex: triple[2]}
			def.developerFields = append(def.developerFields, dfd)
			def.developerDataSize += dfd.size
		}
	}

	mp, ok := s.profile.MessageByNumber(def.globalMesgNum)
	if !ok && s.opts.includeUnknownData {
		mp, ok = profile.NewUnknownMessage(def.globalMesgNum), true
	}
	if ok {
		def.profile = mp
		if _, exists := s.messages[mp.MessagesKey]; !exists {
			s.messages[mp.MessagesKey] = []*Message{}
		}
	}

	s.localDefs[def.localMesgNum] = def
	s.logger.DebugContext(s.ctx, "Decoded definition record",
		"local_mesg_num", def.localMesgNum,
		"global_mesg_num", def.globalMesgNum,
		"endianness", def.endianness.String(),
		"fields", len(def.fields),
		"developer_fields", len(def.developerFields),
		"known", def.profile != nil)
	return nil
}

func (s *session) decodeMessage() error {
	header, err := s.stream.ReadByte()
	if err != nil {
		return err
	}

	def := s.localDefs[header&localMesgNumMask]
	if def == nil {
		return newDecodeError(s.stream.Position(), fmt.Errorf("%w for local message %d", ErrMissingDefinition, header&localMesgNumMask))
	}

	mesgNum := def.globalMesgNum
	mp := def.profile
	fields := newFieldSet()
	s.fieldsWithSubFields = s.fieldsWithSubFields[:0]
	s.fieldsToExpand = s.fieldsToExpand[:0]

	for _, fd := range def.fields {
		var field *profile.Field
		if mp != nil {
			field = mp.Fields[fd.num]
		}

		convertInvalidToNull := field == nil || !field.HasComponents()
		raw, err := s.stream.ReadValue(fd.baseType, fd.size, def.endianness, convertInvalidToNull)
		if err != nil {
			return err
		}
		if raw == nil {
			continue
		}
		if field == nil && !s.opts.includeUnknownData {
			continue
		}

		name := strconv.Itoa(int(fd.num))
		if field != nil {
			name = field.Name
		}
		fields.Set(name, &fieldValue{raw: raw, fieldNum: fd.num})

		if field == nil {
			continue
		}
		if len(field.SubFields) > 0 {
			s.fieldsWithSubFields = append(s.fieldsWithSubFields, name)
		}
		if field.HasComponents() {
			s.fieldsToExpand = append(s.fieldsToExpand, name)
		}
		if field.Accumulated {
			if seed, ok := accumulatorSeed(raw); ok {
				s.accumulator.CreateAccumulatedField(mesgNum, fd.num, seed)
			}
		}
	}

	developerFields := make(map[int]any)
	for _, dfd := range def.developerFields {
		desc := s.developer.lookup(dfd.developerDataIndex, dfd.num)
		if desc == nil || !desc.FitBaseTypeID.Valid() {
			if _, err := s.stream.ReadBytes(dfd.size); err != nil {
				return err
			}
			continue
		}
		v, err := s.stream.ReadValue(desc.FitBaseTypeID, dfd.size, def.endianness, true)
		if err != nil {
			return err
		}
		if v != nil {
			developerFields[desc.Key] = v
		}
	}

	switch mesgNum {
	case MesgNumDeveloperDataID:
		s.developer.addDeveloperDataID(fields)
	case MesgNumFieldDescription:
		key := s.developer.total()
		fields.Set("key", &fieldValue{raw: int64(key), value: int64(key), isExpanded: true})
		s.developer.addFieldDescription(fields, key)
	default:
		s.expandSubFields(mp, fields)
		s.expandComponents(mesgNum, mp, fields)
	}

	s.transformValues(mesgNum, mp, fields)

	if mp == nil {
		return nil
	}

	msg := NewMessage(mesgNum, mp.Name)
	fields.each(func(name string, fv *fieldValue) {
		msg.Set(name, fv.value)
	})
	if len(developerFields) > 0 {
		msg.DeveloperFields = developerFields
	}
	s.messages[mp.MessagesKey] = append(s.messages[mp.MessagesKey], msg)

	if s.opts.mesgListener != nil {
		if err := s.opts.mesgListener(mesgNum, msg); err != nil {
			return err
		}
	}
	return nil
}

// accumulatorSeed picks the sample that seeds accumulation: the value itself,
// or the last non-nil element of an array.
func accumulatorSeed(raw any) (uint64, bool) {
	if arr, ok := raw.([]any); ok {
		for i := len(arr) - 1; i >= 0; i-- {
			if arr[i] != nil {
				return toUint64(arr[i])
			}
		}
		return 0, false
	}
	return toUint64(raw)
}
