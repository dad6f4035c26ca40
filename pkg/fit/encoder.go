package fit

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/twinfer/fit-plugin/pkg/profile"
)

// ProtocolVersion is the protocol written to encoded headers, 2.0.
const ProtocolVersion uint8 = 0x20

const maxFieldSize = 255

// DeveloperField links a developerDataId message with one of its field
// descriptions. Both are given as field name to value maps.
type DeveloperField struct {
	DeveloperDataID  map[string]any
	FieldDescription map[string]any
}

type developerFieldSpec struct {
	key                int
	developerDataIndex uint8
	fieldNum           uint8
	baseType           BaseType
}

type encoderOptions struct {
	profile         ProfileLookup
	profileVersion  uint16
	developerFields map[int]DeveloperField
	logger          *slog.Logger
}

// EncoderOption configures an Encoder.
type EncoderOption func(*encoderOptions)

// WithEncoderProfile encodes against p instead of the embedded profile.
func WithEncoderProfile(p ProfileLookup) EncoderOption {
	return func(o *encoderOptions) {
		o.profile = p
	}
}

// WithProfileVersion overrides the profile version written to the header.
func WithProfileVersion(v uint16) EncoderOption {
	return func(o *encoderOptions) {
		o.profileVersion = v
	}
}

// WithDeveloperFields registers developer fields by key, as AddDeveloperField does.
func WithDeveloperFields(fields map[int]DeveloperField) EncoderOption {
	return func(o *encoderOptions) {
		o.developerFields = fields
	}
}

// WithEncoderLogger sets the encoder logger.
func WithEncoderLogger(logger *slog.Logger) EncoderOption {
	return func(o *encoderOptions) {
		o.logger = logger
	}
}

// Encoder writes messages as one FIT unit. Records are buffered until Close
// frames them with the file header and CRC. A message that fails to encode
// leaves nothing behind. An Encoder is not safe for concurrent use.
type Encoder struct {
	opts      encoderOptions
	records   *fieldWriter
	localDefs [maxLocalMessageSlots]*messageDefinition
	nextLocal uint8
	developer map[int]*developerFieldSpec
	closed    bool
}

// NewEncoder creates an encoder. It fails when a developer field given with
// WithDeveloperFields is invalid.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	o := encoderOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.profile == nil {
		o.profile = profile.Default()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.profileVersion == 0 {
		if v, ok := o.profile.(interface{ VersionNumber() uint16 }); ok {
			o.profileVersion = v.VersionNumber()
		}
	}
	if o.profileVersion == 0 {
		o.profileVersion = profile.Default().VersionNumber()
	}

	e := &Encoder{
		opts:      o,
		records:   newFieldWriter(),
		developer: make(map[int]*developerFieldSpec),
	}

	keys := make([]int, 0, len(o.developerFields))
	for key := range o.developerFields {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	for _, key := range keys {
		f := o.developerFields[key]
		if err := e.AddDeveloperField(key, f.DeveloperDataID, f.FieldDescription); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// AddDeveloperField registers the developer field that messages reference
// under key in their "developerFields" entry. Both messages must carry the
// same developerDataIndex.
func (e *Encoder) AddDeveloperField(key int, developerDataID, fieldDescription map[string]any) error {
	idIndex, ok := developerIndex(developerDataID)
	if !ok {
		return fmt.Errorf("%w %d: developerDataId has no developerDataIndex", ErrInvalidDeveloperField, key)
	}
	descIndex, ok := developerIndex(fieldDescription)
	if !ok {
		return fmt.Errorf("%w %d: fieldDescription has no developerDataIndex", ErrInvalidDeveloperField, key)
	}
	if idIndex != descIndex {
		return fmt.Errorf("%w %d: developerDataIndex %d does not match %d", ErrInvalidDeveloperField, key, descIndex, idIndex)
	}

	num, ok := toNumber(fieldDescription["fieldDefinitionNumber"])
	if !ok || num < 0 || num > 0xFF {
		return fmt.Errorf("%w %d: missing fieldDefinitionNumber", ErrInvalidDeveloperField, key)
	}
	bt, ok := developerBaseType(fieldDescription["fitBaseTypeId"])
	if !ok {
		return fmt.Errorf("%w %d: unknown fitBaseTypeId %v", ErrInvalidDeveloperField, key, fieldDescription["fitBaseTypeId"])
	}

	e.developer[key] = &developerFieldSpec{
		key:                key,
		developerDataIndex: idIndex,
		fieldNum:           uint8(num),
		baseType:           bt,
	}
	return nil
}

func developerIndex(mesg map[string]any) (uint8, bool) {
	v, ok := toNumber(mesg["developerDataIndex"])
	if !ok || v < 0 || v >= 0xFF {
		return 0, false
	}
	return uint8(v), true
}

func developerBaseType(v any) (BaseType, bool) {
	if name, ok := v.(string); ok {
		bt, ok := profileBaseType(name)
		return bt, ok
	}
	n, ok := toNumber(v)
	if !ok || n < 0 || n > 0xFF {
		return 0, false
	}
	bt := BaseType(n)
	return bt, bt.Valid()
}

// OnMesg encodes one message given as field name to value. Names the
// profile does not know are ignored. Developer field values go under
// "developerFields", keyed by the AddDeveloperField key.
func (e *Encoder) OnMesg(mesgNum uint16, mesg map[string]any) error {
	if e.closed {
		return ErrEncoderClosed
	}
	mp, ok := e.opts.profile.MessageByNumber(mesgNum)
	if !ok {
		return fmt.Errorf("%w %d", ErrUnknownMessage, mesgNum)
	}

	def := &messageDefinition{globalMesgNum: mesgNum, endianness: LittleEndian, profile: mp}
	data := newFieldWriter()

	for _, f := range layoutFields(mp, mesg) {
		raw, err := e.encodeField(mesgNum, f.spec, f.baseType, f.value)
		if err != nil {
			return fmt.Errorf("encoding %s.%s: %w", mp.Name, f.spec.Name, err)
		}
		def.fields = append(def.fields, fieldDefinition{num: f.num, size: len(raw), baseType: f.baseType})
		def.messageSize += len(raw)
		data.bytes(raw)
	}

	devValues, err := developerValues(mesg["developerFields"])
	if err != nil {
		return fmt.Errorf("encoding %s developer fields: %w", mp.Name, err)
	}
	for _, dv := range devValues {
		spec, ok := e.developer[dv.key]
		if !ok {
			return fmt.Errorf("encoding %s: %w: no field registered for key %d", mp.Name, ErrInvalidDeveloperField, dv.key)
		}
		raw, err := e.encodeField(mesgNum, profile.Spec{Name: strconv.Itoa(dv.key), Type: spec.baseType.String()}, spec.baseType, dv.value)
		if err != nil {
			return fmt.Errorf("encoding %s developer field %d: %w", mp.Name, dv.key, err)
		}
		def.developerFields = append(def.developerFields, developerFieldDefinition{
			num:                spec.fieldNum,
			size:               len(raw),
			developerDataIndex: spec.developerDataIndex,
		})
		def.developerDataSize += len(raw)
		data.bytes(raw)
	}

	payload, err := data.Bytes()
	if err != nil {
		return err
	}

	local, reuse := e.localSlot(def)
	record := newFieldWriter()
	if !reuse {
		writeDefinition(record, local, def)
	}
	record.u1(local & localMesgNumMask)
	record.bytes(payload)
	out, err := record.Bytes()
	if err != nil {
		return err
	}

	if !reuse {
		def.localMesgNum = local
		e.localDefs[local] = def
		e.nextLocal = (local + 1) % maxLocalMessageSlots
		e.opts.logger.Debug("Wrote definition record",
			"local_mesg_num", local,
			"global_mesg_num", mesgNum,
			"fields", len(def.fields),
			"developer_fields", len(def.developerFields))
	}
	e.records.bytes(out)
	return nil
}

// WriteMesg encodes a message that names its number under "mesgNum".
func (e *Encoder) WriteMesg(mesg map[string]any) error {
	n, ok := toNumber(mesg["mesgNum"])
	if !ok || n < 0 || n > 0xFFFF {
		return fmt.Errorf("%w: missing mesgNum", ErrUnknownMessage)
	}
	return e.OnMesg(uint16(n), mesg)
}

// WriteMessage encodes a decoded message.
func (e *Encoder) WriteMessage(msg *Message) error {
	return e.OnMesg(msg.Num, msg.Map())
}

// Close frames the buffered records and returns the FIT unit. The encoder
// cannot be used afterwards.
func (e *Encoder) Close() ([]byte, error) {
	if e.closed {
		return nil, ErrEncoderClosed
	}
	e.closed = true

	records, err := e.records.Bytes()
	if err != nil {
		return nil, err
	}

	out := newFieldWriter()
	out.u1(headerWithCRCSize)
	out.u1(ProtocolVersion)
	out.u2(e.opts.profileVersion)
	out.u4(uint32(len(records)))
	out.bytes([]byte(DataTypeFIT))
	header, err := out.Bytes()
	if err != nil {
		return nil, err
	}
	out.u2(CRC16(header, 0, headerCRCCoveredBytes))
	out.bytes(records)

	body, err := out.Bytes()
	if err != nil {
		return nil, err
	}
	out.u2(CRC16(body, 0, len(body)))
	data, err := out.Bytes()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

// localSlot returns the slot already holding an identical definition, or
// the next slot in rotation.
func (e *Encoder) localSlot(def *messageDefinition) (uint8, bool) {
	for i, d := range e.localDefs {
		if d != nil && sameLayout(d, def) {
			return uint8(i), true
		}
	}
	return e.nextLocal, false
}

func sameLayout(a, b *messageDefinition) bool {
	if a.globalMesgNum != b.globalMesgNum ||
		len(a.fields) != len(b.fields) ||
		len(a.developerFields) != len(b.developerFields) {
		return false
	}
	for i := range a.fields {
		if a.fields[i] != b.fields[i] {
			return false
		}
	}
	for i := range a.developerFields {
		if a.developerFields[i] != b.developerFields[i] {
			return false
		}
	}
	return true
}

func writeDefinition(fw *fieldWriter, local uint8, def *messageDefinition) {
	header := mesgDefinitionMask | local&localMesgNumMask
	if len(def.developerFields) > 0 {
		header |= devDataMask
	}
	fw.u1(header)
	fw.u1(0) // reserved
	fw.u1(0) // little endian
	fw.u2(def.globalMesgNum)
	fw.u1(uint8(len(def.fields)))
	for _, f := range def.fields {
		fw.bytes([]byte{f.num, uint8(f.size), uint8(f.baseType)})
	}
	if len(def.developerFields) > 0 {
		fw.u1(uint8(len(def.developerFields)))
		for _, f := range def.developerFields {
			fw.bytes([]byte{f.num, uint8(f.size), f.developerDataIndex})
		}
	}
}

type layoutField struct {
	num      uint8
	spec     profile.Spec
	baseType BaseType
	value    any
}

// layoutFields picks the fields to write in profile order. A sub-field name
// is written into its parent field when the parent itself is absent.
func layoutFields(mp *profile.Message, mesg map[string]any) []layoutField {
	var out []layoutField
	for _, f := range mp.FieldList {
		if v, ok := mesg[f.Name]; ok && v != nil {
			if bt, ok := profileBaseType(f.BaseType); ok {
				out = append(out, layoutField{num: f.Num, spec: f.Spec(), baseType: bt, value: v})
			}
			continue
		}
		for _, sf := range f.SubFields {
			v, ok := mesg[sf.Name]
			if !ok || v == nil {
				continue
			}
			baseType := sf.BaseType
			if baseType == "" {
				baseType = f.BaseType
			}
			if bt, ok := profileBaseType(baseType); ok {
				out = append(out, layoutField{num: f.Num, spec: sf.Spec(), baseType: bt, value: v})
			}
			break
		}
	}
	return out
}

// encodeField returns the wire bytes of one field value.
func (e *Encoder) encodeField(mesgNum uint16, spec profile.Spec, bt BaseType, v any) ([]byte, error) {
	def, ok := bt.Definition()
	if !ok {
		return nil, fmt.Errorf("%w 0x%02X", ErrUnknownBaseType, uint8(bt))
	}

	if bt == BaseTypeString {
		b, err := stringBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) > maxFieldSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrStringTooLong, len(b))
		}
		return b, nil
	}

	scaled := IsNumericFieldType(spec.Type) && !isDeveloperMesg(mesgNum) && len(spec.Scale) <= 1
	fw := newFieldWriter()
	for _, el := range elementsOf(v) {
		raw, err := e.elementRaw(spec, def, el, scaled)
		if err != nil {
			return nil, err
		}
		fw.raw(def, raw)
	}
	b, err := fw.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) > maxFieldSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFieldTooLarge, len(b))
	}
	return b, nil
}

// elementRaw inverts the decode transform for one element:
// raw = (value + offset) * scale, names back to enum values, times back to
// FIT seconds.
func (e *Encoder) elementRaw(spec profile.Spec, def BaseTypeDefinition, v any, scaled bool) (uint64, error) {
	if v == nil {
		return def.Invalid, nil
	}

	switch {
	case spec.Type == "dateTime" || spec.Type == "localDateTime":
		t, err := dateTimeSeconds(v)
		if err != nil {
			return 0, err
		}
		v = t
	case !IsNumericFieldType(spec.Type) && spec.Type != "string":
		if name, ok := v.(string); ok {
			n, err := e.enumValue(spec.Type, name)
			if err != nil {
				return 0, err
			}
			v = n
		}
	}

	scale, offset := spec.ScaleAt(0), spec.OffsetAt(0)
	if scale == 0 {
		scaled = false
	}

	if def.Float {
		f, ok := toNumber(v)
		if !ok {
			return 0, fmt.Errorf("%w: %T for %s", ErrInvalidFieldValue, v, spec.Name)
		}
		if scaled {
			f = (f + offset) * scale
		}
		if def.Size == 4 {
			return uint64(math.Float32bits(float32(f))), nil
		}
		return math.Float64bits(f), nil
	}

	if !scaled || (scale == 1 && offset == 0) {
		if raw, ok, err := integerRaw(v, def); ok {
			return raw, err
		}
	}
	f, ok := toNumber(v)
	if !ok {
		return 0, fmt.Errorf("%w: %T for %s", ErrInvalidFieldValue, v, spec.Name)
	}
	if scaled {
		f = (f + offset) * scale
	}
	return floatRaw(f, def)
}

func (e *Encoder) enumValue(typeName, name string) (int64, error) {
	if table, ok := e.opts.profile.TypeEnumByName(typeName); ok {
		for n, s := range table {
			if s == name {
				return n, nil
			}
		}
	}
	if n, err := strconv.ParseInt(name, 10, 64); err == nil {
		return n, nil
	}
	return 0, fmt.Errorf("%w: unknown %s value %q", ErrInvalidFieldValue, typeName, name)
}

// dateTimeSeconds accepts a time.Time, an RFC 3339 string or FIT seconds.
func dateTimeSeconds(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return ConvertDateToDateTime(t), nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFieldValue, err)
		}
		return ConvertDateToDateTime(parsed), nil
	}
	return v, nil
}

// stringBytes NUL terminates a string, or each string of an array.
func stringBytes(v any) ([]byte, error) {
	var out []byte
	for _, el := range elementsOf(v) {
		s, ok := el.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %T for a string field", ErrInvalidFieldValue, el)
		}
		out = append(out, s...)
		out = append(out, 0)
	}
	return out, nil
}

type developerValue struct {
	key   int
	value any
}

// developerValues reads the "developerFields" entry, keyed by int or by
// decimal string as Message.Map renders it, in key order.
func developerValues(v any) ([]developerValue, error) {
	var out []developerValue
	switch m := v.(type) {
	case nil:
		return nil, nil
	case map[int]any:
		for k, val := range m {
			out = append(out, developerValue{key: k, value: val})
		}
	case map[string]any:
		for k, val := range m {
			n, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("%w: key %q", ErrInvalidDeveloperField, k)
			}
			out = append(out, developerValue{key: n, value: val})
		}
	default:
		return nil, fmt.Errorf("%w: developerFields is %T", ErrInvalidDeveloperField, v)
	}

	kept := out[:0]
	for _, dv := range out {
		if dv.value != nil {
			kept = append(kept, dv)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].key < kept[j].key })
	return kept, nil
}
