package fit

// DeveloperDataID is a registry entry created from a developerDataId message.
type DeveloperDataID struct {
	DeveloperDataIndex uint8
	DeveloperID        any
	ApplicationID      any
	ManufacturerID     any
	ApplicationVersion any
	Fields             []*FieldDescription
}

// FieldDescription describes one developer field. Key is its position among
// all descriptions registered during the read and keys developerFields maps.
type FieldDescription struct {
	Key                   int
	DeveloperDataIndex    uint8
	FieldDefinitionNumber uint8
	FitBaseTypeID         BaseType
	FieldName             any
	Array                 any
	Components            any
	Scale                 any
	Offset                any
	Units                 any
	Bits                  any
	Accumulate            any
	FitBaseUnitID         any
	NativeMesgNum         any
	NativeFieldNum        any
}

// developerRegistry is append-only for the lifetime of one read.
type developerRegistry struct {
	entries map[uint8]*DeveloperDataID
}

func newDeveloperRegistry() *developerRegistry {
	return &developerRegistry{entries: make(map[uint8]*DeveloperDataID)}
}

// registryIndex extracts a usable developer data index from a raw value.
func registryIndex(fields *fieldSet) (uint8, bool) {
	fv, ok := fields.Get("developerDataIndex")
	if !ok || fv.raw == nil {
		return 0, false
	}
	idx, ok := toInt64(fv.raw)
	if !ok || idx < 0 || idx >= 0xFF {
		return 0, false
	}
	return uint8(idx), true
}

func (r *developerRegistry) addDeveloperDataID(fields *fieldSet) {
	idx, ok := registryIndex(fields)
	if !ok {
		return
	}
	r.entries[idx] = &DeveloperDataID{
		DeveloperDataIndex: idx,
		DeveloperID:        fields.raw("developerId"),
		ApplicationID:      fields.raw("applicationId"),
		ManufacturerID:     fields.raw("manufacturerId"),
		ApplicationVersion: fields.raw("applicationVersion"),
	}
}

func (r *developerRegistry) addFieldDescription(fields *fieldSet, key int) {
	idx, ok := registryIndex(fields)
	if !ok {
		return
	}
	entry, ok := r.entries[idx]
	if !ok {
		return
	}

	desc := &FieldDescription{
		Key:                key,
		DeveloperDataIndex: idx,
		FieldName:          fields.raw("fieldName"),
		Array:              fields.raw("array"),
		Components:         fields.raw("components"),
		Scale:              fields.raw("scale"),
		Offset:             fields.raw("offset"),
		Units:              fields.raw("units"),
		Bits:               fields.raw("bits"),
		Accumulate:         fields.raw("accumulate"),
		FitBaseUnitID:      fields.raw("fitBaseUnitId"),
		NativeMesgNum:      fields.raw("nativeMesgNum"),
		NativeFieldNum:     fields.raw("nativeFieldNum"),
		FitBaseTypeID:      0xFF,
	}
	if n, ok := toInt64(fields.raw("fieldDefinitionNumber")); ok {
		desc.FieldDefinitionNumber = uint8(n)
	}
	if n, ok := toInt64(fields.raw("fitBaseTypeId")); ok {
		desc.FitBaseTypeID = BaseType(n)
	}

	entry.Fields = append(entry.Fields, desc)
}

// total counts descriptions across every developer data index.
func (r *developerRegistry) total() int {
	n := 0
	for _, e := range r.entries {
		n += len(e.Fields)
	}
	return n
}

func (r *developerRegistry) lookup(developerDataIndex, fieldNum uint8) *FieldDescription {
	entry, ok := r.entries[developerDataIndex]
	if !ok {
		return nil
	}
	for _, f := range entry.Fields {
		if f.FieldDefinitionNumber == fieldNum {
			return f
		}
	}
	return nil
}
