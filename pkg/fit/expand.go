package fit

import (
	"github.com/twinfer/fit-plugin/pkg/profile"
)

// expandSubFields adds a copy of every field whose sub-field reference
// matches a sibling's raw value, under the sub-field's name.
func (s *session) expandSubFields(mp *profile.Message, fields *fieldSet) {
	if !s.opts.expandSubFields || mp == nil || len(s.fieldsWithSubFields) == 0 {
		return
	}

	for _, name := range s.fieldsWithSubFields {
		fv, ok := fields.Get(name)
		if !ok {
			continue
		}
		field, ok := mp.Fields[fv.fieldNum]
		if !ok {
			continue
		}
		s.expandSubField(field, fv, fields)
	}
}

func (s *session) expandSubField(field *profile.Field, fv *fieldValue, fields *fieldSet) {
	for _, sf := range field.SubFields {
		for _, ref := range sf.Map {
			refField, ok := fields.Get(ref.Name)
			if !ok || refField.raw == nil {
				continue
			}
			if v, ok := toInt64(refField.raw); !ok || v != ref.Value {
				continue
			}

			c := fv.clone()
			c.isSubField = true
			fields.Set(sf.Name, c)
			if sf.HasComponents() {
				s.fieldsToExpand = append(s.fieldsToExpand, sf.Name)
			}
			break
		}
	}
}

// resolveSpec returns the interpretation a working value was read under.
func resolveSpec(mp *profile.Message, name string, fv *fieldValue) (profile.Spec, bool) {
	if mp == nil {
		return profile.Spec{}, false
	}
	field, ok := mp.Fields[fv.fieldNum]
	if !ok {
		return profile.Spec{}, false
	}
	if !fv.isSubField {
		return field.Spec(), true
	}
	sf, ok := field.SubField(name)
	if !ok {
		return profile.Spec{}, false
	}
	return sf.Spec(), true
}

// specBaseType picks the base type a component target is stored as: the
// declared type when it is primitive, else the profile base type.
func specBaseType(typeName, baseTypeName string) (BaseType, bool) {
	if bt, ok := FieldTypeToBaseType[typeName]; ok {
		return bt, true
	}
	return profileBaseType(baseTypeName)
}

// expandComponents unpacks bit-packed components into their target fields.
// Targets that themselves have components are queued and unpacked in turn.
func (s *session) expandComponents(mesgNum uint16, mp *profile.Message, fields *fieldSet) {
	if !s.opts.expandComponents || mp == nil || len(s.fieldsToExpand) == 0 {
		return
	}

	expanded := newFieldSet()
	lookup := func(name string) (*fieldValue, bool) {
		if fv, ok := expanded.Get(name); ok {
			return fv, true
		}
		return fields.Get(name)
	}

	for len(s.fieldsToExpand) > 0 {
		name := s.fieldsToExpand[0]
		s.fieldsToExpand = s.fieldsToExpand[1:]

		fv, ok := lookup(name)
		if !ok {
			continue
		}
		spec, ok := resolveSpec(mp, name, fv)
		if !ok || !spec.HasComponents() {
			continue
		}
		// only primitive declared types are unpacked
		bt, ok := FieldTypeToBaseType[spec.Type]
		if !ok {
			continue
		}

		raw := fv.source()
		if onlyInvalidValues(raw, bt) {
			continue
		}

		bits, err := NewBitStream(raw, bt)
		if err != nil {
			s.logger.WarnContext(s.ctx, "Skipping component expansion", "field", name, "error", err)
			continue
		}

		for j, component := range spec.Components {
			width := spec.Bits[j]
			target, known := mp.Fields[component]

			var targetValue *fieldValue
			if known {
				targetValue, ok = expanded.Get(target.Name)
				if !ok {
					targetValue = &fieldValue{
						fieldNum:   target.Num,
						isExpanded: true,
						invalid:    targetInvalid(target),
						rawList:    []any{},
						valueList:  []any{},
					}
					expanded.Set(target.Name, targetValue)
				}
			}

			if bits.BitsAvailable() < width {
				break
			}
			value, err := bits.ReadBits(width)
			if err != nil {
				break
			}

			if known {
				if acc, ok := s.accumulator.Accumulate(mesgNum, component, value, width); ok {
					value = acc
				}

				targetValue.rawList = append(targetValue.rawList, targetRaw(target, value))
				if value == targetValue.invalid {
					targetValue.valueList = append(targetValue.valueList, nil)
				} else {
					targetValue.valueList = append(targetValue.valueList, scaleValue(targetRaw(target, value), spec.ScaleAt(j), spec.OffsetAt(j)))
				}

				if target.HasComponents() {
					s.fieldsToExpand = append(s.fieldsToExpand, target.Name)
				}
			}

			if !bits.HasBitsAvailable() {
				break
			}
		}
	}

	expanded.each(func(name string, fv *fieldValue) {
		fv.value = sanitizeValues(fv.valueList)
		fv.raw = sanitizeValues(fv.rawList)
		fields.Set(name, fv)
	})
}

// targetInvalid is the invalid sentinel of a component target, 0xFF when
// the target type is not primitive.
func targetInvalid(target *profile.Field) uint64 {
	bt, ok := specBaseType(target.Type, "")
	if !ok {
		return 0xFF
	}
	def, _ := bt.Definition()
	return def.Invalid
}

func targetRaw(target *profile.Field, value uint64) any {
	if bt, ok := specBaseType(target.Type, target.BaseType); ok {
		if def, _ := bt.Definition(); def.Size == 8 && !def.Signed && !def.Float {
			return value
		}
	}
	return int64(value)
}

// scaleValue computes value/scale - offset. Identity transforms keep the
// integer, and a degenerate scale returns the value unchanged.
func scaleValue(value any, scale, offset float64) any {
	if scale == 1 && offset == 0 {
		return value
	}
	f, ok := toFloat64(value)
	if !ok || scale == 0 {
		return value
	}
	r := f/scale - offset
	if !isFiniteNumber(r) {
		return value
	}
	return r
}
