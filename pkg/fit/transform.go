package fit

import (
	"github.com/twinfer/fit-plugin/pkg/profile"
)

// transformValues sets the final value of every field that was not produced
// by component expansion.
func (s *session) transformValues(mesgNum uint16, mp *profile.Message, fields *fieldSet) {
	fields.each(func(name string, fv *fieldValue) {
		if fv.isExpanded {
			return
		}
		spec, ok := resolveSpec(mp, name, fv)
		if !ok {
			fv.value = fv.raw
			return
		}
		fv.value = s.transformValue(mesgNum, spec, fv.raw)
	})
}

func (s *session) transformValue(mesgNum uint16, spec profile.Spec, raw any) any {
	switch {
	case IsNumericFieldType(spec.Type):
		return s.applyScaleAndOffset(mesgNum, spec, raw)
	case spec.Type == "string":
		return raw
	case spec.Type == "dateTime" && s.opts.convertDateTimesToDates:
		return convertDateTimes(raw)
	case s.opts.convertTypesToStrings:
		return s.convertTypeToString(mesgNum, spec, raw)
	}
	return raw
}

func isDeveloperMesg(mesgNum uint16) bool {
	return mesgNum == MesgNumDeveloperDataID || mesgNum == MesgNumFieldDescription
}

// applyScaleAndOffset computes raw/scale - offset per element. Fields with
// one scale per component are left raw.
func (s *session) applyScaleAndOffset(mesgNum uint16, spec profile.Spec, raw any) any {
	if !s.opts.applyScaleAndOffset || isDeveloperMesg(mesgNum) || raw == nil {
		return raw
	}
	if len(spec.Scale) > 1 {
		return raw
	}

	scale, offset := spec.ScaleAt(0), spec.OffsetAt(0)
	if arr, ok := raw.([]any); ok {
		out := make([]any, len(arr))
		for i, v := range arr {
			if v == nil {
				continue
			}
			out[i] = scaleValue(v, scale, offset)
		}
		return out
	}
	return scaleValue(raw, scale, offset)
}

// convertTypeToString replaces raw values with their enum names. Values
// without a name pass through.
func (s *session) convertTypeToString(mesgNum uint16, spec profile.Spec, raw any) any {
	if isDeveloperMesg(mesgNum) || IsNumericFieldType(spec.Type) {
		return raw
	}
	table, ok := s.profile.TypeEnumByName(spec.Type)
	if !ok {
		return raw
	}

	name := func(v any) any {
		n, ok := toInt64(v)
		if !ok {
			return v
		}
		if str, ok := table[n]; ok {
			return str
		}
		return v
	}

	if arr, ok := raw.([]any); ok {
		out := make([]any, len(arr))
		for i, v := range arr {
			if v == nil {
				continue
			}
			out[i] = name(v)
		}
		return out
	}
	if raw == nil {
		return nil
	}
	return name(raw)
}
