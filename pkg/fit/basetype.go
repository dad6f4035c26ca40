package fit

import "fmt"

// BaseType is the wire type code carried by a field definition.
type BaseType uint8

const (
	BaseTypeEnum    BaseType = 0x00
	BaseTypeSint8   BaseType = 0x01
	BaseTypeUint8   BaseType = 0x02
	BaseTypeSint16  BaseType = 0x83
	BaseTypeUint16  BaseType = 0x84
	BaseTypeSint32  BaseType = 0x85
	BaseTypeUint32  BaseType = 0x86
	BaseTypeString  BaseType = 0x07
	BaseTypeFloat32 BaseType = 0x88
	BaseTypeFloat64 BaseType = 0x89
	BaseTypeUint8z  BaseType = 0x0A
	BaseTypeUint16z BaseType = 0x8B
	BaseTypeUint32z BaseType = 0x8C
	BaseTypeByte    BaseType = 0x0D
	BaseTypeSint64  BaseType = 0x8E
	BaseTypeUint64  BaseType = 0x8F
	BaseTypeUint64z BaseType = 0x90
)

// BaseTypeDefinition describes the width and invalid sentinel of a base type.
type BaseTypeDefinition struct {
	Type    BaseType
	Size    int
	Invalid uint64
	Signed  bool
	Float   bool
}

var baseTypeDefinitions = map[BaseType]BaseTypeDefinition{
	BaseTypeEnum:    {Type: BaseTypeEnum, Size: 1, Invalid: 0xFF},
	BaseTypeSint8:   {Type: BaseTypeSint8, Size: 1, Invalid: 0x7F, Signed: true},
	BaseTypeUint8:   {Type: BaseTypeUint8, Size: 1, Invalid: 0xFF},
	BaseTypeSint16:  {Type: BaseTypeSint16, Size: 2, Invalid: 0x7FFF, Signed: true},
	BaseTypeUint16:  {Type: BaseTypeUint16, Size: 2, Invalid: 0xFFFF},
	BaseTypeSint32:  {Type: BaseTypeSint32, Size: 4, Invalid: 0x7FFFFFFF, Signed: true},
	BaseTypeUint32:  {Type: BaseTypeUint32, Size: 4, Invalid: 0xFFFFFFFF},
	BaseTypeString:  {Type: BaseTypeString, Size: 1, Invalid: 0x00},
	BaseTypeFloat32: {Type: BaseTypeFloat32, Size: 4, Invalid: 0xFFFFFFFF, Float: true},
	BaseTypeFloat64: {Type: BaseTypeFloat64, Size: 8, Invalid: 0xFFFFFFFFFFFFFFFF, Float: true},
	BaseTypeUint8z:  {Type: BaseTypeUint8z, Size: 1, Invalid: 0x00},
	BaseTypeUint16z: {Type: BaseTypeUint16z, Size: 2, Invalid: 0x0000},
	BaseTypeUint32z: {Type: BaseTypeUint32z, Size: 4, Invalid: 0x00000000},
	BaseTypeByte:    {Type: BaseTypeByte, Size: 1, Invalid: 0xFF},
	BaseTypeSint64:  {Type: BaseTypeSint64, Size: 8, Invalid: 0x7FFFFFFFFFFFFFFF, Signed: true},
	BaseTypeUint64:  {Type: BaseTypeUint64, Size: 8, Invalid: 0xFFFFFFFFFFFFFFFF},
	BaseTypeUint64z: {Type: BaseTypeUint64z, Size: 8, Invalid: 0x0000000000000000},
}

// Definition returns the table entry for the base type.
func (b BaseType) Definition() (BaseTypeDefinition, bool) {
	def, ok := baseTypeDefinitions[b]
	return def, ok
}

// Valid reports whether b is one of the 17 known base types.
func (b BaseType) Valid() bool {
	_, ok := baseTypeDefinitions[b]
	return ok
}

func (b BaseType) String() string {
	switch b {
	case BaseTypeEnum:
		return "enum"
	case BaseTypeSint8:
		return "sint8"
	case BaseTypeUint8:
		return "uint8"
	case BaseTypeSint16:
		return "sint16"
	case BaseTypeUint16:
		return "uint16"
	case BaseTypeSint32:
		return "sint32"
	case BaseTypeUint32:
		return "uint32"
	case BaseTypeString:
		return "string"
	case BaseTypeFloat32:
		return "float32"
	case BaseTypeFloat64:
		return "float64"
	case BaseTypeUint8z:
		return "uint8z"
	case BaseTypeUint16z:
		return "uint16z"
	case BaseTypeUint32z:
		return "uint32z"
	case BaseTypeByte:
		return "byte"
	case BaseTypeSint64:
		return "sint64"
	case BaseTypeUint64:
		return "uint64"
	case BaseTypeUint64z:
		return "uint64z"
	}
	return fmt.Sprintf("BaseType(0x%02X)", uint8(b))
}

// FieldTypeToBaseType maps profile type names that are primitive to their base type.
var FieldTypeToBaseType = map[string]BaseType{
	"sint8":   BaseTypeSint8,
	"uint8":   BaseTypeUint8,
	"sint16":  BaseTypeSint16,
	"uint16":  BaseTypeUint16,
	"sint32":  BaseTypeSint32,
	"uint32":  BaseTypeUint32,
	"string":  BaseTypeString,
	"float32": BaseTypeFloat32,
	"float64": BaseTypeFloat64,
	"uint8z":  BaseTypeUint8z,
	"uint16z": BaseTypeUint16z,
	"uint32z": BaseTypeUint32z,
	"byte":    BaseTypeByte,
	"sint64":  BaseTypeSint64,
	"uint64":  BaseTypeUint64,
	"uint64z": BaseTypeUint64z,
}

// profileBaseType resolves a profile baseType name, which may also be "enum".
func profileBaseType(name string) (BaseType, bool) {
	if name == "enum" {
		return BaseTypeEnum, true
	}
	bt, ok := FieldTypeToBaseType[name]
	return bt, ok
}

// NumericFieldTypes are the profile type names that receive scale and offset.
var NumericFieldTypes = []string{
	"sint8", "uint8", "sint16", "uint16", "sint32", "uint32",
	"float32", "float64", "uint8z", "uint16z", "uint32z",
	"byte", "sint64", "uint64", "uint64z",
}

var numericFieldTypes = func() map[string]bool {
	m := make(map[string]bool, len(NumericFieldTypes))
	for _, t := range NumericFieldTypes {
		m[t] = true
	}
	return m
}()

// IsNumericFieldType reports whether the profile type name is numeric.
func IsNumericFieldType(typeName string) bool {
	return numericFieldTypes[typeName]
}

// Global message numbers the codec refers to by number.
const (
	MesgNumFileID           uint16 = 0
	MesgNumRecord           uint16 = 20
	MesgNumEvent            uint16 = 21
	MesgNumHr               uint16 = 132
	MesgNumMemoGlob         uint16 = 145
	MesgNumFieldDescription uint16 = 206
	MesgNumDeveloperDataID  uint16 = 207
)

// Record header bits.
const (
	compressedHeaderMask  = 0x80
	mesgDefinitionMask    = 0x40
	mesgHeaderMask        = 0x00
	devDataMask           = 0x20
	localMesgNumMask      = 0x0F
	crcSize               = 2
	maxLocalMessageSlots  = 16
	headerWithCRCSize     = 14
	headerWithoutCRCSize  = 12
	headerCRCCoveredBytes = 12
)
