package cel

import (
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// semicircles per degree: 2^31 / 180
const semicirclesPerDegree = float64(1<<31) / 180

// fitEpochSeconds is 1989-12-31T00:00:00Z in Unix seconds.
const fitEpochSeconds = 631065600

// FITFunctions returns CEL function declarations for FIT unit conversions.
func FITFunctions() cel.EnvOption {
	return cel.Lib(&fitLib{})
}

type fitLib struct{}

func (*fitLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("semicirclesToDegrees",
			cel.Overload("semicircles_to_degrees_int", []*cel.Type{cel.IntType}, cel.DoubleType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					v, ok := val.(types.Int)
					if !ok {
						return types.NewErr("expected int argument to semicirclesToDegrees, got %T", val)
					}
					return types.Double(float64(v) / semicirclesPerDegree)
				}),
			),
			cel.Overload("semicircles_to_degrees_double", []*cel.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					v, ok := val.(types.Double)
					if !ok {
						return types.NewErr("expected double argument to semicirclesToDegrees, got %T", val)
					}
					return types.Double(float64(v) / semicirclesPerDegree)
				}),
			),
		),

		cel.Function("degreesToSemicircles",
			cel.Overload("degrees_to_semicircles_double", []*cel.Type{cel.DoubleType}, cel.IntType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					v, ok := val.(types.Double)
					if !ok {
						return types.NewErr("expected double argument to degreesToSemicircles, got %T", val)
					}
					return types.Int(int64(float64(v) * semicirclesPerDegree))
				}),
			),
		),

		// fitDateTime turns raw FIT seconds into a timestamp comparable with decoded dates.
		cel.Function("fitDateTime",
			cel.Overload("fit_date_time_int", []*cel.Type{cel.IntType}, cel.TimestampType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					v, ok := val.(types.Int)
					if !ok {
						return types.NewErr("expected int argument to fitDateTime, got %T", val)
					}
					return types.Timestamp{Time: time.Unix(int64(v)+fitEpochSeconds, 0).UTC()}
				}),
			),
		),
	}
}

func (*fitLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// EnumFunctions returns the enumName function bound to a profile's type tables.
func EnumFunctions(enums EnumLookup) cel.EnvOption {
	return cel.Lib(&enumLib{enums: enums})
}

type enumLib struct {
	enums EnumLookup
}

func (l *enumLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		// enumName("sport", 1) == "running"; unknown values give ""
		cel.Function("enumName",
			cel.Overload("enum_name_string_int", []*cel.Type{cel.StringType, cel.IntType}, cel.StringType,
				cel.BinaryBinding(func(typeName, value ref.Val) ref.Val {
					name, ok := typeName.(types.String)
					if !ok {
						return types.NewErr("first argument to enumName must be string")
					}
					v, ok := value.(types.Int)
					if !ok {
						return types.NewErr("second argument to enumName must be int")
					}
					if l.enums == nil {
						return types.String("")
					}
					table, ok := l.enums.TypeEnumByName(string(name))
					if !ok {
						return types.String("")
					}
					return types.String(table[int64(v)])
				}),
			),
		),
	}
}

func (*enumLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
