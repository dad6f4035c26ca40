package cel

import (
	"strconv"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// TypeConversionFunctions returns to_i and to_f, which accept any decoded
// scalar (numbers and numeric strings).
func TypeConversionFunctions() cel.EnvOption {
	return cel.Lib(&typeConversionLib{})
}

type typeConversionLib struct{}

func toInt(val ref.Val) ref.Val {
	switch v := val.(type) {
	case types.Int:
		return v
	case types.Uint:
		return types.Int(v)
	case types.Double:
		return types.Int(v)
	case types.String:
		i, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return types.NewErr("cannot convert string to int: %v", err)
		}
		return types.Int(i)
	}
	return types.NewErr("unexpected type for to_i: %T", val.Value())
}

func toDouble(val ref.Val) ref.Val {
	if s, ok := val.(types.String); ok {
		f, err := strconv.ParseFloat(string(s), 64)
		if err != nil {
			return types.NewErr("cannot convert string to double: %v", err)
		}
		return types.Double(f)
	}
	if f, ok := toFloat(val); ok {
		return types.Double(f)
	}
	return types.NewErr("unexpected type for to_f: %T", val.Value())
}

func (*typeConversionLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("to_i",
			cel.Overload("to_i_dyn", []*cel.Type{cel.DynType}, cel.IntType, cel.UnaryBinding(toInt)),
		),
		cel.Function("to_f",
			cel.Overload("to_f_dyn", []*cel.Type{cel.DynType}, cel.DoubleType, cel.UnaryBinding(toDouble)),
		),
	}
}

func (*typeConversionLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
