// Package cel provides the CEL environment used to filter decoded FIT
// messages, together with a cache of compiled programs.
//
// Every expression sees three variables:
//
//	mesg     map of field name to decoded value
//	mesgNum  global message number
//	name     message name ("record", "fileId", or the number for unknown messages)
package cel

import (
	"fmt"
	"math"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// Variable names bound in every filter activation.
const (
	VarMesg    = "mesg"
	VarMesgNum = "mesgNum"
	VarName    = "name"
)

// EnumLookup resolves the value to name table of a profile type.
type EnumLookup interface {
	TypeEnumByName(name string) (map[int64]string, bool)
}

// NewEnvironment creates a CEL environment with the FIT helper functions.
// enums may be nil, in which case enumName always yields an empty string.
func NewEnvironment(enums EnumLookup) (*cel.Env, error) {
	opts := []cel.EnvOption{
		cel.CustomTypeAdapter(NewFITTypeAdapter()),

		cel.Variable(VarMesg, cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable(VarMesgNum, cel.IntType),
		cel.Variable(VarName, cel.StringType),

		FITFunctions(),
		EnumFunctions(enums),
		TypeConversionFunctions(),
		bitwiseFunctions(),
		mathFunctions(),
		ErrorHandlingFunctions(),
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

func ErrorHandlingFunctions() cel.EnvOption {
	return cel.Lib(&errorLib{})
}

type errorLib struct{}

func (*errorLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("error",
			cel.Overload("error_string", []*cel.Type{cel.StringType}, cel.DynType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					msg, ok := val.(types.String)
					if !ok {
						return types.NewErr("expected string for error message")
					}
					return types.NewErr("%s", msg)
				}),
			),
		),
		cel.Function("isError",
			cel.Overload("iserror_dyn", []*cel.Type{cel.DynType}, cel.BoolType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return types.Bool(types.IsError(val))
				}),
			),
		),
	}
}

func (*errorLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// FITTypeAdapter extends the default adapter so decoded values compare
// naturally: unsigned integers that fit in int64 become CEL ints.
type FITTypeAdapter struct {
	types.Adapter
}

// NewFITTypeAdapter creates the adapter used by NewEnvironment.
func NewFITTypeAdapter() *FITTypeAdapter {
	return &FITTypeAdapter{
		Adapter: types.DefaultTypeAdapter,
	}
}

// NativeToValue converts Go native values to CEL values.
func (a *FITTypeAdapter) NativeToValue(value any) ref.Val {
	switch v := value.(type) {
	case uint8:
		return types.Int(v)
	case uint16:
		return types.Int(v)
	case uint32:
		return types.Int(v)
	case uint64:
		if v <= math.MaxInt64 {
			return types.Int(v)
		}
		return types.Uint(v)
	case int32:
		return types.Int(v)
	case float32:
		return types.Double(v)
	case []any:
		return types.NewDynamicList(a, v)
	case map[string]any:
		return types.NewStringInterfaceMap(a, v)
	default:
		return a.Adapter.NativeToValue(value)
	}
}

// RefValueToValue converts a CEL ref.Val back to a Go value.
func RefValueToValue(val ref.Val) (any, error) {
	if val == nil {
		return nil, nil
	}
	if types.IsError(val) {
		return nil, fmt.Errorf("CEL error: %v", val)
	}
	if types.IsUnknown(val) {
		return nil, fmt.Errorf("unknown CEL value")
	}
	return adaptCELResult(val), nil
}
