package cel

import (
	"math"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// mathFunctions returns CEL function declarations for math over field values.
func mathFunctions() cel.EnvOption {
	return cel.Lib(&mathLib{})
}

type mathLib struct{}

// toFloat accepts the numeric CEL kinds a decoded field can carry.
func toFloat(val ref.Val) (float64, bool) {
	switch v := val.(type) {
	case types.Int:
		return float64(v), true
	case types.Uint:
		return float64(v), true
	case types.Double:
		return float64(v), true
	}
	return 0, false
}

func doubleOp(name string, fn func(float64) float64) cel.FunctionOpt {
	return cel.Overload(name+"_dyn", []*cel.Type{cel.DynType}, cel.DoubleType,
		cel.UnaryBinding(func(val ref.Val) ref.Val {
			x, ok := toFloat(val)
			if !ok {
				return types.NewErr("expected numeric argument to %s, got %T", name, val)
			}
			return types.Double(fn(x))
		}),
	)
}

func pickOp(name string, less func(a, b float64) bool) cel.FunctionOpt {
	return cel.Overload(name+"_dyn_dyn", []*cel.Type{cel.DynType, cel.DynType}, cel.DynType,
		cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
			x, ok1 := toFloat(lhs)
			y, ok2 := toFloat(rhs)
			if !ok1 || !ok2 {
				return types.NewErr("arguments to %s must be numeric", name)
			}
			if less(x, y) {
				return lhs
			}
			return rhs
		}),
	)
}

func (*mathLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("abs", doubleOp("abs", math.Abs)),
		cel.Function("ceil", doubleOp("ceil", math.Ceil)),
		cel.Function("floor", doubleOp("floor", math.Floor)),
		cel.Function("round", doubleOp("round", math.Round)),
		cel.Function("min", pickOp("min", func(a, b float64) bool { return a <= b })),
		cel.Function("max", pickOp("max", func(a, b float64) bool { return a >= b })),

		// mean of a numeric array field; null elements are skipped
		cel.Function("mean",
			cel.Overload("mean_list", []*cel.Type{cel.ListType(cel.DynType)}, cel.DoubleType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					lister, ok := val.(traits.Lister)
					if !ok {
						return types.NewErr("expected list argument to mean, got %T", val)
					}
					var sum float64
					var n int
					it := lister.Iterator()
					for it.HasNext() == types.True {
						x, ok := toFloat(it.Next())
						if !ok {
							continue
						}
						sum += x
						n++
					}
					if n == 0 {
						return types.NewErr("mean of a list without numbers")
					}
					return types.Double(sum / float64(n))
				}),
			),
		),
	}
}

func (*mathLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
