package cel

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// bitwiseFunctions returns CEL function declarations for testing packed
// flag fields such as leftRightBalance.
func bitwiseFunctions() cel.EnvOption {
	return cel.Lib(&bitwiseLib{})
}

func toBits(val ref.Val) (uint64, bool) {
	switch v := val.(type) {
	case types.Int:
		return uint64(v), true
	case types.Uint:
		return uint64(v), true
	}
	return 0, false
}

// fromBits prefers Int so results mix with ordinary arithmetic.
func fromBits(v uint64) ref.Val {
	if v <= uint64(^uint64(0)>>1) {
		return types.Int(v)
	}
	return types.Uint(v)
}

func bitwiseOp(name string, op func(a, b uint64) uint64) cel.EnvOption {
	return cel.Function(name,
		cel.Overload(name+"_dyn_dyn", []*cel.Type{cel.DynType, cel.DynType}, cel.DynType,
			cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				l, ok1 := toBits(lhs)
				r, ok2 := toBits(rhs)
				if !ok1 || !ok2 {
					return types.NewErr("%s arguments must be integers, got %T and %T", name, lhs.Value(), rhs.Value())
				}
				return fromBits(op(l, r))
			}),
		),
	)
}

type bitwiseLib struct{}

func (*bitwiseLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		bitwiseOp("bitAnd", func(a, b uint64) uint64 { return a & b }),
		bitwiseOp("bitOr", func(a, b uint64) uint64 { return a | b }),
		bitwiseOp("bitShiftRight", func(a, b uint64) uint64 {
			if b >= 64 {
				return 0
			}
			return a >> b
		}),
		cel.Function("bitTest",
			cel.Overload("bittest_dyn_int", []*cel.Type{cel.DynType, cel.IntType}, cel.BoolType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					v, ok := toBits(lhs)
					bit, ok2 := rhs.(types.Int)
					if !ok || !ok2 {
						return types.NewErr("bitTest arguments must be integers")
					}
					if bit < 0 || bit > 63 {
						return types.NewErr("bit index out of range: %d", bit)
					}
					return types.Bool(v&(1<<uint(bit)) != 0)
				}),
			),
		),
	}
}

func (*bitwiseLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
