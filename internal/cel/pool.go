package cel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// ExpressionPool caches compiled CEL programs by source text.
type ExpressionPool struct {
	mu          sync.RWMutex
	expressions map[string]cel.Program
	env         *cel.Env
}

// NewExpressionPool creates a pool over NewEnvironment(enums).
func NewExpressionPool(enums EnumLookup) (*ExpressionPool, error) {
	env, err := NewEnvironment(enums)
	if err != nil {
		return nil, fmt.Errorf("failed to create environment: %w", err)
	}
	return &ExpressionPool{
		env:         env,
		expressions: make(map[string]cel.Program),
	}, nil
}

// NewExpressionPoolWithEnv creates a pool with a custom CEL environment.
func NewExpressionPoolWithEnv(env *cel.Env) (*ExpressionPool, error) {
	if env == nil {
		return nil, fmt.Errorf("CEL environment cannot be nil")
	}
	return &ExpressionPool{
		env:         env,
		expressions: make(map[string]cel.Program),
	}, nil
}

// GetExpression retrieves or compiles an expression.
func (e *ExpressionPool) GetExpression(exprStr string) (cel.Program, error) {
	e.mu.RLock()
	if program, ok := e.expressions[exprStr]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	ast, issues := e.env.Compile(exprStr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile expression '%s': %w", exprStr, issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	e.mu.Lock()
	e.expressions[exprStr] = program
	e.mu.Unlock()

	return program, nil
}

// CompileFilter checks that exprStr compiles to a boolean and caches it.
func (e *ExpressionPool) CompileFilter(exprStr string) error {
	ast, issues := e.env.Compile(exprStr)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", exprStr, issues.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return fmt.Errorf("filter '%s' must evaluate to bool, got %s", exprStr, out)
	}
	_, err := e.GetExpression(exprStr)
	return err
}

// EvaluateExpression evaluates a compiled expression with parameters.
func (e *ExpressionPool) EvaluateExpression(program cel.Program, params map[string]any) (any, error) {
	if params == nil {
		params = make(map[string]any)
	}

	activation, err := cel.NewActivation(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create activation: %w", err)
	}

	val, _, err := program.Eval(activation)
	if err != nil {
		return nil, fmt.Errorf("expression evaluation error: %w", err)
	}
	return adaptCELResult(val), nil
}

// Matches evaluates a boolean filter against one message.
func (e *ExpressionPool) Matches(exprStr string, mesgNum uint16, name string, fields map[string]any) (bool, error) {
	program, err := e.GetExpression(exprStr)
	if err != nil {
		return false, err
	}
	out, err := e.EvaluateExpression(program, map[string]any{
		VarMesg:    fields,
		VarMesgNum: int64(mesgNum),
		VarName:    name,
	})
	if err != nil {
		return false, err
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("filter '%s' returned %T, want bool", exprStr, out)
	}
	return ok, nil
}

// adaptCELResult converts CEL result values to Go native types.
func adaptCELResult(val any) any {
	switch v := val.(type) {
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.Bool:
		return bool(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Timestamp:
		return v.Time
	case types.Null:
		return nil
	case ref.Val:
		if lister, ok := v.(traits.Lister); ok {
			size := lister.Size().(types.Int)
			result := make([]any, size)
			for i := types.Int(0); i < size; i++ {
				result[i] = adaptCELResult(lister.Get(i))
			}
			return result
		}

		if mapper, ok := v.(traits.Mapper); ok {
			result := make(map[string]any)
			it := mapper.Iterator()
			for it.HasNext() == types.True {
				key := it.Next()
				keyStr, ok := key.Value().(string)
				if !ok {
					keyStr = fmt.Sprintf("%v", key.Value())
				}
				result[keyStr] = adaptCELResult(mapper.Get(key))
			}
			return result
		}

		return v.Value()
	default:
		return v
	}
}
