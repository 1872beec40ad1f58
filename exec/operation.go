package exec

import (
	"context"
	"fmt"
)

// Operation names one of the facade's external operations.
type Operation string

// Operations.
const (
	OpLoadCSV          Operation = "load_csv"
	OpRunScript        Operation = "run_script"
	OpListAllVariables Operation = "list_all_variables"
)

// Operations returns every operation in a fixed order.
func Operations() []Operation {
	return []Operation{OpLoadCSV, OpRunScript, OpListAllVariables}
}

// Argument names accepted by Dispatch.
const (
	ArgCSVPath      = "csv_path"
	ArgDFName       = "df_name"
	ArgScript       = "script"
	ArgSaveToMemory = "save_to_memory"
)

// ParseOperation returns the operation called name.
func ParseOperation(name string) (Operation, error) {
	for _, op := range Operations() {
		if string(op) == name {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
}

// Dispatch runs op with arguments decoded from a JSON object.
func (e *Exec) Dispatch(ctx context.Context, op Operation, args map[string]any) (string, error) {
	switch op {
	case OpLoadCSV:
		path, err := stringArg(args, ArgCSVPath, true)
		if err != nil {
			return "", err
		}
		name, err := stringArg(args, ArgDFName, false)
		if err != nil {
			return "", err
		}
		return e.Load(ctx, path, name)
	case OpRunScript:
		script, err := stringArg(args, ArgScript, true)
		if err != nil {
			return "", err
		}
		promote, err := stringListArg(args, ArgSaveToMemory)
		if err != nil {
			return "", err
		}
		return e.Run(ctx, script, promote)
	case OpListAllVariables:
		return e.List(ctx), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}

func stringArg(args map[string]any, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgument, key, v)
	}
	return s, nil
}

// stringListArg accepts a JSON array of strings or a single string.
func stringListArg(args map[string]any, key string) ([]string, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s[%d] must be a string, got %T", ErrInvalidArgument, key, i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be an array of strings, got %T", ErrInvalidArgument, key, v)
	}
}
