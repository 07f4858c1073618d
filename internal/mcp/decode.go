package mcp

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode converts tool arguments into a request struct. Missing arguments
// decode to the zero value. Type mismatches name the offending argument.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var out T
	args := req.GetArguments()
	if len(args) == 0 {
		return out, nil
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return out, fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field != "" {
			return out, fmt.Errorf("argument %q must be %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
		}
		return out, fmt.Errorf("invalid arguments: %w", err)
	}
	return out, nil
}
