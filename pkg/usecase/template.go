package usecase

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// Substitute recursively rewrites {name} placeholders in string leaves using
// the given variables, preserving structure: maps and slices are transformed
// element-wise, non-string leaves pass through unchanged. Placeholders with
// no corresponding variable are left verbatim; substitution never fails.
func Substitute(value any, vars map[string]string) any {
	switch v := value.(type) {
	case string:
		return substituteString(v, vars)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = Substitute(item, vars)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Substitute(item, vars)
		}
		return out
	default:
		return value
	}
}

func substituteString(s string, vars map[string]string) string {
	for name, value := range vars {
		s = strings.ReplaceAll(s, "{"+name+"}", value)
	}
	return s
}

// BuildDispatchRequest applies template substitution to a workflow spec and
// produces the final dispatch request. Input values are stringified since
// workflow dispatch inputs must be strings; an empty ref defaults to "main".
func BuildDispatchRequest(spec *model.WorkflowSpec, vars map[string]string) *model.DispatchRequest {
	req := &model.DispatchRequest{
		Owner:        substituteString(spec.Owner, vars),
		Repository:   substituteString(spec.Repository, vars),
		WorkflowFile: substituteString(spec.WorkflowFile, vars),
		Ref:          substituteString(spec.Ref, vars),
	}

	if req.Ref == "" {
		req.Ref = "main"
	}

	if len(spec.Inputs) > 0 {
		req.Inputs = make(map[string]string, len(spec.Inputs))
		for key, value := range spec.Inputs {
			req.Inputs[key] = stringify(Substitute(value, vars))
		}
	}

	return req
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}
