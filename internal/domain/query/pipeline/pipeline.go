// Package pipeline sanitizes aggregation pipelines. Stages other than the
// blocked ones pass through to the store, so a stage body stays opaque; it
// is only scanned for code-execution operators, and match stages are
// re-run through the filter allowlist.
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pagegrid/storelens/internal/domain"
	"github.com/pagegrid/storelens/internal/domain/query/filter"
)

// Write-capable stages that persist pipeline output into a collection.
var blockedStages = map[string]bool{
	"$out":   true,
	"$merge": true,
}

// Operators that evaluate arbitrary code on the store.
var blockedOperators = map[string]bool{
	"$where":       true,
	"$function":    true,
	"$accumulator": true,
}

const (
	matchStage = "$match"
	limitStage = "$limit"
)

// Stage is one sanitized pipeline step.
type Stage struct {
	name string
	body any
}

// Name returns the stage name, including the leading marker.
func (s Stage) Name() string { return s.name }

// Body returns the stage expression.
func (s Stage) Body() any { return s.body }

// Sanitize validates raw pipeline stages: write-capable stages are
// rejected at any position, code-execution operators at any nesting depth,
// and match stages get the same operator allowlist as top-level filters.
func Sanitize(raw []map[string]any) ([]Stage, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	stages := make([]Stage, 0, len(raw))
	for i, rawStage := range raw {
		if len(rawStage) != 1 {
			return nil, domain.NewMalformedQuery(
				fmt.Sprintf("pipeline stage %d must have exactly one key", i))
		}
		var name string
		var body any
		for k, v := range rawStage {
			name, body = k, v
		}
		if !strings.HasPrefix(name, "$") {
			return nil, domain.NewMalformedQuery(
				fmt.Sprintf("pipeline stage %d name %q is not a stage operator", i, name))
		}
		if blockedStages[name] {
			return nil, domain.NewStageNotAllowed(name)
		}
		if err := scanOperators(body); err != nil {
			return nil, err
		}
		if name == matchStage {
			m, ok := body.(map[string]any)
			if !ok {
				return nil, domain.NewMalformedQuery("$match body must be a filter object")
			}
			expr, err := filter.Parse(m)
			if err != nil {
				return nil, err
			}
			body = filter.Encode(expr)
		}
		stages = append(stages, Stage{name: name, body: body})
	}
	return stages, nil
}

// EnsureLimit appends a limit stage unless the pipeline already has one.
func EnsureLimit(stages []Stage, limit int64) []Stage {
	for _, s := range stages {
		if s.name == limitStage {
			return stages
		}
	}
	return append(stages, Stage{name: limitStage, body: limit})
}

// Encode renders sanitized stages back into plain stage documents.
func Encode(stages []Stage) []map[string]any {
	if stages == nil {
		return nil
	}
	out := make([]map[string]any, 0, len(stages))
	for _, s := range stages {
		out = append(out, map[string]any{s.name: s.body})
	}
	return out
}

// scanOperators walks a stage body and rejects code-execution operators at
// any nesting depth.
func scanOperators(value any) error {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range sortedKeys(v) {
			if blockedOperators[key] {
				return domain.NewOperatorNotAllowed(key)
			}
			if err := scanOperators(v[key]); err != nil {
				return err
			}
		}
	case []any:
		for _, item := range v {
			if err := scanOperators(item); err != nil {
				return err
			}
		}
	case []map[string]any:
		for _, item := range v {
			if err := scanOperators(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
