package query

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// Evaluate runs filterExpr (a "|"-piped sequence of stages) over input
// and returns the resulting value. Presets (an "@name" prefix) are
// expanded first (spec.md 4.11).
func Evaluate(filterExpr string, input interface{}, vars map[string]interface{}) (interface{}, error) {
	filterExpr = strings.TrimSpace(filterExpr)
	if strings.HasPrefix(filterExpr, "@") && !strings.HasPrefix(filterExpr, "@csv") && !strings.HasPrefix(filterExpr, "@tsv") {
		preset, ok := Preset(filterExpr[1:])
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", filterExpr)
		}
		filterExpr = preset
	}

	stages := splitPipe(filterExpr)
	v := input
	env := vars
	if env == nil {
		env = map[string]interface{}{}
	}

	for _, stage := range stages {
		stage = strings.TrimSpace(stage)
		if stage == "" {
			continue
		}

		if name, bound := parseBinding(stage); bound {
			env[name] = v
			continue
		}

		next, err := applyStage(stage, v, env)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", stage, err)
		}
		v = next
	}
	return v, nil
}

// parseBinding recognizes a trailing "as $x" binding stage, e.g.
// ".files as $f" — bind the CURRENT value under $x rather than transform
// it, leaving the pipeline value unchanged for following stages to read
// $f later.
func parseBinding(stage string) (string, bool) {
	const marker = " as $"
	idx := strings.LastIndex(stage, marker)
	if idx < 0 {
		return "", false
	}
	name := strings.TrimSpace(stage[idx+len(marker):])
	return name, name != ""
}

func splitPipe(s string) []string {
	var parts []string
	depth := 0
	inStr := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inStr = !inStr
		case '(', '[':
			if !inStr {
				depth++
			}
		case ')', ']':
			if !inStr {
				depth--
			}
		case '|':
			if !inStr && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func applyStage(stage string, v interface{}, env map[string]interface{}) (interface{}, error) {
	switch {
	case stage == "." || stage == "":
		return v, nil
	case stage == "length":
		return stageLength(v), nil
	case stage == "add":
		return stageAdd(v)
	case stage == "flatten":
		return stageFlatten(v), nil
	case stage == "@csv":
		return stageFormat(v, ",")
	case stage == "@tsv":
		return stageFormat(v, "\t")
	case strings.HasPrefix(stage, "select(") && strings.HasSuffix(stage, ")"):
		return stageSelect(stage, v, env)
	case strings.HasPrefix(stage, "map(") && strings.HasSuffix(stage, ")"):
		return stageMap(stage, v, env)
	case strings.HasPrefix(stage, "sort_by(") && strings.HasSuffix(stage, ")"):
		return stageSortBy(stage, v, env)
	case strings.HasPrefix(stage, "group_by(") && strings.HasSuffix(stage, ")"):
		return stageGroupBy(stage, v, env)
	case strings.HasPrefix(stage, "contains(") && strings.HasSuffix(stage, ")"):
		return stageContains(stage, v)
	case strings.HasPrefix(stage, "endswith(") && strings.HasSuffix(stage, ")"):
		return stageEndswith(stage, v)
	case strings.HasPrefix(stage, "."):
		return resolvePath(v, stage)
	default:
		return nil, fmt.Errorf("unrecognized filter stage")
	}
}

func inner(stage, name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(stage, name+"("), ")")
}

func stageLength(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		return float64(len(t))
	case map[string]interface{}:
		return float64(len(t))
	case string:
		return float64(len(t))
	default:
		return float64(0)
	}
}

func stageAdd(v interface{}) (interface{}, error) {
	items, ok := asSlice(v)
	if !ok {
		return nil, fmt.Errorf("add requires an array")
	}
	var sum float64
	var strs []string
	numeric := true
	for _, it := range items {
		if f, ok := asFloat(it); ok {
			sum += f
		} else {
			numeric = false
		}
		if s, ok := asString(it); ok {
			strs = append(strs, s)
		}
	}
	if numeric {
		return sum, nil
	}
	return strings.Join(strs, ""), nil
}

func stageFlatten(v interface{}) interface{} {
	items, ok := asSlice(v)
	if !ok {
		return v
	}
	var out []interface{}
	for _, it := range items {
		if sub, ok := asSlice(it); ok {
			out = append(out, sub...)
		} else {
			out = append(out, it)
		}
	}
	return out
}

func stageSelect(stage string, v interface{}, env map[string]interface{}) (interface{}, error) {
	cond := inner(stage, "select")
	ex := newExpr(env)

	if items, ok := asSlice(v); ok {
		var out []interface{}
		for _, it := range items {
			res, err := ex.eval(cond, it)
			if err != nil {
				return nil, err
			}
			if truthy(res) {
				out = append(out, it)
			}
		}
		return out, nil
	}

	res, err := ex.eval(cond, v)
	if err != nil {
		return nil, err
	}
	if truthy(res) {
		return v, nil
	}
	return nil, nil
}

func stageMap(stage string, v interface{}, env map[string]interface{}) (interface{}, error) {
	expr := inner(stage, "map")
	ex := newExpr(env)
	items, ok := asSlice(v)
	if !ok {
		return nil, fmt.Errorf("map requires an array")
	}
	out := make([]interface{}, 0, len(items))
	for _, it := range items {
		res, err := ex.eval(expr, it)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func stageSortBy(stage string, v interface{}, env map[string]interface{}) (interface{}, error) {
	keyExpr := inner(stage, "sort_by")
	ex := newExpr(env)
	items, ok := asSlice(v)
	if !ok {
		return nil, fmt.Errorf("sort_by requires an array")
	}
	out := append([]interface{}{}, items...)
	keys := make([]interface{}, len(out))
	for i, it := range out {
		k, err := ex.eval(keyExpr, it)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	sortByKeys(out, keys)
	return out, nil
}

func stageGroupBy(stage string, v interface{}, env map[string]interface{}) (interface{}, error) {
	keyExpr := inner(stage, "group_by")
	ex := newExpr(env)
	items, ok := asSlice(v)
	if !ok {
		return nil, fmt.Errorf("group_by requires an array")
	}
	out := append([]interface{}{}, items...)
	keys := make([]interface{}, len(out))
	for i, it := range out {
		k, err := ex.eval(keyExpr, it)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	sortByKeys(out, keys)

	var groups []interface{}
	var cur []interface{}
	var curKey interface{}
	have := false
	for i, it := range out {
		if !have || !equalValues(keys[i], curKey) {
			if have {
				groups = append(groups, cur)
			}
			cur = nil
			curKey = keys[i]
			have = true
		}
		cur = append(cur, it)
	}
	if have {
		groups = append(groups, cur)
	}
	return groups, nil
}

func stageContains(stage string, v interface{}) (interface{}, error) {
	arg := strings.Trim(inner(stage, "contains"), "\"")
	s, ok := asString(v)
	if !ok {
		return false, nil
	}
	return strings.Contains(s, arg), nil
}

func stageEndswith(stage string, v interface{}) (interface{}, error) {
	arg := strings.Trim(inner(stage, "endswith"), "\"")
	s, ok := asString(v)
	if !ok {
		return false, nil
	}
	return strings.HasSuffix(s, arg), nil
}

func stageFormat(v interface{}, sep string) (interface{}, error) {
	items, ok := asSlice(v)
	if !ok {
		return nil, fmt.Errorf("@csv/@tsv requires an array of rows")
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Comma = rune(sep[0])
	for _, row := range items {
		cells, ok := asSlice(row)
		if !ok {
			cells = []interface{}{row}
		}
		record := make([]string, len(cells))
		for i, c := range cells {
			record[i] = fmt.Sprintf("%v", c)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n"), nil
}
