package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_FieldAccess(t *testing.T) {
	input := map[string]interface{}{"files": []interface{}{
		map[string]interface{}{"path": "a.ts", "loc": 10.0},
	}}
	v, err := Evaluate(".files[0].path", input, nil)
	require.NoError(t, err)
	assert.Equal(t, "a.ts", v)
}

func TestEvaluate_SelectFiltersArray(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{"name": "a", "dead": true},
		map[string]interface{}{"name": "b", "dead": false},
	}
	v, err := Evaluate(`select(.dead == true)`, input, nil)
	require.NoError(t, err)
	items, ok := v.([]interface{})
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].(map[string]interface{})["name"])
}

func TestEvaluate_MapThenLength(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{"name": "a"},
		map[string]interface{}{"name": "b"},
	}
	v, err := Evaluate(`map(.name) | length`, input, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(2), v)
}

func TestEvaluate_SortByAscending(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{"n": 3.0},
		map[string]interface{}{"n": 1.0},
		map[string]interface{}{"n": 2.0},
	}
	v, err := Evaluate(`sort_by(.n)`, input, nil)
	require.NoError(t, err)
	items := v.([]interface{})
	require.Len(t, items, 3)
	assert.Equal(t, 1.0, items[0].(map[string]interface{})["n"])
	assert.Equal(t, 3.0, items[2].(map[string]interface{})["n"])
}

func TestEvaluate_GroupBy(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{"kind": "function", "name": "a"},
		map[string]interface{}{"kind": "class", "name": "b"},
		map[string]interface{}{"kind": "function", "name": "c"},
	}
	v, err := Evaluate(`group_by(.kind)`, input, nil)
	require.NoError(t, err)
	groups := v.([]interface{})
	assert.Len(t, groups, 2)
}

func TestEvaluate_ContainsAndEndswith(t *testing.T) {
	v, err := Evaluate(`contains("foo")`, "barfoobaz", nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = Evaluate(`endswith(".ts")`, "index.ts", nil)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestEvaluate_CSVFormat(t *testing.T) {
	input := []interface{}{
		[]interface{}{"a", "b"},
		[]interface{}{"c", "d"},
	}
	v, err := Evaluate(`@csv`, input, nil)
	require.NoError(t, err)
	assert.Equal(t, "a,b\nc,d", v)
}

func TestEvaluate_PresetExpandsToCanonicalFilter(t *testing.T) {
	input := map[string]interface{}{"dead_exports": []interface{}{"x"}}
	v, err := Evaluate("@dead", input, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"x"}, v)
}

func TestExitStatus_NullAndFalseAreFailure(t *testing.T) {
	assert.Equal(t, 1, ExitStatus(nil))
	assert.Equal(t, 1, ExitStatus(false))
	assert.Equal(t, 0, ExitStatus(true))
	assert.Equal(t, 0, ExitStatus("anything"))
}
