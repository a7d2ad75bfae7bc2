package wideevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_NestedMapsMergeRecursively(t *testing.T) {
	dst := Fields{
		"user": Fields{"id": "u1", "plan": "free"},
		"keep": true,
	}
	merge(dst, Fields{
		"user":  Fields{"plan": "premium", "region": "eu"},
		"extra": 1,
	})

	user, ok := asFields(dst["user"])
	require.True(t, ok)
	assert.Equal(t, "u1", user["id"])
	assert.Equal(t, "premium", user["plan"])
	assert.Equal(t, "eu", user["region"])
	assert.Equal(t, true, dst["keep"])
	assert.Equal(t, 1, dst["extra"])
}

func TestMerge_ScalarsAndSlicesOverwrite(t *testing.T) {
	dst := Fields{
		"count": 1,
		"tags":  []string{"a", "b"},
		"mixed": Fields{"inner": true},
	}
	merge(dst, Fields{
		"count": 2,
		"tags":  []string{"c"},
		"mixed": "now a string",
	})

	assert.Equal(t, 2, dst["count"])
	assert.Equal(t, []string{"c"}, dst["tags"])
	assert.Equal(t, "now a string", dst["mixed"], "mixed-type values replace, never concatenate")
}

func TestMerge_PlainMapAndFieldsInterchangeable(t *testing.T) {
	dst := Fields{"ctx": map[string]any{"a": 1}}
	merge(dst, Fields{"ctx": Fields{"b": 2}})

	ctx, ok := asFields(dst["ctx"])
	require.True(t, ok)
	assert.Equal(t, 1, ctx["a"])
	assert.Equal(t, 2, ctx["b"])
}

func TestMerge_Associativity(t *testing.T) {
	// Applying A then B: overlapping scalar keys resolve to B, overlapping
	// maps merge, and non-overlapping keys from both survive.
	a := Fields{"x": 1, "m": Fields{"a": "a"}}
	b := Fields{"x": 2, "m": Fields{"b": "b"}, "y": 3}

	dst := Fields{}
	merge(dst, a)
	merge(dst, b)

	assert.Equal(t, 2, dst["x"])
	assert.Equal(t, 3, dst["y"])
	m, ok := asFields(dst["m"])
	require.True(t, ok)
	assert.Equal(t, "a", m["a"])
	assert.Equal(t, "b", m["b"])
}

func TestMerge_NeverDeletes(t *testing.T) {
	dst := Fields{"a": 1, "b": 2}
	merge(dst, Fields{"a": 10})
	assert.Len(t, dst, 2)
	assert.Equal(t, 2, dst["b"])
}

func TestClone_DeepCopiesNestedMaps(t *testing.T) {
	orig := Fields{"m": Fields{"a": 1}}
	cp := orig.Clone()

	m, _ := asFields(cp["m"])
	m["a"] = 2

	origM, _ := asFields(orig["m"])
	assert.Equal(t, 1, origM["a"])
}

func TestFields_NumericAccessorsTolerateJSONTypes(t *testing.T) {
	f := Fields{"status": float64(404), "duration": 12}

	st, ok := f.Int("status")
	require.True(t, ok)
	assert.Equal(t, 404, st)

	d, ok := f.Float("duration")
	require.True(t, ok)
	assert.Equal(t, float64(12), d)

	_, ok = f.Int("missing")
	assert.False(t, ok)
}

func TestFields_EventLevelDefaultsToInfo(t *testing.T) {
	assert.Equal(t, LevelInfo, Fields{}.EventLevel())
	assert.Equal(t, LevelInfo, Fields{KeyLevel: "unknown"}.EventLevel())
	assert.Equal(t, LevelError, Fields{KeyLevel: "error"}.EventLevel())
	assert.Equal(t, LevelWarn, Fields{KeyLevel: "warn"}.EventLevel())
}
