package wideevent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplingConfig_Validate(t *testing.T) {
	cfg := SamplingConfig{
		Rates: map[Level]int{LevelInfo: 10, LevelError: 100},
		KeepRules: []KeepRule{
			{Status: 500},
			{MinDurationMS: 500},
			{Path: "/api/test/critical/**"},
		},
	}
	require.NoError(t, cfg.Validate())

	bad := SamplingConfig{Rates: map[Level]int{LevelInfo: 150}}
	assert.Error(t, bad.Validate())

	empty := SamplingConfig{KeepRules: []KeepRule{{}}}
	assert.Error(t, empty.Validate(), "a rule matching nothing fails fast at startup")

	badGlob := SamplingConfig{KeepRules: []KeepRule{{Path: "/api/["}}}
	assert.Error(t, badGlob.Validate())
}

func TestEngine_HeadRateZeroDrops(t *testing.T) {
	e := newEngine(SamplingConfig{Rates: map[Level]int{LevelInfo: 0}})
	d := e.decide(Fields{KeyLevel: "info"})
	assert.False(t, d.Keep)
}

func TestEngine_MissingRateAlwaysKeeps(t *testing.T) {
	e := newEngine(SamplingConfig{Rates: map[Level]int{LevelInfo: 0}})
	d := e.decide(Fields{KeyLevel: "error"})
	require.True(t, d.Keep)
	assert.Equal(t, "head", d.Reason)
}

func TestEngine_TailOverridesHead_Status(t *testing.T) {
	cfg := SamplingConfig{
		Rates:     map[Level]int{LevelInfo: 0},
		KeepRules: []KeepRule{{Status: 400}},
	}
	require.NoError(t, cfg.Validate())
	e := newEngine(cfg)

	d := e.decide(Fields{KeyLevel: "info", KeyStatus: 400})
	require.True(t, d.Keep)
	assert.Equal(t, "tail:status=400", d.Reason)

	d = e.decide(Fields{KeyLevel: "info", KeyStatus: 200})
	assert.False(t, d.Keep)
}

func TestEngine_TailDurationThreshold(t *testing.T) {
	cfg := SamplingConfig{
		Rates:     map[Level]int{LevelInfo: 0},
		KeepRules: []KeepRule{{MinDurationMS: 500}},
	}
	require.NoError(t, cfg.Validate())
	e := newEngine(cfg)

	assert.True(t, e.decide(Fields{KeyLevel: "info", KeyDuration: 500.0}).Keep)
	assert.True(t, e.decide(Fields{KeyLevel: "info", KeyDuration: 1200.0}).Keep)
	assert.False(t, e.decide(Fields{KeyLevel: "info", KeyDuration: 499.9}).Keep)
}

func TestEngine_TailPathGlob(t *testing.T) {
	cfg := SamplingConfig{
		Rates:     map[Level]int{LevelInfo: 0},
		KeepRules: []KeepRule{{Path: "/api/test/critical/**"}},
	}
	require.NoError(t, cfg.Validate())
	e := newEngine(cfg)

	assert.True(t, e.decide(Fields{KeyLevel: "info", KeyPath: "/api/test/critical/foo/bar"}).Keep,
		"multi-segment wildcard spans path segments")
	assert.False(t, e.decide(Fields{KeyLevel: "info", KeyPath: "/api/test/other"}).Keep)
}

func TestEngine_FirstMatchingRuleNamesTheReason(t *testing.T) {
	cfg := SamplingConfig{
		Rates: map[Level]int{LevelInfo: 0},
		KeepRules: []KeepRule{
			{Name: "slow", MinDurationMS: 100},
			{Name: "client-error", Status: 400},
		},
	}
	require.NoError(t, cfg.Validate())
	e := newEngine(cfg)

	d := e.decide(Fields{KeyLevel: "info", KeyStatus: 400, KeyDuration: 900.0})
	require.True(t, d.Keep)
	assert.Equal(t, "tail:slow", d.Reason)
}

func TestKeepRule_UncompiledGlobDefaultsToNoMatch(t *testing.T) {
	// A rule that slipped past validation must not match (and must not panic)
	// at request time.
	r := KeepRule{Path: "/api/**"}
	assert.False(t, r.matches(Fields{KeyPath: "/api/x"}))
}

func TestKeepRule_MissingFieldsDoNotMatch(t *testing.T) {
	r := KeepRule{Status: 400}
	require.NoError(t, r.Compile())
	assert.False(t, r.matches(Fields{}))

	r = KeepRule{MinDurationMS: 10}
	require.NoError(t, r.Compile())
	assert.False(t, r.matches(Fields{}))
}
