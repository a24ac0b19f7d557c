package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/odexlab/deodexer/pkg/util"
)

// TestMatchesExcludePattern_BareName verifies a bare pattern matches any
// single path segment at any depth.
func TestMatchesExcludePattern_BareName(t *testing.T) {
	assert.True(t, util.MatchesExcludePattern("arm64", "arm64"))
	assert.True(t, util.MatchesExcludePattern("arm64", "priv-app/arm64/app.odex"))
	assert.True(t, util.MatchesExcludePattern("*.bak", "sub/app.odex.bak"))
	assert.False(t, util.MatchesExcludePattern("arm64", "arm64extra/app.odex"))
	assert.False(t, util.MatchesExcludePattern("arm", "arm64/app.odex"))
}

// TestMatchesExcludePattern_PathPattern verifies patterns with separators
// match against the whole relative path.
func TestMatchesExcludePattern_PathPattern(t *testing.T) {
	assert.True(t, util.MatchesExcludePattern("priv/drop.odex", "priv/drop.odex"))
	assert.True(t, util.MatchesExcludePattern("priv/*.odex", "priv/any.odex"))
	assert.False(t, util.MatchesExcludePattern("priv/*.odex", "other/any.odex"))
	assert.False(t, util.MatchesExcludePattern("priv/*.odex", "priv/deep/any.odex"),
		"a single glob star does not cross path separators")
}

// TestMatchesExcludePattern_Degenerate verifies empty inputs never match.
func TestMatchesExcludePattern_Degenerate(t *testing.T) {
	assert.False(t, util.MatchesExcludePattern("", "a/b"))
	assert.False(t, util.MatchesExcludePattern("x", ""))
	assert.False(t, util.MatchesExcludePattern("x", "."))
}

// TestMatchesAnyExclude verifies the any-of combinator.
func TestMatchesAnyExclude(t *testing.T) {
	patterns := []string{"arm64", "*.bak"}
	assert.True(t, util.MatchesAnyExclude(patterns, "arm64/app.odex"))
	assert.True(t, util.MatchesAnyExclude(patterns, "x/y.bak"))
	assert.False(t, util.MatchesAnyExclude(patterns, "x/y.odex"))
	assert.False(t, util.MatchesAnyExclude(nil, "x/y.odex"))
}
