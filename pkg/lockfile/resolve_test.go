package lockfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAncestor(t *testing.T) {
	lf, _ := loadFixture(t, "tree.lock")

	tests := []struct {
		name     string
		segments []string
		dep      string
		expected string
	}{
		{"root lookup", nil, "ms", "ms"},
		{"nearest nested install wins", []string{"@scope/ui", "debug"}, "ms", "@scope/ui/debug/ms"},
		{"own nested install", []string{"@scope/ui"}, "debug", "@scope/ui/debug"},
		{"falls back to root", []string{"@scope/ui"}, "ms", "ms"},
		{"sibling nested copies are not visible", []string{"left"}, "ms", "ms"},
		{"scoped dependency name", []string{"debug"}, "@scope/ui", "@scope/ui"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lf.ResolveAncestor(tt.segments, tt.dep)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveAncestor_Unresolved(t *testing.T) {
	lf, _ := loadFixture(t, "tree.lock")

	_, err := lf.ResolveAncestor([]string{"@scope/ui", "debug"}, "missing")
	assert.ErrorIs(t, err, ErrUnresolvedDependency)
	assert.Contains(t, err.Error(), `"missing" required by "@scope/ui/debug"`)
}

func TestResolveAncestorFunc_SkipsRemovedInstalls(t *testing.T) {
	lf, _ := loadFixture(t, "tree.lock")
	removed := Changes{Hoisted: []string{"@scope/ui/debug"}}

	got, err := lf.ResolveAncestorFunc([]string{"@scope/ui"}, "debug", removed.Dropped)
	require.NoError(t, err)
	assert.Equal(t, "debug", got)

	_, err = lf.ResolveAncestorFunc(nil, "ms", func(string) bool { return true })
	assert.ErrorIs(t, err, ErrUnresolvedDependency)
}

func TestRequirements(t *testing.T) {
	lf, _ := loadFixture(t, "tree.lock")

	reqs, err := lf.Requirements()
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"@scope/ui":          {"^2.0.0"},
		"debug":              {"^4.3.0"},
		"left":               {"github:owner/left"},
		"ms":                 {"^2.1.0", "^2.1.3"},
		"@scope/ui/debug":    {"^4.3.4"},
		"@scope/ui/debug/ms": {"2.1.2"},
		"debug/ms":           {"2.1.2"},
	}, reqs)
}

func TestRequirements_Unresolved(t *testing.T) {
	lf, err := Parse([]byte(`{"packages": {"a": ["a@1.0.0", "", { "dependencies": { "b": "^1.0.0" } }, "sha"]}}`))
	require.NoError(t, err)

	_, err = lf.Requirements()
	assert.ErrorIs(t, err, ErrUnresolvedDependency)
}
