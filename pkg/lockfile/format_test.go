package lockfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected string
	}{
		{
			name:     "registry record",
			json:     `["a@1.0.0","",{"dependencies":{"b":"^1.0.0","@s/c":"~2.0.0"}},"sha512-a=="]`,
			expected: `["a@1.0.0", "", { "dependencies": { "b": "^1.0.0", "@s/c": "~2.0.0" } }, "sha512-a=="]`,
		},
		{
			name:     "empty object and array",
			json:     `["a@1.0.0", "", {"os": [], "bin": {}}, "x"]`,
			expected: `["a@1.0.0", "", { "os": [], "bin": {} }, "x"]`,
		},
		{
			name:     "literals",
			json:     `[true, false, null, 3]`,
			expected: `[true, false, null, 3]`,
		},
		{
			name:     "escaping",
			json:     `["quote\" slash\\ tab\t <html> & café \u0001"]`,
			expected: `["quote\" slash\\ tab\t <html> & café \u0001"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(gjson.Parse(tt.json)))
		})
	}
}

func TestFormatValue_RoundTripsFixtureLines(t *testing.T) {
	lf, _ := loadFixture(t, "tree.lock")

	ui, _ := lf.Record("@scope/ui")
	assert.Equal(t,
		`["@scope/ui@2.1.0", "", { "dependencies": { "debug": "^4.3.4", "ms": "^2.1.3" } }, "sha512-ui"]`,
		FormatValue(ui.Value()))

	left, _ := lf.Record("left")
	assert.Equal(t,
		`["left@github:owner/left#abc123", { "dependencies": { "ms": "^2.0.0" } }, "owner-left-abc123"]`,
		FormatValue(left.Value()))
}
