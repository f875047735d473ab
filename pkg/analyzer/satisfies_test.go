package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSatisfier_Satisfies(t *testing.T) {
	tests := []struct {
		version  string
		rng      string
		expected bool
	}{
		{"4.0.0", "^4.0.0", true},
		{"4.1.0", "^4.0.0", true},
		{"5.0.0", "^4.0.0", false},
		{"1.2.5", "~1.2.3", true},
		{"1.3.0", "~1.2.3", false},
		{"2.1.2", "2.1.2", true},
		{"2.1.3", "2.1.2", false},
		{"1.2.3", ">=1.0.0 <2.0.0", true},
		{"2.0.0", ">=1.0.0 <2.0.0", false},
		{"1.5.0", "1.x", true},
		{"1.3.0", "1.2.3 - 1.4.0", true},
		{"2.0.0", "^1.0.0 || ^2.0.0", true},
		{"1.0.0", "*", true},
		{"1.0.0", "", true},
		{"1.0.0", "latest", false},
		{"1.0.0", "next", false},
		{"1.0.0", "npm:other@latest", false},
		{"1.2.0", "npm:other@^1.0.0", true},
		{"1.2.0", "npm:@s/other@^2.0.0", false},
		{"1.1.0-beta.1", "^1.0.0", false},
		{"1.1.0-beta.1", "^1.0.0-beta.1", false},
		{"1.0.0-beta.2", "^1.0.0-beta.1", true},
		{"1.0.0-beta.1", "1.0.0-beta.1", true},
		{"2.0.0-rc.1", "^1.0.0 || 2.0.0-rc.1", true},
		{"1.0.0-rc.1", "^1.0.0 || 2.0.0-rc.1", false},
		{"1.0.0-beta.1", "*", false},
		{"1.0.0", "github:owner/repo", false},
		{"1.0.0", "workspace:*", false},
		{"github:owner/repo#abc", "^1.0.0", false},
	}

	s := NewSatisfier()
	for _, tt := range tests {
		t.Run(tt.version+" "+tt.rng, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Satisfies(tt.version, tt.rng))
			// second call goes through the cache
			assert.Equal(t, tt.expected, s.Satisfies(tt.version, tt.rng))
		})
	}
}

func TestSatisfier_SatisfiesAll(t *testing.T) {
	s := NewSatisfier()

	assert.True(t, s.SatisfiesAll("4.1.0", []string{"^4.0.0", "^4.1.0", ">=4"}))
	assert.False(t, s.SatisfiesAll("4.1.0", []string{"^4.0.0", "~4.0.0"}))
	assert.True(t, s.SatisfiesAll("4.1.0", nil), "no requirement means nothing can break")
}

func TestSatisfier_LatestBlocksPromotion(t *testing.T) {
	s := NewSatisfier()

	assert.False(t, s.SatisfiesAll("4.1.0", []string{"^4.0.0", "latest"}), "a dist-tag is not a range")
}
