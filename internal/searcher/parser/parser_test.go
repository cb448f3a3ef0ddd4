package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  []string
	}{
		{"single", []string{"mars"}, []string{"mars"}},
		{"normalised", []string{"Mars,", "DESIGN."}, []string{"mars", "design"}},
		{"duplicates collapse", []string{"mars", "MARS", "mars?"}, []string{"mars"}},
		{"empty dropped", []string{"...", "moon"}, []string{"moon"}},
		{"none", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.words).Terms)
		})
	}
}

func TestParseString(t *testing.T) {
	plan := ParseString("  mars   design ")
	assert.Equal(t, []string{"mars", "design"}, plan.Terms)
	assert.Equal(t, "  mars   design ", plan.RawQuery)
}
