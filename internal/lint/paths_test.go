package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRelativePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a/b.json", true},
		{"variables.json", true},
		{"a/b/c.html", true},
		{"", false},
		{"   ", false},
		{"/abs/path.json", false},
		{"../x", false},
		{"a/../b", false},
		{"a/b/..", false},
		// The literal ".." passes the documented checks; resolution
		// through the workspace is what keeps it contained. Asserted
		// here so a change in behavior is a conscious one.
		{"..", true},
		{"..json", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidRelativePath(tt.path))
		})
	}
}

func TestIsValidVariableName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"varname1", true},
		{"_private", true},
		{"StartDate", true},
		{"has_underscores_2", true},
		{"", false},
		{"1leading", false},
		{"has-dash", false},
		{"has space", false},
		// The identifier pattern requires length >= 2, so a single
		// character is rejected. Possibly unintended upstream, but the
		// behavior is preserved deliberately.
		{"x", false},
		{"_", false},
		{"xy", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidVariableName(tt.name))
		})
	}
}
