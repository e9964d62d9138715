package workbook

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", "{}")
	b := writeFile(t, dir, "nested/b.yaml", "{}")
	c := writeFile(t, dir, "nested/deeper/c.workbook", "{}")
	writeFile(t, dir, "notes.txt", "ignored")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{name: "directory", args: []string{dir}, want: []string{a, b, c}},
		{name: "single file", args: []string{b}, want: []string{b}},
		{name: "glob", args: []string{filepath.Join(dir, "**", "*.yaml")}, want: []string{b}},
		{name: "deduplicated", args: []string{a, dir}, want: []string{a, b, c}},
		{name: "stdin", args: []string{"-"}, want: []string{"-"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Discover(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiscover_NoMatch(t *testing.T) {
	_, err := Discover([]string{filepath.Join(t.TempDir(), "*.json")})
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDiscover_InvalidPattern(t *testing.T) {
	_, err := Discover([]string{filepath.Join(t.TempDir(), "[")})
	assert.ErrorContains(t, err, "invalid pattern")
}
