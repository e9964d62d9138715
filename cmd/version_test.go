package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCmd(t *testing.T) {
	versionCmd := newVersionCmd()

	assert.Equal(t, "version", versionCmd.Use)
	assert.NotEmpty(t, versionCmd.Short)
	assert.NotNil(t, versionCmd.Run)
}

func TestVersionCommandOutput(t *testing.T) {
	original := rootCmd.Version
	defer SetVersion(original)
	SetVersion("1.0.0-test")

	versionCmd := newVersionCmd()
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.SetArgs([]string{})
	require.NoError(t, versionCmd.Execute())

	assert.Equal(t, "wbdeps version 1.0.0-test\n", buf.String())
}
