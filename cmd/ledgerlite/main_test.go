package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlite/ledgerlite/internal/cli"
)

func TestRootCommand(t *testing.T) {
	root := cli.NewRootCmd(version)
	require.NotNil(t, root)
	assert.Equal(t, "ledgerlite", root.Use)
	assert.NotEmpty(t, root.Version)

	// Every top-level command the docs mention must exist.
	for _, name := range []string{"backup", "get", "export", "status", "tui", "config"} {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		assert.True(t, found, "missing subcommand %s", name)
	}
}
