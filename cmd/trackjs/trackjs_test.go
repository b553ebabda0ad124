package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetadata(t *testing.T) {
	metadata, err := parseMetadata([]string{"host=web-1", "region=us-east-1", "note=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"host":   "web-1",
		"region": "us-east-1",
		"note":   "a=b",
	}, metadata)

	metadata, err = parseMetadata(nil)
	require.NoError(t, err)
	assert.Empty(t, metadata)

	for _, malformed := range []string{"host", "=value"} {
		_, err = parseMetadata([]string{malformed})
		assert.Error(t, err, malformed)
	}
}

func TestBuildApp(t *testing.T) {
	app := buildApp()
	assert.Equal(t, "trackjs", app.Name)
	require.Len(t, app.Commands, 1)
	assert.Equal(t, "send", app.Commands[0].Name)
}
