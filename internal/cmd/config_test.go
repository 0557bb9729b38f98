package cmd

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateFromRunCommand(t *testing.T) {
	root := templateFromStruct(reflect.TypeOf(Run{}))

	// Positional args are CLI-only, never config keys.
	assert.NotContains(t, root, "device")

	assert.Equal(t, true, root["grab"])
	assert.Equal(t, "snapscroll wheel", root["output-name"])

	filter, ok := root["filter"].(map[string]any)
	require.True(t, ok, "embedded filter config becomes a section")
	assert.Equal(t, "1/2", filter["x-threshold"])
	assert.Equal(t, int64(8), filter["require-n-samples"])
	assert.Equal(t, "500ms", filter["idle-reset-timeout"])
	assert.Equal(t, "0s", filter["lock-duration"])

	remoteSec, ok := root["remote"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "", remoteSec["addr"])
}

func TestKebab(t *testing.T) {
	assert.Equal(t, "output-name", kebab("OutputName"))
	assert.Equal(t, "x-threshold", kebab("XThreshold"))
	assert.Equal(t, "require-n-samples", kebab("RequireNSamples"))
	assert.Equal(t, "grab", kebab("Grab"))
}
