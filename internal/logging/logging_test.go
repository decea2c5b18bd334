package logging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilePath(t *testing.T) {
	path := FilePath()
	assert.True(t, strings.HasSuffix(path, "roost.log"), "got %s", path)
	assert.Contains(t, path, "roost")
}

func TestGetLoggerTagsComponent(t *testing.T) {
	var buf strings.Builder
	logger := GetLogger("runner").Output(&buf)
	logger.Error().Msg("boom")

	out := buf.String()
	assert.Contains(t, out, `"component":"runner"`)
	assert.Contains(t, out, "boom")
}
