package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
			logger, err := NewLogger(level, format, "carereviews-test")
			require.NoError(t, err, "level=%s format=%s", level, format)
			require.NotNil(t, logger)
		}
	}
}
