package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"unknown": zapcore.InfoLevel,
	}
	for level, want := range cases {
		for _, format := range []string{"json", "console"} {
			log, err := New(level, format, "vitals-console")
			require.NoError(t, err)
			require.True(t, log.Core().Enabled(want), "level %s format %s", level, format)
			if want > zapcore.DebugLevel {
				require.False(t, log.Core().Enabled(want-1), "level %s format %s", level, format)
			}
		}
	}
}

func TestBuildConfig_Encoding(t *testing.T) {
	require.Equal(t, "console", buildConfig("info", "console").Encoding)
	require.Equal(t, "json", buildConfig("info", "json").Encoding)
	require.Equal(t, "json", buildConfig("info", "").Encoding)

	// both formats keep stdout free
	for _, format := range []string{"console", "json"} {
		require.Equal(t, []string{"stderr"}, buildConfig("info", format).OutputPaths)
	}
}

func TestNewFile_WritesToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")

	log, err := NewFile("info", path)
	require.NoError(t, err)
	log.Info("dashboard refreshed")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "dashboard refreshed")
}
