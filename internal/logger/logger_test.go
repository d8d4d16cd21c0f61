package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func reset() {
	mu.Lock()
	defer mu.Unlock()
	global = nil
}

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"json info", "info", "json", zapcore.InfoLevel, false},
		{"console debug", "debug", "console", zapcore.DebugLevel, false},
		{"default format", "warn", "", zapcore.WarnLevel, false},
		{"invalid level", "loud", "json", 0, true},
		{"invalid format", "info", "xml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset()
			err := Init(tt.level, tt.format, "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, GetLevel())
		})
	}
}

func TestSetLevel(t *testing.T) {
	reset()
	require.NoError(t, Init("info", "json", ""))

	require.NoError(t, SetLevel("error"))
	assert.Equal(t, zapcore.ErrorLevel, GetLevel())
	assert.Error(t, SetLevel("bogus"))
	assert.Equal(t, zapcore.ErrorLevel, GetLevel())
}

func TestLBeforeInit(t *testing.T) {
	reset()
	assert.NotNil(t, L())
	assert.NoError(t, Sync())
	L().Info("dropped")
}

func TestFileOutput(t *testing.T) {
	reset()
	path := filepath.Join(t.TempDir(), "suiwen.log")
	require.NoError(t, Init("debug", "console", path))

	Named("reader").Info("opened file", zap.String("name", "a.txt"))
	_ = Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "opened file")
	assert.Contains(t, string(data), "reader")
}
