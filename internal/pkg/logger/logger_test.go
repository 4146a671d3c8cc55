package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "default config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "nil config",
			config:  nil,
			wantErr: false,
		},
		{
			name: "json console",
			config: &Config{
				Level:  "info",
				Format: FormatJSON,
				Output: OutputConsole,
			},
			wantErr: false,
		},
		{
			name: "file output",
			config: &Config{
				Level:  "debug",
				Format: FormatJSON,
				Output: OutputFile,
				File: FileConfig{
					Filename:   filepath.Join(dir, "chunk.log"),
					MaxSize:    10,
					MaxAge:     7,
					MaxBackups: 3,
				},
			},
			wantErr: false,
		},
		{
			name: "invalid level",
			config: &Config{
				Level:  "verbose",
				Format: FormatJSON,
				Output: OutputConsole,
			},
			wantErr: true,
		},
		{
			name: "invalid format",
			config: &Config{
				Level:  "info",
				Format: "xml",
				Output: OutputConsole,
			},
			wantErr: true,
		},
		{
			name: "file output without filename",
			config: &Config{
				Level:  "info",
				Format: FormatJSON,
				Output: OutputFile,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lgr, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, lgr)
			lgr.Info("hello", zap.String("k", "v"))
		})
	}
}

func TestNewWithOptions(t *testing.T) {
	lgr, err := NewWithOptions(WithLevel("debug"), WithFormat(FormatJSON))
	require.NoError(t, err)
	assert.Equal(t, "debug", lgr.Config().Level)
	assert.Equal(t, FormatJSON, lgr.Config().Format)
}

func TestWithFileEnablesBoth(t *testing.T) {
	cfg := DefaultConfig()
	WithFile(filepath.Join(t.TempDir(), "x.log"))(cfg)
	assert.Equal(t, OutputBoth, cfg.Output)
}

func TestLogger_WithAndNamed(t *testing.T) {
	lgr := Nop()
	child := lgr.With(zap.String("component", "chunker")).Named("engine")
	assert.NotNil(t, child)
	assert.Same(t, lgr.Config(), child.Config())
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRunID(ctx))
	assert.Empty(t, GetStrategy(ctx))

	ctx = WithRunID(ctx, "run-1")
	ctx = WithStrategy(ctx, "fixed")
	assert.Equal(t, "run-1", GetRunID(ctx))
	assert.Equal(t, "fixed", GetStrategy(ctx))

	lgr := Nop()
	ctx = ToContext(ctx, lgr)
	assert.NotNil(t, FromContext(ctx))
}
