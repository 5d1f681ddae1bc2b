package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mikey/phishguard/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitLoggerLevel(t *testing.T) {
	req := require.New(t)
	cfg := config.NewFromViper(config.NewEmptyViper())
	cfg.Set("logging.level", "warn")

	logger, err := InitLogger(cfg)
	req.NoError(err)
	req.False(logger.Core().Enabled(zapcore.InfoLevel))
	req.True(logger.Core().Enabled(zapcore.WarnLevel))
}

func TestInitLoggerFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "phishguard.log")
	cfg := config.NewFromViper(config.NewEmptyViper())
	cfg.Set("logging.file", path)

	logger, err := InitLogger(cfg)
	req.NoError(err)
	logger.Info("hello from the test")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	req.NoError(err)
	req.Contains(string(data), "hello from the test")
}

func TestServiceConfigWritesToStdout(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		t.Run(format, func(t *testing.T) {
			req := require.New(t)
			logConfig := serviceConfig(config.LoggingConfig{Level: "debug", Format: format})
			req.Equal([]string{"stdout"}, logConfig.OutputPaths)
			req.Equal([]string{"stderr"}, logConfig.ErrorOutputPaths)
			req.Equal(zapcore.DebugLevel, logConfig.Level.Level())
		})
	}
}

func TestParseLevel(t *testing.T) {
	req := require.New(t)
	req.Equal(zapcore.DebugLevel, parseLevel("debug"))
	req.Equal(zapcore.ErrorLevel, parseLevel("error"))
	req.Equal(zapcore.InfoLevel, parseLevel("verbose"))
}
