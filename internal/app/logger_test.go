package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/dbnav/pkg/logger"
)

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(logger.Replace(zap.NewNop()))

	require.NoError(t, ConfigureLogging(ServerConfig{LogLevel: "debug"}))
	require.True(t, logger.Logger().Core().Enabled(zap.DebugLevel))

	require.NoError(t, ConfigureLogging(ServerConfig{LogFormat: "console"}))
	require.False(t, logger.Logger().Core().Enabled(zap.DebugLevel))

	require.Error(t, ConfigureLogging(ServerConfig{LogFormat: "xml"}))
}
