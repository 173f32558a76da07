package logging_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusplan/scheduler/internal/logging"
)

func TestNewProductionLogger(t *testing.T) {
	logger, err := logging.New("production")
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewDevelopmentLogger(t *testing.T) {
	logger, err := logging.New("development")
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewUnknownEnvFallsBackToProduction(t *testing.T) {
	logger, err := logging.New("staging")
	require.NoError(t, err)
	require.NotNil(t, logger)
}
