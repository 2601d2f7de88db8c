package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/idscan/internal/config"
)

func TestConfigToBatchConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	require.NoError(t, batchCmd.Flags().Set("format", "csv"))
	require.NoError(t, batchCmd.Flags().Set("workers", "4"))
	require.NoError(t, batchCmd.Flags().Set("recursive", "true"))
	require.NoError(t, batchCmd.Flags().Set("include", "*.pdf"))
	require.NoError(t, batchCmd.Flags().Set("speed-tier", "fast"))

	batchConfig := configToBatchConfig(&cfg, batchCmd)

	assert.Same(t, &cfg, batchConfig.App)
	assert.Equal(t, "csv", batchConfig.Format)
	assert.Equal(t, 4, batchConfig.Workers)
	assert.True(t, batchConfig.Recursive)
	assert.Equal(t, []string{"*.pdf"}, batchConfig.IncludePatterns)
	assert.Equal(t, "fast", batchConfig.SpeedTier)
}

func TestBatchCommandRequiresArgs(t *testing.T) {
	_, err := executeCommand(t, "batch")
	require.Error(t, err)
}
