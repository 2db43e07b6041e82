package cmd

import (
	"testing"

	"github.com/linqiyu/coffeesim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagOverridesReachConfig(t *testing.T) {
	require.NoError(t, rootCmd.Flags().Set("sample-size", "37"))
	require.NoError(t, rootCmd.Flags().Set("pacing-ms", "0"))
	require.NoError(t, rootCmd.Flags().Set("population-file", "data/custom_population.csv"))
	require.NoError(t, rootCmd.Flags().Set("output-file", "out/results.json"))
	require.NoError(t, rootCmd.Flags().Set("output-format", "json"))
	require.NoError(t, rootCmd.Flags().Set("kafka-enabled", "true"))
	require.NoError(t, rootCmd.Flags().Set("kafka-broker-list", "broker1:9092,broker2:9092"))
	require.NoError(t, rootCmd.Flags().Set("strategy", "aggressive"))

	cfg, err := models.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 37, cfg.SampleSize)
	assert.Equal(t, 0, cfg.PacingMs)
	assert.Equal(t, "data/custom_population.csv", cfg.PopulationFile)
	assert.Equal(t, "out/results.json", cfg.OutputFile)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, "broker1:9092,broker2:9092", cfg.KafkaBrokerList)
	assert.Equal(t, "aggressive", cfg.Strategy)
}
