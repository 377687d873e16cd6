package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/euromillions/internal/config"
	"github.com/yourusername/euromillions/internal/features"
)

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(config.FeaturesConfig{
		MainSumMode:       config.BinModeFine,
		LuckySumBins:      6,
		CombinedSumBins:   6,
		IncludeTicketRows: true,
	}, config.ScoringConfig{Enabled: true})

	assert.Equal(t, features.BinConfig{MainSumBins: 10, LuckySumBins: 6, CombinedSumBins: 6}, cfg.Bins)
	assert.True(t, cfg.IncludeTicketRows)
	assert.True(t, cfg.Score)
	assert.Nil(t, cfg.DropColumns)

	engine, err := New(cfg)
	require.NoError(t, err)
	assert.Contains(t, engine.Columns(), features.ColAvgWin)
	assert.Contains(t, engine.Columns(), features.ColDistinctTicketRows)
	assert.NotContains(t, engine.Columns(), features.ColDrawYear)
}

func TestConfigFromSettingsOverride(t *testing.T) {
	cfg := ConfigFromSettings(config.FeaturesConfig{
		MainSumMode:     config.BinModeCoarse,
		MainSumBins:     8,
		LuckySumBins:    4,
		CombinedSumBins: 5,
		DropColumns:     []string{features.ColWinners},
	}, config.ScoringConfig{})

	assert.Equal(t, 8, cfg.Bins.MainSumBins)
	assert.Equal(t, []string{features.ColWinners}, cfg.DropColumns)
	assert.False(t, cfg.Score)
}
