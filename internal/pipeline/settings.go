package pipeline

import (
	"github.com/yourusername/euromillions/internal/config"
	"github.com/yourusername/euromillions/internal/features"
)

// ConfigFromSettings builds an engine Config from the loaded application settings
func ConfigFromSettings(f config.FeaturesConfig, s config.ScoringConfig) Config {
	return Config{
		Bins: features.BinConfig{
			MainSumBins:     f.MainSumBinCount(),
			LuckySumBins:    f.LuckySumBins,
			CombinedSumBins: f.CombinedSumBins,
		},
		IncludeTicketRows: f.IncludeTicketRows,
		DropColumns:       f.DropColumns,
		Score:             s.Enabled,
	}
}
