package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/euromillions/internal/config"
)

// Factory creates DrawSource implementations based on configuration
type Factory struct {
	logger     *logrus.Logger
	httpClient *RateLimitedHTTPClient
}

// NewFactory creates a new data source factory. httpClient is only needed
// for remote sources.
func NewFactory(httpClient *RateLimitedHTTPClient, logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Factory{logger: logger, httpClient: httpClient}
}

// NewDrawSource creates a DrawSource from one configured source
func (f *Factory) NewDrawSource(cfg config.DataSourceConfig) (DrawSource, error) {
	switch cfg.Type {
	case config.SourceTypeFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file source %s requires a path", cfg.Name)
		}
		return NewFileSource(cfg.Name, cfg.Path, cfg.Enabled), nil

	case config.SourceTypeRemote:
		if cfg.URL == "" {
			return nil, fmt.Errorf("remote source %s requires a url", cfg.Name)
		}
		if f.httpClient == nil {
			return nil, fmt.Errorf("HTTP client is required for remote source %s", cfg.Name)
		}
		return NewRemoteSource(f.httpClient, cfg.Name, cfg.URL, cfg.APIKey, cfg.Enabled), nil

	default:
		return nil, fmt.Errorf("unknown data source type: %s", cfg.Type)
	}
}

// NewDrawSources creates all enabled data sources from configuration
func (f *Factory) NewDrawSources(dataCfg config.DataIngestionConfig) ([]DrawSource, error) {
	var sources []DrawSource

	for _, srcCfg := range dataCfg.Sources {
		if !srcCfg.Enabled {
			f.logger.WithField("source", srcCfg.Name).Debug("Skipping disabled data source")
			continue
		}

		source, err := f.NewDrawSource(srcCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create data source %s: %w", srcCfg.Name, err)
		}

		sources = append(sources, source)
		f.logger.WithFields(logrus.Fields{"source": srcCfg.Name, "type": srcCfg.Type}).Info("Created data source")
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no enabled data sources configured")
	}

	return sources, nil
}
