package factory

import (
	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/dataset"
	"go.uber.org/zap"
)

// DatasetFactory creates training data sources based on configuration
type DatasetFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewDatasetFactory creates a new dataset factory
func NewDatasetFactory(cfg *config.Config, logger *zap.Logger) *DatasetFactory {
	return &DatasetFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSource creates a dataset source based on the configuration
func (f *DatasetFactory) CreateSource() (dataset.Source, error) {
	dsCfg, err := f.cfg.GetDataset()
	if err != nil {
		return nil, err
	}

	switch dsCfg.Type {
	case "csv":
		return dataset.NewCSVSource(dsCfg.Path, f.logger), nil
	case "sqlite":
		return dataset.NewSQLiteSource(dsCfg.Path, dsCfg.Table, f.logger)
	case "mysql":
		return dataset.NewMySQLSource(dsCfg.DSN, dsCfg.Table, f.logger)
	default:
		return nil, errors.Newf("unsupported dataset type: %s", dsCfg.Type)
	}
}
