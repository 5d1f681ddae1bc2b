package factory

import (
	"github.com/mikey/phishguard/internal/artifact"
	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/core"
	"go.uber.org/zap"
)

// ModelFactory loads the trained artifacts named by the configuration
type ModelFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewModelFactory creates a new model factory
func NewModelFactory(cfg *config.Config, logger *zap.Logger) *ModelFactory {
	return &ModelFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// LoadModels loads the classifier and vectorizer together. Failures never
// stop the process: the result is Unready and every detection reports it.
func (f *ModelFactory) LoadModels() core.LoadResult {
	modelCfg, err := f.cfg.GetModel()
	if err != nil {
		f.logger.Error("Invalid model configuration", zap.Error(err))
		return core.Failed(err)
	}
	return artifact.LoadPair(modelCfg.ClassifierPath, modelCfg.VectorizerPath, f.logger)
}
