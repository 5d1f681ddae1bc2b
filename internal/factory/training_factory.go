package factory

import (
	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/training"
	"go.uber.org/zap"
)

// TrainingFactory creates trainers based on configuration
type TrainingFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTrainingFactory creates a new training factory
func NewTrainingFactory(cfg *config.Config, logger *zap.Logger) *TrainingFactory {
	return &TrainingFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// Options builds trainer options from the training and model sections
func (f *TrainingFactory) Options() (training.Options, error) {
	trCfg, err := f.cfg.GetTraining()
	if err != nil {
		return training.Options{}, err
	}
	modelCfg, err := f.cfg.GetModel()
	if err != nil {
		return training.Options{}, err
	}

	opts := training.DefaultOptions()
	opts.NgramMin = trCfg.NgramMin
	opts.NgramMax = trCfg.NgramMax
	opts.MaxFeatures = trCfg.MaxFeatures
	opts.TestRatio = trCfg.TestRatio
	opts.Forest.NEstimators = trCfg.NEstimators
	opts.Forest.MaxDepth = trCfg.MaxDepth
	opts.Forest.Seed = trCfg.Seed
	opts.Forest.Jobs = trCfg.Jobs
	opts.ClassifierPath = modelCfg.ClassifierPath
	opts.VectorizerPath = modelCfg.VectorizerPath
	return opts, nil
}

// CreateTrainer creates a trainer from the configuration
func (f *TrainingFactory) CreateTrainer() (*training.Trainer, error) {
	opts, err := f.Options()
	if err != nil {
		return nil, err
	}
	return training.NewTrainer(opts, f.logger), nil
}
