package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/dataset"
	"github.com/mikey/phishguard/internal/factory"
	"github.com/mikey/phishguard/internal/logging"
	"github.com/mikey/phishguard/internal/training"
)

// BuildTrainContainer creates a container for the training command around
// an already resolved configuration
func BuildTrainContainer(cfg *config.Config) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewDatasetFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTrainingFactory); err != nil {
		return nil, err
	}

	if err := container.Provide(func(f *factory.DatasetFactory) (dataset.Source, error) {
		return f.CreateSource()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.TrainingFactory, logger *zap.Logger) (*training.Trainer, error) {
		trainer, err := f.CreateTrainer()
		if err != nil {
			logger.Error("Invalid training configuration", zap.Error(err))
		}
		return trainer, err
	}); err != nil {
		return nil, err
	}

	return container, nil
}
