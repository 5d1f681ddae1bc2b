package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/core"
	"github.com/mikey/phishguard/internal/factory"
	"github.com/mikey/phishguard/internal/logging"
	"github.com/mikey/phishguard/internal/ports"
	"github.com/mikey/phishguard/internal/textproc"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideDetection(container); err != nil {
		return nil, err
	}
	return container, nil
}

// provideDetection registers everything from the model artifacts up to the
// email filter. Config and logger must already be provided.
func provideDetection(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewModelFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *textproc.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register model artifacts, loaded once
	if err := container.Provide(func(f *factory.ModelFactory) core.LoadResult {
		return f.LoadModels()
	}); err != nil {
		return err
	}

	// Register phishing detector
	if err := container.Provide(core.NewPhishingDetector); err != nil {
		return err
	}
	if err := container.Provide(func(d *core.PhishingDetector, logger *zap.Logger) ports.Detector {
		if !d.Ready() {
			logger.Warn("Detector is not ready, predictions will fail until the artifacts are trained and the service restarted")
		}
		return d
	}); err != nil {
		return err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return err
	}

	return nil
}
