package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Model flags
	ClassifierPath string
	VectorizerPath string
	MaxBodySize    int

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}
	RegisterFlags(flag.CommandLine, flags)
	flag.Parse()
	return flags
}

// RegisterFlags binds the CLI flags to fs
func RegisterFlags(fs *flag.FlagSet, flags *CLIFlags) {
	// Model flags
	fs.StringVar(&flags.ClassifierPath, "classifier", "phishing_detector.model", "Path to the trained classifier")
	fs.StringVar(&flags.VectorizerPath, "vectorizer", "vectorizer.model", "Path to the fitted vectorizer")
	fs.IntVar(&flags.MaxBodySize, "max-body-size", 1<<20, "Maximum email body size passed to the detector")

	// Input flags
	fs.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			cfg.Set("filter.type", "cli")
			cfg.Set("cli.verbose", flags.Verbose)
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	if err := provideDetection(container); err != nil {
		return nil, err
	}
	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("filter.type", "cli")
	v.Set("filter.max_body_size", flags.MaxBodySize)
	v.Set("cli.verbose", flags.Verbose)

	v.Set("model.classifier_path", flags.ClassifierPath)
	v.Set("model.vectorizer_path", flags.VectorizerPath)

	return config.NewFromViper(v)
}
