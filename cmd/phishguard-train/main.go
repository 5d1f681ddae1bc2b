package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/dataset"
	"github.com/mikey/phishguard/internal/di"
	"github.com/mikey/phishguard/internal/training"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "phishguard-train",
	Short: "Train the phishing classifier and write its artifacts",
	Long: `Train the phishing classifier from a labelled dataset.

The dataset needs subject, urls and label columns (label 1 is phishing).
A body column is used for the text when present. The fitted vectorizer and
the random forest are written to the model paths.

Examples:
  phishguard-train --dataset SpamAssasin.csv
  phishguard-train --dataset-type sqlite --dataset emails.db --table emails
  phishguard-train --test-ratio 0.2 --jobs 8`,
	SilenceUsage: true,
	RunE:         runTrain,
}

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"dataset":        "dataset.path",
	"dataset-type":   "dataset.type",
	"dsn":            "dataset.dsn",
	"table":          "dataset.table",
	"classifier-out": "model.classifier_path",
	"vectorizer-out": "model.vectorizer_path",
	"n-estimators":   "training.n_estimators",
	"max-features":   "training.max_features",
	"max-depth":      "training.max_depth",
	"seed":           "training.seed",
	"test-ratio":     "training.test_ratio",
	"jobs":           "training.jobs",
	"log-level":      "logging.level",
	"log-format":     "logging.format",
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to config file")
	flags.StringP("dataset", "d", "SpamAssasin.csv", "Dataset file (CSV or SQLite database)")
	flags.String("dataset-type", "csv", "Dataset type (csv, sqlite, mysql)")
	flags.String("dsn", "", "MySQL data source name")
	flags.String("table", "emails", "Table holding the dataset (sqlite, mysql)")
	flags.String("classifier-out", "phishing_detector.model", "Where to write the classifier")
	flags.String("vectorizer-out", "vectorizer.model", "Where to write the vectorizer")
	flags.Int("n-estimators", 200, "Number of trees")
	flags.Int("max-features", 5000, "Vocabulary size")
	flags.Int("max-depth", 0, "Maximum tree depth (0 is unlimited)")
	flags.Int64("seed", 42, "Random seed")
	flags.Float64("test-ratio", 0, "Share of rows held out for evaluation")
	flags.IntP("jobs", "j", 1, "Trees fitted in parallel")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "json", "Log format (json, console)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and lets explicitly set flags win
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.NewFromFile(configFile)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, err
	}

	// Flags override file and env values only when set explicitly
	v := cfg.GetViper()
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, errors.Wrapf(err, "failed to bind flag %s", name)
		}
	}
	return cfg, nil
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	container, err := di.BuildTrainContainer(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to build dependency container")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return container.Invoke(func(logger *zap.Logger, source dataset.Source, trainer *training.Trainer) error {
		defer logger.Sync()
		defer source.Close()

		result, err := trainer.Run(ctx, source)
		if err != nil {
			logger.Error("Training failed", zap.String("source", source.Name()), zap.Error(err))
			return err
		}

		training.WriteReport(cmd.OutOrStdout(), result)
		fmt.Fprintln(cmd.OutOrStdout(), "Training complete.")
		return nil
	})
}
