package config

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress   string `validate:"required,hostname_port"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64 `validate:"gt=0"`
}

// ModelConfig locates the two model artifacts
type ModelConfig struct {
	ClassifierPath string `validate:"required"`
	VectorizerPath string `validate:"required"`
}

// HeaderConfig names the headers added by the mail filter
type HeaderConfig struct {
	Status     string `validate:"required"`
	Confidence string `validate:"required"`
	Error      string `validate:"required"`
}

// PostfixConfig is where filtered mail is re-injected
type PostfixConfig struct {
	Enabled bool
	Address string
	Port    int `validate:"gte=0,lte=65535"`
}

// FilterConfig represents the mail filter configuration
type FilterConfig struct {
	Type          string `validate:"oneof=http postfix cli"`
	ListenAddress string
	BlockPhishing bool
	MaxBodySize   int
	ModifySubject bool
	SubjectPrefix string
	Headers       HeaderConfig
	Postfix       PostfixConfig
}

// DatasetConfig selects the training data source
type DatasetConfig struct {
	Type  string `validate:"oneof=csv sqlite mysql"`
	Path  string `validate:"required_unless=Type mysql"`
	DSN   string `validate:"required_if=Type mysql"`
	Table string `validate:"required_unless=Type csv"`
}

// TrainingConfig holds the model hyperparameters
type TrainingConfig struct {
	NEstimators int `validate:"gt=0"`
	MaxFeatures int `validate:"gt=0"`
	NgramMin    int `validate:"gt=0"`
	NgramMax    int `validate:"gtefield=NgramMin"`
	Seed        int64
	MaxDepth    int     `validate:"gte=0"`
	TestRatio   float64 `validate:"gte=0,lt=1"`
	Jobs        int     `validate:"gt=0"`
}

// LoggingConfig represents the logger configuration
type LoggingConfig struct {
	Level      string `validate:"oneof=debug info warn error"`
	Format     string `validate:"oneof=json console"`
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	read, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	write, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	shutdown, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, err
	}

	cfg := ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		ReadTimeout:     read,
		WriteTimeout:    write,
		ShutdownTimeout: shutdown,
		MaxBodyBytes:    c.GetInt64("server.max_body_bytes"),
	}
	return cfg, check("server", cfg)
}

// GetModel returns the artifact locations
func (c *Config) GetModel() (ModelConfig, error) {
	cfg := ModelConfig{
		ClassifierPath: c.GetString("model.classifier_path"),
		VectorizerPath: c.GetString("model.vectorizer_path"),
	}
	return cfg, check("model", cfg)
}

// GetFilter returns the mail filter configuration
func (c *Config) GetFilter() (FilterConfig, error) {
	cfg := FilterConfig{
		Type:          c.GetString("filter.type"),
		ListenAddress: c.GetString("filter.listen_address"),
		BlockPhishing: c.GetBool("filter.block_phishing"),
		MaxBodySize:   c.GetInt("filter.max_body_size"),
		ModifySubject: c.GetBool("filter.modify_subject"),
		SubjectPrefix: c.GetString("filter.subject_prefix"),
		Headers: HeaderConfig{
			Status:     c.GetString("filter.headers.status"),
			Confidence: c.GetString("filter.headers.confidence"),
			Error:      c.GetString("filter.headers.error"),
		},
		Postfix: PostfixConfig{
			Enabled: c.GetBool("filter.postfix.enabled"),
			Address: c.GetString("filter.postfix.address"),
			Port:    c.GetInt("filter.postfix.port"),
		},
	}
	return cfg, check("filter", cfg)
}

// GetDataset returns the training data source configuration
func (c *Config) GetDataset() (DatasetConfig, error) {
	cfg := DatasetConfig{
		Type:  c.GetString("dataset.type"),
		Path:  c.GetString("dataset.path"),
		DSN:   c.GetString("dataset.dsn"),
		Table: c.GetString("dataset.table"),
	}
	return cfg, check("dataset", cfg)
}

// GetTraining returns the training hyperparameters
func (c *Config) GetTraining() (TrainingConfig, error) {
	cfg := TrainingConfig{
		NEstimators: c.GetInt("training.n_estimators"),
		MaxFeatures: c.GetInt("training.max_features"),
		NgramMin:    c.GetInt("training.ngram_min"),
		NgramMax:    c.GetInt("training.ngram_max"),
		Seed:        c.GetInt64("training.seed"),
		MaxDepth:    c.GetInt("training.max_depth"),
		TestRatio:   c.GetFloat64("training.test_ratio"),
		Jobs:        c.GetInt("training.jobs"),
	}
	return cfg, check("training", cfg)
}

// GetLogging returns the logger configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:      c.GetString("logging.level"),
		Format:     c.GetString("logging.format"),
		File:       c.GetString("logging.file"),
		MaxSizeMB:  c.GetInt("logging.max_size_mb"),
		MaxBackups: c.GetInt("logging.max_backups"),
		MaxAgeDays: c.GetInt("logging.max_age_days"),
	}
}

func check(section string, cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		return errors.Wrapf(err, "invalid %s configuration", section)
	}
	return nil
}
