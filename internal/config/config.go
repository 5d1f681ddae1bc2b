package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phishguard/")
	v.AddConfigPath("$HOME/.phishguard")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile reads configuration from an explicit file
func NewFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("PHISHGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_address", "127.0.0.1:5000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// Model artifacts
	v.SetDefault("model.classifier_path", "phishing_detector.model")
	v.SetDefault("model.vectorizer_path", "vectorizer.model")

	// Filter defaults
	v.SetDefault("filter.type", "http")
	v.SetDefault("filter.listen_address", "0.0.0.0:10025")
	v.SetDefault("filter.block_phishing", false)
	v.SetDefault("filter.max_body_size", 1<<20)
	v.SetDefault("filter.headers.status", "X-Phishing-Status")
	v.SetDefault("filter.headers.confidence", "X-Phishing-Confidence")
	v.SetDefault("filter.headers.error", "X-Phishing-Error")
	v.SetDefault("filter.modify_subject", false)
	v.SetDefault("filter.subject_prefix", "[PHISHING] ")
	v.SetDefault("filter.postfix.enabled", true)
	v.SetDefault("filter.postfix.address", "127.0.0.1")
	v.SetDefault("filter.postfix.port", 10026)

	// Dataset defaults
	v.SetDefault("dataset.type", "csv")
	v.SetDefault("dataset.path", "SpamAssasin.csv")
	v.SetDefault("dataset.dsn", "user:password@tcp(localhost:3306)/phishguard")
	v.SetDefault("dataset.table", "emails")

	// Training defaults
	v.SetDefault("training.n_estimators", 200)
	v.SetDefault("training.max_features", 5000)
	v.SetDefault("training.ngram_min", 1)
	v.SetDefault("training.ngram_max", 2)
	v.SetDefault("training.seed", 42)
	v.SetDefault("training.max_depth", 0)
	v.SetDefault("training.test_ratio", 0.0)
	v.SetDefault("training.jobs", 1)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid duration for %s", key)
	}
	return d, nil
}

// Set overrides a value, used for command line flags
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
