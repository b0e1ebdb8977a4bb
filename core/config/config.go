package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"score-ledger/core/database"
	"score-ledger/core/logger"
	"score-ledger/core/server"
	"score-ledger/core/storage"
	"score-ledger/feature/comparison"
	"score-ledger/feature/score"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application, one section per package.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage holding the chat archive.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the ledger database.
	Database database.Config `mapstructure:"database"`
	// Score holds the posting keywords and the rule file location.
	Score score.Config `mapstructure:"score"`
	// Comparison holds the reconciliation sweep settings.
	Comparison comparison.Config `mapstructure:"comparison"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Missing .env is fine (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// SERVER_PORT -> server.port
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the ledger cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case database.DriverMySQL, database.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if c.Score.Keyword == "" {
		errs = append(errs, errors.New("score.keyword: must not be empty"))
	}
	if c.Comparison.WaitSeconds < 0 {
		errs = append(errs, fmt.Errorf("comparison.wait_seconds: must not be negative, got %d", c.Comparison.WaitSeconds))
	}
	if c.Comparison.AfterDays <= 0 {
		errs = append(errs, fmt.Errorf("comparison.after_days: must be positive, got %d", c.Comparison.AfterDays))
	}
	if c.Comparison.ReactionOK == "" || c.Comparison.ReactionOK == c.Comparison.ReactionNG {
		errs = append(errs, errors.New("comparison.reaction_ok: must be set and differ from reaction_ng"))
	}
	return errors.Join(errs...)
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
