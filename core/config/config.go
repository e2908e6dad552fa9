package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"reconciler/core/database"
	"reconciler/core/lock"
	"reconciler/core/logger"
	"reconciler/core/reconcile"
	"reconciler/core/records"
	"reconciler/core/server"
	"reconciler/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application, one section per concern.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage holding record sets.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// Matching holds the engine thresholds, id field and worker count.
	Matching reconcile.Config `mapstructure:"matching"`
	// Lock selects the run guard backend.
	Lock lock.Config `mapstructure:"lock"`
	// Cache holds the record set cache settings.
	Cache records.CacheConfig `mapstructure:"cache"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// A missing .env is normal in production.
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// SERVER_PORT -> server.port, MATCHING_THRESHOLDS_MATCH -> matching.thresholds.match
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
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

		// Every key is registered, even with an empty default, so AutomaticEnv can see it.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}

// Validate checks the settings that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Matching.Thresholds.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("matching: %w", err))
	}
	if c.Matching.Workers < 0 {
		errs = append(errs, fmt.Errorf("matching: workers must not be negative, got %d", c.Matching.Workers))
	}
	switch c.Lock.Backend {
	case lock.BackendMemory, lock.BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("lock: unknown backend %q", c.Lock.Backend))
	}
	switch c.Database.Driver {
	case database.DriverMySQL, database.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database: unsupported driver %q", c.Database.Driver))
	}
	return errors.Join(errs...)
}
