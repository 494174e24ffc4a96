package config

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"

	"sheet-reconciler/core/database"
	"sheet-reconciler/core/logger"
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/server"
	"sheet-reconciler/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the run ledger database.
	Database database.Config `mapstructure:"database"`
	// Merge holds configuration for the merge engine.
	Merge reconcile.Config `mapstructure:"merge"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. MERGE_MAX_ATTEMPTS -> merge.max_attempts)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// datasetKeys are the keys every dataset config file must define.
var datasetKeys = []string{"location", "id_column", "id_char_count"}

// LoadDataset reads the dataset config called name from dir.
// A name with an extension or a path separator is read as a file path; a bare name is
// looked up as name.json, name.yaml, name.toml and so on inside dir.
func LoadDataset(dir, name string) (reconcile.DatasetConfig, error) {
	v := viper.New()
	if filepath.Ext(name) != "" || strings.ContainsRune(name, filepath.Separator) {
		v.SetConfigFile(name)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName(name)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return reconcile.DatasetConfig{}, &reconcile.ConfigError{Key: name, Msg: "config not found in " + dir, Err: err}
		}
		return reconcile.DatasetConfig{}, &reconcile.ConfigError{Key: name, Msg: "unreadable config", Err: err}
	}

	var errs []error
	for _, key := range datasetKeys {
		if !v.IsSet(key) {
			errs = append(errs, &reconcile.ConfigError{Key: key, Msg: "missing in " + v.ConfigFileUsed()})
		}
	}
	if len(errs) > 0 {
		return reconcile.DatasetConfig{}, errors.Join(errs...)
	}

	width, err := reconcile.ParseIDWidth(v.Get("id_char_count"))
	if err != nil {
		return reconcile.DatasetConfig{}, err
	}

	cfg := reconcile.DatasetConfig{
		Location:    v.GetString("location"),
		IDColumn:    v.GetString("id_column"),
		IDCharCount: width,
	}
	if err := cfg.Validate(); err != nil {
		return reconcile.DatasetConfig{}, err
	}
	return cfg, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
